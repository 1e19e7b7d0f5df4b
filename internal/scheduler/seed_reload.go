package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/urlpop/internal/index"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	"github.com/MrSnakeDoc/urlpop/internal/sources/seed"
	"github.com/MrSnakeDoc/urlpop/internal/suggest"
)

// SeedReloader merges the default suggestions of the seed file into the index,
// at start, periodically and on manual trigger
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	index         *index.SuggestionIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedReloader creates a new seed reloader
func NewSeedReloader(
	seedFile string,
	idx *index.SuggestionIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (sr *SeedReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed file",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload reads the seed file and merges it into the index.
// Values already known are left where they are; aliases are (re)bound.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sr.logger.Info("reloading seed file",
		logger.String("path", sr.loader.Path()))

	config, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	plan, err := sr.mapper.MapSeed(config)
	if err != nil {
		return fmt.Errorf("failed to map seed: %w", err)
	}

	if len(plan.Skipped) > 0 {
		sr.logger.Warn("skipped invalid seed entries",
			logger.Strings("entries", plan.Skipped))
	}

	_ = sr.index.Update(func(st *suggest.Store) error {
		plan.Apply(st)
		return nil
	})
	sr.index.MarkReloaded()

	sr.logger.Info("seed file applied",
		logger.Int("merges", len(plan.Merges)),
		logger.Int("binds", len(plan.Binds)))

	return nil
}
