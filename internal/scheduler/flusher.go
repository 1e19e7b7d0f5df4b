package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/urlpop/internal/index"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	redisstore "github.com/MrSnakeDoc/urlpop/internal/store/redis"
)

// Flusher persists the memory index to Redis whenever it changed
type Flusher struct {
	store    *redisstore.Store
	index    *index.SuggestionIndex
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	mu       sync.Mutex // serializes flushes
}

// NewFlusher creates a new flusher
func NewFlusher(
	store *redisstore.Store,
	idx *index.SuggestionIndex,
	log logger.Logger,
	interval time.Duration,
) *Flusher {
	return &Flusher{
		store:    store,
		index:    idx,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic flush process
func (f *Flusher) Start(ctx context.Context) {
	f.started.Store(true)
	ticker := time.NewTicker(f.interval)
	go func() {
		defer close(f.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := f.Flush(ctx); err != nil {
					f.logger.Error("failed to flush suggestions",
						logger.Error(err))
				}
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the periodic loop and runs a final flush with ctx
func (f *Flusher) Stop(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })
	if f.started.Load() {
		select {
		case <-f.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.Flush(ctx)
}

// Flush saves a snapshot of the index when it is dirty
func (f *Flusher) Flush(ctx context.Context) error {
	if f.store == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.index.Dirty() {
		f.logger.Debug("no suggestion changes to flush")
		return nil
	}

	snap, version := f.index.Snapshot()
	start := time.Now()
	if err := f.store.SaveSuggestions(ctx, snap); err != nil {
		return err
	}
	f.index.MarkFlushed(version)

	f.logger.Info("suggestions flushed to redis",
		logger.Int("domains", snap.Len()),
		logger.Duration("elapsed", time.Since(start)))

	return nil
}
