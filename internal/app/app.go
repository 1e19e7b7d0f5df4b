package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/urlpop/internal/config"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver"
	"github.com/MrSnakeDoc/urlpop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/urlpop/internal/index"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	"github.com/MrSnakeDoc/urlpop/internal/redis"
	"github.com/MrSnakeDoc/urlpop/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/urlpop/internal/store/redis"
	"github.com/MrSnakeDoc/urlpop/internal/utils"
	"github.com/MrSnakeDoc/urlpop/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	index       *index.SuggestionIndex
	reloader    *scheduler.SeedReloader
	flusher     *scheduler.Flusher
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	redisClient, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	idx := index.NewSuggestionIndex()
	store := redisstore.NewStore(redisClient, cfg.RedisKeyPrefix)

	// Persisted suggestions come first; the seed file only adds what is missing
	syncer := scheduler.NewRedisSyncer(store, idx, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to sync suggestions from redis on startup, starting empty",
			logger.Error(err))
	}

	var reloader *scheduler.SeedReloader
	var reloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			idx,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, default suggestions disabled")
	}

	flusher := scheduler.NewFlusher(store, idx, loggerClient, cfg.FlushInterval)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Store:              store,
		Index:              idx,
		SnapshotTTL:        redisstore.DefaultSnapshotTTL,
		ReloadTrigger:      reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		index:       idx,
		reloader:    reloader,
		flusher:     flusher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenPort)
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// The flusher runs on a context that outlives the signal so the final flush can still reach redis
	a.flusher.Start(context.WithoutCancel(ctx))
	a.logger.Info("flusher started",
		logger.Duration("interval", a.cfg.FlushInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// Stop after the server so no request lands after the final flush
	if err := a.flusher.Stop(shutdownCtx); err != nil {
		a.logger.Error("final flush failed, recent suggestion changes are lost",
			logger.Error(err))
	}

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}

	a.logger.Info("✅ urlpop stopped cleanly",
		logger.Int("domains", a.index.Count()))
	return runErr
}
