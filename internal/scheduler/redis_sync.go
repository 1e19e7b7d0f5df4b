package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/urlpop/internal/index"
	"github.com/MrSnakeDoc/urlpop/internal/logger"
	redisstore "github.com/MrSnakeDoc/urlpop/internal/store/redis"
)

// RedisSyncer loads persisted suggestions from Redis into the memory index on startup
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.SuggestionIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store *redisstore.Store,
	idx *index.SuggestionIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads suggestions from Redis and replaces the memory index content
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	if rs.store == nil {
		rs.logger.Warn("no redis store configured, starting with empty suggestions")
		return nil
	}

	rs.logger.Info("syncing suggestions from redis to memory")

	st, err := rs.store.LoadSuggestions(ctx)
	if err != nil {
		return err
	}

	if st.Len() == 0 {
		rs.logger.Info("no suggestions found in redis")
		return nil
	}

	rs.index.Load(st)

	rs.logger.Info("synced suggestions from redis",
		logger.Int("domains", st.Len()))

	return nil
}
