package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL is how long a snapshot taken before an import is kept (7 days)
const DefaultSnapshotTTL = 7 * 24 * time.Hour

// ErrSnapshotNotFound is returned when a snapshot id is unknown or expired
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SaveSnapshot stores a full export of the suggestions under an id derived from now.
func (s *Store) SaveSnapshot(ctx context.Context, data []byte, now time.Time, ttl time.Duration) (string, error) {
	id := now.UTC().Format("20060102T150405.000000000Z")
	if err := s.client.Set(ctx, s.keys.SnapshotKey(id), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	return id, nil
}

// GetSnapshot returns the export stored under id
func (s *Store) GetSnapshot(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keys.SnapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return data, nil
}

// ListSnapshots returns snapshot ids, newest first
func (s *Store) ListSnapshots(ctx context.Context) ([]string, error) {
	prefix := strings.TrimSuffix(s.keys.SnapshotPattern(), "*")

	var ids []string
	iter := s.client.Scan(ctx, 0, s.keys.SnapshotPattern(), 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}
