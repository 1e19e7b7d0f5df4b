package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/urlpop/internal/suggest"
)

// Store persists suggestion pages in redis.
// Each domain's page is a JSON value under its own key, in the legacy shape;
// a list keeps the domain order.
type Store struct {
	client *redis.Client
	keys   Keys
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(prefix),
	}
}

// Ping reports whether redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// LoadSuggestions rebuilds a suggestion store from redis.
// Pages that are missing or cannot be decoded are skipped.
func (s *Store) LoadSuggestions(ctx context.Context) (*suggest.Store, error) {
	domains, err := s.domains(ctx)
	if err != nil {
		return nil, err
	}

	out := suggest.New()
	if len(domains) == 0 {
		return out, nil
	}

	keys := make([]string, len(domains))
	for i, d := range domains {
		keys[i] = s.keys.PageKey(d)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion pages: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		page, err := suggest.DecodePage([]byte(raw))
		if err != nil {
			// Skip pages that couldn't be decoded
			continue
		}
		out.Put(domains[i], page)
	}

	return out, nil
}

// SaveSuggestions replaces the persisted suggestions with the content of st.
// Pages of domains that no longer exist are deleted in the same transaction.
func (s *Store) SaveSuggestions(ctx context.Context, st *suggest.Store) error {
	previous, err := s.domains(ctx)
	if err != nil {
		return err
	}

	current := st.Domains()
	pages := make(map[string][]byte, len(current))
	for _, d := range current {
		page, _ := st.Page(d)
		data, err := suggest.EncodePage(page)
		if err != nil {
			return fmt.Errorf("failed to marshal page %s: %w", d, err)
		}
		pages[d] = data
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range previous {
			if _, kept := pages[d]; !kept {
				pipe.Del(ctx, s.keys.PageKey(d))
			}
		}
		for _, d := range current {
			pipe.Set(ctx, s.keys.PageKey(d), pages[d], 0)
		}
		pipe.Del(ctx, s.keys.DomainsKey())
		if len(current) > 0 {
			members := make([]interface{}, len(current))
			for i, d := range current {
				members[i] = d
			}
			pipe.RPush(ctx, s.keys.DomainsKey(), members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save suggestions: %w", err)
	}

	return nil
}

// domains returns the persisted domain order. When the list is missing but
// page keys exist, the domains are recovered by scanning, sorted by name.
func (s *Store) domains(ctx context.Context) ([]string, error) {
	domains, err := s.client.LRange(ctx, s.keys.DomainsKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get suggestion domains: %w", err)
	}
	if len(domains) > 0 {
		return domains, nil
	}

	iter := s.client.Scan(ctx, 0, s.keys.PageKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		d, err := s.keys.ExtractDomain(iter.Val())
		if err != nil {
			continue
		}
		domains = append(domains, d)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan suggestion pages: %w", err)
	}
	sort.Strings(domains)
	return domains, nil
}
