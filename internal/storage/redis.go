package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis list store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "packing:"
	TTL      time.Duration // Expiration for saved lists, default 0 (no expiration)
}

// RedisListStore keeps saved lists in Redis with a set indexing their IDs.
type RedisListStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisListStore creates a Redis-backed list store.
func NewRedisListStore(opts RedisOptions) *RedisListStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "packing:"
	}

	return &RedisListStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Ping checks the connection.
func (s *RedisListStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (s *RedisListStore) Close() error {
	return s.client.Close()
}

func (s *RedisListStore) listKey(id string) string {
	return fmt.Sprintf("%slist:%s", s.prefix, id)
}

func (s *RedisListStore) indexKey() string {
	return s.prefix + "lists"
}

func (s *RedisListStore) Save(ctx context.Context, list SavedList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal packing list: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.listKey(list.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), list.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save packing list to redis: %w", err)
	}
	return nil
}

func (s *RedisListStore) Get(ctx context.Context, id string) (SavedList, error) {
	data, err := s.client.Get(ctx, s.listKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return SavedList{}, ErrListNotFound
		}
		return SavedList{}, fmt.Errorf("failed to load packing list from redis: %w", err)
	}

	var list SavedList
	if err := json.Unmarshal(data, &list); err != nil {
		return SavedList{}, fmt.Errorf("failed to unmarshal packing list: %w", err)
	}
	return list, nil
}

// List returns summaries of every indexed list. IDs whose list has expired
// are dropped from the index.
func (s *RedisListStore) List(ctx context.Context) ([]SavedListSummary, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list packing lists: %w", err)
	}
	if len(ids) == 0 {
		return []SavedListSummary{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.listKey(id))
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch packing lists: %w", err)
	}

	out := make([]SavedListSummary, 0, len(results))
	var expired []any
	for i, result := range results {
		raw, ok := result.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}

		var list SavedList
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal packing list %s: %w", ids[i], err)
		}
		out = append(out, list.Summary())
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune packing list index: %w", err)
		}
	}

	sortSummaries(out)
	return out, nil
}

func (s *RedisListStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.listKey(id))
	pipe.SRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete packing list: %w", err)
	}
	if del.Val() == 0 {
		return ErrListNotFound
	}
	return nil
}
