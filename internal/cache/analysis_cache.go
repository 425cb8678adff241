// Package cache keeps rendered analysis responses so re-uploads of the same
// file do not rerun the pipeline. The analysis engine itself stays
// cache-free; only the delivery layer reads and writes here.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/bizlens/internal/config"
	"github.com/andresuchdata/bizlens/internal/engine"
)

const (
	analysisKeyPrefix    = "analysis:result"
	analysisScanBatchLen = 100
)

// Entry is a cached analysis outcome: the structured result plus the
// rendered report.
type Entry struct {
	Result *engine.Result `json:"result"`
	Report string         `json:"report"`
}

type AnalysisCache interface {
	Get(ctx context.Context, key Key) (*Entry, bool, error)
	Set(ctx context.Context, key Key, entry *Entry) error
	Invalidate(ctx context.Context, key Key) error
	InvalidateAll(ctx context.Context) error
}

// Key identifies one analysis request: the uploaded file contents plus the
// parameters that change the outcome.
type Key struct {
	Industry     string
	BusinessName string
	Content      []byte
	SalesContent []byte
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

// NewAnalysisCache returns a redis-backed cache when caching is enabled,
// otherwise a no-op cache so callers never branch on configuration.
func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	payload, err := c.client.Get(ctx, buildAnalysisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, false, fmt.Errorf("decode analysis cache: %w", err)
	}
	return &entry, true, nil
}

func (c *redisAnalysisCache) Set(ctx context.Context, key Key, entry *Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}

	if err := c.client.Set(ctx, buildAnalysisKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) Invalidate(ctx context.Context, key Key) error {
	return c.client.Del(ctx, buildAnalysisKey(key)).Err()
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, analysisScanBatchLen)
}

func (n *noopAnalysisCache) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) Set(ctx context.Context, key Key, entry *Entry) error {
	return nil
}

func (n *noopAnalysisCache) Invalidate(ctx context.Context, key Key) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAnalysisKey(key Key) string {
	return fmt.Sprintf("%s:%s", analysisKeyPrefix, analysisKeyHash(key))
}

func analysisKeyHash(key Key) string {
	h := sha1.New()
	h.Write([]byte("industry=" + strings.ToLower(strings.TrimSpace(key.Industry)) + "|"))
	h.Write([]byte("business=" + strings.TrimSpace(key.BusinessName) + "|"))
	h.Write(key.Content)
	if len(key.SalesContent) > 0 {
		h.Write([]byte("|sales|"))
		h.Write(key.SalesContent)
	}
	return hex.EncodeToString(h.Sum(nil))
}
