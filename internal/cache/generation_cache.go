package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenerationCache stores raw LLM responses keyed by a prompt hash, so a
// retried turn with an identical prompt does not burn another call.
type GenerationCache interface {
	Get(ctx context.Context, prompt string) (string, bool, error)
	Set(ctx context.Context, prompt, response string) error
	Invalidate(ctx context.Context, prompt string) error
}

type generationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGenerationCache(client *redis.Client) GenerationCache {
	return &generationCache{
		client: client,
		ttl:    1 * time.Hour,
	}
}

func (c *generationCache) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "llm:gen:" + hex.EncodeToString(sum[:16])
}

func (c *generationCache) Get(ctx context.Context, prompt string) (string, bool, error) {
	data, err := c.client.Get(ctx, c.key(prompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (c *generationCache) Set(ctx context.Context, prompt, response string) error {
	return c.client.Set(ctx, c.key(prompt), response, c.ttl).Err()
}

func (c *generationCache) Invalidate(ctx context.Context, prompt string) error {
	return c.client.Del(ctx, c.key(prompt)).Err()
}
