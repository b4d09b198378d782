package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// SkillsCache holds extracted vacancy skill lists so repeated generation
// calls for the same vacancy skip the extraction round trip.
type SkillsCache interface {
	Get(ctx context.Context, vacancyID string) ([]model.VacancySkill, error)
	Set(ctx context.Context, vacancyID string, skills []model.VacancySkill) error
	Invalidate(ctx context.Context, vacancyID string) error
}

type skillsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSkillsCache(client *redis.Client) SkillsCache {
	return &skillsCache{
		client: client,
		ttl:    12 * time.Hour,
	}
}

func (c *skillsCache) key(vacancyID string) string {
	return "vacancy:skills:" + vacancyID
}

func (c *skillsCache) Get(ctx context.Context, vacancyID string) ([]model.VacancySkill, error) {
	data, err := c.client.Get(ctx, c.key(vacancyID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var skills []model.VacancySkill
	if err := json.Unmarshal([]byte(data), &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (c *skillsCache) Set(ctx context.Context, vacancyID string, skills []model.VacancySkill) error {
	data, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(vacancyID), data, c.ttl).Err()
}

func (c *skillsCache) Invalidate(ctx context.Context, vacancyID string) error {
	return c.client.Del(ctx, c.key(vacancyID)).Err()
}
