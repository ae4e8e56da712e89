// Package cache хранит агрегированную статистику листа ожидания в redis.
// Сами заявки здесь не хранятся: их хранит провайдер.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/models"
)

const signupsKey = "waitlist:signups"

type Cache struct {
	Db *redis.Client
}

func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// IncrPlan увеличивает счётчик принятых заявок по тарифу.
func (c *Cache) IncrPlan(ctx context.Context, plan models.Plan) error {
	const op = "cache.IncrPlan"
	if err := c.Db.HIncrBy(ctx, signupsKey, string(plan), 1).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PlanCounts возвращает счётчики по всем тарифам; отсутствующие тарифы равны нулю.
func (c *Cache) PlanCounts(ctx context.Context) (map[models.Plan]int64, error) {
	const op = "cache.PlanCounts"
	raw, err := c.Db.HGetAll(ctx, signupsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counts := make(map[models.Plan]int64, len(models.Plans()))
	for _, p := range models.Plans() {
		counts[p] = 0
		v, ok := raw[string(p)]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: plan %s: %w", op, p, err)
		}
		counts[p] = n
	}
	return counts, nil
}

func (c *Cache) Close() error {
	return c.Db.Close()
}
