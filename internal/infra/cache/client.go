package cache

import (
	"context"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/xavierca1/imob-crm/internal/config"
)

// NewRedisClient cria o cliente e faz um Ping antes de devolvê-lo.
func NewRedisClient(cfg config.RedisConfig) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
