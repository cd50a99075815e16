package clients

import (
	"context"

	"github.com/DRSN-tech/go-recommender/internal/cfg"
	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

// NewRedisClient подключается к Redis (кэш товаров и сессии диалога) и проверяет соединение.
// При ошибке Ping клиент закрывается.
func NewRedisClient(ctx context.Context, cfg *cfg.RedisCfg) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:                  cfg.Addr,
		Username:              cfg.User,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		MaxRetries:            cfg.MaxRetries,
		DialTimeout:           cfg.DialTimeout,
		ReadTimeout:           cfg.Timeout,
		WriteTimeout:          cfg.Timeout,
		ContextTimeoutEnabled: true,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, e.Wrap(whereami.WhereAmI(), e.Dependency(err))
	}

	return client, nil
}
