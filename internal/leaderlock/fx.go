package leaderlock

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billcollect/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("leaderlock",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLocker),
)

// NewRedisClient returns nil when no address is configured; the locker then
// falls back to single-instance mode.
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
