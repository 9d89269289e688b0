package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript INCR счётчика окна; TTL ставится при первом попадании
var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RedisLimiter фиксированное окно в Redis, общее для всех экземпляров сервиса
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLimiter создает лимитер поверх Redis
func NewRedisLimiter(rdb *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix}
}

// Allow учитывает попытку и сообщает, укладывается ли она в лимит
func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (bool, error) {
	if rule.Disabled() {
		return true, nil
	}

	count, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.prefix + key}, rule.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: redis script for key=%s: %v", ErrLimiter, key, err)
	}
	return count <= int64(rule.Limit), nil
}
