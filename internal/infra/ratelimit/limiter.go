// Package ratelimit ограничение числа попыток бронирования по ключу (IP, участник)
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimiter ошибка хранилища счётчиков
var ErrLimiter = errors.New("ratelimit: limiter backend error")

// Rule лимит попыток в окне
type Rule struct {
	Limit  int
	Window time.Duration
}

// Disabled правило без ограничения
func (r Rule) Disabled() bool {
	return r.Limit <= 0 || r.Window <= 0
}

// Noop пропускает все запросы
type Noop struct{}

// Allow всегда разрешает
func (Noop) Allow(context.Context, string, Rule) (bool, error) {
	return true, nil
}
