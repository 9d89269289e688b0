package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxLocalKeys после этого размера из карты вытесняются простаивающие ключи
const maxLocalKeys = 10000

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter token bucket на ключ внутри процесса; используется без Redis
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	now     func() time.Time
}

// NewLocalLimiter создает лимитер в памяти процесса
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		entries: make(map[string]*localEntry),
		now:     time.Now,
	}
}

// Allow учитывает попытку: ёмкость корзины равна лимиту, восполнение за окно
func (l *LocalLimiter) Allow(_ context.Context, key string, rule Rule) (bool, error) {
	if rule.Disabled() {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	id := fmt.Sprintf("%s|%d|%d", key, rule.Limit, rule.Window)
	entry, ok := l.entries[id]
	if !ok {
		if len(l.entries) >= maxLocalKeys {
			l.evictIdle(now, rule.Window)
		}
		entry = &localEntry{
			limiter: rate.NewLimiter(rate.Every(rule.Window/time.Duration(rule.Limit)), rule.Limit),
		}
		l.entries[id] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) evictIdle(now time.Time, idle time.Duration) {
	for id, entry := range l.entries {
		if now.Sub(entry.lastSeen) > idle {
			delete(l.entries, id)
		}
	}
}
