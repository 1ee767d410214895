// Package jitter добавляет случайность в интервалы повторов,
// чтобы повторные попытки разных горутин не совпадали по времени.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает d с джиттером в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}

	randMutex.Lock()
	extra := globalRand.Float64() * factor * float64(d)
	randMutex.Unlock()

	return d + time.Duration(extra)
}

// ExponentialBackoff вычисляет задержку для попытки attempt (с нуля):
// base*2^attempt, ограниченную max, плюс джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}

	return Duration(backoff, factor)
}

// Sleep ждёт d или отмены канала done. Возвращает false, если ожидание прервано.
func Sleep(d time.Duration, done <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-done:
		return false
	}
}
