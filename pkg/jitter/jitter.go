// Package jitter считает задержки между повторами вызовов внешних сервисов.
// Случайная добавка разводит повторы клиентов во времени после общего сбоя.
package jitter

import (
	"context"
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

// Backoff — экспоненциальная задержка: Base, 2*Base, 4*Base... не больше Max, плюс джиттер.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// Next возвращает задержку перед повтором attempt (нумерация с нуля).
func (b Backoff) Next(attempt int) time.Duration {
	return ExponentialBackoff(b.Base, b.Max, attempt, b.Jitter)
}

// Wait ждёт Next(attempt). Возвращает ctx.Err(), если контекст отменён раньше.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	return Sleep(ctx, b.Next(attempt))
}

// Duration возвращает d с добавкой из диапазона [0, d*jitterFactor].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}

	randMutex.Lock()
	extra := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()

	return d + time.Duration(extra)
}

// ExponentialBackoff удваивает base на каждой попытке, ограничивает результат max и добавляет джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if max > 0 && backoff > max {
		backoff = max
	}

	return Duration(backoff, jitterFactor)
}

// Sleep ждёт d или отмены контекста. Возвращает ctx.Err(), если ожидание прервано.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
