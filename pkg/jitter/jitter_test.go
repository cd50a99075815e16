package jitter

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func TestDuration_Bounds(t *testing.T) {
	for range 100 {
		d := Duration(time.Second, DefaultJitter)
		gt.Bool(t, d >= time.Second).True()
		gt.Bool(t, d <= 1500*time.Millisecond).True()
	}

	gt.Value(t, Duration(time.Second, 0)).Equal(time.Second)
}

func TestExponentialBackoff_Capped(t *testing.T) {
	gt.Value(t, ExponentialBackoff(time.Second, 10*time.Second, 0, 0)).Equal(time.Second)
	gt.Value(t, ExponentialBackoff(time.Second, 10*time.Second, 2, 0)).Equal(4 * time.Second)
	gt.Value(t, ExponentialBackoff(time.Second, 10*time.Second, 10, 0)).Equal(10 * time.Second)
	gt.Value(t, ExponentialBackoff(time.Second, 10*time.Second, 1000, 0)).Equal(10 * time.Second)
}

func TestBackoff_Next(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: time.Second}
	gt.Value(t, b.Next(0)).Equal(100 * time.Millisecond)
	gt.Value(t, b.Next(3)).Equal(800 * time.Millisecond)
	gt.Value(t, b.Next(4)).Equal(time.Second)
}

func TestSleep(t *testing.T) {
	gt.NoError(t, Sleep(context.Background(), time.Millisecond)).Required()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gt.Error(t, Sleep(ctx, time.Hour)).Is(context.Canceled)
	gt.Error(t, Backoff{Base: time.Hour}.Wait(ctx, 0)).Is(context.Canceled)
}
