package countdown

import (
	"sync"
	"time"
)

// Scheduler runs a repeating task until the returned stop function is
// called. It decouples the countdown from wall-clock ticking so tests can
// drive ticks manually and no transport or render cycle is ever coupled to
// the timer.
type Scheduler interface {
	Repeat(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler is the production Scheduler backed by time.Ticker.
type TickerScheduler struct{}

// Repeat starts a goroutine invoking fn every interval. The stop function is
// idempotent and safe to call from within fn itself.
func (TickerScheduler) Repeat(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
				select {
				case <-done:
					return
				default:
				}
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
