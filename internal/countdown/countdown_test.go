package countdown

import (
	"errors"
	"testing"
	"time"
)

// manualScheduler lets tests drive ticks by hand.
type manualScheduler struct {
	fn      func()
	stopped bool
}

func (m *manualScheduler) Repeat(_ time.Duration, fn func()) func() {
	m.fn = fn
	return func() { m.stopped = true }
}

func (m *manualScheduler) tick(n int) {
	for i := 0; i < n; i++ {
		if m.fn != nil {
			m.fn()
		}
	}
}

func TestNewRejectsNonPositive(t *testing.T) {
	sched := &manualScheduler{}
	if _, err := New(0, sched, Callbacks{}); !errors.Is(err, ErrNonPositive) {
		t.Errorf("New(0) = %v, want ErrNonPositive", err)
	}
	if _, err := New(-5, sched, Callbacks{}); !errors.Is(err, ErrNonPositive) {
		t.Errorf("New(-5) = %v, want ErrNonPositive", err)
	}
}

func TestTickDecrementsExactlyOne(t *testing.T) {
	sched := &manualScheduler{}
	var ticks []int
	cd, err := New(5, sched, Callbacks{
		OnTick: func(rem int) { ticks = append(ticks, rem) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := cd.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sched.tick(3)
	if cd.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", cd.Remaining())
	}
	want := []int{4, 3, 2}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("ticks[%d] = %d, want %d", i, ticks[i], want[i])
		}
	}
}

func TestStartTwiceFails(t *testing.T) {
	sched := &manualScheduler{}
	cd, _ := New(10, sched, Callbacks{})
	if err := cd.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := cd.Start(); !errors.Is(err, ErrNotIdle) {
		t.Errorf("second Start = %v, want ErrNotIdle", err)
	}
}

func TestExpiryFiresOnceAndStopsTicking(t *testing.T) {
	sched := &manualScheduler{}
	expires := 0
	cd, _ := New(2, sched, Callbacks{
		OnExpire: func() { expires++ },
	})
	cd.Start()

	sched.tick(5) // past zero
	if expires != 1 {
		t.Errorf("OnExpire fired %d times, want 1", expires)
	}
	if cd.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", cd.Remaining())
	}
	if cd.State() != StateExpired {
		t.Errorf("State = %s, want expired", cd.State())
	}
	if !sched.stopped {
		t.Error("scheduler not stopped after expiry")
	}
}

func TestThresholdCallbacks(t *testing.T) {
	sched := &manualScheduler{}
	var crossed []int
	cd, _ := New(302, sched, Callbacks{
		OnThreshold: func(rem int) { crossed = append(crossed, rem) },
	})
	cd.Start()

	sched.tick(2) // 300
	if len(crossed) != 1 || crossed[0] != 300 {
		t.Fatalf("crossed = %v, want [300]", crossed)
	}

	sched.tick(240) // down to 60
	if len(crossed) != 2 || crossed[1] != 60 {
		t.Fatalf("crossed = %v, want [300 60]", crossed)
	}
}

func TestStopPreventsExpiry(t *testing.T) {
	sched := &manualScheduler{}
	expires := 0
	cd, _ := New(3, sched, Callbacks{
		OnExpire: func() { expires++ },
	})
	cd.Start()
	sched.tick(1)
	cd.Stop()

	if !sched.stopped {
		t.Error("scheduler not stopped")
	}
	if cd.State() != StateIdle {
		t.Errorf("State = %s, want idle", cd.State())
	}

	// A stray tick after Stop must not move the clock.
	sched.tick(5)
	if cd.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", cd.Remaining())
	}
	if expires != 0 {
		t.Errorf("OnExpire fired %d times after Stop", expires)
	}
}

func TestStopAfterExpiryIsNoop(t *testing.T) {
	sched := &manualScheduler{}
	cd, _ := New(1, sched, Callbacks{})
	cd.Start()
	sched.tick(1)

	cd.Stop()
	if cd.State() != StateExpired {
		t.Errorf("State = %s, want expired after Stop", cd.State())
	}
}

func TestTickerSchedulerStopIdempotent(t *testing.T) {
	var sched TickerScheduler
	stop := sched.Repeat(time.Hour, func() {})
	stop()
	stop() // must not panic
}
