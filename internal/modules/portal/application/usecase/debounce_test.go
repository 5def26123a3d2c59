package usecase

import (
	"testing"
	"time"

	"portalConsole/internal/shared/clock"
)

func TestDebouncerRunsLastTriggerOnce(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	d := NewDebouncer(fake, time.Second)

	var calls []string
	for _, v := range []string{"a", "b", "c"} {
		value := v
		d.Trigger(func() { calls = append(calls, value) })
		fake.Advance(400 * time.Millisecond)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no calls inside the quiet period, got %v", calls)
	}
	fake.Advance(600 * time.Millisecond)
	if len(calls) != 1 || calls[0] != "c" {
		t.Fatalf("expected single call with last value, got %v", calls)
	}
	fake.Advance(10 * time.Second)
	if len(calls) != 1 {
		t.Fatalf("expected no further calls, got %v", calls)
	}
}

func TestDebouncerCancelAndStop(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	d := NewDebouncer(fake, time.Second)

	fired := 0
	d.Trigger(func() { fired++ })
	if !d.Cancel() {
		t.Fatal("expected a pending call to be cancelled")
	}
	fake.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatalf("cancelled call fired %d times", fired)
	}

	d.Trigger(func() { fired++ })
	d.Stop()
	d.Trigger(func() { fired++ })
	fake.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatalf("stopped debouncer fired %d times", fired)
	}
	if fake.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", fake.Pending())
	}
}

func TestDebouncerWithoutDelayRunsInline(t *testing.T) {
	d := NewDebouncer(clock.Fake(time.Unix(0, 0)), -1)
	fired := false
	d.Trigger(func() { fired = true })
	if !fired {
		t.Fatal("expected inline call")
	}
}
