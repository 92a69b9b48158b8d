package service

import (
	"sync"
	"time"
)

// Countdown is a cooperative per-session countdown. It reports the remaining
// whole seconds through onTick whenever the value changes, and calls onExpire
// exactly once when the countdown reaches zero. Stop is idempotent and safe
// to call after expiry.
type Countdown struct {
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

// StartCountdown begins a countdown of the given duration. Ticks are checked
// every tick interval; onTick only fires when the remaining seconds differ
// from the previously reported value, so UI edits are never redundant.
func StartCountdown(duration, tick time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.run(duration, tick, onTick, onExpire)
	return c
}

func (c *Countdown) run(duration, tick time.Duration, onTick func(remaining int), onExpire func()) {
	defer close(c.done)

	endTime := time.Now().Add(duration)
	last := secondsUntil(endTime, time.Now())
	if onTick != nil && last > 0 {
		onTick(last)
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			remaining := secondsUntil(endTime, now)
			if remaining <= 0 {
				if onExpire != nil {
					onExpire()
				}
				return
			}
			if remaining != last {
				last = remaining
				if onTick != nil {
					onTick(remaining)
				}
			}
		}
	}
}

// Stop cancels the countdown. Stopping an already stopped or already expired
// countdown is a no-op.
func (c *Countdown) Stop() {
	c.once.Do(func() {
		close(c.stop)
	})
}

// Done returns a channel closed when the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// secondsUntil returns the remaining whole seconds, rounded up so the display
// never shows 0 before expiry fires.
func secondsUntil(end, now time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// delayedTask wraps time.AfterFunc as a session-owned cancellable task.
type delayedTask struct {
	timer *time.Timer
}

func scheduleAfter(d time.Duration, fn func()) *delayedTask {
	return &delayedTask{timer: time.AfterFunc(d, fn)}
}

func (d *delayedTask) Stop() {
	d.timer.Stop()
}
