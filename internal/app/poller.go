package app

import (
	"context"
	"time"
)

const maxBackoff = 30 * time.Second

// Refresher reloads the video list and exposes the failure streak.
type Refresher interface {
	Refresh(ctx context.Context) error
	ConsecutiveFailures() int
}

// StartPoller launches a background goroutine that refreshes the library at
// a fixed cadence, backing off while the API keeps failing. It returns
// immediately. A non-positive interval disables polling.
func StartPoller(ctx context.Context, lib Refresher, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			// Refresh records and logs its own failure.
			_ = lib.Refresh(ctx)
			timer.Reset(calculateBackoff(lib.ConsecutiveFailures(), interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
