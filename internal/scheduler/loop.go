// Package scheduler implements the periodic update driver.
//
// A Loop differs from a fixed-rate ticker: each cycle waits for the
// previous work invocation to fully settle before arming the next wait, so
// at most one cycle's work is in flight even when the remote is slow.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkFunc is one cycle's asynchronous work. The context is cancelled when
// the loop is stopped mid-cycle.
type WorkFunc func(ctx context.Context) error

// Loop repeatedly invokes a work function until disabled. Created at
// startup and toggled by Start/Stop, never destroyed.
type Loop struct {
	interval time.Duration
	work     WorkFunc
	logger   *slog.Logger

	mu      sync.Mutex
	enabled bool
	gen     int                // run generation; bumped by Start and Stop so a stale cycle cannot re-arm
	pending *time.Timer        // armed wakeup for the next cycle, nil while a cycle runs
	cancel  context.CancelFunc // aborts the in-flight cycle
}

// New creates a loop. It starts disabled.
func New(interval time.Duration, work WorkFunc, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		interval: interval,
		work:     work,
		logger:   logger,
	}
}

// Enabled reports whether the loop is running.
func (l *Loop) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Start enables the loop and runs the first cycle immediately. No-op if
// already enabled.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enabled {
		return
	}
	l.enabled = true
	l.gen++
	go l.runCycle(l.gen)

	l.logger.Debug("loop started", "interval", l.interval)
}

// Stop disables the loop, clears any pending wakeup, and cancels the
// in-flight cycle. Once Stop returns, no further work invocation will be
// scheduled; a cycle already running may still settle asynchronously, but
// it will not re-arm.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.enabled = false
	l.gen++

	if l.pending != nil {
		l.pending.Stop()
		l.pending = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	l.logger.Debug("loop stopped")
}

// runCycle executes one work invocation and, once it settles, re-arms the
// next wakeup if the loop is still enabled. A cycle belongs to the run
// generation that scheduled it: if Stop (or Stop then Start) intervened
// while the work ran, the settle path must not touch the loop's state,
// because the cancel handle and any pending wakeup belong to the newer run.
func (l *Loop) runCycle(gen int) {
	l.mu.Lock()
	if !l.enabled || l.gen != gen {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.pending = nil
	l.mu.Unlock()

	err := l.work(ctx)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen {
		return
	}
	l.cancel = nil

	if err != nil {
		// The cycle's update is skipped; the next cycle proceeds on
		// schedule.
		l.logger.Warn("cycle failed", "error", err)
	}

	if !l.enabled {
		return
	}
	l.pending = time.AfterFunc(l.interval, func() { l.runCycle(gen) })
}
