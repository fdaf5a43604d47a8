// Package lifecycle coordinates subsystem startup, shutdown, and readiness.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Check probes one dependency. A nil error means it can serve traffic.
type Check func(ctx context.Context) error

// Report is the readiness of the process and each registered check.
type Report struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

type namedCheck struct {
	name string
	fn   Check
}

// Coordinator runs startup hooks concurrently, tracks when they have all
// finished, and fans shutdown out to hooks waiting on its context.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	started  atomic.Bool

	mu     sync.Mutex
	checks []namedCheck
}

// New creates a Coordinator whose context lives until Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine; WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn in its own goroutine. fn should block on
// <-c.Context().Done() before releasing resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// AddCheck registers a readiness probe reported under name.
func (c *Coordinator) AddCheck(name string, fn Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Ready reports whether every startup hook has returned.
func (c *Coordinator) Ready() bool {
	return c.started.Load()
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.started.Store(true)
}

// Check runs every registered probe concurrently. The report is ready only
// when startup has finished and no probe failed.
func (c *Coordinator) Check(ctx context.Context) Report {
	c.mu.Lock()
	checks := slices.Clone(c.checks)
	c.mu.Unlock()

	report := Report{
		Ready:  c.Ready(),
		Checks: make(map[string]string, len(checks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, chk := range checks {
		wg.Go(func() {
			status := "ok"
			if err := chk.fn(ctx); err != nil {
				status = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[chk.name] = status
			if status != "ok" {
				report.Ready = false
			}
		})
	}
	wg.Wait()

	return report
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
