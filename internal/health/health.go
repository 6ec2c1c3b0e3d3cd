// Package health runs named self-checks and aggregates their status.
//
// The plugin registers checks for its UI thread, overlay and bridge target;
// hosts read the aggregated report through the binding or the preview.
package health

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Status is the health of one check or of the whole plugin.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// DefaultTimeout bounds a check that does not set its own.
const DefaultTimeout = 2 * time.Second

// Result is the outcome of one check.
type Result struct {
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
	Error       string         `json:"error,omitempty"`
}

// Healthy returns a healthy result with an optional message.
func Healthy(msg string) Result { return Result{Status: StatusHealthy, Message: msg} }

// Unhealthy returns an unhealthy result for err.
func Unhealthy(msg string, err error) Result {
	r := Result{Status: StatusUnhealthy, Message: msg}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Check performs one health check.
type Check func(ctx context.Context) Result

type component struct {
	critical bool
	check    Check
	timeout  time.Duration
}

// Checker holds registered checks and their last results.
type Checker struct {
	mu         sync.RWMutex
	components map[string]*component
	results    map[string]Result
	started    time.Time
}

// NewChecker returns a checker with no registered checks.
func NewChecker() *Checker {
	return &Checker{
		components: make(map[string]*component),
		results:    make(map[string]Result),
		started:    time.Now(),
	}
}

// Register adds a check. A failing critical check makes the plugin
// unhealthy; any other failure only degrades it. A zero timeout means
// DefaultTimeout.
func (c *Checker) Register(name string, critical bool, timeout time.Duration, check Check) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = &component{critical: critical, check: check, timeout: timeout}
	c.results[name] = Result{Status: StatusUnknown}
}

// Check runs every check concurrently and returns the results by name.
func (c *Checker) Check(ctx context.Context) map[string]Result {
	c.mu.RLock()
	comps := maps.Clone(c.components)
	c.mu.RUnlock()

	results := make(map[string]Result, len(comps))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, comp := range comps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := run(ctx, comp)
			mu.Lock()
			results[name] = r
			mu.Unlock()
		}()
	}
	wg.Wait()

	c.mu.Lock()
	maps.Copy(c.results, results)
	c.mu.Unlock()
	return results
}

func run(ctx context.Context, comp *component) Result {
	ctx, cancel := context.WithTimeout(ctx, comp.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result{Status: StatusUnhealthy, Message: "check panicked", Error: fmt.Sprint(r)}
			}
		}()
		done <- comp.check(ctx)
	}()

	var r Result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = Unhealthy("check timed out", ctx.Err())
	}
	r.LastChecked = start
	r.Duration = time.Since(start)
	return r
}

// Overall aggregates the last results.
func (c *Checker) Overall() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	unknown, degraded := false, false
	for _, name := range slices.Sorted(maps.Keys(c.results)) {
		comp := c.components[name]
		switch c.results[name].Status {
		case StatusUnhealthy:
			if comp.critical {
				return StatusUnhealthy
			}
			degraded = true
		case StatusDegraded:
			degraded = true
		case StatusUnknown:
			if comp.critical {
				unknown = true
			}
		}
	}
	switch {
	case unknown:
		return StatusUnknown
	case degraded:
		return StatusDegraded
	}
	return StatusHealthy
}

// Report is the full health snapshot.
type Report struct {
	Status     Status            `json:"status"`
	Uptime     string            `json:"uptime"`
	Components map[string]Result `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Report runs every check and aggregates the results.
func (c *Checker) Report(ctx context.Context) Report {
	components := c.Check(ctx)
	return Report{
		Status:     c.Overall(),
		Uptime:     time.Since(c.started).Round(time.Millisecond).String(),
		Components: components,
		Timestamp:  time.Now(),
	}
}
