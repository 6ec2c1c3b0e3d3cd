package plugin

import (
	"context"
	"errors"
	"time"

	"mobileinput/internal/health"
)

var errNotInitialised = errors.New("plugin not initialised")

func (p *Plugin) registerChecks() {
	p.health = health.NewChecker()
	p.health.Register("ui_thread", true, time.Second, p.checkUI)
	p.health.Register("overlay", false, time.Second, p.checkOverlay)
	p.health.Register("bridge", false, 0, p.checkBridge)
}

// onUI runs fn on the UI thread and waits for it or for ctx.
func (p *Plugin) onUI(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !p.sched.Post(func() {
		fn()
		close(done)
	}) {
		return errors.New("UI thread unavailable")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) checkUI(ctx context.Context) health.Result {
	start := time.Now()
	if err := p.onUI(ctx, func() {}); err != nil {
		return health.Unhealthy("UI thread not responding", err)
	}
	r := health.Healthy("")
	r.Details = map[string]any{"latency": time.Since(start).String()}
	return r
}

func (p *Plugin) checkOverlay(ctx context.Context) health.Result {
	var attached bool
	var widgets int
	err := p.onUI(ctx, func() {
		attached = p.overlay != nil
		if p.registry != nil {
			widgets = p.registry.Len()
		}
	})
	if err != nil {
		return health.Unhealthy("UI thread not responding", err)
	}
	if !attached {
		return health.Unhealthy("no overlay", errNotInitialised)
	}
	r := health.Healthy("")
	r.Details = map[string]any{"widgets": widgets}
	return r
}

func (p *Plugin) checkBridge(context.Context) health.Result {
	object, receiver := p.bridge.Target()
	if object == "" || receiver == "" {
		return health.Unhealthy("bridge target not configured", errNotInitialised)
	}
	r := health.Healthy(object + "." + receiver)
	r.Details = map[string]any{"debug": p.bridge.Debug()}
	return r
}

// Health runs the plugin self-checks.
func (p *Plugin) Health(ctx context.Context) health.Report {
	return p.health.Report(ctx)
}
