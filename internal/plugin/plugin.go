// Package plugin is the entry point the host engine talks to.
//
// A Plugin is an explicit context object: it owns the overlay, the widget
// registry and the keyboard provider of one host. Init, Execute and Destroy
// may be called from any goroutine; they only queue work on the UI thread and
// return immediately. Results reach the host through the bridge.
package plugin

import (
	"sync"

	"mobileinput/internal/bridge"
	"mobileinput/internal/config"
	"mobileinput/internal/health"
	"mobileinput/internal/keyboard"
	"mobileinput/internal/logging"
	"mobileinput/internal/looper"
	"mobileinput/internal/metrics"
	"mobileinput/internal/native"
	"mobileinput/internal/protocol"
	"mobileinput/internal/registry"
	"mobileinput/internal/widget"
)

// Scheduler runs tasks on the UI thread in submission order. Post must not
// block; it reports false when the task was dropped.
type Scheduler interface {
	Post(task func()) bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithConfig sets the plugin configuration. The default is
// config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(p *Plugin) { p.cfg = cfg.Clone() }
}

// WithLogger sets the logger. Components log under their own names.
func WithLogger(log *logging.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// WithMetrics sets the metrics the plugin updates. A nil value keeps a
// private registry.
func WithMetrics(m *metrics.PluginMetrics) Option {
	return func(p *Plugin) { p.metrics = m }
}

// WithScheduler runs UI work on sched instead of a private looper.
func WithScheduler(sched Scheduler) Option {
	return func(p *Plugin) { p.sched = sched }
}

// Plugin is one instance of the text input plugin.
type Plugin struct {
	host    native.Host
	sched   Scheduler
	own     *looper.Looper
	bridge  *bridge.Bridge
	log     *logging.Logger
	metrics *metrics.PluginMetrics
	health  *health.Checker

	mu  sync.Mutex
	cfg *config.Config

	// UI thread only.
	overlay  native.Overlay
	registry *registry.Registry
	provider *keyboard.Provider
}

// New creates a plugin for host. Outbound messages are handed to sender.
// Without WithScheduler the plugin starts its own looper, stopped by Close.
func New(host native.Host, sender bridge.Sender, opts ...Option) *Plugin {
	p := &Plugin{host: host}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg == nil {
		p.cfg = config.DefaultConfig()
	}
	if p.log == nil {
		p.log = logging.Discard()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewPluginMetrics(nil)
	}
	if p.sched == nil {
		p.own = looper.New(p.log, looper.WithMetrics(p.metrics))
		p.sched = p.own
	}
	p.bridge = bridge.New(sender, p.log, p.metrics)
	p.log = p.log.WithComponent("plugin")
	p.registerChecks()
	return p
}

// Init configures the bridge from data, a JSON object with "object",
// "receiver" and "debug", and attaches a fresh overlay. A previous overlay is
// detached together with its widgets. Unreadable data keeps the configured
// bridge target.
func (p *Plugin) Init(data string) {
	p.mu.Lock()
	cfg := p.cfg.Clone()
	p.mu.Unlock()

	object, receiver, debug := cfg.Bridge.Object, cfg.Bridge.Receiver, cfg.Bridge.Debug
	if ip, err := protocol.DecodeInit(data); err != nil {
		p.log.Warn("unreadable init data, using configured bridge target", "error", err)
	} else {
		if ip.Object != "" {
			object = ip.Object
		}
		if ip.Receiver != "" {
			receiver = ip.Receiver
		}
		debug = debug || bool(ip.Debug)
	}
	p.bridge.Configure(object, receiver, debug)

	p.post("init", func() { p.attach(cfg) })
}

func (p *Plugin) attach(cfg *config.Config) {
	p.teardown()

	ov, err := p.host.AttachOverlay()
	if err != nil {
		p.log.Error("attach overlay", "error", err)
		return
	}
	p.overlay = ov

	env := widget.Env{
		Overlay: ov,
		IME:     p.host.IME(),
		Config:  cfg.Widgets,
		Log:     p.log,
	}
	if lc, ok := p.host.(native.LocaleConfigurer); ok {
		env.Locale = lc
	}
	p.registry = registry.New(env, p.bridge, p.metrics)

	nav := keyboard.NavBarHeight(p.host, cfg.Keyboard.NavBarHeight)
	p.provider = keyboard.Install(p.host, nav,
		keyboard.NewKeyboardListener(p.bridge, p.metrics),
		keyboard.NewOrientationListener(p.bridge, p.metrics),
		p.log)
	p.log.Info("plugin initialised", "nav_bar_height", nav)
}

// Execute queues one inbound message for widget id. Messages arriving
// before Init has run are dropped.
func (p *Plugin) Execute(id int, data string) {
	p.post("execute", func() {
		if p.registry == nil {
			p.metrics.DroppedTotal.Inc()
			p.log.Warn("plugin not initialised, dropping command", "id", id)
			return
		}
		_ = p.registry.Dispatch(id, data)
	})
}

// Destroy queues removal of every widget, the keyboard provider and the
// overlay.
func (p *Plugin) Destroy() {
	p.post("destroy", func() {
		p.teardown()
		p.log.Info("plugin destroyed")
	})
}

func (p *Plugin) teardown() {
	if p.registry != nil {
		p.registry.Clear()
		p.registry = nil
	}
	if p.provider != nil {
		p.provider.Disable()
		p.provider = nil
	}
	if p.overlay != nil {
		p.host.DetachOverlay(p.overlay)
		p.overlay = nil
	}
}

// Reconfigure applies cfg to widgets created from now on and to the bridge
// debug flag. Existing widgets keep their settings.
func (p *Plugin) Reconfigure(cfg *config.Config) {
	cfg = cfg.Clone()
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	object, receiver := p.bridge.Target()
	if object != "" {
		p.bridge.Configure(object, receiver, cfg.Bridge.Debug)
	}
	p.post("reconfigure", func() {
		if p.registry != nil {
			p.registry.SetConfig(cfg.Widgets)
		}
	})
}

func (p *Plugin) post(what string, task func()) {
	if !p.sched.Post(task) {
		p.metrics.DroppedTotal.Inc()
		p.log.Warn("UI thread unavailable, dropping task", "task", what)
	}
}

// Sync waits for queued work when the plugin runs its own looper. With an
// external scheduler it returns immediately.
func (p *Plugin) Sync() {
	if p.own != nil {
		p.own.Sync()
	}
}

// Close destroys the plugin and stops its own looper.
func (p *Plugin) Close() {
	p.Destroy()
	if p.own != nil {
		p.own.Close()
	}
}

// BarHeight returns the navigation bar height in pixels, or 0 when the host
// cannot tell.
func (p *Plugin) BarHeight() int {
	if ni, ok := p.host.(native.NavigationInfo); ok {
		return ni.NavigationBarHeight()
	}
	return 0
}

// BarType returns 0 for three-button navigation, 1 for two-button navigation
// and 2 for gestures.
func (p *Plugin) BarType() int {
	if ni, ok := p.host.(native.NavigationInfo); ok {
		return ni.NavigationBarType()
	}
	return 0
}

// RotationLocked reports whether the user disabled auto-rotation.
func (p *Plugin) RotationLocked() bool {
	if rl, ok := p.host.(native.RotationLockReporter); ok {
		return rl.RotationLocked()
	}
	return false
}

// Metrics returns the plugin's metrics registry.
func (p *Plugin) Metrics() *metrics.Registry { return p.metrics.Registry() }

// Bridge returns the outbound bridge.
func (p *Plugin) Bridge() *bridge.Bridge { return p.bridge }
