package mobileinput

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"

	"mobileinput/internal/config"
	"mobileinput/internal/logging"
	"mobileinput/internal/metrics"
	"mobileinput/internal/native"
	"mobileinput/internal/plugin"
)

// Plugin is the exported plugin instance. The host engine calls Init,
// Execute and Destroy from any thread.
type Plugin struct {
	plugin *plugin.Plugin
	host   *host
	log    *logging.Logger
}

// New creates a plugin with the built-in configuration. UI work runs through
// platform.RunOnUIThread.
func New(platform Platform, sender Sender) *Plugin {
	return build(platform, sender, config.DefaultConfig(), logging.Default())
}

// NewWithConfig creates a plugin configured by a TOML, JSON or YAML
// document.
func NewWithConfig(platform Platform, sender Sender, document string) (*Plugin, error) {
	cfg, err := config.Parse([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("mobileinput: %w", err)
	}
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, fmt.Errorf("mobileinput: %w", err)
	}
	log, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("mobileinput: %w", err)
	}
	return build(platform, sender, cfg, log), nil
}

func build(platform Platform, sender Sender, cfg *config.Config, log *logging.Logger) *Plugin {
	h := newHost(platform)
	var m *metrics.PluginMetrics
	if cfg.Metrics.Enabled {
		m = metrics.NewPluginMetrics(metrics.NewRegistry(cfg.Metrics.Namespace, ""))
	}
	p := plugin.New(h, sender,
		plugin.WithConfig(cfg),
		plugin.WithLogger(log),
		plugin.WithMetrics(m),
		plugin.WithScheduler(h))
	return &Plugin{plugin: p, host: h, log: log}
}

// Init configures the bridge and attaches the input container.
func (m *Plugin) Init(data string) { m.plugin.Init(data) }

// Execute hands one JSON command to widget id.
func (m *Plugin) Execute(id int, data string) { m.plugin.Execute(id, data) }

// Destroy removes every widget and the input container.
func (m *Plugin) Destroy() { m.plugin.Destroy() }

// OnLayout reports the visible display frame. The platform calls it on the
// UI thread from its global layout listener.
func (m *Plugin) OnLayout(left, top, right, bottom, orientation int) {
	m.host.layout(image.Rect(left, top, right, bottom), native.Orientation(orientation))
}

// BarHeight returns the navigation bar height in pixels, or 0 when the
// platform does not report one.
func (m *Plugin) BarHeight() int { return m.plugin.BarHeight() }

// BarType returns 0 for three-button, 1 for two-button and 2 for gesture
// navigation.
func (m *Plugin) BarType() int { return m.plugin.BarType() }

// RotationLocked reports whether the user has locked screen rotation.
func (m *Plugin) RotationLocked() bool { return m.plugin.RotationLocked() }

// Metrics returns the metrics in text exposition format.
func (m *Plugin) Metrics() string {
	var buf bytes.Buffer
	if err := m.plugin.Metrics().WriteText(&buf); err != nil {
		m.log.Warn("write metrics", "error", err)
	}
	return buf.String()
}

// Health runs the plugin self-checks and returns the report as JSON. It
// waits for the UI thread, so the platform must not call it from there.
func (m *Plugin) Health() string {
	data, err := json.Marshal(m.plugin.Health(context.Background()))
	if err != nil {
		m.log.Warn("encode health report", "error", err)
		return "{}"
	}
	return string(data)
}
