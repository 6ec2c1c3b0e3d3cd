package metrics

import "time"

// PluginMetrics holds the metrics the plugin records.
type PluginMetrics struct {
	registry *Registry

	CommandsTotal    *Counter
	EventsTotal      *Counter
	KeyboardTotal    *Counter
	OrientationTotal *Counter
	DroppedTotal     *Counter
	WidgetsActive    *Gauge
	QueueDepth       *Gauge
	DispatchDuration *Histogram

	startedAt time.Time
}

// NewPluginMetrics registers the plugin metrics in registry. A nil registry
// gets a fresh one under the "mobileinput" namespace.
func NewPluginMetrics(registry *Registry) *PluginMetrics {
	if registry == nil {
		registry = NewRegistry("mobileinput", "")
	}
	return &PluginMetrics{
		registry: registry,
		CommandsTotal: registry.Counter("commands_total",
			"Inbound commands dispatched to the registry", nil),
		EventsTotal: registry.Counter("events_total",
			"Outbound data messages sent to the host", nil),
		KeyboardTotal: registry.Counter("keyboard_notifications_total",
			"Keyboard height notifications sent", nil),
		OrientationTotal: registry.Counter("orientation_notifications_total",
			"Orientation notifications sent", nil),
		DroppedTotal: registry.Counter("dropped_commands_total",
			"Commands and tasks dropped before Init or after the UI thread stopped", nil),
		WidgetsActive: registry.Gauge("widgets_active",
			"Widgets currently registered", nil),
		QueueDepth: registry.Gauge("ui_queue_depth",
			"Tasks waiting for the UI thread", nil),
		DispatchDuration: registry.Histogram("dispatch_duration_seconds",
			"Time spent handling one inbound command on the UI thread", nil, DurationBuckets),
		startedAt: time.Now(),
	}
}

// Error returns the error counter for one error code.
func (m *PluginMetrics) Error(code string) *Counter {
	return m.registry.Counter("errors_total", "Error envelopes sent to the host", Labels{"code": code})
}

// Registry returns the underlying registry.
func (m *PluginMetrics) Registry() *Registry {
	return m.registry
}

// Uptime returns the time since the metrics were created.
func (m *PluginMetrics) Uptime() time.Duration {
	return time.Since(m.startedAt)
}
