package keyboard

import (
	"mobileinput/internal/metrics"
	"mobileinput/internal/native"
	"mobileinput/internal/protocol"
)

// Sink receives outbound observer events.
type Sink interface {
	SendData(v any)
}

// KeyboardListener reports keyboard height changes to the host.
type KeyboardListener struct {
	sink    Sink
	metrics *metrics.PluginMetrics
}

// NewKeyboardListener returns a listener that sends KEYBOARD messages to sink.
func NewKeyboardListener(sink Sink, m *metrics.PluginMetrics) *KeyboardListener {
	return &KeyboardListener{sink: sink, metrics: m}
}

// OnKeyboardHeight sends the keyboard height and whether it is shown.
func (l *KeyboardListener) OnKeyboardHeight(_, height int, _ native.Orientation) {
	l.sink.SendData(protocol.NewKeyboardEvent(height))
	if l.metrics != nil {
		l.metrics.KeyboardTotal.Inc()
	}
}

// OrientationListener reports orientation changes to the host.
type OrientationListener struct {
	sink    Sink
	metrics *metrics.PluginMetrics
}

// NewOrientationListener returns a listener that sends ORIENTATION messages
// to sink.
func NewOrientationListener(sink Sink, m *metrics.PluginMetrics) *OrientationListener {
	return &OrientationListener{sink: sink, metrics: m}
}

// OnOrientation sends the new screen orientation.
func (l *OrientationListener) OnOrientation(o native.Orientation) {
	l.sink.SendData(protocol.NewOrientationEvent(o.String()))
	if l.metrics != nil {
		l.metrics.OrientationTotal.Inc()
	}
}
