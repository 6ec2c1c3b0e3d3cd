// Package bridge delivers outbound messages to the host engine.
//
// Every message is a JSON object: {"data": "<inner json>"} for events and
// {"error": {"code": ..., "message": ...}} for failures. The inner message is
// itself serialized to a string so the host can route it before parsing.
package bridge

import (
	"encoding/json"
	"sync"

	"mobileinput/internal/logging"
	"mobileinput/internal/metrics"
	"mobileinput/internal/protocol"
)

// Sender hands a serialized payload to the host's delivery mechanism, which
// invokes method on the named host object.
type Sender interface {
	Send(object, method, payload string)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(object, method, payload string)

func (f SenderFunc) Send(object, method, payload string) { f(object, method, payload) }

type envelope struct {
	Data  *string    `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    protocol.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

// Bridge is safe for concurrent use.
type Bridge struct {
	mu       sync.Mutex
	sender   Sender
	object   string
	receiver string
	debug    bool

	log     *logging.Logger
	metrics *metrics.PluginMetrics
}

// New returns an unconfigured bridge. Messages are dropped until Configure
// names a target object.
func New(sender Sender, log *logging.Logger, m *metrics.PluginMetrics) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	if m == nil {
		m = metrics.NewPluginMetrics(nil)
	}
	return &Bridge{sender: sender, log: log.WithComponent("bridge"), metrics: m}
}

// Configure sets the delivery target and the debug flag.
func (b *Bridge) Configure(object, receiver string, debug bool) {
	b.mu.Lock()
	b.object, b.receiver, b.debug = object, receiver, debug
	b.mu.Unlock()
	b.log.SetDebug(debug)
	b.log.Debug("bridge configured", "object", object, "receiver", receiver)
}

// Target returns the configured object and method names.
func (b *Bridge) Target() (object, receiver string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.object, b.receiver
}

// Debug reports whether debug logging was requested by the host.
func (b *Bridge) Debug() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.debug
}

// SendData serializes v and delivers it as a data envelope.
func (b *Bridge) SendData(v any) {
	inner, err := json.Marshal(v)
	if err != nil {
		b.log.Error("marshal outbound message", "error", err)
		return
	}
	s := string(inner)
	if b.deliver(envelope{Data: &s}) {
		b.metrics.EventsTotal.Inc()
	}
}

// SendError delivers an error envelope.
func (b *Bridge) SendError(code protocol.ErrorCode, message string) {
	b.log.Warn("sending error", "code", code, "message", message)
	if b.deliver(envelope{Error: &errorBody{Code: code, Message: message}}) {
		b.metrics.Error(string(code)).Inc()
	}
}

func (b *Bridge) deliver(e envelope) bool {
	payload, err := json.Marshal(e)
	if err != nil {
		b.log.Error("marshal envelope", "error", err)
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sender == nil || b.object == "" {
		b.log.Warn("bridge not configured, dropping message", "payload", string(payload))
		return false
	}
	if b.debug {
		b.log.Debug("send", "payload", string(payload))
	}
	b.sender.Send(b.object, b.receiver, string(payload))
	return true
}
