package bridge

import (
	"encoding/json"
	"sync"
)

// Message is one decoded outbound envelope.
type Message struct {
	Object  string
	Method  string
	Payload string

	// Data is the decoded inner message of a data envelope.
	Data map[string]any

	// ErrorCode and ErrorMessage are set for error envelopes.
	ErrorCode    string
	ErrorMessage string
}

// IsError reports whether the message is an error envelope.
func (m Message) IsError() bool { return m.ErrorCode != "" }

// Name returns the inner "msg" or "action" discriminator.
func (m Message) Name() string {
	if s, ok := m.Data["msg"].(string); ok {
		return s
	}
	if s, ok := m.Data["action"].(string); ok {
		return s
	}
	return ""
}

// ID returns the widget id of the inner message, or -1.
func (m Message) ID() int {
	if f, ok := m.Data["id"].(float64); ok {
		return int(f)
	}
	return -1
}

// Recorder is a Sender that keeps every delivered message. The replay tool
// and tests use it in place of the engine.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	onSend   func(Message)
}

// NewRecorder returns a recorder; onSend, if not nil, sees each message as it
// arrives.
func NewRecorder(onSend func(Message)) *Recorder {
	return &Recorder{onSend: onSend}
}

// Send decodes and records one outbound message.
func (r *Recorder) Send(object, method, payload string) {
	m := Decode(object, method, payload)
	r.mu.Lock()
	r.messages = append(r.messages, m)
	r.mu.Unlock()
	if r.onSend != nil {
		r.onSend(m)
	}
}

// Decode parses an envelope produced by a Bridge.
func Decode(object, method, payload string) Message {
	m := Message{Object: object, Method: method, Payload: payload}
	var e struct {
		Data  *string `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return m
	}
	if e.Data != nil {
		_ = json.Unmarshal([]byte(*e.Data), &m.Data)
	}
	if e.Error != nil {
		m.ErrorCode, m.ErrorMessage = e.Error.Code, e.Error.Message
	}
	return m
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Named returns recorded data messages whose discriminator is name.
func (r *Recorder) Named(name string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Name() == name {
			out = append(out, m)
		}
	}
	return out
}

// Errors returns recorded error envelopes.
func (r *Recorder) Errors() []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.IsError() {
			out = append(out, m)
		}
	}
	return out
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}
