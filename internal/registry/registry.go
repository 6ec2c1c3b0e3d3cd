// Package registry maps host-assigned widget ids to widgets and routes
// inbound commands to them.
//
// A Registry is confined to the UI thread. Every failure is reported to the
// host as an error envelope; Dispatch also returns it for callers that want
// to log or count it.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"mobileinput/internal/config"
	"mobileinput/internal/logging"
	"mobileinput/internal/metrics"
	"mobileinput/internal/protocol"
	"mobileinput/internal/widget"
)

// ErrDuplicateID is reported when CREATE_EDIT names a live id and the
// duplicate policy is "reject".
var ErrDuplicateID = errors.New("widget id already exists")

// Reporter delivers events and error envelopes to the host.
type Reporter interface {
	SendData(v any)
	SendError(code protocol.ErrorCode, message string)
}

// Registry owns the live widgets.
type Registry struct {
	widgets  map[int]*widget.Input
	env      widget.Env
	reporter Reporter
	policy   string

	log     *logging.Logger
	metrics *metrics.PluginMetrics
}

// New returns an empty registry. Widgets are created with env; its Sink
// defaults to reporter and its focus scanner is the registry itself.
func New(env widget.Env, reporter Reporter, m *metrics.PluginMetrics) *Registry {
	if env.Log == nil {
		env.Log = logging.Discard()
	}
	if env.Sink == nil {
		env.Sink = reporter
	}
	if m == nil {
		m = metrics.NewPluginMetrics(nil)
	}
	policy := env.Config.DuplicateCreate
	if policy == "" {
		policy = config.DuplicateReplace
	}
	r := &Registry{
		widgets:  make(map[int]*widget.Input),
		reporter: reporter,
		policy:   policy,
		log:      env.Log.WithComponent("registry"),
		metrics:  m,
	}
	env.Focus = r
	r.env = env
	return r
}

// Dispatch decodes one inbound message addressed to id and applies it.
func (r *Registry) Dispatch(id int, data string) error {
	start := time.Now()
	r.metrics.CommandsTotal.Inc()
	defer r.metrics.DispatchDuration.Since(start)

	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		return r.fail(id, protocol.ErrCodeReceive, err)
	}

	if env.Command == protocol.CmdCreate {
		return r.create(id, env)
	}

	in, ok := r.widgets[id]
	if !ok {
		r.log.Debug("no widget for command", "id", id, "command", env.Name)
		return nil
	}

	if err := in.Process(env); err != nil {
		return r.fail(id, codeOf(err), err)
	}
	if in.State() == widget.StateRemoved {
		delete(r.widgets, id)
		r.metrics.WidgetsActive.Set(int64(len(r.widgets)))
	}
	return nil
}

func (r *Registry) create(id int, env *protocol.Envelope) error {
	p, err := widget.DecodeCreate(env)
	if err != nil {
		return r.fail(id, protocol.ErrCodeCreate, err)
	}

	if old, ok := r.widgets[id]; ok {
		if r.policy == config.DuplicateReject {
			return r.fail(id, protocol.ErrCodeCreate, fmt.Errorf("%w: %d", ErrDuplicateID, id))
		}
		r.log.Debug("replacing widget", "id", id)
		old.Remove()
		delete(r.widgets, id)
	}

	in := widget.New(id, r.env)
	if err := in.Create(p); err != nil {
		return r.fail(id, protocol.ErrCodeCreate, err)
	}
	r.widgets[id] = in
	r.metrics.WidgetsActive.Set(int64(len(r.widgets)))
	return nil
}

func codeOf(err error) protocol.ErrorCode {
	var perr *protocol.PayloadError
	if errors.As(err, &perr) {
		return perr.Code()
	}
	return protocol.ErrCodeProcess
}

func (r *Registry) fail(id int, code protocol.ErrorCode, err error) error {
	r.log.Warn("command failed", "id", id, "code", code, "error", err)
	if r.reporter != nil {
		r.reporter.SendError(code, err.Error())
	}
	return err
}

// SetConfig changes the settings used for widgets created from now on and
// the duplicate CREATE policy.
func (r *Registry) SetConfig(c config.WidgetsConfig) {
	r.env.Config = c
	r.policy = c.DuplicateCreate
	if r.policy == "" {
		r.policy = config.DuplicateReplace
	}
}

// AnyFocused reports whether any live widget holds input focus.
func (r *Registry) AnyFocused() bool {
	for _, in := range r.widgets {
		if in.IsFocused() {
			return true
		}
	}
	return false
}

// Get returns the live widget for id.
func (r *Registry) Get(id int) (*widget.Input, bool) {
	in, ok := r.widgets[id]
	return in, ok
}

// IDs returns the live widget ids in ascending order.
func (r *Registry) IDs() []int {
	return slices.Sorted(maps.Keys(r.widgets))
}

// Len returns the number of live widgets.
func (r *Registry) Len() int { return len(r.widgets) }

// Clear removes every widget, detaching its control.
func (r *Registry) Clear() {
	for _, id := range r.IDs() {
		r.widgets[id].Remove()
		delete(r.widgets, id)
	}
	r.metrics.WidgetsActive.Set(0)
}
