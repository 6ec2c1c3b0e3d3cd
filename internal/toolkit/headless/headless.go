// Package headless is an in-memory toolkit implementing internal/native.
//
// It simulates the pieces of a view tree the plugin relies on: overlays,
// text controls with a single focus owner, a soft keyboard and layout passes.
// It is not safe for concurrent use; like a real toolkit it must only be
// touched from the UI thread.
package headless

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"mobileinput/internal/native"
)

// ErrNoRoot is returned by AttachOverlay when the host has no content view.
var ErrNoRoot = errors.New("headless: host has no root view")

// Option configures a Host.
type Option func(*Host)

// WithLegacyLocale makes controls lack IME hint locale support, so keyboard
// languages are switched through the host's resource locale.
func WithLegacyLocale() Option {
	return func(h *Host) { h.legacyLocale = true }
}

// WithoutCaretTint makes controls report no caret tint support.
func WithoutCaretTint() Option {
	return func(h *Host) { h.noCaretTint = true }
}

// WithNavigationBar sets the navigation bar height and type.
func WithNavigationBar(height, kind int) Option {
	return func(h *Host) { h.navHeight, h.navType = height, kind }
}

// WithRotationLocked sets the auto-rotate lock.
func WithRotationLocked(locked bool) Option {
	return func(h *Host) { h.rotationLocked = locked }
}

// WithFonts lists the font assets that load successfully.
func WithFonts(assets ...string) Option {
	return func(h *Host) { h.fonts = append(h.fonts, assets...) }
}

// Host is a simulated screen with one root content view.
type Host struct {
	size        image.Point
	orientation native.Orientation
	noRoot      bool

	legacyLocale   bool
	noCaretTint    bool
	navHeight      int
	navType        int
	rotationLocked bool
	fonts          []string

	overlays       []*Overlay
	ime            *IME
	watchers       map[int]native.LayoutFunc
	nextWatcher    int
	resourceLocale string
}

// NewHost returns a host with a screen of the given size. The orientation
// follows the aspect ratio.
func NewHost(size image.Point, opts ...Option) *Host {
	h := &Host{
		size:     size,
		watchers: make(map[int]native.LayoutFunc),
	}
	h.orientation = orientationOf(size)
	h.ime = &IME{host: h}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func orientationOf(size image.Point) native.Orientation {
	if size.X > size.Y {
		return native.OrientationLandscape
	}
	return native.OrientationPortrait
}

// SetRoot toggles whether the host has a content view to attach overlays to.
func (h *Host) SetRoot(present bool) { h.noRoot = !present }

// AttachOverlay attaches a fresh full-size overlay.
func (h *Host) AttachOverlay() (native.Overlay, error) {
	if h.noRoot {
		return nil, ErrNoRoot
	}
	o := &Overlay{host: h, attached: true}
	h.overlays = append(h.overlays, o)
	return o, nil
}

// DetachOverlay removes o and all its controls from the screen.
func (h *Host) DetachOverlay(o native.Overlay) {
	ov, ok := o.(*Overlay)
	if !ok {
		return
	}
	h.overlays = slices.DeleteFunc(h.overlays, func(x *Overlay) bool { return x == ov })
	ov.attached = false
	if ov.focused != nil {
		ov.focused.focused = false
		ov.focused = nil
	}
}

// Overlays returns the attached overlays, oldest first.
func (h *Host) Overlays() []*Overlay { return slices.Clone(h.overlays) }

// Overlay returns the most recently attached overlay, or nil.
func (h *Host) Overlay() *Overlay {
	if len(h.overlays) == 0 {
		return nil
	}
	return h.overlays[len(h.overlays)-1]
}

func (h *Host) IME() native.IME { return h.ime }

// Keyboard returns the simulated soft keyboard.
func (h *Host) Keyboard() *IME { return h.ime }

func (h *Host) Orientation() native.Orientation { return h.orientation }

// Size returns the screen size.
func (h *Host) Size() image.Point { return h.size }

// WatchLayout registers fn for layout passes.
func (h *Host) WatchLayout(fn native.LayoutFunc) func() {
	id := h.nextWatcher
	h.nextWatcher++
	h.watchers[id] = fn
	return func() { delete(h.watchers, id) }
}

// Watchers returns the number of registered layout callbacks.
func (h *Host) Watchers() int { return len(h.watchers) }

// Layout runs a layout pass with the given visible frame and orientation.
func (h *Host) Layout(frame image.Rectangle, o native.Orientation) {
	h.orientation = o
	ids := make([]int, 0, len(h.watchers))
	for id := range h.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := h.watchers[id]; ok {
			fn(frame, o)
		}
	}
}

// ShowKeyboard runs a layout pass with the bottom height pixels of the
// screen covered.
func (h *Host) ShowKeyboard(height int) {
	h.Layout(image.Rect(0, 0, h.size.X, h.size.Y-height), h.orientation)
}

// Rotate swaps the screen dimensions and runs a layout pass.
func (h *Host) Rotate() {
	h.size = image.Point{X: h.size.Y, Y: h.size.X}
	h.Layout(image.Rectangle{Max: h.size}, orientationOf(h.size))
}

// SetResourceLocale implements native.LocaleConfigurer.
func (h *Host) SetResourceLocale(tag string) { h.resourceLocale = tag }

// ResourceLocale returns the last locale set through SetResourceLocale.
func (h *Host) ResourceLocale() string { return h.resourceLocale }

func (h *Host) NavigationBarHeight() int { return h.navHeight }

func (h *Host) NavigationBarType() int { return h.navType }

func (h *Host) RotationLocked() bool { return h.rotationLocked }

func (h *Host) hasFont(asset string) bool {
	return slices.Contains(h.fonts, asset)
}

// Overlay is a simulated full-size container.
type Overlay struct {
	host     *Host
	attached bool
	children []*Control
	focused  *Control
}

func (o *Overlay) Size() image.Point { return o.host.size }

// Attached reports whether the overlay is still on screen.
func (o *Overlay) Attached() bool { return o.attached }

func (o *Overlay) NewControl(id int) native.Control {
	c := &Control{
		id:            id,
		overlay:       o,
		visible:       true,
		enabled:       true,
		clickable:     true,
		longClickable: true,
		cursorVisible: true,
		singleLine:    true,
		supportsTint:  !o.host.noCaretTint,
	}
	if o.host.legacyLocale {
		return c
	}
	return &localeControl{Control: c}
}

func (o *Overlay) Add(nc native.Control) {
	c := unwrap(nc)
	if c == nil || slices.Contains(o.children, c) {
		return
	}
	c.parent = o
	o.children = append(o.children, c)
}

func (o *Overlay) Remove(nc native.Control) {
	c := unwrap(nc)
	if c == nil {
		return
	}
	o.children = slices.DeleteFunc(o.children, func(x *Control) bool { return x == c })
	c.parent = nil
	if o.focused == c {
		o.focused = nil
		c.focused = false
	}
}

// Children returns the attached controls in z-order, bottom first.
func (o *Overlay) Children() []*Control { return slices.Clone(o.children) }

// Find returns the attached control with the given id.
func (o *Overlay) Find(id int) *Control {
	for _, c := range o.children {
		if c.id == id {
			return c
		}
	}
	return nil
}

// Focused returns the control holding focus, or nil.
func (o *Overlay) Focused() *Control { return o.focused }

func (o *Overlay) bringToFront(c *Control) {
	i := slices.Index(o.children, c)
	if i < 0 {
		return
	}
	o.children = append(slices.Delete(o.children, i, i+1), c)
}

func unwrap(c native.Control) *Control {
	switch c := c.(type) {
	case *Control:
		return c
	case *localeControl:
		return c.Control
	}
	return nil
}

// IME is a simulated soft keyboard.
type IME struct {
	host     *Host
	shown    bool
	target   *Control
	log      []string
	restarts int
}

func (k *IME) Show(nc native.Control) {
	k.shown = true
	k.target = unwrap(nc)
	k.record("show", k.target)
}

func (k *IME) Hide(nc native.Control) {
	k.shown = false
	k.target = nil
	k.record("hide", unwrap(nc))
}

func (k *IME) Restart(nc native.Control) {
	k.restarts++
	k.record("restart", unwrap(nc))
}

func (k *IME) record(op string, c *Control) {
	id := -1
	if c != nil {
		id = c.id
	}
	k.log = append(k.log, fmt.Sprintf("%s:%d", op, id))
}

// Shown reports whether the keyboard is visible.
func (k *IME) Shown() bool { return k.shown }

// Target returns the control the keyboard was last shown for.
func (k *IME) Target() *Control { return k.target }

// Log returns the keyboard operations in order, formatted as "op:id".
func (k *IME) Log() []string { return slices.Clone(k.log) }

// Count returns how many times op was performed.
func (k *IME) Count(op string) int {
	n := 0
	for _, e := range k.log {
		if len(e) > len(op) && e[:len(op)] == op && e[len(op)] == ':' {
			n++
		}
	}
	return n
}

// Restarts returns how many times input was restarted.
func (k *IME) Restarts() int { return k.restarts }

// Reset clears the operation log.
func (k *IME) Reset() {
	k.log = nil
	k.restarts = 0
}
