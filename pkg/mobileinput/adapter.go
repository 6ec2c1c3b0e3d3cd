package mobileinput

import (
	"image"
	"image/color"
	"strings"

	"mobileinput/internal/native"
)

// Events forwards view callbacks to the plugin. The platform calls its
// methods on the UI thread.
type Events struct {
	l native.Listener
}

// TextChanged is called by the view after every edit.
func (e *Events) TextChanged(text string) {
	if e != nil && e.l != nil {
		e.l.OnTextChanged(text)
	}
}

// FocusChanged is called by the view when it gains or loses focus.
func (e *Events) FocusChanged(focused bool) {
	if e != nil && e.l != nil {
		e.l.OnFocusChanged(focused)
	}
}

// EditorAction reports an IME action key press and whether the plugin
// consumed it.
func (e *Events) EditorAction(action int) bool {
	if e == nil || e.l == nil {
		return false
	}
	return e.l.OnEditorAction(native.EditorAction(action))
}

func argb(c color.NRGBA) int32 {
	return int32(uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// host adapts a Platform to native.Host.
type host struct {
	p        Platform
	watchers map[int]native.LayoutFunc
	next     int
}

func newHost(p Platform) *host {
	return &host{p: p, watchers: make(map[int]native.LayoutFunc)}
}

func (h *host) Post(fn func()) bool {
	h.p.RunOnUIThread(task(fn))
	return true
}

type task func()

func (t task) Run() { t() }

func (h *host) AttachOverlay() (native.Overlay, error) {
	if err := h.p.AttachLayout(); err != nil {
		return nil, err
	}
	return &overlay{p: h.p}, nil
}

func (h *host) DetachOverlay(native.Overlay) { h.p.DetachLayout() }

func (h *host) IME() native.IME { return ime{h.p} }

func (h *host) Orientation() native.Orientation {
	return native.Orientation(h.p.Orientation())
}

func (h *host) WatchLayout(fn native.LayoutFunc) func() {
	id := h.next
	h.next++
	h.watchers[id] = fn
	return func() { delete(h.watchers, id) }
}

func (h *host) layout(frame image.Rectangle, o native.Orientation) {
	for id := range h.next {
		if fn, ok := h.watchers[id]; ok {
			fn(frame, o)
		}
	}
}

func (h *host) NavigationBarHeight() int { return h.p.NavigationBarHeight() }

func (h *host) NavigationBarType() int { return h.p.NavigationBarType() }

func (h *host) RotationLocked() bool { return h.p.RotationLocked() }

func (h *host) SetResourceLocale(tag string) { h.p.SetResourceLocale(tag) }

type ime struct{ p Platform }

func (k ime) Show(c native.Control) { k.p.ShowKeyboard(viewOf(c)) }

func (k ime) Hide(c native.Control) { k.p.HideKeyboard(viewOf(c)) }

func (k ime) Restart(c native.Control) { k.p.RestartInput(viewOf(c)) }

func viewOf(c native.Control) View {
	switch c := c.(type) {
	case *control:
		return c.v
	case *localeControl:
		return c.v
	}
	return nil
}

type overlay struct{ p Platform }

func (o *overlay) Size() image.Point {
	return image.Pt(o.p.LayoutWidth(), o.p.LayoutHeight())
}

func (o *overlay) NewControl(id int) native.Control {
	c := &control{v: o.p.NewView(id), visible: true}
	if c.v.SupportsHintLocales() {
		return &localeControl{c}
	}
	return c
}

func (o *overlay) Add(c native.Control) { o.p.AddView(viewOf(c)) }

func (o *overlay) Remove(c native.Control) { o.p.RemoveView(viewOf(c)) }

// control adapts a View to native.Control. Values the View cannot report
// back are cached.
type control struct {
	v         View
	bounds    image.Rectangle
	inputType native.InputType
	visible   bool
}

func (c *control) SetListener(l native.Listener) {
	if l == nil {
		c.v.SetEvents(nil)
		return
	}
	c.v.SetEvents(&Events{l: l})
}

func (c *control) SetText(text string) { c.v.SetText(text) }

func (c *control) Text() string { return c.v.Text() }

func (c *control) SetHint(hint string) { c.v.SetHint(hint) }

func (c *control) SetSingleLine(single bool) { c.v.SetSingleLine(single) }

func (c *control) SetBounds(r image.Rectangle) {
	c.bounds = r
	c.v.SetBounds(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

func (c *control) Bounds() image.Rectangle { return c.bounds }

func (c *control) SetInputType(t native.InputType) {
	c.inputType = t
	c.v.SetInputType(int(t))
}

func (c *control) InputType() native.InputType { return c.inputType }

func (c *control) SetIMEOptions(o native.IMEOptions) { c.v.SetIMEOptions(int(o)) }

func (c *control) SetGravity(g native.Gravity) { c.v.SetGravity(int(g)) }

func (c *control) SetTextSize(px float64) { c.v.SetTextSize(px) }

func (c *control) SetTextColor(col color.NRGBA) { c.v.SetTextColor(argb(col)) }

func (c *control) SetHintTextColor(col color.NRGBA) { c.v.SetHintTextColor(argb(col)) }

func (c *control) SetBackgroundColor(col color.NRGBA) { c.v.SetBackgroundColor(argb(col)) }

func (c *control) SetHighlightColor(col color.NRGBA) { c.v.SetHighlightColor(argb(col)) }

func (c *control) SetFont(asset string) error { return c.v.SetFont(asset) }

func (c *control) RequestFocus() { c.v.RequestFocus() }

func (c *control) ClearFocus() { c.v.ClearFocus() }

func (c *control) IsFocused() bool { return c.v.IsFocused() }

func (c *control) SetVisible(visible bool) {
	c.visible = visible
	c.v.SetVisible(visible)
}

func (c *control) IsVisible() bool { return c.visible }

func (c *control) SetEnabled(enabled bool) { c.v.SetEnabled(enabled) }

func (c *control) BringToFront() { c.v.BringToFront() }

func (c *control) SetClickable(clickable bool) { c.v.SetClickable(clickable) }

func (c *control) SetLongClickable(clickable bool) { c.v.SetLongClickable(clickable) }

func (c *control) SetCursorVisible(visible bool) { c.v.SetCursorVisible(visible) }

func (c *control) KeyDown(code native.KeyCode) { c.v.KeyDown(int(code)) }

func (c *control) SupportsCaretTint() bool { return c.v.SupportsCaretTint() }

func (c *control) SetCaretTint(col color.NRGBA) { c.v.SetCaretTint(argb(col)) }

type localeControl struct{ *control }

func (c *localeControl) IMEHintLocales() []string {
	s := c.v.IMEHintLocales()
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (c *localeControl) SetIMEHintLocales(tags []string) {
	c.v.SetIMEHintLocales(strings.Join(tags, ","))
}
