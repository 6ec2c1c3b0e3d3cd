// Package giokit implements internal/native on top of Gio for desktop
// previews.
//
// The goroutine running the window's event loop is the UI thread. Work posted
// from elsewhere runs at the start of the next frame. Focus and soft keyboard
// requests are recorded immediately and handed to Gio during that frame.
package giokit

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/font/opentype"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget/material"

	"mobileinput/internal/logging"
	"mobileinput/internal/native"
)

// Invalidator asks the window for a new frame. *app.Window implements it.
type Invalidator interface {
	Invalidate()
}

// Options configures a Host.
type Options struct {
	// FontDir is searched for font assets. Empty means no custom fonts.
	FontDir string

	// KeyboardFraction is the share of the window height covered by the
	// simulated soft keyboard while it is shown. Zero disables it.
	KeyboardFraction float64

	// KeyboardColor paints the simulated keyboard.
	KeyboardColor color.NRGBA

	Log *logging.Logger
}

// Host is a Gio window acting as the platform.
type Host struct {
	win  Invalidator
	opts Options
	log  *logging.Logger

	mu    sync.Mutex
	tasks []func()

	// UI thread only.
	theme       *material.Theme
	fonts       map[string]font.Typeface
	size        image.Point
	orientation native.Orientation
	overlays    []*Overlay
	watchers    map[int]native.LayoutFunc
	nextWatcher int
	ime         *IME
	focusOwner  *Control
	focusCmd    bool
}

// NewHost creates a host for win and loads the fonts in opts.FontDir.
func NewHost(win Invalidator, opts Options) (*Host, error) {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	h := &Host{
		win:         win,
		opts:        opts,
		log:         log.WithComponent("giokit"),
		fonts:       make(map[string]font.Typeface),
		watchers:    make(map[int]native.LayoutFunc),
		orientation: native.OrientationPortrait,
	}
	h.ime = &IME{host: h}

	collection := gofont.Collection()
	if opts.FontDir != "" {
		faces, err := h.loadFonts(opts.FontDir)
		if err != nil {
			return nil, err
		}
		collection = append(collection, faces...)
	}
	h.theme = material.NewTheme()
	h.theme.Shaper = text.NewShaper(text.NoSystemFonts(), text.WithCollection(collection))
	return h, nil
}

func (h *Host) loadFonts(dir string) ([]font.FontFace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read font dir: %w", err)
	}
	var all []font.FontFace
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf" && ext != ".ttc") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", e.Name(), err)
		}
		faces, err := opentype.ParseCollection(data)
		if err != nil {
			h.log.Warn("skipping unreadable font", "file", e.Name(), "error", err)
			continue
		}
		if len(faces) > 0 {
			h.fonts[e.Name()] = faces[0].Font.Typeface
			all = append(all, faces...)
		}
	}
	h.log.Debug("fonts loaded", "count", len(h.fonts))
	return all, nil
}

// Post queues task for the UI thread and wakes the window. It implements
// the plugin scheduler.
func (h *Host) Post(task func()) bool {
	h.mu.Lock()
	h.tasks = append(h.tasks, task)
	h.mu.Unlock()
	if h.win != nil {
		h.win.Invalidate()
	}
	return true
}

// RunPending runs the queued tasks. Layout calls it at the start of every
// frame.
func (h *Host) RunPending() {
	h.mu.Lock()
	tasks := h.tasks
	h.tasks = nil
	h.mu.Unlock()
	for _, task := range tasks {
		func() {
			defer logging.Recover(h.log, "giokit task", nil)
			task()
		}()
	}
}

func (h *Host) AttachOverlay() (native.Overlay, error) {
	o := &Overlay{host: h}
	h.overlays = append(h.overlays, o)
	return o, nil
}

func (h *Host) DetachOverlay(no native.Overlay) {
	o, ok := no.(*Overlay)
	if !ok {
		return
	}
	h.overlays = slices.DeleteFunc(h.overlays, func(x *Overlay) bool { return x == o })
	if h.focusOwner != nil && h.focusOwner.overlay == o {
		h.focusOwner.focused = false
		h.focusOwner = nil
		h.focusCmd = true
	}
}

func (h *Host) IME() native.IME { return h.ime }

func (h *Host) Orientation() native.Orientation { return h.orientation }

func (h *Host) WatchLayout(fn native.LayoutFunc) func() {
	id := h.nextWatcher
	h.nextWatcher++
	h.watchers[id] = fn
	return func() { delete(h.watchers, id) }
}

// Keyboard returns the soft keyboard.
func (h *Host) Keyboard() *IME { return h.ime }

// Theme returns the material theme used for controls.
func (h *Host) Theme() *material.Theme { return h.theme }

// Layout draws one frame. insetBottom is the part of the window, in pixels,
// the platform reports as covered at the bottom.
func (h *Host) Layout(gtx layout.Context, insetBottom int) layout.Dimensions {
	h.RunPending()

	h.size = gtx.Constraints.Max
	h.orientation = orientationOf(h.size)

	if h.focusCmd {
		h.focusCmd = false
		if h.focusOwner != nil {
			gtx.Execute(key.FocusCmd{Tag: &h.focusOwner.editor})
		} else {
			gtx.Execute(key.FocusCmd{Tag: nil})
		}
	} else {
		h.trackUserFocus(gtx)
	}
	if cmd, ok := h.ime.take(); ok {
		gtx.Execute(key.SoftKeyboardCmd{Show: cmd})
	}

	covered := max(insetBottom, h.simulatedKeyboard())
	frame := image.Rect(0, 0, h.size.X, h.size.Y-covered)
	h.notifyLayout(frame)

	for _, o := range h.overlays {
		o.layout(gtx)
	}
	if k := h.simulatedKeyboard(); k > 0 {
		r := image.Rect(0, h.size.Y-k, h.size.X, h.size.Y)
		paint.FillShape(gtx.Ops, h.opts.KeyboardColor, clip.Rect(r).Op())
	}
	return layout.Dimensions{Size: h.size}
}

func (h *Host) simulatedKeyboard() int {
	if !h.ime.shown || h.opts.KeyboardFraction <= 0 {
		return 0
	}
	return int(float64(h.size.Y) * h.opts.KeyboardFraction)
}

func (h *Host) notifyLayout(frame image.Rectangle) {
	ids := make([]int, 0, len(h.watchers))
	for id := range h.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := h.watchers[id]; ok {
			fn(frame, h.orientation)
		}
	}
}

// trackUserFocus picks up focus changes made by clicking into an editor.
func (h *Host) trackUserFocus(gtx layout.Context) {
	if !gtx.Source.Enabled() {
		return
	}
	for _, o := range h.overlays {
		for _, c := range o.children {
			if gtx.Focused(&c.editor) && !c.focused {
				h.moveFocus(c, false)
				return
			}
		}
	}
	if h.focusOwner != nil && !gtx.Focused(&h.focusOwner.editor) {
		h.clearFocus(h.focusOwner, false)
	}
}

func (h *Host) moveFocus(c *Control, command bool) {
	prev := h.focusOwner
	c.focused = true
	h.focusOwner = c
	h.focusCmd = h.focusCmd || command
	if prev != nil && prev != c {
		prev.focused = false
		if prev.listener != nil {
			prev.listener.OnFocusChanged(false)
		}
	}
	if c.listener != nil {
		c.listener.OnFocusChanged(true)
	}
}

func (h *Host) clearFocus(c *Control, command bool) {
	c.focused = false
	if h.focusOwner == c {
		h.focusOwner = nil
		h.focusCmd = h.focusCmd || command
	}
	if c.listener != nil {
		c.listener.OnFocusChanged(false)
	}
}

func orientationOf(size image.Point) native.Orientation {
	if size.X > size.Y {
		return native.OrientationLandscape
	}
	return native.OrientationPortrait
}

// Overlay holds the controls of one plugin instance.
type Overlay struct {
	host     *Host
	children []*Control
}

func (o *Overlay) Size() image.Point { return o.host.size }

func (o *Overlay) NewControl(id int) native.Control {
	return newControl(id, o)
}

func (o *Overlay) Add(nc native.Control) {
	c, ok := nc.(*Control)
	if !ok || slices.Contains(o.children, c) {
		return
	}
	c.attached = true
	o.children = append(o.children, c)
}

func (o *Overlay) Remove(nc native.Control) {
	c, ok := nc.(*Control)
	if !ok {
		return
	}
	o.children = slices.DeleteFunc(o.children, func(x *Control) bool { return x == c })
	c.attached = false
	if o.host.focusOwner == c {
		c.focused = false
		o.host.focusOwner = nil
		o.host.focusCmd = true
	}
}

func (o *Overlay) bringToFront(c *Control) {
	i := slices.Index(o.children, c)
	if i < 0 {
		return
	}
	o.children = append(slices.Delete(o.children, i, i+1), c)
}

func (o *Overlay) layout(gtx layout.Context) {
	for _, c := range o.children {
		c.layout(gtx)
	}
}

// IME records keyboard requests until the next frame.
type IME struct {
	host    *Host
	shown   bool
	pending *bool
}

func (k *IME) Show(native.Control) {
	k.shown = true
	k.pending = &k.shown
}

func (k *IME) Hide(native.Control) {
	k.shown = false
	k.pending = &k.shown
}

// Restart has nothing to reset in Gio; the editor reads its input hint on
// every frame.
func (k *IME) Restart(native.Control) {}

// Shown reports whether the keyboard was last requested shown.
func (k *IME) Shown() bool { return k.shown }

func (k *IME) take() (bool, bool) {
	if k.pending == nil {
		return false, false
	}
	show := *k.pending
	k.pending = nil
	return show, true
}
