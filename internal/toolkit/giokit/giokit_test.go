package giokit

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"mobileinput/internal/native"
)

type listener struct {
	events []string
	action native.EditorAction
}

func (l *listener) OnTextChanged(s string) { l.events = append(l.events, "text:"+s) }

func (l *listener) OnFocusChanged(f bool) { l.events = append(l.events, fmt.Sprintf("focus:%v", f)) }

func (l *listener) OnEditorAction(a native.EditorAction) bool {
	l.action = a
	l.events = append(l.events, "action")
	return true
}

type counter int

func (c *counter) Invalidate() { *c++ }

func newHost(t *testing.T, opts Options) *Host {
	t.Helper()
	h, err := NewHost(nil, opts)
	require.NoError(t, err)
	return h
}

func addControl(t *testing.T, h *Host, id int) (*Control, *listener) {
	t.Helper()
	ov, err := h.AttachOverlay()
	require.NoError(t, err)
	c := ov.NewControl(id).(*Control)
	l := &listener{}
	c.SetListener(l)
	ov.Add(c)
	return c, l
}

func frame(size image.Point) layout.Context {
	return layout.Context{
		Ops:         new(op.Ops),
		Constraints: layout.Exact(size),
		Metric:      unit.Metric{PxPerDp: 1, PxPerSp: 1},
	}
}

func TestPostRunsOnNextFrame(t *testing.T) {
	var inv counter
	h, err := NewHost(&inv, Options{})
	require.NoError(t, err)

	var got []int
	for i := range 3 {
		assert.True(t, h.Post(func() { got = append(got, i) }))
	}
	assert.Equal(t, counter(3), inv)
	assert.Empty(t, got)

	h.Layout(frame(image.Pt(100, 200)), 0)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestPanickingTaskDoesNotStopFrame(t *testing.T) {
	h := newHost(t, Options{})
	ran := false
	h.Post(func() { panic("boom") })
	h.Post(func() { ran = true })
	h.RunPending()
	assert.True(t, ran)
}

func TestFocusHandOver(t *testing.T) {
	h := newHost(t, Options{})
	ov, err := h.AttachOverlay()
	require.NoError(t, err)
	a, b := ov.NewControl(1).(*Control), ov.NewControl(2).(*Control)
	la, lb := &listener{}, &listener{}
	a.SetListener(la)
	b.SetListener(lb)
	ov.Add(a)
	ov.Add(b)

	a.RequestFocus()
	assert.True(t, a.IsFocused())
	assert.Equal(t, []string{"focus:true"}, la.events)

	var sawB bool
	la.events = nil
	a.SetListener(listenerFunc(func() { sawB = b.IsFocused() }))
	b.RequestFocus()
	assert.True(t, sawB, "new owner is focused before the old one is told")
	assert.False(t, a.IsFocused())
	assert.Equal(t, []string{"focus:true"}, lb.events)
	assert.True(t, h.focusCmd)

	h.Layout(frame(image.Pt(100, 200)), 0)
	assert.False(t, h.focusCmd)

	b.ClearFocus()
	assert.Equal(t, []string{"focus:true", "focus:false"}, lb.events)
	assert.Nil(t, h.focusOwner)
}

type listenerFunc func()

func (f listenerFunc) OnTextChanged(string) {}

func (f listenerFunc) OnFocusChanged(focused bool) {
	if !focused {
		f()
	}
}

func (f listenerFunc) OnEditorAction(native.EditorAction) bool { return false }

func TestFocusRequiresAttachedVisible(t *testing.T) {
	h := newHost(t, Options{})
	ov, err := h.AttachOverlay()
	require.NoError(t, err)
	c := ov.NewControl(1).(*Control)
	c.RequestFocus()
	assert.False(t, c.IsFocused())

	ov.Add(c)
	c.SetVisible(false)
	c.RequestFocus()
	assert.False(t, c.IsFocused())

	c.SetVisible(true)
	c.RequestFocus()
	assert.True(t, c.IsFocused())

	ov.Remove(c)
	assert.False(t, c.IsFocused())
	assert.Nil(t, h.focusOwner)
}

func TestSetTextNotifies(t *testing.T) {
	h := newHost(t, Options{})
	c, l := addControl(t, h, 1)
	c.SetText("abc")
	assert.Equal(t, "abc", c.Text())
	assert.Equal(t, "abc", c.editor.Text())
	assert.Equal(t, []string{"text:abc"}, l.events)
}

func TestKeyDown(t *testing.T) {
	h := newHost(t, Options{})
	c, l := addControl(t, h, 1)
	c.SetSingleLine(false)

	c.KeyDown(native.KeyCode0 + 1)
	c.KeyDown(native.KeyCode0 + 2)
	assert.Equal(t, "12", c.Text())
	c.KeyDown(native.KeyCodeDel)
	assert.Equal(t, "1", c.Text())
	c.KeyDown(native.KeyCodeEnter)
	assert.Equal(t, "1\n", c.Text())
	assert.Equal(t, []string{"text:1", "text:12", "text:1", "text:1\n"}, l.events)

	c.SetSingleLine(true)
	c.SetIMEOptions(native.IMEFlagNoExtractUI | native.IMEActionSearch)
	l.events = nil
	c.KeyDown(native.KeyCodeEnter)
	assert.Equal(t, []string{"action"}, l.events)
	assert.Equal(t, native.ActionSearch, l.action)
}

func TestInputTypeMapping(t *testing.T) {
	h := newHost(t, Options{})
	c, _ := addControl(t, h, 1)

	c.SetInputType(native.TypeClassText | native.TypeTextVariationPassword)
	assert.Equal(t, passwordMask, c.editor.Mask)
	assert.Equal(t, key.HintPassword, c.editor.InputHint)
	assert.False(t, c.editor.ReadOnly)

	c.SetInputType(native.TypeClassText | native.TypeTextVariationEmailAddress)
	assert.Zero(t, c.editor.Mask)
	assert.Equal(t, key.HintEmail, c.editor.InputHint)

	c.SetInputType(native.TypeClassNumber | native.TypeNumberFlagDecimal)
	assert.Equal(t, key.HintNumeric, c.editor.InputHint)

	c.SetInputType(native.TypeNull)
	assert.True(t, c.editor.ReadOnly)
	assert.Equal(t, key.HintAny, c.editor.InputHint)

	c.SetInputType(native.TypeClassText)
	c.SetClickable(false)
	assert.True(t, c.editor.ReadOnly)
}

func TestGravity(t *testing.T) {
	assert.Equal(t, text.Start, alignment(native.GravityLeft|native.GravityCenterVertical))
	assert.Equal(t, text.Middle, alignment(native.GravityCenterHorizontal))
	assert.Equal(t, text.End, alignment(native.GravityRight|native.GravityTop))
	assert.Equal(t, layout.N, direction(native.GravityTop))
	assert.Equal(t, layout.S, direction(native.GravityBottom))
	assert.Equal(t, layout.Center, direction(0))
}

func TestBringToFront(t *testing.T) {
	h := newHost(t, Options{})
	ov, err := h.AttachOverlay()
	require.NoError(t, err)
	o := ov.(*Overlay)
	a, b := ov.NewControl(1), ov.NewControl(2)
	ov.Add(a)
	ov.Add(b)
	a.BringToFront()
	assert.Equal(t, []*Control{b.(*Control), a.(*Control)}, o.children)
}

func TestLayoutReportsVisibleFrame(t *testing.T) {
	h := newHost(t, Options{KeyboardFraction: 0.25})
	c, _ := addControl(t, h, 1)
	c.SetBounds(image.Rect(10, 10, 300, 60))
	c.SetText("hello")

	type call struct {
		frame image.Rectangle
		o     native.Orientation
	}
	var calls []call
	stop := h.WatchLayout(func(r image.Rectangle, o native.Orientation) { calls = append(calls, call{r, o}) })

	h.Layout(frame(image.Pt(400, 800)), 0)
	h.IME().Show(c)
	h.Layout(frame(image.Pt(400, 800)), 0)
	h.Layout(frame(image.Pt(400, 800)), 300)
	h.Layout(frame(image.Pt(800, 400)), 0)
	stop()
	h.Layout(frame(image.Pt(800, 400)), 0)

	require.Len(t, calls, 4)
	assert.Equal(t, call{image.Rect(0, 0, 400, 800), native.OrientationPortrait}, calls[0])
	assert.Equal(t, call{image.Rect(0, 0, 400, 600), native.OrientationPortrait}, calls[1])
	assert.Equal(t, call{image.Rect(0, 0, 400, 500), native.OrientationPortrait}, calls[2])
	assert.Equal(t, call{image.Rect(0, 0, 800, 300), native.OrientationLandscape}, calls[3])
	assert.Equal(t, native.OrientationLandscape, h.Orientation())
	assert.Equal(t, "hello", c.Text())
}

func TestDetachOverlayDropsFocus(t *testing.T) {
	h := newHost(t, Options{})
	c, _ := addControl(t, h, 1)
	c.RequestFocus()
	h.DetachOverlay(c.overlay)
	assert.Nil(t, h.focusOwner)
	assert.False(t, c.IsFocused())
}

func TestFonts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Go.ttf"), goregular.TTF, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("nope"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o600))

	h := newHost(t, Options{FontDir: dir})
	c, _ := addControl(t, h, 1)
	require.NoError(t, c.SetFont("Go.ttf"))
	assert.NotEmpty(t, c.typeface)
	assert.Error(t, c.SetFont("broken.ttf"))
	assert.Error(t, c.SetFont("missing.ttf"))
	require.NoError(t, c.SetFont(""))
	assert.Empty(t, c.typeface)

	_, err := NewHost(nil, Options{FontDir: filepath.Join(dir, "absent")})
	assert.Error(t, err)
}
