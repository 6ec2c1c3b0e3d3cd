package giokit

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"mobileinput/internal/native"
)

const passwordMask = '•'

// Control is a text input backed by a Gio editor.
type Control struct {
	id       int
	overlay  *Overlay
	listener native.Listener
	editor   widget.Editor

	// text is the content last reported to the listener.
	text       string
	hint       string
	bounds     image.Rectangle
	inputType  native.InputType
	imeOptions native.IMEOptions
	gravity    native.Gravity
	textSize   float64
	textColor  color.NRGBA
	hintColor  color.NRGBA
	background color.NRGBA
	highlight  color.NRGBA
	typeface   font.Typeface

	attached  bool
	focused   bool
	visible   bool
	enabled   bool
	clickable bool
}

func newControl(id int, o *Overlay) *Control {
	c := &Control{
		id:        id,
		overlay:   o,
		visible:   true,
		enabled:   true,
		clickable: true,
		inputType: native.TypeClassText,
		textColor: native.Black,
		hintColor: native.Gray,
	}
	c.editor.SingleLine = true
	c.editor.Submit = true
	return c
}

func (c *Control) String() string { return fmt.Sprintf("giokit.Control(%d)", c.id) }

func (c *Control) SetListener(l native.Listener) { c.listener = l }

func (c *Control) SetText(s string) {
	c.editor.SetText(s)
	c.text = s
	if c.listener != nil {
		c.listener.OnTextChanged(s)
	}
}

func (c *Control) Text() string { return c.text }

func (c *Control) SetHint(hint string) { c.hint = hint }

func (c *Control) SetSingleLine(single bool) {
	c.editor.SingleLine = single
	c.editor.Submit = single
}

func (c *Control) SetBounds(r image.Rectangle) { c.bounds = r }

func (c *Control) Bounds() image.Rectangle { return c.bounds }

func (c *Control) SetInputType(t native.InputType) {
	c.inputType = t
	c.editor.ReadOnly = t == native.TypeNull || !c.clickable
	c.editor.InputHint = inputHint(t)
	if t.IsPassword() {
		c.editor.Mask = passwordMask
	} else {
		c.editor.Mask = 0
	}
}

func (c *Control) InputType() native.InputType { return c.inputType }

func (c *Control) SetIMEOptions(o native.IMEOptions) { c.imeOptions = o }

func (c *Control) SetGravity(g native.Gravity) {
	c.gravity = g
	c.editor.Alignment = alignment(g)
}

func (c *Control) SetTextSize(px float64) { c.textSize = px }

func (c *Control) SetTextColor(col color.NRGBA) { c.textColor = col }

func (c *Control) SetHintTextColor(col color.NRGBA) { c.hintColor = col }

func (c *Control) SetBackgroundColor(col color.NRGBA) { c.background = col }

func (c *Control) SetHighlightColor(col color.NRGBA) { c.highlight = col }

// SetFont selects a font loaded from the host's font directory.
func (c *Control) SetFont(asset string) error {
	if asset == "" {
		c.typeface = ""
		return nil
	}
	tf, ok := c.overlay.host.fonts[asset]
	if !ok {
		return fmt.Errorf("giokit: font asset %q not loaded", asset)
	}
	c.typeface = tf
	return nil
}

func (c *Control) RequestFocus() {
	if !c.attached || !c.visible || c.focused {
		return
	}
	c.overlay.host.moveFocus(c, true)
}

func (c *Control) ClearFocus() {
	if !c.focused {
		return
	}
	c.overlay.host.clearFocus(c, true)
}

func (c *Control) IsFocused() bool { return c.focused }

func (c *Control) SetVisible(visible bool) { c.visible = visible }

func (c *Control) IsVisible() bool { return c.visible }

func (c *Control) SetEnabled(enabled bool) { c.enabled = enabled }

func (c *Control) BringToFront() {
	if c.attached {
		c.overlay.bringToFront(c)
	}
}

func (c *Control) SetClickable(clickable bool) {
	c.clickable = clickable
	c.editor.ReadOnly = c.inputType == native.TypeNull || !clickable
}

// SetLongClickable is a no-op; Gio editors have no context menu.
func (c *Control) SetLongClickable(bool) {}

// SetCursorVisible is a no-op; read-only Gio editors hide the caret.
func (c *Control) SetCursorVisible(bool) {}

// KeyDown edits at the caret like a hardware key press.
func (c *Control) KeyDown(code native.KeyCode) {
	switch {
	case code == native.KeyCodeDel:
		start, end := c.editor.Selection()
		if start > end {
			start, end = end, start
		}
		if start == end {
			if start == 0 {
				return
			}
			start--
		}
		r := []rune(c.editor.Text())
		c.editor.SetText(string(r[:start]) + string(r[end:]))
		c.editor.SetCaret(start, start)
	case code == native.KeyCodeEnter:
		if c.editor.SingleLine {
			c.submit()
			return
		}
		c.editor.Insert("\n")
	case code >= native.KeyCode0 && code <= native.KeyCode9:
		c.editor.Insert(string(rune('0' + int(code-native.KeyCode0))))
	default:
		return
	}
	c.sync()
}

func (c *Control) submit() bool {
	if c.listener == nil {
		return false
	}
	return c.listener.OnEditorAction(c.imeOptions.Action())
}

// sync reports edits made inside the editor.
func (c *Control) sync() {
	s := c.editor.Text()
	if s == c.text {
		return
	}
	c.text = s
	if c.listener != nil {
		c.listener.OnTextChanged(s)
	}
}

func (c *Control) poll(gtx layout.Context) {
	for {
		ev, ok := c.editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			c.submit()
		}
	}
	c.sync()
}

func (c *Control) layout(gtx layout.Context) {
	if !c.visible || c.bounds.Empty() {
		return
	}
	c.poll(gtx)

	size := c.bounds.Size()
	defer op.Offset(c.bounds.Min).Push(gtx.Ops).Pop()
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, c.background)

	gtx.Constraints = layout.Exact(size)
	if !c.enabled {
		gtx = gtx.Disabled()
	}
	st := material.Editor(c.overlay.host.theme, &c.editor, c.hint)
	st.Font.Typeface = c.typeface
	if c.textSize > 0 && gtx.Metric.PxPerSp > 0 {
		st.TextSize = unit.Sp(float32(c.textSize) / gtx.Metric.PxPerSp)
	}
	st.Color = c.textColor
	st.HintColor = c.hintColor
	st.SelectionColor = c.highlight
	direction(c.gravity).Layout(gtx, st.Layout)
}

func inputHint(t native.InputType) key.InputHint {
	if t.IsPassword() {
		return key.HintPassword
	}
	switch t.Class() {
	case native.TypeClassNumber:
		return key.HintNumeric
	case native.TypeClassPhone:
		return key.HintTelephone
	case native.TypeClassText:
		switch t & 0xff0 {
		case native.TypeTextVariationEmailAddress:
			return key.HintEmail
		case native.TypeTextVariationURI:
			return key.HintURL
		}
		return key.HintText
	}
	return key.HintAny
}

func alignment(g native.Gravity) text.Alignment {
	switch g.Horizontal() {
	case native.GravityRight:
		return text.End
	case native.GravityCenterHorizontal:
		return text.Middle
	}
	return text.Start
}

func direction(g native.Gravity) layout.Direction {
	switch g.Vertical() {
	case native.GravityTop:
		return layout.N
	case native.GravityBottom:
		return layout.S
	}
	return layout.Center
}
