package headless

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"mobileinput/internal/native"
)

// Control is a simulated text input.
type Control struct {
	id       int
	overlay  *Overlay
	parent   *Overlay
	listener native.Listener

	text       string
	hint       string
	singleLine bool
	bounds     image.Rectangle

	inputType  native.InputType
	imeOptions native.IMEOptions
	gravity    native.Gravity

	textSize   float64
	textColor  color.NRGBA
	hintColor  color.NRGBA
	background color.NRGBA
	highlight  color.NRGBA
	font       string

	focused       bool
	visible       bool
	enabled       bool
	clickable     bool
	longClickable bool
	cursorVisible bool

	supportsTint bool
	caretTint    *color.NRGBA
	keys         []native.KeyCode
}

func (c *Control) String() string { return fmt.Sprintf("headless.Control(%d)", c.id) }

// ID returns the id the control was allocated for.
func (c *Control) ID() int { return c.id }

// Attached reports whether the control is in an overlay.
func (c *Control) Attached() bool { return c.parent != nil }

func (c *Control) SetListener(l native.Listener) { c.listener = l }

// SetText replaces the text. Like a platform text watcher, the listener sees
// programmatic changes too.
func (c *Control) SetText(text string) {
	c.text = text
	if c.listener != nil {
		c.listener.OnTextChanged(text)
	}
}

func (c *Control) Text() string { return c.text }

func (c *Control) SetHint(hint string) { c.hint = hint }

func (c *Control) Hint() string { return c.hint }

func (c *Control) SetSingleLine(single bool) { c.singleLine = single }

func (c *Control) SingleLine() bool { return c.singleLine }

func (c *Control) SetBounds(r image.Rectangle) { c.bounds = r }

func (c *Control) Bounds() image.Rectangle { return c.bounds }

func (c *Control) SetInputType(t native.InputType) { c.inputType = t }

func (c *Control) InputType() native.InputType { return c.inputType }

func (c *Control) SetIMEOptions(o native.IMEOptions) { c.imeOptions = o }

func (c *Control) IMEOptions() native.IMEOptions { return c.imeOptions }

func (c *Control) SetGravity(g native.Gravity) { c.gravity = g }

func (c *Control) Gravity() native.Gravity { return c.gravity }

func (c *Control) SetTextSize(px float64) { c.textSize = px }

func (c *Control) TextSize() float64 { return c.textSize }

func (c *Control) SetTextColor(col color.NRGBA) { c.textColor = col }

func (c *Control) TextColor() color.NRGBA { return c.textColor }

func (c *Control) SetHintTextColor(col color.NRGBA) { c.hintColor = col }

func (c *Control) HintTextColor() color.NRGBA { return c.hintColor }

func (c *Control) SetBackgroundColor(col color.NRGBA) { c.background = col }

func (c *Control) BackgroundColor() color.NRGBA { return c.background }

func (c *Control) SetHighlightColor(col color.NRGBA) { c.highlight = col }

func (c *Control) HighlightColor() color.NRGBA { return c.highlight }

// SetFont loads asset. Only assets registered with WithFonts load.
func (c *Control) SetFont(asset string) error {
	if asset != "" && !c.overlay.host.hasFont(asset) {
		return fmt.Errorf("headless: font asset %q not found", asset)
	}
	c.font = asset
	return nil
}

// Font returns the loaded font asset, "" for the system face.
func (c *Control) Font() string { return c.font }

// RequestFocus moves focus to the control. The previous owner loses focus
// before the control's own callback runs, but the control is already marked
// focused when the previous owner is notified.
func (c *Control) RequestFocus() {
	if c.parent == nil || !c.visible || c.focused {
		return
	}
	prev := c.overlay.focused
	c.focused = true
	c.overlay.focused = c
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

func (c *Control) ClearFocus() {
	if !c.focused {
		return
	}
	c.focused = false
	if c.overlay.focused == c {
		c.overlay.focused = nil
	}
	if c.listener != nil {
		c.listener.OnFocusChanged(false)
	}
}

func (c *Control) IsFocused() bool { return c.focused }

func (c *Control) SetVisible(visible bool) { c.visible = visible }

func (c *Control) IsVisible() bool { return c.visible }

func (c *Control) SetEnabled(enabled bool) { c.enabled = enabled }

func (c *Control) Enabled() bool { return c.enabled }

func (c *Control) BringToFront() {
	if c.parent != nil {
		c.parent.bringToFront(c)
	}
}

func (c *Control) SetClickable(clickable bool) { c.clickable = clickable }

func (c *Control) Clickable() bool { return c.clickable }

func (c *Control) SetLongClickable(clickable bool) { c.longClickable = clickable }

func (c *Control) LongClickable() bool { return c.longClickable }

func (c *Control) SetCursorVisible(visible bool) { c.cursorVisible = visible }

func (c *Control) CursorVisible() bool { return c.cursorVisible }

// Interactive reports whether a user could edit the control.
func (c *Control) Interactive() bool {
	return c.inputType != native.TypeNull && c.clickable && c.enabled && c.visible
}

// KeyDown applies a synthesized key press.
func (c *Control) KeyDown(code native.KeyCode) {
	c.keys = append(c.keys, code)
	switch {
	case code == native.KeyCodeDel:
		r := []rune(c.text)
		if len(r) > 0 {
			c.SetText(string(r[:len(r)-1]))
		}
	case code == native.KeyCodeEnter:
		if c.singleLine {
			c.Submit()
			return
		}
		c.SetText(c.text + "\n")
	case code >= native.KeyCode0 && code <= native.KeyCode9:
		c.SetText(c.text + string(rune('0'+int(code-native.KeyCode0))))
	}
}

// Keys returns the synthesized key codes in order.
func (c *Control) Keys() []native.KeyCode { return slices.Clone(c.keys) }

// Type simulates the user inserting s at the end of the text as one edit.
func (c *Control) Type(s string) {
	c.SetText(c.text + s)
}

// TypeRunes simulates typing s one character at a time.
func (c *Control) TypeRunes(s string) {
	for _, r := range s {
		c.Type(string(r))
	}
}

// Submit simulates the IME action key and reports whether it was consumed.
func (c *Control) Submit() bool {
	if c.listener == nil {
		return false
	}
	return c.listener.OnEditorAction(c.imeOptions.Action())
}

func (c *Control) SupportsCaretTint() bool { return c.supportsTint }

func (c *Control) SetCaretTint(col color.NRGBA) {
	if c.supportsTint {
		c.caretTint = &col
	}
}

// CaretTint returns the caret colour, if one was set.
func (c *Control) CaretTint() (color.NRGBA, bool) {
	if c.caretTint == nil {
		return color.NRGBA{}, false
	}
	return *c.caretTint, true
}

// localeControl is a control on a platform that supports IME hint locales.
type localeControl struct {
	*Control
	locales []string
}

func (c *localeControl) IMEHintLocales() []string { return slices.Clone(c.locales) }

func (c *localeControl) SetIMEHintLocales(tags []string) { c.locales = slices.Clone(tags) }

// HintLocales returns the IME hint locales of nc, or nil when nc does not
// support them.
func HintLocales(nc native.Control) []string {
	if lc, ok := nc.(*localeControl); ok {
		return lc.IMEHintLocales()
	}
	return nil
}

// Unwrap returns the simulated control behind nc.
func Unwrap(nc native.Control) *Control { return unwrap(nc) }
