// Package native defines the boundary between the plugin core and the
// platform UI toolkit that actually owns the text-input views.
//
// The core never touches a view directly. Each toolkit (Android through the
// gomobile binding, the Gio desktop toolkit, the headless toolkit used in
// tests) implements Host, Overlay, Control and IME. Constant values mirror the
// Android framework so that bitmasks can cross the binding unchanged.
package native

import (
	"image"
	"image/color"
)

// Orientation is the screen orientation as reported by the host.
type Orientation int

const (
	OrientationUndefined Orientation = 0
	OrientationPortrait  Orientation = 1
	OrientationLandscape Orientation = 2
)

// String returns the name used on the wire.
func (o Orientation) String() string {
	if o == OrientationPortrait {
		return "PORTRAIT"
	}
	return "LANDSCAPE"
}

// EditorAction identifies the IME action key that was pressed.
type EditorAction int

const (
	ActionUnspecified EditorAction = 0
	ActionNone        EditorAction = 1
	ActionGo          EditorAction = 2
	ActionSearch      EditorAction = 3
	ActionSend        EditorAction = 4
	ActionNext        EditorAction = 5
	ActionDone        EditorAction = 6
)

// KeyCode is a platform key code for synthesized key-down events.
type KeyCode int

const (
	KeyCode0     KeyCode = 7
	KeyCode9     KeyCode = 16
	KeyCodeEnter KeyCode = 66
	KeyCodeDel   KeyCode = 67
)

// Listener receives the callbacks a native control produces.
// Toolkits invoke it on the UI thread.
type Listener interface {
	// OnTextChanged is called after every edit of the control's text,
	// including programmatic SetText calls.
	OnTextChanged(text string)

	// OnFocusChanged is called on every focus transition.
	OnFocusChanged(focused bool)

	// OnEditorAction is called when the IME action key is pressed.
	// Returning true consumes the action.
	OnEditorAction(action EditorAction) bool
}

// Control is one native single- or multi-line text input.
type Control interface {
	SetListener(l Listener)

	SetText(text string)
	Text() string
	SetHint(hint string)
	SetSingleLine(single bool)

	// SetBounds positions the control in overlay pixel coordinates.
	SetBounds(r image.Rectangle)
	Bounds() image.Rectangle

	SetInputType(t InputType)
	InputType() InputType
	SetIMEOptions(o IMEOptions)
	SetGravity(g Gravity)

	SetTextSize(px float64)
	SetTextColor(c color.NRGBA)
	SetHintTextColor(c color.NRGBA)
	SetBackgroundColor(c color.NRGBA)
	SetHighlightColor(c color.NRGBA)

	// SetFont loads the named font asset. An empty name selects the
	// system sans-serif face. Loading failures are returned.
	SetFont(asset string) error

	RequestFocus()
	ClearFocus()
	IsFocused() bool

	SetVisible(visible bool)
	IsVisible() bool
	SetEnabled(enabled bool)
	BringToFront()

	SetClickable(clickable bool)
	SetLongClickable(clickable bool)
	SetCursorVisible(visible bool)

	// KeyDown synthesizes a key-down event as if typed on a hardware keyboard.
	KeyDown(code KeyCode)
}

// Overlay is the transparent full-size container that hosts controls.
type Overlay interface {
	// Size returns the container's current size in pixels.
	Size() image.Point

	// NewControl allocates a control that is not yet attached.
	NewControl(id int) Control

	Add(c Control)
	Remove(c Control)
}

// IME is the platform soft input method.
type IME interface {
	Show(c Control)
	Hide(c Control)
	Restart(c Control)
}

// LayoutFunc is invoked on every layout pass with the visible display frame.
type LayoutFunc func(frame image.Rectangle, orientation Orientation)

// Host is the platform integration owning the view tree.
type Host interface {
	// AttachOverlay inserts a fresh overlay above the host's rendered content.
	AttachOverlay() (Overlay, error)

	// DetachOverlay removes an overlay previously returned by AttachOverlay.
	DetachOverlay(o Overlay)

	IME() IME

	// Orientation returns the current screen orientation.
	Orientation() Orientation

	// WatchLayout registers fn for layout passes. The returned function
	// stops delivery.
	WatchLayout(fn LayoutFunc) (stop func())
}
