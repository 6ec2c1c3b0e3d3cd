// Package widget implements one native text input driven by host commands.
//
// An Input owns exactly one native control. It applies the CREATE
// configuration, mutates the control in response to later commands and turns
// the control's callbacks into outbound events. All methods must be called on
// the UI thread.
package widget

import (
	"fmt"
	"image/color"

	"mobileinput/internal/config"
	"mobileinput/internal/logging"
	"mobileinput/internal/native"
	"mobileinput/internal/protocol"
)

// Sink receives outbound widget events.
type Sink interface {
	SendData(v any)
}

// FocusScanner reports whether any live widget holds input focus.
type FocusScanner interface {
	AnyFocused() bool
}

// Env is what an Input needs from its surroundings.
type Env struct {
	Overlay native.Overlay
	IME     native.IME

	// Locale is used to switch keyboard languages when a control cannot
	// take IME hint locales. It may be nil.
	Locale native.LocaleConfigurer

	Sink   Sink
	Focus  FocusScanner
	Config config.WidgetsConfig
	Log    *logging.Logger
}

// State is the lifecycle state of an Input.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Input is one text input widget.
type Input struct {
	id  int
	env Env
	log *logging.Logger

	state   State
	control native.Control
	config  *protocol.CreatePayload

	inputType      native.InputType
	multiline      bool
	readOnly       bool
	characterLimit int
	caretTint      color.NRGBA
	hasCaretTint   bool

	// suppress is set while the widget rewrites the control's text so the
	// resulting change callback is not reported twice.
	suppress bool
}

// New returns an uninitialized Input for id.
func New(id int, env Env) *Input {
	log := env.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Input{
		id:    id,
		env:   env,
		log:   log.WithComponent("widget").WithWidget(id),
		state: StateUninitialized,
	}
}

// ID returns the host-assigned widget id.
func (in *Input) ID() int { return in.id }

// State returns the lifecycle state.
func (in *Input) State() State { return in.state }

// Control returns the native control, or nil unless the widget is active.
func (in *Input) Control() native.Control {
	if in.state != StateActive {
		return nil
	}
	return in.control
}

// Config returns the configuration the widget was created with.
func (in *Input) Config() *protocol.CreatePayload { return in.config }

// InputType returns the cached input type, which is restored when read-only
// mode ends.
func (in *Input) InputType() native.InputType { return in.inputType }

// ReadOnly reports whether SET_READ_ONLY has locked the widget.
func (in *Input) ReadOnly() bool { return in.readOnly }

// IsFocused reports whether the widget is active and its control is focused.
func (in *Input) IsFocused() bool {
	return in.state == StateActive && in.control.IsFocused()
}

// DecodeCreate validates and decodes a CREATE_EDIT payload.
func DecodeCreate(env *protocol.Envelope) (*protocol.CreatePayload, error) {
	var p protocol.CreatePayload
	if err := protocol.DecodePayload(protocol.CmdCreate, env.Raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create allocates the native control, applies p and attaches the control to
// the overlay. READY is emitted once the widget is active.
func (in *Input) Create(p *protocol.CreatePayload) error {
	if in.state != StateUninitialized {
		return fmt.Errorf("widget %d is %s", in.id, in.state)
	}
	in.config = p
	in.characterLimit = int(p.CharacterLimit)
	in.multiline = bool(p.Multiline)
	if c, ok := p.CaretTint(); ok && bool(p.CaretColor) {
		in.caretTint, in.hasCaretTint = c, true
	}

	c := in.env.Overlay.NewControl(in.id)
	in.control = c

	c.SetBounds(Bounds(p.Rect, in.env.Overlay.Size()))
	c.SetSingleLine(!in.multiline)
	c.SetText("")
	c.SetHint(p.Placeholder)

	in.inputType = CreateType(p.ContentType, p.KeyboardType, p.InputType, in.multiline)
	c.SetInputType(in.inputType)
	c.SetGravity(Alignment(p.Align))
	c.SetIMEOptions(ReturnKey(p.ReturnKeyType))
	c.SetTextSize(float64(p.FontSize))

	c.SetTextColor(p.TextColor())
	c.SetBackgroundColor(p.BackgroundColor())
	c.SetHintTextColor(p.PlaceholderColor())
	if hl, ok := p.Highlight(); ok {
		c.SetHighlightColor(hl)
	}
	in.applyFont(p.Font)

	if !defaultLanguage(p.KeyboardLanguage) {
		in.setLanguage(p.KeyboardLanguage)
	}

	c.SetListener(in)
	in.env.Overlay.Add(c)
	in.state = StateActive

	in.log.Debug("widget created", "content_type", p.ContentType, "bounds", c.Bounds())
	in.emit(protocol.NewWidgetEvent(in.id, protocol.MsgReady))
	return nil
}

func (in *Input) applyFont(font string) {
	if font == "" || font == "default" {
		in.control.SetFont("")
		return
	}
	ext := in.env.Config.FontExtension
	if ext == "" {
		ext = ".ttf"
	}
	if err := in.control.SetFont(font + ext); err != nil {
		in.log.Debug("font unavailable, using sans-serif", "font", font, "error", err)
		in.control.SetFont("")
	}
}

// Remove detaches the control from the overlay. A focused widget reports
// TEXT_END_EDIT and ON_UNFOCUS first. Removing twice is a no-op.
func (in *Input) Remove() {
	if in.state != StateActive {
		return
	}
	c := in.control
	focused := c.IsFocused()
	if focused {
		in.emit(protocol.NewTextEvent(in.id, protocol.MsgTextEndEdit, c.Text()))
		in.emit(protocol.NewWidgetEvent(in.id, protocol.MsgUnfocus))
	}
	in.state = StateRemoved
	c.SetListener(nil)
	in.env.Overlay.Remove(c)
	in.control = nil
	if focused && !in.anyFocused() {
		in.env.IME.Hide(c)
	}
	in.log.Debug("widget removed")
}

// Process applies a command other than CREATE_EDIT. Commands for a widget that
// is not active are ignored. Payload failures are returned as
// *protocol.PayloadError.
func (in *Input) Process(env *protocol.Envelope) error {
	if in.state != StateActive {
		in.log.Debug("command ignored", "command", env.Name, "state", in.state)
		return nil
	}

	switch env.Command {
	case protocol.CmdCreate:
		return &protocol.PayloadError{Command: env.Command, Err: fmt.Errorf("widget %d already created", in.id)}

	case protocol.CmdRemove:
		in.Remove()

	case protocol.CmdSetText:
		var p protocol.TextPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.control.SetText(p.Text)

	case protocol.CmdSetRect:
		var p protocol.Rect
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.control.SetBounds(Bounds(p, in.env.Overlay.Size()))

	case protocol.CmdSetFocus:
		var p protocol.FocusPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.SetFocus(bool(p.IsFocus))

	case protocol.CmdSetVisible:
		var p protocol.VisiblePayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.setVisible(bool(p.IsVisible))

	case protocol.CmdSetContentType:
		var p protocol.ContentTypePayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.setContentType(p.Type)

	case protocol.CmdSetTextColor:
		in.control.SetTextColor(in.decodeColor(env))

	case protocol.CmdSetPlaceholderColor:
		in.control.SetHintTextColor(in.decodeColor(env))

	case protocol.CmdSetBackgroundColor:
		in.control.SetBackgroundColor(in.decodeColor(env))

	case protocol.CmdSetReadOnly:
		var p protocol.ReadOnlyPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.SetReadOnly(bool(p.Value))

	case protocol.CmdSetLanguage:
		var p protocol.LanguagePayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.setLanguage(p.Value)

	case protocol.CmdKeyDown:
		var p protocol.KeyPayload
		if err := env.Decode(&p); err != nil {
			return err
		}
		in.keyDown(p.Key)

	default:
		return &protocol.PayloadError{
			Command: env.Command,
			Err:     fmt.Errorf("%w: %q", protocol.ErrUnknownCommand, env.Name),
		}
	}
	return nil
}

func (in *Input) decodeColor(env *protocol.Envelope) color.NRGBA {
	var p protocol.ColorPayload
	if err := env.Decode(&p); err != nil {
		in.log.Debug("unreadable colour, using black", "command", env.Name, "error", err)
		return native.Black
	}
	return p.NRGBA()
}

// SetFocus requests or clears input focus. Clearing focus hides the soft
// keyboard only when no other widget holds focus.
func (in *Input) SetFocus(focus bool) {
	if in.state != StateActive {
		return
	}
	c := in.control
	if focus {
		c.RequestFocus()
		in.tintCaret()
		in.env.IME.Show(c)
		return
	}

	c.ClearFocus()
	if in.anyFocused() {
		return
	}
	in.env.IME.Hide(c)
}

func (in *Input) anyFocused() bool {
	if in.env.Focus == nil {
		return false
	}
	return in.env.Focus.AnyFocused()
}

func (in *Input) tintCaret() {
	t, ok := in.control.(native.CaretTinter)
	if !ok || !t.SupportsCaretTint() {
		return
	}
	if in.hasCaretTint {
		t.SetCaretTint(in.caretTint)
	} else {
		t.SetCaretTint(native.Gray)
	}
}

func (in *Input) setVisible(visible bool) {
	c := in.control
	c.SetVisible(visible)
	if visible {
		c.BringToFront()
	}
	c.SetEnabled(visible)
}

func (in *Input) setContentType(name string) {
	in.inputType = withMultiline(ContentType(name), in.multiline)
	if in.readOnly {
		return
	}
	in.control.SetInputType(in.inputType)
}

// SetReadOnly swaps the control to the null input type and makes it
// non-interactive. Leaving read-only mode restores the cached input type.
func (in *Input) SetReadOnly(readOnly bool) {
	if in.state != StateActive {
		return
	}
	in.readOnly = readOnly
	c := in.control
	if readOnly {
		c.SetInputType(native.TypeNull)
	} else {
		c.SetInputType(in.inputType)
	}
	c.SetLongClickable(!readOnly)
	c.SetClickable(!readOnly)
	c.SetCursorVisible(!readOnly)
}

func (in *Input) setLanguage(code string) {
	if defaultLanguage(code) {
		in.log.Debug("keyboard language unchanged", "language", code)
		return
	}
	tag := CanonicalLanguage(code)
	if hl, ok := in.control.(native.HintLocaler); ok {
		hl.SetIMEHintLocales(appendLocale(hl.IMEHintLocales(), tag))
	} else if in.env.Locale != nil {
		in.env.Locale.SetResourceLocale(tag)
	}
	in.env.IME.Restart(in.control)
	in.log.Debug("keyboard language set", "language", tag)
}

func (in *Input) keyDown(key string) {
	if !in.control.IsFocused() {
		return
	}
	code, ok := KeyCode(key)
	if !ok {
		in.log.Debug("unknown key ignored", "key", key)
		return
	}
	in.control.KeyDown(code)
}

// OnTextChanged enforces the character limit and reports the text.
func (in *Input) OnTextChanged(text string) {
	if in.suppress || in.state != StateActive {
		return
	}
	if fixed, changed := LimitText(text, in.characterLimit, in.env.Config.CharacterLimitMode); changed {
		in.suppress = true
		in.control.SetText(fixed)
		in.suppress = false
		text = fixed
	}
	in.emit(protocol.NewTextEvent(in.id, protocol.MsgTextChange, text))
}

// OnFocusChanged reports focus transitions. Losing focus reports the final
// text first.
func (in *Input) OnFocusChanged(focused bool) {
	if in.state != StateActive {
		return
	}
	if !focused {
		in.emit(protocol.NewTextEvent(in.id, protocol.MsgTextEndEdit, in.control.Text()))
	}
	in.SetFocus(focused)
	if focused {
		in.emit(protocol.NewWidgetEvent(in.id, protocol.MsgFocus))
	} else {
		in.emit(protocol.NewWidgetEvent(in.id, protocol.MsgUnfocus))
	}
}

// OnEditorAction reports submit actions and consumes them.
func (in *Input) OnEditorAction(action native.EditorAction) bool {
	if in.state != StateActive || !Submits(action) {
		return false
	}
	in.emit(protocol.NewWidgetEvent(in.id, protocol.MsgReturnPressed))
	return true
}

func (in *Input) emit(v any) {
	if in.env.Sink == nil {
		return
	}
	in.env.Sink.SendData(v)
}
