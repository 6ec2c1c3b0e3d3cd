package protocol

// Outbound widget message names.
const (
	MsgTextChange    = "TEXT_CHANGE"
	MsgTextEndEdit   = "TEXT_END_EDIT"
	MsgFocus         = "ON_FOCUS"
	MsgUnfocus       = "ON_UNFOCUS"
	MsgReturnPressed = "RETURN_PRESSED"
	MsgReady         = "READY"
)

// Outbound observer action names.
const (
	ActionKeyboard    = "KEYBOARD"
	ActionOrientation = "ORIENTATION"
)

// WidgetEvent is an outbound message produced by one widget.
type WidgetEvent struct {
	Msg  string  `json:"msg"`
	ID   int     `json:"id"`
	Text *string `json:"text,omitempty"`
}

// NewWidgetEvent builds an event without text.
func NewWidgetEvent(id int, msg string) WidgetEvent {
	return WidgetEvent{Msg: msg, ID: id}
}

// NewTextEvent builds an event carrying a text snapshot.
func NewTextEvent(id int, msg, text string) WidgetEvent {
	return WidgetEvent{Msg: msg, ID: id, Text: &text}
}

// KeyboardEvent reports a keyboard show/hide or height change.
type KeyboardEvent struct {
	Action string `json:"action"`
	Show   bool   `json:"show"`
	Height int    `json:"height"`
}

// NewKeyboardEvent builds a KEYBOARD event; the keyboard counts as shown
// whenever its height is positive.
func NewKeyboardEvent(height int) KeyboardEvent {
	return KeyboardEvent{Action: ActionKeyboard, Show: height > 0, Height: height}
}

// OrientationEvent reports an orientation change.
type OrientationEvent struct {
	Action      string `json:"action"`
	Orientation string `json:"orientation"`
}

// NewOrientationEvent builds an ORIENTATION event.
func NewOrientationEvent(orientation string) OrientationEvent {
	return OrientationEvent{Action: ActionOrientation, Orientation: orientation}
}
