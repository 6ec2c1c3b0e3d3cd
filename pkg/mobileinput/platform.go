// Package mobileinput is the gomobile binding of the text input plugin.
//
// Android: the Java side implements Platform on top of an activity's
// FrameLayout and EditText views and Sender on top of
// UnityPlayer.UnitySendMessage.
//
// iOS: the Swift side implements Platform with UITextField and UITextView.
//
// Build commands:
//
//	gomobile bind -target=android -o mobileinput.aar ./pkg/mobileinput
//	gomobile bind -target=ios -o MobileInput.xcframework ./pkg/mobileinput
//
// gomobile only exports basic types, so colours cross the binding as ARGB
// integers and rectangles as four ints.
package mobileinput

// Sender delivers one outbound message to the game engine.
type Sender interface {
	Send(object, method, payload string)
}

// Task is work the platform must run on its UI thread.
type Task interface {
	Run()
}

// View is one platform text input view.
type View interface {
	SetEvents(e *Events)

	SetText(text string)
	Text() string
	SetHint(hint string)
	SetSingleLine(single bool)
	SetBounds(left, top, right, bottom int)
	SetInputType(inputType int)
	SetIMEOptions(options int)
	SetGravity(gravity int)
	SetTextSize(px float64)
	SetTextColor(argb int32)
	SetHintTextColor(argb int32)
	SetBackgroundColor(argb int32)
	SetHighlightColor(argb int32)
	SetFont(asset string) error

	RequestFocus()
	ClearFocus()
	IsFocused() bool
	SetVisible(visible bool)
	SetEnabled(enabled bool)
	BringToFront()
	SetClickable(clickable bool)
	SetLongClickable(clickable bool)
	SetCursorVisible(visible bool)
	KeyDown(code int)

	// SupportsCaretTint reports whether SetCaretTint has an effect.
	SupportsCaretTint() bool
	SetCaretTint(argb int32)

	// SupportsHintLocales reports whether the view accepts IME hint
	// locales. Locales cross the binding comma separated.
	SupportsHintLocales() bool
	IMEHintLocales() string
	SetIMEHintLocales(tags string)
}

// Platform is the activity or view controller hosting the views.
type Platform interface {
	// RunOnUIThread queues t on the UI thread.
	RunOnUIThread(t Task)

	// AttachLayout adds the full-size transparent container.
	AttachLayout() error
	DetachLayout()
	LayoutWidth() int
	LayoutHeight() int

	NewView(id int) View
	AddView(v View)
	RemoveView(v View)

	ShowKeyboard(v View)
	HideKeyboard(v View)
	RestartInput(v View)

	// Orientation returns 0 when undefined, 1 for portrait and 2 for
	// landscape.
	Orientation() int
	NavigationBarHeight() int
	NavigationBarType() int
	RotationLocked() bool

	// SetResourceLocale switches the application locale. Only called
	// for views without hint locale support.
	SetResourceLocale(tag string)
}
