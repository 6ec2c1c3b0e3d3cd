package native

import "image/color"

// Optional capabilities. Callers probe for them with a type assertion and
// fall back to a no-op when a toolkit does not provide them.

// CaretTinter is implemented by controls that can recolour their caret and
// selection handles.
type CaretTinter interface {
	SupportsCaretTint() bool
	SetCaretTint(c color.NRGBA)
}

// HintLocaler is implemented by controls that accept IME hint locales.
type HintLocaler interface {
	IMEHintLocales() []string
	SetIMEHintLocales(tags []string)
}

// LocaleConfigurer is implemented by hosts that can only switch the
// keyboard language by reconfiguring application resources.
type LocaleConfigurer interface {
	SetResourceLocale(tag string)
}

// NavigationInfo is implemented by hosts that know about the system
// navigation bar.
type NavigationInfo interface {
	NavigationBarHeight() int

	// NavigationBarType returns 0 for three-button navigation, 1 for
	// two-button navigation and 2 for full-screen gestures.
	NavigationBarType() int
}

// RotationLockReporter is implemented by hosts that can read the user's
// auto-rotate setting.
type RotationLockReporter interface {
	RotationLocked() bool
}
