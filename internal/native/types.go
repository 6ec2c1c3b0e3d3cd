package native

import "image/color"

// InputType is the Android InputType bitmask.
type InputType uint32

const (
	TypeNull InputType = 0

	TypeClassText     InputType = 0x00000001
	TypeClassNumber   InputType = 0x00000002
	TypeClassPhone    InputType = 0x00000003
	TypeClassDatetime InputType = 0x00000004

	TypeTextFlagCapCharacters InputType = 0x00001000
	TypeTextFlagCapWords      InputType = 0x00002000
	TypeTextFlagCapSentences  InputType = 0x00004000
	TypeTextFlagAutoCorrect   InputType = 0x00008000
	TypeTextFlagAutoComplete  InputType = 0x00010000
	TypeTextFlagMultiLine     InputType = 0x00020000
	TypeTextFlagNoSuggestions InputType = 0x00080000

	TypeTextVariationURI          InputType = 0x00000010
	TypeTextVariationEmailAddress InputType = 0x00000020
	TypeTextVariationPersonName   InputType = 0x00000060
	TypeTextVariationPassword     InputType = 0x00000080

	TypeNumberFlagSigned        InputType = 0x00001000
	TypeNumberFlagDecimal       InputType = 0x00002000
	TypeNumberVariationPassword InputType = 0x00000010

	typeMaskClass InputType = 0x0000000f
)

// Class returns the type class bits.
func (t InputType) Class() InputType {
	return t & typeMaskClass
}

// IsPassword reports whether the type hides its text.
func (t InputType) IsPassword() bool {
	switch t.Class() {
	case TypeClassText:
		return t&0xff0 == TypeTextVariationPassword
	case TypeClassNumber:
		return t&0xff0 == TypeNumberVariationPassword
	}
	return false
}

// IMEOptions is the Android EditorInfo imeOptions bitmask.
type IMEOptions uint32

const (
	IMEFlagNoExtractUI IMEOptions = 0x10000000

	IMEActionGo     IMEOptions = IMEOptions(ActionGo)
	IMEActionSearch IMEOptions = IMEOptions(ActionSearch)
	IMEActionSend   IMEOptions = IMEOptions(ActionSend)
	IMEActionNext   IMEOptions = IMEOptions(ActionNext)
	IMEActionDone   IMEOptions = IMEOptions(ActionDone)

	imeMaskAction IMEOptions = 0x000000ff
)

// Action returns the action part of the options.
func (o IMEOptions) Action() EditorAction {
	return EditorAction(o & imeMaskAction)
}

// Gravity is the Android Gravity bitmask used for text alignment.
type Gravity uint32

const (
	GravityCenterHorizontal Gravity = 0x01
	GravityLeft             Gravity = 0x03
	GravityRight            Gravity = 0x05
	GravityCenterVertical   Gravity = 0x10
	GravityTop              Gravity = 0x30
	GravityBottom           Gravity = 0x50

	gravityHorizontalMask Gravity = 0x07
	gravityVerticalMask   Gravity = 0x70
)

// Horizontal returns the horizontal part of the gravity.
func (g Gravity) Horizontal() Gravity {
	return g & gravityHorizontalMask
}

// Vertical returns the vertical part of the gravity.
func (g Gravity) Vertical() Gravity {
	return g & gravityVerticalMask
}

// Gray is the default caret tint, Android's Color.GRAY.
var Gray = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}

// Black is the fallback for unreadable colour payloads.
var Black = color.NRGBA{A: 0xff}
