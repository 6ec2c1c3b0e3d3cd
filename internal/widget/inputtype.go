package widget

import (
	"strings"

	"mobileinput/internal/native"
)

// ContentType maps a content type name to an input type. Unknown names get
// the standard single-line text type.
func ContentType(name string) native.InputType {
	switch name {
	case "Autocorrected":
		return native.TypeClassText | native.TypeTextFlagCapSentences | native.TypeTextFlagAutoCorrect
	case "IntegerNumber":
		return native.TypeClassNumber
	case "DecimalNumber":
		return native.TypeClassNumber | native.TypeNumberFlagDecimal
	case "Alphanumeric":
		return native.TypeClassText | native.TypeTextFlagCapSentences
	case "Name":
		return native.TypeClassText | native.TypeTextVariationPersonName
	case "EmailAddress":
		return native.TypeClassText | native.TypeTextVariationEmailAddress
	case "Password":
		return native.TypeClassText | native.TypeTextVariationPassword
	case "Pin":
		return native.TypeClassPhone
	default:
		return native.TypeClassText | native.TypeTextFlagCapSentences | native.TypeTextFlagNoSuggestions
	}
}

// KeyboardType maps the keyboard type of a Custom content type.
func KeyboardType(name string) native.InputType {
	switch name {
	case "ASCIICapable":
		return native.TypeClassText | native.TypeTextFlagNoSuggestions
	case "NumbersAndPunctuation":
		return native.TypeClassNumber | native.TypeNumberFlagDecimal | native.TypeNumberFlagSigned
	case "URL":
		return native.TypeClassText | native.TypeTextFlagNoSuggestions | native.TypeTextVariationURI
	case "NumberPad":
		return native.TypeClassNumber
	case "PhonePad":
		return native.TypeClassPhone
	case "NamePhonePad":
		return native.TypeClassText | native.TypeTextVariationPersonName
	case "EmailAddress":
		return native.TypeClassText | native.TypeTextVariationEmailAddress
	case "Social":
		return native.TypeTextVariationURI | native.TypeTextVariationEmailAddress
	case "Search":
		return native.TypeClassText | native.TypeTextVariationEmailAddress | native.TypeNumberFlagDecimal | native.TypeNumberFlagSigned
	default:
		return native.TypeClassText
	}
}

func numericKeyboard(name string) bool {
	switch name {
	case "NumbersAndPunctuation", "NumberPad", "PhonePad":
		return true
	}
	return false
}

// CustomType refines a Custom content type by keyboard and input type.
func CustomType(keyboardType, inputType string) native.InputType {
	t := KeyboardType(keyboardType)
	switch inputType {
	case "AutoCorrect":
		t |= native.TypeTextFlagAutoCorrect
	case "Password":
		if numericKeyboard(keyboardType) {
			t |= native.TypeNumberVariationPassword
		} else {
			t |= native.TypeClassText | native.TypeTextVariationPassword
		}
	}
	return t
}

// CreateType computes the input type a widget is created with.
func CreateType(contentType, keyboardType, inputType string, multiline bool) native.InputType {
	var t native.InputType
	if contentType == "Custom" {
		t = CustomType(keyboardType, inputType)
	} else {
		t = ContentType(contentType)
	}
	return withMultiline(t, multiline)
}

func withMultiline(t native.InputType, multiline bool) native.InputType {
	if multiline {
		t |= native.TypeTextFlagMultiLine | native.TypeTextFlagCapSentences
	}
	return t
}

// Alignment maps an alignment name to a gravity. Unknown names return 0,
// which leaves the toolkit's default alignment.
func Alignment(name string) native.Gravity {
	switch name {
	case "TopLeft":
		return native.GravityTop | native.GravityLeft
	case "Top":
		return native.GravityTop | native.GravityCenterHorizontal
	case "TopRight":
		return native.GravityTop | native.GravityRight
	case "Left":
		return native.GravityCenterVertical | native.GravityLeft
	case "Center":
		return native.GravityCenterVertical | native.GravityCenterHorizontal
	case "Right":
		return native.GravityCenterVertical | native.GravityRight
	case "BottomLeft":
		return native.GravityBottom | native.GravityLeft
	case "Bottom":
		return native.GravityBottom | native.GravityCenterHorizontal
	case "BottomRight":
		return native.GravityBottom | native.GravityRight
	}
	return 0
}

// ReturnKey maps a return key name to IME options. Extracted full-screen
// editing is always disabled.
func ReturnKey(name string) native.IMEOptions {
	o := native.IMEFlagNoExtractUI
	switch name {
	case "Next":
		o |= native.IMEActionNext
	case "Done":
		o |= native.IMEActionDone
	case "Search":
		o |= native.IMEActionSearch
	case "Send":
		o |= native.IMEActionSend
	}
	return o
}

// KeyCode maps a key name to a key code. Named keys match case-insensitively.
func KeyCode(name string) (native.KeyCode, bool) {
	switch {
	case strings.EqualFold(name, "backspace"):
		return native.KeyCodeDel, true
	case strings.EqualFold(name, "enter"):
		return native.KeyCodeEnter, true
	case len(name) == 1 && name[0] >= '0' && name[0] <= '9':
		return native.KeyCode0 + native.KeyCode(name[0]-'0'), true
	}
	return 0, false
}

// Submits reports whether an editor action produces RETURN_PRESSED.
func Submits(a native.EditorAction) bool {
	switch a {
	case native.ActionDone, native.ActionNext, native.ActionSearch, native.ActionSend:
		return true
	}
	return false
}
