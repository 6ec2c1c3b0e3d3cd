package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Float is a number that may also arrive as a numeric string. The host
// formats floats with the invariant culture and some fields come quoted.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("value %q is not a number", s)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("value %s is not a number", b)
	}
	*f = Float(v)
	return nil
}

// Int is an integer decoded from a number or numeric string. Fractions are
// truncated toward zero. Values outside the 32-bit range of the host's ints
// are rejected.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	var f Float
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return fmt.Errorf("value %s is not an int", b)
	}
	t := math.Trunc(float64(f))
	if t > math.MaxInt32 || t < math.MinInt32 {
		return fmt.Errorf("value %s is out of range", b)
	}
	*i = Int(int(t))
	return nil
}

// Bool is a boolean decoded from true/false or their string forms.
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			*v = true
		case "false":
			*v = false
		default:
			return fmt.Errorf("value %q is not a boolean", s)
		}
		return nil
	}
	var x bool
	if err := json.Unmarshal(b, &x); err != nil {
		return fmt.Errorf("value %s is not a boolean", b)
	}
	*v = Bool(x)
	return nil
}

// RGBA is a colour with channels in [0,1].
type RGBA struct {
	R, G, B, A Float
}

// NRGBA converts the colour to 8-bit channels. Each channel is truncated
// and clamped to [0,255].
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

func channel(f Float) uint8 {
	v := 255 * float64(f)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Rect is a rectangle expressed in fractions of the overlay size.
type Rect struct {
	X      Float `json:"x"`
	Y      Float `json:"y"`
	Width  Float `json:"width"`
	Height Float `json:"height"`
}

// CreatePayload is the configuration carried by CREATE_EDIT.
type CreatePayload struct {
	Placeholder      string `json:"placeholder"`
	Font             string `json:"font"`
	FontSize         Float  `json:"font_size"`
	CharacterLimit   Int    `json:"character_limit"`
	ContentType      string `json:"content_type"`
	InputType        string `json:"input_type"`
	KeyboardType     string `json:"keyboard_type"`
	KeyboardLanguage string `json:"keyboard_language"`
	ReturnKeyType    string `json:"return_key_type"`
	Align            string `json:"align"`
	Multiline        Bool   `json:"multiline"`
	CaretColor       Bool   `json:"caret_color"`

	Rect

	TextColorR Float `json:"text_color_r"`
	TextColorG Float `json:"text_color_g"`
	TextColorB Float `json:"text_color_b"`
	TextColorA Float `json:"text_color_a"`

	BackColorR Float `json:"back_color_r"`
	BackColorG Float `json:"back_color_g"`
	BackColorB Float `json:"back_color_b"`
	BackColorA Float `json:"back_color_a"`

	PlaceholderColorR Float `json:"placeholder_color_r"`
	PlaceholderColorG Float `json:"placeholder_color_g"`
	PlaceholderColorB Float `json:"placeholder_color_b"`
	PlaceholderColorA Float `json:"placeholder_color_a"`

	CaretColorR *Float `json:"caret_color_r,omitempty"`
	CaretColorG *Float `json:"caret_color_g,omitempty"`
	CaretColorB *Float `json:"caret_color_b,omitempty"`
	CaretColorA *Float `json:"caret_color_a,omitempty"`

	HighlightColorR *Float `json:"highlight_color_r,omitempty"`
	HighlightColorG *Float `json:"highlight_color_g,omitempty"`
	HighlightColorB *Float `json:"highlight_color_b,omitempty"`
	HighlightColorA *Float `json:"highlight_color_a,omitempty"`
}

func (p *CreatePayload) TextColor() color.NRGBA {
	return RGBA{p.TextColorR, p.TextColorG, p.TextColorB, p.TextColorA}.NRGBA()
}

func (p *CreatePayload) BackgroundColor() color.NRGBA {
	return RGBA{p.BackColorR, p.BackColorG, p.BackColorB, p.BackColorA}.NRGBA()
}

func (p *CreatePayload) PlaceholderColor() color.NRGBA {
	return RGBA{p.PlaceholderColorR, p.PlaceholderColorG, p.PlaceholderColorB, p.PlaceholderColorA}.NRGBA()
}

// CaretTint returns the configured caret colour, if all four channels were sent.
func (p *CreatePayload) CaretTint() (color.NRGBA, bool) {
	return optionalColor(p.CaretColorR, p.CaretColorG, p.CaretColorB, p.CaretColorA)
}

// Highlight returns the configured selection colour, if all four channels were sent.
func (p *CreatePayload) Highlight() (color.NRGBA, bool) {
	return optionalColor(p.HighlightColorR, p.HighlightColorG, p.HighlightColorB, p.HighlightColorA)
}

func optionalColor(r, g, b, a *Float) (color.NRGBA, bool) {
	if r == nil || g == nil || b == nil || a == nil {
		return color.NRGBA{}, false
	}
	return RGBA{*r, *g, *b, *a}.NRGBA(), true
}

// TextPayload is carried by SET_TEXT.
type TextPayload struct {
	Text string `json:"text"`
}

// FocusPayload is carried by SET_FOCUS.
type FocusPayload struct {
	IsFocus Bool `json:"is_focus"`
}

// VisiblePayload is carried by SET_VISIBLE.
type VisiblePayload struct {
	IsVisible Bool `json:"is_visible"`
}

// ContentTypePayload is carried by SET_CONTENT_TYPE.
type ContentTypePayload struct {
	Type string `json:"type"`
}

// ReadOnlyPayload is carried by SET_READ_ONLY.
type ReadOnlyPayload struct {
	Value Bool `json:"value"`
}

// LanguagePayload is carried by SET_LANGUAGE.
type LanguagePayload struct {
	Value string `json:"value"`
}

// KeyPayload is carried by ANDROID_KEY_DOWN.
type KeyPayload struct {
	Key string `json:"key"`
}

// ColorPayload is carried by the SET_*_COLOR commands.
type ColorPayload struct {
	R Float `json:"color_r"`
	G Float `json:"color_g"`
	B Float `json:"color_b"`
	A Float `json:"color_a"`
}

func (p *ColorPayload) NRGBA() color.NRGBA {
	return RGBA{p.R, p.G, p.B, p.A}.NRGBA()
}

// InitPayload is passed once to the plugin on startup.
type InitPayload struct {
	Object   string `json:"object"`
	Receiver string `json:"receiver"`
	Debug    Bool   `json:"debug"`
}
