package widget

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobileinput/internal/config"
	"mobileinput/internal/native"
	"mobileinput/internal/protocol"
	"mobileinput/internal/toolkit/headless"
)

type sink struct {
	events []protocol.WidgetEvent
}

func (s *sink) SendData(v any) {
	if e, ok := v.(protocol.WidgetEvent); ok {
		s.events = append(s.events, e)
	}
}

// names returns the events as "MSG:id".
func (s *sink) names() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, fmt.Sprintf("%s:%d", e.Msg, e.ID))
	}
	return out
}

func (s *sink) texts(msg string) []string {
	var out []string
	for _, e := range s.events {
		if e.Msg == msg && e.Text != nil {
			out = append(out, *e.Text)
		}
	}
	return out
}

type scanner []*Input

func (s *scanner) AnyFocused() bool {
	for _, in := range *s {
		if in.IsFocused() {
			return true
		}
	}
	return false
}

type fixture struct {
	host    *headless.Host
	overlay native.Overlay
	sink    *sink
	inputs  scanner
	cfg     config.WidgetsConfig
}

func newFixture(t *testing.T, opts ...headless.Option) *fixture {
	t.Helper()
	host := headless.NewHost(image.Pt(1080, 1920), opts...)
	overlay, err := host.AttachOverlay()
	require.NoError(t, err)
	return &fixture{
		host:    host,
		overlay: overlay,
		sink:    &sink{},
		cfg:     config.DefaultConfig().Widgets,
	}
}

func (f *fixture) env() Env {
	return Env{
		Overlay: f.overlay,
		IME:     f.host.IME(),
		Locale:  f.host,
		Sink:    f.sink,
		Focus:   &f.inputs,
		Config:  f.cfg,
	}
}

func createFields() map[string]any {
	return map[string]any{
		"msg":                 "CREATE_EDIT",
		"placeholder":         "Name",
		"font":                "default",
		"font_size":           42.0,
		"x":                   0.1,
		"y":                   0.25,
		"width":               0.5,
		"height":              0.1,
		"character_limit":     0,
		"content_type":        "Standard",
		"input_type":          "Standard",
		"keyboard_type":       "Default",
		"keyboard_language":   "default",
		"return_key_type":     "Done",
		"align":               "Center",
		"multiline":           false,
		"caret_color":         false,
		"text_color_r":        1.0,
		"text_color_g":        0.0,
		"text_color_b":        0.0,
		"text_color_a":        1.0,
		"back_color_r":        0.0,
		"back_color_g":        0.0,
		"back_color_b":        1.0,
		"back_color_a":        1.0,
		"placeholder_color_r": 0.5,
		"placeholder_color_g": 0.5,
		"placeholder_color_b": 0.5,
		"placeholder_color_a": 1.0,
	}
}

func envelope(t *testing.T, fields map[string]any) *protocol.Envelope {
	t.Helper()
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	env, err := protocol.ParseEnvelope(string(data))
	require.NoError(t, err)
	return env
}

func command(t *testing.T, msg string, kv ...any) *protocol.Envelope {
	t.Helper()
	fields := map[string]any{"msg": msg}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i].(string)] = kv[i+1]
	}
	return envelope(t, fields)
}

func (f *fixture) create(t *testing.T, id int, overrides map[string]any) *Input {
	t.Helper()
	fields := createFields()
	maps.Copy(fields, overrides)
	p, err := DecodeCreate(envelope(t, fields))
	require.NoError(t, err)
	in := New(id, f.env())
	require.NoError(t, in.Create(p))
	f.inputs = append(f.inputs, in)
	return in
}

func ctl(in *Input) *headless.Control {
	return headless.Unwrap(in.Control())
}

func TestContentTypes(t *testing.T) {
	tests := []struct {
		name string
		got  native.InputType
		want native.InputType
	}{
		{"password", CreateType("Password", "", "", false), 0x81},
		{"pin", CreateType("Pin", "", "", false), native.TypeClassPhone},
		{"email", CreateType("EmailAddress", "", "", false), 0x21},
		{"unknown is standard", CreateType("Whatever", "", "", false), ContentType("Standard")},
		{"custom numeric password", CreateType("Custom", "NumberPad", "Password", false), 0x12},
		{"custom text password", CreateType("Custom", "ASCIICapable", "Password", false), 0x80081},
		{"custom autocorrect", CreateType("Custom", "Default", "AutoCorrect", false), 0x8001},
		{"multiline", CreateType("Standard", "", "", true), ContentType("Standard") | native.TypeTextFlagMultiLine},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got, "got %#x want %#x", uint32(tc.got), uint32(tc.want))
		})
	}
	assert.True(t, ContentType("Password").IsPassword())
	assert.True(t, CustomType("PhonePad", "Password").Class() == native.TypeClassPhone)
}

func TestAlignmentAndReturnKey(t *testing.T) {
	assert.Equal(t, native.GravityTop|native.GravityLeft, Alignment("TopLeft"))
	assert.Equal(t, native.GravityBottom|native.GravityRight, Alignment("BottomRight"))
	assert.Equal(t, native.Gravity(0), Alignment("Justified"))

	assert.Equal(t, native.ActionDone, ReturnKey("Done").Action())
	assert.Equal(t, native.ActionSend, ReturnKey("Send").Action())
	assert.Equal(t, native.ActionUnspecified, ReturnKey("Default").Action())
	assert.NotZero(t, ReturnKey("Default")&native.IMEFlagNoExtractUI)
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		key  string
		code native.KeyCode
		ok   bool
	}{
		{"backspace", native.KeyCodeDel, true},
		{"BackSpace", native.KeyCodeDel, true},
		{"ENTER", native.KeyCodeEnter, true},
		{"0", native.KeyCode0, true},
		{"9", native.KeyCode9, true},
		{"a", 0, false},
		{"10", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		code, ok := KeyCode(tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.Equal(t, tc.code, code, tc.key)
	}
}

func TestBoundsTruncates(t *testing.T) {
	got := Bounds(protocol.Rect{X: 0.1, Y: 0.25, Width: 0.333, Height: 0.5}, image.Pt(1080, 1920))
	assert.Equal(t, image.Rectangle{Min: image.Pt(108, 480), Max: image.Pt(467, 1440)}, got)

	// 99.9 truncates to 99, never rounds up
	got = Bounds(protocol.Rect{X: 0, Y: 0, Width: 0.999, Height: 0.999}, image.Pt(100, 100))
	assert.Equal(t, image.Pt(99, 99), got.Max)
}

func TestLimitText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		limit   int
		mode    string
		want    string
		changed bool
	}{
		{"no limit", "abcdef", 0, config.LimitTrimOne, "abcdef", false},
		{"within", "abc", 3, config.LimitTrimOne, "abc", false},
		{"one over", "abcd", 3, config.LimitTrimOne, "abc", true},
		{"paste trims one", "abcxyz", 3, config.LimitTrimOne, "abcxy", true},
		{"paste clamps", "abcxyz", 3, config.LimitClamp, "abc", true},
		{"counts runes", "héllo", 4, config.LimitTrimOne, "héll", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := LimitText(tc.text, tc.limit, tc.mode)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestCanonicalLanguage(t *testing.T) {
	assert.Equal(t, "en-US", CanonicalLanguage("EN-us"))
	assert.Equal(t, "ja", CanonicalLanguage("ja"))
	assert.Equal(t, "not a tag!", CanonicalLanguage("not a tag!"))
}

func TestCreateAppliesConfiguration(t *testing.T) {
	f := newFixture(t, headless.WithFonts("Roboto.ttf"))
	in := f.create(t, 7, map[string]any{
		"font":              "Roboto",
		"multiline":         "true",
		"font_size":         "36.5",
		"highlight_color_r": 0,
		"highlight_color_g": 1,
		"highlight_color_b": 0,
		"highlight_color_a": 1,
	})

	assert.Equal(t, StateActive, in.State())
	c := ctl(in)
	require.NotNil(t, c)
	assert.True(t, c.Attached())
	assert.Equal(t, image.Rect(108, 480, 648, 672), c.Bounds())
	assert.Equal(t, "Name", c.Hint())
	assert.False(t, c.SingleLine())
	assert.Equal(t, ContentType("Standard")|native.TypeTextFlagMultiLine, c.InputType())
	assert.Equal(t, native.GravityCenterVertical|native.GravityCenterHorizontal, c.Gravity())
	assert.Equal(t, native.ActionDone, c.IMEOptions().Action())
	assert.Equal(t, 36.5, c.TextSize())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, c.TextColor())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, c.BackgroundColor())
	assert.Equal(t, color.NRGBA{R: 127, G: 127, B: 127, A: 255}, c.HintTextColor())
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, c.HighlightColor())
	assert.Equal(t, "Roboto.ttf", c.Font())

	assert.Equal(t, []string{"READY:7"}, f.sink.names())
}

func TestCreateFontFallback(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, map[string]any{"font": "Missing"})
	assert.Equal(t, "", ctl(in).Font())
	assert.Equal(t, []string{"READY:1"}, f.sink.names())
}

func TestCreateTwiceFails(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, nil)
	p, err := DecodeCreate(envelope(t, createFields()))
	require.NoError(t, err)
	assert.Error(t, in.Create(p))
}

func TestDecodeCreateRejectsMissingFields(t *testing.T) {
	fields := createFields()
	delete(fields, "font_size")
	_, err := DecodeCreate(envelope(t, fields))

	var perr *protocol.PayloadError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, protocol.ErrCodeCreate, perr.Code())
}

func TestKeyboardLanguage(t *testing.T) {
	t.Run("hint locales", func(t *testing.T) {
		f := newFixture(t)
		in := f.create(t, 1, map[string]any{"keyboard_language": "fr-fr"})
		assert.Equal(t, []string{"fr-FR"}, headless.HintLocales(in.Control()))

		require.NoError(t, in.Process(command(t, "SET_LANGUAGE", "value", "de")))
		require.NoError(t, in.Process(command(t, "SET_LANGUAGE", "value", "fr-FR")))
		assert.Equal(t, []string{"fr-FR", "de"}, headless.HintLocales(in.Control()))
		assert.Equal(t, 3, f.host.Keyboard().Restarts())
		assert.Equal(t, "", f.host.ResourceLocale())
	})

	t.Run("empty and default are ignored", func(t *testing.T) {
		f := newFixture(t)
		in := f.create(t, 1, map[string]any{"keyboard_language": "de"})
		for _, code := range []string{"", " ", "default", "Default"} {
			require.NoError(t, in.Process(command(t, "SET_LANGUAGE", "value", code)))
		}
		assert.Equal(t, []string{"de"}, headless.HintLocales(in.Control()))
		assert.Equal(t, 1, f.host.Keyboard().Restarts())
	})

	t.Run("resource locale", func(t *testing.T) {
		f := newFixture(t, headless.WithLegacyLocale())
		in := f.create(t, 1, nil)
		assert.Equal(t, 0, f.host.Keyboard().Restarts())

		require.NoError(t, in.Process(command(t, "SET_LANGUAGE", "value", "pt-br")))
		assert.Equal(t, "pt-BR", f.host.ResourceLocale())
		assert.Equal(t, 1, f.host.Keyboard().Restarts())
	})
}

func TestSetTextAndRect(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 3, nil)

	require.NoError(t, in.Process(command(t, "SET_TEXT", "text", "hello")))
	assert.Equal(t, "hello", ctl(in).Text())
	assert.Equal(t, []string{"hello"}, f.sink.texts(protocol.MsgTextChange))

	require.NoError(t, in.Process(command(t, "SET_RECT", "x", "0.5", "y", 0, "width", 0.25, "height", 0.999)))
	assert.Equal(t, image.Rect(540, 0, 810, 1918), ctl(in).Bounds())
}

func TestProcessPayloadErrors(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 3, nil)

	for _, env := range []*protocol.Envelope{
		command(t, "SET_TEXT"),
		command(t, "SET_RECT", "x", 0.1),
		command(t, "SET_FOCUS", "is_focus", "maybe"),
		command(t, "SET_READ_ONLY"),
	} {
		err := in.Process(env)
		var perr *protocol.PayloadError
		require.ErrorAs(t, err, &perr, env.Name)
		assert.Equal(t, protocol.ErrCodeProcess, perr.Code())
	}

	err := in.Process(command(t, "SET_SOMETHING"))
	assert.ErrorIs(t, err, protocol.ErrUnknownCommand)
}

func TestCharacterLimit(t *testing.T) {
	t.Run("trim one", func(t *testing.T) {
		f := newFixture(t)
		in := f.create(t, 1, map[string]any{"character_limit": "3"})
		c := ctl(in)

		c.TypeRunes("abcd")
		assert.Equal(t, "abc", c.Text())
		assert.Equal(t, []string{"a", "ab", "abc", "abc"}, f.sink.texts(protocol.MsgTextChange))

		// a multi-character insertion is only trimmed by one
		c.Type("xyz")
		assert.Equal(t, "abcxy", c.Text())
		assert.LessOrEqual(t, len([]rune(c.Text())), 3+len("xyz")-1)
	})

	t.Run("clamp", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.CharacterLimitMode = config.LimitClamp
		in := f.create(t, 1, map[string]any{"character_limit": 3})
		c := ctl(in)

		c.Type("abcxyz")
		assert.Equal(t, "abc", c.Text())
		assert.Equal(t, []string{"abc"}, f.sink.texts(protocol.MsgTextChange))
	})
}

func TestFocusMovesBetweenWidgets(t *testing.T) {
	f := newFixture(t)
	one := f.create(t, 1, nil)
	two := f.create(t, 2, nil)
	f.sink.events = nil
	ime := f.host.Keyboard()

	require.NoError(t, one.Process(command(t, "SET_FOCUS", "is_focus", true)))
	assert.True(t, ime.Shown())
	assert.Equal(t, []string{"ON_FOCUS:1"}, f.sink.names())

	f.sink.events = nil
	require.NoError(t, two.Process(command(t, "SET_FOCUS", "is_focus", "True")))
	assert.Equal(t, []string{"TEXT_END_EDIT:1", "ON_UNFOCUS:1", "ON_FOCUS:2"}, f.sink.names())
	assert.Zero(t, ime.Count("hide"))
	assert.True(t, ime.Shown())
	assert.False(t, one.IsFocused())
	assert.True(t, two.IsFocused())

	// clearing focus on an unfocused widget keeps the keyboard for the other
	require.NoError(t, one.Process(command(t, "SET_FOCUS", "is_focus", false)))
	assert.Zero(t, ime.Count("hide"))
	assert.True(t, ime.Shown())

	require.NoError(t, two.Process(command(t, "SET_FOCUS", "is_focus", false)))
	assert.False(t, ime.Shown())
	assert.Equal(t, "ON_UNFOCUS:2", f.sink.names()[len(f.sink.names())-1])
}

func TestTextEndEditCarriesText(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 4, nil)
	in.SetFocus(true)
	ctl(in).Type("done typing")
	in.SetFocus(false)
	assert.Equal(t, []string{"done typing"}, f.sink.texts(protocol.MsgTextEndEdit))
}

func TestCaretTint(t *testing.T) {
	t.Run("gray by default", func(t *testing.T) {
		f := newFixture(t)
		in := f.create(t, 1, nil)
		in.SetFocus(true)
		tint, ok := ctl(in).CaretTint()
		require.True(t, ok)
		assert.Equal(t, native.Gray, tint)
	})

	t.Run("custom", func(t *testing.T) {
		f := newFixture(t)
		in := f.create(t, 1, map[string]any{
			"caret_color":   true,
			"caret_color_r": 0,
			"caret_color_g": 0,
			"caret_color_b": 1,
			"caret_color_a": 1,
		})
		in.SetFocus(true)
		tint, ok := ctl(in).CaretTint()
		require.True(t, ok)
		assert.Equal(t, color.NRGBA{B: 255, A: 255}, tint)
	})

	t.Run("unsupported", func(t *testing.T) {
		f := newFixture(t, headless.WithoutCaretTint())
		in := f.create(t, 1, nil)
		in.SetFocus(true)
		_, ok := ctl(in).CaretTint()
		assert.False(t, ok)
		assert.True(t, in.IsFocused())
	})
}

func TestReadOnlyRestoresPasswordType(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, map[string]any{"content_type": "Password"})
	c := ctl(in)
	password := c.InputType()
	require.True(t, password.IsPassword())

	require.NoError(t, in.Process(command(t, "SET_READ_ONLY", "value", true)))
	assert.Equal(t, native.TypeNull, c.InputType())
	assert.False(t, c.Interactive())
	assert.False(t, c.CursorVisible())
	assert.False(t, c.LongClickable())

	require.NoError(t, in.Process(command(t, "SET_READ_ONLY", "value", false)))
	assert.Equal(t, password, c.InputType())
	assert.True(t, c.Interactive())
}

func TestContentTypeWhileReadOnly(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, map[string]any{"content_type": "Custom", "keyboard_type": "NumberPad", "input_type": "Password"})
	c := ctl(in)

	require.NoError(t, in.Process(command(t, "SET_READ_ONLY", "value", true)))
	require.NoError(t, in.Process(command(t, "SET_CONTENT_TYPE", "type", "EmailAddress")))
	assert.Equal(t, native.TypeNull, c.InputType())
	assert.Equal(t, ContentType("EmailAddress"), in.InputType())

	require.NoError(t, in.Process(command(t, "SET_READ_ONLY", "value", false)))
	assert.Equal(t, ContentType("EmailAddress"), c.InputType())
}

func TestSetVisible(t *testing.T) {
	f := newFixture(t)
	one := f.create(t, 1, nil)
	f.create(t, 2, nil)
	c := ctl(one)

	require.NoError(t, one.Process(command(t, "SET_VISIBLE", "is_visible", false)))
	assert.False(t, c.IsVisible())
	assert.False(t, c.Enabled())

	require.NoError(t, one.Process(command(t, "SET_VISIBLE", "is_visible", true)))
	assert.True(t, c.IsVisible())
	assert.True(t, c.Enabled())
	children := f.host.Overlay().Children()
	assert.Equal(t, 1, children[len(children)-1].ID())
}

func TestColorCommands(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, nil)
	c := ctl(in)

	require.NoError(t, in.Process(command(t, "SET_BG_COLOR", "color_r", 1, "color_g", 1, "color_b", 1, "color_a", "1")))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c.BackgroundColor())

	require.NoError(t, in.Process(command(t, "SET_PTEXT_COLOR", "color_r", 0, "color_g", 1, "color_b", 0, "color_a", 1)))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, c.HintTextColor())

	// unreadable channels fall back to black
	require.NoError(t, in.Process(command(t, "SET_TEXT_COLOR", "color_r", "red")))
	assert.Equal(t, native.Black, c.TextColor())
}

func TestKeyDownRequiresFocus(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, nil)
	c := ctl(in)

	require.NoError(t, in.Process(command(t, "ANDROID_KEY_DOWN", "key", "5")))
	assert.Empty(t, c.Keys())

	in.SetFocus(true)
	for _, key := range []string{"1", "2", "backspace", "3", "tab"} {
		require.NoError(t, in.Process(command(t, "ANDROID_KEY_DOWN", "key", key)))
	}
	assert.Equal(t, []native.KeyCode{8, 9, native.KeyCodeDel, 10}, c.Keys())
	assert.Equal(t, "13", c.Text())

	require.NoError(t, in.Process(command(t, "ANDROID_KEY_DOWN", "key", "Enter")))
	assert.Equal(t, "RETURN_PRESSED:1", f.sink.names()[len(f.sink.names())-1])
}

func TestEditorAction(t *testing.T) {
	f := newFixture(t)
	done := f.create(t, 1, nil)
	plain := f.create(t, 2, map[string]any{"return_key_type": "Default"})
	f.sink.events = nil

	assert.True(t, ctl(done).Submit())
	assert.False(t, ctl(plain).Submit())
	assert.Equal(t, []string{"RETURN_PRESSED:1"}, f.sink.names())
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, nil)
	c := ctl(in)
	in.SetFocus(true)
	c.SetText("draft")
	f.sink.events = nil

	require.NoError(t, in.Process(command(t, "REMOVE_EDIT")))
	assert.Equal(t, StateRemoved, in.State())
	assert.Nil(t, in.Control())
	assert.False(t, c.Attached())
	assert.False(t, f.host.Keyboard().Shown())
	assert.Empty(t, f.host.Overlay().Children())
	assert.Equal(t, []string{"TEXT_END_EDIT:1", "ON_UNFOCUS:1"}, f.sink.names())
	assert.Equal(t, []string{"draft"}, f.sink.texts("TEXT_END_EDIT"))
	f.sink.events = nil

	in.Remove()
	require.NoError(t, in.Process(command(t, "SET_TEXT", "text", "ignored")))
	require.NoError(t, in.Process(command(t, "SET_TEXT")))
	assert.Equal(t, "draft", c.Text())
	assert.Empty(t, f.sink.events)
}

func TestRemoveUnfocusedIsSilent(t *testing.T) {
	f := newFixture(t)
	in := f.create(t, 1, nil)
	f.sink.events = nil

	in.Remove()
	assert.Empty(t, f.sink.events)
}
