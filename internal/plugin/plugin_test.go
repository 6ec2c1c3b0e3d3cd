package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobileinput/internal/bridge"
	"mobileinput/internal/config"
	"mobileinput/internal/health"
	"mobileinput/internal/looper"
	"mobileinput/internal/metrics"
	"mobileinput/internal/native"
	"mobileinput/internal/protocol"
	"mobileinput/internal/toolkit/headless"
)

type env struct {
	host *headless.Host
	ui   *looper.Looper
	rec  *bridge.Recorder
	m    *metrics.PluginMetrics
	p    *Plugin
}

func newEnv(t *testing.T, opts ...headless.Option) *env {
	t.Helper()
	host := headless.NewHost(image.Pt(1000, 2000), opts...)
	ui := looper.New(nil)
	rec := bridge.NewRecorder(nil)
	m := metrics.NewPluginMetrics(nil)
	p := New(host, rec, WithScheduler(ui), WithMetrics(m))
	t.Cleanup(ui.Close)
	return &env{host: host, ui: ui, rec: rec, m: m, p: p}
}

// onUI runs fn on the UI thread and waits for it and everything before it.
func (e *env) onUI(fn func()) {
	e.ui.Post(fn)
	e.ui.Sync()
}

func (e *env) init(t *testing.T) {
	t.Helper()
	e.p.Init(`{"object":"MobileInput","receiver":"OnData","debug":false}`)
	e.ui.Sync()
	require.NotNil(t, e.host.Overlay())
}

func (e *env) exec(id int, data string) {
	e.p.Execute(id, data)
	e.ui.Sync()
}

func (e *env) control(t *testing.T, id int) *headless.Control {
	t.Helper()
	c := e.host.Overlay().Find(id)
	require.NotNil(t, c, "no control for id %d", id)
	return c
}

func createJSON(overrides map[string]any) string {
	fields := map[string]any{
		"msg":                 "CREATE_EDIT",
		"placeholder":         "Type here",
		"font":                "default",
		"font_size":           "40",
		"x":                   "0.1",
		"y":                   "0.1",
		"width":               "0.8",
		"height":              "0.05",
		"character_limit":     "0",
		"content_type":        "Standard",
		"input_type":          "Standard",
		"keyboard_type":       "Default",
		"keyboard_language":   "default",
		"return_key_type":     "Done",
		"align":               "Left",
		"multiline":           "false",
		"caret_color":         "false",
		"text_color_r":        "0",
		"text_color_g":        "0",
		"text_color_b":        "0",
		"text_color_a":        "1",
		"back_color_r":        "1",
		"back_color_g":        "1",
		"back_color_b":        "1",
		"back_color_a":        "1",
		"placeholder_color_r": "0.5",
		"placeholder_color_g": "0.5",
		"placeholder_color_b": "0.5",
		"placeholder_color_a": "1",
	}
	maps.Copy(fields, overrides)
	data, _ := json.Marshal(fields)
	return string(data)
}

func TestInitConfiguresBridge(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))

	ready := e.rec.Named(protocol.MsgReady)
	require.Len(t, ready, 1)
	assert.Equal(t, "MobileInput", ready[0].Object)
	assert.Equal(t, "OnData", ready[0].Method)
	assert.Equal(t, 1, ready[0].ID())
	assert.Equal(t, 1, e.host.Watchers())
}

func TestInitWithUnreadableDataUsesDefaults(t *testing.T) {
	e := newEnv(t)
	e.p.Init("not json")
	e.exec(1, createJSON(nil))

	ready := e.rec.Named(protocol.MsgReady)
	require.Len(t, ready, 1)
	assert.Equal(t, "Plugins", ready[0].Object)
	assert.Equal(t, "OnDataReceive", ready[0].Method)
}

func TestExecuteBeforeInitIsDropped(t *testing.T) {
	e := newEnv(t)
	e.exec(1, createJSON(nil))
	assert.Equal(t, uint64(1), e.m.DroppedTotal.Value())
	assert.Empty(t, e.rec.Messages())
}

func TestInitFailsWithoutRoot(t *testing.T) {
	e := newEnv(t)
	e.host.SetRoot(false)
	e.p.Init(`{"object":"MobileInput","receiver":"OnData"}`)
	e.exec(1, createJSON(nil))
	assert.Equal(t, uint64(1), e.m.DroppedTotal.Value())
	assert.Equal(t, 0, e.host.Watchers())
}

func TestStoppedSchedulerDropsTasks(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.ui.Close()

	e.p.Execute(1, createJSON(nil))
	e.p.Destroy()
	assert.Equal(t, uint64(2), e.m.DroppedTotal.Value())

	var buf bytes.Buffer
	require.NoError(t, e.p.Metrics().WriteText(&buf))
	assert.Contains(t, buf.String(), "dropped before Init or after the UI thread stopped")
}

func TestReinitReplacesOverlay(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))
	first := e.host.Overlay()

	e.init(t)
	assert.False(t, first.Attached())
	assert.Empty(t, first.Children())
	require.Len(t, e.host.Overlays(), 1)
	assert.Equal(t, 1, e.host.Watchers())

	// the old id is gone
	e.rec.Reset()
	e.exec(1, `{"msg":"SET_TEXT","text":"x"}`)
	assert.Empty(t, e.rec.Messages())
}

func TestDestroy(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))
	e.exec(2, createJSON(nil))
	ov := e.host.Overlay()

	e.p.Destroy()
	e.ui.Sync()
	assert.Empty(t, e.host.Overlays())
	assert.Empty(t, ov.Children())
	assert.Equal(t, 0, e.host.Watchers())
	assert.Equal(t, int64(0), e.m.WidgetsActive.Value())

	e.exec(1, `{"msg":"SET_TEXT","text":"x"}`)
	assert.Equal(t, uint64(1), e.m.DroppedTotal.Value())
}

func TestPasswordReadOnlyScenario(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(5, createJSON(map[string]any{"content_type": "Password"}))
	c := e.control(t, 5)
	password := c.InputType()
	require.True(t, password.IsPassword())
	require.True(t, c.Interactive())

	e.exec(5, `{"msg":"SET_READ_ONLY","value":true}`)
	assert.Equal(t, native.TypeNull, c.InputType())
	assert.False(t, c.Interactive())
	assert.False(t, c.Clickable())
	assert.False(t, c.LongClickable())
	assert.False(t, c.CursorVisible())

	e.exec(5, `{"msg":"SET_READ_ONLY","value":"false"}`)
	assert.Equal(t, password, c.InputType())
	assert.True(t, c.Interactive())
	assert.Empty(t, e.rec.Errors())
}

func TestFocusHandOverKeepsKeyboard(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))
	e.exec(2, createJSON(map[string]any{"y": "0.5"}))
	ime := e.host.Keyboard()

	e.exec(1, `{"msg":"SET_FOCUS","is_focus":true}`)
	require.True(t, ime.Shown())
	e.rec.Reset()
	ime.Reset()

	e.exec(2, `{"msg":"SET_FOCUS","is_focus":true}`)

	unfocus := e.rec.Named(protocol.MsgUnfocus)
	require.Len(t, unfocus, 1)
	assert.Equal(t, 1, unfocus[0].ID())
	focus := e.rec.Named(protocol.MsgFocus)
	require.Len(t, focus, 1)
	assert.Equal(t, 2, focus[0].ID())

	assert.Zero(t, ime.Count("hide"), "keyboard hidden during hand-over: %v", ime.Log())
	assert.True(t, ime.Shown())
}

func TestRemoveFocusedWidgetReportsUnfocus(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))
	e.exec(1, `{"msg":"SET_FOCUS","is_focus":true}`)
	e.exec(1, `{"msg":"SET_TEXT","text":"typed"}`)
	e.rec.Reset()

	e.exec(1, `{"msg":"REMOVE_EDIT"}`)
	names := make([]string, 0)
	for _, m := range e.rec.Messages() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{protocol.MsgTextEndEdit, protocol.MsgUnfocus}, names)
	assert.Equal(t, "typed", e.rec.Named(protocol.MsgTextEndEdit)[0].Data["text"])
	assert.False(t, e.host.Keyboard().Shown())
}

func TestSetRectTruncates(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))

	e.exec(1, `{"msg":"SET_RECT","x":0.0005,"y":0.33333,"width":0.4999,"height":0.00099}`)
	// x 0.5, y 666.66, w 499.9, h 1.98
	assert.Equal(t, image.Rect(0, 666, 500, 668), e.control(t, 1).Bounds())
}

func TestCharacterLimitBound(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(map[string]any{"character_limit": 4}))
	c := e.control(t, 1)

	e.onUI(func() { c.TypeRunes("hello world") })
	assert.Equal(t, "hell", c.Text())
	for _, m := range e.rec.Named(protocol.MsgTextChange) {
		assert.LessOrEqual(t, len([]rune(m.Data["text"].(string))), 4)
	}

	e.onUI(func() { c.Type("xyz") })
	assert.Equal(t, "hellxy", c.Text(), "a paste is trimmed by one character only")
}

func TestKeyboardAndOrientationEvents(t *testing.T) {
	e := newEnv(t, headless.WithNavigationBar(100, 2))
	e.init(t)

	e.onUI(func() {
		e.host.Layout(image.Rectangle{Max: e.host.Size()}, native.OrientationPortrait)
		e.host.ShowKeyboard(800)
		e.host.ShowKeyboard(800)
		e.host.Rotate()
	})

	kb := e.rec.Named(protocol.ActionKeyboard)
	require.Len(t, kb, 2)
	assert.Equal(t, true, kb[0].Data["show"])
	assert.Equal(t, float64(900), kb[0].Data["height"])
	assert.Equal(t, false, kb[1].Data["show"])

	or := e.rec.Named(protocol.ActionOrientation)
	require.Len(t, or, 1)
	assert.Equal(t, "LANDSCAPE", or[0].Data["orientation"])
}

func TestSystemQueries(t *testing.T) {
	e := newEnv(t, headless.WithNavigationBar(132, 1), headless.WithRotationLocked(true))
	assert.Equal(t, 132, e.p.BarHeight())
	assert.Equal(t, 1, e.p.BarType())
	assert.True(t, e.p.RotationLocked())
}

func TestReconfigure(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))

	cfg := config.DefaultConfig()
	cfg.Widgets.DuplicateCreate = config.DuplicateReject
	e.p.Reconfigure(cfg)
	e.exec(1, createJSON(nil))

	errs := e.rec.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, string(protocol.ErrCodeCreate), errs[0].ErrorCode)
}

func TestMetricsExposition(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.exec(1, createJSON(nil))
	e.exec(1, `{"msg":"SET_TEXT"}`)

	var buf bytes.Buffer
	require.NoError(t, e.p.Metrics().WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "mobileinput_commands_total 2")
	assert.Contains(t, out, `mobileinput_errors_total{code="PROCESS_ERROR"} 1`)
	assert.Contains(t, out, "mobileinput_widgets_active 1")
}

func TestOwnLooper(t *testing.T) {
	host := headless.NewHost(image.Pt(500, 900))
	rec := bridge.NewRecorder(nil)
	p := New(host, rec)
	p.Init(`{"object":"A","receiver":"B"}`)
	p.Execute(1, createJSON(nil))
	p.Sync()
	assert.Len(t, rec.Named(protocol.MsgReady), 1)

	p.Close()
	assert.Empty(t, host.Overlays())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r := e.p.Health(ctx)
	assert.Equal(t, health.StatusDegraded, r.Status)
	assert.Equal(t, health.StatusHealthy, r.Components["ui_thread"].Status)
	assert.Equal(t, health.StatusUnhealthy, r.Components["overlay"].Status)

	e.init(t)
	e.exec(1, createJSON(nil))
	r = e.p.Health(ctx)
	assert.Equal(t, health.StatusHealthy, r.Status)
	assert.Equal(t, 1, r.Components["overlay"].Details["widgets"])
	assert.Equal(t, "MobileInput.OnData", r.Components["bridge"].Message)
}

func TestHealthStalledUIThread(t *testing.T) {
	e := newEnv(t)
	release := make(chan struct{})
	e.ui.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := e.p.Health(ctx)
	assert.Equal(t, health.StatusUnhealthy, r.Status)
	assert.Equal(t, health.StatusUnhealthy, r.Components["ui_thread"].Status)
}
