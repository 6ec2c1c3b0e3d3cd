package main

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"mobileinput/internal/looper"
	"mobileinput/internal/native"
	"mobileinput/internal/plugin"
	"mobileinput/internal/toolkit/headless"
)

// Step is one line of a replay script.
type Step struct {
	Line int

	// Exactly one of the following is set.
	Init      *string
	ID        int
	Data      string
	Directive string
	Args      []string
}

// ParseScript reads a replay script.
//
//	# comment
//	init {"object":"MobileInput","receiver":"OnData"}
//	1 {"msg":"CREATE_EDIT", ...}
//	@type 1 hello
//	@submit 1
//	@keyboard 800
//	@rotate
//	@layout 1200 portrait
//	@destroy
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		head, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch {
		case head == "init":
			steps = append(steps, Step{Line: n, Init: &rest})
		case strings.HasPrefix(head, "@"):
			var args []string
			if rest != "" {
				if head == "@type" {
					id, text, _ := strings.Cut(rest, " ")
					args = []string{id, text}
				} else {
					args = strings.Fields(rest)
				}
			}
			steps = append(steps, Step{Line: n, Directive: head[1:], Args: args})
		default:
			id, err := strconv.Atoi(head)
			if err != nil {
				return nil, fmt.Errorf("line %d: expected widget id, got %q", n, head)
			}
			if rest == "" {
				return nil, fmt.Errorf("line %d: missing command data", n)
			}
			steps = append(steps, Step{Line: n, ID: id, Data: rest})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

// Runner applies steps to a plugin running on the headless toolkit.
type Runner struct {
	Host   *headless.Host
	Plugin *plugin.Plugin
	UI     *looper.Looper
}

// Run applies the steps in order and waits for each to finish.
func (r *Runner) Run(steps []Step) error {
	for _, s := range steps {
		if err := r.step(s); err != nil {
			return fmt.Errorf("line %d: %w", s.Line, err)
		}
		r.UI.Sync()
	}
	return nil
}

func (r *Runner) step(s Step) error {
	switch {
	case s.Init != nil:
		r.Plugin.Init(*s.Init)
		return nil
	case s.Directive == "":
		r.Plugin.Execute(s.ID, s.Data)
		return nil
	}

	switch s.Directive {
	case "type", "submit":
		if len(s.Args) < 1 {
			return fmt.Errorf("@%s needs a widget id", s.Directive)
		}
		id, err := strconv.Atoi(s.Args[0])
		if err != nil {
			return fmt.Errorf("bad widget id %q", s.Args[0])
		}
		return r.onControl(id, func(c *headless.Control) {
			if s.Directive == "submit" {
				c.Submit()
			} else if len(s.Args) > 1 {
				c.Type(s.Args[1])
			}
		})
	case "keyboard":
		h, err := intArg(s.Args, 0)
		if err != nil {
			return err
		}
		r.ui(func() { r.Host.ShowKeyboard(h) })
	case "rotate":
		r.ui(r.Host.Rotate)
	case "layout":
		bottom, err := intArg(s.Args, 0)
		if err != nil {
			return err
		}
		o := r.Host.Orientation()
		if len(s.Args) > 1 {
			if o, err = parseOrientation(s.Args[1]); err != nil {
				return err
			}
		}
		frame := image.Rect(0, 0, r.Host.Size().X, bottom)
		r.ui(func() { r.Host.Layout(frame, o) })
	case "destroy":
		r.Plugin.Destroy()
	default:
		return fmt.Errorf("unknown directive @%s", s.Directive)
	}
	return nil
}

// ui runs fn on the plugin's UI thread after everything queued before it.
func (r *Runner) ui(fn func()) {
	r.UI.Post(fn)
	r.UI.Sync()
}

func (r *Runner) onControl(id int, fn func(*headless.Control)) error {
	var err error
	r.ui(func() {
		ov := r.Host.Overlay()
		if ov == nil {
			err = fmt.Errorf("plugin not initialised")
			return
		}
		c := ov.Find(id)
		if c == nil {
			err = fmt.Errorf("no widget %d", id)
			return
		}
		fn(c)
	})
	return err
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("bad number %q", args[i])
	}
	return v, nil
}

func parseOrientation(s string) (native.Orientation, error) {
	switch strings.ToLower(s) {
	case "portrait":
		return native.OrientationPortrait, nil
	case "landscape":
		return native.OrientationLandscape, nil
	case "undefined":
		return native.OrientationUndefined, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}
