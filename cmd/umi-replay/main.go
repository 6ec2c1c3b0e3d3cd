// umi-replay runs a command script against the plugin on a simulated device
// and prints every message the plugin sends back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"mobileinput/internal/bridge"
	"mobileinput/internal/config"
	"mobileinput/internal/logging"
	"mobileinput/internal/looper"
	"mobileinput/internal/metrics"
	"mobileinput/internal/plugin"
	"mobileinput/internal/toolkit/headless"
)

var (
	configPath  = flag.String("config", "", "path to config file")
	width       = flag.Int("width", 1080, "screen width in pixels")
	height      = flag.Int("height", 1920, "screen height in pixels")
	navBar      = flag.Int("nav-bar", 0, "navigation bar height reported by the device")
	fonts       = flag.String("fonts", "", "comma separated font assets the device provides")
	legacy      = flag.Bool("legacy-locale", false, "simulate a device without IME hint locales")
	jsonOutput  = flag.Bool("json", false, "print messages as JSON lines")
	showMetrics = flag.Bool("metrics", false, "print metrics after the script")
	verbose     = flag.Bool("v", false, "log at debug level")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(1)
	}

	script := "-"
	if flag.NArg() == 1 {
		script = flag.Arg(0)
	}
	if err := run(script, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openScript opens path, or stdin for "-".
func openScript(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	return f, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `umi-replay - Replay plugin commands on a simulated device

Usage: umi-replay [options] [script]

Reads the script from stdin when no file is given. Each line is one of:
  init <json>            Initialise the plugin
  <id> <json>            Send a command to widget <id>
  @type <id> <text>      Type text into a widget
  @submit <id>           Press the IME action key
  @keyboard <height>     Show the keyboard (0 hides it)
  @layout <bottom> [o]   Report a layout pass
  @rotate                Rotate the device
  @destroy               Destroy the plugin

Options:`)
	flag.PrintDefaults()
}

func run(script string, out io.Writer) error {
	in, err := openScript(script)
	if err != nil {
		return err
	}
	defer in.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	lc.Output = "stderr"
	log, err := logging.New(lc)
	if err != nil {
		return err
	}
	defer log.Close()

	steps, err := ParseScript(in)
	if err != nil {
		return err
	}

	opts := []headless.Option{headless.WithNavigationBar(*navBar, 0)}
	if *fonts != "" {
		opts = append(opts, headless.WithFonts(strings.Split(*fonts, ",")...))
	}
	if *legacy {
		opts = append(opts, headless.WithLegacyLocale())
	}
	host := headless.NewHost(image.Pt(*width, *height), opts...)

	m := metrics.NewPluginMetrics(metrics.NewRegistry(cfg.Metrics.Namespace, ""))
	ui := looper.New(log, looper.WithMetrics(m))
	defer ui.Close()

	rec := bridge.NewRecorder(func(msg bridge.Message) { printMessage(out, msg) })
	p := plugin.New(host, rec,
		plugin.WithConfig(cfg),
		plugin.WithLogger(log),
		plugin.WithMetrics(m),
		plugin.WithScheduler(ui))

	r := &Runner{Host: host, Plugin: p, UI: ui}
	if err := r.Run(steps); err != nil {
		return err
	}

	if *showMetrics {
		fmt.Fprintln(out)
		return p.Metrics().WriteText(out)
	}
	return nil
}

func printMessage(out io.Writer, msg bridge.Message) {
	if *jsonOutput {
		data, _ := json.Marshal(struct {
			Object  string `json:"object"`
			Method  string `json:"method"`
			Payload string `json:"payload"`
		}{msg.Object, msg.Method, msg.Payload})
		fmt.Fprintln(out, string(data))
		return
	}
	if msg.IsError() {
		fmt.Fprintf(out, "%s.%s ERROR %s: %s\n", msg.Object, msg.Method, msg.ErrorCode, msg.ErrorMessage)
		return
	}
	data, _ := json.Marshal(msg.Data)
	fmt.Fprintf(out, "%s.%s %s\n", msg.Object, msg.Method, data)
}
