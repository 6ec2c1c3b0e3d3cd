// umi-preview runs the plugin in a desktop window. Commands are read from
// stdin, one per line, and outbound messages are printed to stdout.
//
//	init {"object":"MobileInput","receiver":"OnData"}
//	1 {"msg":"CREATE_EDIT", ...}
//	destroy
//	health
//	metrics
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"

	"mobileinput/internal/bridge"
	"mobileinput/internal/config"
	"mobileinput/internal/logging"
	"mobileinput/internal/metrics"
	"mobileinput/internal/plugin"
	"mobileinput/internal/toolkit/giokit"
)

var (
	configPath = flag.String("config", "", "path to config file (watched for changes)")
	verbose    = flag.Bool("v", false, "log at debug level")
)

var (
	backdrop      = color.NRGBA{R: 0x30, G: 0x30, B: 0x38, A: 0xff}
	keyboardColor = color.NRGBA{R: 0x55, G: 0x5a, B: 0x64, A: 0xe0}
)

func main() {
	flag.Parse()
	if *configPath == "" {
		*configPath = config.FindConfigFile()
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	lc, err := cfg.LoggerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in logging config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	go func() {
		w := new(app.Window)
		w.Option(app.Title(cfg.Preview.Title))
		width, height := cfg.Preview.Width, cfg.Preview.Height
		if cfg.Preview.Orientation == "landscape" {
			width, height = height, width
		}
		w.Option(app.Size(unit.Dp(width), unit.Dp(height)))

		if err := loop(w, loader, cfg, log); err != nil {
			log.Error("preview stopped", "error", err)
			log.Close()
			os.Exit(1)
		}
		log.Close()
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, loader *config.Loader, cfg *config.Config, log *logging.Logger) error {
	host, err := giokit.NewHost(w, giokit.Options{
		FontDir:          cfg.Preview.FontDir,
		KeyboardFraction: 0.4,
		KeyboardColor:    keyboardColor,
		Log:              log,
	})
	if err != nil {
		return err
	}

	m := metrics.NewPluginMetrics(metrics.NewRegistry(cfg.Metrics.Namespace, ""))
	out := bufio.NewWriter(os.Stdout)
	sender := bridge.SenderFunc(func(object, method, payload string) {
		fmt.Fprintf(out, "%s.%s %s\n", object, method, payload)
		out.Flush()
	})
	p := plugin.New(host, sender,
		plugin.WithConfig(cfg),
		plugin.WithLogger(log),
		plugin.WithMetrics(m),
		plugin.WithScheduler(host))

	if *configPath != "" {
		loader.OnChange(func(c *config.Config) {
			log.Info("config reloaded")
			p.Reconfigure(c)
		})
		if err := loader.Watch(); err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			defer loader.Close()
			go func() {
				for err := range loader.Errors() {
					log.Warn("config reload failed", "error", err)
				}
			}()
		}
	}

	go readCommands(os.Stdin, p, log)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			p.Destroy()
			host.RunPending()
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			paint.Fill(gtx.Ops, backdrop)
			host.Layout(gtx, gtx.Dp(e.Insets.Bottom))
			e.Frame(gtx.Ops)
		}
	}
}

func readCommands(r io.Reader, p *plugin.Plugin, log *logging.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		head, rest, _ := strings.Cut(line, " ")
		switch head {
		case "init":
			p.Init(strings.TrimSpace(rest))
		case "destroy":
			p.Destroy()
		case "health":
			data, _ := json.MarshalIndent(p.Health(context.Background()), "", "  ")
			fmt.Fprintln(os.Stderr, string(data))
		case "metrics":
			if err := p.Metrics().WriteText(os.Stderr); err != nil {
				log.Warn("write metrics", "error", err)
			}
		default:
			id, err := strconv.Atoi(head)
			if err != nil {
				log.Warn("unreadable command line", "line", line)
				continue
			}
			p.Execute(id, strings.TrimSpace(rest))
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("stdin closed", "error", err)
	}
}
