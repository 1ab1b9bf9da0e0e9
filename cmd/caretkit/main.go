// Package main is the entry point for the caretkit command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dshills/caretkit/internal/config"
	"github.com/dshills/caretkit/internal/editor"
	"github.com/dshills/caretkit/internal/event"
	"github.com/dshills/caretkit/internal/logging"
	"github.com/dshills/caretkit/internal/plugin"
	"github.com/dshills/caretkit/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintf(os.Stderr, "caretkit - caret and object selection for HTML documents\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  caretkit run -doc page.html -script steps.yaml [options]\n")
	fmt.Fprintf(os.Stderr, "  caretkit edit [options] page.html\n")
	fmt.Fprintf(os.Stderr, "  caretkit version\n\n")
	fmt.Fprintf(os.Stderr, "Run 'caretkit <command> -h' for command options.\n")
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	var err error
	switch args[0] {
	case "run":
		err = runScript(args[1:], os.Stdout)
	case "edit":
		err = edit(args[1:])
	case "version", "-version", "--version", "-v":
		fmt.Printf("caretkit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	case "help", "-help", "--help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// common holds the flags every command shares.
type common struct {
	configPath string
	pluginDir  string
	logLevel   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to configuration file (toml or yaml)")
	fs.StringVar(&c.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&c.pluginDir, "plugins", "", "Directory of Lua plugins")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// setup loads the configuration and creates the logger. With quiet set, a
// logger aimed at a standard stream is discarded so it cannot draw over the
// screen.
func (c *common) setup(quiet bool) (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.logLevel != "" {
		switch c.logLevel {
		case "debug", "info", "warn", "error":
			cfg.Log.Level = c.logLevel
		default:
			return nil, nil, nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.logLevel)
		}
	}

	if quiet && (cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" || cfg.Log.Output == "") {
		return cfg, zap.NewNop(), func() {}, nil
	}
	logger, closeFn, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	cleanup := func() {
		_ = logger.Sync()
		_ = closeFn()
	}
	return cfg, logger, cleanup, nil
}

func (c *common) plugins(bus *event.Bus, logger *zap.Logger) (*plugin.Host, error) {
	host := plugin.NewHost(bus, plugin.WithLogger(logger))
	if c.pluginDir == "" {
		return host, nil
	}
	if _, err := host.LoadDir(c.pluginDir); err != nil {
		host.Close()
		return nil, err
	}
	return host, nil
}

func runScript(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var c common
	c.register(fs)
	doc := fs.String("doc", "", "HTML document to load")
	script := fs.String("script", "", "YAML step script, or - for stdin")
	format := fs.String("format", "text", "Output format (text or yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doc == "" || *script == "" {
		fs.Usage()
		return errors.New("run needs -doc and -script")
	}
	if *format != "text" && *format != "yaml" {
		return fmt.Errorf("invalid format %q (must be text or yaml)", *format)
	}

	cfg, logger, cleanup, err := c.setup(false)
	if err != nil {
		return err
	}
	defer cleanup()

	steps, err := readScript(*script)
	if err != nil {
		return err
	}

	bus := event.NewBus(event.WithLogger(logging.Component(logger, "bus")))
	defer bus.Close()
	host, err := c.plugins(bus, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	ed, err := editor.Open(*doc, editor.WithConfig(cfg), editor.WithLogger(logger), editor.WithBus(bus))
	if err != nil {
		return err
	}
	defer ed.Close()

	report := textReport(out)
	if *format == "yaml" {
		report = yamlReport(out)
	}
	report(0, editor.Step{}, ed.Snapshot())
	return ed.Run(steps, func(i int, s editor.Step, snap editor.Snapshot) {
		report(i+1, s, snap)
	})
}

func readScript(path string) ([]editor.Step, error) {
	if path == "-" {
		return editor.ParseScript(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return editor.ParseScript(f)
}

type reporter func(i int, s editor.Step, snap editor.Snapshot)

func textReport(out io.Writer) reporter {
	return func(i int, s editor.Step, snap editor.Snapshot) {
		name := "load"
		if i > 0 {
			name = s.String()
		}
		fmt.Fprintf(out, "%3d %-20s %s\n", i, name, snap)
	}
}

type reportEntry struct {
	Step     int             `yaml:"step"`
	Action   string          `yaml:"action"`
	Snapshot editor.Snapshot `yaml:"snapshot"`
}

func yamlReport(out io.Writer) reporter {
	enc := yaml.NewEncoder(out)
	return func(i int, s editor.Step, snap editor.Snapshot) {
		action := "load"
		if i > 0 {
			action = s.String()
		}
		if err := enc.Encode(reportEntry{Step: i, Action: action, Snapshot: snap}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func edit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("edit needs exactly one document")
	}

	cfg, logger, cleanup, err := c.setup(true)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := event.NewBus(event.WithLogger(logging.Component(logger, "bus")))
	defer bus.Close()
	host, err := c.plugins(bus, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	ed, err := editor.Open(fs.Arg(0), editor.WithConfig(cfg), editor.WithLogger(logger), editor.WithBus(bus))
	if err != nil {
		return err
	}
	defer ed.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	term := terminal.New(screen, ed, terminal.WithLogger(logger))
	if err := term.Init(); err != nil {
		return err
	}
	defer term.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := make(chan *config.Config)
	if c.configPath != "" {
		go func() {
			err := config.Watch(ctx, c.configPath, func(cfg *config.Config, err error) {
				if err != nil {
					logger.Warn("config reload failed", zap.Error(err))
					return
				}
				select {
				case reload <- cfg:
				case <-ctx.Done():
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	if err := term.Run(ctx, reload); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
