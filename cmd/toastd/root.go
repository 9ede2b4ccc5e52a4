package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LucaLeukert/toastd/internal/config"
	"github.com/LucaLeukert/toastd/internal/lifecycle"
	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/presenter/desktop"
	"github.com/LucaLeukert/toastd/internal/presenter/term"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	logger     *slog.Logger
	globalOpts struct {
		verbose    bool
		configPath string
		presenter  string
		scriptPath string
		watch      bool
	}
)

// rootCmd drives a coordinator from stdin or a YAML script.
var rootCmd = &cobra.Command{
	Use:   "toastd",
	Short: "Toast lifecycle engine demo driver",
	Long: `toastd feeds the toast lifecycle engine from stdin or a YAML script
and renders through a terminal or desktop (freedesktop D-Bus) presenter.

Stdin lines have the form "variant[:edge] message", e.g.:

  success Saved changes
  error:top Build failed
  loading Deploying...

The lines "dismiss" and "dismiss-all" exercise the matching operations.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	RunE:    runDemo,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/toastd/config.toml)")
	rootCmd.Flags().StringVar(&globalOpts.presenter, "presenter", "term", "Presenter to use: term or desktop")
	rootCmd.Flags().StringVar(&globalOpts.scriptPath, "script", "", "YAML demo script to run instead of reading stdin")
	rootCmd.Flags().BoolVar(&globalOpts.watch, "watch-config", false, "Hot-reload the config file on change")
}

func setupLogger() {
	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func runDemo(cmd *cobra.Command, args []string) error {
	setupLogger()

	cfg, err := config.Load(globalOpts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var coord *lifecycle.Coordinator
	switch globalOpts.presenter {
	case "term":
		p := term.New(os.Stdout, logger)
		coord = lifecycle.New(cfg, p, logger)
		p.SetHost(coord)

	case "desktop":
		p := desktop.New("toastd", logger)
		if err := p.Start(); err != nil {
			return err
		}
		defer func() { _ = p.Stop() }()
		coord = lifecycle.New(cfg, p, logger)
		p.SetHost(coord)

	default:
		return fmt.Errorf("unknown presenter %q, must be term or desktop", globalOpts.presenter)
	}

	defer coord.Close()

	coord.SetEventCallback(func(ev lifecycle.Event) {
		logger.Debug("lifecycle event", "type", ev.Type, "id", ev.ID, "reason", ev.Reason)
	})

	if globalOpts.watch {
		path := globalOpts.configPath
		if path == "" {
			path = config.ConfigPath()
		}
		watcher, err := config.NewWatcher(path, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			watcher.SetReloadCallback(func(newCfg *config.Config) {
				coord.Configure(config.PatchFrom(newCfg))
			})
			if err := watcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
			defer func() { _ = watcher.Stop() }()
		}
	}

	if globalOpts.scriptPath != "" {
		return runScript(coord, globalOpts.scriptPath)
	}
	return runStdin(coord)
}

// runStdin feeds the coordinator from "variant[:edge] message" lines.
func runStdin(coord *lifecycle.Coordinator) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "dismiss":
			coord.Dismiss("")
			continue
		case "dismiss-all":
			coord.DismissAll()
			continue
		}

		head, message, _ := strings.Cut(line, " ")
		variant, edge := parseHead(head)
		if variant == "" {
			// No recognized variant prefix: treat the whole line as an info
			// message.
			coord.Info(line, nil)
			continue
		}

		opts := model.Options{Variant: variant, Message: message, Edge: edge}
		coord.Show(opts)
	}

	// Let in-flight timers settle before exiting.
	time.Sleep(100 * time.Millisecond)
	return scanner.Err()
}

// parseHead splits a "variant[:edge]" prefix.
func parseHead(head string) (model.Variant, model.Edge) {
	name, edgeName, _ := strings.Cut(head, ":")

	var variant model.Variant
	switch model.Variant(name) {
	case model.VariantSuccess, model.VariantError, model.VariantInfo, model.VariantLoading:
		variant = model.Variant(name)
	default:
		return "", ""
	}

	var edge model.Edge
	switch model.Edge(edgeName) {
	case model.EdgeTop, model.EdgeBottom:
		edge = model.Edge(edgeName)
	}
	return variant, edge
}
