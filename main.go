// ABOUTME: Entry point for the binaural beat player
// ABOUTME: Loads configuration, picks a preset and runs one playback session
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
	"time"

	"github.com/binaural-go/binaural/internal/app"
	"github.com/binaural-go/binaural/internal/client"
	"github.com/binaural-go/binaural/internal/config"
	"github.com/binaural-go/binaural/internal/discovery"
	"github.com/binaural-go/binaural/internal/logging"
	"github.com/binaural-go/binaural/internal/ui"
	"github.com/binaural-go/binaural/internal/version"
	"github.com/binaural-go/binaural/pkg/audio/output"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/binaural-go/binaural/pkg/preset"
	"go.uber.org/zap"
)

const discoverTimeout = 3 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.Version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	extra, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	presets := menuPresets(extra)

	if cfg.List {
		printPresets(stdout, presets)
		return 0
	}

	logger, cleanup, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Debug:  cfg.Debug,
		Stdout: cfg.NoTUI,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	logger.Info("starting", zap.String("version", version.Version), zap.String("backend", cfg.Backend))

	if cfg.Discover {
		return discover(stdout, stderr, logger)
	}
	if cfg.Remote != "" {
		return remote(cfg, stdout, stderr, logger)
	}

	def, ok, err := choose(cfg, extra, presets)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !ok {
		fmt.Fprintln(stdout, "No preset selected.")
		return 0
	}

	opts := cfg.OutputOptions()
	opts.AppName = version.Product
	opts.Logger = logger
	device, err := output.New(cfg.Backend, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	player := app.New(app.Config{
		Definition:    def,
		Device:        device,
		PollInterval:  cfg.PollInterval,
		UseTUI:        !cfg.NoTUI,
		HandleSignals: true,
		Out:           stdout,
		ControlAddr:   cfg.ControlAddr,
		MDNS:          cfg.MDNS,
		Name:          cfg.Name,
		Logger:        logger,
	})

	if err := player.Run(context.Background()); err != nil {
		logger.Error("session failed", zap.Error(err))
		fmt.Fprintln(stderr, binaural.Describe(err))
		return 1
	}
	return 0
}

// choose resolves the preset from flags, or from the menus when none was given
func choose(cfg config.Config, extra, presets []preset.Definition) (preset.Definition, bool, error) {
	if !cfg.Interactive() {
		def, err := cfg.Resolve(extra)
		return def, err == nil, err
	}

	sel, err := ui.Pick(presets)
	if err != nil {
		return preset.Definition{}, false, err
	}
	if sel.Cancelled {
		return preset.Definition{}, false, nil
	}
	def := sel.Definition
	def.Duration = sel.Duration
	return def, true, nil
}

// menuPresets lists the built-ins followed by the user's presets
func menuPresets(extra []preset.Definition) []preset.Definition {
	all := preset.All()
	defs := make([]preset.Definition, 0, len(all)+len(extra))
	for _, p := range all {
		defs = append(defs, p.Definition())
	}
	return append(defs, extra...)
}

func printPresets(w io.Writer, presets []preset.Definition) {
	for _, d := range presets {
		p := d.Params()
		fmt.Fprintf(w, "%-34s %8.2f Hz %6.2f Hz %4d min  %s\n",
			d.Name, p.CarrierHz, p.BeatHz, p.DurationMinutes, d.Description)
	}
}

func discover(stdout, stderr io.Writer, logger *zap.Logger) int {
	players, err := discovery.Browse(context.Background(), discoverTimeout, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(players) == 0 {
		fmt.Fprintln(stdout, "No players found.")
		return 0
	}
	for _, p := range players {
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", p.Name, p.URL(), p.Version)
	}
	return 0
}

// remote follows or stops the session of another player
func remote(cfg config.Config, stdout, stderr io.Writer, logger *zap.Logger) int {
	c, err := client.NewClient(client.Config{Addr: cfg.Remote, Logger: logger})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.RemoteStop {
		if err := c.Stop(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "Stop requested.")
		return 0
	}

	err = c.Watch(ctx, func(st binaural.Status) {
		fmt.Fprintf(stdout, "%-15s %6.2f/%6.2f Hz  elapsed %-8v remaining %v\n",
			st.State, st.LeftHz, st.RightHz, st.Elapsed.Round(time.Second), st.Remaining.Round(time.Second))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
