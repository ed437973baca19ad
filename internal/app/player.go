// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates the session, stop triggers, UI, control API and metrics
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/binaural-go/binaural/internal/control"
	"github.com/binaural-go/binaural/internal/discovery"
	"github.com/binaural-go/binaural/internal/input"
	"github.com/binaural-go/binaural/internal/metrics"
	"github.com/binaural-go/binaural/internal/ui"
	"github.com/binaural-go/binaural/pkg/audio/output"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/binaural-go/binaural/pkg/preset"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// statusInterval is how often the UI and metrics are refreshed
const statusInterval = 500 * time.Millisecond

// Config holds player configuration
type Config struct {
	Definition   preset.Definition
	Device       output.Device
	PollInterval time.Duration

	UseTUI bool
	// HandleSignals stops playback on SIGINT/SIGTERM
	HandleSignals bool
	// Input is the plain-mode stop trigger; stdin when nil
	Input binaural.Source
	// Out receives plain-mode messages; stdout when nil
	Out io.Writer
	// TUIOptions are passed to the session screen program
	TUIOptions []tea.ProgramOption

	ControlAddr string
	MDNS        bool
	Name        string

	Logger *zap.Logger
}

// Player runs one playback session with its surroundings
type Player struct {
	config   Config
	logger   *zap.Logger
	out      io.Writer
	session  *binaural.Session
	stops    *binaural.ChanSource
	recorder *metrics.Recorder
	tuiProg  *tea.Program
	control  *control.Server
}

// New creates a new player
func New(config Config) *Player {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	p := &Player{
		config:   config,
		logger:   logger,
		out:      out,
		stops:    binaural.NewChanSource(4),
		recorder: metrics.NewRecorder(),
	}
	p.session = binaural.NewSession(binaural.SessionConfig{
		Params:       config.Definition.Params(),
		Device:       config.Device,
		PollInterval: config.PollInterval,
		Logger:       logger,
		OnError:      p.handleDeviceError,
	})
	return p
}

// Session returns the underlying playback session
func (p *Player) Session() *binaural.Session {
	return p.session
}

// Run plays until the session ends and returns its error
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer p.stops.Close()

	def := p.config.Definition
	params := def.Params()
	sig := p.session.Signal()

	p.logger.Info("starting session",
		zap.String("preset", def.Name),
		zap.String("session", p.session.ID()),
		zap.Stringer("params", params))

	go binaural.Listen(ctx, p.stops, sig, p.countStop(nil), p.logger)

	if p.config.HandleSignals {
		signals := input.NewSignalSource(os.Interrupt, syscall.SIGTERM)
		defer signals.Stop()
		go binaural.Listen(ctx, signals, sig, p.countStop(nil), p.logger)
	}

	if err := p.startControl(ctx); err != nil {
		return err
	}

	tuiDone := make(chan struct{})
	if p.config.UseTUI {
		prog, err := ui.Run(ui.NewControls(p.stops), def.Name, params, p.config.TUIOptions...)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		p.tuiProg = prog
		go func() {
			defer close(tuiDone)
			if _, err := prog.Run(); err != nil {
				p.logger.Error("TUI exited", zap.Error(err))
				p.session.Cancel()
			}
		}()
	} else {
		close(tuiDone)
		fmt.Fprint(p.out, ui.Banner(ui.BannerTitle, ui.BannerAuthor))
		fmt.Fprintf(p.out, "Preset: %s\n", def.Name)
		fmt.Fprint(p.out, ui.Settings(params))
		fmt.Fprintf(p.out, "Playing for a maximum of %d minutes...\n", params.DurationMinutes)
		fmt.Fprintln(p.out, "Press Enter to stop playback.")

		src := p.config.Input
		if src == nil {
			src = input.NewStdinSource()
		}
		go binaural.Listen(ctx, src, sig, p.countStop(binaural.StopOn("enter")), p.logger)
	}

	go p.statusLoop(ctx)

	err := p.session.Run(ctx)
	final := p.session.Status()
	p.recorder.Finish(final, err)

	if p.tuiProg != nil {
		p.tuiProg.Send(ui.StatusMsg{Status: final, Err: err, Final: true})
		<-tuiDone
	}
	p.report(final, err)
	return err
}

// startControl starts the HTTP control API and its mDNS advertisement
func (p *Player) startControl(ctx context.Context) error {
	if p.config.ControlAddr == "" {
		return nil
	}

	p.control = control.New(control.Config{
		Addr:   p.config.ControlAddr,
		Status: p.session.Status,
		Stop:   p.stops,
		Logger: p.logger,
	})
	if err := p.control.Listen(); err != nil {
		return err
	}
	go func() {
		if err := p.control.Serve(ctx); err != nil {
			p.logger.Error("control API stopped", zap.Error(err))
		}
	}()

	if p.config.MDNS {
		disc := discovery.NewManager(discovery.Config{
			ServiceName: p.config.Name,
			Port:        p.control.Port(),
			Logger:      p.logger,
		})
		if err := disc.Advertise(); err != nil {
			p.logger.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			go func() {
				<-ctx.Done()
				disc.Stop()
			}()
		}
	}
	return nil
}

// statusLoop publishes the session status to the TUI and metrics
func (p *Player) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st := p.session.Status()
			p.recorder.Observe(st)
			if p.tuiProg != nil {
				p.tuiProg.Send(ui.StatusMsg{Status: st})
			}
			if binaural.StateDone.String() == st.State || binaural.StateFailed.String() == st.State {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleDeviceError runs on the backend's goroutine
func (p *Player) handleDeviceError(err error) {
	p.recorder.DeviceError()
	if p.tuiProg != nil {
		go p.tuiProg.Send(ui.StatusMsg{Err: err})
		return
	}
	fmt.Fprintln(p.out, binaural.Describe(err))
}

// countStop wraps a stop predicate so accepted events are counted
func (p *Player) countStop(isStop func(binaural.Event) bool) func(binaural.Event) bool {
	return func(ev binaural.Event) bool {
		if isStop != nil && !isStop(ev) {
			return false
		}
		p.recorder.StopRequested(ev.Source)
		return true
	}
}

// report prints the outcome in plain mode
func (p *Player) report(final binaural.Status, err error) {
	if p.config.UseTUI {
		return
	}
	switch {
	case err != nil:
		// main prints the failure
	case final.Reason == binaural.StopCancelled:
		fmt.Fprintln(p.out, "Playback cancelled by user.")
	default:
		fmt.Fprintln(p.out, "Playback finished.")
	}
}
