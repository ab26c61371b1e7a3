package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/radiopanel/internal/audio"
	"github.com/alkime/radiopanel/internal/config"
	"github.com/alkime/radiopanel/internal/logger"
	"github.com/alkime/radiopanel/internal/panel"
	"github.com/alkime/radiopanel/internal/server"
	"github.com/alkime/radiopanel/internal/tui"
	"github.com/alkime/radiopanel/pkg/collections"
	tea "github.com/charmbracelet/bubbletea"
)

// CLI defines the radiopanel command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the radio panel in the terminal"`

	// Subcommands
	Devices DevicesCmd `cmd:"" help:"List available playback devices"`
	Presets PresetsCmd `cmd:"" help:"Print the preset channel table"`
	State   StateCmd   `cmd:"" help:"Print the power-on device state as JSON"`
}

// TUICmd is the default command that runs the panel.
type TUICmd struct {
	Profile string `flag:"" optional:"" type:"path" help:"Panel profile YAML (overrides RADIOPANEL_PROFILE)"`
	NoAudio bool   `flag:"" help:"Run without opening a playback device"`
	Monitor string `flag:"" optional:"" help:"Serve the state monitor on this address (overrides RADIOPANEL_MONITOR_ADDR)"`
}

const nullPumpInterval = 20 * time.Millisecond

// output is an audio sink whose recent samples can be metered.
type output interface {
	audio.Output
	Meter() *audio.SampleRingBuffer
}

// Run executes the TUI command.
//
//nolint:funlen // CLI command with multiple setup steps
func (c *TUICmd) Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := sync.WaitGroup{}

	if c.Profile != "" {
		cfg.Profile = c.Profile
	}

	if c.Monitor != "" {
		cfg.MonitorAddr = c.Monitor
	}

	if c.NoAudio {
		cfg.Audio = false
	}

	// The TUI owns the terminal; logs go to a file.
	lg, logFile, err := logger.SetupFileLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	profile, err := config.LoadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	out, err := newOutput(cfg, lg)
	if err != nil {
		return err
	}

	// always release the device when we're done
	defer func() {
		if err := out.Close(); err != nil {
			lg.Error("Failed to close audio output", "error", err)
		}
	}()

	p, err := panel.New(profile, out, panel.WithLogger(lg))
	if err != nil {
		return fmt.Errorf("failed to build panel: %w", err)
	}

	defer func() {
		if err := p.Close(); err != nil {
			lg.Error("Failed to silence panel", "error", err)
		}
	}()

	if cfg.MonitorEnabled() {
		updates := make(chan panel.DeviceState, 64)
		if err := p.Subscribe(updates); err != nil {
			return err
		}

		// monitor records go to the same file as JSON lines
		srv := server.New(cfg, p, logger.JSONLogger(cfg, logFile))

		wg.Go(func() {
			if err := srv.Run(ctx, updates); err != nil {
				lg.Error("Monitor error", "error", err)
			}
		})
	}

	if err := p.Start(ctx); err != nil {
		return err
	}

	// without a device nothing drains the synth; pump it at device pace
	if null, ok := out.(*audio.Null); ok {
		wg.Go(func() { null.Run(ctx, nullPumpInterval) })
	}

	model := tui.New(p, tui.Options{
		Cancel:       cancel,
		Levels:       out.Meter().Window(audio.MeterSamples),
		CellAspect:   cfg.CellAspect,
		PixelsPerRow: cfg.PixelsPerRow,
		Logger:       lg,
	})

	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	_, runErr := prog.Run()

	cancel()
	wg.Wait()
	p.Wait()

	if runErr != nil {
		return fmt.Errorf("failed to start TUI: %w", runErr)
	}

	fmt.Println("radio off. bye!")

	return nil
}

func newOutput(cfg *config.Config, lg *slog.Logger) (output, error) {
	if !cfg.Audio {
		lg.Info("Audio disabled")
		return audio.NewNull(cfg.SampleRate), nil
	}

	player, err := audio.NewPlayer(audio.DeviceConfig{SampleRate: cfg.SampleRate}, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}

	return player, nil
}

// DevicesCmd lists available playback devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating playback devices...")

	devices, err := audio.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// PresetsCmd prints the preset channel table of the active profile.
type PresetsCmd struct {
	Profile string `flag:"" optional:"" type:"path" help:"Panel profile YAML"`
}

// Run executes the presets command.
func (c *PresetsCmd) Run(cfg *config.Config) error {
	profile, err := config.LoadProfile(firstNonEmpty(c.Profile, cfg.Profile))
	if err != nil {
		return err
	}

	for _, ch := range collections.SortedKeys(profile.Presets) {
		fmt.Printf("%2d  %s MHz\n", ch, profile.Presets[ch])
	}

	fmt.Printf("GD  %s MHz\n", profile.GuardFrequency)

	return nil
}

// StateCmd prints the state the panel powers up in.
type StateCmd struct {
	Profile string `flag:"" optional:"" type:"path" help:"Panel profile YAML"`
}

// Run executes the state command.
func (c *StateCmd) Run(cfg *config.Config) error {
	profile, err := config.LoadProfile(firstNonEmpty(c.Profile, cfg.Profile))
	if err != nil {
		return err
	}

	p, err := panel.New(profile, nil)
	if err != nil {
		return fmt.Errorf("failed to build panel: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(p.State())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Text logger for CLI output; the TUI swaps in a file logger.
	logger.SetupTextLogger(cfg, os.Stdout)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("radiopanel"),
		kong.Description("A UHF radio control panel for the terminal."),
	)
	err = ctx.Run(cfg)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
