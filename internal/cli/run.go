package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"checkable/internal/config"
	"checkable/internal/eventbus"
	"checkable/internal/state"
	"checkable/internal/ui"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the tile gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGallery(cmd, opts)
		},
	}
}

func runGallery(cmd *cobra.Command, opts *options) error {
	bus := eventbus.New()
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus, opts.configPath)
	cfg, err := configSvc.Load()
	if err != nil {
		return err
	}

	statePath := resolveStatePath(opts.statePath, cfg, configSvc.Path())
	store := state.NewFileStore(statePath, bus)
	log.Info("Starting gallery", "config", configSvc.Path(), "state", statePath)

	model, err := ui.NewModel(bus, cfg, store)
	if err != nil {
		return err
	}
	defer model.Close()

	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	}
	if cfg.UISettings.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, programOpts...)
	model.SetProgram(p)

	// failed state writes are published on the bus and end up in the status line
	unsubscribe := bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && errors.Is(cmd.Context().Err(), context.Canceled) {
			log.Info("Interrupted")
			return nil
		}
		return fmt.Errorf("gallery: %w", err)
	}
	return nil
}

// resolveStatePath picks the state file: the flag, then ui.state_file relative
// to the config file, then state.toml next to the config file
func resolveStatePath(flag string, cfg *config.Config, configPath string) string {
	if flag != "" {
		return flag
	}
	dir := filepath.Dir(configPath)
	if cfg.UISettings.StateFile != "" {
		if filepath.IsAbs(cfg.UISettings.StateFile) {
			return cfg.UISettings.StateFile
		}
		return filepath.Join(dir, cfg.UISettings.StateFile)
	}
	return filepath.Join(dir, "state.toml")
}
