package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/desertthunder/chalet/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog browser.
//
// While it runs, the favorites store follows the configured change signal so likes made in other terminals show up.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/chalet-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.signal != nil {
		r.store.Read(ctx)
		go func() {
			if err := r.store.Follow(ctx, r.signal); err != nil && !errors.Is(err, context.Canceled) {
				fileLogger.Warn("favorites watch stopped", "error", err)
			}
		}()
	}

	model := ui.NewModel(ctx, ui.Deps{
		Backend:        r.backend,
		Store:          r.store,
		Authenticated:  r.authenticated,
		PageSize:       r.config.UI.PageSize,
		ReconcileDelay: r.config.Favorites.ReconcileDelay(),
		OpenURL:        r.open,
		Logger:         fileLogger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
