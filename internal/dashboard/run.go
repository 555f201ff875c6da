package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/dispatch"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/session"
	"github.com/opsdeck/opsdeck/internal/telemetry"
)

// Run starts the dashboard and blocks until the user quits or the
// session dies. The poller and dispatcher are torn down before Run
// returns; nothing they produce outlives the program.
func Run(cfg *config.Config, store *session.Store, client *api.Client, log logger.Logger) error {
	if !store.Authenticated() {
		return errors.New(errors.ErrAuth,
			"Not logged in",
			"Run 'opsdeck login' to sign in")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := telemetry.NewPoller(client, cfg.RefreshInterval, log)
	updates := poller.Start(ctx)
	dispatcher := dispatch.NewDispatcher(client, log)

	model := NewModel(cfg, store, dispatcher, client, updates, log)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, runErr := program.Run()

	poller.Stop()
	dispatcher.Close()

	if runErr != nil {
		return errors.Wrap(runErr, "Dashboard terminated unexpectedly")
	}
	if m, ok := final.(Model); ok && m.authErr != nil {
		return errors.WrapWithCode(m.authErr, errors.ErrAuth,
			"Session expired",
			"Run 'opsdeck login' to sign in again")
	}
	return nil
}
