package cli

import (
	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/session"
)

// app bundles the wired pieces every authorized command needs.
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
	log    logger.Logger
}

// loadApp loads config and wires the API client to the session store.
// The store feeds the client its token; the client performs the store's
// auth calls.
func loadApp() (*app, error) {
	cfg, err := Config()
	if err != nil {
		return nil, err
	}

	log := logger.NewEnvLogger("[opsdeck]")

	sessionPath, err := config.SessionPath()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Server, cfg.RequestTimeout, log)
	store := session.NewStore(sessionPath, client, log)
	client.SetTokenSource(store)

	return &app{cfg: cfg, client: client, store: store, log: log}, nil
}

// requireSession returns an auth error when no session is active, so
// commands fail fast with an actionable message instead of a server 401.
func (a *app) requireSession() error {
	if !a.store.Authenticated() {
		return errors.New(errors.ErrAuth,
			"Not logged in",
			"Run 'opsdeck login' to sign in")
	}
	return nil
}
