package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/cli/autologin"
	"github.com/folio-dev/folio/internal/cli/client"
	"github.com/folio-dev/folio/internal/cli/config"
	"github.com/folio-dev/folio/internal/cli/credstore"
	"github.com/folio-dev/folio/internal/cli/session"
	"github.com/folio-dev/folio/internal/logger"
)

// deps bundles everything a command needs to talk to the session core
type deps struct {
	cfg      *config.Config
	store    credstore.Store
	api      *client.Client
	sessions *session.Manager
	auto     *autologin.Runner
	log      zerolog.Logger
}

// buildDeps loads folio.json and wires the session core around it
func buildDeps() (*deps, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'folio init' to create a configuration file", err)
	}

	store, err := credstore.New()
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger()
	api := client.New(cfg.ServerURL)
	sessions := session.NewManager(store, api, log)
	auto := autologin.NewRunner(store, api, sessions, cfg.Development, log)

	return &deps{
		cfg:      cfg,
		store:    store,
		api:      api,
		sessions: sessions,
		auto:     auto,
		log:      log,
	}, nil
}
