package app

import (
	"context"
	"net/http"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/config"
	"github.com/cagepulse/cagepulse/internal/infrastructure/repository/postgres"
	"github.com/cagepulse/cagepulse/internal/interfaces/httpapi"
	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

// NewHTTPServer wires repositories, providers, and sync services into
// the internal job server. The returned cleanup closes the database
// pool and must run on shutdown.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	db, err := postgres.Connect(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, crerr.Wrap(err, "connect database")
	}
	cleanup := func() { _ = db.Close() }

	eventRepo := postgres.NewEventRepository(db)
	fightRepo := postgres.NewFightRepository(db)
	fighterRepo := postgres.NewFighterRepository(db)
	identityRepo := postgres.NewIdentityRepository(db)
	pickRepo := postgres.NewPickRepository(db)
	syncLogRepo := postgres.NewSyncLogRepository(db)

	fetcher := fetch.New(fetch.Config{
		BaseDelay:  cfg.FetchBaseDelay,
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.FetchMaxRetries,
		UserAgent:  cfg.FetchUserAgent,
		Logger:     logger,
	})

	provider := BuildProvider(cfg, fetcher, logger)
	source := provider.Name()

	eventSync := usecase.NewEventSyncService(provider, eventRepo, syncLogRepo, usecase.EventSyncConfig{
		Source:         source,
		Window:         cfg.SyncEventsWindow,
		CompletedLimit: cfg.SyncCompletedLimit,
	}, logger)

	cardSync := usecase.NewCardSyncService(provider, eventRepo, fightRepo, pickRepo, syncLogRepo, usecase.CardSyncConfig{
		Source:     source,
		Window:     cfg.SyncCardsWindow,
		NearWindow: cfg.SyncCardsNearWindow,
	}, logger)

	resultSync := usecase.NewResultSyncService(provider, eventRepo, fightRepo, fighterRepo, pickRepo, syncLogRepo, usecase.ResultSyncConfig{
		Source:          source,
		Window:          cfg.SyncResultsWindow,
		RefreshPoolSize: cfg.RefreshPoolSize,
	}, logger)

	identitySvc := usecase.NewIdentityService(fighterRepo, identityRepo, usecase.IdentityConfig{
		SourceA: cfg.MappingSourceA,
		SourceB: cfg.MappingSourceB,
	}, logger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Provider:   provider,
		EventSync:  eventSync,
		CardSync:   cardSync,
		ResultSync: resultSync,
		Identity:   identitySvc,
		JobToken:   cfg.InternalJobToken,
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return httpServer, cleanup, nil
}
