package app

import (
	"github.com/cagepulse/cagepulse/external/cagefights"
	"github.com/cagepulse/cagepulse/external/fightdataapi"
	"github.com/cagepulse/cagepulse/external/statleague"
	"github.com/cagepulse/cagepulse/internal/config"
	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/platform/resilience"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

// BuildProvider assembles the configured provider chain. Selection
// fails closed to the scraper: a name we cannot honor (unknown, or its
// credentials disabled) degrades to the free source instead of
// refusing to start.
func BuildProvider(cfg config.Config, fetcher *fetch.Fetcher, logger *logging.Logger) usecase.FightDataProvider {
	primary := buildNamed(cfg.PrimaryProvider, cfg, fetcher, logger)

	var fallback usecase.FightDataProvider
	if cfg.FallbackProvider != "" && cfg.FallbackProvider != primary.Name() {
		fallback = buildNamed(cfg.FallbackProvider, cfg, fetcher, logger)
		if fallback.Name() == primary.Name() {
			fallback = nil
		}
	}

	if fallback == nil {
		return primary
	}
	return usecase.NewMultiProvider(primary, fallback, cfg.HealthCheckBeforeUse, logger)
}

func buildNamed(name string, cfg config.Config, fetcher *fetch.Fetcher, logger *logging.Logger) usecase.FightDataProvider {
	switch name {
	case config.ProviderFightDataAPI:
		if cfg.FightDataAPIEnabled {
			return fightdataapi.NewClient(fightdataapi.ClientConfig{
				BaseURL: cfg.FightDataAPIBaseURL,
				Token:   cfg.FightDataAPIToken,
				Fetcher: fetcher,
				Logger:  logger,
				CircuitBreaker: resilience.CircuitBreakerConfig{
					Enabled:          cfg.FightDataAPICircuitEnabled,
					FailureThreshold: cfg.FightDataAPICircuitFailureCount,
					OpenTimeout:      cfg.FightDataAPICircuitOpenTimeout,
					HalfOpenMaxReq:   cfg.FightDataAPICircuitHalfOpenMaxReq,
				},
			})
		}
		logger.Warn("fightdataapi selected but not enabled, falling back to scraper", "provider", name)
	case config.ProviderStatLeague:
		if cfg.StatLeagueEnabled {
			return statleague.NewClient(statleague.ClientConfig{
				BaseURL:     cfg.StatLeagueBaseURL,
				APIKey:      cfg.StatLeagueAPIKey,
				Fetcher:     fetcher,
				Logger:      logger,
				RankingsTTL: cfg.StatLeagueRankingsTTL,
				CircuitBreaker: resilience.CircuitBreakerConfig{
					Enabled:          cfg.StatLeagueCircuitEnabled,
					FailureThreshold: cfg.StatLeagueCircuitFailureCount,
					OpenTimeout:      cfg.StatLeagueCircuitOpenTimeout,
					HalfOpenMaxReq:   cfg.StatLeagueCircuitHalfOpenMaxReq,
				},
			})
		}
		logger.Warn("statleague selected but not enabled, falling back to scraper", "provider", name)
	case config.ProviderCageFights:
	default:
		logger.Warn("unknown provider name, falling back to scraper", "provider", name)
	}

	return cagefights.NewScraper(cagefights.ScraperConfig{
		BaseURL: cfg.CageFightsBaseURL,
		Fetcher: fetcher,
		Logger:  logger,
	})
}
