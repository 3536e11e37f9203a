package usecase

import (
	"context"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

// MultiProvider composes a primary and an optional fallback source. With
// health-check-before-use enabled, each read health-checks the primary
// first and routes to the fallback only while the primary is unhealthy.
// A successful fallback never makes the composite report healthy.
type MultiProvider struct {
	primary            FightDataProvider
	fallback           FightDataProvider
	healthCheckEnabled bool
	logger             *logging.Logger
}

func NewMultiProvider(primary, fallback FightDataProvider, healthCheckBeforeUse bool, logger *logging.Logger) *MultiProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &MultiProvider{
		primary:            primary,
		fallback:           fallback,
		healthCheckEnabled: healthCheckBeforeUse,
		logger:             logger,
	}
}

func (m *MultiProvider) Name() string {
	return m.primary.Name()
}

func (m *MultiProvider) HealthCheck(ctx context.Context) HealthStatus {
	primary := m.primary.HealthCheck(ctx)
	if primary.Status != HealthUnhealthy || m.fallback == nil {
		return primary
	}

	fallback := m.fallback.HealthCheck(ctx)
	if fallback.Status == HealthUnhealthy {
		return primary
	}

	// The fallback can serve reads, but the primary is still down.
	fallback.Status = HealthDegraded
	return fallback
}

// pick returns the provider that should serve the next call.
func (m *MultiProvider) pick(ctx context.Context) FightDataProvider {
	if !m.healthCheckEnabled || m.fallback == nil {
		return m.primary
	}

	status := m.primary.HealthCheck(ctx)
	if status.Status != HealthUnhealthy {
		return m.primary
	}

	m.logger.WarnContext(ctx, "primary provider unhealthy, routing to fallback",
		"primary", m.primary.Name(),
		"fallback", m.fallback.Name(),
		"error", status.Error,
	)
	return m.fallback
}

func (m *MultiProvider) UpcomingEvents(ctx context.Context) ([]ExternalEvent, error) {
	return m.pick(ctx).UpcomingEvents(ctx)
}

func (m *MultiProvider) CompletedEvents(ctx context.Context, limit int) ([]ExternalEvent, error) {
	return m.pick(ctx).CompletedEvents(ctx, limit)
}

func (m *MultiProvider) EventFightCard(ctx context.Context, eventExternalID string) ([]ExternalFight, error) {
	return m.pick(ctx).EventFightCard(ctx, eventExternalID)
}

func (m *MultiProvider) FightResult(ctx context.Context, fightExternalID string) (*ExternalResult, error) {
	return m.pick(ctx).FightResult(ctx, fightExternalID)
}

func (m *MultiProvider) SearchFighters(ctx context.Context, query string, limit int) ([]fighter.Summary, error) {
	return m.pick(ctx).SearchFighters(ctx, query, limit)
}

func (m *MultiProvider) FighterDetails(ctx context.Context, externalID string) (*ExternalFighter, error) {
	return m.pick(ctx).FighterDetails(ctx, externalID)
}

func (m *MultiProvider) Rankings(ctx context.Context, division string) ([]ExternalFighter, error) {
	return m.pick(ctx).Rankings(ctx, division)
}
