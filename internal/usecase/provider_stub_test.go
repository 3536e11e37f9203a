package usecase

import (
	"context"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
)

// stubProvider backs the sync service tests; unset hooks behave like a
// source without that capability.
type stubProvider struct {
	name        string
	healthFn    func(ctx context.Context) HealthStatus
	upcomingFn  func(ctx context.Context) ([]ExternalEvent, error)
	completedFn func(ctx context.Context, limit int) ([]ExternalEvent, error)
	cardFn      func(ctx context.Context, eventExternalID string) ([]ExternalFight, error)
	resultFn    func(ctx context.Context, fightExternalID string) (*ExternalResult, error)
	searchFn    func(ctx context.Context, query string, limit int) ([]fighter.Summary, error)
	detailsFn   func(ctx context.Context, externalID string) (*ExternalFighter, error)
	rankingsFn  func(ctx context.Context, division string) ([]ExternalFighter, error)
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) HealthCheck(ctx context.Context) HealthStatus {
	if p.healthFn != nil {
		return p.healthFn(ctx)
	}
	return HealthStatus{Provider: p.Name(), Status: HealthHealthy, CanFetch: true, CanParse: true}
}

func (p *stubProvider) UpcomingEvents(ctx context.Context) ([]ExternalEvent, error) {
	if p.upcomingFn != nil {
		return p.upcomingFn(ctx)
	}
	return nil, nil
}

func (p *stubProvider) CompletedEvents(ctx context.Context, limit int) ([]ExternalEvent, error) {
	if p.completedFn != nil {
		return p.completedFn(ctx, limit)
	}
	return nil, nil
}

func (p *stubProvider) EventFightCard(ctx context.Context, eventExternalID string) ([]ExternalFight, error) {
	if p.cardFn != nil {
		return p.cardFn(ctx, eventExternalID)
	}
	return nil, nil
}

func (p *stubProvider) FightResult(ctx context.Context, fightExternalID string) (*ExternalResult, error) {
	if p.resultFn != nil {
		return p.resultFn(ctx, fightExternalID)
	}
	return nil, nil
}

func (p *stubProvider) SearchFighters(ctx context.Context, query string, limit int) ([]fighter.Summary, error) {
	if p.searchFn != nil {
		return p.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (p *stubProvider) FighterDetails(ctx context.Context, externalID string) (*ExternalFighter, error) {
	if p.detailsFn != nil {
		return p.detailsFn(ctx, externalID)
	}
	return nil, nil
}

func (p *stubProvider) Rankings(ctx context.Context, division string) ([]ExternalFighter, error) {
	if p.rankingsFn != nil {
		return p.rankingsFn(ctx, division)
	}
	return nil, nil
}
