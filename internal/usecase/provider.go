package usecase

import (
	"context"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
)

// Health classifications for one provider.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is produced fresh on every check and never cached.
type HealthStatus struct {
	Provider string
	Status   string
	Latency  time.Duration
	CanFetch bool
	CanParse bool
	Error    string
}

// ExternalEvent is one event as a source reports it. Events without a
// parseable date carry Date == nil and are excluded from sync.
type ExternalEvent struct {
	ExternalID string
	Name       string
	Date       *time.Time
	Location   string
	Completed  bool
}

// ExternalFight is one bout on a source's fight card.
type ExternalFight struct {
	ExternalID      string
	EventExternalID string
	CardOrder       int
	RedExternalID   string
	RedName         string
	BlueExternalID  string
	BlueName        string
	WeightClass     string
	TitleBout       bool
}

// ExternalResult is a terminal fight outcome as a source reports it.
type ExternalResult struct {
	FightExternalID string
	Winner          string
	Method          string
	EndRound        int
	EndTime         string
}

// ExternalFighter is a full fighter profile as a source reports it.
type ExternalFighter struct {
	ExternalID  string
	FirstName   string
	LastName    string
	Nickname    string
	WeightClass string
	HeightCm    float64
	ReachCm     float64
	Wins        int
	Losses      int
	Draws       int
	NoContests  int
	StrikesLPM  float64
	StrikeAcc   float64
	TakedownAvg float64
	SubAvg      float64
	Rank        *int
	Interim     bool
}

// FightDataProvider is the uniform read-only contract over one external
// source. Capabilities a source does not support return empty results,
// never errors; callers must not read completeness into an empty slice.
type FightDataProvider interface {
	Name() string
	HealthCheck(ctx context.Context) HealthStatus
	UpcomingEvents(ctx context.Context) ([]ExternalEvent, error)
	CompletedEvents(ctx context.Context, limit int) ([]ExternalEvent, error)
	EventFightCard(ctx context.Context, eventExternalID string) ([]ExternalFight, error)
	FightResult(ctx context.Context, fightExternalID string) (*ExternalResult, error)
	SearchFighters(ctx context.Context, query string, limit int) ([]fighter.Summary, error)
	FighterDetails(ctx context.Context, externalID string) (*ExternalFighter, error)
	Rankings(ctx context.Context, division string) ([]ExternalFighter, error)
}
