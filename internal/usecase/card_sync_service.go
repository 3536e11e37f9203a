package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/event"
	"github.com/cagepulse/cagepulse/internal/domain/fight"
	"github.com/cagepulse/cagepulse/internal/domain/pick"
	"github.com/cagepulse/cagepulse/internal/domain/synclog"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

const (
	defaultCardSyncWindow = 6 * time.Hour
	// Cards churn in fight week, so the gate tightens close to the date.
	nearEventThreshold  = 48 * time.Hour
	nearEventCardWindow = 30 * time.Minute
)

type CardSyncConfig struct {
	Source     string
	Window     time.Duration
	NearWindow time.Duration
}

// CardSyncService reconciles fight cards against the store. Fights that
// vanish from the provider card are canceled and their active picks
// voided.
type CardSyncService struct {
	provider FightDataProvider
	events   event.Repository
	fights   fight.Repository
	picks    pick.Repository
	syncLog  synclog.Repository
	cfg      CardSyncConfig
	logger   *logging.Logger

	now func() time.Time
}

func NewCardSyncService(provider FightDataProvider, events event.Repository, fights fight.Repository, picks pick.Repository, syncLog synclog.Repository, cfg CardSyncConfig, logger *logging.Logger) *CardSyncService {
	if cfg.Source == "" {
		cfg.Source = provider.Name()
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultCardSyncWindow
	}
	if cfg.NearWindow <= 0 {
		cfg.NearWindow = nearEventCardWindow
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CardSyncService{
		provider: provider,
		events:   events,
		fights:   fights,
		picks:    picks,
		syncLog:  syncLog,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncCard refreshes fight cards. With an event external id it targets
// that one card and skips the sync window gate; with an empty id it
// walks every non-final event from the source, honoring the gate unless
// forced. An empty provider card against stored fights aborts that
// event without writes.
func (s *CardSyncService) SyncCard(ctx context.Context, eventExternalID string, force bool) (CardSyncSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "CardSyncService.SyncCard")
	defer span.End()

	started := time.Now()
	summary := CardSyncSummary{Source: s.cfg.Source, EventID: eventExternalID}

	if eventExternalID == "" {
		err := s.syncAllCards(ctx, force, &summary)
		summary.Duration = time.Since(started)
		if err != nil {
			return summary, err
		}
		s.logFinish(ctx, eventExternalID, summary)
		return summary, nil
	}

	parent, err := s.events.GetByExternalID(ctx, s.cfg.Source, eventExternalID)
	if err != nil {
		return summary, crerr.Wrap(err, "load event")
	}
	if parent == nil {
		return summary, crerr.Wrapf(ErrNotFound, "event %s from source %s", eventExternalID, s.cfg.Source)
	}

	if err := s.syncOneCard(ctx, parent, &summary); err != nil {
		if crerr.Is(err, ErrSuspectSnapshot) {
			summary.Aborted = true
			summary.Message = "provider returned empty card but store has fights, aborting"
			s.logger.WarnContext(ctx, "card sync aborted on empty snapshot",
				"source", s.cfg.Source,
				"event", eventExternalID,
			)
		}
		summary.Duration = time.Since(started)
		return summary, err
	}

	if err := s.syncLog.Touch(ctx, s.cfg.Source, synclog.KindCards); err != nil {
		summary.Errors = append(summary.Errors, "record sync timestamp: "+err.Error())
	}

	summary.Duration = time.Since(started)
	s.logFinish(ctx, eventExternalID, summary)
	return summary, nil
}

// syncAllCards reconciles every upcoming or in-progress event from the
// source. The gate window is the tightest one across the candidates, so
// a card inside fight week refreshes on the short cadence.
func (s *CardSyncService) syncAllCards(ctx context.Context, force bool, summary *CardSyncSummary) error {
	candidates, err := s.pendingEvents(ctx)
	if err != nil {
		return err
	}

	if !force {
		window := s.cfg.Window
		for i := range candidates {
			if w := s.cardWindow(&candidates[i]); w < window {
				window = w
			}
		}
		due, err := s.syncLog.Due(ctx, s.cfg.Source, synclog.KindCards, window)
		if err != nil {
			return crerr.Wrap(err, "check card sync due")
		}
		if !due {
			summary.Message = "within sync window, skipped"
			return nil
		}
	}

	for i := range candidates {
		if err := s.syncOneCard(ctx, &candidates[i], summary); err != nil {
			summary.Errors = append(summary.Errors, "sync card for event "+candidates[i].ExternalID+": "+err.Error())
		}
	}

	if err := s.syncLog.Touch(ctx, s.cfg.Source, synclog.KindCards); err != nil {
		summary.Errors = append(summary.Errors, "record sync timestamp: "+err.Error())
	}
	return nil
}

func (s *CardSyncService) pendingEvents(ctx context.Context) ([]event.Event, error) {
	all, err := s.events.ListBySource(ctx, s.cfg.Source)
	if err != nil {
		return nil, crerr.Wrap(err, "list events")
	}

	var out []event.Event
	for _, item := range all {
		switch event.NormalizeStatus(item.Status) {
		case event.StatusCompleted, event.StatusCanceled:
		default:
			out = append(out, item)
		}
	}
	return out, nil
}

// syncOneCard diffs one event's provider card against the store.
func (s *CardSyncService) syncOneCard(ctx context.Context, parent *event.Event, summary *CardSyncSummary) error {
	card, err := s.provider.EventFightCard(ctx, parent.ExternalID)
	if err != nil {
		return crerr.Wrapf(ErrDependencyUnavailable, "fetch fight card from %s: %v", s.cfg.Source, err)
	}

	stored, err := s.fights.ListByEvent(ctx, parent.ID)
	if err != nil {
		return crerr.Wrap(err, "list stored fights")
	}

	if len(card) == 0 && len(stored) > 0 {
		return crerr.Wrapf(ErrSuspectSnapshot, "source %s returned empty card for %s", s.cfg.Source, parent.ExternalID)
	}

	seen := make(map[string]bool, len(card))
	for _, item := range card {
		if item.ExternalID != "" {
			seen[item.ExternalID] = true
		}

		next := fight.Fight{
			Source:      s.cfg.Source,
			ExternalID:  item.ExternalID,
			EventID:     parent.ID,
			CardOrder:   item.CardOrder,
			Red:         fight.Corner{FighterExternalID: item.RedExternalID, Name: item.RedName},
			Blue:        fight.Corner{FighterExternalID: item.BlueExternalID, Name: item.BlueName},
			WeightClass: item.WeightClass,
			Rounds:      fight.ScheduledRounds(item.TitleBout),
			TitleBout:   item.TitleBout,
			Status:      fight.StatusScheduled,
		}

		var existing *fight.Fight
		if item.ExternalID != "" {
			existing, err = s.fights.GetByExternalID(ctx, s.cfg.Source, item.ExternalID)
			if err != nil {
				summary.Errors = append(summary.Errors, "load fight "+item.ExternalID+": "+err.Error())
				continue
			}
		}
		if existing != nil {
			next.ID = existing.ID
			// A finished fight never goes back to scheduled.
			if existing.Status == fight.StatusCompleted {
				next.Status = existing.Status
			}
		}

		if _, err := s.fights.Upsert(ctx, next); err != nil {
			summary.Errors = append(summary.Errors, "upsert fight "+item.ExternalID+": "+err.Error())
			continue
		}
		if existing == nil {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}

	for _, item := range stored {
		// A stored fight without an external id can never show up in the
		// provider card, so its absence says nothing about cancellation.
		if item.ExternalID == "" || seen[item.ExternalID] || !fight.IsActive(item.Status) || item.Status == fight.StatusCompleted {
			continue
		}

		if err := s.fights.UpdateStatus(ctx, item.ID, fight.StatusCanceled); err != nil {
			summary.Errors = append(summary.Errors, "cancel fight "+item.ExternalID+": "+err.Error())
			continue
		}
		summary.Canceled++

		voided, err := s.picks.VoidByFight(ctx, item.ID)
		if err != nil {
			summary.Errors = append(summary.Errors, "void picks for fight "+item.ExternalID+": "+err.Error())
			continue
		}
		summary.VoidedPicks += voided
		if voided > 0 {
			s.logger.InfoContext(ctx, "voided picks on canceled fight",
				"source", s.cfg.Source,
				"fight", item.ExternalID,
				"voided", voided,
			)
		}
	}
	return nil
}

func (s *CardSyncService) logFinish(ctx context.Context, eventExternalID string, summary CardSyncSummary) {
	s.logger.InfoContext(ctx, "card sync finished",
		"source", s.cfg.Source,
		"event", eventExternalID,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"canceled", summary.Canceled,
		"voided_picks", summary.VoidedPicks,
		"errors", len(summary.Errors),
		"duration", summary.Duration,
	)
}

// cardWindow shrinks the gate window once the event is inside fight week.
func (s *CardSyncService) cardWindow(parent *event.Event) time.Duration {
	if parent.Date == nil {
		return s.cfg.Window
	}
	until := parent.Date.Sub(s.now())
	if until >= 0 && until <= nearEventThreshold {
		return s.cfg.NearWindow
	}
	return s.cfg.Window
}
