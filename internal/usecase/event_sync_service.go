package usecase

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/cagepulse/cagepulse/internal/domain/event"
	"github.com/cagepulse/cagepulse/internal/domain/synclog"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

const (
	defaultEventSyncWindow     = 6 * time.Hour
	defaultCompletedEventLimit = 10
	lowEventCountThreshold     = 3
)

type EventSyncConfig struct {
	Source         string
	Window         time.Duration
	CompletedLimit int
}

// EventSyncService reconciles the provider's event lists into the store.
// Runs are gated on the sync log so repeated triggers inside the window
// become no-ops unless forced.
type EventSyncService struct {
	provider FightDataProvider
	events   event.Repository
	syncLog  synclog.Repository
	cfg      EventSyncConfig
	logger   *logging.Logger
}

func NewEventSyncService(provider FightDataProvider, events event.Repository, syncLog synclog.Repository, cfg EventSyncConfig, logger *logging.Logger) *EventSyncService {
	if cfg.Source == "" {
		cfg.Source = provider.Name()
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultEventSyncWindow
	}
	if cfg.CompletedLimit <= 0 {
		cfg.CompletedLimit = defaultCompletedEventLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EventSyncService{
		provider: provider,
		events:   events,
		syncLog:  syncLog,
		cfg:      cfg,
		logger:   logger,
	}
}

// SyncEvents fetches upcoming and recent completed events and upserts
// them. An empty snapshot against a non-empty store aborts the run
// without writes.
func (s *EventSyncService) SyncEvents(ctx context.Context, force bool) (EventSyncSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "EventSyncService.SyncEvents")
	defer span.End()

	started := time.Now()
	summary := EventSyncSummary{Source: s.cfg.Source}

	if !force {
		due, err := s.syncLog.Due(ctx, s.cfg.Source, synclog.KindEvents, s.cfg.Window)
		if err != nil {
			return summary, crerr.Wrap(err, "check event sync due")
		}
		if !due {
			summary.Skipped = 1
			summary.Message = "within sync window, skipped"
			summary.Duration = time.Since(started)
			return summary, nil
		}
	}

	var (
		upcoming, completed []ExternalEvent
		upErr, compErr      error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		upcoming, upErr = s.provider.UpcomingEvents(ctx)
	})
	wg.Go(func() {
		completed, compErr = s.provider.CompletedEvents(ctx, s.cfg.CompletedLimit)
	})
	wg.Wait()

	if upErr != nil && compErr != nil {
		return summary, crerr.Wrapf(ErrDependencyUnavailable, "fetch events from %s: %v; %v", s.cfg.Source, upErr, compErr)
	}
	if upErr != nil {
		summary.Errors = append(summary.Errors, "upcoming events: "+upErr.Error())
	}
	if compErr != nil {
		summary.Errors = append(summary.Errors, "completed events: "+compErr.Error())
	}

	snapshot := mergeEventSnapshots(upcoming, completed)
	if len(snapshot) == 0 {
		stored, err := s.events.ListBySource(ctx, s.cfg.Source)
		if err != nil {
			return summary, crerr.Wrap(err, "list stored events")
		}
		if len(stored) > 0 {
			summary.Aborted = true
			summary.Message = "provider returned zero events but store has data, aborting"
			summary.Duration = time.Since(started)
			s.logger.WarnContext(ctx, "event sync aborted on empty snapshot",
				"source", s.cfg.Source,
				"stored_events", len(stored),
			)
			return summary, crerr.Wrapf(ErrSuspectSnapshot, "source %s returned zero events", s.cfg.Source)
		}
	}
	if len(snapshot) > 0 && len(snapshot) < lowEventCountThreshold {
		s.logger.WarnContext(ctx, "suspiciously few events in snapshot",
			"source", s.cfg.Source,
			"count", len(snapshot),
		)
	}

	for _, item := range snapshot {
		if item.Date == nil {
			summary.Skipped++
			continue
		}

		incomingStatus := event.StatusUpcoming
		if item.Completed {
			incomingStatus = event.StatusCompleted
		}

		existing, err := s.events.GetByExternalID(ctx, s.cfg.Source, item.ExternalID)
		if err != nil {
			summary.Errors = append(summary.Errors, "load event "+item.ExternalID+": "+err.Error())
			continue
		}

		next := event.Event{
			Source:     s.cfg.Source,
			ExternalID: item.ExternalID,
			Name:       item.Name,
			Date:       item.Date,
			Location:   item.Location,
			Status:     incomingStatus,
		}
		if existing != nil {
			next.ID = existing.ID
			next.Status = event.AdvanceStatus(existing.Status, incomingStatus)
		}

		if _, err := s.events.Upsert(ctx, next); err != nil {
			summary.Errors = append(summary.Errors, "upsert event "+item.ExternalID+": "+err.Error())
			continue
		}
		if existing == nil {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}

	if err := s.syncLog.Touch(ctx, s.cfg.Source, synclog.KindEvents); err != nil {
		summary.Errors = append(summary.Errors, "record sync timestamp: "+err.Error())
	}

	summary.Duration = time.Since(started)
	s.logger.InfoContext(ctx, "event sync finished",
		"source", s.cfg.Source,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
		"duration", summary.Duration,
	)
	return summary, nil
}

// mergeEventSnapshots dedupes upcoming and completed lists by external
// id. The completed entry wins a collision so finished events keep
// their terminal flag. Output is sorted for deterministic writes.
func mergeEventSnapshots(upcoming, completed []ExternalEvent) []ExternalEvent {
	merged := make(map[string]ExternalEvent, len(upcoming)+len(completed))
	for _, item := range upcoming {
		if item.ExternalID == "" {
			continue
		}
		merged[item.ExternalID] = item
	}
	for _, item := range completed {
		if item.ExternalID == "" {
			continue
		}
		item.Completed = true
		merged[item.ExternalID] = item
	}

	out := make([]ExternalEvent, 0, len(merged))
	for _, item := range merged {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out
}
