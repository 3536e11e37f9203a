package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/event"
	"github.com/cagepulse/cagepulse/internal/infrastructure/repository/memory"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

func TestEventSyncService_InsertsAndUpdates(t *testing.T) {
	t.Parallel()

	date1 := time.Date(2026, 9, 12, 22, 0, 0, 0, time.UTC)
	date2 := time.Date(2026, 8, 15, 22, 0, 0, 0, time.UTC)

	provider := &stubProvider{
		upcomingFn: func(context.Context) ([]ExternalEvent, error) {
			return []ExternalEvent{
				{ExternalID: "evt-301", Name: "Clash 301", Date: &date1, Location: "Las Vegas"},
			}, nil
		},
		completedFn: func(context.Context, int) ([]ExternalEvent, error) {
			return []ExternalEvent{
				{ExternalID: "evt-300", Name: "Clash 300", Date: &date2, Location: "Rio"},
			}, nil
		},
	}
	events := memory.NewEventRepository()
	syncLog := memory.NewSyncLogRepository()
	svc := NewEventSyncService(provider, events, syncLog, EventSyncConfig{Source: "stub"}, logging.NewNop())

	summary, err := svc.SyncEvents(context.Background(), false)
	if err != nil {
		t.Fatalf("sync events: %v", err)
	}
	if summary.Inserted != 2 || summary.Updated != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored, err := events.GetByExternalID(context.Background(), "stub", "evt-300")
	if err != nil || stored == nil {
		t.Fatalf("expected completed event stored, err=%v", err)
	}
	if stored.Status != event.StatusCompleted {
		t.Fatalf("completed event status: got %s", stored.Status)
	}

	summary, err = svc.SyncEvents(context.Background(), true)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.Inserted != 0 || summary.Updated != 2 {
		t.Fatalf("expected pure update run, got %+v", summary)
	}
}

func TestEventSyncService_NeverDowngradesCompletedEvent(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
	events := memory.NewEventRepository()
	if _, err := events.Upsert(context.Background(), event.Event{
		Source:     "stub",
		ExternalID: "evt-299",
		Name:       "Clash 299",
		Date:       &date,
		Status:     event.StatusCompleted,
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	provider := &stubProvider{
		upcomingFn: func(context.Context) ([]ExternalEvent, error) {
			// The source erroneously re-lists the finished event as upcoming.
			return []ExternalEvent{{ExternalID: "evt-299", Name: "Clash 299", Date: &date}}, nil
		},
	}
	svc := NewEventSyncService(provider, events, memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	if _, err := svc.SyncEvents(context.Background(), true); err != nil {
		t.Fatalf("sync events: %v", err)
	}

	stored, _ := events.GetByExternalID(context.Background(), "stub", "evt-299")
	if stored == nil || stored.Status != event.StatusCompleted {
		t.Fatalf("completed event downgraded: %+v", stored)
	}
}

func TestEventSyncService_SkipsEventsWithoutDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		upcomingFn: func(context.Context) ([]ExternalEvent, error) {
			return []ExternalEvent{
				{ExternalID: "evt-1", Name: "Dated", Date: &date},
				{ExternalID: "evt-2", Name: "TBD"},
			}, nil
		},
	}
	events := memory.NewEventRepository()
	svc := NewEventSyncService(provider, events, memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	summary, err := svc.SyncEvents(context.Background(), true)
	if err != nil {
		t.Fatalf("sync events: %v", err)
	}
	if summary.Inserted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if stored, _ := events.GetByExternalID(context.Background(), "stub", "evt-2"); stored != nil {
		t.Fatalf("undated event must not be stored")
	}
}

func TestEventSyncService_AbortsOnEmptySnapshotAgainstNonEmptyStore(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	events := memory.NewEventRepository()
	if _, err := events.Upsert(context.Background(), event.Event{
		Source: "stub", ExternalID: "evt-1", Name: "Stored", Date: &date,
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	svc := NewEventSyncService(&stubProvider{}, events, memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	summary, err := svc.SyncEvents(context.Background(), true)
	if !crerr.Is(err, ErrSuspectSnapshot) {
		t.Fatalf("expected suspect snapshot error, got %v", err)
	}
	if !summary.Aborted {
		t.Fatalf("expected aborted summary: %+v", summary)
	}

	stored, _ := events.ListBySource(context.Background(), "stub")
	if len(stored) != 1 || stored[0].Name != "Stored" {
		t.Fatalf("store must be untouched after abort: %+v", stored)
	}
}

func TestEventSyncService_EmptySnapshotAgainstEmptyStoreIsFine(t *testing.T) {
	t.Parallel()

	svc := NewEventSyncService(&stubProvider{}, memory.NewEventRepository(), memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	summary, err := svc.SyncEvents(context.Background(), true)
	if err != nil {
		t.Fatalf("sync events: %v", err)
	}
	if summary.Inserted != 0 || summary.Aborted {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestEventSyncService_WindowGateSkipsRepeatRuns(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		upcomingFn: func(context.Context) ([]ExternalEvent, error) {
			return []ExternalEvent{{ExternalID: "evt-1", Name: "Clash", Date: &date}}, nil
		},
	}
	svc := NewEventSyncService(provider, memory.NewEventRepository(), memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	if _, err := svc.SyncEvents(context.Background(), false); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	summary, err := svc.SyncEvents(context.Background(), false)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.Skipped != 1 || summary.Inserted != 0 || summary.Message == "" {
		t.Fatalf("expected gated no-op, got %+v", summary)
	}

	// Force punches through the gate.
	summary, err = svc.SyncEvents(context.Background(), true)
	if err != nil {
		t.Fatalf("forced sync: %v", err)
	}
	if summary.Updated != 1 {
		t.Fatalf("expected forced run to write, got %+v", summary)
	}
}

func TestEventSyncService_BothFetchesFailing(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	provider := &stubProvider{
		upcomingFn:  func(context.Context) ([]ExternalEvent, error) { return nil, boom },
		completedFn: func(context.Context, int) ([]ExternalEvent, error) { return nil, boom },
	}
	svc := NewEventSyncService(provider, memory.NewEventRepository(), memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	if _, err := svc.SyncEvents(context.Background(), true); !crerr.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestEventSyncService_OneListFailingStillSyncsTheOther(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		upcomingFn: func(context.Context) ([]ExternalEvent, error) {
			return []ExternalEvent{{ExternalID: "evt-1", Name: "Clash", Date: &date}}, nil
		},
		completedFn: func(context.Context, int) ([]ExternalEvent, error) {
			return nil, errors.New("completed feed down")
		},
	}
	svc := NewEventSyncService(provider, memory.NewEventRepository(), memory.NewSyncLogRepository(), EventSyncConfig{Source: "stub"}, logging.NewNop())

	summary, err := svc.SyncEvents(context.Background(), true)
	if err != nil {
		t.Fatalf("sync events: %v", err)
	}
	if summary.Inserted != 1 || len(summary.Errors) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestMergeEventSnapshots_CompletedWinsCollision(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	merged := mergeEventSnapshots(
		[]ExternalEvent{{ExternalID: "evt-1", Name: "Clash", Date: &date}, {ExternalID: ""}},
		[]ExternalEvent{{ExternalID: "evt-1", Name: "Clash", Date: &date}},
	)

	if len(merged) != 1 {
		t.Fatalf("expected single merged event, got %d", len(merged))
	}
	if !merged[0].Completed {
		t.Fatalf("completed entry must win the collision")
	}
}
