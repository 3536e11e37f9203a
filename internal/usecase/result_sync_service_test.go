package usecase

import (
	"context"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/event"
	"github.com/cagepulse/cagepulse/internal/domain/fight"
	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/domain/pick"
	"github.com/cagepulse/cagepulse/internal/infrastructure/repository/memory"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

type resultSyncFixture struct {
	events   *memory.EventRepository
	fights   *memory.FightRepository
	fighters *memory.FighterRepository
	picks    *memory.PickRepository
	syncLog  *memory.SyncLogRepository
	parent   event.Event
}

func newResultSyncFixture(t *testing.T) *resultSyncFixture {
	t.Helper()

	f := &resultSyncFixture{
		events:   memory.NewEventRepository(),
		fights:   memory.NewFightRepository(),
		fighters: memory.NewFighterRepository(),
		picks:    memory.NewPickRepository(),
		syncLog:  memory.NewSyncLogRepository(),
	}

	date := time.Now().Add(-2 * time.Hour).UTC()
	parent, err := f.events.Upsert(context.Background(), event.Event{
		Source:     "stub",
		ExternalID: "evt-301",
		Name:       "Clash 301",
		Date:       &date,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	f.parent = parent
	return f
}

func (f *resultSyncFixture) addFight(t *testing.T, externalID string, titleBout bool, redID, blueID string) fight.Fight {
	t.Helper()

	item, err := f.fights.Upsert(context.Background(), fight.Fight{
		Source:     "stub",
		ExternalID: externalID,
		EventID:    f.parent.ID,
		Red:        fight.Corner{FighterExternalID: redID, Name: "Red " + redID},
		Blue:       fight.Corner{FighterExternalID: blueID, Name: "Blue " + blueID},
		TitleBout:  titleBout,
		Rounds:     fight.ScheduledRounds(titleBout),
	})
	if err != nil {
		t.Fatalf("seed fight %s: %v", externalID, err)
	}
	return item
}

func (f *resultSyncFixture) service(provider FightDataProvider) *ResultSyncService {
	return NewResultSyncService(provider, f.events, f.fights, f.fighters, f.picks, f.syncLog, ResultSyncConfig{Source: "stub", RefreshPoolSize: 2}, logging.NewNop())
}

func TestResultSyncService_RecordsResultsAndGradesPicks(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	bout := f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	winning := f.picks.Add(pick.Pick{UserID: "u-1", FightID: bout.ID, Corner: fight.WinnerRed})
	losing := f.picks.Add(pick.Pick{UserID: "u-2", FightID: bout.ID, Corner: fight.WinnerBlue})

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "RED", Method: "KO/TKO", EndRound: 2, EndTime: "3:14"}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ResultsRecorded != 1 || summary.GradedPicks != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.EventCompleted {
		t.Fatalf("single-fight card with a result must complete the event: %+v", summary)
	}

	result, _ := f.fights.GetResult(context.Background(), bout.ID)
	if result == nil || result.Winner != fight.WinnerRed || result.Method != "KO/TKO" {
		t.Fatalf("unexpected stored result: %+v", result)
	}

	graded, _ := f.picks.Get(winning.ID)
	if graded.Status != pick.StatusGraded || graded.Score == nil || *graded.Score != 10 {
		t.Fatalf("winning pick not scored: %+v", graded)
	}
	graded, _ = f.picks.Get(losing.ID)
	if graded.Status != pick.StatusGraded || graded.Score == nil || *graded.Score != 0 {
		t.Fatalf("losing pick not scored zero: %+v", graded)
	}

	stored, _ := f.events.GetByExternalID(context.Background(), "stub", "evt-301")
	if stored.Status != event.StatusCompleted {
		t.Fatalf("event status: got %s", stored.Status)
	}
}

func TestResultSyncService_PartialResultsLeaveEventInProgress(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")
	f.addFight(t, "evt-301:f-2", false, "r-2", "b-2")

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			if fightID == "evt-301:f-1" {
				return &ExternalResult{FightExternalID: fightID, Winner: "BLUE", Method: "Decision"}, nil
			}
			return nil, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ResultsRecorded != 1 || summary.EventCompleted {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored, _ := f.events.GetByExternalID(context.Background(), "stub", "evt-301")
	if stored.Status != event.StatusInProgress {
		t.Fatalf("event with pending fights must be in progress, got %s", stored.Status)
	}
}

func TestResultSyncService_TitleBoutFlipsChampion(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	f.addFight(t, "evt-301:f-1", true, "r-1", "b-1")

	champRank := fighter.RankChampion
	if _, err := f.fighters.Upsert(context.Background(), fighter.Profile{
		Source: "stub", ExternalID: "b-1", FirstName: "Old", LastName: "Champ", Rank: &champRank,
	}); err != nil {
		t.Fatalf("seed champion: %v", err)
	}
	if _, err := f.fighters.Upsert(context.Background(), fighter.Profile{
		Source: "stub", ExternalID: "r-1", FirstName: "New", LastName: "Champ",
	}); err != nil {
		t.Fatalf("seed challenger: %v", err)
	}

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "RED", Method: "Submission", EndRound: 3}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ChampionFlips != 1 {
		t.Fatalf("expected one champion flip: %+v", summary)
	}

	winner, _ := f.fighters.GetByExternalID(context.Background(), "stub", "r-1")
	if winner == nil || !winner.IsChampion() || winner.Interim {
		t.Fatalf("winner must hold the undisputed belt: %+v", winner)
	}
	loser, _ := f.fighters.GetByExternalID(context.Background(), "stub", "b-1")
	if loser == nil || loser.Rank != nil {
		t.Fatalf("dethroned champion must lose the rank: %+v", loser)
	}
}

func TestResultSyncService_DrawLeavesBeltAlone(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	f.addFight(t, "evt-301:f-1", true, "r-1", "b-1")

	champRank := fighter.RankChampion
	if _, err := f.fighters.Upsert(context.Background(), fighter.Profile{
		Source: "stub", ExternalID: "b-1", FirstName: "Reigning", LastName: "Champ", Rank: &champRank,
	}); err != nil {
		t.Fatalf("seed champion: %v", err)
	}

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "DRAW", Method: "Decision"}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ChampionFlips != 0 {
		t.Fatalf("a draw must not flip the belt: %+v", summary)
	}

	champ, _ := f.fighters.GetByExternalID(context.Background(), "stub", "b-1")
	if champ == nil || !champ.IsChampion() {
		t.Fatalf("champion must keep the belt after a draw: %+v", champ)
	}
}

func TestResultSyncService_UnknownWinnerIsSkipped(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	bout := f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "MAYBE"}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ResultsRecorded != 0 || summary.EventCompleted {
		t.Fatalf("garbage winner must not be recorded: %+v", summary)
	}
	if result, _ := f.fights.GetResult(context.Background(), bout.ID); result != nil {
		t.Fatalf("no result row expected: %+v", result)
	}
}

func TestResultSyncService_RerunIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "RED", Method: "KO/TKO"}, nil
		},
	}
	svc := f.service(provider)

	if _, err := svc.SyncResults(context.Background(), "evt-301", true); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	summary, err := svc.SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.ResultsRecorded != 0 || summary.GradedPicks != 0 {
		t.Fatalf("rerun must not regrade anything: %+v", summary)
	}
}

func TestResultSyncService_SettlesFightWhoseResultAlreadyExists(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	bout := f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	// A result row with the fight still scheduled and picks still active
	// is what an interrupted run leaves behind.
	if err := f.fights.UpsertResult(context.Background(), fight.Result{
		FightID: bout.ID, Winner: fight.WinnerRed, Method: "KO/TKO", EndRound: 1,
	}); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	winning := f.picks.Add(pick.Pick{UserID: "u-1", FightID: bout.ID, Corner: fight.WinnerRed})
	losing := f.picks.Add(pick.Pick{UserID: "u-2", FightID: bout.ID, Corner: fight.WinnerBlue})

	summary, err := f.service(&stubProvider{}).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ResultsRecorded != 0 || summary.GradedPicks != 2 {
		t.Fatalf("existing result must be graded without re-recording: %+v", summary)
	}
	if !summary.EventCompleted {
		t.Fatalf("event with every result in place must complete: %+v", summary)
	}

	stored, _ := f.fights.GetByExternalID(context.Background(), "stub", "evt-301:f-1")
	if stored == nil || stored.Status != fight.StatusCompleted {
		t.Fatalf("fight with a result must end up completed: %+v", stored)
	}

	graded, _ := f.picks.Get(winning.ID)
	if graded.Status != pick.StatusGraded || graded.Score == nil || *graded.Score != 10 {
		t.Fatalf("winning pick not scored: %+v", graded)
	}
	graded, _ = f.picks.Get(losing.ID)
	if graded.Status != pick.StatusGraded || graded.Score == nil || *graded.Score != 0 {
		t.Fatalf("losing pick not scored zero: %+v", graded)
	}

	parent, _ := f.events.GetByExternalID(context.Background(), "stub", "evt-301")
	if parent.Status != event.StatusCompleted {
		t.Fatalf("event status: got %s", parent.Status)
	}
}

func TestResultSyncService_CompletesEventWithNothingNewToRecord(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	bout := f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	if err := f.fights.UpsertResult(context.Background(), fight.Result{
		FightID: bout.ID, Winner: fight.WinnerBlue, Method: "Decision",
	}); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	if err := f.fights.UpdateStatus(context.Background(), bout.ID, fight.StatusCompleted); err != nil {
		t.Fatalf("complete fight: %v", err)
	}
	if err := f.events.UpdateStatus(context.Background(), f.parent.ID, event.StatusInProgress); err != nil {
		t.Fatalf("advance event: %v", err)
	}

	summary, err := f.service(&stubProvider{}).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.ResultsRecorded != 0 || !summary.EventCompleted {
		t.Fatalf("fully settled card must still complete the event: %+v", summary)
	}

	parent, _ := f.events.GetByExternalID(context.Background(), "stub", "evt-301")
	if parent.Status != event.StatusCompleted {
		t.Fatalf("event status: got %s", parent.Status)
	}
}

func TestResultSyncService_RefreshesCornerFighters(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	rank := 5
	if _, err := f.fighters.Upsert(context.Background(), fighter.Profile{
		Source: "stub", ExternalID: "r-1", FirstName: "Ranked", LastName: "Red", Rank: &rank, Wins: 20,
	}); err != nil {
		t.Fatalf("seed fighter: %v", err)
	}

	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			return &ExternalResult{FightExternalID: fightID, Winner: "RED", Method: "KO/TKO"}, nil
		},
		detailsFn: func(_ context.Context, externalID string) (*ExternalFighter, error) {
			return &ExternalFighter{ExternalID: externalID, FirstName: "Fresh", LastName: "Stats", Wins: 21}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "evt-301", true)
	if err != nil {
		t.Fatalf("sync results: %v", err)
	}
	if summary.FightersRefreshed != 2 {
		t.Fatalf("expected both corners refreshed: %+v", summary)
	}

	refreshed, _ := f.fighters.GetByExternalID(context.Background(), "stub", "r-1")
	if refreshed == nil || refreshed.Wins != 21 {
		t.Fatalf("profile stats not refreshed: %+v", refreshed)
	}
	if refreshed.Rank == nil || *refreshed.Rank != 5 {
		t.Fatalf("profile refresh must preserve the stored rank: %+v", refreshed)
	}
}

func TestResultSyncService_UntargetedRunWalksPendingEvents(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	bout := f.addFight(t, "evt-301:f-1", false, "r-1", "b-1")

	if _, err := f.events.Upsert(context.Background(), event.Event{
		Source:     "stub",
		ExternalID: "evt-300",
		Name:       "Clash 300",
		Status:     event.StatusCompleted,
	}); err != nil {
		t.Fatalf("seed completed event: %v", err)
	}

	var requested []string
	provider := &stubProvider{
		resultFn: func(_ context.Context, fightID string) (*ExternalResult, error) {
			requested = append(requested, fightID)
			return &ExternalResult{FightExternalID: fightID, Winner: "RED", Method: "KO/TKO"}, nil
		},
	}

	summary, err := f.service(provider).SyncResults(context.Background(), "", true)
	if err != nil {
		t.Fatalf("untargeted sync: %v", err)
	}
	if summary.ResultsRecorded != 1 || summary.EventID != "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.EventCompleted {
		t.Fatalf("pending event must complete once its card is settled: %+v", summary)
	}
	if len(requested) != 1 || requested[0] != "evt-301:f-1" {
		t.Fatalf("only fights on pending events must be fetched, got %v", requested)
	}

	if result, _ := f.fights.GetResult(context.Background(), bout.ID); result == nil {
		t.Fatalf("result row expected for the pending event's fight")
	}
}

func TestResultSyncService_UnknownEvent(t *testing.T) {
	t.Parallel()

	f := newResultSyncFixture(t)
	if _, err := f.service(&stubProvider{}).SyncResults(context.Background(), "evt-999", true); !crerr.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
