package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/cagepulse/cagepulse/internal/domain/event"
	"github.com/cagepulse/cagepulse/internal/domain/fight"
	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/domain/pick"
	"github.com/cagepulse/cagepulse/internal/domain/synclog"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

const (
	defaultResultSyncWindow = 15 * time.Minute
	defaultRefreshPoolSize  = 4
	championRank            = fighter.RankChampion
)

type ResultSyncConfig struct {
	Source          string
	Window          time.Duration
	RefreshPoolSize int
}

// ResultSyncService ingests fight results for one event, grades picks,
// flips championship state on title bouts, and advances the event
// lifecycle as results land.
type ResultSyncService struct {
	provider FightDataProvider
	events   event.Repository
	fights   fight.Repository
	fighters fighter.Repository
	picks    pick.Repository
	syncLog  synclog.Repository
	cfg      ResultSyncConfig
	logger   *logging.Logger
}

func NewResultSyncService(provider FightDataProvider, events event.Repository, fights fight.Repository, fighters fighter.Repository, picks pick.Repository, syncLog synclog.Repository, cfg ResultSyncConfig, logger *logging.Logger) *ResultSyncService {
	if cfg.Source == "" {
		cfg.Source = provider.Name()
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultResultSyncWindow
	}
	if cfg.RefreshPoolSize <= 0 {
		cfg.RefreshPoolSize = defaultRefreshPoolSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultSyncService{
		provider: provider,
		events:   events,
		fights:   fights,
		fighters: fighters,
		picks:    picks,
		syncLog:  syncLog,
		cfg:      cfg,
		logger:   logger,
	}
}

// SyncResults pulls results for active fights that do not have one yet.
// With an event external id it targets that one event and skips the
// sync window gate; with an empty id it walks every non-final event
// from the source, honoring the gate unless forced. Grading happens per
// fight inside the store in a single transaction, so a failed grade
// leaves every pick untouched.
func (s *ResultSyncService) SyncResults(ctx context.Context, eventExternalID string, force bool) (ResultSyncSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "ResultSyncService.SyncResults")
	defer span.End()

	started := time.Now()
	summary := ResultSyncSummary{Source: s.cfg.Source, EventID: eventExternalID}

	if eventExternalID == "" {
		err := s.syncAllResults(ctx, force, &summary)
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

	if err := s.syncEventResults(ctx, parent, &summary); err != nil {
		summary.Duration = time.Since(started)
		return summary, err
	}

	if err := s.syncLog.Touch(ctx, s.cfg.Source, synclog.KindResults); err != nil {
		summary.Errors = append(summary.Errors, "record sync timestamp: "+err.Error())
	}

	summary.Duration = time.Since(started)
	s.logFinish(ctx, eventExternalID, summary)
	return summary, nil
}

// syncAllResults ingests results for every upcoming or in-progress
// event from the source.
func (s *ResultSyncService) syncAllResults(ctx context.Context, force bool, summary *ResultSyncSummary) error {
	if !force {
		due, err := s.syncLog.Due(ctx, s.cfg.Source, synclog.KindResults, s.cfg.Window)
		if err != nil {
			return crerr.Wrap(err, "check result sync due")
		}
		if !due {
			return nil
		}
	}

	all, err := s.events.ListBySource(ctx, s.cfg.Source)
	if err != nil {
		return crerr.Wrap(err, "list events")
	}

	for i := range all {
		switch event.NormalizeStatus(all[i].Status) {
		case event.StatusCompleted, event.StatusCanceled:
			continue
		}
		if err := s.syncEventResults(ctx, &all[i], summary); err != nil {
			summary.Errors = append(summary.Errors, "sync results for event "+all[i].ExternalID+": "+err.Error())
		}
	}

	if err := s.syncLog.Touch(ctx, s.cfg.Source, synclog.KindResults); err != nil {
		summary.Errors = append(summary.Errors, "record sync timestamp: "+err.Error())
	}
	return nil
}

// syncEventResults ingests results for one event and advances its
// lifecycle once every active fight on the card has one.
func (s *ResultSyncService) syncEventResults(ctx context.Context, parent *event.Event, summary *ResultSyncSummary) error {
	resultsBefore := summary.ResultsRecorded

	stored, err := s.fights.ListByEvent(ctx, parent.ID)
	if err != nil {
		return crerr.Wrap(err, "list stored fights")
	}

	var refreshIDs []string
	active := 0
	pending := 0
	for _, item := range stored {
		if !fight.IsActive(item.Status) {
			continue
		}
		active++

		existing, err := s.fights.GetResult(ctx, item.ID)
		if err != nil {
			summary.Errors = append(summary.Errors, "load result for fight "+item.ExternalID+": "+err.Error())
			pending++
			continue
		}
		if existing != nil {
			// A prior run can stop between the result write and grading.
			// Settling again is safe: the grading transaction only touches
			// active picks, so an already settled fight is a no-op here.
			s.settleFight(ctx, item, existing.Winner, summary)
			continue
		}
		pending++

		reported, err := s.provider.FightResult(ctx, item.ExternalID)
		if err != nil {
			summary.Errors = append(summary.Errors, "fetch result for fight "+item.ExternalID+": "+err.Error())
			continue
		}
		if reported == nil {
			continue
		}

		winner := fight.NormalizeWinner(reported.Winner)
		if winner == fight.WinnerUnknown {
			s.logger.WarnContext(ctx, "unrecognized winner value, skipping result",
				"source", s.cfg.Source,
				"fight", item.ExternalID,
				"winner", reported.Winner,
			)
			continue
		}

		result := fight.Result{
			FightID:  item.ID,
			Winner:   winner,
			Method:   reported.Method,
			EndRound: reported.EndRound,
			EndTime:  reported.EndTime,
		}
		if err := s.fights.UpsertResult(ctx, result); err != nil {
			summary.Errors = append(summary.Errors, "record result for fight "+item.ExternalID+": "+err.Error())
			continue
		}
		summary.ResultsRecorded++
		pending--

		s.settleFight(ctx, item, winner, summary)

		if item.Red.FighterExternalID != "" {
			refreshIDs = append(refreshIDs, item.Red.FighterExternalID)
		}
		if item.Blue.FighterExternalID != "" {
			refreshIDs = append(refreshIDs, item.Blue.FighterExternalID)
		}
	}

	if summary.ResultsRecorded > resultsBefore && parent.Status == event.StatusUpcoming {
		if err := s.events.UpdateStatus(ctx, parent.ID, event.StatusInProgress); err != nil {
			summary.Errors = append(summary.Errors, "advance event status: "+err.Error())
		} else {
			parent.Status = event.StatusInProgress
		}
	}
	if active > 0 && pending == 0 && parent.Status != event.StatusCompleted {
		if err := s.events.UpdateStatus(ctx, parent.ID, event.StatusCompleted); err != nil {
			summary.Errors = append(summary.Errors, "complete event: "+err.Error())
		} else {
			summary.EventCompleted = true
		}
	}

	summary.FightersRefreshed += s.refreshFighters(ctx, refreshIDs)
	return nil
}

func (s *ResultSyncService) logFinish(ctx context.Context, eventExternalID string, summary ResultSyncSummary) {
	s.logger.InfoContext(ctx, "result sync finished",
		"source", s.cfg.Source,
		"event", eventExternalID,
		"results", summary.ResultsRecorded,
		"graded_picks", summary.GradedPicks,
		"champion_flips", summary.ChampionFlips,
		"fighters_refreshed", summary.FightersRefreshed,
		"event_completed", summary.EventCompleted,
		"errors", len(summary.Errors),
		"duration", summary.Duration,
	)
}

// settleFight finishes a fight whose result is recorded: it completes
// the status and grades the picks, moving the belt on title bouts.
// Every step is idempotent, so a run that stopped partway through is
// repaired simply by settling again.
func (s *ResultSyncService) settleFight(ctx context.Context, item fight.Fight, winner string, summary *ResultSyncSummary) {
	winner = fight.NormalizeWinner(winner)

	wasCompleted := item.Status == fight.StatusCompleted
	if !wasCompleted {
		if err := s.fights.UpdateStatus(ctx, item.ID, fight.StatusCompleted); err != nil {
			summary.Errors = append(summary.Errors, "complete fight "+item.ExternalID+": "+err.Error())
			return
		}
	}

	outcome, err := s.picks.GradeByFight(ctx, item.ID, winner)
	if err != nil {
		summary.Errors = append(summary.Errors, "grade picks for fight "+item.ExternalID+": "+err.Error())
		return
	}
	summary.GradedPicks += outcome.GradedCount

	if item.TitleBout && (!wasCompleted || outcome.GradedCount > 0) {
		flipped, err := s.flipChampion(ctx, item, winner)
		if err != nil {
			summary.Errors = append(summary.Errors, "champion flip for fight "+item.ExternalID+": "+err.Error())
		} else if flipped {
			summary.ChampionFlips++
		}
	}
}

// flipChampion moves the belt after a decisive title bout: the winner
// takes the champion rank, the loser keeps nothing championship-shaped.
// Draws and no contests leave the belt where it was.
func (s *ResultSyncService) flipChampion(ctx context.Context, item fight.Fight, winner string) (bool, error) {
	var winnerID, loserID string
	switch winner {
	case fight.WinnerRed:
		winnerID, loserID = item.Red.FighterExternalID, item.Blue.FighterExternalID
	case fight.WinnerBlue:
		winnerID, loserID = item.Blue.FighterExternalID, item.Red.FighterExternalID
	default:
		return false, nil
	}
	if winnerID == "" {
		return false, nil
	}

	champ, err := s.fighters.GetByExternalID(ctx, s.cfg.Source, winnerID)
	if err != nil {
		return false, crerr.Wrap(err, "load winner")
	}
	if champ == nil {
		return false, nil
	}
	rank := championRank
	if err := s.fighters.SetRank(ctx, champ.ID, &rank, false); err != nil {
		return false, crerr.Wrap(err, "set champion rank")
	}

	if loserID != "" {
		loser, err := s.fighters.GetByExternalID(ctx, s.cfg.Source, loserID)
		if err != nil {
			return true, crerr.Wrap(err, "load loser")
		}
		if loser != nil && (loser.IsChampion() || loser.Interim) {
			if err := s.fighters.SetRank(ctx, loser.ID, nil, false); err != nil {
				return true, crerr.Wrap(err, "clear loser rank")
			}
		}
	}
	return true, nil
}

// refreshFighters fans profile refreshes out over a bounded worker pool
// so a long card does not serialize a dozen provider round trips.
func (s *ResultSyncService) refreshFighters(ctx context.Context, externalIDs []string) int {
	unique := make(map[string]bool, len(externalIDs))
	for _, id := range externalIDs {
		unique[id] = true
	}
	if len(unique) == 0 {
		return 0
	}
	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pool, err := ants.NewPool(s.cfg.RefreshPoolSize)
	if err != nil {
		s.logger.WarnContext(ctx, "fighter refresh pool unavailable", "error", err)
		return 0
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		refreshed int
	)
	for _, id := range ids {
		id := id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if s.refreshFighter(ctx, id) {
				mu.Lock()
				refreshed++
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "fighter refresh not scheduled", "fighter", id, "error", submitErr)
		}
	}
	wg.Wait()
	return refreshed
}

func (s *ResultSyncService) refreshFighter(ctx context.Context, externalID string) bool {
	details, err := s.provider.FighterDetails(ctx, externalID)
	if err != nil || details == nil {
		if err != nil {
			s.logger.WarnContext(ctx, "fighter refresh failed", "fighter", externalID, "error", err)
		}
		return false
	}

	existing, err := s.fighters.GetByExternalID(ctx, s.cfg.Source, externalID)
	if err != nil {
		s.logger.WarnContext(ctx, "fighter lookup failed", "fighter", externalID, "error", err)
		return false
	}

	next := fighter.Profile{
		Source:      s.cfg.Source,
		ExternalID:  externalID,
		FirstName:   details.FirstName,
		LastName:    details.LastName,
		Nickname:    details.Nickname,
		WeightClass: details.WeightClass,
		HeightCm:    details.HeightCm,
		ReachCm:     details.ReachCm,
		Wins:        details.Wins,
		Losses:      details.Losses,
		Draws:       details.Draws,
		NoContests:  details.NoContests,
		StrikesLPM:  details.StrikesLPM,
		StrikeAcc:   details.StrikeAcc,
		TakedownAvg: details.TakedownAvg,
		SubAvg:      details.SubAvg,
		Rank:        details.Rank,
		Interim:     details.Interim,
	}
	if existing != nil {
		next.ID = existing.ID
		// Rank changes flow through title bouts and ranking syncs, not
		// profile refreshes.
		next.Rank = existing.Rank
		next.Interim = existing.Interim
	}

	if _, err := s.fighters.Upsert(ctx, next); err != nil {
		s.logger.WarnContext(ctx, "fighter refresh write failed", "fighter", externalID, "error", err)
		return false
	}
	return true
}
