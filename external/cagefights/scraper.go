package cagefights

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

const (
	ProviderName   = "cagefights"
	defaultBaseURL = "https://www.cagefights.net"
)

type ScraperConfig struct {
	BaseURL string
	Fetcher *fetch.Fetcher
	Logger  *logging.Logger
}

// Scraper reads the public cagefights.net pages. The site is the free
// source of record for schedules and results but exposes no search, so
// that capability answers empty. Rows missing an id or a fighter link
// are dropped, never guessed at.
type Scraper struct {
	baseURL string
	fetcher *fetch.Fetcher
	logger  *logging.Logger

	now func() time.Time
}

func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(fetch.Config{Logger: logger})
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Scraper{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Scraper) Name() string { return ProviderName }

func (s *Scraper) HealthCheck(ctx context.Context) usecase.HealthStatus {
	status := usecase.HealthStatus{Provider: ProviderName, Status: usecase.HealthUnhealthy}

	started := time.Now()
	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/events", nil)
	status.Latency = time.Since(started)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.CanFetch = true

	events, err := parseEventList(body)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	if len(events) == 0 {
		status.Status = usecase.HealthDegraded
		status.Error = "event listing parsed but empty"
		return status
	}
	status.CanParse = true
	status.Status = usecase.HealthHealthy
	return status
}

func (s *Scraper) UpcomingEvents(ctx context.Context) ([]usecase.ExternalEvent, error) {
	events, err := s.fetchEventList(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]usecase.ExternalEvent, 0, len(events))
	for _, item := range events {
		if item.Date == nil || item.Date.Before(now) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Scraper) CompletedEvents(ctx context.Context, limit int) ([]usecase.ExternalEvent, error) {
	events, err := s.fetchEventList(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]usecase.ExternalEvent, 0, len(events))
	for _, item := range events {
		if item.Date == nil || !item.Date.Before(now) {
			continue
		}
		item.Completed = true
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(*out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Scraper) EventFightCard(ctx context.Context, eventExternalID string) ([]usecase.ExternalFight, error) {
	if strings.TrimSpace(eventExternalID) == "" {
		return nil, crerr.New("event external id is required")
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/event/"+url.PathEscape(eventExternalID), nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "fetch event page: %v", err)
	}

	rows, err := parseFightCard(body, eventExternalID)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalFight, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.fight)
	}
	return out, nil
}

// FightResult reads the result cells off the event page. Fight ids are
// composite "event:fight" because the site has no standalone fight pages.
func (s *Scraper) FightResult(ctx context.Context, fightExternalID string) (*usecase.ExternalResult, error) {
	eventID, fightID, ok := strings.Cut(fightExternalID, ":")
	if !ok || eventID == "" || fightID == "" {
		return nil, crerr.Newf("malformed fight id %q", fightExternalID)
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/event/"+url.PathEscape(eventID), nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "fetch event page: %v", err)
	}

	rows, err := parseFightCard(body, eventID)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.fight.ExternalID != fightExternalID {
			continue
		}
		if row.result == nil {
			return nil, nil
		}
		result := *row.result
		result.FightExternalID = fightExternalID
		return &result, nil
	}
	return nil, nil
}

// SearchFighters is unsupported; the site exposes no search endpoint.
func (s *Scraper) SearchFighters(context.Context, string, int) ([]fighter.Summary, error) {
	return nil, nil
}

func (s *Scraper) FighterDetails(ctx context.Context, externalID string) (*usecase.ExternalFighter, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, crerr.New("fighter external id is required")
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/fighter/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "fetch fighter page: %v", err)
	}

	profile, err := parseFighterPage(body)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	profile.ExternalID = externalID
	return profile, nil
}

func (s *Scraper) Rankings(ctx context.Context, division string) ([]usecase.ExternalFighter, error) {
	division = strings.ToLower(strings.TrimSpace(division))
	if division == "" {
		return nil, crerr.New("division is required")
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/rankings/"+url.PathEscape(division), nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "fetch rankings page: %v", err)
	}

	return parseRankings(body, division)
}

// fetchEventList pulls the single listing page the site serves for both
// future and past events, deduped by id; the wall clock decides which
// side each event lands on in the capability calls above.
func (s *Scraper) fetchEventList(ctx context.Context) ([]usecase.ExternalEvent, error) {
	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/events", nil)
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrDependencyUnavailable, "fetch event listing: %v", err)
	}
	return parseEventList(body)
}

func documentFrom(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, crerr.Wrap(err, "parse html")
	}
	return doc, nil
}
