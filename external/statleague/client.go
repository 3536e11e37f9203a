package statleague

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/platform/cache"
	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/platform/resilience"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

const (
	ProviderName   = "statleague"
	defaultBaseURL = "https://statleague.example.com/api"

	defaultRankingsTTL = 30 * time.Minute
)

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Fetcher        *fetch.Fetcher
	Logger         *logging.Logger
	RankingsTTL    time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the fighter-statistics source. It has no event schedule, so
// the event and result capabilities answer empty; sync services treat
// that as "nothing from here", not as data loss. Rankings barely move
// between cards and are cached in process.
type Client struct {
	baseURL        string
	apiKey         string
	fetcher        *fetch.Fetcher
	logger         *logging.Logger
	rankings       *cache.Store
	flight         resilience.SingleFlight
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
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
	ttl := cfg.RankingsTTL
	if ttl <= 0 {
		ttl = defaultRankingsTTL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		fetcher:        fetcher,
		logger:         logger,
		rankings:       cache.NewStore(ttl),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) HealthCheck(ctx context.Context) usecase.HealthStatus {
	status := usecase.HealthStatus{Provider: ProviderName, Status: usecase.HealthUnhealthy}

	started := time.Now()
	var ping struct {
		OK bool `json:"ok"`
	}
	err := c.doJSON(ctx, "/ping", nil, &ping)
	status.Latency = time.Since(started)

	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.CanFetch = true
	status.CanParse = true
	if !ping.OK {
		status.Status = usecase.HealthDegraded
		status.Error = "source reports not ok"
		return status
	}
	status.Status = usecase.HealthHealthy
	return status
}

// UpcomingEvents is unsupported; statleague carries no schedule.
func (c *Client) UpcomingEvents(context.Context) ([]usecase.ExternalEvent, error) {
	return nil, nil
}

func (c *Client) CompletedEvents(context.Context, int) ([]usecase.ExternalEvent, error) {
	return nil, nil
}

func (c *Client) EventFightCard(context.Context, string) ([]usecase.ExternalFight, error) {
	return nil, nil
}

func (c *Client) FightResult(context.Context, string) (*usecase.ExternalResult, error) {
	return nil, nil
}

func (c *Client) SearchFighters(ctx context.Context, query string, limit int) ([]fighter.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	params := map[string]string{"name": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var items []fighterRow
	if err := c.doJSON(ctx, "/fighters/search", params, &items); err != nil {
		return nil, err
	}

	out := make([]fighter.Summary, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		out = append(out, item.summary())
	}
	return out, nil
}

func (c *Client) FighterDetails(ctx context.Context, externalID string) (*usecase.ExternalFighter, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, crerr.New("fighter external id is required")
	}

	var item fighterRow
	if err := c.doJSON(ctx, "/fighters/"+url.PathEscape(externalID), nil, &item); err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.ID) == "" {
		return nil, nil
	}

	mapped := item.external()
	return &mapped, nil
}

func (c *Client) Rankings(ctx context.Context, division string) ([]usecase.ExternalFighter, error) {
	division = strings.ToLower(strings.TrimSpace(division))
	if division == "" {
		return nil, crerr.New("division is required")
	}

	if cached, ok := c.rankings.Get(ctx, division); ok {
		if items, ok := cached.([]usecase.ExternalFighter); ok {
			return items, nil
		}
	}

	// Concurrent misses for the same division collapse into one fetch.
	fetched, err, _ := c.flight.Do("rankings/"+division, func() (any, error) {
		var items []rankingRow
		if err := c.doJSON(ctx, "/rankings/"+url.PathEscape(division), nil, &items); err != nil {
			return nil, err
		}

		out := make([]usecase.ExternalFighter, 0, len(items))
		for _, item := range items {
			if strings.TrimSpace(item.Fighter.ID) == "" {
				continue
			}
			mapped := item.Fighter.external()
			rank := item.Position
			mapped.Rank = &rank
			mapped.Interim = item.Interim
			out = append(out, mapped)
		}

		c.rankings.Set(ctx, division, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return fetched.([]usecase.ExternalFighter), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statleague circuit breaker rejected request", "state", c.breaker.State())
			return crerr.Wrap(usecase.ErrDependencyUnavailable, "statleague is temporarily unavailable")
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()

	raw, err := c.fetcher.Fetch(ctx, fullURL, map[string]string{"Accept": "application/json"})
	if c.circuitEnabled {
		if err != nil && ctx.Err() == nil {
			c.breaker.RecordFailure()
		} else if err == nil {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return crerr.Wrapf(usecase.ErrDependencyUnavailable, "statleague request failed: %v", err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode statleague payload")
	}
	return nil
}
