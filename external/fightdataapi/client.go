package fightdataapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/platform/resilience"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

const (
	ProviderName   = "fightdataapi"
	defaultBaseURL = "https://api.fightdata.io/v1"
)

type ClientConfig struct {
	BaseURL        string
	Token          string
	Fetcher        *fetch.Fetcher
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the paid REST source. Every call carries the bearer token;
// the API signals plan limits inside the response envelope, so a 200
// can still be a refusal.
type Client struct {
	baseURL        string
	token          string
	fetcher        *fetch.Fetcher
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		fetcher:        fetcher,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) HealthCheck(ctx context.Context) usecase.HealthStatus {
	status := usecase.HealthStatus{Provider: ProviderName, Status: usecase.HealthUnhealthy}

	started := time.Now()
	var ping struct {
		Status string `json:"status"`
	}
	err := c.doJSON(ctx, "/status", nil, &ping)
	status.Latency = time.Since(started)

	switch {
	case err == nil:
		status.Status = usecase.HealthHealthy
		status.CanFetch = true
		status.CanParse = true
	case crerr.Is(err, usecase.ErrPlanRestricted):
		status.Status = usecase.HealthDegraded
		status.CanFetch = true
		status.CanParse = true
		status.Error = err.Error()
	default:
		status.Error = err.Error()
	}
	return status
}

func (c *Client) UpcomingEvents(ctx context.Context) ([]usecase.ExternalEvent, error) {
	var items []eventItem
	if err := c.doJSON(ctx, "/events", map[string]string{"status": "upcoming"}, &items); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalEvent, 0, len(items))
	for _, item := range items {
		mapped := mapEvent(item)
		if mapped.ExternalID == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) CompletedEvents(ctx context.Context, limit int) ([]usecase.ExternalEvent, error) {
	query := map[string]string{"status": "completed"}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	var items []eventItem
	if err := c.doJSON(ctx, "/events", query, &items); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalEvent, 0, len(items))
	for _, item := range items {
		mapped := mapEvent(item)
		if mapped.ExternalID == "" {
			continue
		}
		mapped.Completed = true
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) EventFightCard(ctx context.Context, eventExternalID string) ([]usecase.ExternalFight, error) {
	if strings.TrimSpace(eventExternalID) == "" {
		return nil, crerr.New("event external id is required")
	}

	var items []fightItem
	if err := c.doJSON(ctx, "/events/"+url.PathEscape(eventExternalID)+"/fights", nil, &items); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalFight, 0, len(items))
	for _, item := range items {
		mapped := mapFight(item)
		if mapped.ExternalID == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) FightResult(ctx context.Context, fightExternalID string) (*usecase.ExternalResult, error) {
	if strings.TrimSpace(fightExternalID) == "" {
		return nil, crerr.New("fight external id is required")
	}

	var item resultItem
	err := c.doJSON(ctx, "/fights/"+url.PathEscape(fightExternalID)+"/result", nil, &item)
	if err != nil {
		// No result yet is a normal answer while the card runs.
		if crerr.Is(err, usecase.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	mapped := mapResult(item)
	if mapped.FightExternalID == "" {
		mapped.FightExternalID = fightExternalID
	}
	return &mapped, nil
}

func (c *Client) SearchFighters(ctx context.Context, query string, limit int) ([]fighter.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	params := map[string]string{"q": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var items []fighterItem
	if err := c.doJSON(ctx, "/fighters", params, &items); err != nil {
		return nil, err
	}

	out := make([]fighter.Summary, 0, len(items))
	for _, item := range items {
		mapped := mapSummary(item)
		if mapped.ExternalID == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) FighterDetails(ctx context.Context, externalID string) (*usecase.ExternalFighter, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, crerr.New("fighter external id is required")
	}

	var item fighterItem
	err := c.doJSON(ctx, "/fighters/"+url.PathEscape(externalID), nil, &item)
	if err != nil {
		if crerr.Is(err, usecase.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	mapped := mapFighter(item)
	return &mapped, nil
}

func (c *Client) Rankings(ctx context.Context, division string) ([]usecase.ExternalFighter, error) {
	division = strings.TrimSpace(division)
	if division == "" {
		return nil, crerr.New("division is required")
	}

	var items []fighterItem
	if err := c.doJSON(ctx, "/rankings", map[string]string{"division": division}, &items); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalFighter, 0, len(items))
	for _, item := range items {
		mapped := mapFighter(item)
		if mapped.ExternalID == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fightdataapi circuit breaker rejected request", "state", c.breaker.State())
			return crerr.Wrap(usecase.ErrDependencyUnavailable, "fight data api is temporarily unavailable")
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + c.token,
	}

	out, err, _ := c.flight.Do(path+"?"+values.Encode(), func() (any, error) {
		raw, reqErr := c.fetcher.Fetch(ctx, fullURL, headers)
		if c.circuitEnabled {
			if reqErr != nil && ctx.Err() == nil {
				c.breaker.RecordFailure()
			} else if reqErr == nil {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return crerr.Newf("unexpected response payload type %T", out)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return crerr.Wrap(err, "decode provider envelope")
	}
	if !env.Success {
		code, message := "", "request rejected"
		if env.Error != nil {
			code = env.Error.Code
			if env.Error.Message != "" {
				message = env.Error.Message
			}
		}
		switch code {
		case errCodeNotFound:
			return crerr.Wrap(usecase.ErrNotFound, message)
		case errCodePlanRestricted:
			return crerr.Wrap(usecase.ErrPlanRestricted, message)
		default:
			return crerr.Newf("provider error %s: %s", code, message)
		}
	}

	if len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, target); err != nil {
		return crerr.Wrap(err, "decode provider payload")
	}
	return nil
}
