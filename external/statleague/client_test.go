package statleague

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/platform/fetch"
	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/platform/resilience"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "key-123",
		Fetcher: fetch.New(fetch.Config{
			BaseDelay:  time.Millisecond,
			MaxRetries: 0,
			Logger:     logging.NewNop(),
		}),
		Logger:      logging.NewNop(),
		RankingsTTL: time.Minute,
	})
}

func TestClient_SearchFighters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fighters/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key-123" {
			t.Errorf("missing api key: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("name") != "aldo" || r.URL.Query().Get("limit") != "3" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id":"sl-9","first_name":"Jose","last_name":"Aldo","division":"Bantamweight","wins":31,"losses":8},
			{"id":"","first_name":"broken"}
		]`))
	}))
	defer srv.Close()

	c := testClient(t, srv)

	results, err := c.SearchFighters(context.Background(), "aldo", 3)
	if err != nil {
		t.Fatalf("search fighters: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].ExternalID != "sl-9" || results[0].Name != "Jose Aldo" || results[0].Wins != 31 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestClient_CircuitBreakerShortCircuitsAfterFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "key-123",
		Fetcher: fetch.New(fetch.Config{
			BaseDelay:  time.Millisecond,
			MaxRetries: 0,
			Logger:     logging.NewNop(),
		}),
		Logger: logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := c.FighterDetails(context.Background(), "sl-9"); err == nil {
		t.Fatalf("expected first call to fail")
	}
	before := hits.Load()

	_, err := c.FighterDetails(context.Background(), "sl-9")
	if !crerr.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open breaker, got %v", err)
	}
	if hits.Load() != before {
		t.Fatalf("open breaker must not hit the upstream")
	}
}

func TestClient_SearchFighters_EmptyQueryShortCircuits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for an empty query")
	}))
	defer srv.Close()

	c := testClient(t, srv)
	results, err := c.SearchFighters(context.Background(), "   ", 5)
	if err != nil || results != nil {
		t.Fatalf("expected empty no-op, got %v / %v", results, err)
	}
}

func TestClient_RankingsCachedPerDivision(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/rankings/lightweight" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"position":0,"fighter":{"id":"sl-1","first_name":"Islam","last_name":"Makhachev","division":"Lightweight"}},
			{"position":1,"interim":true,"fighter":{"id":"sl-2","first_name":"Interim","last_name":"Champ","division":"Lightweight"}}
		]`))
	}))
	defer srv.Close()

	c := testClient(t, srv)

	first, err := c.Rankings(context.Background(), "Lightweight")
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected two rows, got %d", len(first))
	}
	if first[0].Rank == nil || *first[0].Rank != 0 || first[0].Interim {
		t.Fatalf("unexpected champion row: %+v", first[0])
	}
	if first[1].Rank == nil || *first[1].Rank != 1 || !first[1].Interim {
		t.Fatalf("unexpected interim row: %+v", first[1])
	}

	// Second read for the same division must come from cache.
	if _, err := c.Rankings(context.Background(), "lightweight"); err != nil {
		t.Fatalf("cached rankings: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single upstream hit, got %d", got)
	}
}

func TestClient_UnsupportedCapabilitiesAnswerEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("unsupported capabilities must not call upstream")
	}))
	defer srv.Close()

	c := testClient(t, srv)
	ctx := context.Background()

	if events, err := c.UpcomingEvents(ctx); err != nil || events != nil {
		t.Fatalf("upcoming: %v / %v", events, err)
	}
	if events, err := c.CompletedEvents(ctx, 10); err != nil || events != nil {
		t.Fatalf("completed: %v / %v", events, err)
	}
	if card, err := c.EventFightCard(ctx, "evt-1"); err != nil || card != nil {
		t.Fatalf("card: %v / %v", card, err)
	}
	if result, err := c.FightResult(ctx, "f-1"); err != nil || result != nil {
		t.Fatalf("result: %v / %v", result, err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		status := testClient(t, srv).HealthCheck(context.Background())
		if status.Status != usecase.HealthHealthy {
			t.Fatalf("unexpected status: %+v", status)
		}
	})

	t.Run("degraded when source reports not ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":false}`))
		}))
		defer srv.Close()

		status := testClient(t, srv).HealthCheck(context.Background())
		if status.Status != usecase.HealthDegraded || !status.CanFetch {
			t.Fatalf("unexpected status: %+v", status)
		}
	})

	t.Run("unhealthy on transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		status := testClient(t, srv).HealthCheck(context.Background())
		if status.Status != usecase.HealthUnhealthy {
			t.Fatalf("unexpected status: %+v", status)
		}
	})
}

func TestClient_FighterDetails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fighters/sl-9" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"sl-9","first_name":"Jose","last_name":"Aldo","division":"Bantamweight","sig_strikes_per_min":3.5,"strike_accuracy":62.0}`))
	}))
	defer srv.Close()

	details, err := testClient(t, srv).FighterDetails(context.Background(), "sl-9")
	if err != nil {
		t.Fatalf("fighter details: %v", err)
	}
	if details == nil || details.StrikesLPM != 3.5 || details.StrikeAcc != 62.0 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestClient_FighterDetails_UnknownIDAnswersNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	details, err := testClient(t, srv).FighterDetails(context.Background(), "sl-404")
	if err != nil || details != nil {
		t.Fatalf("expected nil details, got %v / %v", details, err)
	}
}
