package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/platform/logging"
)

const (
	defaultBaseDelay  = 800 * time.Millisecond
	defaultTimeout    = 20 * time.Second
	defaultMaxRetries = 3
	maxBodyBytes      = 6 << 20
)

// FetchError is the terminal failure after all retries are exhausted.
// Callers must not retry above this layer.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func IsFetchError(err error) bool {
	var fe *FetchError
	return crerr.As(err, &fe)
}

type Config struct {
	HTTPClient *http.Client
	BaseDelay  time.Duration
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
	Logger     *logging.Logger
}

// Fetcher retrieves URLs with a per-instance politeness gate and
// exponential backoff. The gate only covers this instance; concurrent
// fetchers against the same source do not share it.
type Fetcher struct {
	httpClient *http.Client
	baseDelay  time.Duration
	timeout    time.Duration
	maxRetries int
	userAgent  string
	logger     *logging.Logger

	mu          sync.Mutex
	lastRequest time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &Fetcher{
		httpClient: httpClient,
		baseDelay:  baseDelay,
		timeout:    timeout,
		maxRetries: maxRetries,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Fetch issues a GET and returns the body. Every attempt waits at least
// BaseDelay since this instance's previous request; failed attempts back
// off at BaseDelay doubling per retry. Exhaustion yields a *FetchError
// carrying the last underlying cause.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error

	attempts := f.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := f.waitBeforeAttempt(ctx, attempt); err != nil {
			return nil, err
		}

		body, err := f.doOnce(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.WarnContext(ctx, "fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)
	}

	return nil, &FetchError{URL: url, Attempts: attempts, Err: lastErr}
}

// waitBeforeAttempt combines the politeness gate with the retry backoff:
// attempt 1 waits BaseDelay, attempt n>1 waits BaseDelay * 2^(n-2).
func (f *Fetcher) waitBeforeAttempt(ctx context.Context, attempt int) error {
	delay := f.baseDelay
	if attempt > 1 {
		delay = f.baseDelay << (attempt - 2)
	}

	f.mu.Lock()
	if !f.lastRequest.IsZero() {
		if since := f.now().Sub(f.lastRequest); f.baseDelay-since > delay {
			delay = f.baseDelay - since
		}
	}
	f.mu.Unlock()

	if delay > 0 {
		if err := f.sleep(ctx, delay); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.lastRequest = f.now()
	f.mu.Unlock()
	return nil
}

func (f *Fetcher) doOnce(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, crerr.Newf("unexpected status %d: %s", resp.StatusCode, abbreviate(body))
	}

	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 160 {
		return text[:160] + "..."
	}
	return text
}
