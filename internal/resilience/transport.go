package resilience

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a request without sending it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Doer executes HTTP requests. *http.Client and *Transport both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for the resilient transport.
type Config struct {
	// Name identifies the transport in logs and health snapshots.
	Name string

	// MaxRetries is the number of retries after the first attempt. Zero disables retries.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 2 seconds
	MaxInterval time.Duration

	// Breaker is the circuit breaker configuration.
	// If nil, uses DefaultBreakerConfig.
	Breaker *BreakerConfig

	// Logger for retries and breaker state changes.
	Logger zerolog.Logger
}

// DefaultConfig returns the transport settings used by the CLI.
func DefaultConfig(name string) Config {
	breaker := DefaultBreakerConfig(name)
	return Config{
		Name:            name,
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Breaker:         &breaker,
	}
}

// Transport retries GET requests that failed at the network level or got a 5xx or 429 answer,
// behind a circuit breaker. Any other answer, including the 4xx envelopes OSRM uses for
// protocol failures, is returned on the first attempt and counts as a success for the breaker.
type Transport struct {
	next    Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
	cfg     Config
	logger  zerolog.Logger

	mu            sync.Mutex
	lastSuccessAt time.Time
	lastFailureAt time.Time
	lastError     string
}

// New wraps next. A nil next uses http.DefaultClient.
func New(next Doer, cfg Config) *Transport {
	if next == nil {
		next = http.DefaultClient
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	breakerCfg := DefaultBreakerConfig(cfg.Name)
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}
	logger := cfg.Logger.With().Str("transport", cfg.Name).Logger()

	return &Transport{
		next:    next,
		breaker: newBreaker[*http.Response](breakerCfg, logger), //nolint:bodyclose // type param, not response
		cfg:     cfg,
		logger:  logger,
	}
}

// Do sends req, retrying transient failures with exponential backoff. When every attempt got a
// retryable status, the last response is returned with its body intact.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.once(req)
	}

	ctx := req.Context()
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.cfg.InitialInterval
	bo.MaxInterval = t.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, t.cfg.MaxRetries), ctx)

	var last *http.Response
	operation := func() error {
		resp, err := t.once(req)
		if err != nil {
			last = nil
			if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		last = resp
		if retryableStatus(resp.StatusCode) {
			return &StatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Warn().
			Err(err).
			Dur("wait", wait).
			Str("url", req.URL.Redacted()).
			Msg("retrying request")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var statusErr *StatusError
		if last != nil && errors.As(err, &statusErr) {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

// once performs a single attempt through the breaker. Retryable answers are buffered so the
// connection is released before the next attempt.
func (t *Transport) once(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // returned to caller
		r, err := t.next.Do(req.Clone(req.Context()))
		if err != nil {
			return nil, err
		}
		if !retryableStatus(r.StatusCode) {
			return r, nil
		}
		buffered, err := buffer(r)
		if err != nil {
			return nil, err
		}
		return buffered, &StatusError{StatusCode: r.StatusCode}
	})

	var statusErr *StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		t.recordFailure(ErrCircuitOpen)
		return nil, ErrCircuitOpen
	case errors.As(err, &statusErr):
		t.recordFailure(err)
		return resp, nil
	case err != nil:
		t.recordFailure(err)
		return nil, err
	}

	t.recordSuccess()
	return resp, nil
}

func retryableStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

func buffer(r *http.Response) (*http.Response, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %d response: %w", r.StatusCode, err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return r, nil
}

func (t *Transport) recordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSuccessAt = time.Now()
}

func (t *Transport) recordFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastFailureAt = time.Now()
	t.lastError = err.Error()
}

// StatusError is a retryable HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("retryable status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Health is a snapshot of the transport state.
type Health struct {
	Name          string
	State         gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// IsHealthy reports whether the breaker is closed.
func (h Health) IsHealthy() bool {
	return h.State == gobreaker.StateClosed
}

// IsDegraded reports whether the breaker is probing in half-open state.
func (h Health) IsDegraded() bool {
	return h.State == gobreaker.StateHalfOpen
}

// Health returns the current state of the transport.
func (t *Transport) Health() Health {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := Health{
		Name:      t.cfg.Name,
		State:     t.breaker.State(),
		Counts:    t.breaker.Counts(),
		LastError: t.lastError,
	}
	if !t.lastSuccessAt.IsZero() {
		at := t.lastSuccessAt
		h.LastSuccessAt = &at
	}
	if !t.lastFailureAt.IsZero() {
		at := t.lastFailureAt
		h.LastFailureAt = &at
	}
	return h
}
