package resilience_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/osrmclient/internal/resilience"
)

func testConfig(name string, retries uint64) resilience.Config {
	breaker := resilience.DefaultBreakerConfig(name)
	// High threshold so the breaker stays closed unless a test wants otherwise
	breaker.ReadyToTrip = resilience.TripOnFailureRatio(100, 0.5)
	return resilience.Config{
		Name:            name,
		MaxRetries:      retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		Breaker:         &breaker,
		Logger:          zerolog.Nop(),
	}
}

func get(t *testing.T, doer resilience.Doer, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return doer.Do(req)
}

func TestTransport_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok"}`))
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("success", 2))

	resp, err := get(t, tr, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"code":"Ok"}`, string(body))

	health := tr.Health()
	assert.True(t, health.IsHealthy())
	assert.NotNil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}

func TestTransport_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ok"}`))
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("retry", 5))

	resp, err := get(t, tr, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load(), "should have retried until success")
	assert.NotEmpty(t, tr.Health().LastError)
}

func TestTransport_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("exhausted", 2))

	resp, err := get(t, tr, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "bad gateway", string(body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestTransport_ProtocolAnswersAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute"}`))
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("4xx", 3))

	resp, err := get(t, tr, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load(), "should not retry 4xx answers")
	assert.Equal(t, uint32(0), tr.Health().Counts.TotalFailures)
}

func TestTransport_RetriesTooManyRequests(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("429", 1))

	resp, err := get(t, tr, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestTransport_BreakerOpens(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig("trip", 0)
	cfg.Breaker.ReadyToTrip = resilience.DefaultReadyToTrip
	cfg.Breaker.OpenTimeout = time.Minute
	tr := resilience.New(server.Client(), cfg)

	for i := 0; i < 5; i++ {
		resp, err := get(t, tr, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateOpen, tr.Health().State)
	assert.False(t, tr.Health().IsHealthy())

	resp, err := get(t, tr, server.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(5), attempts.Load(), "open breaker must not reach the backend")
}

func TestTransport_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := resilience.New(server.Client(), testConfig("cancel", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	start := time.Now()
	resp, err := tr.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err, "should be canceled")
	assert.Less(t, time.Since(start), 400*time.Millisecond, "cancelled requests are not retried")
}

func TestTransport_NetworkErrorsExhaustRetries(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	tr := resilience.New(nil, testConfig("down", 1))

	resp, err := get(t, tr, url)
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.NotNil(t, tr.Health().LastFailureAt)
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		name     string
		counts   gobreaker.Counts
		expected bool
	}{
		{name: "not enough requests", counts: gobreaker.Counts{Requests: 4, TotalFailures: 4}},
		{name: "low failure rate", counts: gobreaker.Counts{Requests: 10, TotalFailures: 4}},
		{name: "high failure rate", counts: gobreaker.Counts{Requests: 10, TotalFailures: 5}, expected: true},
		{name: "exactly 5 requests all failing", counts: gobreaker.Counts{Requests: 5, TotalFailures: 5}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resilience.DefaultReadyToTrip(tt.counts))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := resilience.DefaultConfig("osrm")

	assert.Equal(t, "osrm", cfg.Name)
	assert.Equal(t, uint64(2), cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialInterval)
	require.NotNil(t, cfg.Breaker)
	assert.Equal(t, 30*time.Second, cfg.Breaker.OpenTimeout)
}

func TestStatusError(t *testing.T) {
	err := &resilience.StatusError{StatusCode: http.StatusServiceUnavailable}
	assert.Contains(t, err.Error(), "Service Unavailable")
}
