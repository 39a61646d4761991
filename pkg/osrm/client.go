// Package osrm is a client for the HTTP services of an OSRM routing backend: route, nearest,
// table, match, trip and tile.
//
// Requests are plain values describing a call. The client turns them into a URL and an option
// table, performs one GET through its HTTP collaborator and maps the JSON envelope back into a
// typed response or an *Error. The client never retries.
package osrm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the public OSRM demo server.
	DefaultBaseURL = "http://router.project-osrm.org"

	// DefaultVersion is the API version placed in every path.
	DefaultVersion = "v1"

	// DefaultTimeout is the request timeout of the default HTTP client.
	DefaultTimeout = 10 * time.Second

	instrumentationName = "github.com/breatheroute/osrmclient/pkg/osrm"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the backend base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// Version is the API version (optional, defaults to DefaultVersion).
	Version string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a plain http.Client with Timeout.
	HTTPClient HTTPDoer

	// Timeout is the request timeout of the default HTTP client (optional, defaults to 10s).
	Timeout time.Duration

	// TracerProvider creates the client tracer (optional, defaults to the global provider).
	TracerProvider trace.TracerProvider

	// MeterProvider creates the client instruments (optional, defaults to the global provider).
	MeterProvider metric.MeterProvider

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client sends requests to an OSRM backend. It holds no per-request state and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	tracer     trace.Tracer

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter(
		"osrm.client.requests",
		metric.WithDescription("Number of OSRM requests by service and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"osrm.client.duration",
		metric.WithDescription("Duration of OSRM requests in seconds, including decoding"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Client{
		baseURL:    baseURL,
		version:    version,
		httpClient: httpClient,
		logger:     cfg.Logger,
		tracer:     tp.Tracer(instrumentationName),
		requests:   requests,
		duration:   duration,
	}, nil
}

// URL returns the full request URL, query string included.
func (c *Client) URL(ep Endpoint) string {
	u := c.baseURL + ep.Path(c.version)
	if q := ep.Params().Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// Nearest snaps a coordinate to the street network.
func (c *Client) Nearest(ctx context.Context, req NearestRequest) (*NearestResponse, error) {
	return send[NearestResponse](ctx, c, req)
}

// Route finds the fastest route through the coordinates.
func (c *Client) Route(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	return send[RouteResponse](ctx, c, req)
}

// Table computes duration and distance matrices.
func (c *Client) Table(ctx context.Context, req TableRequest) (*TableResponse, error) {
	return send[TableResponse](ctx, c, req)
}

// Match snaps a GPS trace to the road network.
func (c *Client) Match(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	return send[MatchResponse](ctx, c, req)
}

// Trip solves the travelling salesman problem over the coordinates.
func (c *Client) Trip(ctx context.Context, req TripRequest) (*TripResponse, error) {
	return send[TripResponse](ctx, c, req)
}

// Tile fetches a vector tile. The body is returned as is; it is not a JSON envelope.
func (c *Client) Tile(ctx context.Context, req TileRequest) ([]byte, error) {
	ex, err := c.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	defer ex.finish()

	if ex.statusCode != http.StatusOK {
		// Tile errors come back as envelopes; anything else is a transport failure.
		if env, envErr := readEnvelope(ex.body); envErr == nil && env.Code != StatusOk {
			return nil, ex.fail(envelopeError(ServiceTile, env))
		}
		return nil, ex.fail(httpStatusError(ServiceTile, ex.statusCode))
	}

	ex.outcome = string(StatusOk)
	return ex.body, nil
}

// Debug performs the same call as the typed method for ep and returns the body unmodified.
func (c *Client) Debug(ctx context.Context, ep Endpoint) (string, error) {
	ex, err := c.exchange(ctx, ep)
	if err != nil {
		return "", err
	}
	defer ex.finish()

	ex.outcome = "debug"
	return string(ex.body), nil
}

func send[T any, P payload[T]](ctx context.Context, c *Client, ep Endpoint) (P, error) {
	ex, err := c.exchange(ctx, ep)
	if err != nil {
		return nil, err
	}
	defer ex.finish()

	resp, err := Decode[T, P](ep.service(), ex.body)
	if err != nil {
		if ex.statusCode < 200 || ex.statusCode > 299 {
			// Only a readable envelope turns a non-2xx answer into a protocol failure.
			var osrmErr *Error
			if errors.As(err, &osrmErr) && osrmErr.Kind == KindDecode {
				return nil, ex.fail(httpStatusError(ep.service(), ex.statusCode))
			}
		}
		return nil, ex.fail(err)
	}

	ex.outcome = string(StatusOk)
	ex.logger.Debug().
		Str("data_version", deref(resp.envelope().DataVersion)).
		Msg("osrm request succeeded")
	return resp, nil
}

// exchange is one GET against the backend. It carries the span, logger and timing of the call
// until finish is called.
type exchange struct {
	client     *Client
	service    Service
	span       trace.Span
	logger     zerolog.Logger
	start      time.Time
	statusCode int
	body       []byte
	outcome    string
}

// exchange validates ep, performs the call and reads the whole body. Every Client method goes
// through here, so typed and debug calls observe the same request.
func (c *Client) exchange(ctx context.Context, ep Endpoint) (*exchange, error) {
	service := ep.service()
	reqURL := c.URL(ep)
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "osrm."+string(service),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("osrm.service", string(service)),
			attribute.String("osrm.request_id", requestID),
			attribute.String("url.full", reqURL),
		),
	)

	ex := &exchange{
		client:  c,
		service: service,
		span:    span,
		logger:  c.logger.With().Str("service", string(service)).Str("request_id", requestID).Logger(),
		start:   time.Now(),
	}

	if v, ok := ep.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			ex.fail(err)
			ex.finish()
			return nil, err
		}
	}

	ex.logger.Debug().
		Str("profile", ep.profile().String()).
		Str("url", reqURL).
		Int("option_count", len(ep.Params())).
		Msg("sending osrm request")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		e := transportError(service, "creating request", err)
		ex.fail(e)
		ex.finish()
		return nil, e
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		e := transportError(service, "request failed", err)
		ex.fail(e)
		ex.finish()
		return nil, e
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e := transportError(service, "reading response body", err)
		ex.fail(e)
		ex.finish()
		return nil, e
	}

	ex.statusCode = resp.StatusCode
	ex.body = body
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("http.response.body.size", len(body)),
	)
	return ex, nil
}

// fail records err on the exchange and returns it.
func (ex *exchange) fail(err error) error {
	ex.span.RecordError(err)
	ex.span.SetStatus(codes.Error, err.Error())

	event := ex.logger.Error()
	ex.outcome = "error"
	var osrmErr *Error
	if errors.As(err, &osrmErr) {
		ex.outcome = osrmErr.Kind.String()
		if osrmErr.Kind == KindProtocol {
			ex.outcome = string(osrmErr.Status)
			event = ex.logger.Warn().Str("status", string(osrmErr.Status))
		}
	}
	event.Err(err).Int("http_status", ex.statusCode).Msg("osrm request failed")
	return err
}

func (ex *exchange) finish() {
	elapsed := time.Since(ex.start)
	attrs := metric.WithAttributes(
		attribute.String("osrm.service", string(ex.service)),
		attribute.String("osrm.outcome", ex.outcome),
	)
	ctx := context.Background()
	ex.client.requests.Add(ctx, 1, attrs)
	ex.client.duration.Record(ctx, elapsed.Seconds(), attrs)

	ex.span.SetAttributes(attribute.String("osrm.outcome", ex.outcome))
	ex.span.End()

	ex.logger.Debug().
		Dur("duration", elapsed).
		Str("outcome", ex.outcome).
		Msg("osrm request finished")
}

func transportError(service Service, msg string, err error) *Error {
	return &Error{Service: service, Kind: KindTransport, Message: msg, Err: err}
}

func httpStatusError(service Service, statusCode int) *Error {
	return &Error{
		Service: service,
		Kind:    KindTransport,
		Message: fmt.Sprintf("backend returned status %d", statusCode),
		Err:     fmt.Errorf("http %d %s", statusCode, http.StatusText(statusCode)),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
