package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-city-registry/config"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

const (
	searchPath       = "/searchJSON"
	maxResponseBytes = 1 << 20
	errorSnippetLen  = 120
)

// Verification results recorded on city_verification_requests_total.
const (
	resultVerified = "verified"
	resultNotFound = "not_found"
	resultError    = "error"
)

// lookup performs the searchJSON call shared by both clients.
type lookup struct {
	baseURL    string
	username   string
	httpClient *http.Client
	logger     *slog.Logger
}

func newLookup(cfg config.GeonamesConfig, httpClient *http.Client, logger *slog.Logger) lookup {
	if httpClient == nil {
		// A zero Timeout keeps the transport default, i.e. no client-side deadline.
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return lookup{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		httpClient: httpClient,
		logger:     logger,
	}
}

// search queries GeoNames for at most one place called name.
func (l lookup) search(ctx context.Context, name string) (*types.GeoSearchResponse, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("maxRows", "1")
	params.Set("username", l.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geonames request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geonames request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorSnippetLen))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return nil, errors.New(res.Status)
		}
		return nil, fmt.Errorf("%s: %s", res.Status, msg)
	}

	var payload types.GeoSearchResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geonames response: %w", err)
	}
	if payload.Status != nil {
		return nil, fmt.Errorf("geonames rejected request: %s (code %d)", payload.Status.Message, payload.Status.Value)
	}
	return &payload, nil
}

// verify runs the lookup with tracing and metrics and returns the first match, if any.
func (l lookup) verify(ctx context.Context, spanName, name string) (*types.GeoPlace, bool, error) {
	ctx, span := otel.Tracer("GeoNamesClient").Start(ctx, spanName, trace.WithAttributes(
		attribute.String("city.name", name),
	))
	defer span.End()

	log := l.logger.With(slog.String("method", spanName), slog.String("city", name))
	log.DebugContext(ctx, "Verifying city with geonames")

	m := metrics.Get()
	start := time.Now()
	resp, err := l.search(ctx, name)
	m.VerificationDurationSeconds.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		log.WarnContext(ctx, "Geonames lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geonames lookup failed")
		m.VerificationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultError)))
		return nil, false, err
	}

	span.SetAttributes(attribute.Int("geonames.total_results", resp.TotalResultsCount))
	if resp.TotalResultsCount <= 0 {
		log.InfoContext(ctx, "City not found by geonames")
		span.SetStatus(codes.Ok, "No matching place")
		m.VerificationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultNotFound)))
		return nil, false, nil
	}

	var place *types.GeoPlace
	if len(resp.Geonames) > 0 {
		place = &resp.Geonames[0]
	}
	log.InfoContext(ctx, "City verified", slog.Int("total_results", resp.TotalResultsCount))
	span.SetStatus(codes.Ok, "City verified")
	m.VerificationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultVerified)))
	return place, true, nil
}

// Client verifies city names against GeoNames.
// Any failure of the lookup itself is reported as "not verified", the same as zero results.
type Client struct {
	lookup
}

// NewClient creates the lenient verification client. A nil httpClient gets an instrumented default.
func NewClient(cfg config.GeonamesConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{lookup: newLookup(cfg, httpClient, logger)}
}

// VerifyCity reports whether name denotes a real place and returns the first match.
func (c *Client) VerifyCity(ctx context.Context, name string) (*types.GeoPlace, bool, error) {
	place, ok, err := c.verify(ctx, "VerifyCity", name)
	if err != nil {
		return nil, false, nil
	}
	return place, ok, nil
}

// StrictClient verifies city names against GeoNames and surfaces lookup failures.
type StrictClient struct {
	lookup
}

// NewStrictClient creates the strict verification client. A nil httpClient gets an instrumented default.
func NewStrictClient(cfg config.GeonamesConfig, httpClient *http.Client, logger *slog.Logger) *StrictClient {
	return &StrictClient{lookup: newLookup(cfg, httpClient, logger)}
}

// VerifyCity returns an error wrapping types.ErrVerificationUnavailable when GeoNames
// could not be queried; zero results is still (nil, false, nil).
func (c *StrictClient) VerifyCity(ctx context.Context, name string) (*types.GeoPlace, bool, error) {
	place, ok, err := c.verify(ctx, "StrictVerifyCity", name)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", types.ErrVerificationUnavailable, err)
	}
	return place, ok, nil
}
