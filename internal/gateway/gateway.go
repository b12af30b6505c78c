// Package gateway is the single path every backend call takes. It attaches
// the session token, classifies failures and substitutes a synthetic
// response when the backend cannot be reached.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/fallback"
	"github.com/example/ridepool-client/internal/models"
	"github.com/example/ridepool-client/internal/observability"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
)

type IdentityStore interface {
	Load(ctx context.Context) (*models.Identity, error)
	Clear(ctx context.Context) error
}

type Availability interface {
	MarkUnavailable()
}

type Fallback interface {
	Resolve(ctx context.Context, method, path string, params map[string]any) (models.Envelope, error)
	Label(method, path string) string
}

// Request describes one backend call. Path may carry its own query string;
// it is merged with Query.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// NoFallback returns transport failures to the caller instead of a
	// synthetic envelope.
	NoFallback bool
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  zerolog.Logger
}

type Gateway struct {
	baseURL  string
	timeout  time.Duration
	client   *http.Client
	log      zerolog.Logger
	ids      IdentityStore
	monitor  Availability
	fallback Fallback
}

func New(opts Options, ids IdentityStore, monitor Availability, fb Fallback) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &Gateway{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
		client:   opts.Client,
		log:      opts.Logger,
		ids:      ids,
		monitor:  monitor,
		fallback: fb,
	}
}

// Send is Do with the common arguments spelled out.
func (g *Gateway) Send(ctx context.Context, method, path string, query url.Values, body any) (models.Envelope, error) {
	return g.Do(ctx, Request{Method: method, Path: path, Query: query, Body: body})
}

// Do performs req against the backend. A 2xx envelope is returned as is. A
// transport failure marks the backend unavailable and, unless NoFallback is
// set, yields the fallback envelope instead. A 401 clears the stored
// identity. Any other status comes back as *APIError.
func (g *Gateway) Do(ctx context.Context, req Request) (models.Envelope, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	path, query := splitQuery(req.Path, req.Query)
	route := g.RouteLabel(method, path)
	start := time.Now()

	env, err := g.roundTrip(ctx, method, path, query, req.Body)
	if err == nil {
		g.observe(method, route, "backend", "ok", start)
		g.log.Debug().Str("method", method).Str("route", route).Dur("took", time.Since(start)).Msg("backend call")
		return env, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		outcome := "api_error"
		if apiErr.Status == http.StatusUnauthorized {
			outcome = "unauthorized"
			if g.ids != nil {
				if cerr := g.ids.Clear(ctx); cerr != nil {
					g.log.Error().Err(cerr).Msg("clear identity after 401")
				}
			}
		}
		g.observe(method, route, "backend", outcome, start)
		g.log.Debug().Str("method", method).Str("route", route).Int("status", apiErr.Status).Msg("backend rejected call")
		return models.Envelope{}, err
	}

	if !errors.Is(err, ErrTransport) {
		g.observe(method, route, "backend", "error", start)
		return models.Envelope{}, err
	}

	if g.monitor != nil {
		g.monitor.MarkUnavailable()
	}
	if req.NoFallback || g.fallback == nil {
		g.observe(method, route, "backend", "transport", start)
		return models.Envelope{}, err
	}

	params, perr := mergeParams(query, req.Body)
	if perr != nil {
		g.observe(method, route, "fallback", "error", start)
		return models.Envelope{}, perr
	}
	env, ferr := g.fallback.Resolve(ctx, method, path, params)
	if ferr != nil {
		g.observe(method, route, "fallback", "error", start)
		return models.Envelope{}, ferr
	}
	g.observe(method, route, "fallback", "ok", start)
	g.log.Warn().Err(err).Str("method", method).Str("route", route).Msg("backend unreachable, served demo response")
	return env, nil
}

// RouteLabel names the route pattern behind method and path so metrics and
// logs never carry raw ids.
func (g *Gateway) RouteLabel(method, path string) string {
	if g.fallback == nil {
		return fallback.UnmatchedLabel
	}
	return g.fallback.Label(strings.ToUpper(method), path)
}

func (g *Gateway) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (models.Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return models.Envelope{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if g.ids != nil {
		id, err := g.ids.Load(ctx)
		if err != nil {
			g.log.Warn().Err(err).Msg("load identity for request")
		}
		if id != nil && id.AuthToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+id.AuthToken)
		}
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return models.Envelope{}, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Envelope{}, &TransportError{Method: method, Path: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Envelope{}, newAPIError(resp.StatusCode, raw)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Envelope{Success: true}, nil
	}
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.Envelope{}, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return env, nil
}

func (g *Gateway) observe(method, route, origin, outcome string, start time.Time) {
	observability.GatewayRequestsTotal.WithLabelValues(method, route, origin, outcome).Inc()
	observability.GatewayRequestDuration.WithLabelValues(method, route, origin).Observe(time.Since(start).Seconds())
}

func splitQuery(path string, query url.Values) (string, url.Values) {
	merged := url.Values{}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if q, err := url.ParseQuery(path[i+1:]); err == nil {
			for k, v := range q {
				merged[k] = append(merged[k], v...)
			}
		}
		path = path[:i]
	}
	for k, v := range query {
		merged[k] = append(merged[k], v...)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, merged
}

// mergeParams flattens query values and a JSON object body into one map.
// Body fields win over query values of the same name.
func mergeParams(query url.Values, body any) (map[string]any, error) {
	params := make(map[string]any, len(query))
	for k, v := range query {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if body == nil {
		return params, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body for fallback: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		// non-object bodies have no named fields to offer
		return params, nil
	}
	for k, v := range fields {
		params[k] = v
	}
	return params, nil
}
