// Package authority is the HTTP client for the move authority, the server
// of record for every game.
package authority

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/platform/timeouts"
	"github.com/louisbranch/turnsync/internal/services/turnsync/credential"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

const (
	tracerName = "github.com/louisbranch/turnsync/internal/services/turnsync/authority"
	// maxBodyBytes bounds response bodies read into memory.
	maxBodyBytes = 4 << 20
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)

// Client talks to the authority's REST API. It is safe for concurrent use
// and is shared by every engine.
type Client struct {
	baseURL    string
	http       *http.Client
	creds      credential.Provider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTracerProvider sets the provider used for client spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithPropagator sets the propagator that injects trace context headers.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *Client) {
		if p != nil {
			c.propagator = p
		}
	}
}

// WithRequestID overrides request id generation.
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// New creates a client for baseURL (e.g. https://host/api).
func New(baseURL string, creds credential.Provider, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("authority base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse authority base url: %w", err)
	}
	if creds == nil {
		return nil, errors.New("credential provider is required")
	}
	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeouts.AuthorityRequest},
		creds:      creds,
		tracer:     otel.Tracer(tracerName),
		propagator: otel.GetTextMapPropagator(),
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetState loads the variant-specific game state for id.
func (c *Client) GetState(ctx context.Context, route, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, gamePath(route, id, ""), nil)
}

// ListGames lists the caller's games for a variant route.
func (c *Client) ListGames(ctx context.Context, route string) (GameList, error) {
	raw, err := c.do(ctx, http.MethodGet, "/"+route+"/games", nil)
	if err != nil {
		return GameList{}, err
	}
	var list GameList
	if err := decode(raw, &list); err != nil {
		return GameList{}, err
	}
	return list, nil
}

// Preview asks the authority to evaluate payload without applying it.
func (c *Client) Preview(ctx context.Context, route, id string, payload domain.Payload) (PreviewResponse, error) {
	raw, err := c.do(ctx, http.MethodPost, gamePath(route, id, payload.Action), payload.Body)
	if err != nil {
		return PreviewResponse{}, err
	}
	var preview PreviewResponse
	if err := decode(raw, &preview); err != nil {
		return PreviewResponse{}, err
	}
	return preview, nil
}

// Commit submits payload as the caller's move and returns the raw response.
func (c *Client) Commit(ctx context.Context, route, id string, payload domain.Payload) (json.RawMessage, error) {
	if strings.TrimSpace(payload.Action) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidMove, "commit action is required")
	}
	return c.do(ctx, http.MethodPost, gamePath(route, id, payload.Action), payload.Body)
}

// TileBag reads the remaining tiles of a word game.
func (c *Client) TileBag(ctx context.Context, route, id string) (TileBag, error) {
	raw, err := c.do(ctx, http.MethodGet, gamePath(route, id, "bag"), nil)
	if err != nil {
		return TileBag{}, err
	}
	var bag TileBag
	if err := decode(raw, &bag); err != nil {
		return TileBag{}, err
	}
	return bag, nil
}

// History reads the committed moves of a word game, oldest first.
func (c *Client) History(ctx context.Context, route, id string) ([]HistoryItem, error) {
	raw, err := c.do(ctx, http.MethodGet, gamePath(route, id, "history"), nil)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

func gamePath(route, id, action string) string {
	p := "/" + route + "/games/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func decode(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "decode authority response", err)
	}
	return nil
}

// do sends one request, refreshing the credential and retrying once when
// the authority answers 401.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "authority "+method+" "+spanRoute(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.URLFull(c.baseURL+path),
		),
	)
	defer span.End()

	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, c.fail(span, asUnauthorized(err))
	}
	status, raw, err := c.send(ctx, span, method, path, body, token)
	if err != nil {
		return nil, c.fail(span, err)
	}
	if status == http.StatusUnauthorized {
		span.AddEvent("credential refresh")
		token, err = c.creds.Refresh(ctx)
		if err != nil {
			return nil, c.fail(span, asUnauthorized(err))
		}
		status, raw, err = c.send(ctx, span, method, path, body, token)
		if err != nil {
			return nil, c.fail(span, err)
		}
	}
	span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	if status < 200 || status > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return nil, c.fail(span, apperrors.FromHTTPStatus(status, eb.Code, eb.Error))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, span trace.Span, method, path string, body []byte, token string) (int, json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build authority request: %w", err)
	}
	requestID := c.requestID()
	span.SetAttributes(attribute.String("turnsync.request_id", requestID))
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeNetwork, method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeNetwork, "read authority response", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	return err
}

// asUnauthorized keeps network failures retryable and reports every other
// credential failure as UNAUTHORIZED.
func asUnauthorized(err error) error {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNetwork, apperrors.CodeUnauthorized:
		return err
	default:
		return apperrors.Wrap(apperrors.CodeUnauthorized, "credential unavailable", err)
	}
}

// spanRoute replaces the game id so span names stay low-cardinality.
func spanRoute(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) >= 3 && parts[1] == "games" {
		parts[2] = "{id}"
	}
	return "/" + strings.Join(parts, "/")
}
