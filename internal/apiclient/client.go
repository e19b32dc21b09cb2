// Package apiclient is the typed client for the REST backend the portal fronts. Every call
// carries the session bearer token and the inbound request id, and every failure comes back as
// a *errors.Error whose detail is safe to show to the user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/middleware/requestid"
)

const defaultTimeout = 15 * time.Second

// SessionStore is the part of the session the client reads and clears.
type SessionStore interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context) error
}

// Metrics receives backend call observations.
type Metrics interface {
	ObserveBackendCall(method, resource string, status int, duration time.Duration)
	ObserveSessionCleared(reason string)
}

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the backend REST API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	session      SessionStore
	logger       *zap.Logger
	metrics      Metrics
	unauthorized *UnauthorizedPolicy
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New constructs a Client.
func New(cfg Config, session SessionStore, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unauthorized = NewUnauthorizedPolicy(session, c.metrics, logger)
	return c
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     interface{}
	form     url.Values
	raw      io.Reader
	rawType  string
	fallback string
	// login reports its own 401s and must not clear the session.
	bypassUnauthorized bool
}

// do performs req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, req.fallback)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "unexpected response from backend")
	}
	return nil
}

// send performs req and returns the response when the backend answered with a 2xx status.
// The caller owns the body.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, req.fallback)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req, 0, duration)
		c.logger.Warn("backend_unreachable",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	c.observe(req, resp.StatusCode, duration)
	c.logger.Debug("backend_request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("request_id", requestid.FromContext(ctx)),
	)

	if resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	detail := parseDetail(body)
	if resp.StatusCode == http.StatusUnauthorized && !req.bypassUnauthorized {
		return nil, c.unauthorized.Handle(ctx, req.path, detail)
	}
	return nil, statusError(resp.StatusCode, detail, req.fallback)
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.raw != nil:
		body, contentType = req.raw, req.rawType
	case req.form != nil:
		body, contentType = strings.NewReader(req.form.Encode()), "application/x-www-form-urlencoded"
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.Header, id)
	}
	if c.session != nil {
		if token := c.session.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func (c *Client) observe(req request, status int, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveBackendCall(req.method, resourceOf(req.path), status, duration)
}

// resourceOf returns the first path segment, which is the backend resource name.
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// statusError maps a non-2xx backend status to the portal taxonomy.
func statusError(status int, detail, fallback string) *appErrors.Error {
	if detail == "" {
		detail = fallback
	}
	var base *appErrors.Error
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = appErrors.ErrValidation
	case status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case status == http.StatusConflict:
		base = appErrors.ErrConflict
	case status == http.StatusTooManyRequests:
		base = appErrors.ErrTooManyRequests
	case status >= http.StatusInternalServerError:
		base = appErrors.ErrServer
	default:
		base = appErrors.ErrValidation
	}
	return appErrors.Clone(base, detail)
}

// parseDetail extracts the human readable detail from a backend error body. FastAPI sends
// either {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]}.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Loc []interface{} `json:"loc"`
		Msg string        `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg == "" {
				continue
			}
			if field := lastLoc(item.Loc); field != "" {
				parts = append(parts, field+": "+item.Msg)
				continue
			}
			parts = append(parts, item.Msg)
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func lastLoc(loc []interface{}) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}

// pathEscape escapes one path segment.
func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
