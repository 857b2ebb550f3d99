// Package backend is the thin HTTP/JSON client for the remote commerce backend.
// It owns nothing but transport: envelope parsing, error message extraction,
// multipart assembly and a circuit breaker around the calls.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/circuitbreaker"
	"github.com/jwalitptl/solar-admin/pkg/logger"
	"github.com/jwalitptl/solar-admin/pkg/metrics"
)

const maxBodyBytes = 10 << 20

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Breaker   circuitbreaker.Settings
}

// Request describes one backend call. Body is JSON-encoded unless it is a *Multipart.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   interface{}
}

// Response is a successful backend reply.
type Response struct {
	Status   int
	Body     []byte
	Envelope model.Envelope
}

// Data returns the envelope's data member, or the whole body when the
// backend did not wrap its reply.
func (r *Response) Data() []byte {
	if len(r.Envelope.Data) > 0 {
		return r.Envelope.Data
	}
	return r.Body
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewClient(cfg Config, log *logger.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = circuitbreaker.DefaultSettings("backend")
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    log.With("component", "backend"),
		metrics:   m,
	}

	settings := cfg.Breaker
	settings.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		be, ok := AsError(err)
		return ok && !be.Temporary()
	}
	onChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		if c.metrics != nil {
			c.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		}
		if onChange != nil {
			onChange(name, from, to)
		}
	}
	c.cb = circuitbreaker.NewCircuitBreaker(settings)
	return c
}

// BaseURL is the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends req and returns the parsed reply. A non-2xx status or an
// envelope with success:false is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, req)
	})

	status := "error"
	switch {
	case err == nil:
		status = strconv.Itoa(out.(*Response).Status)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		status = "canceled"
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		status = "breaker_open"
		err = &Error{Status: http.StatusServiceUnavailable, Message: "Backend is temporarily unavailable. Please try again shortly."}
	default:
		if be, ok := AsError(err); ok {
			status = strconv.Itoa(be.Status)
		}
	}
	if c.metrics != nil {
		c.metrics.BackendRequests.WithLabelValues(req.Method, status).Inc()
		c.metrics.BackendLatency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}

// DoJSON sends req and decodes the envelope data into out when out is non-nil.
func (c *Client) DoJSON(ctx context.Context, req Request, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil && len(resp.Data()) > 0 {
		if err := json.Unmarshal(resp.Data(), out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
		}
	}
	return resp, nil
}

// Ping checks that the backend answers at all; any HTTP reply counts.
func (c *Client) Ping(ctx context.Context) error {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(hreq)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	hreq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error(err, "backend request failed", "method", req.Method, "path", req.Path)
		return nil, &Error{Message: GenericFailure}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: GenericFailure}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractMessage(body)
		if msg == "" {
			msg = GenericFailure
		}
		c.logger.Debug("backend returned error status", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
		return nil, &Error{Status: resp.StatusCode, Message: msg, Body: body}
	}

	out := &Response{Status: resp.StatusCode, Body: body}
	if len(bytes.TrimSpace(body)) > 0 && body[firstNonSpace(body)] == '{' {
		// Unwrapped objects decode into an empty envelope; only success and data matter here.
		_ = json.Unmarshal(body, &out.Envelope)
	}
	if out.Envelope.Success != nil && !*out.Envelope.Success {
		msg := extractMessage(body)
		if msg == "" {
			msg = GenericFailure
		}
		return nil, &Error{Status: http.StatusUnprocessableEntity, Message: msg, Body: body}
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch b := req.Body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		body, contentType = buf, ct
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Accept", "application/json")
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		hreq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if c.userAgent != "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}
	return hreq, nil
}

func firstNonSpace(b []byte) int {
	for i, ch := range b {
		switch ch {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return i
	}
	return 0
}
