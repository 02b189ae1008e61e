// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package client talks to the configuration endpoints of a dealflow server.
package client

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

	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/platform/httpx"
	xnet "github.com/ManuGH/dealflow/internal/platform/net"
	"github.com/ManuGH/dealflow/internal/tiering"
)

const (
	getPath    = "/get-configuration/"
	submitPath = "/submit-configuration/"
	primePath  = "/"

	// DefaultCookieName is the CSRF cookie the server issues.
	DefaultCookieName = "csrftoken"
	// HeaderCSRFToken echoes the CSRF cookie on submissions.
	HeaderCSRFToken = "X-CSRFToken"

	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

var (
	// ErrNoConfiguration is returned by Fetch when nothing has been saved yet.
	ErrNoConfiguration = errors.New("client: no saved configuration")
	// ErrRejected is returned when the server answers with a non-success status.
	ErrRejected = errors.New("client: request rejected")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("client: unexpected status %d: %s", e.Code, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	CookieName string
	// HTTPClient overrides the session client. It must carry a cookie jar.
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client fetches and submits the tiering configuration.
type Client struct {
	base       *url.URL
	http       *http.Client
	cookieName string
	logger     zerolog.Logger
}

type response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Next    string          `json:"next"`
	Error   string          `json:"error"`
}

// New creates a client for the server at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := xnet.ParseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc, err = httpx.NewSessionClient(timeout)
		if err != nil {
			return nil, err
		}
	}
	if hc.Jar == nil {
		return nil, errors.New("client: http client needs a cookie jar")
	}

	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	logger := log.WithComponent("client")
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "client").Logger()
	}

	return &Client{
		base:       base,
		http:       hc,
		cookieName: cookieName,
		logger:     logger.With().Str("server", xnet.SanitizeURL(base.String())).Logger(),
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// Fetch returns the saved configuration. It returns ErrNoConfiguration when
// the server reports that nothing is saved.
func (c *Client) Fetch(ctx context.Context) (tiering.Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(getPath), nil)
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("client: build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return tiering.Configuration{}, err
	}

	switch body.Status {
	case "success":
		cfg, err := tiering.Decode(body.Data)
		if err != nil {
			return tiering.Configuration{}, fmt.Errorf("client: %w", err)
		}
		return cfg, nil
	case "empty":
		return tiering.Configuration{}, ErrNoConfiguration
	default:
		return tiering.Configuration{}, fmt.Errorf("%w: status %q: %s", ErrRejected, body.Status, body.Message)
	}
}

// Submit stores cfg on the server and returns the URL the server suggests
// navigating to next, which may be empty.
func (c *Client) Submit(ctx context.Context, cfg tiering.Configuration) (string, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("client: encode configuration: %w", err)
	}

	token, err := c.csrfToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(submitPath), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("client: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(HeaderCSRFToken, token)
	}

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if body.Status != "success" {
		return "", fmt.Errorf("%w: status %q: %s", ErrRejected, body.Status, body.Message)
	}
	return body.Next, nil
}

// csrfToken reads the CSRF cookie, priming the jar with a GET of the form
// page when it holds none.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if token := CookieValue(c.cookieHeader(), c.cookieName); token != "" {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(primePath), nil)
	if err != nil {
		return "", fmt.Errorf("client: build prime request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("client: prime csrf cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()

	token := CookieValue(c.cookieHeader(), c.cookieName)
	if token == "" {
		c.logger.Debug().Str("event", "client.csrf_cookie_missing").Msg("server issued no csrf cookie")
	}
	return token, nil
}

// cookieHeader renders the jar's cookies for the base URL the way a browser
// exposes them to scripts.
func (c *Client) cookieHeader() string {
	cookies := c.http.Jar.Cookies(c.base)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

func (c *Client) do(req *http.Request) (response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("client: read response: %w", err)
	}

	c.logger.Debug().
		Str("event", "client.request").
		Str(log.FieldMethod, req.Method).
		Str(log.FieldPath, req.URL.Path).
		Int(log.FieldStatus, resp.StatusCode).
		Dur(log.FieldDuration, time.Since(start)).
		Msg("request completed")

	var body response
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return response{}, &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return response{}, fmt.Errorf("client: decode response: %w", decodeErr)
	}
	return body, nil
}

// CookieValue returns the URL-decoded value of the cookie called name from a
// "k=v; k2=v2" cookie string, or "" when absent. Names match exactly.
func CookieValue(cookieHeader, name string) string {
	if cookieHeader == "" || name == "" {
		return ""
	}
	prefix := name + "="
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		raw := part[len(prefix):]
		v, err := url.PathUnescape(raw)
		if err != nil {
			return raw
		}
		return v
	}
	return ""
}
