// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package httpx builds the outbound HTTP clients used by the CLI and probes.
package httpx

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout  = 5 * time.Second
	maxPhaseTimeout = 3 * time.Second
	idleConnTimeout = 30 * time.Second
	keepAlive       = 30 * time.Second
	maxIdleConns    = 16
	maxIdlePerHost  = 4
)

// timeouts splits an overall request budget into per-phase limits. No single
// phase may exceed maxPhaseTimeout.
type timeouts struct {
	total  time.Duration
	phase  time.Duration
	expect time.Duration
}

func budget(total time.Duration) timeouts {
	if total <= 0 {
		total = defaultTimeout
	}
	return timeouts{
		total:  total,
		phase:  min(total, maxPhaseTimeout),
		expect: min(total, time.Second),
	}
}

// NewClient returns a client whose dial, TLS and header phases are bounded
// as well as the request as a whole. A non-positive timeout selects the
// default.
func NewClient(timeout time.Duration) *http.Client {
	t := budget(timeout)
	return &http.Client{Timeout: t.total, Transport: t.transport()}
}

// NewSessionClient is NewClient with a cookie jar and trace propagation, for
// talking to endpoints guarded by a CSRF cookie.
func NewSessionClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("httpx: cookie jar: %w", err)
	}
	c := NewClient(timeout)
	c.Jar = jar
	c.Transport = otelhttp.NewTransport(c.Transport)
	return c, nil
}

func (t timeouts) transport() *http.Transport {
	dialer := &net.Dialer{Timeout: t.phase, KeepAlive: keepAlive}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   t.phase,
		ResponseHeaderTimeout: t.phase,
		ExpectContinueTimeout: t.expect,
	}
}
