// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package net

import (
	"errors"
	"fmt"
	stdnet "net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidBaseURL indicates a server URL the client cannot use.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrInvalidListenAddr indicates a listen address without a port.
	ErrInvalidListenAddr = errors.New("invalid listen address")
)

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// ParseBaseURL validates a server base URL. It enforces:
//   - Scheme must be "http" or "https"
//   - Host must be non-empty
//   - No credentials, query or fragment
//
// The returned URL has no trailing slash so endpoint paths can be appended.
func ParseBaseURL(s string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme != "http" && scheme != "https":
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidBaseURL, u.Scheme)
	case u.Host == "":
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	case u.User != nil:
		return nil, fmt.Errorf("%w: credentials not allowed", ErrInvalidBaseURL)
	case u.RawQuery != "" || u.Fragment != "":
		return nil, fmt.Errorf("%w: query and fragment not allowed", ErrInvalidBaseURL)
	}

	u.Scheme = scheme
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return u, nil
}

// LocalURL builds a loopback URL for a server listening on listenAddr.
// Wildcard hosts map to 127.0.0.1.
func LocalURL(listenAddr, path string) (string, error) {
	host, port, err := stdnet.SplitHostPort(strings.TrimSpace(listenAddr))
	if err != nil || port == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidListenAddr, listenAddr)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + stdnet.JoinHostPort(host, port) + path, nil
}
