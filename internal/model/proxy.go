// Package model defines shared types for fetching.
package model

import (
	"strings"
	"time"
)

// DefaultProxyPort is used when no proxy port is configured or the configured
// value cannot be parsed.
const DefaultProxyPort = 80

// ProxySettings describes the forward proxy a fetch may be routed through.
// The zero value means no proxy.
type ProxySettings struct {
	Host     string
	Port     int
	User     string
	Password string
	// NonProxyHosts is a pipe-separated list of hosts that bypass the proxy.
	// Entries may contain '*' wildcards, e.g. "localhost|*.internal.example.com".
	NonProxyHosts string
}

// Enabled reports whether a proxy host is set.
func (p ProxySettings) Enabled() bool {
	return strings.TrimSpace(p.Host) != ""
}

// HasCredentials reports whether proxy authentication should be sent.
func (p ProxySettings) HasCredentials() bool {
	return strings.TrimSpace(p.User) != ""
}

// Credentials holds a username and password, either embedded in a URL or
// configured for a proxy.
type Credentials struct {
	Username string
	Password string
}

// FetchRequest is a single request to execute.
type FetchRequest struct {
	Method  string
	URL     string
	Timeout time.Duration
	// JSONPath, when set, selects a value from a JSON response body.
	JSONPath string
}

// FetchResult is the outcome of a fetch that produced a response.
// A non-2xx status is still a result; only transport failures yield none.
type FetchResult struct {
	StatusCode int
	Status     string
	Body       string
	Duration   time.Duration
}

// IsSuccess reports whether the status code is 2xx.
func (r *FetchResult) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
