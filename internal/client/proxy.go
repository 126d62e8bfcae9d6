package client

import (
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"httpfetch/internal/model"
)

// ShouldUseProxy reports whether rawURL should be routed through the proxy,
// given a pipe-separated list of hosts that bypass it. Entries containing '*'
// match any sequence of characters at that position; other entries must equal
// the host exactly. A blank list never bypasses the proxy.
//
// When rawURL cannot be parsed into a host, the raw string is matched instead.
func ShouldUseProxy(logger *slog.Logger, rawURL, nonProxyHosts string) bool {
	if strings.TrimSpace(nonProxyHosts) == "" {
		return true
	}

	host := rawURL
	if u, err := url.Parse(rawURL); err != nil || u.Hostname() == "" {
		logger.Error("malformed url, matching non-proxy hosts against it verbatim", "url", rawURL)
	} else {
		host = u.Hostname()
	}

	for _, pattern := range strings.Split(nonProxyHosts, "|") {
		if matchHost(host, pattern) {
			return false
		}
	}
	return true
}

func matchHost(host, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return host == pattern
	}
	return wildcardRegexp(pattern).MatchString(host)
}

// wildcardRegexp turns a host pattern such as "*.example.com" into an anchored
// expression where '*' is the only special character.
func wildcardRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// proxyURL builds the forward proxy URL, carrying credentials only when a
// proxy user is configured.
func proxyURL(p model.ProxySettings) *url.URL {
	port := p.Port
	if port == 0 {
		port = model.DefaultProxyPort
	}
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(strings.TrimSpace(p.Host), strconv.Itoa(port)),
	}
	if p.HasCredentials() {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u
}
