// Package client executes single outbound HTTP requests, optionally through a
// forward proxy and with basic credentials taken from the URL.
package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"httpfetch/internal/config"
	"httpfetch/internal/metrics"
	"httpfetch/internal/model"
)

const (
	// MaxAttempts bounds how often an idempotent request is sent when the
	// transport fails. Non-idempotent requests are sent once.
	MaxAttempts = 3

	retryWaitTime    = 100 * time.Millisecond
	retryMaxWaitTime = time.Second
)

// Executor performs one request per call. It holds no per-request state and
// is safe for concurrent use.
type Executor struct {
	proxy   model.ProxySettings
	logger  *slog.Logger
	metrics *metrics.Metrics

	// roundTripper replaces the per-call transport when set.
	roundTripper http.RoundTripper
}

// NewExecutor creates an Executor whose default proxy comes from cfg.
// The metrics parameter is optional; pass nil to disable fetch metrics.
func NewExecutor(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Executor {
	logger = logger.With("component", "executor")
	return &Executor{
		proxy:   cfg.Proxy.Settings(logger),
		logger:  logger,
		metrics: m,
	}
}

// Proxy returns the default proxy settings.
func (e *Executor) Proxy() model.ProxySettings {
	return e.proxy
}

// Execute runs the request with the executor's default proxy settings.
// See ExecuteWithProxy.
func (e *Executor) Execute(ctx context.Context, method, rawURL string, timeout time.Duration) (*model.FetchResult, error) {
	return e.ExecuteWithProxy(ctx, method, rawURL, timeout, e.proxy)
}

// ExecuteWithProxy sends a single request and returns the response body.
//
// The only error returned is model.ErrInvalidMethod. Transport and protocol
// failures are logged and reported as a nil result. A non-2xx status is
// logged but still returns the body together with the status code.
func (e *Executor) ExecuteWithProxy(ctx context.Context, method, rawURL string, timeout time.Duration, proxy model.ProxySettings) (*model.FetchResult, error) {
	m, err := model.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	var via *url.URL
	if proxy.Enabled() && ShouldUseProxy(e.logger, rawURL, proxy.NonProxyHosts) {
		via = proxyURL(proxy)
	}

	rc := resty.NewWithClient(&http.Client{Transport: e.transport(via, timeout)}).
		SetLogger(restyLogger{logger: e.logger}).
		SetDisableWarn(true).
		SetTimeout(timeout).
		SetDoNotParseResponse(true).
		SetRetryCount(MaxAttempts - 1).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			return err != nil && m.Idempotent()
		})

	if creds, ok := ExtractCredentials(rawURL); ok {
		rc.SetBasicAuth(creds.Username, creds.Password)
	}

	target := stripUserinfo(rawURL)
	req, err := NewRequest(rc.R().SetContext(ctx), method, target)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("about to execute",
		"method", m.String(),
		"url", target,
		"proxied", via != nil,
	)

	start := time.Now()
	resp, err := req.Send()
	defer closeBody(resp)

	if err != nil {
		e.logger.Error("fatal transport error", "method", m.String(), "url", target, "err", err)
		e.observeFailure(m, via != nil, time.Since(start))
		return nil, nil
	}

	body, err := io.ReadAll(resp.RawBody())
	if err != nil {
		e.logger.Error("reading response body", "method", m.String(), "url", target, "err", err)
		e.observeFailure(m, via != nil, time.Since(start))
		return nil, nil
	}

	result := &model.FetchResult{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       string(body),
		Duration:   time.Since(start),
	}
	e.observeResponse(m, via != nil, result)

	if !result.IsSuccess() {
		e.logger.Warn("method failed", "method", m.String(), "url", target, "status", result.Status)
	}
	if result.Body != "" {
		e.logger.Debug("response body", "url", target, "body", result.Body)
	}

	return result, nil
}

// transport builds a fresh, non-pooling transport for one call.
func (e *Executor) transport(via *url.URL, timeout time.Duration) http.RoundTripper {
	if e.roundTripper != nil {
		return e.roundTripper
	}
	dialTimeout := 30 * time.Second
	if timeout > 0 && timeout < dialTimeout {
		dialTimeout = timeout
	}
	t := &http.Transport{
		DisableKeepAlives:   true,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
	}
	if via != nil {
		t.Proxy = http.ProxyURL(via)
	}
	return t
}

// closeBody releases the connection held by resp, if any.
func closeBody(resp *resty.Response) {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return
	}
	_ = resp.RawResponse.Body.Close()
}

func (e *Executor) observeFailure(m model.Method, proxied bool, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.FetchDuration.WithLabelValues(m.String(), strconv.FormatBool(proxied)).Observe(d.Seconds())
	e.metrics.FetchFailures.WithLabelValues(m.String()).Inc()
}

func (e *Executor) observeResponse(m model.Method, proxied bool, r *model.FetchResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.FetchDuration.WithLabelValues(m.String(), strconv.FormatBool(proxied)).Observe(r.Duration.Seconds())
	e.metrics.FetchResponses.WithLabelValues(m.String(), strconv.Itoa(r.StatusCode)).Inc()
}
