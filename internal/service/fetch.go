// Package service implements request defaults and response post-processing
// around the executor.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"httpfetch/internal/client"
	"httpfetch/internal/config"
	"httpfetch/internal/model"
)

var (
	// ErrMissingURL is returned when a request has no target URL.
	ErrMissingURL = errors.New("url is required")
	// ErrNoResponse is returned when the executor produced no usable response.
	ErrNoResponse = errors.New("no usable response")
	// ErrJSONPath is returned when a JSON path does not select anything.
	ErrJSONPath = errors.New("json path did not match")
)

// FetchService applies configured defaults and executes fetch requests.
type FetchService struct {
	executor *client.Executor
	cfg      *config.Config
	logger   *slog.Logger
}

// NewFetchService creates a FetchService.
func NewFetchService(e *client.Executor, cfg *config.Config, logger *slog.Logger) *FetchService {
	return &FetchService{
		executor: e,
		cfg:      cfg,
		logger:   logger.With("component", "fetch_service"),
	}
}

// Proxy returns the proxy settings used when a request does not name its own.
func (s *FetchService) Proxy() model.ProxySettings {
	return s.executor.Proxy()
}

// Fetch executes req. An empty method defaults to GET and a zero timeout to
// fetch.timeout_ms. Unknown methods return model.ErrInvalidMethod; transport
// failures return ErrNoResponse.
func (s *FetchService) Fetch(ctx context.Context, req *model.FetchRequest) (*model.FetchResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrMissingURL
	}

	method := req.Method
	if method == "" {
		method = "GET"
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = time.Duration(s.cfg.Fetch.TimeoutMillis) * time.Millisecond
	}

	res, err := s.executor.Execute(ctx, method, req.URL, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if res == nil {
		return nil, ErrNoResponse
	}

	if req.JSONPath != "" {
		value, err := ExtractJSONPath(res.Body, req.JSONPath)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("applied json path", "path", req.JSONPath)
		res.Body = value
	}

	return res, nil
}

// ExtractJSONPath returns the value selected by path (gjson syntax) from body.
// Strings are returned unquoted; objects and arrays as raw JSON.
func ExtractJSONPath(body, path string) (string, error) {
	if !gjson.Valid(body) {
		return "", fmt.Errorf("%w: response body is not valid JSON", ErrJSONPath)
	}
	v := gjson.Get(body, path)
	if !v.Exists() {
		return "", fmt.Errorf("%w: %q", ErrJSONPath, path)
	}
	return v.String(), nil
}
