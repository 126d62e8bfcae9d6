package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"httpfetch/internal/model"
	"httpfetch/internal/service"
)

// userinfoPattern matches user:password@ in URLs embedded in log fields.
var userinfoPattern = regexp.MustCompile(`(://[^:/@\s"]+:)[^@/\s"]*@`)

// fetchRequest is the JSON body accepted by POST /fetch.
type fetchRequest struct {
	Method        string `json:"method"`
	URL           string `json:"url"`
	TimeoutMillis int    `json:"timeout_ms"`
	JSONPath      string `json:"json_path"`
}

type fetchResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// FetchHandler executes fetch requests on behalf of HTTP clients.
type FetchHandler struct {
	service *service.FetchService
	logger  *slog.Logger
}

// NewFetchHandler creates a FetchHandler.
func NewFetchHandler(svc *service.FetchService, logger *slog.Logger) *FetchHandler {
	return &FetchHandler{
		service: svc,
		logger:  logger.With("component", "fetch_handler"),
	}
}

// Handle executes the requested fetch and returns the upstream status and body.
// The upstream status is reported in the payload; the response itself is 200.
func (h *FetchHandler) Handle(c echo.Context) error {
	var in fetchRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if in.TimeoutMillis < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "timeout_ms must be non-negative",
		})
	}

	res, err := h.service.Fetch(c.Request().Context(), &model.FetchRequest{
		Method:   in.Method,
		URL:      in.URL,
		Timeout:  time.Duration(in.TimeoutMillis) * time.Millisecond,
		JSONPath: in.JSONPath,
	})
	if err != nil {
		return h.mapError(c, err, in.URL)
	}

	return c.JSON(http.StatusOK, fetchResponse{
		StatusCode: res.StatusCode,
		Body:       res.Body,
	})
}

func (h *FetchHandler) mapError(c echo.Context, err error, target string) error {
	h.logger.Error("fetch error",
		"err", redactUserinfo(err.Error()),
		"url", redactUserinfo(target),
	)

	switch {
	case errors.Is(err, model.ErrInvalidMethod):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "method must be one of GET, PUT, POST, DELETE",
		})
	case errors.Is(err, service.ErrMissingURL):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "url is required",
		})
	case errors.Is(err, service.ErrJSONPath):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": "json path did not match the response body",
		})
	case errors.Is(err, service.ErrNoResponse):
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "no usable response from target",
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "fetch failed",
	})
}

// redactUserinfo hides passwords embedded in URLs.
func redactUserinfo(s string) string {
	return userinfoPattern.ReplaceAllString(s, "${1}[REDACTED]@")
}
