package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"httpfetch/internal/service"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	service *service.FetchService
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(svc *service.FetchService, v Version) *HealthHandler {
	return &HealthHandler{service: svc, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status reports the default proxy settings. Credentials are never included.
func (h *HealthHandler) Status(c echo.Context) error {
	p := h.service.Proxy()
	body := map[string]any{
		"status":        "ok",
		"version":       string(h.version),
		"proxy_enabled": p.Enabled(),
	}
	if p.Enabled() {
		body["proxy_host"] = p.Host
		body["proxy_port"] = p.Port
		body["proxy_auth"] = p.HasCredentials()
		body["non_proxy_hosts"] = p.NonProxyHosts
	}
	return c.JSON(http.StatusOK, body)
}
