package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/render"
)

// ConfigHandler serves read-only views of the Superset settings loaded at
// startup.
type ConfigHandler struct {
	Settings config.Settings
}

// NewConfigHandler wraps s.
func NewConfigHandler(s config.Settings) *ConfigHandler {
	return &ConfigHandler{Settings: s}
}

// FeatureFlags returns the FEATURE_FLAGS mapping.
func (h *ConfigHandler) FeatureFlags(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Settings.FeatureFlags)
}

// refreshInterval is the JSON form of one auto-refresh option.
type refreshInterval struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label"`
}

// RefreshIntervals returns the dashboard auto-refresh options in menu order.
func (h *ConfigHandler) RefreshIntervals(c echo.Context) error {
	out := make([]refreshInterval, 0, len(h.Settings.DashboardAutoRefreshIntervals))
	for _, iv := range h.Settings.DashboardAutoRefreshIntervals {
		out = append(out, refreshInterval{Seconds: iv.Seconds, Label: iv.Label})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"mode":      h.Settings.DashboardAutoRefreshMode,
		"intervals": out,
	})
}

// PreferredDatabases returns the PREFERRED_DATABASES entries.
func (h *ConfigHandler) PreferredDatabases(c echo.Context) error {
	doc := render.Document(h.Settings, false)
	return c.JSON(http.StatusOK, doc["PREFERRED_DATABASES"])
}

// Config returns the whole document with secrets masked.  ?format=yaml
// switches the encoding.
func (h *ConfigHandler) Config(c echo.Context) error {
	var buf bytes.Buffer
	switch strings.ToLower(c.QueryParam("format")) {
	case "", "json":
		if err := render.JSON(&buf, h.Settings, false); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
	case "yaml", "yml":
		if err := render.YAML(&buf, h.Settings, false); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.Blob(http.StatusOK, "application/yaml", buf.Bytes())
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be json or yaml"})
}

// PythonModule returns the unmasked superset_config.py.  It must only be
// mounted behind authentication.
func (h *ConfigHandler) PythonModule(c echo.Context) error {
	var buf bytes.Buffer
	if err := render.Python(&buf, h.Settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "text/x-python; charset=utf-8", buf.Bytes())
}
