package janitor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for janitor runs.
type Handlers struct {
	service   *Service
	reportDir string
}

// NewHandlers creates new janitor handlers. reportDir is where CSV exports
// are written.
func NewHandlers(service *Service, reportDir string) *Handlers {
	return &Handlers{service: service, reportDir: reportDir}
}

// RegisterRoutes registers the janitor routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/automatch", h.AutoMatch)
	g.POST("/scanheal", h.ScanHeal)
	g.POST("/scan-missing", h.ScanMissingReport)
	g.POST("/export", h.Export)
}

// AutoMatch proposes guide assignments for every channel in scope.
// POST /api/v1/janitor/automatch
func (h *Handlers) AutoMatch(c echo.Context) error {
	return h.runMode(c, ModeAutoMatch)
}

// ScanHeal finds broken assignments and proposes validated replacements.
// POST /api/v1/janitor/scanheal
func (h *Handlers) ScanHeal(c echo.Context) error {
	return h.runMode(c, ModeScanHeal)
}

func (h *Handlers) runMode(c echo.Context, mode Mode) error {
	var opts RunOptions
	if err := c.Bind(&opts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var result *RunResult
	var err error
	if mode == ModeAutoMatch {
		result, err = h.service.RunAutoMatch(c.Request().Context(), opts)
	} else {
		result, err = h.service.RunScanHeal(c.Request().Context(), opts)
	}
	if err != nil {
		if errors.Is(err, ErrNotConfirmed) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// ScanMissingReport runs a read-only scan for assignments without program
// data.
// POST /api/v1/janitor/scan-missing
func (h *Handlers) ScanMissingReport(c echo.Context) error {
	var opts RunOptions
	if err := c.Bind(&opts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := h.service.ScanMissing(c.Request().Context(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().WriteHeader(http.StatusOK)
		return WriteMissingCSV(c.Response(), report)
	}
	return c.JSON(http.StatusOK, report)
}

// Export runs the requested mode as a preview and writes a CSV report.
// POST /api/v1/janitor/export
func (h *Handlers) Export(c echo.Context) error {
	var input struct {
		RunOptions
		Mode Mode `json:"mode"`
	}
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Exports are always previews.
	input.Apply = false
	input.Confirm = false

	var result *RunResult
	var err error
	switch input.Mode {
	case ModeScanHeal:
		result, err = h.service.RunScanHeal(c.Request().Context(), input.RunOptions)
	case ModeAutoMatch, "":
		result, err = h.service.RunAutoMatch(c.Request().Context(), input.RunOptions)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown mode %q", input.Mode))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	path, err := ExportFile(h.reportDir, result)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"path":    path,
		"summary": result.Summary,
	})
}
