package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/epgjanitor/epgjanitor/internal/config"
	"github.com/epgjanitor/epgjanitor/internal/dispatcharr"
	"github.com/epgjanitor/epgjanitor/internal/history"
	"github.com/epgjanitor/epgjanitor/internal/janitor"
	"github.com/epgjanitor/epgjanitor/internal/scheduler"
)

// Server handles HTTP requests for the EPG Janitor API.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger zerolog.Logger

	client         *dispatcharr.Client
	janitorService *janitor.Service
	historyService *history.Service
	sched          *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, client *dispatcharr.Client, janitorService *janitor.Service, historyService *history.Service, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:           e,
		cfg:            cfg,
		logger:         logger.With().Str("component", "api").Logger(),
		client:         client,
		janitorService: janitorService,
		historyService: historyService,
		sched:          sched,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit("2M"))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)
	api.GET("/config/problems", s.getConfigProblems)

	janitorHandlers := janitor.NewHandlers(s.janitorService, s.cfg.Reports.Dir)
	janitorHandlers.RegisterRoutes(api.Group("/janitor"))

	historyHandlers := history.NewHandlers(s.historyService)
	historyHandlers.RegisterRoutes(api.Group("/runs"))

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks/:id/run", s.runTask)
}

// healthCheck reports process liveness.
// GET /health
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports the version and the connection to the host catalog.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	status := map[string]any{
		"version":     config.Version,
		"dispatcharr": "ok",
	}
	if err := s.client.TestConnection(c.Request().Context()); err != nil {
		status["dispatcharr"] = err.Error()
	}
	return c.JSON(http.StatusOK, status)
}

// getConfigProblems returns every configuration problem blocking runs.
// GET /api/v1/config/problems
func (s *Server) getConfigProblems(c echo.Context) error {
	problems := s.cfg.Problems()
	if problems == nil {
		problems = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"problems": problems})
}

// listTasks returns the registered scheduled tasks.
// GET /api/v1/tasks
func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.ListTasks())
}

// runTask triggers a scheduled task immediately.
// POST /api/v1/tasks/:id/run
func (s *Server) runTask(c echo.Context) error {
	if err := s.sched.RunNow(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
