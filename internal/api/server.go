// Package api exposes the HTTP API and WebSocket endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/downloader"
	"github.com/gradecast/gradecast/internal/grade"
	"github.com/gradecast/gradecast/internal/health"
	"github.com/gradecast/gradecast/internal/logger"
	"github.com/gradecast/gradecast/internal/missing"
	"github.com/gradecast/gradecast/internal/pool"
	"github.com/gradecast/gradecast/internal/ranking"
	"github.com/gradecast/gradecast/internal/scheduler"
	"github.com/gradecast/gradecast/internal/scrape"
	"github.com/gradecast/gradecast/internal/websocket"
)

// Services holds the service instances the API exposes.
type Services struct {
	Store     *database.Store
	Pool      *pool.Service
	Ranking   *ranking.Service
	Grade     *grade.Service
	Missing   *missing.Service
	Downloads *downloader.Queue
	Scrape    *scrape.Orchestrator
	Scheduler *scheduler.Scheduler
	Health    *health.Service
}

// Server handles HTTP requests for the gradecast API.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	hub       *websocket.Hub
	log       *logger.Logger
	services  Services
	startTime time.Time
}

// NewServer creates an API server around already constructed services.
func NewServer(cfg *config.Config, hub *websocket.Hub, log *logger.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		hub:       hub,
		log:       log,
		services:  services,
		startTime: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.log.Info()
			if v.Error != nil {
				event = s.log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/system/status", s.getStatus)
	v1.GET("/system/logs", s.getLogs)
	v1.GET("/ws", s.hub.HandleWebSocket)

	s.registerStationRoutes(v1.Group("/stations"))
	s.registerGradeRoutes(v1.Group("/grade"))
	v1.GET("/ranking", s.getRanking)
	v1.GET("/sequences", s.listSequences)
	v1.GET("/fixed-contents", s.listFixedContents)

	missing.NewHandlers(s.services.Missing).RegisterRoutes(v1.Group("/missing"))
	downloader.NewHandlers(s.services.Downloads).RegisterRoutes(v1.Group("/downloads"))
	scrape.NewHandlers(s.services.Scrape).RegisterRoutes(v1.Group("/scrape"))
	scheduler.NewHandlers(s.services.Scheduler).RegisterRoutes(v1.Group("/scheduler"))
	health.NewHandlers(s.services.Health).RegisterRoutes(v1.Group("/health"))
}

// Start begins serving on the given address, blocking until shutdown.
func (s *Server) Start(address string) error {
	s.log.Info().Str("address", address).Msg("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":         config.Version,
		"startTime":       s.startTime.Format(time.RFC3339),
		"clients":         s.hub.ClientCount(),
		"pendingDownload": s.services.Downloads.Len(),
	})
}

func (s *Server) getLogs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.log.Recent())
}
