package scrape

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for scrape operations.
type Handlers struct {
	orchestrator *Orchestrator
}

// NewHandlers creates new scrape handlers.
func NewHandlers(orchestrator *Orchestrator) *Handlers {
	return &Handlers{orchestrator: orchestrator}
}

// RegisterRoutes registers the scrape routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/run", h.Run)
}

// Run executes one scrape cycle synchronously and returns its summary.
// POST /api/v1/scrape/run
func (h *Handlers) Run(c echo.Context) error {
	res, err := h.orchestrator.Run(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
