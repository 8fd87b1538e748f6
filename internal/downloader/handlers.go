package downloader

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for the download queue.
type Handlers struct {
	queue *Queue
}

// NewHandlers creates new download handlers.
func NewHandlers(queue *Queue) *Handlers {
	return &Handlers{queue: queue}
}

// RegisterRoutes registers the download routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/queue", h.GetQueue)
	g.POST("/drain", h.TriggerDrain)
	g.PUT("/enabled", h.SetEnabled)
	g.GET("/history", h.GetHistory)
}

// GetQueue returns the number of pending downloads and the enable state.
// GET /api/v1/downloads/queue
func (h *Handlers) GetQueue(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pending": h.queue.Len(),
		"enabled": h.queue.Enabled(),
	})
}

// SetEnabled toggles the queue at runtime.
// PUT /api/v1/downloads/enabled
func (h *Handlers) SetEnabled(c echo.Context) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.queue.SetEnabled(req.Enabled)
	return c.JSON(http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// TriggerDrain starts a drain pass in the background. The drain outlives
// the request, so it runs on a fresh context.
// POST /api/v1/downloads/drain
func (h *Handlers) TriggerDrain(c echo.Context) error {
	go h.queue.Drain(context.Background())
	return c.JSON(http.StatusAccepted, map[string]string{"status": "draining"})
}

// GetHistory returns recent download attempts.
// GET /api/v1/downloads/history?limit=50
func (h *Handlers) GetHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}
	entries, err := h.queue.store.ListDownloadHistory(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}
