package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for health state.
type Handlers struct {
	service *Service
}

// NewHandlers creates new health handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the health routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetItems)
	g.POST("/check", h.RunCheck)
}

// GetItems returns all tracked health items.
// GET /api/v1/health
func (h *Handlers) GetItems(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Items())
}

// RunCheck runs the built-in checks and returns the resulting items.
// POST /api/v1/health/check
func (h *Handlers) RunCheck(c echo.Context) error {
	h.service.Check(c.Request().Context())
	return c.JSON(http.StatusOK, h.service.Items())
}
