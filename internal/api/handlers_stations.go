package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gradecast/gradecast/internal/database"
)

func (s *Server) registerStationRoutes(g *echo.Group) {
	g.GET("", s.listStations)
	g.GET("/:id", s.getStation)
	g.PUT("/:id", s.upsertStation)
	g.GET("/:id/pool", s.getStationPool)
}

// listStations returns every configured station.
// GET /api/v1/stations
func (s *Server) listStations(c echo.Context) error {
	stations, err := s.services.Store.ListStations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stations)
}

// getStation returns one station.
// GET /api/v1/stations/:id
func (s *Server) getStation(c echo.Context) error {
	st, err := s.services.Store.GetStation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "station not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

// upsertStation creates or replaces a station definition.
// PUT /api/v1/stations/:id
func (s *Server) upsertStation(c echo.Context) error {
	var st database.Station
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station payload")
	}
	st.ID = c.Param("id")
	if st.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "station url is required")
	}

	if err := s.services.Store.UpsertStation(c.Request().Context(), st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

// getStationPool returns the captured songs of one station, newest first.
// GET /api/v1/stations/:id/pool
func (s *Server) getStationPool(c echo.Context) error {
	entries, err := s.services.Pool.ByStation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// listSequences returns every block sequence, default first.
// GET /api/v1/sequences
func (s *Server) listSequences(c echo.Context) error {
	seqs, err := s.services.Store.ListSequences(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, seqs)
}

// listFixedContents returns every fixed content definition.
// GET /api/v1/fixed-contents
func (s *Server) listFixedContents(c echo.Context) error {
	contents, err := s.services.Store.ListFixedContents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, contents)
}

// getRanking returns the top of the global play ranking.
// GET /api/v1/ranking?limit=50
func (s *Server) getRanking(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	songs, err := s.services.Ranking.Top(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, songs)
}
