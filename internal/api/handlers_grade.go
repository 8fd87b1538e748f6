package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gradecast/gradecast/internal/grade"
)

func (s *Server) registerGradeRoutes(g *echo.Group) {
	g.POST("/build", s.buildUpcoming)
	g.POST("/build/:day", s.buildFullDay)
	g.GET("/:day", s.getDay)
	g.GET("/history", s.getGradeHistory)
}

// buildUpcoming builds the next half-hour block.
// POST /api/v1/grade/build
func (s *Server) buildUpcoming(c echo.Context) error {
	res, err := s.services.Grade.BuildUpcoming(c.Request().Context(), time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if res == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "already built"})
	}
	return c.JSON(http.StatusOK, res)
}

// buildFullDay regenerates all 48 blocks of a weekday.
// POST /api/v1/grade/build/SEX
func (s *Server) buildFullDay(c echo.Context) error {
	day, err := dayForCode(c.Param("day"), time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := s.services.Grade.BuildFullDay(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// getDay returns the current lines of a weekday's schedule file.
// GET /api/v1/grade/SEX
func (s *Server) getDay(c echo.Context) error {
	day, err := dayForCode(c.Param("day"), time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lines, err := s.services.Grade.ReadDay(day.Weekday())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"file":  s.services.Grade.FilePath(day.Weekday()),
		"lines": lines,
	})
}

// getGradeHistory returns recent build records.
// GET /api/v1/grade/history?limit=50
func (s *Server) getGradeHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := s.services.Grade.History(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// dayForCode resolves a weekday code like "SEX" to its next occurrence,
// today included.
func dayForCode(code string, now time.Time) (time.Time, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if grade.WeekdayCode(d) == code {
			offset := (int(d) - int(now.Weekday()) + 7) % 7
			return now.AddDate(0, 0, offset), nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown weekday code %q", code)
}
