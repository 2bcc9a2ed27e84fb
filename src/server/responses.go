package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Error Responses
// -----------------------------------------------------------------------------

// statusFor maps pipeline error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch helpers.KindOf(err) {
	case helpers.KindValidation, helpers.KindParse:
		return http.StatusBadRequest
	case helpers.KindDuplicateName:
		return http.StatusConflict
	case helpers.KindFetch:
		return http.StatusBadGateway
	case helpers.KindEmptySeries:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.Logger.Debug("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	body := gin.H{"error": err.Error()}
	if kind := helpers.KindOf(err); kind != "" {
		body["kind"] = string(kind)
	}
	c.AbortWithStatusJSON(status, body)
}

// -----------------------------------------------------------------------------
// Query Parsing
// -----------------------------------------------------------------------------

// queryFromURL reads a dashboard query from GET parameters:
// start, end, theme, indicators (comma separated), smoothing or smooth=true.
func (s *DashboardServer) queryFromURL(c *gin.Context) (models.MDashboardQuery, error) {
	query := models.MDashboardQuery{
		DateRange: models.MDateRange{Start: c.Query("start"), End: c.Query("end")},
		Theme:     c.Query("theme"),
	}

	if raw := strings.TrimSpace(c.Query("indicators")); raw != "" {
		query.Indicators = make(map[string]bool)
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				query.Indicators[id] = true
			}
		}
	}

	if raw := c.Query("smoothing"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, helpers.NewValidationError("smoothing must be an integer, got %q", raw)
		}
		query.Smoothing = n
	} else if raw := c.Query("smooth"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return query, helpers.NewValidationError("smooth must be a boolean, got %q", raw)
		}
		if on {
			query.Smoothing = s.Config.Dashboard.SmoothingWindow
		}
	}
	return query, nil
}

// -----------------------------------------------------------------------------

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, helpers.NewValidationError("%s must be a non-negative integer, got %q", key, raw)
	}
	return n, nil
}
