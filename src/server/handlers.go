package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/loader"
	"econ-dashboard/src/models"
	"econ-dashboard/src/registry"
	"econ-dashboard/src/render"
)

const (
	maxUploadBytes = 10 << 20
	uploadReject   = "reject"
	uploadReplace  = "overwrite"
	pngSuffix      = ".png"
	dateLayout     = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"origin":      s.Origin.Name(),
		"connections": s.Connections(),
		"indicators":  len(s.Registry.List()),
		"cache":       s.Cache.MemoryStats(),
	})
}

// -----------------------------------------------------------------------------
// Catalog
// -----------------------------------------------------------------------------

func (s *DashboardServer) listIndicators(c *gin.Context) {
	c.JSON(http.StatusOK, s.Registry.List())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getIndicator(c *gin.Context) {
	id := c.Param("id")
	ind, ok := s.Registry.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"id": id, "description": registry.UnknownIndicator})
		return
	}
	c.JSON(http.StatusOK, ind)
}

// -----------------------------------------------------------------------------

// getMetadata asks the origin for builtin series and derives it for custom ones.
func (s *DashboardServer) getMetadata(c *gin.Context) {
	id := c.Param("id")
	ind, ok := s.Registry.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"id": id, "description": registry.UnknownIndicator})
		return
	}

	if ind.Origin == models.OriginCustom {
		series, _ := s.Registry.CustomSeries(id)
		c.JSON(http.StatusOK, customInfo(ind, series))
		return
	}

	info, err := s.Origin.SeriesInfo(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func customInfo(ind models.MIndicator, series *models.MSeries) models.MSeriesInfo {
	info := models.MSeriesInfo{ID: ind.ID, Title: ind.Description, Frequency: models.FrequencyUnknown}
	if series.Len() == 0 {
		return info
	}
	info.Frequency, _ = loader.InferFrequency(series.Dates)
	info.ObservationStart = series.Dates[0].Format(dateLayout)
	info.ObservationEnd = series.Dates[series.Len()-1].Format(dateLayout)
	return info
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) deleteIndicator(c *gin.Context) {
	id := c.Param("id")
	if err := s.Registry.RemoveCustom(id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) search(c *gin.Context) {
	results, err := s.Origin.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "results": results})
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

func (s *DashboardServer) getDashboard(c *gin.Context) {
	query, err := s.queryFromURL(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	payload, err := s.Assembler.Build(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	if maxAge := s.Config.Dashboard.CacheMaxAge; maxAge > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	}
	c.JSON(http.StatusOK, payload)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postDashboard(c *gin.Context) {
	var query models.MDashboardQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		s.fail(c, helpers.NewValidationError("invalid dashboard query: %v", err))
		return
	}

	payload, err := s.Assembler.Build(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// -----------------------------------------------------------------------------

// getChart renders the chart of one indicator, or the combined chart, as PNG.
// The route is /api/chart/<id>.png.
func (s *DashboardServer) getChart(c *gin.Context) {
	file := c.Param("file")
	id := strings.TrimSuffix(file, pngSuffix)
	if id == file || id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "charts are served as <id>.png"})
		return
	}

	query, err := s.queryFromURL(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if id != models.CombinedChartID {
		query.Indicators = map[string]bool{id: true}
	}
	width, err := intQuery(c, "width")
	if err != nil {
		s.fail(c, err)
		return
	}
	height, err := intQuery(c, "height")
	if err != nil {
		s.fail(c, err)
		return
	}

	payload, err := s.Assembler.Build(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}

	spec, ok := payload.Plots[id]
	if id == models.CombinedChartID {
		spec, ok = payload.CombinedPlot, true
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"id": id, "description": registry.UnknownIndicator})
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, spec, width, height); err != nil {
		if errors.Is(err, render.ErrNoData) {
			s.fail(c, helpers.NewEmptySeriesError(id))
			return
		}
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// -----------------------------------------------------------------------------
// Upload
// -----------------------------------------------------------------------------

// upload registers a CSV as a custom indicator. Form fields: file, name
// (defaults to the file name), mode (reject|overwrite) and value_column.
func (s *DashboardServer) upload(c *gin.Context) {
	uploadID := uuid.NewString()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		s.fail(c, helpers.NewValidationError("multipart field file is required: %v", err))
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		base := filepath.Base(header.Filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	mode := c.DefaultPostForm("mode", uploadReject)
	if mode != uploadReject && mode != uploadReplace {
		s.fail(c, helpers.NewValidationError("mode must be %s or %s, got %q", uploadReject, uploadReplace, mode))
		return
	}
	if err := s.Registry.ValidateName(name); err != nil {
		s.fail(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, helpers.NewValidationError("open upload %s: %v", header.Filename, err))
		return
	}
	defer f.Close()

	series, report, err := loader.LoadReader(f, loader.Options{
		Filename:        header.Filename,
		SeriesName:      name,
		ValueColumnName: c.PostForm("value_column"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ind, err := s.Registry.RegisterCustom(name, series, mode == uploadReplace)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.Logger.Info("Upload %s stored %s as %s (%d rows)", uploadID, header.Filename, name, report.TotalRows)
	c.JSON(http.StatusCreated, gin.H{
		"upload_id": uploadID,
		"indicator": ind,
		"report":    report,
	})
}

// -----------------------------------------------------------------------------
// Cache Administration
// -----------------------------------------------------------------------------

func (s *DashboardServer) invalidateSeries(c *gin.Context) {
	id := c.Param("id")
	if err := s.Cache.Invalidate(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": id})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) clearCache(c *gin.Context) {
	if err := s.Cache.Clear(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
