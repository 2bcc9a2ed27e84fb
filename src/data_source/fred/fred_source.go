package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
	"econ-dashboard/src/network"
)

const (
	defaultBaseURL     = "https://api.stlouisfed.org/fred/"
	defaultSearchLimit = 25
	dateLayout         = "2006-01-02"
	missingValue       = "."
)

var ErrNoObservations = errors.New("fred: no observations returned")

// -----------------------------------------------------------------------------

// FredSource fetches series from the FRED web API.
type FredSource struct {
	Config  models.MOriginConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	baseURL string
}

// -----------------------------------------------------------------------------

func NewFredSource(cfg models.MOriginConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *FredSource {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FredSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
		baseURL: strings.TrimRight(base, "/") + "/",
	}
}

// -----------------------------------------------------------------------------

func (s *FredSource) Name() string {
	if s.Config.Name != "" {
		return s.Config.Name
	}
	return "fred"
}

// -----------------------------------------------------------------------------

// FetchSeries downloads every observation of a series.
func (s *FredSource) FetchSeries(ctx context.Context, seriesID string) (*models.MSeries, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, helpers.NewValidationError("series id is required")
	}

	var resp observationsResponse
	if err := s.getJSON(ctx, "series/observations", map[string]string{"series_id": seriesID}, &resp); err != nil {
		return nil, helpers.NewFetchError(err, "fetch series %s from %s", seriesID, s.Name())
	}

	series, err := parseObservations(seriesID, resp.Observations)
	if err != nil {
		return nil, helpers.NewFetchError(err, "parse series %s", seriesID)
	}
	s.Logger.Debug("Fetched %s: %d observations", seriesID, series.Len())
	return series, nil
}

// -----------------------------------------------------------------------------

// Search returns the series whose metadata match text.
func (s *FredSource) Search(ctx context.Context, text string) ([]models.MSeriesInfo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, helpers.NewValidationError("search text is required")
	}

	var resp seriesResponse
	params := map[string]string{
		"search_text": text,
		"limit":       strconv.Itoa(defaultSearchLimit),
	}
	if err := s.getJSON(ctx, "series/search", params, &resp); err != nil {
		return nil, helpers.NewFetchError(err, "search %q", text)
	}

	results := make([]models.MSeriesInfo, 0, len(resp.Series))
	for _, item := range resp.Series {
		results = append(results, item.toModel())
	}
	return results, nil
}

// -----------------------------------------------------------------------------

// SeriesInfo returns the metadata for one series.
func (s *FredSource) SeriesInfo(ctx context.Context, seriesID string) (*models.MSeriesInfo, error) {
	var resp seriesResponse
	if err := s.getJSON(ctx, "series", map[string]string{"series_id": seriesID}, &resp); err != nil {
		return nil, helpers.NewFetchError(err, "metadata for %s", seriesID)
	}
	if len(resp.Series) == 0 {
		return nil, helpers.NewFetchError(nil, "series %s unknown to %s", seriesID, s.Name())
	}
	info := resp.Series[0].toModel()
	return &info, nil
}

// -----------------------------------------------------------------------------

func (s *FredSource) getJSON(ctx context.Context, path string, params map[string]string, dest any) error {
	if s.Config.APIKey == "" {
		return errors.New("fred: api key not configured (set FRED_API_KEY)")
	}
	query := map[string]string{
		"api_key":   s.Config.APIKey,
		"file_type": "json",
	}
	for k, v := range params {
		query[k] = v
	}

	body, err := s.Network.Get(ctx, s.baseURL+path, query)
	if err != nil {
		var statusErr *network.StatusError
		if errors.As(err, &statusErr) {
			var apiErr errorResponse
			if json.Unmarshal([]byte(statusErr.Body), &apiErr) == nil && apiErr.Message != "" {
				return fmt.Errorf("fred: %s (code %d)", apiErr.Message, apiErr.Code)
			}
		}
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type seriesResponse struct {
	Series []seriesItem `json:"seriess"`
}

type seriesItem struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Frequency          string `json:"frequency"`
	Units              string `json:"units"`
	Notes              string `json:"notes"`
	ObservationStart   string `json:"observation_start"`
	ObservationEnd     string `json:"observation_end"`
	LastUpdated        string `json:"last_updated"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
	Popularity         int    `json:"popularity"`
}

type errorResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (item seriesItem) toModel() models.MSeriesInfo {
	return models.MSeriesInfo{
		ID:                item.ID,
		Title:             item.Title,
		Frequency:         item.Frequency,
		Units:             item.Units,
		Notes:             item.Notes,
		ObservationStart:  item.ObservationStart,
		ObservationEnd:    item.ObservationEnd,
		LastUpdated:       item.LastUpdated,
		SeasonalAdjusted:  item.SeasonalAdjustment,
		PopularityRanking: item.Popularity,
	}
}

// -----------------------------------------------------------------------------

// parseObservations converts raw observations into a strictly increasing series.
// "." and non-finite values become missing; a repeated date keeps the last value.
func parseObservations(seriesID string, raw []observation) (*models.MSeries, error) {
	if len(raw) == 0 {
		return nil, ErrNoObservations
	}

	type point struct {
		date  time.Time
		value float64
	}
	points := make([]point, 0, len(raw))
	for _, obs := range raw {
		date, err := time.Parse(dateLayout, strings.TrimSpace(obs.Date))
		if err != nil {
			return nil, fmt.Errorf("invalid observation date %q: %w", obs.Date, err)
		}
		points = append(points, point{date: date, value: parseValue(obs.Value)})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].date.Before(points[j].date)
	})

	series := models.NewSeries(seriesID)
	for _, p := range points {
		if n := series.Len(); n > 0 && series.Dates[n-1].Equal(p.date) {
			series.Values[n-1] = p.value
			continue
		}
		series.Append(p.date, p.value)
	}
	return series, nil
}

func parseValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == missingValue {
		return models.Missing()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return models.Missing()
	}
	return v
}
