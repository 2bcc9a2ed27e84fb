package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"econ-dashboard/src/cache"
	"econ-dashboard/src/config"
	"econ-dashboard/src/helpers"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
	"econ-dashboard/src/registry"
)

const testConfig = `
name: test
host: 127.0.0.1
port: 8080
storage:
  db_path: unused.db
network:
  timeout: 5
origin:
  base_url: http://localhost/fred/
`

type stubOrigin struct {
	mu      sync.Mutex
	failing map[string]bool
}

func (o *stubOrigin) Name() string { return "stub" }

func (o *stubOrigin) FetchSeries(_ context.Context, id string) (*models.MSeries, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failing[id] {
		return nil, errors.New("connection refused")
	}
	s := models.NewSeries(id)
	for m := 0; m < 24; m++ {
		s.Append(time.Date(2022, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC), float64(10+m))
	}
	return s, nil
}

func (o *stubOrigin) Search(context.Context, string) ([]models.MSeriesInfo, error) { return nil, nil }

func (o *stubOrigin) SeriesInfo(context.Context, string) (*models.MSeriesInfo, error) {
	return nil, nil
}

func newAssembler(t *testing.T, failing ...string) (*Assembler, *registry.Registry) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	origin := &stubOrigin{failing: map[string]bool{}}
	for _, id := range failing {
		origin.failing[id] = true
	}
	reg, err := registry.NewRegistry(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	c := cache.NewSeriesCache(origin, nil, 24*time.Hour, 4, logger.NewNop())

	a := NewAssembler(cfg.MConfig, c, reg, logger.NewNop())
	a.SetClock(func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) })
	return a, reg
}

func selectIDs(ids ...string) map[string]bool {
	out := map[string]bool{}
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func TestBuildIsolatesOneFailure(t *testing.T) {
	a, _ := newAssembler(t, "GDPC1")
	query := models.MDashboardQuery{Indicators: selectIDs("CPIAUCSL", "PSAVERT", "PCEC", "GDPC1", "UNRATE")}

	payload, err := a.Build(context.Background(), query)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(payload.Plots) != 4 || len(payload.Tables) != 4 || len(payload.CombinedPlot.Traces) != 4 {
		t.Fatalf("expected 4 indicators, got plots=%d tables=%d combined=%d",
			len(payload.Plots), len(payload.Tables), len(payload.CombinedPlot.Traces))
	}
	if _, ok := payload.Plots["GDPC1"]; ok {
		t.Error("failed indicator should have no chart")
	}
	if len(payload.Unavailable) != 1 || payload.Unavailable[0] != "GDPC1" {
		t.Errorf("unexpected unavailable list %v", payload.Unavailable)
	}
}

func TestBuildOmitsDeselected(t *testing.T) {
	a, _ := newAssembler(t)
	query := models.MDashboardQuery{
		DateRange:  models.MDateRange{Start: "2023-01-01", End: "2023-12-31"},
		Indicators: map[string]bool{"CPIAUCSL": true, "PSAVERT": false},
	}

	payload, err := a.Build(context.Background(), query)
	if err != nil {
		t.Fatal(err)
	}
	for _, group := range []int{len(payload.Plots), len(payload.Tables), len(payload.CombinedPlot.Traces)} {
		if group != 1 {
			t.Fatalf("deselected indicator leaked into payload: %+v", payload)
		}
	}
	if _, ok := payload.Tables["PSAVERT"]; ok {
		t.Error("PSAVERT table present")
	}

	plot := payload.Plots["CPIAUCSL"]
	if len(plot.Traces[0].X) != 12 || plot.Traces[0].X[0] != "2023-01-01" {
		t.Errorf("date window not applied: %v", plot.Traces[0].X)
	}
	if plot.Traces[0].Color != "blue" || plot.Layout.Title != "Consumer Price Index (CPI)" || plot.Layout.Height != 400 {
		t.Errorf("unexpected chart styling %+v", plot)
	}

	combined := payload.CombinedPlot
	if combined.Layout.YAxisTitle != "Normalized Scale (0-100)" || combined.Layout.Height != 500 {
		t.Errorf("unexpected combined layout %+v", combined.Layout)
	}
	last := combined.Traces[0].Y[len(combined.Traces[0].Y)-1]
	if combined.Traces[0].Name != "CPI" || *combined.Traces[0].Y[0] != 0 || *last != 100 {
		t.Errorf("combined trace not normalized: %+v", combined.Traces[0])
	}
}

func TestBuildAllUnavailableFails(t *testing.T) {
	a, _ := newAssembler(t, "CPIAUCSL", "PSAVERT")
	_, err := a.Build(context.Background(), models.MDashboardQuery{Indicators: selectIDs("CPIAUCSL", "PSAVERT")})
	if !errors.Is(err, helpers.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestBuildServesCustomFromRegistry(t *testing.T) {
	a, reg := newAssembler(t)
	s := models.NewSeries("custom1")
	s.Append(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	s.Append(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), 2)
	s.Append(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), 3)
	if _, err := reg.RegisterCustom("custom1", s, false); err != nil {
		t.Fatal(err)
	}

	payload, err := a.Build(context.Background(), models.MDashboardQuery{Indicators: selectIDs("custom1")})
	if err != nil {
		t.Fatal(err)
	}
	rows := payload.Tables["custom1"]
	if len(rows) != 6 || rows[0].Value != "3.00" {
		t.Errorf("unexpected custom table %+v", rows)
	}
}

func TestBuildValidatesQuery(t *testing.T) {
	a, _ := newAssembler(t)
	bad := []models.MDashboardQuery{
		{Theme: "neon"},
		{Smoothing: -2},
		{DateRange: models.MDateRange{Start: "2024-01-01", End: "2020-01-01"}},
	}
	for _, q := range bad {
		if _, err := a.Build(context.Background(), q); !errors.Is(err, helpers.ErrValidation) {
			t.Errorf("query %+v: expected validation error, got %v", q, err)
		}
	}
}

func TestColorFor(t *testing.T) {
	theme := models.MThemeConfig{Palette: []string{"#111", "#222", "#333"}, Colors: map[string]string{"A": "red"}, DefaultColor: "gray"}
	if ColorFor(theme, "A") != "red" {
		t.Error("explicit colour ignored")
	}
	first := ColorFor(theme, "UNRATE")
	for i := 0; i < 5; i++ {
		if ColorFor(theme, "UNRATE") != first {
			t.Fatal("palette colour must be deterministic")
		}
	}
	if ColorFor(models.MThemeConfig{DefaultColor: "gray"}, "X") != "gray" {
		t.Error("default colour not used")
	}
	if ColorFor(models.MThemeConfig{}, "X") != "black" {
		t.Error("fallback colour not used")
	}
}
