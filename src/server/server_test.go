package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"econ-dashboard/src/cache"
	"econ-dashboard/src/config"
	"econ-dashboard/src/dashboard"
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

const customCSV = "date,value\n2023-01-01,1\n2023-02-01,2\n2023-03-01,3\n"

func init() {
	gin.SetMode(gin.TestMode)
}

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

func (o *stubOrigin) Search(_ context.Context, text string) ([]models.MSeriesInfo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, helpers.NewValidationError("search text is empty")
	}
	return []models.MSeriesInfo{{ID: "CPIAUCSL", Title: "Consumer Price Index"}}, nil
}

func (o *stubOrigin) SeriesInfo(_ context.Context, id string) (*models.MSeriesInfo, error) {
	return &models.MSeriesInfo{ID: id, Title: "stub " + id, Frequency: "Monthly"}, nil
}

func newTestServer(t *testing.T, failing ...string) (*DashboardServer, *registry.Registry) {
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
	seriesCache := cache.NewSeriesCache(origin, nil, 24*time.Hour, 4, logger.NewNop())
	assembler := dashboard.NewAssembler(cfg.MConfig, seriesCache, reg, logger.NewNop())
	assembler.SetClock(func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) })

	s := NewDashboardServer(cfg.MConfig, assembler, reg, seriesCache, origin, logger.NewNop())
	reg.SetBroadcaster(s)
	seriesCache.SetBroadcaster(s)
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s, reg
}

func do(t *testing.T, s *DashboardServer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, name, mode, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	if name != "" {
		w.WriteField("name", name)
	}
	if mode != "" {
		w.WriteField("mode", mode)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %s", rec.Body.String())
	}
	return body.Kind
}

// -----------------------------------------------------------------------------

func TestHealthAndCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/indicators", nil))
	var list []models.MIndicator
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 13 || list[0].ID != "CPIAUCSL" {
		t.Fatalf("unexpected catalog %v", list)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/indicators/NOPE", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), registry.UnknownIndicator) {
		t.Errorf("unknown indicator: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/indicators/UNRATE/metadata", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "stub UNRATE") {
		t.Errorf("metadata: %d %s", rec.Code, rec.Body.String())
	}
}

func TestSearch(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/search?q=price", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "CPIAUCSL") {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	if rec.Code != http.StatusBadRequest || errorKind(t, rec) != string(helpers.KindValidation) {
		t.Errorf("empty search: %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, uploadRequest(t, "custom1.csv", "", "", customCSV))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		UploadID  string                   `json:"upload_id"`
		Indicator models.MIndicator        `json:"indicator"`
		Report    models.MValidationReport `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.UploadID == "" || created.Indicator.ID != "custom1" || created.Report.TotalRows != 3 {
		t.Errorf("unexpected upload response %+v", created)
	}
	if created.Report.Frequency != models.FrequencyMonthly {
		t.Errorf("frequency = %s", created.Report.Frequency)
	}

	rec = do(t, s, uploadRequest(t, "custom1.csv", "", uploadReject, customCSV))
	if rec.Code != http.StatusConflict || errorKind(t, rec) != string(helpers.KindDuplicateName) {
		t.Errorf("duplicate upload: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, uploadRequest(t, "custom1.csv", "", uploadReplace, "date,value\n2023-01-01,7\n"))
	if rec.Code != http.StatusCreated {
		t.Errorf("overwrite upload: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/indicators/custom1/metadata", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"observation_start":"2023-01-01"`) {
		t.Errorf("custom metadata: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/indicators/custom1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/indicators/custom1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("removed indicator still served: %d", rec.Code)
	}
}

func TestUploadRejections(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		req      *http.Request
		status   int
		wantKind helpers.ErrorKind
	}{
		{"builtin name", uploadRequest(t, "x.csv", "CPIAUCSL", "", customCSV), http.StatusConflict, helpers.KindDuplicateName},
		{"reserved name", uploadRequest(t, "combined.csv", "", "", customCSV), http.StatusBadRequest, helpers.KindValidation},
		{"not csv", uploadRequest(t, "data.txt", "data", "", customCSV), http.StatusBadRequest, helpers.KindValidation},
		{"bad mode", uploadRequest(t, "data.csv", "", "append", customCSV), http.StatusBadRequest, helpers.KindValidation},
		{"bad value", uploadRequest(t, "data.csv", "", "", "date,value\n2023-01-01,abc\n"), http.StatusBadRequest, helpers.KindParse},
		{"one column", uploadRequest(t, "data.csv", "", "", "date\n2023-01-01\n"), http.StatusBadRequest, helpers.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.req)
			if rec.Code != tt.status || errorKind(t, rec) != string(tt.wantKind) {
				t.Errorf("got %d %s", rec.Code, rec.Body.String())
			}
		})
	}

	rec := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/indicators/UNRATE", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("removing a builtin: %d", rec.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	s, _ := newTestServer(t, "GDPC1")

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard?indicators=CPIAUCSL,GDPC1&start=2023-01-01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET dashboard: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", got)
	}
	var payload models.MDashboardPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Plots) != 1 || len(payload.Unavailable) != 1 || payload.Unavailable[0] != "GDPC1" {
		t.Errorf("unexpected payload plots=%d unavailable=%v", len(payload.Plots), payload.Unavailable)
	}
	if n := len(payload.Plots["CPIAUCSL"].Traces[0].X); n != 12 {
		t.Errorf("expected 12 points in 2023, got %d", n)
	}

	body := `{"dateRange":{"start":"2023-01-01","end":"2023-06-30"},"indicators":{"UNRATE":true},"smoothing":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, s, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"UNRATE"`) {
		t.Errorf("POST dashboard: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/dashboard", strings.NewReader(`{"theme":"neon"}`))
	rec = do(t, s, req)
	if rec.Code != http.StatusBadRequest || errorKind(t, rec) != string(helpers.KindValidation) {
		t.Errorf("unknown theme: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard?indicators=GDPC1", nil))
	if rec.Code != http.StatusBadGateway || errorKind(t, rec) != string(helpers.KindFetch) {
		t.Errorf("all unavailable: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard?smoothing=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad smoothing: %d", rec.Code)
	}
}

func TestChartPNG(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/chart/CPIAUCSL.png?width=400&height=300", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("chart: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "image/png" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("response is not a PNG")
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/chart/CPIAUCSL", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("chart without suffix: %d", rec.Code)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/chart/CPIAUCSL.png?start=1990-01-01&end=1990-12-31", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty window chart: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCacheAdministration(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard?indicators=UNRATE", nil))
	if s.Cache.MemoryStats().Entries != 1 {
		t.Fatalf("expected one cached series, got %+v", s.Cache.MemoryStats())
	}

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/cache/invalidate/UNRATE", nil))
	if rec.Code != http.StatusOK || s.Cache.MemoryStats().Entries != 0 {
		t.Errorf("invalidate: %d entries=%d", rec.Code, s.Cache.MemoryStats().Entries)
	}

	do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard?indicators=UNRATE,PCEC", nil))
	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	if rec.Code != http.StatusOK || s.Cache.MemoryStats().Entries != 0 {
		t.Errorf("clear: %d entries=%d", rec.Code, s.Cache.MemoryStats().Entries)
	}
}

// -----------------------------------------------------------------------------

func readEvent(t *testing.T, conn *websocket.Conn) models.MEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event models.MEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}

func TestWebSocketEvents(t *testing.T) {
	s, reg := newTestServer(t)
	go s.runHub()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if ev := readEvent(t, conn); ev.Type != models.EventConnected {
		t.Fatalf("first event = %+v", ev)
	}

	if err := conn.WriteJSON(models.MClientCommand{Command: "subscribe", Indicators: []string{"custom1"}}); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != models.EventSubscribed {
		t.Fatalf("expected subscribed, got %+v", ev)
	}

	series := models.NewSeries("v")
	series.Append(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	if _, err := reg.RegisterCustom("other", series, false); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.RegisterCustom("custom1", series, false); err != nil {
		t.Fatal(err)
	}

	ev := readEvent(t, conn)
	if ev.Type != models.EventIndicatorAdded || ev.SeriesID != "custom1" {
		t.Errorf("expected indicator_added for custom1, got %+v", ev)
	}

	if err := conn.WriteJSON(models.MClientCommand{Command: "ping"}); err != nil {
		t.Fatal(err)
	}
	if ev := readEvent(t, conn); ev.Type != models.EventPong {
		t.Errorf("expected pong, got %+v", ev)
	}

	if s.Connections() != 1 {
		t.Errorf("connections = %d", s.Connections())
	}
}

func TestBroadcastWithoutHubDoesNotBlock(t *testing.T) {
	s, _ := newTestServer(t)
	for i := 0; i < cap(s.broadcast)+10; i++ {
		s.Broadcast(models.MEvent{Type: models.EventCacheInvalidated})
	}
}
