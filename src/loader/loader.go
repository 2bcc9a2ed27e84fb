package loader

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/models"
)

// Options selects the value column kept from a multi-column source.
// ValueColumnName wins over ValueColumn; when both are unset the first
// column after the date is kept.
type Options struct {
	Filename        string
	ValueColumn     int
	ValueColumnName string
	SeriesName      string
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"NaN":  {},
	"nan":  {},
	".":    {},
	"null": {},
}

// -----------------------------------------------------------------------------

// LoadFile reads a CSV file into a series.
func LoadFile(path string, opts Options) (*models.MSeries, *models.MValidationReport, error) {
	if opts.Filename == "" {
		opts.Filename = path
	}
	if err := checkExtension(opts.Filename); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, helpers.NewValidationError("open %s: %v", path, err)
	}
	defer f.Close()

	return LoadReader(f, opts)
}

// -----------------------------------------------------------------------------

// LoadReader reads CSV content. When opts.Filename is set it must carry a .csv extension.
func LoadReader(r io.Reader, opts Options) (*models.MSeries, *models.MValidationReport, error) {
	if opts.Filename != "" {
		if err := checkExtension(opts.Filename); err != nil {
			return nil, nil, err
		}
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return nil, nil, helpers.NewValidationError("%s is not a readable csv table: %v", displayName(opts), df.Err)
	}
	return LoadFrame(df, opts)
}

// -----------------------------------------------------------------------------

// LoadRecords loads an in-memory table whose first row is the header.
func LoadRecords(records [][]string, opts Options) (*models.MSeries, *models.MValidationReport, error) {
	if len(records) == 0 {
		return nil, nil, helpers.NewValidationError("%s has no header row", displayName(opts))
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return nil, nil, helpers.NewValidationError("%s is not a valid table: %v", displayName(opts), df.Err)
	}
	return LoadFrame(df, opts)
}

// -----------------------------------------------------------------------------

// LoadFrame validates a data frame and converts it into a series plus the load report.
// Column 0 is the date axis.
func LoadFrame(df dataframe.DataFrame, opts Options) (*models.MSeries, *models.MValidationReport, error) {
	if df.Err != nil {
		return nil, nil, helpers.NewValidationError("%s: %v", displayName(opts), df.Err)
	}
	names := df.Names()
	if df.Ncol() < 2 {
		return nil, nil, helpers.NewValidationError("%s needs at least 2 columns, found %d", displayName(opts), df.Ncol())
	}

	valueIdx, err := pickValueColumn(names, opts)
	if err != nil {
		return nil, nil, err
	}

	rawDates := df.Col(names[0]).Records()
	dates := make([]time.Time, len(rawDates))
	for i, raw := range rawDates {
		d, err := parseDate(raw)
		if err != nil {
			return nil, nil, helpers.NewParseError(err, "%s row %d: column %q", displayName(opts), i+1, names[0])
		}
		dates[i] = d
	}

	report := &models.MValidationReport{
		Filename:      displayName(opts),
		TotalRows:     df.Nrow(),
		Columns:       names[1:],
		ValueColumn:   names[valueIdx],
		MissingValues: make(map[string]int, len(names)-1),
	}

	var values []float64
	for idx := 1; idx < len(names); idx++ {
		col, missing, err := parseValues(df.Col(names[idx]).Records())
		if err != nil {
			return nil, nil, helpers.NewParseError(err, "%s: column %q", displayName(opts), names[idx])
		}
		report.MissingValues[names[idx]] = missing
		if idx == valueIdx {
			values = col
		}
	}

	name := opts.SeriesName
	if name == "" {
		name = names[valueIdx]
	}
	series, err := buildSeries(name, dates, values)
	if err != nil {
		return nil, nil, helpers.NewValidationError("%s: %v", displayName(opts), err)
	}

	fillReport(report, series)
	return series, report, nil
}

// -----------------------------------------------------------------------------

func checkExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return helpers.NewValidationError("%s is not a csv file", filepath.Base(name))
	}
	return nil
}

func displayName(opts Options) string {
	if opts.Filename != "" {
		return opts.Filename
	}
	return "table"
}

// -----------------------------------------------------------------------------

func pickValueColumn(names []string, opts Options) (int, error) {
	if opts.ValueColumnName != "" {
		for i := 1; i < len(names); i++ {
			if names[i] == opts.ValueColumnName {
				return i, nil
			}
		}
		return 0, helpers.NewValidationError("value column %q not found in %v", opts.ValueColumnName, names[1:])
	}
	if opts.ValueColumn == 0 {
		return 1, nil
	}
	if opts.ValueColumn < 1 || opts.ValueColumn >= len(names) {
		return 0, helpers.NewValidationError("value column index %d out of range [1,%d]", opts.ValueColumn, len(names)-1)
	}
	return opts.ValueColumn, nil
}

// -----------------------------------------------------------------------------

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// parseValues converts raw cells. Infinities count as missing.
func parseValues(raw []string) ([]float64, int, error) {
	out := make([]float64, len(raw))
	missing := 0
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		if _, ok := missingTokens[cell]; ok {
			out[i] = models.Missing()
			missing++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: unparseable value %q", i+1, cell)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = models.Missing()
			missing++
		}
		out[i] = v
	}
	return out, missing, nil
}

// -----------------------------------------------------------------------------

// buildSeries orders rows by date. Repeated dates are rejected.
func buildSeries(name string, dates []time.Time, values []float64) (*models.MSeries, error) {
	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})

	series := models.NewSeries(name)
	for _, i := range order {
		if n := series.Len(); n > 0 && !series.Dates[n-1].Before(dates[i]) {
			return nil, fmt.Errorf("duplicate date %s", dates[i].Format("2006-01-02"))
		}
		series.Append(dates[i], values[i])
	}
	return series, nil
}

// -----------------------------------------------------------------------------

func fillReport(report *models.MValidationReport, series *models.MSeries) {
	n := series.Len()
	if n == 0 {
		report.Frequency = models.FrequencyUnknown
		return
	}

	report.StartDate = series.Dates[0]
	report.EndDate = series.Dates[n-1]
	report.SpanYears = math.Round(report.EndDate.Sub(report.StartDate).Hours()/24/365.25*100) / 100
	report.Frequency, report.ModalGapDays = InferFrequency(series.Dates)

	for _, v := range series.Values {
		if models.IsMissing(v) {
			continue
		}
		if report.MinValue == nil || v < *report.MinValue {
			low := v
			report.MinValue = &low
		}
		if report.MaxValue == nil || v > *report.MaxValue {
			high := v
			report.MaxValue = &high
		}
	}
}
