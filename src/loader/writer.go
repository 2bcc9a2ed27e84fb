package loader

import (
	"io"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	gseries "github.com/go-gota/gota/series"

	"econ-dashboard/src/models"
)

// WriteCSV stores a series as date,value rows with the series name as header.
// Values use the shortest exact representation so a reload reproduces them.
func WriteCSV(w io.Writer, series *models.MSeries) error {
	dates := make([]string, series.Len())
	values := make([]string, series.Len())
	for i := range series.Values {
		dates[i] = formatDate(series.Dates[i])
		if models.IsMissing(series.Values[i]) {
			values[i] = "NaN"
			continue
		}
		values[i] = strconv.FormatFloat(series.Values[i], 'g', -1, 64)
	}

	df := dataframe.New(
		gseries.New(dates, gseries.String, "date"),
		gseries.New(values, gseries.String, series.Name),
	)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
