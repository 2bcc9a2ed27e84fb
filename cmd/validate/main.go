package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"econ-dashboard/src/analysis"
	"econ-dashboard/src/loader"
	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// validate prints the load report of every CSV given on the command line and
// exits non-zero when any of them is rejected.
func main() {
	column := flag.String("column", "", "value column name (default: first column after the date)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: validate [-column name] file.csv...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		_, report, err := loader.LoadFile(path, loader.Options{ValueColumnName: *column})
		if err != nil {
			failed++
			fmt.Printf("%s: REJECTED: %v\n\n", path, err)
			continue
		}
		printReport(os.Stdout, report)
	}

	if failed > 0 {
		fmt.Printf("%d of %d files rejected\n", failed, flag.NArg())
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func printReport(w io.Writer, r *models.MValidationReport) {
	fmt.Fprintf(w, "%s\n", r.Filename)
	fmt.Fprintf(w, "  rows:        %d\n", r.TotalRows)
	fmt.Fprintf(w, "  columns:     %s (value: %s)\n", strings.Join(r.Columns, ", "), r.ValueColumn)
	fmt.Fprintf(w, "  date range:  %s to %s (%.2f years)\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.SpanYears)
	fmt.Fprintf(w, "  frequency:   %s (modal gap %d days)\n", r.Frequency, r.ModalGapDays)
	fmt.Fprintf(w, "  value range: %s to %s\n", formatBound(r.MinValue), formatBound(r.MaxValue))

	cols := make([]string, 0, len(r.MissingValues))
	for col := range r.MissingValues {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if n := r.MissingValues[col]; n > 0 {
			fmt.Fprintf(w, "  missing:     %s=%d\n", col, n)
		}
	}
	fmt.Fprintln(w)
}

func formatBound(v *float64) string {
	if v == nil {
		return analysis.NotAvailable
	}
	return analysis.FormatValue(*v)
}
