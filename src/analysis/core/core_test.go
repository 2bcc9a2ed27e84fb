package core

import (
	"math"
	"testing"
	"time"

	"econ-dashboard/src/models"
)

func monthly(values ...float64) *models.MSeries {
	s := models.NewSeries("test")
	for i, v := range values {
		s.Append(time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), v)
	}
	return s
}

func date(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func TestFilterByDateIsRestriction(t *testing.T) {
	s := monthly(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	ranges := [][2]time.Time{
		{date(2020, 3, 1), date(2020, 6, 1)},
		{date(2020, 2, 15), date(2020, 2, 20)},
		{date(2019, 1, 1), date(2030, 1, 1)},
		{date(2020, 12, 1), date(2020, 12, 1)},
		{{}, date(2020, 4, 1)},
		{date(2020, 10, 1), {}},
	}

	for _, r := range ranges {
		got := FilterByDate(s, r[0], r[1])
		j := 0
		for i, d := range got.Dates {
			if (!r[0].IsZero() && d.Before(r[0])) || (!r[1].IsZero() && d.After(r[1])) {
				t.Errorf("range %v: date %s outside bounds", r, d)
			}
			for j < s.Len() && !s.Dates[j].Equal(d) {
				j++
			}
			if j == s.Len() || s.Values[j] != got.Values[i] {
				t.Fatalf("range %v: result is not an ordered subsequence", r)
			}
		}
	}

	if n := FilterByDate(s, date(2020, 3, 1), date(2020, 6, 1)).Len(); n != 4 {
		t.Errorf("inclusive bounds: expected 4 rows, got %d", n)
	}
	if empty := FilterByDate(s, date(2021, 1, 1), date(2021, 12, 1)); empty == nil || empty.Len() != 0 {
		t.Errorf("expected empty series, got %v", empty)
	}
	if FilterByDate(nil, date(2020, 1, 1), date(2020, 2, 1)) != nil {
		t.Error("nil input should pass through")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(monthly(10, models.Missing(), 20, 15))
	want := []float64{0, 100, 50}
	if got.Len() != 3 {
		t.Fatalf("missing values should be dropped, got %d rows", got.Len())
	}
	for i, w := range want {
		if got.Values[i] != w {
			t.Errorf("value %d: got %v want %v", i, got.Values[i], w)
		}
	}
	if !got.Dates[1].Equal(date(2020, 3, 1)) {
		t.Errorf("dates must stay aligned with values, got %s", got.Dates[1])
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	constant := monthly(7, 7, 7)
	once := Normalize(constant)
	twice := Normalize(once)
	for i := range constant.Values {
		if once.Values[i] != 7 || twice.Values[i] != 7 || math.IsNaN(once.Values[i]) {
			t.Fatalf("constant series must be returned unchanged, got %v / %v", once.Values, twice.Values)
		}
	}

	empty := Normalize(monthly(models.Missing(), models.Missing()))
	if empty.Len() != 0 {
		t.Errorf("all-missing series should normalize to empty, got %d", empty.Len())
	}
	if Normalize(models.NewSeries("x")).Len() != 0 {
		t.Error("empty series should stay empty")
	}
}

func TestSmooth(t *testing.T) {
	s := monthly(1, 2, 3, 4, 5, 6)
	got := Smooth(s, 5)
	want := []float64{2, 2.5, 3, 4, 4.5, 5}
	for i, w := range want {
		if math.Abs(got.Values[i]-w) > 1e-12 {
			t.Errorf("window 5 value %d: got %v want %v", i, got.Values[i], w)
		}
	}
	if got.Len() != s.Len() {
		t.Errorf("smoothing must not drop rows")
	}

	even := Smooth(s, 4)
	// window covers i-2..i+1
	if even.Values[0] != 1.5 || even.Values[5] != 5 {
		t.Errorf("window 4 edges: got %v", even.Values)
	}

	gappy := Smooth(monthly(1, models.Missing(), 3), 3)
	if gappy.Values[1] != 2 {
		t.Errorf("missing values should be skipped, got %v", gappy.Values)
	}
	if same := Smooth(s, 1); !same.Equal(s) || same == s {
		t.Error("window 1 should return an equal copy")
	}
}

func TestTransformsDoNotMutate(t *testing.T) {
	s := monthly(5, 1, 9)
	before := s.Copy()
	Normalize(s)
	Smooth(s, 3)
	FilterByDate(s, date(2020, 2, 1), date(2020, 2, 1))
	if !s.Equal(before) {
		t.Errorf("input modified: %v", s.Values)
	}
}

func TestMeanStdAndMinMax(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || std != 2 {
		t.Errorf("got mean=%v std=%v", mean, std)
	}
	if _, _, ok := MinMax(nil); ok {
		t.Error("MinMax of empty input should not be ok")
	}
	if got := FiniteValues([]float64{1, models.Missing(), math.Inf(1), 2}); len(got) != 2 {
		t.Errorf("FiniteValues = %v", got)
	}
}
