package loader

import (
	"time"

	"econ-dashboard/src/models"
)

// InferFrequency classifies the modal gap in days between consecutive dates.
// Ties resolve to the shorter gap.
func InferFrequency(dates []time.Time) (string, int) {
	if len(dates) < 2 {
		return models.FrequencyUnknown, 0
	}

	counts := make(map[int]int)
	for i := 1; i < len(dates); i++ {
		gap := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		counts[gap]++
	}

	mode, best := 0, 0
	for gap, c := range counts {
		if c > best || (c == best && gap < mode) {
			mode, best = gap, c
		}
	}

	switch {
	case mode >= 28 && mode <= 31:
		return models.FrequencyMonthly, mode
	case mode >= 88 && mode <= 92:
		return models.FrequencyQuarterly, mode
	default:
		return models.FrequencyUnknown, mode
	}
}
