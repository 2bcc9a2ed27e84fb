package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"econ-dashboard/src/logger"
)

const defaultMIC = "xnys"

// ReleaseCalendar decides which days statistical releases can land on, using
// an exchange business-day calendar from scmhub/calendar.
type ReleaseCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewReleaseCalendar loads the calendar of an exchange MIC (ISO 10383), falling
// back to xnys and then to a plain Monday-Friday week.
func NewReleaseCalendar(mic string, log *logger.Logger) *ReleaseCalendar {
	if log == nil {
		log = logger.NewNop()
	}
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = defaultMIC
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != defaultMIC {
		log.Warning("Unknown calendar %q, using %s", mic, defaultMIC)
		mic = defaultMIC
		cal = calendar.GetCalendar(mic)
	}

	if cal == nil {
		log.Warning("Failed to load calendar %q. Using Mon-Fri fallback.", mic)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &ReleaseCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &ReleaseCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (rc *ReleaseCalendar) IsBusinessDay(date time.Time) bool {
	if rc.Timezone != nil {
		date = date.In(rc.Timezone)
	}

	if rc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return rc.Calendar.IsBusinessDay(date)
}
