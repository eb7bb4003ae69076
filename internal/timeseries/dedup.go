package timeseries

import (
	"time"

	"oddscli/pkg/contracts/domain"
)

// FindDuplicate returns the committed snapshot that shares date's calendar day, if any.
// Time of day is ignored.
func FindDuplicate(date time.Time, series domain.TimeSeries) (domain.DailySnapshot, bool) {
	// Newest rows are the likeliest match.
	for i := len(series) - 1; i >= 0; i-- {
		if domain.SameDay(series[i].Date, date) {
			return series[i], true
		}
	}
	return domain.DailySnapshot{}, false
}

// IsDuplicate reports whether series already holds a snapshot for date's calendar day.
func IsDuplicate(date time.Time, series domain.TimeSeries) bool {
	_, ok := FindDuplicate(date, series)
	return ok
}
