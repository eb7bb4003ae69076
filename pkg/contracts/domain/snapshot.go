package domain

import (
	"time"
)

// DateLayout is the calendar date format used for snapshot keys.
const DateLayout = "2006-01-02"

// StateEntry holds one swing state's market figures for a single day.
// PctOfUSMarket is derived from TotalAmount and the national total, never supplied.
type StateEntry struct {
	RepublicanOdds float64 `json:"republican_odds"`
	TotalAmount    float64 `json:"total_amount"`
	PctOfUSMarket  float64 `json:"pct_of_us_market"`
}

// DailySnapshot is one calendar day's full set of market and indicator values.
// It is uniquely keyed by Date; the time-of-day component is always zero (UTC).
type DailySnapshot struct {
	Date             time.Time             `json:"date"`
	USRepublicanOdds float64               `json:"us_republican_odds"`
	USTotalAmount    float64               `json:"us_total_amount"`
	States           map[string]StateEntry `json:"states"`
	Indicators       map[string]float64    `json:"indicators"`
}

// DateKey returns the snapshot date formatted as YYYY-MM-DD.
func (s DailySnapshot) DateKey() string {
	return s.Date.Format(DateLayout)
}

// Clone returns a deep copy so callers can derive fields without touching the input.
func (s DailySnapshot) Clone() DailySnapshot {
	out := s
	out.States = make(map[string]StateEntry, len(s.States))
	for name, entry := range s.States {
		out.States[name] = entry
	}
	out.Indicators = make(map[string]float64, len(s.Indicators))
	for symbol, price := range s.Indicators {
		out.Indicators[symbol] = price
	}
	return out
}

// RawStateEntry is a state's values as scraped or typed by the operator.
type RawStateEntry struct {
	RepublicanOdds string `json:"republican_odds"`
	TotalAmount    string `json:"total_amount"`
}

// RawSnapshot is the candidate record handed to ingestion by the adapters.
// Every value is still text; validation turns it into a DailySnapshot.
type RawSnapshot struct {
	Date             string                   `json:"date"`
	USRepublicanOdds string                   `json:"us_republican_odds"`
	USTotalAmount    string                   `json:"us_total_amount"`
	States           map[string]RawStateEntry `json:"states"`
	Indicators       map[string]string        `json:"indicators"`
}

// TimeSeries is every committed snapshot ordered by date ascending.
type TimeSeries []DailySnapshot

// Last returns the most recent snapshot.
func (ts TimeSeries) Last() (DailySnapshot, bool) {
	if len(ts) == 0 {
		return DailySnapshot{}, false
	}
	return ts[len(ts)-1], true
}

// Tail returns up to n most recent snapshots, oldest first.
func (ts TimeSeries) Tail(n int) TimeSeries {
	if n <= 0 {
		return TimeSeries{}
	}
	if n >= len(ts) {
		return ts
	}
	return ts[len(ts)-n:]
}

// SeriesSummary describes a stored series for listings and the HTTP view.
type SeriesSummary struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	FirstDate string    `json:"first_date,omitempty"`
	LastDate  string    `json:"last_date,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeDate strips the time-of-day and location so dates compare by calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
