package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailySnapshot_Clone(t *testing.T) {
	orig := DailySnapshot{
		Date:       time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		States:     map[string]StateEntry{"Georgia": {RepublicanOdds: 60, TotalAmount: 10}},
		Indicators: map[string]float64{"^GSPC": 5700},
	}

	clone := orig.Clone()
	clone.States["Georgia"] = StateEntry{RepublicanOdds: 1}
	clone.Indicators["^GSPC"] = 1

	assert.Equal(t, 60.0, orig.States["Georgia"].RepublicanOdds)
	assert.Equal(t, 5700.0, orig.Indicators["^GSPC"])
	assert.Equal(t, "2024-10-01", orig.DateKey())
}

func TestTimeSeries_TailAndLast(t *testing.T) {
	day := func(d int) DailySnapshot {
		return DailySnapshot{Date: time.Date(2024, 10, d, 0, 0, 0, 0, time.UTC)}
	}
	ts := TimeSeries{day(1), day(2), day(3)}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "zero", n: 0, want: 0},
		{name: "negative", n: -2, want: 0},
		{name: "fewer than stored", n: 2, want: 2},
		{name: "more than stored", n: 10, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ts.Tail(tt.n), tt.want)
		})
	}

	assert.Equal(t, "2024-10-03", ts.Tail(1)[0].DateKey())

	last, ok := ts.Last()
	assert.True(t, ok)
	assert.Equal(t, "2024-10-03", last.DateKey())

	_, ok = TimeSeries{}.Last()
	assert.False(t, ok)
}

func TestNormalizeDateAndSameDay(t *testing.T) {
	loc := time.FixedZone("EDT", -4*3600)
	late := time.Date(2024, 11, 5, 22, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), NormalizeDate(late))
	assert.True(t, SameDay(late, time.Date(2024, 11, 5, 1, 0, 0, 0, loc)))
	assert.False(t, SameDay(late, time.Date(2024, 11, 6, 0, 0, 0, 0, loc)))
}
