package validation

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// validRaw returns a candidate whose state amounts sum to 700,000 of a 1,000,000 national total.
func validRaw() domain.RawSnapshot {
	raw := domain.RawSnapshot{
		Date:             "2024-09-02",
		USRepublicanOdds: "52.5%",
		USTotalAmount:    "$1,000,000",
		States:           make(map[string]domain.RawStateEntry),
		Indicators: map[string]string{
			"SPX":     "5,648.40",
			"IWM":     "220.12",
			"BTCUSDT": "59123.5",
		},
	}
	for _, state := range schema.States {
		raw.States[state] = domain.RawStateEntry{RepublicanOdds: "48.0", TotalAmount: "100,000"}
	}
	return raw
}

func TestValidate_Success(t *testing.T) {
	v := NewRecordValidator(quietLogger(), DefaultSumTolerance)

	snap, verr := v.Validate(validRaw())
	require.Nil(t, verr)
	require.NotNil(t, snap)

	assert.True(t, snap.Date.Equal(time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 52.5, snap.USRepublicanOdds)
	assert.Equal(t, 1_000_000.0, snap.USTotalAmount)
	assert.Len(t, snap.States, len(schema.States))
	assert.Equal(t, 100_000.0, snap.States["North Carolina"].TotalAmount)
	assert.Zero(t, snap.States["North Carolina"].PctOfUSMarket)
	assert.Equal(t, 5648.40, snap.Indicators["SPX"])
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *domain.RawSnapshot)
		wantField string
		wantRule  Rule
	}{
		{
			name:      "missing date",
			mutate:    func(r *domain.RawSnapshot) { r.Date = "" },
			wantField: "date",
			wantRule:  RuleRequired,
		},
		{
			name:      "missing state block",
			mutate:    func(r *domain.RawSnapshot) { delete(r.States, "Georgia") },
			wantField: "georgia_republican_odds",
			wantRule:  RuleRequired,
		},
		{
			name:      "missing indicator",
			mutate:    func(r *domain.RawSnapshot) { delete(r.Indicators, "IWM") },
			wantField: "iwm_price",
			wantRule:  RuleRequired,
		},
		{
			name: "unknown state",
			mutate: func(r *domain.RawSnapshot) {
				r.States["Ohio"] = domain.RawStateEntry{RepublicanOdds: "1", TotalAmount: "1"}
			},
			wantField: "state Ohio",
			wantRule:  RuleUnknown,
		},
		{
			name:      "malformed date",
			mutate:    func(r *domain.RawSnapshot) { r.Date = "09/02/2024" },
			wantField: "date",
			wantRule:  RuleDate,
		},
		{
			name: "non numeric odds",
			mutate: func(r *domain.RawSnapshot) {
				r.States["Nevada"] = domain.RawStateEntry{RepublicanOdds: "abc", TotalAmount: "100"}
			},
			wantField: "nevada_republican_odds",
			wantRule:  RuleNumeric,
		},
		{
			name:      "odds above 100",
			mutate:    func(r *domain.RawSnapshot) { r.USRepublicanOdds = "100.5" },
			wantField: "us_republican_odds",
			wantRule:  RuleRange,
		},
		{
			name:      "negative indicator",
			mutate:    func(r *domain.RawSnapshot) { r.Indicators["BTCUSDT"] = "-1" },
			wantField: "btcusdt_price",
			wantRule:  RuleRange,
		},
		{
			name: "negative amount",
			mutate: func(r *domain.RawSnapshot) {
				r.States["Arizona"] = domain.RawStateEntry{RepublicanOdds: "50", TotalAmount: "-10"}
			},
			wantField: "arizona_total_amount",
			wantRule:  RuleNonNegative,
		},
		{
			name:      "date far in the future",
			mutate:    func(r *domain.RawSnapshot) { r.Date = "2300-01-01" },
			wantField: "date",
			wantRule:  RuleDateRange,
		},
		{
			name:      "date before epoch",
			mutate:    func(r *domain.RawSnapshot) { r.Date = "1969-12-31" },
			wantField: "date",
			wantRule:  RuleDateRange,
		},
		{
			name: "single state above national total",
			mutate: func(r *domain.RawSnapshot) {
				for _, state := range schema.States {
					r.States[state] = domain.RawStateEntry{RepublicanOdds: "50", TotalAmount: "0"}
				}
				r.States["Pennsylvania"] = domain.RawStateEntry{RepublicanOdds: "50", TotalAmount: "1,005,000"}
			},
			wantField: "pennsylvania_total_amount",
			wantRule:  RuleStateShare,
		},
		{
			name:      "states exceed national total",
			mutate:    func(r *domain.RawSnapshot) { r.USTotalAmount = "600,000" },
			wantField: "us_total_amount",
			wantRule:  RuleSumOfStates,
		},
	}

	v := NewRecordValidator(quietLogger(), DefaultSumTolerance)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			snap, verr := v.Validate(raw)
			assert.Nil(t, snap)
			require.NotNil(t, verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantRule, verr.Rule)
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestValidate_DateWindow(t *testing.T) {
	v := NewRecordValidator(quietLogger(), DefaultSumTolerance)
	v.now = func() time.Time { return time.Date(2024, 9, 2, 22, 0, 0, 0, time.UTC) }

	tests := []struct {
		date   string
		wantOK bool
	}{
		{date: "1970-01-01", wantOK: true},
		{date: "2024-09-02", wantOK: true},
		{date: "2024-09-03", wantOK: true},
		{date: "2024-09-04", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			raw := validRaw()
			raw.Date = tt.date
			_, verr := v.Validate(raw)
			if tt.wantOK {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, RuleDateRange, verr.Rule)
		})
	}
}

func TestValidate_SumTolerance(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		usTotal   string
		wantOK    bool
	}{
		// states sum to 700,000
		{name: "exact sum", tolerance: DefaultSumTolerance, usTotal: "700000", wantOK: true},
		{name: "within one percent", tolerance: DefaultSumTolerance, usTotal: "693500", wantOK: true},
		{name: "beyond one percent", tolerance: DefaultSumTolerance, usTotal: "690000", wantOK: false},
		{name: "wider tolerance", tolerance: 0.05, usTotal: "690000", wantOK: true},
		{name: "zero tolerance", tolerance: 0, usTotal: "699999", wantOK: false},
		{name: "negative tolerance uses default", tolerance: -1, usTotal: "693500", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRecordValidator(quietLogger(), tt.tolerance)
			raw := validRaw()
			raw.USTotalAmount = tt.usTotal

			_, verr := v.Validate(raw)
			if tt.wantOK {
				assert.Nil(t, verr)
			} else {
				require.NotNil(t, verr)
				assert.Equal(t, RuleSumOfStates, verr.Rule)
			}
		})
	}
}

func TestValidate_ZeroNationalTotal(t *testing.T) {
	v := NewRecordValidator(quietLogger(), DefaultSumTolerance)
	raw := validRaw()
	raw.USTotalAmount = "0"

	snap, verr := v.Validate(raw)
	require.Nil(t, verr)
	assert.Zero(t, snap.USTotalAmount)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "1,234.50", want: 1234.5},
		{in: "$2,000", want: 2000},
		{in: " 52.3% ", want: 52.3},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "n/a", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-09-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2024-09-01", d.Format(domain.DateLayout))

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}
