package dataprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "oddscli/internal/errors"
	"oddscli/pkg/contracts/domain"
)

// PercentPlaces is the number of decimal places kept for derived percentages.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// PercentOfMarket returns total / usTotal * 100 rounded half away from zero to two places.
// A zero national total yields 0.
func PercentOfMarket(total, usTotal float64) (float64, error) {
	if err := checkAmount("total_amount", total); err != nil {
		return 0, err
	}
	if err := checkAmount("us_total_amount", usTotal); err != nil {
		return 0, err
	}
	if usTotal == 0 {
		return 0, nil
	}

	pct := decimal.NewFromFloat(total).
		Mul(hundred).
		Div(decimal.NewFromFloat(usTotal)).
		Round(PercentPlaces)
	f, _ := pct.Float64()
	return f, nil
}

// Derive fills PctOfUSMarket for every state and returns the result as a new snapshot.
// The input is left untouched.
func Derive(s domain.DailySnapshot) (domain.DailySnapshot, error) {
	out := s.Clone()
	for name, entry := range out.States {
		pct, err := PercentOfMarket(entry.TotalAmount, s.USTotalAmount)
		if err != nil {
			return domain.DailySnapshot{}, apperrors.NewDerivationError(
				fmt.Sprintf("cannot derive market share for %s", name), err).
				WithContext("state", name).
				WithContext("date", s.DateKey())
		}
		entry.PctOfUSMarket = pct
		out.States[name] = entry
	}
	return out, nil
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s is not a finite number", name)
	}
	if v < 0 {
		return fmt.Errorf("%s is negative: %v", name, v)
	}
	return nil
}
