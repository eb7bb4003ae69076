package schema

import (
	"time"

	"oddscli/pkg/contracts/domain"
)

// Row is the flat columnar layout of a DailySnapshot.
// Column names and order must match FieldNames; schema_test.go enforces it.
type Row struct {
	Date int32 `parquet:"date,date"`

	USRepublicanOdds float64 `parquet:"us_republican_odds"`
	USTotalAmount    float64 `parquet:"us_total_amount"`

	ArizonaRepublicanOdds float64 `parquet:"arizona_republican_odds"`
	ArizonaTotalAmount    float64 `parquet:"arizona_total_amount"`
	ArizonaPctOfUSMarket  float64 `parquet:"arizona_pct_of_us_market"`

	GeorgiaRepublicanOdds float64 `parquet:"georgia_republican_odds"`
	GeorgiaTotalAmount    float64 `parquet:"georgia_total_amount"`
	GeorgiaPctOfUSMarket  float64 `parquet:"georgia_pct_of_us_market"`

	MichiganRepublicanOdds float64 `parquet:"michigan_republican_odds"`
	MichiganTotalAmount    float64 `parquet:"michigan_total_amount"`
	MichiganPctOfUSMarket  float64 `parquet:"michigan_pct_of_us_market"`

	NevadaRepublicanOdds float64 `parquet:"nevada_republican_odds"`
	NevadaTotalAmount    float64 `parquet:"nevada_total_amount"`
	NevadaPctOfUSMarket  float64 `parquet:"nevada_pct_of_us_market"`

	NorthCarolinaRepublicanOdds float64 `parquet:"north_carolina_republican_odds"`
	NorthCarolinaTotalAmount    float64 `parquet:"north_carolina_total_amount"`
	NorthCarolinaPctOfUSMarket  float64 `parquet:"north_carolina_pct_of_us_market"`

	PennsylvaniaRepublicanOdds float64 `parquet:"pennsylvania_republican_odds"`
	PennsylvaniaTotalAmount    float64 `parquet:"pennsylvania_total_amount"`
	PennsylvaniaPctOfUSMarket  float64 `parquet:"pennsylvania_pct_of_us_market"`

	WisconsinRepublicanOdds float64 `parquet:"wisconsin_republican_odds"`
	WisconsinTotalAmount    float64 `parquet:"wisconsin_total_amount"`
	WisconsinPctOfUSMarket  float64 `parquet:"wisconsin_pct_of_us_market"`

	SPXPrice     float64 `parquet:"spx_price"`
	IWMPrice     float64 `parquet:"iwm_price"`
	BTCUSDTPrice float64 `parquet:"btcusdt_price"`
}

type stateCells struct {
	odds, amount, pct *float64
}

// stateCells maps each tracked state onto its three columns.
func (r *Row) stateCells() map[string]stateCells {
	return map[string]stateCells{
		"Arizona":        {&r.ArizonaRepublicanOdds, &r.ArizonaTotalAmount, &r.ArizonaPctOfUSMarket},
		"Georgia":        {&r.GeorgiaRepublicanOdds, &r.GeorgiaTotalAmount, &r.GeorgiaPctOfUSMarket},
		"Michigan":       {&r.MichiganRepublicanOdds, &r.MichiganTotalAmount, &r.MichiganPctOfUSMarket},
		"Nevada":         {&r.NevadaRepublicanOdds, &r.NevadaTotalAmount, &r.NevadaPctOfUSMarket},
		"North Carolina": {&r.NorthCarolinaRepublicanOdds, &r.NorthCarolinaTotalAmount, &r.NorthCarolinaPctOfUSMarket},
		"Pennsylvania":   {&r.PennsylvaniaRepublicanOdds, &r.PennsylvaniaTotalAmount, &r.PennsylvaniaPctOfUSMarket},
		"Wisconsin":      {&r.WisconsinRepublicanOdds, &r.WisconsinTotalAmount, &r.WisconsinPctOfUSMarket},
	}
}

func (r *Row) indicatorCells() map[string]*float64 {
	return map[string]*float64{
		"SPX":     &r.SPXPrice,
		"IWM":     &r.IWMPrice,
		"BTCUSDT": &r.BTCUSDTPrice,
	}
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// DaysSinceEpoch converts a calendar date to the parquet DATE representation.
// Unix seconds of a UTC midnight are an exact multiple of a day for every year time.Parse accepts.
func DaysSinceEpoch(t time.Time) int32 {
	return int32(domain.NormalizeDate(t).Unix() / secondsPerDay)
}

// DateFromDays converts a parquet DATE value back to a UTC calendar date.
func DateFromDays(days int32) time.Time {
	return epoch.AddDate(0, 0, int(days))
}

// FromSnapshot flattens a snapshot into a storage row.
func FromSnapshot(s domain.DailySnapshot) Row {
	r := Row{
		Date:             DaysSinceEpoch(s.Date),
		USRepublicanOdds: s.USRepublicanOdds,
		USTotalAmount:    s.USTotalAmount,
	}
	for name, cells := range r.stateCells() {
		entry := s.States[name]
		*cells.odds = entry.RepublicanOdds
		*cells.amount = entry.TotalAmount
		*cells.pct = entry.PctOfUSMarket
	}
	for symbol, cell := range r.indicatorCells() {
		*cell = s.Indicators[symbol]
	}
	return r
}

// Snapshot rebuilds the nested snapshot from a storage row.
func (r Row) Snapshot() domain.DailySnapshot {
	s := domain.DailySnapshot{
		Date:             DateFromDays(r.Date),
		USRepublicanOdds: r.USRepublicanOdds,
		USTotalAmount:    r.USTotalAmount,
		States:           make(map[string]domain.StateEntry, len(States)),
		Indicators:       make(map[string]float64, len(Indicators)),
	}
	for name, cells := range r.stateCells() {
		s.States[name] = domain.StateEntry{
			RepublicanOdds: *cells.odds,
			TotalAmount:    *cells.amount,
			PctOfUSMarket:  *cells.pct,
		}
	}
	for symbol, cell := range r.indicatorCells() {
		s.Indicators[symbol] = *cell
	}
	return s
}
