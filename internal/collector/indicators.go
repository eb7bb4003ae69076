package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	apperrors "oddscli/internal/errors"
	"oddscli/internal/infrastructure"
)

// YahooTickers maps each tracked indicator to its Yahoo Finance symbol.
var YahooTickers = map[string]string{
	"SPX":     "^GSPC",
	"IWM":     "IWM",
	"BTCUSDT": "BTC-USD",
}

// PricePlaces is the precision indicator closes are stored with
const PricePlaces = 2

// CloseFetcher returns the daily closes of ticker between start and end, oldest first.
type CloseFetcher func(ctx context.Context, ticker string, start, end time.Time) ([]decimal.Decimal, error)

// YahooIndicators reads the latest daily close of each indicator from the Yahoo chart API.
type YahooIndicators struct {
	fetch    CloseFetcher
	lookback time.Duration
	now      func() time.Time
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewYahooIndicators creates an indicator source looking back lookback for the last close.
// A nil fetch uses the Yahoo chart API.
func NewYahooIndicators(fetch CloseFetcher, lookback time.Duration, metrics *infrastructure.Metrics, logger *slog.Logger) *YahooIndicators {
	if fetch == nil {
		fetch = ChartCloses
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YahooIndicators{
		fetch:    fetch,
		lookback: lookback,
		now:      time.Now,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "yahoo_indicators")),
	}
}

// Latest returns the most recent close of symbol rounded to two decimals.
func (y *YahooIndicators) Latest(ctx context.Context, symbol string) (float64, error) {
	ticker, ok := YahooTickers[symbol]
	if !ok {
		return 0, fmt.Errorf("no ticker mapped for indicator %s", symbol)
	}

	end := y.now()
	start := end.Add(-y.lookback)

	began := time.Now()
	closes, err := y.fetch(ctx, ticker, start, end)
	if err == nil && len(closes) == 0 {
		err = fmt.Errorf("no closes for %s since %s", ticker, start.Format(time.DateOnly))
	}
	y.metrics.RecordFetch(ctx, symbol, time.Since(began), err)
	if err != nil {
		return 0, apperrors.NewNetworkError("indicator "+symbol, err).WithContext("ticker", ticker)
	}

	last, _ := closes[len(closes)-1].Round(PricePlaces).Float64()
	y.logger.InfoContext(ctx, "Indicator close fetched",
		slog.String("symbol", symbol),
		slog.String("ticker", ticker),
		slog.Float64("close", last))
	return last, nil
}

// ChartCloses queries the Yahoo chart endpoint at daily interval.
func ChartCloses(ctx context.Context, ticker string, start, end time.Time) ([]decimal.Decimal, error) {
	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	var closes []decimal.Decimal
	iter := chart.Get(params)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		closes = append(closes, iter.Bar().Close)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return closes, nil
}
