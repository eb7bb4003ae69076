package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"oddscli/internal/dataprocessing"
	"oddscli/internal/infrastructure"
	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

// MarketSource provides the national and state quotes
type MarketSource interface {
	National(ctx context.Context) (dataprocessing.NationalQuote, error)
	States(ctx context.Context) (map[string]dataprocessing.StateQuote, map[string]error)
}

// IndicatorSource provides the latest price of an indicator
type IndicatorSource interface {
	Latest(ctx context.Context, symbol string) (float64, error)
}

// Collection is the outcome of one collection run. Sources that failed are listed in
// Failures and missing from Raw, so validation will reject the candidate.
type Collection struct {
	Raw      domain.RawSnapshot
	Failures map[string]error
}

// Complete reports whether every source delivered
func (c *Collection) Complete() bool {
	return len(c.Failures) == 0
}

// FailedSources returns the failed source names, sorted
func (c *Collection) FailedSources() []string {
	names := make([]string, 0, len(c.Failures))
	for name := range c.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector gathers a RawSnapshot for the current day
type Collector struct {
	markets    MarketSource
	indicators IndicatorSource
	now        func() time.Time
	logger     *slog.Logger
}

// NewCollector creates a collector over the given sources
func NewCollector(markets MarketSource, indicators IndicatorSource, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		markets:    markets,
		indicators: indicators,
		now:        time.Now,
		logger:     infrastructure.WithComponent(logger, "collector"),
	}
}

// Collect runs every source concurrently. The national market is required: without its
// total no share can be derived, so its failure aborts the run.
func (c *Collector) Collect(ctx context.Context) (*Collection, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	today := domain.NormalizeDate(c.now())

	result := &Collection{
		Raw: domain.RawSnapshot{
			Date:       today.Format(domain.DateLayout),
			States:     make(map[string]domain.RawStateEntry, len(schema.States)),
			Indicators: make(map[string]string, len(schema.Indicators)),
		},
		Failures: make(map[string]error),
	}
	var mu sync.Mutex

	c.logger.InfoContext(ctx, "Collection started", slog.String("date", result.Raw.Date))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, err := c.markets.National(gctx)
		if err != nil {
			return fmt.Errorf("national market: %w", err)
		}
		mu.Lock()
		defer mu.Unlock()
		result.Raw.USRepublicanOdds = formatNumber(q.RepublicanOdds)
		result.Raw.USTotalAmount = formatNumber(q.TotalAmount)
		return nil
	})

	g.Go(func() error {
		quotes, failures := c.markets.States(gctx)
		mu.Lock()
		defer mu.Unlock()
		for state, q := range quotes {
			result.Raw.States[state] = domain.RawStateEntry{
				RepublicanOdds: formatNumber(q.Republican.Odds),
				TotalAmount:    formatNumber(q.TotalAmount()),
			}
		}
		for state, err := range failures {
			result.Failures[state] = err
		}
		return nil
	})

	for _, symbol := range schema.Indicators {
		g.Go(func() error {
			price, err := c.indicators.Latest(gctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.WarnContext(ctx, "Indicator not collected",
					slog.String("symbol", symbol),
					slog.String("error", err.Error()))
				result.Failures[symbol] = err
				return nil
			}
			result.Raw.Indicators[symbol] = formatNumber(price)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.ErrorContext(ctx, "Collection failed", slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.InfoContext(ctx, "Collection finished",
		slog.String("date", result.Raw.Date),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
