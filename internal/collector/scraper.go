package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"oddscli/internal/dataprocessing"
	apperrors "oddscli/internal/errors"
	"oddscli/internal/infrastructure"
	"oddscli/internal/schema"
)

// PolymarketScraper reads the national and state winner markets.
type PolymarketScraper struct {
	fetcher     PageFetcher
	nationalURL string
	stateURLs   map[string]string
	concurrency int
	metrics     *infrastructure.Metrics
	logger      *slog.Logger
}

// NewPolymarketScraper creates a scraper over fetcher. metrics may be nil.
func NewPolymarketScraper(fetcher PageFetcher, nationalURL string, stateURLs map[string]string,
	concurrency int, metrics *infrastructure.Metrics, logger *slog.Logger) *PolymarketScraper {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &PolymarketScraper{
		fetcher:     fetcher,
		nationalURL: nationalURL,
		stateURLs:   stateURLs,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "polymarket_scraper")),
	}
}

// National scrapes the national market
func (s *PolymarketScraper) National(ctx context.Context) (dataprocessing.NationalQuote, error) {
	start := time.Now()
	text, err := s.fetcher.PageText(ctx, s.nationalURL)
	if err == nil {
		var q dataprocessing.NationalQuote
		if q, err = dataprocessing.ParseNationalPage(text); err == nil {
			s.metrics.RecordFetch(ctx, "national", time.Since(start), nil)
			s.logger.InfoContext(ctx, "National market scraped",
				slog.Float64("total_amount", q.TotalAmount),
				slog.Float64("republican_odds", q.RepublicanOdds))
			return q, nil
		}
		err = apperrors.NewParsingError("national market page", err)
	} else {
		err = apperrors.NewNetworkError("national market page", err)
	}
	s.metrics.RecordFetch(ctx, "national", time.Since(start), err)
	return dataprocessing.NationalQuote{}, err
}

// State scrapes one state market
func (s *PolymarketScraper) State(ctx context.Context, state string) (dataprocessing.StateQuote, error) {
	url, ok := s.stateURLs[state]
	if !ok {
		return dataprocessing.StateQuote{}, fmt.Errorf("no market url configured for %s", state)
	}

	start := time.Now()
	text, err := s.fetcher.PageText(ctx, url)
	if err == nil {
		var q dataprocessing.StateQuote
		if q, err = dataprocessing.ParseStatePage(text); err == nil {
			s.metrics.RecordFetch(ctx, state, time.Since(start), nil)
			s.logger.InfoContext(ctx, "State market scraped",
				slog.String("state", state),
				slog.Float64("total_amount", q.TotalAmount()),
				slog.Float64("republican_odds", q.Republican.Odds))
			return q, nil
		}
		err = apperrors.NewParsingError(state+" market page", err).WithContext("state", state)
	} else {
		err = apperrors.NewNetworkError(state+" market page", err).WithContext("state", state)
	}
	s.metrics.RecordFetch(ctx, state, time.Since(start), err)
	return dataprocessing.StateQuote{}, err
}

// States scrapes every tracked state, at most concurrency pages at a time. A state that
// fails is reported in the error map and left out of the quotes.
func (s *PolymarketScraper) States(ctx context.Context) (map[string]dataprocessing.StateQuote, map[string]error) {
	var (
		mu       sync.Mutex
		quotes   = make(map[string]dataprocessing.StateQuote, len(schema.States))
		failures = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, state := range schema.States {
		g.Go(func() error {
			q, err := s.State(gctx, state)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WarnContext(ctx, "State market not collected",
					slog.String("state", state),
					slog.String("error", err.Error()))
				failures[state] = err
				return nil
			}
			quotes[state] = q
			return nil
		})
	}
	g.Wait()
	return quotes, failures
}
