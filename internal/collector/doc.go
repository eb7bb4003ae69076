// Package collector assembles today's raw snapshot from the outside world.
//
// BrowserFetcher renders market pages with a headless Chrome (chromedp) and returns their
// visible text; PolymarketScraper turns that text into national and per-state quotes;
// YahooIndicators fetches the latest daily closes of the tracked indices. Collector fans the
// sources out concurrently and produces a domain.RawSnapshot for the ingestion orchestrator.
// Prompter is the manual alternative: it asks the operator for every field.
//
// Nothing here validates or stores; that is the orchestrator's job.
package collector
