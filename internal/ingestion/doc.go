// Package ingestion is the transaction boundary for daily snapshots.
//
// An Orchestrator takes a raw candidate from an adapter (scraper, manual prompt, scheduler)
// and runs it through validation, the duplicate-date guard, derivation of the per-state
// market share and the atomic append. Every outcome comes back as a Result; nothing is
// written unless the whole sequence succeeds.
package ingestion
