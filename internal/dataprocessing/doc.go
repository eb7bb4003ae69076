// Package dataprocessing turns collected market data into stored values.
//
// It has two parts:
//
//  1. Parser: extracts volumes and odds from the rendered text of market pages.
//  2. Derivation: computes each state's share of the national market.
//
// # Usage
//
//	quote, err := dataprocessing.ParseStatePage(pageText)
//	if err != nil {
//	    return err
//	}
//
//	derived, err := dataprocessing.Derive(snapshot)
//
// # Rounding
//
// Shares are computed with shopspring/decimal and rounded half away from zero to
// PercentPlaces decimals. When the national total is zero every share is 0.
package dataprocessing
