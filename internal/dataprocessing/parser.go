package dataprocessing

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// NationalQuote is what the national market page reports.
type NationalQuote struct {
	TotalAmount    float64
	RepublicanOdds float64
}

// PartyQuote is one outcome row of a state market page.
type PartyQuote struct {
	Party  string
	Volume float64
	Odds   float64
}

// StateQuote is what a state market page reports. TotalAmount combines both party volumes.
type StateQuote struct {
	Republican PartyQuote
	Democrat   PartyQuote
}

// TotalAmount is the state market volume across both outcomes.
func (q StateQuote) TotalAmount() float64 {
	return q.Republican.Volume + q.Democrat.Volume
}

var (
	volumePattern    = regexp.MustCompile(`\$([0-9,]+) Vol\.`)
	candidatePattern = regexp.MustCompile(`Donald Trump\s+(\d+(?:\.\d+)?)%`)
	partyPatterns    = map[string]*regexp.Regexp{
		"Republican": partyPattern("Republican"),
		"Democrat":   partyPattern("Democrat"),
	}
)

func partyPattern(party string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(party) + `\s*\n\s*\$([\d,]+)\s*Vol\.\s*\n\s*([\d.]+)%`)
}

// ParseNationalPage extracts the headline volume and the Republican candidate's odds
// from the rendered text of the national winner market.
func ParseNationalPage(content string) (NationalQuote, error) {
	var q NationalQuote

	m := volumePattern.FindStringSubmatch(content)
	if m == nil {
		return q, fmt.Errorf("volume not found on national page")
	}
	volume, err := parseAmount(m[1])
	if err != nil {
		return q, fmt.Errorf("national volume: %w", err)
	}

	m = candidatePattern.FindStringSubmatch(content)
	if m == nil {
		return q, fmt.Errorf("candidate odds not found on national page")
	}
	odds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return q, fmt.Errorf("national odds: %w", err)
	}

	q.TotalAmount = volume
	q.RepublicanOdds = odds
	slog.Debug("Parsed national page",
		slog.Float64("total_amount", q.TotalAmount),
		slog.Float64("republican_odds", q.RepublicanOdds))
	return q, nil
}

// ParseStatePage extracts both party rows from the rendered text of a state winner market.
func ParseStatePage(content string) (StateQuote, error) {
	rep, err := parseParty(content, "Republican")
	if err != nil {
		return StateQuote{}, err
	}
	dem, err := parseParty(content, "Democrat")
	if err != nil {
		return StateQuote{}, err
	}
	return StateQuote{Republican: rep, Democrat: dem}, nil
}

func parseParty(content, party string) (PartyQuote, error) {
	m := partyPatterns[party].FindStringSubmatch(normalizeNewlines(content))
	if m == nil {
		return PartyQuote{}, fmt.Errorf("%s row not found on state page", party)
	}
	volume, err := parseAmount(m[1])
	if err != nil {
		return PartyQuote{}, fmt.Errorf("%s volume: %w", party, err)
	}
	odds, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return PartyQuote{}, fmt.Errorf("%s odds: %w", party, err)
	}
	return PartyQuote{Party: party, Volume: volume, Odds: odds}, nil
}

func parseAmount(text string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
