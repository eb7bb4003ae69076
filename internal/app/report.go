package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

// formatValue renders a column value for the terminal: dollar amounts with separators.
func formatValue(f schema.Field, v float64) string {
	if f.Attr == schema.AttrTotalAmount {
		return "$" + humanize.CommafWithDigits(v, 2)
	}
	return humanize.FtoaWithDigits(v, 2)
}

// PrintSnapshot writes one record as a column/value listing in storage order.
func PrintSnapshot(w io.Writer, snap domain.DailySnapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range schema.Fields() {
		if f.Type == schema.TypeDate {
			fmt.Fprintf(tw, "%s\t%s\n", f.Name, snap.DateKey())
			continue
		}
		v, ok := schema.Value(snap, f)
		if !ok {
			fmt.Fprintf(tw, "%s\t-\n", f.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, formatValue(f, v))
	}
	tw.Flush()
}

// PrintRaw writes a candidate record before it is validated.
func PrintRaw(w io.Writer, raw domain.RawSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "date\t%s\n", raw.Date)
	fmt.Fprintf(tw, "us_republican_odds\t%s\n", orDash(raw.USRepublicanOdds))
	fmt.Fprintf(tw, "us_total_amount\t%s\n", orDash(raw.USTotalAmount))
	for _, state := range schema.States {
		entry, ok := raw.States[state]
		if !ok {
			fmt.Fprintf(tw, "%s\tmissing\n", state)
			continue
		}
		fmt.Fprintf(tw, "%s\todds %s\tamount %s\n", state, orDash(entry.RepublicanOdds), orDash(entry.TotalAmount))
	}
	for _, symbol := range schema.Indicators {
		fmt.Fprintf(tw, "%s\t%s\n", symbol, orDash(raw.Indicators[symbol]))
	}
	tw.Flush()
}

// PrintSeries writes a compact table of the national market and indicator columns.
func PrintSeries(w io.Writer, series domain.TimeSeries) {
	if len(series) == 0 {
		fmt.Fprintln(w, "(no records)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := append([]string{"date", "us_odds", "us_total"}, schema.Indicators...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, snap := range series {
		cells := []string{
			snap.DateKey(),
			humanize.FtoaWithDigits(snap.USRepublicanOdds, 2),
			"$" + humanize.CommafWithDigits(snap.USTotalAmount, 2),
		}
		for _, symbol := range schema.Indicators {
			cells = append(cells, humanize.FtoaWithDigits(snap.Indicators[symbol], 2))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// ColumnProfile summarizes one numeric column across a series.
type ColumnProfile struct {
	Field schema.Field
	Count int
	Min   float64
	Max   float64
	Last  float64
}

// Profile computes min, max and last value for every numeric column, in storage order.
// Rows missing a value are skipped; a column with no values has Count 0.
func Profile(series domain.TimeSeries) []ColumnProfile {
	var out []ColumnProfile
	for _, f := range schema.Fields() {
		if f.Type != schema.TypeFloat64 {
			continue
		}
		p := ColumnProfile{Field: f}
		for _, snap := range series {
			v, ok := schema.Value(snap, f)
			if !ok {
				continue
			}
			if p.Count == 0 || v < p.Min {
				p.Min = v
			}
			if p.Count == 0 || v > p.Max {
				p.Max = v
			}
			p.Last = v
			p.Count++
		}
		out = append(out, p)
	}
	return out
}

// PrintProfile writes one line per column with its min, max and latest value.
func PrintProfile(w io.Writer, profiles []ColumnProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tmin\tmax\tlast")
	for _, p := range profiles {
		if p.Count == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", p.Field.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Field.Name,
			formatValue(p.Field, p.Min), formatValue(p.Field, p.Max), formatValue(p.Field, p.Last))
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
