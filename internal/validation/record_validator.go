package validation

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

// DefaultSumTolerance is how far the sum of state amounts may exceed the national total.
const DefaultSumTolerance = 0.01

// Rule names the check a candidate record failed.
type Rule string

const (
	RuleRequired    Rule = "required"
	RuleUnknown     Rule = "unknown_field"
	RuleNumeric     Rule = "numeric"
	RuleDate        Rule = "date"
	RuleRange       Rule = "range"
	RuleNonNegative Rule = "non_negative"
	RuleSumOfStates Rule = "sum_of_states"
	RuleStateShare  Rule = "state_share"
	RuleDateRange   Rule = "date_range"
)

// EarliestDate is the first calendar day a snapshot may carry.
var EarliestDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ValidationError identifies the field and rule a candidate record violated.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Rule)
}

// RecordValidator checks raw snapshots against the schema before anything is derived or stored.
type RecordValidator struct {
	validate     *validator.Validate
	sumTolerance float64
	now          func() time.Time
	logger       *slog.Logger
}

// NewRecordValidator creates a record validator. A negative tolerance falls back to the default.
func NewRecordValidator(logger *slog.Logger, sumTolerance float64) *RecordValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if sumTolerance < 0 {
		sumTolerance = DefaultSumTolerance
	}
	return &RecordValidator{
		validate:     validator.New(),
		sumTolerance: sumTolerance,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "record_validator")),
	}
}

// rawField is one schema column paired with the text supplied for it.
type rawField struct {
	field   schema.Field
	text    string
	present bool
}

// Validate runs presence, numeric and range checks (the date must fall between EarliestDate and
// tomorrow), then non-negative amounts, per-state share and sum-of-states, in that order.
// On success it returns a snapshot with every non-derived field populated.
func (v *RecordValidator) Validate(raw domain.RawSnapshot) (*domain.DailySnapshot, *ValidationError) {
	verr := v.check(raw)
	if verr != nil {
		v.logger.Warn("Candidate record rejected",
			slog.String("date", raw.Date),
			slog.String("field", verr.Field),
			slog.String("rule", string(verr.Rule)),
			slog.String("value", verr.Value))
		return nil, verr
	}
	snap := build(raw)
	v.logger.Debug("Candidate record validated", slog.String("date", snap.DateKey()))
	return snap, nil
}

func (v *RecordValidator) check(raw domain.RawSnapshot) *ValidationError {
	if verr := checkUnknownKeys(raw); verr != nil {
		return verr
	}

	values := collect(raw)

	// (a) presence
	for _, rf := range values {
		if !rf.present || strings.TrimSpace(rf.text) == "" {
			return &ValidationError{Field: rf.field.Name, Rule: RuleRequired, Message: "value is required"}
		}
	}

	// (b) convertible
	parsed := make(map[string]float64, len(values))
	for _, rf := range values {
		if rf.field.Type == schema.TypeDate {
			date, err := ParseDate(rf.text)
			if err != nil {
				return &ValidationError{Field: rf.field.Name, Rule: RuleDate, Value: rf.text, Message: "expected a YYYY-MM-DD date"}
			}
			// a snapshot is taken on the day it describes; one day of slack covers time zones
			latest := domain.NormalizeDate(v.now()).AddDate(0, 0, 1)
			if date.Before(EarliestDate) || date.After(latest) {
				return &ValidationError{
					Field:   rf.field.Name,
					Rule:    RuleDateRange,
					Value:   rf.text,
					Message: fmt.Sprintf("date must be between %s and %s", EarliestDate.Format(domain.DateLayout), latest.Format(domain.DateLayout)),
				}
			}
			continue
		}
		f, err := ParseNumber(rf.text)
		if err != nil {
			return &ValidationError{Field: rf.field.Name, Rule: RuleNumeric, Value: rf.text, Message: "expected a numeric value"}
		}
		parsed[rf.field.Name] = f
	}

	// (c) declared ranges; amounts are covered by (d)
	for _, rf := range values {
		if rf.field.Type != schema.TypeFloat64 || rf.field.Attr == schema.AttrTotalAmount {
			continue
		}
		if err := v.validate.Var(parsed[rf.field.Name], rf.field.Range.Tag()); err != nil {
			return &ValidationError{
				Field:   rf.field.Name,
				Rule:    RuleRange,
				Value:   rf.text,
				Message: fmt.Sprintf("value must be within %s", rf.field.Range),
			}
		}
	}

	// (d) amounts
	for _, rf := range values {
		if rf.field.Attr != schema.AttrTotalAmount {
			continue
		}
		if err := v.validate.Var(parsed[rf.field.Name], "gte=0"); err != nil {
			return &ValidationError{Field: rf.field.Name, Rule: RuleNonNegative, Value: rf.text, Message: "amount must not be negative"}
		}
	}

	// (e) sum of states. A zero national total means the national volume was unavailable;
	// derivation then reports every share as 0.
	usTotal := parsed["us_"+schema.AttrTotalAmount]
	if usTotal > 0 {
		// a single state above the national total would derive a share over 100%
		for _, state := range schema.States {
			column := schema.StateColumn(state, schema.AttrTotalAmount)
			if amount := parsed[column]; amount > usTotal {
				return &ValidationError{
					Field:   column,
					Rule:    RuleStateShare,
					Value:   strconv.FormatFloat(amount, 'f', 2, 64),
					Message: fmt.Sprintf("state amount exceeds the national total %.2f", usTotal),
				}
			}
		}

		var sum float64
		for _, state := range schema.States {
			sum += parsed[schema.StateColumn(state, schema.AttrTotalAmount)]
		}
		if limit := usTotal * (1 + v.sumTolerance); sum > limit {
			return &ValidationError{
				Field:   "us_" + schema.AttrTotalAmount,
				Rule:    RuleSumOfStates,
				Value:   strconv.FormatFloat(sum, 'f', 2, 64),
				Message: fmt.Sprintf("state amounts sum to %.2f, more than %.2f%% above the national total %.2f", sum, v.sumTolerance*100, usTotal),
			}
		}
	}
	return nil
}

// build converts text that check already accepted, so parse errors cannot occur here.
func build(raw domain.RawSnapshot) *domain.DailySnapshot {
	date, _ := ParseDate(raw.Date)
	snap := &domain.DailySnapshot{
		Date:       date,
		States:     make(map[string]domain.StateEntry, len(schema.States)),
		Indicators: make(map[string]float64, len(schema.Indicators)),
	}
	snap.USRepublicanOdds, _ = ParseNumber(raw.USRepublicanOdds)
	snap.USTotalAmount, _ = ParseNumber(raw.USTotalAmount)
	for _, state := range schema.States {
		entry := raw.States[state]
		odds, _ := ParseNumber(entry.RepublicanOdds)
		amount, _ := ParseNumber(entry.TotalAmount)
		snap.States[state] = domain.StateEntry{RepublicanOdds: odds, TotalAmount: amount}
	}
	for _, symbol := range schema.Indicators {
		snap.Indicators[symbol], _ = ParseNumber(raw.Indicators[symbol])
	}
	return snap
}

// collect pairs every non-derived schema column with the raw text supplied for it.
func collect(raw domain.RawSnapshot) []rawField {
	var out []rawField
	for _, f := range schema.Fields() {
		if f.Derived {
			continue
		}
		rf := rawField{field: f}
		switch f.Group {
		case schema.GroupDate:
			rf.text, rf.present = raw.Date, true
		case schema.GroupNational:
			rf.present = true
			if f.Attr == schema.AttrRepublicanOdds {
				rf.text = raw.USRepublicanOdds
			} else {
				rf.text = raw.USTotalAmount
			}
		case schema.GroupState:
			entry, ok := raw.States[f.Key]
			rf.present = ok
			if f.Attr == schema.AttrRepublicanOdds {
				rf.text = entry.RepublicanOdds
			} else {
				rf.text = entry.TotalAmount
			}
		case schema.GroupIndicator:
			rf.text, rf.present = raw.Indicators[f.Key]
		}
		out = append(out, rf)
	}
	return out
}

func checkUnknownKeys(raw domain.RawSnapshot) *ValidationError {
	var unknown []string
	for name := range raw.States {
		if !schema.IsState(name) {
			unknown = append(unknown, "state "+name)
		}
	}
	for symbol := range raw.Indicators {
		if !schema.IsIndicator(symbol) {
			unknown = append(unknown, "indicator "+symbol)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &ValidationError{Field: unknown[0], Rule: RuleUnknown, Message: "not part of the tracked schema"}
}

var numberReplacer = strings.NewReplacer(",", "", "$", "", "%", "", "_", "", " ", "")

// ParseNumber converts scraped or typed numeric text ("$1,234.50", "52.3%") to a float.
func ParseNumber(text string) (float64, error) {
	cleaned := numberReplacer.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", text, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse %q: not a finite number", text)
	}
	return f, nil
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(text string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, err
	}
	return domain.NormalizeDate(t), nil
}
