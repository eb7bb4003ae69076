package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"oddscli/pkg/contracts/domain"
)

// States is the fixed set of swing states tracked individually, in column order.
var States = []string{
	"Arizona",
	"Georgia",
	"Michigan",
	"Nevada",
	"North Carolina",
	"Pennsylvania",
	"Wisconsin",
}

// Indicators is the fixed set of auxiliary price symbols, in column order.
var Indicators = []string{"SPX", "IWM", "BTCUSDT"}

// Type is the storage type of a column.
type Type string

const (
	TypeDate    Type = "date"
	TypeFloat64 Type = "float64"
)

// Group identifies which block of the snapshot a column belongs to.
type Group string

const (
	GroupDate      Group = "date"
	GroupNational  Group = "national"
	GroupState     Group = "state"
	GroupIndicator Group = "indicator"
)

// Attribute names shared by the national and state blocks.
const (
	AttrRepublicanOdds = "republican_odds"
	AttrTotalAmount    = "total_amount"
	AttrPctOfUSMarket  = "pct_of_us_market"
	AttrPrice          = "price"
)

// Range is the closed interval a numeric column must lie in.
// An unbounded range only enforces the minimum.
type Range struct {
	Min     float64
	Max     float64
	Bounded bool
}

var (
	percentRange     = Range{Min: 0, Max: 100, Bounded: true}
	nonNegativeRange = Range{Min: 0}
)

// Contains reports whether v lies within the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if v < r.Min {
		return false
	}
	return !r.Bounded || v <= r.Max
}

// Tag renders the range as a go-playground/validator tag.
func (r Range) Tag() string {
	tag := "gte=" + strconv.FormatFloat(r.Min, 'f', -1, 64)
	if r.Bounded {
		tag += ",lte=" + strconv.FormatFloat(r.Max, 'f', -1, 64)
	}
	return tag
}

func (r Range) String() string {
	if r.Bounded {
		return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
	}
	return fmt.Sprintf("[%g, +inf)", r.Min)
}

// Field describes one column of a daily record.
type Field struct {
	Name    string
	Type    Type
	Range   Range
	Group   Group
	Key     string // state name or indicator symbol
	Attr    string
	Derived bool
}

var (
	fields  []Field
	byName  map[string]Field
	columns []string
)

func init() {
	fields = append(fields, Field{Name: "date", Type: TypeDate, Group: GroupDate})
	fields = append(fields,
		Field{Name: "us_" + AttrRepublicanOdds, Type: TypeFloat64, Range: percentRange, Group: GroupNational, Attr: AttrRepublicanOdds},
		Field{Name: "us_" + AttrTotalAmount, Type: TypeFloat64, Range: nonNegativeRange, Group: GroupNational, Attr: AttrTotalAmount},
	)
	for _, state := range States {
		fields = append(fields,
			Field{Name: StateColumn(state, AttrRepublicanOdds), Type: TypeFloat64, Range: percentRange, Group: GroupState, Key: state, Attr: AttrRepublicanOdds},
			Field{Name: StateColumn(state, AttrTotalAmount), Type: TypeFloat64, Range: nonNegativeRange, Group: GroupState, Key: state, Attr: AttrTotalAmount},
			Field{Name: StateColumn(state, AttrPctOfUSMarket), Type: TypeFloat64, Range: percentRange, Group: GroupState, Key: state, Attr: AttrPctOfUSMarket, Derived: true},
		)
	}
	for _, symbol := range Indicators {
		fields = append(fields, Field{Name: IndicatorColumn(symbol), Type: TypeFloat64, Range: nonNegativeRange, Group: GroupIndicator, Key: symbol, Attr: AttrPrice})
	}

	byName = make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
		columns = append(columns, f.Name)
	}
}

// StateSlug turns a state name into its column prefix ("North Carolina" -> "north_carolina").
func StateSlug(state string) string {
	return strings.ReplaceAll(strings.ToLower(state), " ", "_")
}

// StateColumn returns the column name of a state attribute.
func StateColumn(state, attr string) string {
	return StateSlug(state) + "_" + attr
}

// IndicatorColumn returns the column name of an indicator price.
func IndicatorColumn(symbol string) string {
	return strings.ToLower(symbol) + "_" + AttrPrice
}

// Fields returns every column in storage order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldNames returns every column name in storage order.
func FieldNames() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Lookup returns the field description for a column name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// ExpectedType returns the storage type of a column.
func ExpectedType(name string) (Type, bool) {
	f, ok := byName[name]
	return f.Type, ok
}

// ExpectedRange returns the permitted range of a numeric column.
func ExpectedRange(name string) (Range, bool) {
	f, ok := byName[name]
	if !ok || f.Type != TypeFloat64 {
		return Range{}, false
	}
	return f.Range, true
}

// IsState reports whether name is one of the tracked states.
func IsState(name string) bool {
	for _, s := range States {
		if s == name {
			return true
		}
	}
	return false
}

// IsIndicator reports whether symbol is one of the tracked indicators.
func IsIndicator(symbol string) bool {
	for _, s := range Indicators {
		if s == symbol {
			return true
		}
	}
	return false
}

// Value reads a numeric field out of a snapshot. Missing map entries report false.
func Value(s domain.DailySnapshot, f Field) (float64, bool) {
	switch f.Group {
	case GroupNational:
		if f.Attr == AttrRepublicanOdds {
			return s.USRepublicanOdds, true
		}
		return s.USTotalAmount, true
	case GroupState:
		entry, ok := s.States[f.Key]
		if !ok {
			return 0, false
		}
		switch f.Attr {
		case AttrRepublicanOdds:
			return entry.RepublicanOdds, true
		case AttrTotalAmount:
			return entry.TotalAmount, true
		default:
			return entry.PctOfUSMarket, true
		}
	case GroupIndicator:
		price, ok := s.Indicators[f.Key]
		return price, ok
	}
	return 0, false
}
