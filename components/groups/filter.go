package groups

import (
	"strconv"
	"strings"
)

// DiscountBracket is a named, non-overlapping discount sub-range.
type DiscountBracket string

const (
	BracketAll    DiscountBracket = "all"
	BracketNone   DiscountBracket = "none"
	BracketLow    DiscountBracket = "low"
	BracketMedium DiscountBracket = "medium"
	BracketHigh   DiscountBracket = "high"
)

// ParseBracket maps user input to a bracket. Unknown values select all groups.
func ParseBracket(raw string) DiscountBracket {
	switch b := DiscountBracket(strings.ToLower(strings.TrimSpace(raw))); b {
	case BracketNone, BracketLow, BracketMedium, BracketHigh:
		return b
	default:
		return BracketAll
	}
}

// Contains reports whether a discount percentage falls inside the bracket.
// none is exactly 0, low is 1-9, medium is 10-19 and high is 20 or more.
func (b DiscountBracket) Contains(discount int) bool {
	switch b {
	case BracketNone:
		return discount == 0
	case BracketLow:
		return discount >= 1 && discount <= 9
	case BracketMedium:
		return discount >= 10 && discount <= 19
	case BracketHigh:
		return discount >= 20
	default:
		return true
	}
}

func (b DiscountBracket) active() bool {
	return b != "" && b != BracketAll
}

// IntRange is an inclusive range whose bounds are independently optional.
type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Contains reports whether v satisfies every present bound.
func (r IntRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Active reports whether at least one bound is set.
func (r IntRange) Active() bool {
	return r.Min != nil || r.Max != nil
}

// ParseBound converts free-form input into a bound. Blank or non-numeric input
// yields nil, which means the bound is absent.
func ParseBound(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// FilterCriteria bundles every field-level predicate applied to the flattened tree.
type FilterCriteria struct {
	Query         string          `json:"query,omitempty"`
	Bracket       DiscountBracket `json:"bracket,omitempty"`
	CustomerCount IntRange        `json:"customer_count"`
	Discount      IntRange        `json:"discount"`
}

// ActiveCount returns how many criteria currently restrict the result.
func (c FilterCriteria) ActiveCount() int {
	n := 0
	if strings.TrimSpace(c.Query) != "" {
		n++
	}
	if c.Bracket.active() {
		n++
	}
	if c.CustomerCount.Active() {
		n++
	}
	if c.Discount.Active() {
		n++
	}
	return n
}

// Matches reports whether a record passes every active criterion.
func (c FilterCriteria) Matches(rec GroupRecord) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(rec.Name), q) &&
			!strings.Contains(strings.ToLower(rec.Description), q) {
			return false
		}
	}
	if !c.Bracket.Contains(rec.DiscountPercent) {
		return false
	}
	if !c.CustomerCount.Contains(rec.CustomerCount) {
		return false
	}
	return c.Discount.Contains(rec.DiscountPercent)
}

// FilterRows keeps the rows whose record matches the criteria, preserving order.
func FilterRows(rows []Row, criteria FilterCriteria) []Row {
	if criteria.ActiveCount() == 0 {
		return append([]Row(nil), rows...)
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Node != nil && criteria.Matches(row.Node.GroupRecord) {
			out = append(out, row)
		}
	}
	return out
}

// FilterInput is the raw, user-typed form of FilterCriteria.
type FilterInput struct {
	Query        string `json:"query"`
	Bracket      string `json:"bracket"`
	MinCustomers string `json:"min_customers"`
	MaxCustomers string `json:"max_customers"`
	MinDiscount  string `json:"min_discount"`
	MaxDiscount  string `json:"max_discount"`
}

// Criteria parses the raw input. Invalid numeric fields are dropped rather than rejected.
func (in FilterInput) Criteria() FilterCriteria {
	return FilterCriteria{
		Query:   strings.TrimSpace(in.Query),
		Bracket: ParseBracket(in.Bracket),
		CustomerCount: IntRange{
			Min: ParseBound(in.MinCustomers),
			Max: ParseBound(in.MaxCustomers),
		},
		Discount: IntRange{
			Min: ParseBound(in.MinDiscount),
			Max: ParseBound(in.MaxDiscount),
		},
	}
}
