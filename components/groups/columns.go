package groups

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

// ColumnKey identifies a table column the renderer knows how to draw.
type ColumnKey string

const (
	ColumnName          ColumnKey = "name"
	ColumnDescription   ColumnKey = "description"
	ColumnCustomerCount ColumnKey = "customer_count"
	ColumnDiscount      ColumnKey = "discount"
	ColumnBenefits      ColumnKey = "benefits"
	ColumnActions       ColumnKey = "actions"
)

var errUnknownColumn = errors.New("groups: unknown column")

var allColumns = []ColumnKey{
	ColumnName,
	ColumnDescription,
	ColumnCustomerCount,
	ColumnDiscount,
	ColumnBenefits,
	ColumnActions,
}

// AllColumns returns every recognized column in display order.
func AllColumns() []ColumnKey {
	return append([]ColumnKey(nil), allColumns...)
}

// ParseColumnKey normalizes input such as "customerCount" or "customer-count"
// into a recognized key.
func ParseColumnKey(raw string) (ColumnKey, error) {
	key := ColumnKey(strcase.ToSnake(strings.TrimSpace(raw)))
	for _, col := range allColumns {
		if col == key {
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errUnknownColumn, raw)
}

// ParseColumns converts raw keys into a visibility set kept in display order.
// Duplicates collapse; any unknown key fails the whole set.
func ParseColumns(raw []string) ([]ColumnKey, error) {
	selected := make(map[ColumnKey]bool, len(raw))
	var errs []error
	for _, value := range raw {
		key, err := ParseColumnKey(value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		selected[key] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return orderColumns(selected), nil
}

// IsUnknownColumn reports whether err was caused by an unrecognized column key.
func IsUnknownColumn(err error) bool {
	return errors.Is(err, errUnknownColumn)
}

func orderColumns(selected map[ColumnKey]bool) []ColumnKey {
	out := make([]ColumnKey, 0, len(selected))
	for _, col := range allColumns {
		if selected[col] {
			out = append(out, col)
		}
	}
	return out
}

func normalizeColumns(cols []ColumnKey) []ColumnKey {
	if len(cols) == 0 {
		return AllColumns()
	}
	selected := make(map[ColumnKey]bool, len(cols))
	for _, col := range cols {
		selected[col] = true
	}
	return orderColumns(selected)
}
