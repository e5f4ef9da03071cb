package app

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cma_viewer/internal/domain"
)

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sortable table columns, keyed by the normalized field name.
var TableColumns = []string{"address", "price", "date", "bedrooms", "bathrooms", "landSize"}

// TableState is the filter text plus the active sort of the comparables table.
type TableState struct {
	Filter    string
	Column    string
	Direction SortDirection
}

// Toggle handles a click on column: a new column sorts ascending, the same
// column cycles asc -> desc -> unsorted.
func (t TableState) Toggle(column string) TableState {
	if t.Column != column || t.Direction == SortNone {
		t.Column, t.Direction = column, SortAsc
		return t
	}
	if t.Direction == SortAsc {
		t.Direction = SortDesc
		return t
	}
	t.Column, t.Direction = "", SortNone
	return t
}

// Indicator is the arrow shown next to column.
func (t TableState) Indicator(column string) string {
	if t.Column != column || t.Direction == SortNone {
		return ""
	}
	if t.Direction == SortAsc {
		return "▲"
	}
	return "▼"
}

// Normalize drops unknown columns and directions coming from query strings.
func (t TableState) Normalize() TableState {
	t.Filter = strings.TrimSpace(t.Filter)
	known := false
	for _, c := range TableColumns {
		if c == t.Column {
			known = true
			break
		}
	}
	if !known || (t.Direction != SortAsc && t.Direction != SortDesc) {
		t.Column, t.Direction = "", SortNone
	}
	return t
}

// Apply filters and sorts a copy of items; the input is never reordered.
func (t TableState) Apply(items []domain.Comparable) []domain.Comparable {
	out := make([]domain.Comparable, 0, len(items))
	needle := strings.ToLower(strings.TrimSpace(t.Filter))
	for _, it := range items {
		if needle == "" || matches(it, needle) {
			out = append(out, it)
		}
	}
	if t.Column == "" || t.Direction == SortNone {
		return out
	}

	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Normalized()[t.Column], out[j].Normalized()[t.Column]
		// missing values sink to the bottom in both directions
		if a == nil || b == nil {
			return a != nil
		}
		cmp := compareValues(col, a, b)
		if t.Direction == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// HasPropertyType reports whether the Type column should be shown.
func HasPropertyType(items []domain.Comparable) bool {
	for _, it := range items {
		if it.PropertyType != nil && *it.PropertyType != "" {
			return true
		}
	}
	return false
}

func compareValues(col *collate.Collator, a, b any) int {
	fa, okA := a.(float64)
	fb, okB := b.(float64)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return col.CompareString(displayValue(a), displayValue(b))
}

// matches reports whether needle (lower-cased) occurs in any value of the item.
func matches(it domain.Comparable, needle string) bool {
	for _, v := range it.Normalized() {
		if strings.Contains(strings.ToLower(displayValue(v)), needle) {
			return true
		}
	}
	for _, v := range it.Extra {
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(displayValue(v)), needle) {
			return true
		}
	}
	return false
}

func displayValue(v any) string {
	if s, ok := stringify(v); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
