package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cma_viewer/internal/domain"
)

func sp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func addresses(items []domain.Comparable) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Address == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *it.Address)
	}
	return out
}

var tableItems = []domain.Comparable{
	{Address: sp("10 Zeta Rd"), Price: fp(900000), Extra: map[string]any{"agent": "Ray White"}},
	{Address: sp("2 alpha St"), Price: nil},
	{Address: sp("3 Beta Ave"), Price: fp(1200000), PropertyType: sp("Unit")},
	{Address: nil, Price: fp(500000)},
}

func TestTableState_ToggleCycle(t *testing.T) {
	var ts TableState
	ts = ts.Toggle("price")
	assert.Equal(t, TableState{Column: "price", Direction: SortAsc}, ts)
	assert.Equal(t, "▲", ts.Indicator("price"))
	assert.Empty(t, ts.Indicator("address"))

	ts = ts.Toggle("price")
	assert.Equal(t, SortDesc, ts.Direction)
	assert.Equal(t, "▼", ts.Indicator("price"))

	ts = ts.Toggle("price")
	assert.Equal(t, TableState{}, ts)

	// switching column starts over ascending
	ts = ts.Toggle("price").Toggle("address")
	assert.Equal(t, TableState{Column: "address", Direction: SortAsc}, ts)
}

func TestTableState_SortNullsLast(t *testing.T) {
	asc := TableState{Column: "price", Direction: SortAsc}.Apply(tableItems)
	assert.Equal(t, []string{"<nil>", "10 Zeta Rd", "3 Beta Ave", "2 alpha St"}, addresses(asc))

	desc := TableState{Column: "price", Direction: SortDesc}.Apply(tableItems)
	assert.Equal(t, []string{"3 Beta Ave", "10 Zeta Rd", "<nil>", "2 alpha St"}, addresses(desc))

	// collated, case-insensitive string order
	byAddr := TableState{Column: "address", Direction: SortAsc}.Apply(tableItems)
	assert.Equal(t, []string{"10 Zeta Rd", "2 alpha St", "3 Beta Ave", "<nil>"}, addresses(byAddr))

	// input order is untouched
	assert.Equal(t, "10 Zeta Rd", *tableItems[0].Address)
}

func TestTableState_Filter(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"10 Zeta Rd", "2 alpha St", "3 Beta Ave", "<nil>"}},
		{"ALPHA", []string{"2 alpha St"}},
		{"ray white", []string{"10 Zeta Rd"}},
		{"1200000", []string{"3 Beta Ave"}},
		{"unit", []string{"3 Beta Ave"}},
		{"nowhere", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := TableState{Filter: tt.filter}.Apply(tableItems)
			assert.Equal(t, tt.want, addresses(got))
		})
	}
}

func TestTableState_Normalize(t *testing.T) {
	assert.Equal(t, TableState{}, TableState{Column: "nope", Direction: SortAsc}.Normalize())
	assert.Equal(t, TableState{}, TableState{Column: "price", Direction: "sideways"}.Normalize())
	assert.Equal(t, TableState{Filter: "x", Column: "landSize", Direction: SortDesc},
		TableState{Filter: "  x ", Column: "landSize", Direction: SortDesc}.Normalize())
}

func TestHasPropertyType(t *testing.T) {
	assert.True(t, HasPropertyType(tableItems))
	assert.False(t, HasPropertyType(tableItems[:2]))
}
