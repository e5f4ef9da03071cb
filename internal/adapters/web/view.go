package web

import (
	"net/url"
	"strconv"

	"cma_viewer/internal/app"
	"cma_viewer/internal/domain"
)

const (
	emptyComparables = "No comparable data available"
	emptyFiltered    = "No items match your filter"
)

type Card struct {
	Label string
	Value string
}

type Column struct {
	Key       string
	Title     string
	Indicator string
	SortURL   string
}

type Row struct{ Cells []string }

type Table struct {
	Action    string
	Filter    string
	Sort      string
	Dir       string
	HasItems  bool
	Columns   []Column
	ShowType  bool
	Rows      []Row
	EmptyText string
}

// Page is everything the dashboard templates need for one lookup.
type Page struct {
	ID          string
	Phase       app.Phase
	Loading     bool
	Error       string
	RetryURL    string
	LastUpdated string
	Cards       []Card
	Chart       *BarChart
	Table       Table
}

var columnTitles = map[string]string{
	"address":   "Address",
	"price":     "Price",
	"date":      "Date",
	"bedrooms":  "Bedrooms",
	"bathrooms": "Bathrooms",
	"landSize":  "Land Size",
}

// CMAPath is the dashboard URL of one CMA ID.
func CMAPath(id string) string { return "/cma/" + url.PathEscape(id) }

func NewPage(st app.State, ts app.TableState) Page {
	p := Page{
		ID:       st.ID,
		Phase:    st.Phase,
		Loading:  st.Phase == app.PhaseLoading,
		Error:    st.Error,
		RetryURL: CMAPath(st.ID),
	}
	if st.Phase != app.PhaseSuccess || st.Data == nil {
		return p
	}
	if st.LastUpdated != nil {
		p.LastUpdated = LastUpdated(*st.LastUpdated)
	}
	p.Cards = Cards(*st.Data)
	p.Chart = NewBarChart(st.Data.ChartData)
	p.Table = NewTable(st.ID, st.Data.Comparables, ts.Normalize())
	return p
}

// Cards lists the summary cards for the fields that are set.
func Cards(vm domain.ViewModel) []Card {
	var out []Card
	add := func(label, value string) { out = append(out, Card{Label: label, Value: value}) }
	if vm.Suburb != nil && *vm.Suburb != "" {
		add("Suburb", *vm.Suburb)
	}
	if vm.Postcode != nil && *vm.Postcode != "" {
		add("Postcode", *vm.Postcode)
	}
	if vm.MedianPrice != nil {
		add("Median Price", Currency(*vm.MedianPrice))
	}
	if vm.GrowthRate != nil {
		add("Growth Rate", Percent(*vm.GrowthRate))
	}
	if vm.PropertyCount != nil {
		add("Properties", Number(*vm.PropertyCount))
	}
	if vm.State != nil && *vm.State != "" {
		add("State", *vm.State)
	}
	if vm.Region != nil && *vm.Region != "" {
		add("Region", *vm.Region)
	}
	if n := len(vm.Comparables); n > 0 {
		add("Comparables", strconv.Itoa(n))
	}
	return out
}

func NewTable(id string, items []domain.Comparable, ts app.TableState) Table {
	t := Table{
		Action:   CMAPath(id),
		Filter:   ts.Filter,
		Sort:     ts.Column,
		Dir:      string(ts.Direction),
		HasItems: len(items) > 0,
		ShowType: app.HasPropertyType(items),
	}
	for _, key := range app.TableColumns {
		next := ts.Toggle(key)
		t.Columns = append(t.Columns, Column{
			Key:       key,
			Title:     columnTitles[key],
			Indicator: ts.Indicator(key),
			SortURL:   tableURL(id, next),
		})
	}

	rows := ts.Apply(items)
	if len(rows) == 0 {
		t.EmptyText = emptyComparables
		if len(items) > 0 {
			t.EmptyText = emptyFiltered
		}
		return t
	}
	for _, it := range rows {
		cells := []string{
			text(it.Address),
			CurrencyPtr(it.Price),
			Date(it.Date),
			NumberPtr(it.Bedrooms),
			NumberPtr(it.Bathrooms),
			LandSize(it.LandSize),
		}
		if t.ShowType {
			cells = append(cells, text(it.PropertyType))
		}
		t.Rows = append(t.Rows, Row{Cells: cells})
	}
	return t
}

func tableURL(id string, ts app.TableState) string {
	q := url.Values{}
	if ts.Filter != "" {
		q.Set("q", ts.Filter)
	}
	if ts.Column != "" && ts.Direction != app.SortNone {
		q.Set("sort", ts.Column)
		q.Set("dir", string(ts.Direction))
	}
	if len(q) == 0 {
		return CMAPath(id)
	}
	return CMAPath(id) + "?" + q.Encode()
}
