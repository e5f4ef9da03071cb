package app

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"cma_viewer/internal/domain"
)

/********** alias registries (order is precedence, first present wins) **********/

var summaryAliases = map[string][]string{
	"suburb":         {"property.suburb", "property.Suburb", "property.suburbName", "property.sal", "suburb", "Suburb", "suburbName", "sal"},
	"postcode":       {"postcode", "postCode", "Postcode"},
	"median_price":   {"median_price", "medianPrice", "median"},
	"growth_rate":    {"property.growth_rate", "property.growthRate", "growth_rate", "growthRate", "growth"},
	"property_count": {"property_count", "propertyCount", "properties"},
	"state":          {"state", "State"},
	"region":         {"region", "Region"},
	"comparables":    {"comparables", "comparableSales", "sales", "comparablesList", "similar_properties", "similarProperties"},
	"prices":         {"prices", "Prices", "priceHistory"},
	"dates":          {"dates", "Dates", "dateHistory"},
}

var comparableAliases = map[string][]string{
	"id":            {"id", "Id", "propertyId", "gnaf_pid"},
	"address":       {"address", "Address", "propertyAddress", "street"},
	"price":         {"price", "Price", "salePrice", "value"},
	"date":          {"date", "Date", "saleDate", "transactionDate", "formatted_date"},
	"bedrooms":      {"bedrooms", "Bedrooms", "beds"},
	"bathrooms":     {"bathrooms", "Bathrooms", "baths"},
	"land_size":     {"landSize", "LandSize", "landArea", "area", "land_size"},
	"property_type": {"propertyType", "PropertyType", "type", "property_type"},
}

const (
	maxComparablePoints = 20
	maxNumericPoints    = 10
	unknownDate         = "Unknown"
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asMap(cur)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case domain.RawResponse:
		return t, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			out = append(out, it)
		}
		return out, true
	}
	return nil, false
}

// present mirrors the upstream contract: nil, "", 0, NaN and false mean absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return true
}

// firstPresent returns the first present value over the alias paths.
func firstPresent(m map[string]any, paths ...string) any {
	for _, p := range paths {
		if v := lookupAny(m, p); present(v) {
			return v
		}
	}
	return nil
}

// stringify renders scalar values the way they would print in a browser.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func ptrString(v any) *string {
	s, ok := stringify(v)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// parseNumber accepts JSON numbers and currency strings like "$1,010,000".
func parseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(t))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func ptrNumber(v any) *float64 {
	if f, ok := parseNumber(v); ok {
		return &f
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == unknownDate {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var wordStart = regexp.MustCompile(`\b\w`)

// humanize turns "median_price" into "Median Price".
func humanize(key string) string {
	return wordStart.ReplaceAllStringFunc(strings.ReplaceAll(key, "_", " "), strings.ToUpper)
}

/********** view model **********/

// AdaptCMA normalizes a raw CMA payload. It never fails: anything it cannot
// read falls back to undefined or an empty slice.
func AdaptCMA(raw domain.RawResponse, at time.Time) domain.ViewModel {
	m := map[string]any(raw)
	comparables := mapComparables(m)
	return domain.ViewModel{
		Suburb:        ptrString(firstPresent(m, summaryAliases["suburb"]...)),
		Postcode:      ptrString(firstPresent(m, summaryAliases["postcode"]...)),
		MedianPrice:   medianPrice(m),
		GrowthRate:    ptrNumber(firstPresent(m, summaryAliases["growth_rate"]...)),
		PropertyCount: ptrNumber(firstPresent(m, summaryAliases["property_count"]...)),
		State:         ptrString(firstPresent(m, summaryAliases["state"]...)),
		Region:        ptrString(firstPresent(m, summaryAliases["region"]...)),
		Comparables:   comparables,
		ChartData:     chartData(m, comparables),
		LastUpdated:   at,
	}
}

// medianPrice prefers the nested property price; when that one is present
// but unreadable the top-level aliases are not consulted.
func medianPrice(m map[string]any) *float64 {
	if p := lookupAny(m, "property.price"); present(p) {
		return ptrNumber(p)
	}
	return ptrNumber(firstPresent(m, summaryAliases["median_price"]...))
}

/********** comparables mapper **********/

func mapComparables(m map[string]any) []domain.Comparable {
	items, ok := asSlice(firstPresent(m, summaryAliases["comparables"]...))
	if !ok {
		return []domain.Comparable{}
	}
	out := make([]domain.Comparable, 0, len(items))
	for _, it := range items {
		item, ok := asMap(it)
		if !ok {
			continue
		}
		out = append(out, mapComparable(item))
	}
	return out
}

func mapComparable(item map[string]any) domain.Comparable {
	extra := make(map[string]any, len(item))
	for k, v := range item {
		extra[k] = v
	}
	pick := func(field string) any { return firstPresent(item, comparableAliases[field]...) }
	return domain.Comparable{
		ID:           ptrString(pick("id")),
		Address:      ptrString(pick("address")),
		Price:        ptrNumber(pick("price")),
		Date:         ptrString(pick("date")),
		Bedrooms:     ptrNumber(pick("bedrooms")),
		Bathrooms:    ptrNumber(pick("bathrooms")),
		LandSize:     ptrNumber(pick("land_size")),
		PropertyType: ptrString(pick("property_type")),
		Extra:        extra,
	}
}

/********** chart mapper **********/

func chartData(m map[string]any, comparables []domain.Comparable) []domain.ChartPoint {
	if pts, ok := parallelSeries(m); ok {
		return pts
	}
	if len(comparables) > 0 {
		return comparablePoints(comparables)
	}
	return numericFieldPoints(m)
}

func parallelSeries(m map[string]any) ([]domain.ChartPoint, bool) {
	prices, ok1 := asSlice(firstPresent(m, summaryAliases["prices"]...))
	dates, ok2 := asSlice(firstPresent(m, summaryAliases["dates"]...))
	if !ok1 || !ok2 || len(prices) == 0 || len(prices) != len(dates) {
		return nil, false
	}
	out := make([]domain.ChartPoint, 0, len(prices))
	for i, p := range prices {
		y, ok := parseNumber(p)
		if !ok {
			continue
		}
		x, _ := stringify(dates[i])
		out = append(out, domain.ChartPoint{X: x, Y: y, Label: x})
	}
	return out, true
}

func comparablePoints(comparables []domain.Comparable) []domain.ChartPoint {
	out := make([]domain.ChartPoint, 0, len(comparables))
	for _, c := range comparables {
		if c.Price == nil {
			continue
		}
		x := unknownDate
		if c.Date != nil {
			x = *c.Date
		}
		label := x
		if c.Address != nil {
			label = *c.Address
		}
		out = append(out, domain.ChartPoint{X: x, Y: *c.Price, Label: label})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, okA := parseDate(out[i].X)
		b, okB := parseDate(out[j].X)
		return okA && okB && a.Before(b)
	})

	if len(out) > maxComparablePoints {
		out = out[:maxComparablePoints]
	}
	return out
}

// numericFieldPoints charts top-level numbers in key order so the output is
// stable for a given payload.
func numericFieldPoints(m map[string]any) []domain.ChartPoint {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if f, ok := v.(float64); ok && !math.IsNaN(f) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > maxNumericPoints {
		keys = keys[:maxNumericPoints]
	}
	out := make([]domain.ChartPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.ChartPoint{X: k, Y: m[k].(float64), Label: humanize(k)})
	}
	return out
}
