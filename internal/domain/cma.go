package domain

import (
	"encoding/json"
	"time"
)

// RawResponse is the upstream CMA payload as decoded from JSON. Its shape is
// not trusted anywhere past the adapter.
type RawResponse map[string]any

type ViewModel struct {
	Suburb        *string      `json:"suburb,omitempty"`
	Postcode      *string      `json:"postcode,omitempty"`
	MedianPrice   *float64     `json:"medianPrice,omitempty"`
	GrowthRate    *float64     `json:"growthRate,omitempty"`
	PropertyCount *float64     `json:"propertyCount,omitempty"`
	State         *string      `json:"state,omitempty"`
	Region        *string      `json:"region,omitempty"`
	Comparables   []Comparable `json:"comparables"`
	ChartData     []ChartPoint `json:"chartData"`
	LastUpdated   time.Time    `json:"lastUpdated"`
}

// Comparable is one sale record. Extra carries every field of the upstream
// item, including the ones that were normalized.
type Comparable struct {
	ID           *string
	Address      *string
	Price        *float64
	Date         *string
	Bedrooms     *float64
	Bathrooms    *float64
	LandSize     *float64
	PropertyType *string
	Extra        map[string]any
}

// MarshalJSON flattens Extra next to the normalized fields; normalized fields
// win on key collisions.
func (c Comparable) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+8)
	for k, v := range c.Extra {
		out[k] = v
	}
	for k, v := range c.Normalized() {
		out[k] = v
	}
	return json.Marshal(out)
}

func (c *Comparable) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var n struct {
		ID           *string  `json:"id"`
		Address      *string  `json:"address"`
		Price        *float64 `json:"price"`
		Date         *string  `json:"date"`
		Bedrooms     *float64 `json:"bedrooms"`
		Bathrooms    *float64 `json:"bathrooms"`
		LandSize     *float64 `json:"landSize"`
		PropertyType *string  `json:"propertyType"`
	}
	// extras may hold non-normalized shapes under the same keys; ignore type errors
	_ = json.Unmarshal(b, &n)
	*c = Comparable{
		ID: n.ID, Address: n.Address, Price: n.Price, Date: n.Date,
		Bedrooms: n.Bedrooms, Bathrooms: n.Bathrooms, LandSize: n.LandSize,
		PropertyType: n.PropertyType, Extra: raw,
	}
	return nil
}

// Normalized returns the defined normalized fields keyed by their view names.
func (c Comparable) Normalized() map[string]any {
	m := make(map[string]any, 8)
	put := func(k string, v any) { m[k] = v }
	if c.ID != nil {
		put("id", *c.ID)
	}
	if c.Address != nil {
		put("address", *c.Address)
	}
	if c.Price != nil {
		put("price", *c.Price)
	}
	if c.Date != nil {
		put("date", *c.Date)
	}
	if c.Bedrooms != nil {
		put("bedrooms", *c.Bedrooms)
	}
	if c.Bathrooms != nil {
		put("bathrooms", *c.Bathrooms)
	}
	if c.LandSize != nil {
		put("landSize", *c.LandSize)
	}
	if c.PropertyType != nil {
		put("propertyType", *c.PropertyType)
	}
	return m
}

type ChartPoint struct {
	X     string  `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// CachedResponse is what the CMA cache persists per ID. Timestamp is unix ms.
type CachedResponse struct {
	Data      RawResponse `json:"data"`
	Timestamp int64       `json:"timestamp"`
}
