package web

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const notAvailable = "N/A"

var printer = message.NewPrinter(language.MustParse("en-AU"))

// Currency renders whole Australian dollars, e.g. $1,010,000.
func Currency(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-" + printer.Sprintf("$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

// CurrencyPtr is Currency with N/A for a missing value.
func CurrencyPtr(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return Currency(*v)
}

// Percent renders a fractional rate with two decimals: 0.055 -> 5.50%.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// Number groups thousands and keeps up to three fraction digits.
func Number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	s := printer.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func NumberPtr(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return Number(*v)
}

func LandSize(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return Number(*v) + " m²"
}

// Date renders a sale date as DD/MM/YYYY, falling back to the raw text
// when it does not parse.
func Date(v *string) string {
	if v == nil || *v == "" {
		return notAvailable
	}
	t, err := dateparse.ParseAny(*v)
	if err != nil {
		return *v
	}
	return t.Format("02/01/2006")
}

func LastUpdated(t time.Time) string {
	return t.Format("2 January 2006, 03:04 pm")
}

// Tick labels the y axis: $250k above a thousand, $N below.
func Tick(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("$%.0fk", v/1000)
	}
	return fmt.Sprintf("$%.0f", v)
}

func text(v *string) string {
	if v == nil || *v == "" {
		return notAvailable
	}
	return *v
}
