package presenter

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const TimeLayout = "02-Jan-2006 03:04 PM"

var printer = message.NewPrinter(language.English)

// Money renders v with two decimals and thousands separators: 2,785.00.
func Money(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return printer.Sprintf("%.2f", rounded)
}

// Rate renders v with four decimals and no grouping: 278.5000.
func Rate(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}

// decimal.NewFromFloat panics on NaN and Inf.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
