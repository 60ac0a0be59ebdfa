// Package format renders card values the way the web client shows them:
// ko-KR digit grouping, a fixed number of fraction digits, "-" for no data.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is shown instead of a value when there is no data.
const Placeholder = "-"

var printer = message.NewPrinter(language.Korean)

// Number formats v with exactly digits fraction digits.
// nil, NaN and ±Inf all render as Placeholder.
func Number(v *float64, digits int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Placeholder
	}
	if digits < 0 {
		digits = 0
	}
	return printer.Sprint(number.Decimal(*v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}
