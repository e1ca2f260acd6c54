package report

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatLargeNumber renders totals the way the dashboard headline shows them:
// "1.23 Billion", "4.56 Million", or a comma-grouped integer below a million.
func FormatLargeNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2f Billion", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f Million", v/1e6)
	default:
		return printer.Sprintf("%.0f", v)
	}
}

// FormatPercent renders a growth rate with an explicit sign.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}
