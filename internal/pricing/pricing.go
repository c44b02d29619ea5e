// Package pricing holds the fixed markup policy: 60% markup, a further 20%
// loading, rounded up to the next whole pound minus 5p. The formulas must
// match the legacy editor exactly for price parity.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// SuggestedRRP computes the retail price for a supplier net price. A zero or
// non-numeric net price yields 0.
func SuggestedRRP(netPrice float64) float64 {
	if netPrice == 0 || math.IsNaN(netPrice) {
		return 0
	}
	return math.Ceil(netPrice*1.6*1.2) - 0.05
}

// Margin returns the percentage gap between RRP and net price, formatted to
// one decimal place. A zero RRP produces the degenerate NaN/Inf rendering the
// legacy tool produced; callers are expected to not feed it one.
func Margin(suggestedRRP, netPrice float64) string {
	return strconv.FormatFloat((suggestedRRP-netPrice)/suggestedRRP*100, 'f', 1, 64)
}

// ParsePrice parses a supplier price field that may be currency formatted
// ("£1,234.50"). Unparseable values map to 0, matching the aggregator's
// treatment of missing prices.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Round2 rounds a price to two decimal places. The toolbank feed carries
// more precision than the editor displays or stores.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
