// Package barcode produces the barcode variants probed against supplier
// price lists. Suppliers are inconsistent about leading zeros and field
// width, so every lookup fans out over the raw value, the value with leading
// zeros stripped, and the value with one zero prepended.
package barcode

import "strings"

const (
	// MinSearchLength is the shortest input that triggers a search.
	MinSearchLength = 3
	// AutoSearchLength is the EAN-13 length that triggers an automatic
	// search as the user types or scans.
	AutoSearchLength = 13
)

// Variants returns the ordered, de-duplicated set of lookup variants for a
// barcode. An empty input yields no variants.
func Variants(b string) []string {
	if b == "" {
		return nil
	}

	candidates := []string{b, strings.TrimLeft(b, "0"), "0" + b}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}

// IsSearchable reports whether a barcode is long enough to search for.
func IsSearchable(b string) bool {
	return len(b) >= MinSearchLength
}

// IsAutoSearch reports whether a barcode should trigger a search without an
// explicit submit.
func IsAutoSearch(b string) bool {
	return len(b) == AutoSearchLength
}
