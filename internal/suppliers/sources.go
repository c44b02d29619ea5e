package suppliers

import (
	"strconv"
	"strings"

	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/pricing"
)

// Row is one untyped supplier record. The supplier tables are loaded from
// heterogeneous price feeds and share no schema, so rows stay as raw maps
// and each source carries its own mapper.
type Row map[string]interface{}

// Str returns the first non-empty string value among the given columns.
func (r Row) Str(columns ...string) string {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case []byte:
			if len(s) > 0 {
				return string(s)
			}
		}
	}
	return ""
}

// Float returns the first parseable numeric value among the given columns.
// Feeds store prices inconsistently as numerics or formatted strings;
// unparseable values map to 0.
func (r Row) Float(columns ...string) float64 {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int64:
			return float64(n)
		case int:
			return float64(n)
		case string:
			if f := pricing.ParsePrice(n); f != 0 {
				return f
			}
		case []byte:
			if f := pricing.ParsePrice(string(n)); f != 0 {
				return f
			}
		}
	}
	return 0
}

// Has reports whether a column holds a usable numeric value.
func (r Row) Has(column string) bool {
	v, ok := r[column]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return err == nil
	}
	return true
}

// MatchMode selects how a source's rows are matched beyond the plain
// key-column equality over barcode variants.
type MatchMode int

const (
	// MatchKeyOnly matches the key column against the barcode variants.
	MatchKeyOnly MatchMode = iota
	// MatchOtherBarcodes additionally searches a comma-packed
	// "OtherBarcodes" column with substring matches per variant.
	MatchOtherBarcodes
	// MatchProductCode additionally matches the supplier's product code
	// column, exact per variant plus substring on the raw barcode.
	MatchProductCode
)

// Source describes one supplier price table: where it lives, how to match a
// barcode against it, and how to normalize its rows into quotes.
type Source struct {
	Name      models.SupplierName
	Table     string
	KeyColumn string
	Mode      MatchMode
	Map       func(r Row) models.SupplierQuote
}

// Sources is the supplier lookup order. Results are presented in this order,
// so it is part of the tool's observable behavior and must stay stable.
func Sources() []Source {
	return []Source{
		{
			Name:      models.SupplierToolbank,
			Table:     "toolbank_prices_with_discounts",
			KeyColumn: `"RetailerBarcode"`,
			Mode:      MatchKeyOnly,
			Map: func(r Row) models.SupplierQuote {
				return models.SupplierQuote{
					Title:    r.Str("product_name", "Product Name"),
					NetPrice: pricing.Round2(r.Float("toolbank_actual_price")),
				}
			},
		},
		{
			Name:      models.SupplierHomeHardware,
			Table:     "home_hardware_prices_with_discounts",
			KeyColumn: `"RetailerBarcode"`,
			Mode:      MatchKeyOnly,
			Map: func(r Row) models.SupplierQuote {
				return models.SupplierQuote{
					Title:    r.Str("Product_Name"),
					NetPrice: pricing.Round2(r.Float("home_hardware_actual_price")),
				}
			},
		},
		{
			Name:      models.SupplierStax,
			Table:     "stax_prices",
			KeyColumn: `"Barcode"`,
			Mode:      MatchOtherBarcodes,
			Map: func(r Row) models.SupplierQuote {
				title := r.Str("Title")
				if variant := r.Str("Variant"); variant != "" {
					if title != "" {
						title = title + " – " + variant
					} else {
						title = variant
					}
				}
				return models.SupplierQuote{
					Title:    title,
					NetPrice: r.Float("YourPrice"),
				}
			},
		},
		{
			Name:      models.SupplierWilsons,
			Table:     "wilsons_prices",
			KeyColumn: "ean",
			Mode:      MatchKeyOnly,
			Map: func(r Row) models.SupplierQuote {
				return models.SupplierQuote{
					Title:    r.Str("name"),
					NetPrice: r.Float("unit_price_in_singles"),
				}
			},
		},
		{
			Name:      models.SupplierCenturion,
			Table:     "centurion_prices",
			KeyColumn: "barcode",
			Mode:      MatchProductCode,
			Map: func(r Row) models.SupplierQuote {
				title := r.Str("description")
				if code := r.Str("product"); code != "" {
					title = code + " – " + r.Str("description")
				}
				return models.SupplierQuote{
					Title:    title,
					NetPrice: r.Float("nett_price"),
					// Centurion's catalogue barcode travels with the quote
					// so the editor can adopt it for new products.
					Barcode: r.Str("barcode"),
				}
			},
		},
		{
			Name:      models.SupplierToolstream,
			Table:     "toolstream_prices",
			KeyColumn: "barcode",
			Mode:      MatchKeyOnly,
			Map: func(r Row) models.SupplierQuote {
				return models.SupplierQuote{
					Title:    r.Str("title", "name", "primary_description", "description"),
					NetPrice: r.Float("net_price"),
				}
			},
		},
		{
			Name:      models.SupplierBulkHardware,
			Table:     "bulk_hardware_prices_with_rrp",
			KeyColumn: "product_barcode",
			Mode:      MatchKeyOnly,
			Map: func(r Row) models.SupplierQuote {
				cost := r.Float("cost_price")
				q := models.SupplierQuote{
					Title:     r.Str("product_name"),
					NetPrice:  cost,
					CostPrice: cost,
				}
				// This feed carries its own recommended retail price;
				// prefer it over the computed one when present.
				if r.Has("suggested_rrp") {
					q.SuggestedRRP = r.Float("suggested_rrp")
				}
				return q
			},
		},
	}
}
