package models

// SupplierName identifies a configured supplier price list or a scraped
// competitor source.
type SupplierName string

const (
	SupplierToolbank     SupplierName = "toolbank"
	SupplierHomeHardware SupplierName = "home_hardware"
	SupplierStax         SupplierName = "stax"
	SupplierWilsons      SupplierName = "wilsons"
	SupplierCenturion    SupplierName = "centurion"
	SupplierToolstream   SupplierName = "toolstream"
	SupplierBulkHardware SupplierName = "bulk_hardware"

	// Competitor sources appended after the supplier quotes.
	CompetitorDIY        SupplierName = "diy.com"
	CompetitorHomeDirect SupplierName = "homehardware"
)

// SupplierQuote is one normalized price quote for a barcode. Quotes are
// recomputed on every search and never persisted.
type SupplierQuote struct {
	Title        string       `json:"title"`
	NetPrice     float64      `json:"net_price"`
	SupplierName SupplierName `json:"supplier_name"`
	SuggestedRRP float64      `json:"suggested_rrp"`
	Margin       string       `json:"margin"`

	// CostPrice is set for suppliers whose unit cost differs from the
	// displayed net price (bulk_hardware).
	CostPrice float64 `json:"cost_price,omitempty"`

	// CompetitorURL is set on quotes produced by the competitor fetcher.
	CompetitorURL string `json:"competitor_url,omitempty"`

	// Barcode is the supplier's own barcode value when it differs from the
	// searched one (centurion carries its catalogue barcode through).
	Barcode string `json:"barcode,omitempty"`
}

// CompetitorQuote is the raw result of a competitor scrape. All fields are
// nullable: a failed scrape yields nil title and price with the constructed
// search URL as the fallback link.
type CompetitorQuote struct {
	Title         *string  `json:"title"`
	Price         *float64 `json:"price"`
	CompetitorURL string   `json:"competitor_url"`
}

// MatchStatus classifies a barcode lookup against the Shopify catalog.
type MatchStatus string

const (
	MatchAbsent    MatchStatus = "absent"
	MatchSingle    MatchStatus = "single"
	MatchDuplicate MatchStatus = "duplicate"
)

// CrossRefResult is the outcome of a commerce cross-reference. Variant is
// populated only for a single match; duplicates return a warning and no row
// data so the caller is forced through manual resolution.
type CrossRefResult struct {
	Status  MatchStatus    `json:"status"`
	Variant *VariantMirror `json:"variant,omitempty"`
	Warning string         `json:"warning,omitempty"`
}
