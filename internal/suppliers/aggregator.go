package suppliers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"price-reconciler-service/internal/barcode"
	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/pricing"
	"gorm.io/gorm"
)

// Fetcher loads raw rows for one source matching a barcode. Split out so the
// aggregation logic can be tested without a database.
type Fetcher interface {
	Fetch(ctx context.Context, src Source, code string, variants []string) ([]Row, error)
}

// GormFetcher queries the supplier price tables through gorm.
type GormFetcher struct {
	db *gorm.DB
}

// NewGormFetcher creates a fetcher over the given database handle.
func NewGormFetcher(db *gorm.DB) *GormFetcher {
	return &GormFetcher{db: db}
}

// Fetch builds the per-source match query. Every source matches its key
// column against all barcode variants; some sources widen the match to
// auxiliary columns.
func (f *GormFetcher) Fetch(ctx context.Context, src Source, code string, variants []string) ([]Row, error) {
	q := f.db.WithContext(ctx).Table(src.Table).
		Where(fmt.Sprintf("%s IN ?", src.KeyColumn), variants)

	switch src.Mode {
	case MatchOtherBarcodes:
		// Multi-barcode products pack alternates into one text column.
		for _, v := range variants {
			q = q.Or(`"OtherBarcodes" ILIKE ?`, "%"+v+"%")
		}
	case MatchProductCode:
		// The supplier's own product code is searchable alongside the
		// barcode, including as a substring of the typed query.
		q = q.Or("product IN ?", variants)
		q = q.Or("product ILIKE ?", "%"+code+"%")
	}

	var rows []map[string]interface{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row(r)
	}
	return out, nil
}

// Aggregator runs a barcode across every supplier source and normalizes the
// hits into quotes.
type Aggregator struct {
	fetcher Fetcher
	sources []Source
}

// NewAggregator creates an aggregator over the default source table.
func NewAggregator(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher, sources: Sources()}
}

// Search queries every source in order and returns all quotes found. A
// failing source is logged and skipped; one broken feed must not blank the
// whole result.
func (a *Aggregator) Search(ctx context.Context, code string) []models.SupplierQuote {
	code = strings.TrimSpace(code)
	variants := barcode.Variants(code)
	if len(variants) == 0 {
		return nil
	}

	var quotes []models.SupplierQuote
	for _, src := range a.sources {
		rows, err := a.fetcher.Fetch(ctx, src, code, variants)
		if err != nil {
			log.Printf("supplier %s: query failed: %v", src.Name, err)
			continue
		}
		for _, row := range rows {
			q := src.Map(row)
			q.SupplierName = src.Name
			if q.SuggestedRRP == 0 {
				q.SuggestedRRP = pricing.SuggestedRRP(q.NetPrice)
			}
			q.Margin = pricing.Margin(q.SuggestedRRP, q.NetPrice)
			quotes = append(quotes, q)
		}
	}
	return quotes
}
