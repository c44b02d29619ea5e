package services

import (
	"context"
	"log"
	"strconv"
	"sync/atomic"

	"price-reconciler-service/internal/models"
)

// QuoteSource aggregates supplier quotes for a barcode.
type QuoteSource interface {
	Search(ctx context.Context, code string) []models.SupplierQuote
}

// CompetitorSource fetches a competitor quote for a barcode.
type CompetitorSource interface {
	FetchPrice(ctx context.Context, barcode, competitor string) (*models.CompetitorQuote, error)
}

// CachedCrossRef classifies a barcode against the local mirror.
type CachedCrossRef interface {
	LookupCached(ctx context.Context, code string) (*models.CrossRefResult, error)
}

// Store presence messages surfaced with a search.
const (
	MsgNotInStore = "This product does not yet exist in the store."
)

// SearchResult is the full state of one barcode search: every quote found,
// the store classification, and the editor form prefilled from both. The
// token makes overlapping searches safe; a result whose token is no longer
// current is marked stale and must be discarded by the caller.
type SearchResult struct {
	Token     uint64                 `json:"token"`
	Stale     bool                   `json:"stale"`
	Barcode   string                 `json:"barcode"`
	Quotes    []models.SupplierQuote `json:"quotes"`
	Match     *models.CrossRefResult `json:"match"`
	Selection Selection              `json:"selection"`
	Message   string                 `json:"message,omitempty"`
}

// SearchService runs the whole search pipeline for one barcode: supplier
// aggregation, store cross-reference, form prefill, then competitor quotes
// appended last.
type SearchService struct {
	quotes      QuoteSource
	crossref    CachedCrossRef
	competitors CompetitorSource

	seq atomic.Uint64
}

// NewSearchService creates a new search service
func NewSearchService(quotes QuoteSource, crossref CachedCrossRef, competitors CompetitorSource) *SearchService {
	return &SearchService{quotes: quotes, crossref: crossref, competitors: competitors}
}

// Search executes the pipeline for one barcode. Supplier and competitor
// lookups run sequentially; partial supplier failure is tolerated upstream,
// and competitor failures contribute nothing rather than failing the search.
func (s *SearchService) Search(ctx context.Context, code string) (*SearchResult, error) {
	token := s.seq.Add(1)

	result := &SearchResult{
		Token:   token,
		Barcode: code,
		Selection: Selection{
			Barcode:        code,
			VariantBarcode: code,
		},
	}

	result.Quotes = s.quotes.Search(ctx, code)

	// A supplier that publishes its own catalogue barcode overrides the
	// searched one for new-product creation.
	for _, q := range result.Quotes {
		if q.SupplierName == models.SupplierCenturion && q.Barcode != "" {
			result.Selection.VariantBarcode = q.Barcode
			break
		}
	}
	if len(result.Quotes) > 0 {
		result.Selection.Title = result.Quotes[0].Title
	}

	match, err := s.crossref.LookupCached(ctx, code)
	if err != nil {
		return nil, err
	}
	result.Match = match

	switch match.Status {
	case models.MatchSingle:
		v := match.Variant
		result.Selection.VariantID = v.VariantID
		result.Selection.ProductID = v.ProductID
		result.Selection.InventoryItemID = v.InventoryItemID
		if v.Title != "" {
			result.Selection.Title = v.Title
		}
		result.Selection.Cost = v.CostPerItem
		result.Selection.SuggestedPrice = strconv.FormatFloat(v.VariantPrice, 'f', 2, 64)
		result.Selection.InventoryQty = &v.VariantInventoryQty
	case models.MatchAbsent:
		result.Message = MsgNotInStore
	case models.MatchDuplicate:
		result.Message = match.Warning
	}

	s.appendCompetitor(ctx, result, CompetitorDIY, models.CompetitorDIY, "DIY.com")
	s.appendCompetitor(ctx, result, CompetitorHomeHardware, models.CompetitorHomeDirect, "Home Hardware")

	if token != s.seq.Load() {
		result.Stale = true
	}
	return result, nil
}

// appendCompetitor turns a scrape result into a quote row. A quote with
// neither title nor price is dropped entirely; the user sees nothing rather
// than an empty row. Competitor rows carry no cost, so the margin column
// shows a placeholder and a missing title falls back to the site name.
func (s *SearchService) appendCompetitor(ctx context.Context, result *SearchResult, competitor string, name models.SupplierName, fallbackTitle string) {
	quote, err := s.competitors.FetchPrice(ctx, result.Barcode, competitor)
	if err != nil {
		log.Printf("competitor %s lookup failed for %s: %v", competitor, result.Barcode, err)
		return
	}
	if quote.Title == nil && quote.Price == nil {
		return
	}

	row := models.SupplierQuote{
		Title:         fallbackTitle,
		SupplierName:  name,
		Margin:        "—",
		CompetitorURL: quote.CompetitorURL,
	}
	if quote.Title != nil && *quote.Title != "" {
		row.Title = *quote.Title
	}
	if quote.Price != nil {
		// Competitor quotes carry a retail price, not a cost, so the
		// scraped price stands in for the suggested RRP.
		row.SuggestedRRP = *quote.Price
	}
	result.Quotes = append(result.Quotes, row)
}
