package services

import (
	"context"
	"log"
	"time"

	"price-reconciler-service/internal/clients/shopify"
	"price-reconciler-service/internal/models"
)

// MirrorStore is the mirror-table access the cross-reference needs.
type MirrorStore interface {
	FindByBarcodes(ctx context.Context, barcodes []string) ([]models.VariantMirror, error)
}

// CatalogSource pages through the live store catalog.
type CatalogSource interface {
	FetchCatalogPage(ctx context.Context, cursor string) (*shopify.CatalogPage, error)
}

// DuplicateWarning is shown whenever a barcode matches more than one
// product. The match data is withheld on purpose; duplicates go through
// manual resolution, never an automatic pick.
const DuplicateWarning = "Duplicate products found. Use the duplicate editor to resolve."

// throttleFloor is the available-request budget below which the catalog
// walk pauses to let the bucket refill.
const throttleFloor = 10

// LiveMatch is one catalog hit from the live path. Prices stay as the
// decimal strings the API returns.
type LiveMatch struct {
	Title        string `json:"title"`
	VariantPrice string `json:"variant_price"`
}

// LiveResult classifies a live catalog lookup.
type LiveResult struct {
	Status  models.MatchStatus `json:"status"`
	Title   string             `json:"title,omitempty"`
	Price   string             `json:"variant_price,omitempty"`
	Warning string             `json:"warning,omitempty"`
}

// CrossRefService resolves a barcode against the store catalog, either
// through the local mirror or by walking the live catalog.
type CrossRefService struct {
	mirror  MirrorStore
	catalog CatalogSource

	// sleep is swapped out in tests so throttle pauses can be observed
	// without waiting them out.
	sleep func(time.Duration)
}

// NewCrossRefService creates a new cross-reference service
func NewCrossRefService(mirror MirrorStore, catalog CatalogSource) *CrossRefService {
	return &CrossRefService{
		mirror:  mirror,
		catalog: catalog,
		sleep:   time.Sleep,
	}
}

// LookupCached classifies a barcode against the local mirror table. The
// mirror can drift from the live catalog; this path trades accuracy for a
// single indexed query.
func (s *CrossRefService) LookupCached(ctx context.Context, code string) (*models.CrossRefResult, error) {
	rows, err := s.mirror.FindByBarcodes(ctx, []string{code})
	if err != nil {
		return nil, err
	}

	switch len(rows) {
	case 0:
		return &models.CrossRefResult{Status: models.MatchAbsent}, nil
	case 1:
		row := rows[0]
		return &models.CrossRefResult{Status: models.MatchSingle, Variant: &row}, nil
	default:
		return &models.CrossRefResult{Status: models.MatchDuplicate, Warning: DuplicateWarning}, nil
	}
}

// LookupLive walks the entire catalog page by page and classifies every
// variant whose barcode equals the query. All pages are consumed before
// classification; a mid-walk error aborts the lookup rather than returning
// a partial answer.
func (s *CrossRefService) LookupLive(ctx context.Context, code string) (*LiveResult, error) {
	var matches []LiveMatch

	cursor := ""
	for {
		page, err := s.catalog.FetchCatalogPage(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, product := range page.Products {
			for _, variant := range product.Variants {
				if variant.Barcode == code {
					matches = append(matches, LiveMatch{
						Title:        product.Title,
						VariantPrice: variant.Price,
					})
				}
			}
		}

		if t := page.Throttle; t != nil && t.CurrentlyAvailable < throttleFloor {
			delay := time.Duration((throttleFloor-t.CurrentlyAvailable)*t.RestoreRate) * time.Millisecond
			log.Printf("catalog walk throttled, pausing %s (available=%.0f)", delay, t.CurrentlyAvailable)
			s.sleep(delay)
		}

		if !page.HasNextPage {
			break
		}
		cursor = page.EndCursor
	}

	switch len(matches) {
	case 0:
		return &LiveResult{Status: models.MatchAbsent}, nil
	case 1:
		return &LiveResult{
			Status: models.MatchSingle,
			Title:  matches[0].Title,
			Price:  matches[0].VariantPrice,
		}, nil
	default:
		return &LiveResult{Status: models.MatchDuplicate, Warning: DuplicateWarning}, nil
	}
}
