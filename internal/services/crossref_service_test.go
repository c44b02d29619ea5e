package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"price-reconciler-service/internal/clients/shopify"
	"price-reconciler-service/internal/models"
)

type stubMirror struct {
	rows []models.VariantMirror
	err  error
}

func (s *stubMirror) FindByBarcodes(_ context.Context, _ []string) ([]models.VariantMirror, error) {
	return s.rows, s.err
}

type stubCatalog struct {
	pages []*shopify.CatalogPage
	errAt int // 1-based page index to fail on, 0 disables
	calls int
}

func (s *stubCatalog) FetchCatalogPage(_ context.Context, _ string) (*shopify.CatalogPage, error) {
	s.calls++
	if s.errAt > 0 && s.calls == s.errAt {
		return nil, errors.New("malformed catalog response: missing products")
	}
	return s.pages[s.calls-1], nil
}

func TestLookupCachedClassification(t *testing.T) {
	row := models.VariantMirror{
		VariantID:      "111",
		ProductID:      "222",
		VariantBarcode: "5012345678900",
		Title:          "Claw Hammer 16oz",
		VariantPrice:   19.95,
	}

	tests := []struct {
		name       string
		rows       []models.VariantMirror
		wantStatus models.MatchStatus
	}{
		{"no rows is absent", nil, models.MatchAbsent},
		{"one row is single", []models.VariantMirror{row}, models.MatchSingle},
		{"two rows is duplicate", []models.VariantMirror{row, row}, models.MatchDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCrossRefService(&stubMirror{rows: tt.rows}, nil)

			result, err := svc.LookupCached(context.Background(), "5012345678900")

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			if tt.wantStatus == models.MatchSingle {
				// row fields pass through unchanged
				assert.Equal(t, "111", result.Variant.VariantID)
				assert.Equal(t, "222", result.Variant.ProductID)
				assert.Equal(t, 19.95, result.Variant.VariantPrice)
			} else {
				assert.Nil(t, result.Variant)
			}
			if tt.wantStatus == models.MatchDuplicate {
				assert.Equal(t, DuplicateWarning, result.Warning)
			}
		})
	}
}

func catalogPage(hasNext bool, cursor string, products ...shopify.CatalogProduct) *shopify.CatalogPage {
	return &shopify.CatalogPage{Products: products, HasNextPage: hasNext, EndCursor: cursor}
}

func TestLookupLiveWalksAllPages(t *testing.T) {
	catalog := &stubCatalog{pages: []*shopify.CatalogPage{
		catalogPage(true, "c1", shopify.CatalogProduct{
			Title:    "Claw Hammer 16oz",
			Variants: []shopify.CatalogVariant{{Barcode: "5012345678900", Price: "19.95"}},
		}),
		catalogPage(true, "c2"),
		catalogPage(false, "", shopify.CatalogProduct{
			Title:    "Unrelated",
			Variants: []shopify.CatalogVariant{{Barcode: "5099999999991", Price: "4.95"}},
		}),
	}}
	svc := NewCrossRefService(nil, catalog)

	result, err := svc.LookupLive(context.Background(), "5012345678900")

	assert.NoError(t, err)
	// classification happens only after every page is consumed
	assert.Equal(t, 3, catalog.calls)
	assert.Equal(t, models.MatchSingle, result.Status)
	assert.Equal(t, "Claw Hammer 16oz", result.Title)
	assert.Equal(t, "19.95", result.Price)
}

func TestLookupLiveDuplicateAcrossPages(t *testing.T) {
	catalog := &stubCatalog{pages: []*shopify.CatalogPage{
		catalogPage(true, "c1", shopify.CatalogProduct{
			Title:    "Claw Hammer 16oz",
			Variants: []shopify.CatalogVariant{{Barcode: "5012345678900", Price: "19.95"}},
		}),
		catalogPage(false, "", shopify.CatalogProduct{
			Title:    "Claw Hammer 16oz Twin Pack",
			Variants: []shopify.CatalogVariant{{Barcode: "5012345678900", Price: "34.95"}},
		}),
	}}
	svc := NewCrossRefService(nil, catalog)

	result, err := svc.LookupLive(context.Background(), "5012345678900")

	assert.NoError(t, err)
	assert.Equal(t, models.MatchDuplicate, result.Status)
	assert.Empty(t, result.Title)
	assert.Equal(t, DuplicateWarning, result.Warning)
}

func TestLookupLivePageErrorIsFatal(t *testing.T) {
	catalog := &stubCatalog{
		pages: []*shopify.CatalogPage{catalogPage(true, "c1"), nil},
		errAt: 2,
	}
	svc := NewCrossRefService(nil, catalog)

	result, err := svc.LookupLive(context.Background(), "5012345678900")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 2, catalog.calls)
}

func TestLookupLiveThrottlePause(t *testing.T) {
	page := catalogPage(false, "")
	page.Throttle = &shopify.ThrottleStatus{CurrentlyAvailable: 4, RestoreRate: 50}
	catalog := &stubCatalog{pages: []*shopify.CatalogPage{page}}

	svc := NewCrossRefService(nil, catalog)
	var slept time.Duration
	svc.sleep = func(d time.Duration) { slept += d }

	_, err := svc.LookupLive(context.Background(), "5012345678900")

	assert.NoError(t, err)
	// (10 - 4) * 50ms
	assert.Equal(t, 300*time.Millisecond, slept)
}
