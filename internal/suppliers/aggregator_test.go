package suppliers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"price-reconciler-service/internal/models"
)

type stubFetcher struct {
	rows map[models.SupplierName][]Row
	errs map[models.SupplierName]error

	seenVariants map[models.SupplierName][]string
}

func (s *stubFetcher) Fetch(_ context.Context, src Source, _ string, variants []string) ([]Row, error) {
	if s.seenVariants == nil {
		s.seenVariants = make(map[models.SupplierName][]string)
	}
	s.seenVariants[src.Name] = variants
	if err := s.errs[src.Name]; err != nil {
		return nil, err
	}
	return s.rows[src.Name], nil
}

func TestSearchNormalizesQuotes(t *testing.T) {
	fetcher := &stubFetcher{
		rows: map[models.SupplierName][]Row{
			models.SupplierToolbank: {
				{"product_name": "Claw Hammer 16oz", "toolbank_actual_price": 10.0},
			},
			models.SupplierWilsons: {
				{"name": "Claw Hammer", "unit_price_in_singles": "4.99"},
			},
		},
	}
	agg := NewAggregator(fetcher)

	quotes := agg.Search(context.Background(), "5012345678900")

	if assert.Len(t, quotes, 2) {
		assert.Equal(t, models.SupplierToolbank, quotes[0].SupplierName)
		assert.Equal(t, "Claw Hammer 16oz", quotes[0].Title)
		assert.Equal(t, 10.0, quotes[0].NetPrice)
		assert.InDelta(t, 19.95, quotes[0].SuggestedRRP, 1e-9)
		assert.Equal(t, "49.9", quotes[0].Margin)

		// toolbank precedes wilsons in supplier order
		assert.Equal(t, models.SupplierWilsons, quotes[1].SupplierName)
		assert.Equal(t, 4.99, quotes[1].NetPrice)
	}

	// every source saw the variant set
	assert.Len(t, fetcher.seenVariants, len(Sources()))
	assert.Equal(t, []string{"5012345678900", "05012345678900"}, fetcher.seenVariants[models.SupplierToolbank])
}

func TestSearchSkipsFailingSource(t *testing.T) {
	fetcher := &stubFetcher{
		rows: map[models.SupplierName][]Row{
			models.SupplierToolstream: {
				{"title": "Socket Set", "net_price": 6.25},
			},
		},
		errs: map[models.SupplierName]error{
			models.SupplierStax: errors.New("relation does not exist"),
		},
	}
	agg := NewAggregator(fetcher)

	quotes := agg.Search(context.Background(), "5012345678900")

	if assert.Len(t, quotes, 1) {
		assert.Equal(t, models.SupplierToolstream, quotes[0].SupplierName)
	}
}

func TestSearchBulkHardwareFeedRRP(t *testing.T) {
	fetcher := &stubFetcher{
		rows: map[models.SupplierName][]Row{
			models.SupplierBulkHardware: {
				{"product_name": "Wood Screws 100pk", "cost_price": 2.5, "suggested_rrp": 7.99},
			},
		},
	}
	agg := NewAggregator(fetcher)

	quotes := agg.Search(context.Background(), "5012345678900")

	if assert.Len(t, quotes, 1) {
		q := quotes[0]
		assert.Equal(t, 2.5, q.NetPrice)
		assert.Equal(t, 2.5, q.CostPrice)
		// feed RRP wins over the computed one
		assert.Equal(t, 7.99, q.SuggestedRRP)
		assert.Equal(t, "68.7", q.Margin)
	}
}

func TestSearchCenturionCarriesBarcode(t *testing.T) {
	fetcher := &stubFetcher{
		rows: map[models.SupplierName][]Row{
			models.SupplierCenturion: {
				{"product": "CH100", "description": "Hinge 75mm", "nett_price": 1.2, "barcode": "5099999999991"},
			},
		},
	}
	agg := NewAggregator(fetcher)

	quotes := agg.Search(context.Background(), "CH100")

	if assert.Len(t, quotes, 1) {
		assert.Equal(t, "CH100 – Hinge 75mm", quotes[0].Title)
		assert.Equal(t, "5099999999991", quotes[0].Barcode)
	}
}

func TestSearchEmptyBarcode(t *testing.T) {
	agg := NewAggregator(&stubFetcher{})
	assert.Nil(t, agg.Search(context.Background(), "  "))
}
