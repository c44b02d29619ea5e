package services

import (
	"context"

	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/pricing"
)

// LowMarginLister reads under-margin variants out of the mirror.
type LowMarginLister interface {
	ListLowMargin(ctx context.Context, threshold float64) ([]models.VariantMirror, error)
}

// DefaultMarginThreshold is the realized-margin fraction below which a
// listing is flagged for repricing.
const DefaultMarginThreshold = 0.4

// LowMarginRow is one flagged listing with its realized margin.
type LowMarginRow struct {
	models.VariantMirror
	Margin       string  `json:"margin"`
	SuggestedRRP float64 `json:"suggested_rrp"`
}

// ReportService produces the repricing report: every listing whose current
// price earns less than the threshold margin over recorded cost, with the
// standard markup price alongside for comparison.
type ReportService struct {
	mirror    LowMarginLister
	threshold float64
}

// NewReportService creates a new report service
func NewReportService(mirror LowMarginLister, threshold float64) *ReportService {
	if threshold <= 0 {
		threshold = DefaultMarginThreshold
	}
	return &ReportService{mirror: mirror, threshold: threshold}
}

// LowMargin lists flagged variants ordered worst-first.
func (s *ReportService) LowMargin(ctx context.Context) ([]LowMarginRow, error) {
	rows, err := s.mirror.ListLowMargin(ctx, s.threshold)
	if err != nil {
		return nil, err
	}

	out := make([]LowMarginRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, LowMarginRow{
			VariantMirror: row,
			Margin:        pricing.Margin(row.VariantPrice, row.CostPerItem),
			SuggestedRRP:  pricing.SuggestedRRP(row.CostPerItem),
		})
	}
	return out, nil
}
