package repository

import (
	"context"

	"price-reconciler-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirrorRepository handles the local Shopify variant mirror
type MirrorRepository struct {
	db *gorm.DB
}

// NewMirrorRepository creates a new mirror repository
func NewMirrorRepository(db *gorm.DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

// FindByBarcodes retrieves mirror rows matching any of the given barcode
// variants. Order is stable so classification does not flap between calls.
func (r *MirrorRepository) FindByBarcodes(ctx context.Context, barcodes []string) ([]models.VariantMirror, error) {
	var rows []models.VariantMirror
	if err := r.db.WithContext(ctx).
		Where("variant_barcode IN ?", barcodes).
		Order("variant_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByVariantID retrieves a single mirror row by Shopify variant ID
func (r *MirrorRepository) GetByVariantID(ctx context.Context, variantID string) (*models.VariantMirror, error) {
	var row models.VariantMirror
	if err := r.db.WithContext(ctx).Where("variant_id = ?", variantID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes a mirror row, replacing any existing row for the same
// variant ID. Called after every successful store write so the mirror
// tracks what the store was last known to hold.
func (r *MirrorRepository) Upsert(ctx context.Context, row *models.VariantMirror) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "inventory_item_id", "variant_barcode", "title",
			"variant_price", "cost_per_item", "variant_inventory_qty",
			"handle", "last_synced_at",
		}),
	}).Create(row).Error
}

// DeleteByProductID removes all mirror rows for a Shopify product
func (r *MirrorRepository) DeleteByProductID(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.VariantMirror{}).Error
}

// DuplicateGroup is a barcode carried by more than one mirror row, with the
// competing rows attached.
type DuplicateGroup struct {
	Barcode  string                 `json:"barcode"`
	Variants []models.VariantMirror `json:"variants"`
}

// ListDuplicateGroups returns every barcode held by more than one variant,
// grouped for review. Blank barcodes are ignored; a blank is not a clash.
func (r *MirrorRepository) ListDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	var barcodes []string
	if err := r.db.WithContext(ctx).
		Model(&models.VariantMirror{}).
		Select("variant_barcode").
		Where("variant_barcode <> ''").
		Group("variant_barcode").
		Having("COUNT(*) > 1").
		Order("variant_barcode").
		Pluck("variant_barcode", &barcodes).Error; err != nil {
		return nil, err
	}

	groups := make([]DuplicateGroup, 0, len(barcodes))
	for _, b := range barcodes {
		var rows []models.VariantMirror
		if err := r.db.WithContext(ctx).
			Where("variant_barcode = ?", b).
			Order("variant_id").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		groups = append(groups, DuplicateGroup{Barcode: b, Variants: rows})
	}
	return groups, nil
}

// ListLowMargin returns variants whose realized margin against recorded cost
// falls below the threshold (a fraction, e.g. 0.4). Variants without a
// recorded cost or price are skipped; no cost means no margin to judge.
func (r *MirrorRepository) ListLowMargin(ctx context.Context, threshold float64) ([]models.VariantMirror, error) {
	var rows []models.VariantMirror
	if err := r.db.WithContext(ctx).
		Where("cost_per_item > 0 AND variant_price > 0").
		Where("(variant_price - cost_per_item) / variant_price < ?", threshold).
		Order("(variant_price - cost_per_item) / variant_price").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
