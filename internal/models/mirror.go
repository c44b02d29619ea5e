package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VariantMirror is the local cache of a Shopify variant, refreshed on every
// write. The invariant the editor tries to maintain is at most one row per
// barcode; violations are surfaced as duplicates, never auto-resolved.
type VariantMirror struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	VariantID       string `gorm:"type:varchar(64);not null;uniqueIndex:idx_shopify_products_variant" json:"variant_id"`
	ProductID       string `gorm:"type:varchar(64);not null;index:idx_shopify_products_product" json:"product_id"`
	InventoryItemID string `gorm:"type:varchar(64)" json:"inventory_item_id"`

	VariantBarcode string `gorm:"type:varchar(32);index:idx_shopify_products_barcode" json:"variant_barcode"`

	Title               string  `gorm:"type:varchar(500)" json:"title"`
	VariantPrice        float64 `json:"variant_price"`
	CostPerItem         float64 `json:"cost_per_item"`
	VariantInventoryQty int     `json:"variant_inventory_qty"`
	Handle              string  `gorm:"type:varchar(255)" json:"handle"`

	LastSyncedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"last_synced_at"`
}

// TableName specifies the table name for VariantMirror
func (VariantMirror) TableName() string {
	return "shopify_products"
}

// CreateLogEntry records a product created through the editor. Append-only.
type CreateLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VariantID string         `gorm:"type:varchar(64)" json:"variant_id"`
	ProductID string         `gorm:"type:varchar(64)" json:"product_id"`
	Barcode   string         `gorm:"type:varchar(32)" json:"barcode"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for CreateLogEntry
func (CreateLogEntry) TableName() string {
	return "product_editor_creates"
}

// ChangeLogEntry records one successful update to an existing product.
// Entries are written once per save and never mutated; they are an audit
// trail, not a source of truth.
type ChangeLogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VariantID string         `gorm:"type:varchar(64);index:idx_editor_changes_variant" json:"variant_id"`
	ProductID string         `gorm:"type:varchar(64)" json:"product_id"`
	Changes   datatypes.JSON `gorm:"type:jsonb" json:"changes"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for ChangeLogEntry
func (ChangeLogEntry) TableName() string {
	return "product_editor_changes"
}

// DeleteLogEntry records a product removed during duplicate resolution.
type DeleteLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID string    `gorm:"type:varchar(64)" json:"product_id"`
	VariantID string    `gorm:"type:varchar(64)" json:"variant_id"`
	Title     string    `gorm:"type:varchar(500)" json:"title"`
	DeletedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"deleted_at"`
}

// TableName specifies the table name for DeleteLogEntry
func (DeleteLogEntry) TableName() string {
	return "product_editor_deletes"
}
