package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"price-reconciler-service/internal/clients/shopify"
	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/pricing"
)

// StoreClient is the commerce API surface the writer needs.
type StoreClient interface {
	GetVariant(ctx context.Context, variantID string) (*shopify.Variant, error)
	UpdateVariant(ctx context.Context, variantID string, fields map[string]interface{}) (*shopify.Variant, error)
	GetProduct(ctx context.Context, productID string) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, productID string, fields map[string]interface{}) (*shopify.Product, error)
	CreateProduct(ctx context.Context, product *shopify.NewProduct) (*shopify.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	UpdateInventoryItem(ctx context.Context, inventoryItemID string, fields map[string]interface{}) (*shopify.InventoryItem, error)
	SetOnHandQuantity(ctx context.Context, inventoryItemID, locationID string, quantity int) error
}

// MirrorWriter persists the local variant mirror.
type MirrorWriter interface {
	Upsert(ctx context.Context, row *models.VariantMirror) error
	DeleteByProductID(ctx context.Context, productID string) error
}

// AuditWriter appends to the editor log tables.
type AuditWriter interface {
	RecordCreate(ctx context.Context, entry *models.CreateLogEntry) error
	RecordChange(ctx context.Context, entry *models.ChangeLogEntry) error
	RecordDelete(ctx context.Context, entry *models.DeleteLogEntry) error
}

// Selection is the editor's chosen state for one save: the quote the user
// picked plus any manual edits. It is carried explicitly between search and
// save rather than living in ambient session state.
type Selection struct {
	Barcode         string  `json:"barcode"`
	Title           string  `json:"title"`
	Cost            float64 `json:"cost"`
	ListPrice       string  `json:"list_price"`
	SuggestedPrice  string  `json:"suggested_price"`
	VariantID       string  `json:"variant_id"`
	ProductID       string  `json:"product_id"`
	InventoryItemID string  `json:"inventory_item_id"`
	VariantBarcode  string  `json:"variant_barcode"`
	InventoryQty    *int    `json:"inventory_qty"`
}

// UpsertResult reports what the writer did.
type UpsertResult struct {
	Outcome   string `json:"outcome"` // "created" or "updated"
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
}

// ErrZeroPrice rejects saves with no usable suggested price.
var ErrZeroPrice = errors.New("suggested price cannot be zero for a new product")

// UpsertService writes a selection back to the store, refreshes the mirror
// row and appends the matching audit entry.
type UpsertService struct {
	store      StoreClient
	mirror     MirrorWriter
	logs       AuditWriter
	locationID string
}

// NewUpsertService creates a new upsert service. locationID is the store
// location that receives on-hand quantity writes; empty disables them.
func NewUpsertService(store StoreClient, mirror MirrorWriter, logs AuditWriter, locationID string) *UpsertService {
	return &UpsertService{store: store, mirror: mirror, logs: logs, locationID: locationID}
}

// Upsert creates or updates a store product from the selection. A variant ID
// that no longer exists in the store falls back to creation; any other store
// error aborts with its underlying message.
func (s *UpsertService) Upsert(ctx context.Context, sel *Selection) (*UpsertResult, error) {
	if sel.VariantID == "" {
		return s.create(ctx, sel)
	}

	variant, err := s.store.GetVariant(ctx, sel.VariantID)
	if errors.Is(err, shopify.ErrNotFound) {
		log.Printf("variant %s no longer exists, creating instead", sel.VariantID)
		return s.create(ctx, sel)
	}
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sel, variant)
}

func (s *UpsertService) create(ctx context.Context, sel *Selection) (*UpsertResult, error) {
	if pricing.ParsePrice(sel.SuggestedPrice) == 0 {
		return nil, ErrZeroPrice
	}

	barcode := sel.VariantBarcode
	if barcode == "" {
		barcode = sel.Barcode
	}

	product, err := s.store.CreateProduct(ctx, &shopify.NewProduct{
		Title: sel.Title,
		Variants: []shopify.NewVariant{{
			Price:               sel.SuggestedPrice,
			Barcode:             barcode,
			InventoryManagement: "shopify",
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(product.Variants) == 0 {
		return nil, fmt.Errorf("store returned product %d without variants", product.ID)
	}
	variant := product.Variants[0]

	productID := strconv.FormatInt(product.ID, 10)
	variantID := strconv.FormatInt(variant.ID, 10)
	inventoryItemID := strconv.FormatInt(variant.InventoryItemID, 10)

	if sel.Cost > 0 {
		if _, err := s.store.UpdateInventoryItem(ctx, inventoryItemID, map[string]interface{}{
			"cost": formatPrice(sel.Cost),
		}); err != nil {
			return nil, err
		}
	}

	if sel.InventoryQty != nil && s.locationID != "" {
		if err := s.store.SetOnHandQuantity(ctx, inventoryItemID, s.locationID, *sel.InventoryQty); err != nil {
			return nil, err
		}
	}

	qty := 0
	if sel.InventoryQty != nil {
		qty = *sel.InventoryQty
	}
	row := &models.VariantMirror{
		VariantID:           variantID,
		ProductID:           productID,
		InventoryItemID:     inventoryItemID,
		VariantBarcode:      barcode,
		Title:               sel.Title,
		VariantPrice:        pricing.ParsePrice(sel.SuggestedPrice),
		CostPerItem:         sel.Cost,
		VariantInventoryQty: qty,
		Handle:              product.Handle,
		LastSyncedAt:        time.Now(),
	}
	if err := s.mirror.Upsert(ctx, row); err != nil {
		return nil, err
	}

	entry := &models.CreateLogEntry{
		VariantID: variantID,
		ProductID: productID,
		Barcode:   barcode,
		Details:   selectionJSON(sel),
	}
	if err := s.logs.RecordCreate(ctx, entry); err != nil {
		log.Printf("create log write failed for product %s: %v", productID, err)
	}

	return &UpsertResult{Outcome: "created", ProductID: productID, VariantID: variantID}, nil
}

func (s *UpsertService) update(ctx context.Context, sel *Selection, variant *shopify.Variant) (*UpsertResult, error) {
	variantID := sel.VariantID
	productID := strconv.FormatInt(variant.ProductID, 10)
	inventoryItemID := strconv.FormatInt(variant.InventoryItemID, 10)

	// Older products predate inventory tracking; enable it once so quantity
	// writes take effect.
	if variant.InventoryManagement != "shopify" {
		if _, err := s.store.UpdateVariant(ctx, variantID, map[string]interface{}{
			"inventory_management": "shopify",
		}); err != nil {
			return nil, err
		}
	}

	// An empty suggested price means the user left pricing alone; no price
	// write is issued at all.
	if sel.SuggestedPrice != "" {
		if _, err := s.store.UpdateVariant(ctx, variantID, map[string]interface{}{
			"price": sel.SuggestedPrice,
		}); err != nil {
			return nil, err
		}
	}

	if sel.Title != "" {
		product, err := s.store.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product.Title != sel.Title {
			if _, err := s.store.UpdateProduct(ctx, productID, map[string]interface{}{
				"title": sel.Title,
			}); err != nil {
				return nil, err
			}
		}
	}

	if sel.Cost > 0 {
		if _, err := s.store.UpdateInventoryItem(ctx, inventoryItemID, map[string]interface{}{
			"cost": formatPrice(sel.Cost),
		}); err != nil {
			return nil, err
		}
	}

	if sel.InventoryQty != nil && s.locationID != "" {
		if err := s.store.SetOnHandQuantity(ctx, inventoryItemID, s.locationID, *sel.InventoryQty); err != nil {
			return nil, err
		}
	}

	price := pricing.ParsePrice(sel.SuggestedPrice)
	if sel.SuggestedPrice == "" {
		price = pricing.ParsePrice(variant.Price)
	}
	title := sel.Title
	if title == "" {
		title = variant.Title
	}
	barcode := sel.VariantBarcode
	if barcode == "" {
		barcode = variant.Barcode
	}
	qty := variant.InventoryQuantity
	if sel.InventoryQty != nil {
		qty = *sel.InventoryQty
	}

	row := &models.VariantMirror{
		VariantID:           variantID,
		ProductID:           productID,
		InventoryItemID:     inventoryItemID,
		VariantBarcode:      barcode,
		Title:               title,
		VariantPrice:        price,
		CostPerItem:         sel.Cost,
		VariantInventoryQty: qty,
		LastSyncedAt:        time.Now(),
	}
	if err := s.mirror.Upsert(ctx, row); err != nil {
		return nil, err
	}

	entry := &models.ChangeLogEntry{
		VariantID: variantID,
		ProductID: productID,
		Changes:   selectionJSON(sel),
	}
	if err := s.logs.RecordChange(ctx, entry); err != nil {
		log.Printf("change log write failed for variant %s: %v", variantID, err)
	}

	return &UpsertResult{Outcome: "updated", ProductID: productID, VariantID: variantID}, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func selectionJSON(sel *Selection) datatypes.JSON {
	data, err := json.Marshal(sel)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(data)
}
