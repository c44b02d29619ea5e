package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"price-reconciler-service/internal/clients/shopify"
	"price-reconciler-service/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetVariant(ctx context.Context, variantID string) (*shopify.Variant, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.Variant), args.Error(1)
}

func (m *MockStore) UpdateVariant(ctx context.Context, variantID string, fields map[string]interface{}) (*shopify.Variant, error) {
	args := m.Called(ctx, variantID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.Variant), args.Error(1)
}

func (m *MockStore) GetProduct(ctx context.Context, productID string) (*shopify.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.Product), args.Error(1)
}

func (m *MockStore) UpdateProduct(ctx context.Context, productID string, fields map[string]interface{}) (*shopify.Product, error) {
	args := m.Called(ctx, productID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.Product), args.Error(1)
}

func (m *MockStore) CreateProduct(ctx context.Context, product *shopify.NewProduct) (*shopify.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.Product), args.Error(1)
}

func (m *MockStore) DeleteProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockStore) UpdateInventoryItem(ctx context.Context, inventoryItemID string, fields map[string]interface{}) (*shopify.InventoryItem, error) {
	args := m.Called(ctx, inventoryItemID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.InventoryItem), args.Error(1)
}

func (m *MockStore) SetOnHandQuantity(ctx context.Context, inventoryItemID, locationID string, quantity int) error {
	args := m.Called(ctx, inventoryItemID, locationID, quantity)
	return args.Error(0)
}

type recordingMirror struct {
	upserts []*models.VariantMirror
	deletes []string
}

func (r *recordingMirror) Upsert(_ context.Context, row *models.VariantMirror) error {
	r.upserts = append(r.upserts, row)
	return nil
}

func (r *recordingMirror) DeleteByProductID(_ context.Context, productID string) error {
	r.deletes = append(r.deletes, productID)
	return nil
}

type recordingAudit struct {
	creates []*models.CreateLogEntry
	changes []*models.ChangeLogEntry
	deletes []*models.DeleteLogEntry
}

func (r *recordingAudit) RecordCreate(_ context.Context, e *models.CreateLogEntry) error {
	r.creates = append(r.creates, e)
	return nil
}

func (r *recordingAudit) RecordChange(_ context.Context, e *models.ChangeLogEntry) error {
	r.changes = append(r.changes, e)
	return nil
}

func (r *recordingAudit) RecordDelete(_ context.Context, e *models.DeleteLogEntry) error {
	r.deletes = append(r.deletes, e)
	return nil
}

func intPtr(v int) *int { return &v }

func TestUpsertCreateNewProduct(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewUpsertService(store, mirror, audit, "77")

	store.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *shopify.NewProduct) bool {
		return p.Title == "Claw Hammer 16oz" &&
			len(p.Variants) == 1 &&
			p.Variants[0].Price == "19.95" &&
			p.Variants[0].Barcode == "5012345678900"
	})).Return(&shopify.Product{
		ID:     222,
		Title:  "Claw Hammer 16oz",
		Handle: "claw-hammer-16oz",
		Variants: []shopify.Variant{{
			ID:              111,
			ProductID:       222,
			InventoryItemID: 333,
		}},
	}, nil)
	store.On("UpdateInventoryItem", mock.Anything, "333", map[string]interface{}{"cost": "10.00"}).
		Return(&shopify.InventoryItem{ID: 333, Cost: "10.00"}, nil)
	store.On("SetOnHandQuantity", mock.Anything, "333", "77", 5).Return(nil)

	result, err := svc.Upsert(context.Background(), &Selection{
		Barcode:        "5012345678900",
		Title:          "Claw Hammer 16oz",
		Cost:           10,
		SuggestedPrice: "19.95",
		VariantBarcode: "5012345678900",
		InventoryQty:   intPtr(5),
	})

	assert.NoError(t, err)
	assert.Equal(t, "created", result.Outcome)
	assert.Equal(t, "222", result.ProductID)
	assert.Equal(t, "111", result.VariantID)
	store.AssertExpectations(t)

	if assert.Len(t, mirror.upserts, 1) {
		row := mirror.upserts[0]
		assert.Equal(t, "111", row.VariantID)
		assert.Equal(t, "5012345678900", row.VariantBarcode)
		assert.Equal(t, 19.95, row.VariantPrice)
		assert.Equal(t, 5, row.VariantInventoryQty)
		assert.Equal(t, "claw-hammer-16oz", row.Handle)
	}
	assert.Len(t, audit.creates, 1)
	assert.Empty(t, audit.changes)
}

func TestUpsertCreateRejectsZeroPrice(t *testing.T) {
	store := new(MockStore)
	svc := NewUpsertService(store, &recordingMirror{}, &recordingAudit{}, "")

	_, err := svc.Upsert(context.Background(), &Selection{Title: "Hammer", SuggestedPrice: "0.00"})

	assert.ErrorIs(t, err, ErrZeroPrice)
	store.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestUpsertUpdateEmptyPriceSkipsPriceWrite(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewUpsertService(store, mirror, audit, "")

	store.On("GetVariant", mock.Anything, "111").Return(&shopify.Variant{
		ID:                  111,
		ProductID:           222,
		Title:               "Claw Hammer 16oz",
		Barcode:             "5012345678900",
		Price:               "17.50",
		InventoryItemID:     333,
		InventoryManagement: "shopify",
		InventoryQuantity:   3,
	}, nil)
	store.On("GetProduct", mock.Anything, "222").Return(&shopify.Product{
		ID: 222, Title: "Claw Hammer 16oz",
	}, nil)

	result, err := svc.Upsert(context.Background(), &Selection{
		VariantID:      "111",
		Title:          "Claw Hammer 16oz",
		SuggestedPrice: "",
	})

	assert.NoError(t, err)
	assert.Equal(t, "updated", result.Outcome)
	// no price write and no title write were issued
	store.AssertNotCalled(t, "UpdateVariant", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)

	// mirror keeps the store's existing price
	if assert.Len(t, mirror.upserts, 1) {
		assert.Equal(t, 17.50, mirror.upserts[0].VariantPrice)
	}
	assert.Len(t, audit.changes, 1)
}

func TestUpsertUpdateWritesChangedFields(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewUpsertService(store, mirror, audit, "77")

	store.On("GetVariant", mock.Anything, "111").Return(&shopify.Variant{
		ID:                  111,
		ProductID:           222,
		Barcode:             "5012345678900",
		Price:               "17.50",
		InventoryItemID:     333,
		InventoryManagement: "", // tracking not yet enabled
	}, nil)
	store.On("UpdateVariant", mock.Anything, "111", map[string]interface{}{"inventory_management": "shopify"}).
		Return(&shopify.Variant{ID: 111}, nil)
	store.On("UpdateVariant", mock.Anything, "111", map[string]interface{}{"price": "19.95"}).
		Return(&shopify.Variant{ID: 111}, nil)
	store.On("GetProduct", mock.Anything, "222").Return(&shopify.Product{
		ID: 222, Title: "Old Title",
	}, nil)
	store.On("UpdateProduct", mock.Anything, "222", map[string]interface{}{"title": "New Title"}).
		Return(&shopify.Product{ID: 222, Title: "New Title"}, nil)
	store.On("UpdateInventoryItem", mock.Anything, "333", map[string]interface{}{"cost": "10.00"}).
		Return(&shopify.InventoryItem{ID: 333}, nil)
	store.On("SetOnHandQuantity", mock.Anything, "333", "77", 8).Return(nil)

	result, err := svc.Upsert(context.Background(), &Selection{
		VariantID:      "111",
		Title:          "New Title",
		Cost:           10,
		SuggestedPrice: "19.95",
		InventoryQty:   intPtr(8),
	})

	assert.NoError(t, err)
	assert.Equal(t, "updated", result.Outcome)
	store.AssertExpectations(t)

	if assert.Len(t, mirror.upserts, 1) {
		row := mirror.upserts[0]
		assert.Equal(t, "New Title", row.Title)
		assert.Equal(t, 19.95, row.VariantPrice)
		assert.Equal(t, 8, row.VariantInventoryQty)
	}
}

func TestUpsertMissingVariantFallsBackToCreate(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewUpsertService(store, mirror, audit, "")

	store.On("GetVariant", mock.Anything, "999").Return(nil, shopify.ErrNotFound)
	store.On("CreateProduct", mock.Anything, mock.Anything).Return(&shopify.Product{
		ID:       222,
		Variants: []shopify.Variant{{ID: 111, ProductID: 222, InventoryItemID: 333}},
	}, nil)

	result, err := svc.Upsert(context.Background(), &Selection{
		VariantID:      "999",
		Title:          "Hammer",
		SuggestedPrice: "19.95",
		Barcode:        "5012345678900",
	})

	assert.NoError(t, err)
	assert.Equal(t, "created", result.Outcome)
	assert.Len(t, audit.creates, 1)
}
