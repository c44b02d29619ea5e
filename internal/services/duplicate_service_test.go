package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/repository"
)

type stubLister struct {
	groups []repository.DuplicateGroup
	err    error
}

func (s *stubLister) ListDuplicateGroups(_ context.Context) ([]repository.DuplicateGroup, error) {
	return s.groups, s.err
}

func TestListGroupsFlagsCheapestVariant(t *testing.T) {
	lister := &stubLister{groups: []repository.DuplicateGroup{{
		Barcode: "5012345678900",
		Variants: []models.VariantMirror{
			{VariantID: "111", VariantPrice: 19.95},
			{VariantID: "112", VariantPrice: 14.50},
			{VariantID: "113", VariantPrice: 21.00},
		},
	}}}
	svc := NewDuplicateService(nil, lister, nil, nil)

	groups, err := svc.ListGroups(context.Background())

	assert.NoError(t, err)
	if assert.Len(t, groups, 1) {
		assert.Equal(t, "5012345678900", groups[0].Barcode)
		assert.Equal(t, "112", groups[0].LowestVariantID)
		assert.Len(t, groups[0].Variants, 3)
	}
}

func TestDeleteProductRemovesMirrorStoreAndLogs(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewDuplicateService(store, &stubLister{}, mirror, audit)

	store.On("DeleteProduct", mock.Anything, "222").Return(nil)

	err := svc.DeleteProduct(context.Background(), "222", "111", "Claw Hammer 16oz")

	assert.NoError(t, err)
	store.AssertExpectations(t)
	assert.Equal(t, []string{"222"}, mirror.deletes)
	if assert.Len(t, audit.deletes, 1) {
		assert.Equal(t, "222", audit.deletes[0].ProductID)
		assert.Equal(t, "Claw Hammer 16oz", audit.deletes[0].Title)
	}
}

func TestDeleteProductStoreFailureStopsLogging(t *testing.T) {
	store := new(MockStore)
	mirror := &recordingMirror{}
	audit := &recordingAudit{}
	svc := NewDuplicateService(store, &stubLister{}, mirror, audit)

	store.On("DeleteProduct", mock.Anything, "222").Return(errors.New("api unavailable"))

	err := svc.DeleteProduct(context.Background(), "222", "111", "Claw Hammer 16oz")

	assert.Error(t, err)
	assert.Empty(t, audit.deletes)
}
