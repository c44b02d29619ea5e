package services

import (
	"context"
	"log"

	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/repository"
)

// DuplicateLister reads grouped duplicates out of the mirror.
type DuplicateLister interface {
	ListDuplicateGroups(ctx context.Context) ([]repository.DuplicateGroup, error)
}

// ReviewGroup is one duplicate barcode prepared for manual review. The
// cheapest variant is flagged so the reviewer can see which listing would
// undercut the others.
type ReviewGroup struct {
	Barcode         string                 `json:"barcode"`
	Variants        []models.VariantMirror `json:"variants"`
	LowestVariantID string                 `json:"lowest_variant_id"`
}

// DuplicateService supports the manual duplicate resolution flow: list the
// clashing groups, delete a chosen product from the store and the mirror,
// and log what was removed.
type DuplicateService struct {
	store  StoreClient
	lister DuplicateLister
	mirror MirrorWriter
	logs   AuditWriter
}

// NewDuplicateService creates a new duplicate service
func NewDuplicateService(store StoreClient, lister DuplicateLister, mirror MirrorWriter, logs AuditWriter) *DuplicateService {
	return &DuplicateService{store: store, lister: lister, mirror: mirror, logs: logs}
}

// ListGroups returns every duplicated barcode with its competing variants.
func (s *DuplicateService) ListGroups(ctx context.Context) ([]ReviewGroup, error) {
	groups, err := s.lister.ListDuplicateGroups(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ReviewGroup, 0, len(groups))
	for _, g := range groups {
		review := ReviewGroup{Barcode: g.Barcode, Variants: g.Variants}
		if len(g.Variants) > 0 {
			lowest := g.Variants[0]
			for _, v := range g.Variants[1:] {
				if v.VariantPrice < lowest.VariantPrice {
					lowest = v
				}
			}
			review.LowestVariantID = lowest.VariantID
		}
		out = append(out, review)
	}
	return out, nil
}

// DeleteProduct removes a product from the mirror and the store, then logs
// the removal. The mirror row goes first so a half-finished delete shows up
// as a missing row, not a stale duplicate.
func (s *DuplicateService) DeleteProduct(ctx context.Context, productID, variantID, title string) error {
	if err := s.mirror.DeleteByProductID(ctx, productID); err != nil {
		return err
	}

	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	entry := &models.DeleteLogEntry{
		ProductID: productID,
		VariantID: variantID,
		Title:     title,
	}
	if err := s.logs.RecordDelete(ctx, entry); err != nil {
		log.Printf("delete log write failed for product %s: %v", productID, err)
	}
	return nil
}
