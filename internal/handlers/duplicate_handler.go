package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"price-reconciler-service/internal/services"
)

// DuplicateHandler handles the manual duplicate resolution flow
type DuplicateHandler struct {
	duplicateService *services.DuplicateService
}

// NewDuplicateHandler creates a new duplicate handler
func NewDuplicateHandler(duplicateService *services.DuplicateService) *DuplicateHandler {
	return &DuplicateHandler{duplicateService: duplicateService}
}

// List returns every duplicated barcode with its competing variants
func (h *DuplicateHandler) List(c *gin.Context) {
	groups, err := h.duplicateService.ListGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}

// deleteRequest identifies the product being removed
type deleteRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
}

// Delete removes one product from the store and the mirror
func (h *DuplicateHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing product_id"})
		return
	}

	if err := h.duplicateService.DeleteProduct(c.Request.Context(), req.ProductID, req.VariantID, req.Title); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted product " + req.ProductID})
}
