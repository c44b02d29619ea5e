package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"price-reconciler-service/internal/barcode"
	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/repository"
	"price-reconciler-service/internal/services"
)

// ProductHandler handles barcode search, store lookup and save requests
type ProductHandler struct {
	searchService   *services.SearchService
	crossrefService *services.CrossRefService
	upsertService   *services.UpsertService
	logRepo         *repository.LogRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(searchService *services.SearchService, crossrefService *services.CrossRefService, upsertService *services.UpsertService, logRepo *repository.LogRepository) *ProductHandler {
	return &ProductHandler{
		searchService:   searchService,
		crossrefService: crossrefService,
		upsertService:   upsertService,
		logRepo:         logRepo,
	}
}

// Search runs the full pipeline for a barcode: supplier quotes, store
// cross-reference, form prefill and competitor quotes
func (h *ProductHandler) Search(c *gin.Context) {
	code := c.Query("barcode")
	if !barcode.IsSearchable(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode must be at least 3 characters"})
		return
	}

	// Auto-triggered searches (scanner keystrokes) only fire on a full
	// EAN-13; explicit submits search from three characters up.
	if c.Query("auto") == "true" && !barcode.IsAutoSearch(code) {
		c.JSON(http.StatusOK, gin.H{"skipped": true})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Lookup classifies a barcode against the store. mode=live walks the full
// catalog through the commerce API; the default consults the local mirror.
func (h *ProductHandler) Lookup(c *gin.Context) {
	code := c.Query("barcode")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	if c.Query("mode") == "live" {
		result, err := h.crossrefService.LookupLive(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if result.Status == models.MatchAbsent {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product does not exist yet. Will be created if saved."})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.crossrefService.LookupCached(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Upsert saves a selection to the store, creating or updating the product
func (h *ProductHandler) Upsert(c *gin.Context) {
	var sel services.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.upsertService.Upsert(c.Request.Context(), &sel)
	if errors.Is(err, services.ErrZeroPrice) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Changes returns the edit history for a variant, newest first
func (h *ProductHandler) Changes(c *gin.Context) {
	variantID := c.Query("variant_id")
	if variantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id is required"})
		return
	}

	entries, err := h.logRepo.ListChangesByVariant(c.Request.Context(), variantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": entries,
		"total":   len(entries),
	})
}
