package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"price-reconciler-service/internal/services"
)

// CompetitorHandler handles competitor price scrape requests
type CompetitorHandler struct {
	competitorService *services.CompetitorService
}

// NewCompetitorHandler creates a new competitor handler
func NewCompetitorHandler(competitorService *services.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService}
}

// Price scrapes one competitor site for a barcode. A failed scrape still
// returns 200 with a null quote; only an unknown competitor is a client
// error.
func (h *CompetitorHandler) Price(c *gin.Context) {
	code := c.Query("barcode")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}
	competitor := c.Query("competitor")
	if competitor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "competitor is required"})
		return
	}

	quote, err := h.competitorService.FetchPrice(c.Request.Context(), code, competitor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}
