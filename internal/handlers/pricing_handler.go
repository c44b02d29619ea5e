package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"price-reconciler-service/internal/pricing"
	"price-reconciler-service/internal/services"
)

// PricingHandler exposes the markup calculator and the repricing report
type PricingHandler struct {
	reportService *services.ReportService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(reportService *services.ReportService) *PricingHandler {
	return &PricingHandler{reportService: reportService}
}

// Suggest applies the standard markup policy to a net price
func (h *PricingHandler) Suggest(c *gin.Context) {
	net, err := strconv.ParseFloat(c.Query("net"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "net must be a number"})
		return
	}

	rrp := pricing.SuggestedRRP(net)
	c.JSON(http.StatusOK, gin.H{
		"net_price":     net,
		"suggested_rrp": rrp,
		"margin":        pricing.Margin(rrp, net),
	})
}

// LowMargin lists listings earning under the margin threshold, worst first
func (h *PricingHandler) LowMargin(c *gin.Context) {
	rows, err := h.reportService.LowMargin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": rows,
		"total":    len(rows),
	})
}
