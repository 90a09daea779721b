package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	costing *service.CostingService
	profits *service.ProfitabilityService
}

func NewCatalogHandler(
	catalog *service.CatalogService,
	costing *service.CostingService,
	profits *service.ProfitabilityService,
) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, costing: costing, profits: profits}
}

type updateCostRequest struct {
	CostPerUnit float64 `json:"cost_per_unit"`
}

func (h *CatalogHandler) GetLowStock(c *gin.Context) {
	low, err := h.catalog.LowStockIngredients(c.Request.Context(), c.Param("business_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": low, "count": len(low)})
}

func (h *CatalogHandler) UpdateIngredientCost(c *gin.Context) {
	var req updateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.UpdateIngredientCost(c.Request.Context(), c.Param("id"), req.CostPerUnit); err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	if err := h.catalog.DeleteIngredient(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) GetProductCost(c *gin.Context) {
	cost, err := h.costing.ProductCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cost)
}

// GetProfitability builds a per-product profit report. The window bounds
// come from optional `from` and `to` RFC3339 query params; an omitted
// bound is open.
func (h *CatalogHandler) GetProfitability(c *gin.Context) {
	window, err := parseReportWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.profits.Report(c.Request.Context(), c.Param("business_id"), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseReportWindow(c *gin.Context) (domain.ReportWindow, error) {
	var window domain.ReportWindow
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.ReportWindow{}, err
		}
		window.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.ReportWindow{}, err
		}
		window.To = t
	}
	return window, nil
}
