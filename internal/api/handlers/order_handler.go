package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
)

type OrderHandler struct {
	orders     *service.OrderService
	production *service.ProductionService
}

func NewOrderHandler(orders *service.OrderService, production *service.ProductionService) *OrderHandler {
	return &OrderHandler{orders: orders, production: production}
}

type createOrderRequest struct {
	BusinessID string             `json:"business_id" binding:"required"`
	Lines      []domain.OrderLine `json:"lines" binding:"required"`
}

type editOrderRequest struct {
	Lines []domain.OrderLine `json:"lines" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type produceRequest struct {
	Units int `json:"units" binding:"required"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req.BusinessID, req.Lines)
	if err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) EditOrder(c *gin.Context) {
	var req editOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Edit(c.Request.Context(), c.Param("id"), req.Lines)
	if err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if err := h.orders.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.OrderCancelled)})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status: " + req.Status})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}

func (h *OrderHandler) Produce(c *gin.Context) {
	var req produceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.production.Produce(c.Request.Context(), c.Param("id"), req.Units); err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"produced": req.Units})
}

// stockErrorStatus maps domain failures to HTTP codes: not-found to 404,
// shortfalls and immutability to 409, everything else to 500.
func stockErrorStatus(err error) int {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient),
		errors.Is(err, domain.ErrOrderImmutable),
		errors.Is(err, domain.ErrIngredientInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
