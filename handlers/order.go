package handlers

import (
	"net/http"

	"vendora/services/order"

	"github.com/gin-gonic/gin"
)

// OrderHandler adapts the checkout transaction onto HTTP.
type OrderHandler struct {
	Svc order.OrderService
}

func NewOrderHandler(svc order.OrderService) *OrderHandler {
	return &OrderHandler{Svc: svc}
}

// Checkout handles POST /api/orders/checkout.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input struct {
		ShopID         string               `json:"shopId" binding:"required"`
		Lines          []order.CheckoutLine `json:"lines" binding:"required"`
		Discount       float64              `json:"discount"`
		DeclaredTotal  float64              `json:"declaredTotal"`
		DeliveryMethod string               `json:"deliveryMethod"`
		PaymentMethod  string               `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	record, err := h.Svc.Checkout(c.Request.Context(), order.CheckoutInput{
		CustomerID:     c.GetString("actorID"),
		ShopID:         input.ShopID,
		Lines:          input.Lines,
		Discount:       input.Discount,
		DeclaredTotal:  input.DeclaredTotal,
		DeliveryMethod: input.DeliveryMethod,
		PaymentMethod:  input.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetOrder handles GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	record, err := h.Svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetOrderTimeline handles GET /api/orders/:id/timeline.
func (h *OrderHandler) GetOrderTimeline(c *gin.Context) {
	updates, err := h.Svc.GetOrderTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": updates})
}
