package handlers

import (
	"net/http"
	"time"

	"vendora/models"
	"vendora/services/booking"

	"github.com/gin-gonic/gin"
)

// BookingHandler adapts the booking engine onto HTTP. It only binds input,
// resolves the actor from the auth middleware and maps errors; every rule
// lives in the service.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// RequestBooking handles POST /api/bookings.
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var input struct {
		ServiceID string    `json:"serviceId" binding:"required"`
		Instant   time.Time `json:"instant" binding:"required"`
		SlotLabel string    `json:"slotLabel"`
		Location  string    `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	record, err := h.Svc.RequestBooking(c.Request.Context(), booking.RequestBookingInput{
		CustomerID: c.GetString("actorID"),
		ServiceID:  input.ServiceID,
		Instant:    input.Instant.UTC(),
		SlotLabel:  input.SlotLabel,
		Location:   models.ServiceLocation(input.Location),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// TransitionBooking handles PUT /api/bookings/:id/status.
func (h *BookingHandler) TransitionBooking(c *gin.Context) {
	var input struct {
		Status       string     `json:"status" binding:"required"`
		Reason       string     `json:"reason"`
		ProposedDate *time.Time `json:"proposedDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	record, err := h.Svc.TransitionBooking(c.Request.Context(), booking.TransitionInput{
		BookingID:    c.Param("id"),
		ActorID:      c.GetString("actorID"),
		ActorRole:    models.ActorRole(c.GetString("actorRole")),
		TargetStatus: input.Status,
		Reason:       input.Reason,
		ProposedDate: input.ProposedDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// CheckAvailability handles GET /api/services/:id/availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	instantStr := c.Query("instant")
	instant, err := time.Parse(time.RFC3339, instantStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid instant, expected RFC3339"})
		return
	}

	available, err := h.Svc.CheckAvailability(c.Request.Context(), c.Param("id"), instant.UTC(), c.Query("slotLabel"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

// SubmitPaymentReference handles POST /api/bookings/:id/payment.
func (h *BookingHandler) SubmitPaymentReference(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	record, err := h.Svc.SubmitPaymentReference(c.Request.Context(), c.Param("id"), c.GetString("actorID"), input.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	record, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetBookingHistory handles GET /api/bookings/:id/history.
func (h *BookingHandler) GetBookingHistory(c *gin.Context) {
	entries, err := h.Svc.GetBookingHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
