package handlers

import (
	"errors"
	"net/http"

	"vendora/services/booking"
	"vendora/services/order"
	"vendora/utils"

	"github.com/gin-gonic/gin"
)

// statusForCode maps the stable error codes of the core services onto HTTP
// statuses.
var statusForCode = map[string]int{
	booking.CodeNotFound:          http.StatusNotFound,
	booking.CodeInvalidTransition: http.StatusBadRequest,
	booking.CodeUnauthorized:      http.StatusForbidden,
	booking.CodeSlotUnavailable:   http.StatusConflict,
	booking.CodeInvalidArgument:   http.StatusBadRequest,
	order.CodeCrossShopOrder:      http.StatusBadRequest,
	order.CodeInsufficientStock:   http.StatusBadRequest,
	order.CodeTotalMismatch:       http.StatusBadRequest,
}

// respondError translates a service error into a JSON error response,
// keeping the machine-readable code alongside the human-readable reason.
func respondError(c *gin.Context, err error) {
	var bookingErr *booking.BookingError
	if errors.As(err, &bookingErr) {
		utils.JSONErrorCode(c, statusOf(bookingErr.Code), bookingErr.Code, bookingErr.Message)
		return
	}
	var checkoutErr *order.CheckoutError
	if errors.As(err, &checkoutErr) {
		utils.JSONErrorCode(c, statusOf(checkoutErr.Code), checkoutErr.Code, checkoutErr.Message)
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}

func statusOf(code string) int {
	if status, ok := statusForCode[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
