package routes

import (
	"vendora/handlers"
	"vendora/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Register wires all endpoints of the marketplace core.
func Register(r *gin.Engine, bookingHandler *handlers.BookingHandler, orderHandler *handlers.OrderHandler) {
	r.Use(cors.Default())

	api := r.Group("/api", middleware.ActorAuthMiddleware())

	bookings := api.Group("/bookings")
	{
		bookings.POST("", bookingHandler.RequestBooking)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.GET("/:id/history", bookingHandler.GetBookingHistory)
		bookings.PUT("/:id/status", bookingHandler.TransitionBooking)
		bookings.POST("/:id/payment", bookingHandler.SubmitPaymentReference)
	}

	api.GET("/services/:id/availability", bookingHandler.CheckAvailability)

	orders := api.Group("/orders")
	{
		orders.POST("/checkout", orderHandler.Checkout)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/timeline", orderHandler.GetOrderTimeline)
	}
}
