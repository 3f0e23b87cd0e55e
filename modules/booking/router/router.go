package router

import (
	"temple-services-api/core/middleware"
	"temple-services-api/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

// BookingRouter handles booking routes
type BookingRouter struct {
	Controller *controller.BookingController
}

// NewBookingRouter creates a new router
func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{Controller: ctrl}
}

// Setup registers booking routes
func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	bookings := v1.Group("/bookings", mw.AuthMiddleware())

	bookings.POST("", r.Controller.CreateBooking)
	bookings.GET("", r.Controller.GetMyBookings)
	bookings.GET("/:id", r.Controller.GetBooking)
	bookings.PUT("/:id/cancel", r.Controller.CancelBooking)
	bookings.PUT("/:id/reschedule", r.Controller.RescheduleBooking)
}
