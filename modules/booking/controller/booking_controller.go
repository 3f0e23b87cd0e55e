package controller

import (
	"temple-services-api/core/constants"
	"temple-services-api/core/controller"
	"temple-services-api/core/errors"
	"temple-services-api/core/utils"
	"temple-services-api/modules/booking/dto"
	"temple-services-api/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BookingController handles booking HTTP requests
type BookingController struct {
	controller.BaseController
	BookingService service.BookingService
}

// NewBookingController creates a new controller
func NewBookingController(svc service.BookingService) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		BookingService: svc,
	}
}

// getClaimsFromContext extracts the authenticated caller's claims from JWT context
func (c *BookingController) getClaimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims, nil
}

// CreateBooking handles POST /bookings
// @Summary Create a booking
// @Description Book a time slot for a temple service
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /bookings [post]
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.BookingService.CreateBooking(ctx.Request().Context(), claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, "Booking created successfully")
}

// CancelBooking handles PUT /bookings/:id/cancel
// @Summary Cancel a booking
// @Description Cancel an owned booking, freeing its time slot
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /bookings/{id}/cancel [put]
func (c *BookingController) CancelBooking(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking ID")
	}

	result, appErr := c.BookingService.CancelBooking(ctx.Request().Context(), claims.UserID, bookingID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Booking cancelled successfully")
}

// RescheduleBooking handles PUT /bookings/:id/reschedule
// @Summary Reschedule a booking
// @Description Move a booking to a new date and time slot
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RescheduleBookingRequest true "New date and time"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /bookings/{id}/reschedule [put]
func (c *BookingController) RescheduleBooking(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking ID")
	}

	var req dto.RescheduleBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.BookingService.RescheduleBooking(ctx.Request().Context(), claims.UserID, bookingID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Booking rescheduled successfully")
}

// GetBooking handles GET /bookings/:id
// @Summary Get a booking
// @Description Get a booking with temple, service and user details (owner or admin)
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingDetailResponse
// @Failure 404 {object} errors.AppError
// @Router /bookings/{id} [get]
func (c *BookingController) GetBooking(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking ID")
	}

	result, appErr := c.BookingService.GetBookingByID(ctx.Request().Context(), claims.UserID, claims.Role, bookingID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// GetMyBookings handles GET /bookings
// @Summary List own bookings
// @Description List the caller's bookings, most recent first
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status (pending, confirmed, completed, cancelled)"
// @Success 200 {array} dto.BookingResponse
// @Failure 401 {object} errors.AppError
// @Router /bookings [get]
func (c *BookingController) GetMyBookings(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.BookingService.ListUserBookings(ctx.Request().Context(), claims.UserID, ctx.QueryParam("status"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
