package booking

import (
	"temple-services-api/core/database"
	"temple-services-api/core/middleware"
	"temple-services-api/modules/booking/controller"
	"temple-services-api/modules/booking/repository"
	"temple-services-api/modules/booking/router"
	"temple-services-api/modules/booking/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the booking module and registers routes
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, events service.TaskPublisher) {
	repo := repository.NewBookingRepository(db)
	svc := service.NewBookingService(repo, events)
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Setup(e, mw)
}
