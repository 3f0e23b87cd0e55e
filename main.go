package main

import (
	"temple-services-api/core/logger"
	"temple-services-api/core/server"
)

// @title Temple Services API
// @version 1.0
// @description REST backend for the temple services marketplace booking flow

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
