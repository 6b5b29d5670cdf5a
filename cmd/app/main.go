package main

import (
	_ "libres/docs"

	"libres/config"
	"libres/di"
	"libres/helper"
	"libres/shared/logger"
)

// @title Libres API
// @version 1.0
// @description Study room and equipment reservation service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	helper.AutoMigrate(cfg)

	http := di.InitializeService()
	http.Serve()
}
