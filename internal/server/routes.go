package server

import (
	"github.com/labstack/echo/v4"

	"graphrag/internal/server/middleware"
	"graphrag/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", routes.HealthHandler)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.POST("/documents", routes.UploadDocumentsHandler)
	apiRoutes.POST("/query", routes.QueryHandler)
	apiRoutes.GET("/graph", routes.GetGraphHandler)
}
