package router

import (
	"timele/internal/middleware"
	"timele/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetPredictionRoutes(api *echo.Group, handler *rest.PredictionHandler) {
	predictions := api.Group("/predictions", middleware.AuthMiddleware())
	predictions.GET("", handler.Predict)
	predictions.GET("/evaluation", handler.Evaluate)
}

func SetPredictionAdminRoutes(api *echo.Group, handler *rest.PredictionAdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/models", handler.GetModels)
	admin.POST("/models/reload", handler.ReloadModels)
	admin.POST("/evaluation", handler.EvaluateBatch)
}
