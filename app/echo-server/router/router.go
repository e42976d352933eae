package router

import (
	"homeMatch/internal/middleware"
	"homeMatch/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendRoutes(api *echo.Group, handler *rest.RecommendHandler) {
	reco := api.Group("/recommendations", middleware.AuthMiddleware())
	reco.GET("", handler.Recommend)
	reco.GET("/debug", handler.DebugRecommend)
	reco.POST("/feedback", handler.Feedback)
}

func SetExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	exp := api.Group("/experiments", middleware.AuthMiddleware())
	exp.GET("/assignment", handler.GetAssignment)
}

func SetEngineAdminRoutes(api *echo.Group, handler *rest.EngineAdminHandler) {

	admin := api.Group("/admin/engine", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)
	admin.GET("/onboarding", handler.GetOnboarding)
	admin.PUT("/onboarding", handler.UpsertOnboarding)
}
