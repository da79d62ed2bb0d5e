package server

import (
	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	eventHandler *handlers.EventHandler,
	historyHandler *handlers.HistoryHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	suggestionsRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)

	api := e.Group("/api/v1", authRateLimiter, authMiddleware)

	sessions := api.Group("/sessions")
	sessions.POST("", sessionHandler.Create)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.DELETE("/:id", sessionHandler.Delete)
	sessions.POST("/:id/reload", sessionHandler.Reload)
	sessions.GET("/:id/stream", sessionHandler.Stream)
	sessions.PUT("/:id/event", sessionHandler.SelectEvent)
	sessions.POST("/:id/categories/:categoryId/toggle", sessionHandler.ToggleCategory)
	sessions.DELETE("/:id/categories", sessionHandler.ClearCategories)
	sessions.POST("/:id/suggestions", sessionHandler.Fire, suggestionsRateLimiter)
	sessions.DELETE("/:id/suggestions", sessionHandler.Abort)

	events := api.Group("/events")
	events.POST("", eventHandler.Create)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)

	history := api.Group("/suggestions/history")
	history.GET("", historyHandler.List)
	history.GET("/:id", historyHandler.Get)
}
