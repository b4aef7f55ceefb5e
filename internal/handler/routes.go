package handler

import (
	"gagyebu/internal/middleware"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rl *middleware.RateLimiter, ledgerHandler *LedgerHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	api.GET("/ledger", ledgerHandler.GetLedger)

	// Mutating routes are rate limited per client
	mutate := api.Group("")
	mutate.Use(middleware.RateLimitMiddleware(rl))
	mutate.POST("/expenses", ledgerHandler.AddExpense)
	mutate.DELETE("/expenses/:id", ledgerHandler.DeleteExpense)
	mutate.POST("/ledger/reset", ledgerHandler.Reset)

	// Live snapshot stream
	e.GET("/ws", wsHandler.HandleWS)
}
