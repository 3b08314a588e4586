package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "financeagent/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler      *AuthHandler
	ChatHandler      *ChatHandler
	DashboardHandler *DashboardHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "financeagent-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Conversation
	e.POST("/chat", config.ChatHandler.Chat)
	e.POST("/chat/json", config.ChatHandler.ChatJSON)
	e.GET("/chat/history/:user_id", config.ChatHandler.History)

	// Read-only views
	e.GET("/users", config.DashboardHandler.ListUsers)
	e.GET("/dashboard/:user_id", config.DashboardHandler.Dashboard)
	e.GET("/transactions/:user_id", config.DashboardHandler.Transactions)
	e.GET("/expenses/categories/:user_id", config.DashboardHandler.ExpenseCategories)

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Authenticated routes
	api.GET("/me", config.AuthHandler.Me, custommiddleware.AuthMiddleware)
}
