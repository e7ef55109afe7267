package routes

import (
	"log/slog"

	"github.com/SelvaBrilyant/expense-sub001/internal/api/handlers"
	"github.com/SelvaBrilyant/expense-sub001/internal/api/middleware"
	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"
	"github.com/SelvaBrilyant/expense-sub001/internal/session"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(cfg)

	// Idle-session tracking: warn, then force a logout after the quiet period
	idle := session.NewRegistry(cfg.IdleWarningAfter(), cfg.IdleLogoutAfter(),
		func(string) {
			slog.Info("session idle, logout pending")
		},
		func(token string) {
			if err := authService.ExpireIdleSession(token); err != nil {
				slog.Error("failed to expire idle session", "error", err)
			}
		})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, idle, cfg)
	transactionHandler := handlers.NewTransactionHandler(cfg)
	categoryHandler := handlers.NewCategoryHandler(cfg)
	budgetHandler := handlers.NewBudgetHandler(cfg)
	goalHandler := handlers.NewGoalHandler(cfg)
	recurringHandler := handlers.NewRecurringHandler(cfg)
	insightsHandler := handlers.NewInsightsHandler(cfg)

	// Middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.ErrorHandler())

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Expense tracker API is running",
			})
		})

		// Auth routes (public)
		auth := api.Group("/auth")
		auth.Use(middleware.LoginRateLimit(cfg.Security.RateLimit))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService, idle))
	{
		// Auth routes (protected)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)
		protected.DELETE("/auth/me", authHandler.Deactivate)
		protected.POST("/auth/password", authHandler.ChangePassword)
		protected.POST("/auth/password/check", authHandler.CheckPassword)
		protected.GET("/auth/activity", authHandler.GetActivity)

		// Transaction routes
		transactions := protected.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.GET("/summary", transactionHandler.Summary)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.POST("", transactionHandler.Create)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		// Category routes
		categories := protected.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		// Budget routes
		budgets := protected.Group("/budgets")
		{
			budgets.GET("", budgetHandler.List)
			budgets.PUT("", budgetHandler.Set)
			budgets.GET("/status", budgetHandler.Status)
			budgets.DELETE("/:id", budgetHandler.Delete)
		}

		// Savings goal routes
		goals := protected.Group("/goals")
		{
			goals.GET("", goalHandler.List)
			goals.POST("", goalHandler.Create)
			goals.PUT("/:id", goalHandler.Update)
			goals.POST("/:id/contribute", goalHandler.Contribute)
			goals.DELETE("/:id", goalHandler.Delete)
		}

		// Recurring payment routes
		recurring := protected.Group("/recurring")
		{
			recurring.GET("", recurringHandler.List)
			recurring.POST("", recurringHandler.Create)
			recurring.PUT("/:id", recurringHandler.Update)
			recurring.DELETE("/:id", recurringHandler.Delete)
		}

		// Insights
		protected.GET("/insights", insightsHandler.Get)
	}
}
