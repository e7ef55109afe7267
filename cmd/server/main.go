package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SelvaBrilyant/expense-sub001/internal/api/routes"
	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"
	"github.com/SelvaBrilyant/expense-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := models.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Clean out stale sessions from previous runs
	authService := services.NewAuthService(cfg)
	if err := authService.DeleteExpiredSessions(); err != nil {
		log.Printf("Warning: Failed to delete expired sessions: %v", err)
	}

	// Start the recurring payment runner
	runner := services.NewRecurringRunner(cfg)
	if err := runner.Start(); err != nil {
		log.Fatalf("Failed to start recurring payment runner: %v", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// Setup routes
	routes.SetupRoutes(r, cfg)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "API endpoint not found"})
	})

	// Stop the runner cleanly on shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		runner.Stop()
		os.Exit(0)
	}()

	// Run server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting expense tracker server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
