package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rese02/pradell-booking-sub000/config"
	"github.com/rese02/pradell-booking-sub000/controllers"
	"github.com/rese02/pradell-booking-sub000/routes"
	"github.com/rese02/pradell-booking-sub000/services"
	"github.com/rese02/pradell-booking-sub000/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	// Connect database (config.ConnectDatabase sets config.DB)
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied")

	uploadsDir := utils.EnvOrDefault("UPLOADS_DIR", "uploads")

	// Initialize stores and services
	store := services.NewGormBookingStore(db)
	artifacts := services.NewDiskArtifactStore(uploadsDir)
	bookingService := services.NewBookingService(store, artifacts)
	intakeService := services.NewIntakeService(store, artifacts)

	// Initialize controllers
	intakeController := controllers.NewIntakeController(intakeService)
	bookingController := controllers.NewBookingController(bookingService)
	authController := controllers.NewAuthController(db)

	// Build router
	router := routes.SetupRouter(intakeController, bookingController, authController, uploadsDir)

	// Port from env (prefer), fallback to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
