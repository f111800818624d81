package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sharenest-backend/config"
	"sharenest-backend/controllers"
	"sharenest-backend/routes"
	"sharenest-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database connection established and migrations applied")

	notifier := services.NewSMTPNotifier(cfg)

	var imageStore services.ImageStore
	if cfg.CloudinaryCloudName != "" {
		store, err := services.NewCloudinaryStore(cfg)
		if err != nil {
			log.Fatalf("cloudinary init failed: %v", err)
		}
		imageStore = store
	} else {
		log.Println("Cloudinary not configured; image uploads will be rejected")
	}

	// Initialize services
	userService := services.NewUserService(db, imageStore)
	authService := services.NewAuthService(db, userService, notifier, cfg)
	propertyService := services.NewPropertyService(db, imageStore)
	bookingService := services.NewBookingService(db, notifier, cfg.FrontendURL)
	reviewService := services.NewReviewService(db)

	// Initialize controllers
	authController := controllers.NewAuthController(authService, userService)
	userController := controllers.NewUserController(userService)
	propertyController := controllers.NewPropertyController(propertyService)
	bookingController := controllers.NewBookingController(bookingService)
	reviewController := controllers.NewReviewController(reviewService)

	router := routes.SetupRouter(cfg, logger,
		authController, userController, propertyController, bookingController, reviewController)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
