package routes

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"sharenest-backend/config"
	"sharenest-backend/controllers"
	"sharenest-backend/middleware"
	"sharenest-backend/models"
)

// registerValidations adds the calendar-date format rule used by booking
// and property payloads.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
	}
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires middleware and all API routes.
func SetupRouter(
	cfg config.App,
	logger *slog.Logger,
	ac *controllers.AuthController,
	uc *controllers.UserController,
	pc *controllers.PropertyController,
	bc *controllers.BookingController,
	rc *controllers.ReviewController,
) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(logger))
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins(cfg.CORSOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.RequireAuth(cfg.JWTAccessSecret)
	landlordOnly := middleware.RequireRole(models.RoleLandlord)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)
			auth.POST("/refresh-token", ac.Refresh)
			auth.POST("/forgot-password", ac.ForgotPassword)
			auth.POST("/reset-password", ac.ResetPassword)
			auth.GET("/check-email", ac.CheckEmail)
			auth.POST("/logout", authRequired, ac.Logout)
			auth.GET("/me", authRequired, ac.Me)
		}

		users := api.Group("/users")
		users.Use(authRequired)
		{
			users.GET("", uc.List)
			users.GET("/profile", uc.Profile)
			users.PUT("/profile", uc.UpdateProfile)
			users.POST("/profile/upload-image", uc.UploadImage)
			users.POST("/change-password", uc.ChangePassword)
			users.GET("/:id", uc.Get)
		}

		properties := api.Group("/properties")
		{
			properties.GET("", pc.Search)
			properties.GET("/featured", pc.Featured)
			properties.GET("/categories", pc.Categories)
			properties.GET("/cities", pc.Cities)
			properties.GET("/price-range", pc.PriceRange)
			properties.GET("/landlord/me", authRequired, landlordOnly, pc.MyProperties)
			properties.GET("/favorites/me", authRequired, pc.MyFavorites)

			properties.POST("", authRequired, landlordOnly, pc.Create)
			properties.GET("/:id", pc.Get)
			properties.PUT("/:id", authRequired, pc.Update)
			properties.DELETE("/:id", authRequired, pc.Delete)

			properties.POST("/:id/favorite", authRequired, pc.ToggleFavorite)
			properties.GET("/:id/images", pc.ListImages)
			properties.POST("/:id/images", authRequired, pc.UploadImages)
			properties.DELETE("/:id/images/:imageId", authRequired, pc.DeleteImage)
		}

		bookings := api.Group("/bookings")
		bookings.Use(authRequired)
		{
			bookings.POST("", middleware.RequireRole(models.RoleTenant), bc.Create)
			bookings.GET("", bc.List)
			bookings.GET("/:id", bc.Get)
			bookings.PUT("/:id/status", bc.UpdateStatus)
			bookings.DELETE("/:id", bc.Delete)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/property/:propertyId", rc.PropertyReviews)
			reviews.GET("/user/me/pending", authRequired, rc.PendingReviews)
			reviews.GET("/user/:userId", rc.UserReviews)
			reviews.POST("", authRequired, rc.Create)
			reviews.DELETE("/:id", authRequired, rc.Delete)
		}
	}

	return r
}
