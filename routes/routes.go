package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rese02/pradell-booking-sub000/controllers"
	"github.com/rese02/pradell-booking-sub000/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
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

// SetupRouter wires the controllers into the HTTP surface.
func SetupRouter(
	ic *controllers.IntakeController,
	bc *controllers.BookingController,
	ac *controllers.AuthController,
	uploadsDir string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.MaxMultipartMemory = 12 << 20
	r.Static("/uploads", uploadsDir)

	origins := parseCorsOrigins()
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
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Guest intake (capability link, no auth)
		guest := api.Group("/guest")
		{
			guest.GET("/:token", ic.GetSession)
			guest.POST("/:token/steps/:step", ic.SubmitStep)
		}

		// Admin bookings
		bookings := api.Group("/bookings")
		{
			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)

			// must come before /:id
			bookings.GET("/stats", bc.GetBookingStats)

			bookings.GET("/:id", bc.GetBookingDetails)
			bookings.DELETE("/:id", bc.DeleteBooking)
			bookings.POST("/:id/cancel", bc.CancelBooking)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", ac.Login)
		}
	}

	return r
}
