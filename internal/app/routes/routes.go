package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldir/internal/app/controllers"
	"github.com/yigit/schooldir/internal/middleware"
)

// Options are the per-route limits taken from the server config.
type Options struct {
	// MaxUploadBytes caps the body of POST /api/schools.
	MaxUploadBytes int64
	// CreateRateLimit is the number of POST /api/schools requests allowed per
	// second for one client IP.
	CreateRateLimit int
}

// AllowedMethods lists the methods served on each API path. Requests with
// any other method get 405 with these in the Allow header.
var AllowedMethods = map[string][]string{
	"/api/schools": {"GET", "POST"},
	"/api/health":  {"GET"},
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	schoolController *controllers.SchoolController,
	healthController *controllers.HealthController,
	opts Options,
) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(middleware.MethodNotAllowed(AllowedMethods))
	router.NoRoute(middleware.NotFound())

	api := router.Group("/api")

	api.GET("/health", healthController.Health)

	schools := api.Group("/schools")
	{
		schools.GET("", schoolController.ListSchools)
		schools.POST("",
			middleware.RateLimiter(opts.CreateRateLimit),
			middleware.SizeLimit(opts.MaxUploadBytes),
			schoolController.CreateSchool,
		)
	}
}
