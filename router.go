package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/controllers"
	"github.com/roadcheck/inspection-api/middleware"
)

// setupRouter wires middleware and every route of the API.
func setupRouter(cfg *config.Config, log *slog.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Observe(log))
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
	}

	protected := v1.Group("")
	if cfg.AuthEnabled() {
		jwtValidator, err := middleware.NewTokenValidator(cfg)
		if err != nil {
			return nil, err
		}
		protected.Use(middleware.EnsureValidToken(jwtValidator))
	}

	inspections := protected.Group("/inspections")
	{
		inspections.POST("", controllers.CreateInspection)
		inspections.GET("/:id", controllers.GetUserInspections) // :id is the owner's user id here
		inspections.GET("/single/:id", controllers.GetInspection)
		inspections.DELETE("/:id", controllers.DeleteInspection)

		inspections.POST("/:id/images/upload-url", controllers.CreateImageUploadURL)
		inspections.POST("/:id/images", controllers.RegisterImage)
		inspections.GET("/:id/images", controllers.ListImages)
	}

	admin := protected.Group("/admin")
	{
		admin.GET("/check/:userId", controllers.CheckAdmin)
		admin.GET("/inspections/:userId", controllers.GetAllInspections)
		admin.PUT("/inspections/:id", controllers.UpdateInspection)
		admin.DELETE("/inspections/:id", controllers.DeleteInspectionAsAdmin)
		admin.GET("/stats/:userId", controllers.GetStats)
		admin.GET("/defective-items-stats/:userId", controllers.GetDefectiveItemsStats)
		admin.GET("/users/:userId", controllers.GetUsers)
		admin.PUT("/users/:userId/role", controllers.UpdateUserRole)
		admin.POST("/promote-admin", controllers.PromoteAdmin)
	}

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}
