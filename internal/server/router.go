package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fuzumoe/crawlplan-backend/internal/middleware"
)

// RouteRegistrar defines anything that can wire its routes into a Gin group.
type RouteRegistrar interface {
	// RegisterRoutes should add one or more routes on the provided router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegisterRoutes wires up health, metrics, swagger, public, and protected routes.
func RegisterRoutes(
	r *gin.Engine,
	jwtSecret string,
	healthReg RouteRegistrar,
	publicRegs []RouteRegistrar,
	protectedRegs []RouteRegistrar,
) {
	// Global middleware
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to CrawlPlan Backend!"})
	})

	if healthReg != nil {
		healthReg.RegisterRoutes(&r.RouterGroup)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public API v1
	public := r.Group("/api/v1")
	for _, reg := range publicRegs {
		reg.RegisterRoutes(public)
	}

	// Protected API v1: session control requires a bearer token.
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(jwtSecret))
	for _, reg := range protectedRegs {
		reg.RegisterRoutes(protected)
	}
}
