// Package api wires the HTTP server: routing, middleware and handlers
// for solving scenarios and browsing completed runs.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energyplan/internal/api/handlers"
	"energyplan/internal/api/middleware"
	"energyplan/internal/config"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.API.AllowedOrigins))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	solve := handlers.NewSolveHandler(cfg)
	runs := handlers.NewRunsHandler(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/solve", solve.Solve)
		v1.GET("/scenarios", runs.Scenarios)
		v1.GET("/runs", runs.List)
		v1.GET("/runs/:name", runs.Get)
	}
	return router
}

// Serve runs the HTTP server on the configured address.
func Serve(cfg *config.Config) error {
	return NewRouter(cfg).Run(cfg.API.Addr)
}
