package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"energyplan/internal/log"
)

// Logger logs one line per request through the global zerolog logger.
func Logger() gin.HandlerFunc {
	logger := log.With("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
