package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/pkg/metrics"
)

// Metrics observes per-request latency. Routes are labelled by their route
// template so /api/prompts/:id stays a single series regardless of the id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched requests (404s) have no template.
			route = c.Request.URL.Path
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(started).Seconds())
	}
}
