package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polasekp/strats/internal/core/ports"
)

type errorResponse struct {
	Error string `json:"error"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

type successResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func newSuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, successResponse{Message: message, Data: data})
}

// metricsMiddleware records every request against the route template, so
// /activities/:id stays one series regardless of the id.
func metricsMiddleware(metrics ports.MetricsPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), start)
	}
}
