package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates gin middleware for HTTP metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// Timer measures the duration of a single tool execution
type Timer struct {
	metrics *Metrics
	service string
	tool    string
	start   time.Time
}

// NewTimer starts a timer for a tool execution
func NewTimer(metrics *Metrics, service, tool string) *Timer {
	return &Timer{
		metrics: metrics,
		service: service,
		tool:    tool,
		start:   time.Now(),
	}
}

// Stop stops the timer and records the result
func (t *Timer) Stop(status string) {
	t.metrics.RecordServiceCall(t.service, t.tool, status, time.Since(t.start))
}
