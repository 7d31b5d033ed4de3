/*
Package monitoring provides Prometheus metrics for the backend.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	// Record tool executions
	timer := monitoring.NewTimer(metrics, "backup", "backup.create")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
