/*
Package monitoring provides metrics collection for the capture pipeline.

# Overview

Prometheus metrics covering frames, save triggers, save outcomes, upload
attempts and passes, retention pruning and the admin API. Every Metrics value
owns a private registry.

# Usage

	metrics := monitoring.NewMetrics()

	metrics.RecordCapture("changed")
	metrics.RecordSave("saved", 412)
	metrics.RecordUploadAttempt("server_error")

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
