// Package http implements the local admin API.
//
// Routes:
//
//	GET  /health   liveness
//	GET  /status   pipeline, upload and metrics snapshot
//	GET  /events   pending event files
//	POST /capture  save the latest snapshot now and start the uploader
//	PUT  /device   rename the device reported with each batch
//	GET  /metrics  Prometheus exposition
package http
