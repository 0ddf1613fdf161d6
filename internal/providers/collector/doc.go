// Package collector is the HTTP client for the remote event collector.
//
// A batch is one multipart/form-data POST carrying one "files" part per event
// (application/octet-stream, filename = stored name) and a "deviceName" text
// field. The client does not retry on its own; callers own the attempt
// budget. It does provide:
//   - Pooled transport from go-retryablehttp
//   - Optional token-bucket rate limiting
//   - An optional circuit breaker (Options.TripAfter) that opens after
//     repeated server or transport failures
//   - Detached dispatch: once sent, a request runs to completion or its timeout
//     even if the caller's context is cancelled
//
// Example Usage:
//
//	c := collector.NewClient(collector.Options{Endpoint: url})
//	resp, err := c.Send(ctx, collector.Batch{ID: id, DeviceName: name, Files: parts})
package collector
