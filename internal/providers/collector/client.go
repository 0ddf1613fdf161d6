package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/resilience"
)

const (
	FieldFiles      = "files"
	FieldDeviceName = "deviceName"
	HeaderBatchID   = "X-Batch-ID"

	contentTypeBinary = "application/octet-stream"
	userAgent         = "uicapture/1.0"
)

// errServerStatus marks a 5xx response so the breaker counts it as a failure
var errServerStatus = errors.New("server error status")

// Options configures a Client
type Options struct {
	Endpoint    string
	Timeout     time.Duration
	RateLimit   float64       // requests per second, 0 = unlimited
	TripAfter   uint32        // consecutive failures that open the breaker, 0 disables it
	OpenTimeout time.Duration // how long the breaker stays open
	Logger      *zap.Logger
}

// DefaultOptions returns production defaults for endpoint
func DefaultOptions(endpoint string) Options {
	return Options{
		Endpoint:    endpoint,
		Timeout:     30 * time.Second,
		OpenTimeout: 5 * time.Minute,
	}
}

// Part is one file in a batch
type Part struct {
	Name string
	Data []byte
}

// Batch is one upload request
type Batch struct {
	ID         string
	DeviceName string
	Files      []Part
}

// Response summarises the collector reply
type Response struct {
	Status   int
	Body     string
	Duration time.Duration
}

// Success reports a 2xx status
func (r *Response) Success() bool { return r.Status >= 200 && r.Status < 300 }

// ServerError reports a 5xx status
func (r *Response) ServerError() bool { return r.Status >= 500 && r.Status < 600 }

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewClient creates a collector client
func NewClient(opts Options) *Client {
	defaults := DefaultOptions(opts.Endpoint)
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaults.OpenTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("collector")

	// Pooled transport only; attempts are counted by the caller.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetTransport(retryClient.HTTPClient.Transport)

	c := &Client{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		logger:   logger,
		resty:    restyClient,
	}
	if opts.TripAfter > 0 {
		c.breaker = newBreaker(opts.TripAfter, opts.OpenTimeout, logger)
	}
	c.SetRateLimit(opts.RateLimit)
	return c
}

func newBreaker(tripAfter uint32, openTimeout time.Duration, logger *zap.Logger) *resilience.Breaker {
	return resilience.New("collector", resilience.Settings{
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Endpoint returns the collector URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// BreakerState returns the current circuit breaker state. A disabled
// breaker reports closed.
func (c *Client) BreakerState() resilience.State {
	if c.breaker == nil {
		return resilience.StateClosed
	}
	return c.breaker.State()
}

// Send posts one batch. A non-nil Response is returned for every HTTP reply,
// including 4xx and 5xx; err is set only when no reply was received.
func (c *Client) Send(ctx context.Context, batch Batch) (*Response, error) {
	if len(batch.Files) == 0 {
		return nil, fmt.Errorf("collector: empty batch")
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("collector: rate limit: %w", err)
	}

	// Dispatched requests are not aborted by the caller.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req := c.resty.R().
		SetContext(callCtx).
		SetHeader(HeaderBatchID, batch.ID).
		SetFormData(map[string]string{FieldDeviceName: batch.DeviceName})
	for _, f := range batch.Files {
		req.SetMultipartField(FieldFiles, f.Name, contentTypeBinary, bytes.NewReader(f.Data))
	}

	start := time.Now()
	post := func() (*resty.Response, error) {
		resp, err := req.Post(c.endpoint)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	}
	var (
		resp *resty.Response
		err  error
	)
	if c.breaker != nil {
		resp, err = resilience.Execute(c.breaker, post)
	} else {
		resp, err = post()
	}
	if err != nil && !errors.Is(err, errServerStatus) {
		return nil, fmt.Errorf("collector: post: %w", err)
	}

	out := &Response{
		Status:   resp.StatusCode(),
		Body:     resp.String(),
		Duration: time.Since(start),
	}
	c.logger.Debug("Batch posted",
		zap.String("batch_id", batch.ID),
		zap.Int("files", len(batch.Files)),
		zap.Int("status", out.Status),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}
