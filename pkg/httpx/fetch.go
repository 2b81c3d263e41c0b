// Package httpx provides an HTTP fetch helper with a per-attempt timeout and
// a bounded linear retry, used to mask cold-start latency of sleeping
// backends on the free hosting tier.
package httpx

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a single attempt end to end.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryDelay is the fixed wait between attempts, giving a
	// sleeping backend time to wake.
	DefaultRetryDelay = 2 * time.Second
	// DefaultRetries is the retry budget on top of the initial attempt.
	DefaultRetries = 3
)

// Error is the terminal failure after the retry budget is exhausted.
// Exactly one of IsTimeout / IsNetworkError is set.
type Error struct {
	Message        string
	IsTimeout      bool
	IsNetworkError bool
}

func (e *Error) Error() string { return e.Message }

// Options mirror the per-request knobs of a fetch call.
type Options struct {
	Method string // defaults to GET
	Body   []byte
	Header http.Header
}

// Fetcher performs fetches with timeout and bounded linear retry.
// The zero value is not usable; construct with NewFetcher.
type Fetcher struct {
	client     *http.Client
	retryDelay time.Duration
	sleep      func(time.Duration)
	log        zerolog.Logger
}

// NewFetcher returns a Fetcher with the default timeout and retry delay.
func NewFetcher(log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: DefaultTimeout},
		retryDelay: DefaultRetryDelay,
		sleep:      time.Sleep,
		log:        log,
	}
}

// WithClient swaps the underlying HTTP client. Intended for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// WithSleep swaps the inter-attempt wait function. Intended for tests.
func (f *Fetcher) WithSleep(sleep func(time.Duration)) *Fetcher {
	f.sleep = sleep
	return f
}

// Fetch performs the request, retrying timeout-class and network-class
// failures up to retries extra attempts with a fixed delay between them.
// Any other failure propagates immediately. When the budget runs out the
// last failure is surfaced as a tagged *Error. A negative retries applies
// DefaultRetries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options, retries int) (*http.Response, error) {
	if retries < 0 {
		retries = DefaultRetries
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var lastTimeout bool
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(opts.Body))
		if err != nil {
			return nil, err
		}
		for k, vs := range opts.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := f.client.Do(req)
		if err == nil {
			return resp, nil
		}

		isTimeout, isNetwork := classify(err)
		if !isTimeout && !isNetwork {
			return nil, err
		}
		lastTimeout = isTimeout

		if attempt >= retries {
			break
		}
		f.log.Warn().Err(err).
			Str("url", rawURL).
			Int("attempt", attempt+1).
			Msg("fetch failed, retrying after delay")
		f.sleep(f.retryDelay)
	}

	if lastTimeout {
		return nil, &Error{
			IsTimeout: true,
			Message:   "request timeout: the backend service is waking up, this may take up to 30 seconds",
		}
	}
	return nil, &Error{
		IsNetworkError: true,
		Message:        "network error: unable to reach the server, the service may be waking up",
	}
}

// WakeBackend pings the backend health endpoint with a retry budget of 1 and
// reports success as a boolean instead of an error.
func (f *Fetcher) WakeBackend(ctx context.Context, baseURL string) bool {
	resp, err := f.Fetch(ctx, baseURL+"/health", Options{}, 1)
	if err != nil {
		f.log.Warn().Err(err).Str("base_url", baseURL).Msg("backend wake-up ping failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// classify buckets a transport failure: timeouts and connection-level
// failures are retryable, everything else propagates.
func classify(err error) (isTimeout, isNetwork bool) {
	if errors.Is(err, context.Canceled) {
		return false, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, false
	}

	var ue *url.Error
	if !errors.As(err, &ue) {
		return false, false
	}
	if ue.Timeout() {
		return true, false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return false, true
	}
	return false, false
}
