package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	maxFetchAttempts = 3
	maxRedirects     = 3
)

var errTooManyRedirects = fmt.Errorf("too many redirects (limit: %d)", maxRedirects)

// FetcherOptions configures the remote fetchers
type FetcherOptions struct {
	Timeout    time.Duration
	MaxBytes   int64
	StagingDir string
	// RetryDelay is the base back-off; attempt n waits n*RetryDelay
	RetryDelay time.Duration

	// AllowPrivateHosts permits connections to loopback, private and
	// link-local addresses
	AllowPrivateHosts bool
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = 50 * 1024 * 1024
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	return o
}

// HTTPImageFetcher downloads images over http(s) with bounded retries
type HTTPImageFetcher struct {
	client  *http.Client
	options FetcherOptions
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(options FetcherOptions) ImageFetcher {
	options = options.withDefaults()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !options.AllowPrivateHosts {
		dialer.Control = refusePrivateAddress
	}

	// Connection pooling tuned for one image per request
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   options.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		options: options,
	}
}

// FetchImage downloads imageURL into a staged file. Transport errors and 5xx
// responses are retried with linear back-off; 4xx responses are final.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (*StagedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Go-Screen-Inspector/1.0")

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*h.options.RetryDelay); err != nil {
				return nil, fmt.Errorf("fetch cancelled: %w", err)
			}
		}

		staged, retryable, err := h.try(req)
		if err == nil {
			return staged, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image: %w", lastErr)
}

// try performs one request and reports whether a failure is worth retrying
func (h *HTTPImageFetcher) try(req *http.Request) (*StagedImage, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		final := errors.Is(err, errTooManyRedirects) || errors.Is(err, ErrPrivateAddress)
		return nil, !final, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrRemoteNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.options.MaxBytes {
		return nil, false, fmt.Errorf("%w (limit: %d bytes)", ErrImageTooLarge, h.options.MaxBytes)
	}

	staged, err := stage(resp.Body, h.options.StagingDir, h.options.MaxBytes)
	if err != nil {
		return nil, !errors.Is(err, ErrImageTooLarge), err
	}
	return staged, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
