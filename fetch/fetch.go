// Package dummyfetch provides the HTTP plumbing shared by the listing sources
// and the ES-DE reference document cache.
//
// All requests go through a single Fetcher whose client retries transient
// failures (connection errors, 5xx, 429) a bounded number of times.
package dummyfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// FetchError reports a failed GET: either a transport failure (Err set) or a
// non-200 response (StatusCode set).
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dummyfetch: GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("dummyfetch: GET %s: unexpected status %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is, or wraps, a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Fetcher performs HTTP GETs for esdummy.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher that retries each request up to retries times,
// waiting between wait and 8*wait between attempts.
func NewFetcher(retries int, wait time.Duration, logger zerolog.Logger) *Fetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = wait
	rc.RetryWaitMax = 8 * wait
	rc.HTTPClient.Timeout = 5 * time.Minute
	l := logger.With().Str("component", "fetch").Logger()
	rc.Logger = &l
	return &Fetcher{client: rc.StandardClient()}
}

// NewFetcherFromClient returns a Fetcher that uses c directly. Tests pass an
// *httptest.Server client here.
func NewFetcherFromClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

// Fetch performs a GET of url and returns the complete response body. Any
// failure is reported as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
