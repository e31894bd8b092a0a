// Package fetcher retrieves raw page text over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"
)

//go:generate mockgen -source=fetcher.go -destination=../mocks/fetcher/mock_fetcher.go -package=mock_fetcher

// Fetcher performs a single blocking GET and returns the body as text.
// Implementations never retry and never cache.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// NetworkError is returned when a page could not be retrieved.
type NetworkError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: status code %d, body: %s", e.URL, e.StatusCode, e.Body)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

const maxErrorBodyLength = 256

type HTTPFetcher struct {
	httpClient *resty.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetHeader("User-Agent", "termbase")

	return &HTTPFetcher{
		httpClient: client,
	}
}

func (f *HTTPFetcher) Close() error {
	return f.httpClient.Close()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	response, err := f.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("httpClient.Get > %w", err)}
	}
	if !response.IsSuccess() {
		body := response.String()
		if len(body) > maxErrorBodyLength {
			body = body[:maxErrorBodyLength]
		}
		return "", &NetworkError{URL: url, StatusCode: response.StatusCode(), Body: body}
	}
	return response.String(), nil
}
