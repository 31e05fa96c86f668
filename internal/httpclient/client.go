package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// DefaultMaxRedirects is the hop budget used when none is configured
const DefaultMaxRedirects = 10

// HttpClientWrapper dispatches requests against the calendar service,
// following redirects itself so that method, payload and headers survive
// every hop
type HttpClientWrapper interface {
	// Do returns the first non-redirect response, whatever its status
	Do(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error)
	// Dispatch is Do plus a status check: non-2xx responses become *StatusError
	Dispatch(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error)
	Get(ctx context.Context, url string, header http.Header) (*Response, error)
	Post(ctx context.Context, url string, body []byte, header http.Header) (*Response, error)
}

type httpClientWrapper struct {
	client       *http.Client
	baseURL      url.URL
	logger       *slog.Logger
	maxRedirects int
}

// resolveURL resolves a URL string against the base URL
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// NewHttpClientWrapper creates a new client wrapper. The client's own
// redirect handling is disabled; maxRedirects <= 0 selects
// DefaultMaxRedirects.
func NewHttpClientWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger, maxRedirects int) (HttpClientWrapper, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &httpClientWrapper{
		client:       client,
		baseURL:      baseURL,
		logger:       logger,
		maxRedirects: maxRedirects,
	}, nil
}

func (c *httpClientWrapper) Dispatch(ctx context.Context, method, urlStr string, body []byte, header http.Header) (*Response, error) {
	resp, err := c.Do(ctx, method, urlStr, body, header)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		c.logger.Debug("unexpected status code",
			"method", method,
			"url", resp.URL,
			"status_code", resp.StatusCode)
		return nil, err
	}
	return resp, nil
}

func (c *httpClientWrapper) Get(ctx context.Context, urlStr string, header http.Header) (*Response, error) {
	return c.Dispatch(ctx, http.MethodGet, urlStr, nil, header)
}

func (c *httpClientWrapper) Post(ctx context.Context, urlStr string, body []byte, header http.Header) (*Response, error) {
	return c.Dispatch(ctx, http.MethodPost, urlStr, body, header)
}
