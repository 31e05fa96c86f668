package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrRedirectLoop is returned when the hop budget runs out before a
// non-redirect response arrives
var ErrRedirectLoop = errors.New("HTTP redirect too deep")

// Response is a fully read terminal response
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// URL is the final URL after redirects
	URL string
}

// Success reports a 2xx status
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns a *StatusError for non-2xx responses and nil otherwise
func (r *Response) Err() error {
	if r.Success() {
		return nil
	}
	return &StatusError{
		Code:   r.StatusCode,
		Status: r.Status,
		URL:    r.URL,
		Body:   string(r.Body),
	}
}

// StatusError is a terminal response with a non-success status
type StatusError struct {
	Code   int
	Status string
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("request to %s failed: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.Code)
}

func isRedirect(code int) bool {
	return code >= 300 && code < 400
}

// Do sends the request and follows redirects with the same method, payload
// and headers until a non-redirect response arrives or the hop budget is
// spent
func (c *httpClientWrapper) Do(ctx context.Context, method, urlStr string, body []byte, header http.Header) (*Response, error) {
	c.logger.Debug("starting request",
		"method", method,
		"url", urlStr,
		"data_length", len(body))

	target, err := c.resolveURL(urlStr)
	if err != nil {
		c.logger.Debug("failed to resolve URL", "url", urlStr, "error", err)
		return nil, err
	}

	for remaining := c.maxRedirects; ; remaining-- {
		if remaining <= 0 {
			c.logger.Debug("redirect budget exhausted",
				"method", method,
				"url", urlStr,
				"max_redirects", c.maxRedirects)
			return nil, fmt.Errorf("%w: %s %s after %d hops", ErrRedirectLoop, method, urlStr, c.maxRedirects)
		}

		resp, err := c.send(ctx, method, target, body, header)
		if err != nil {
			return nil, err
		}
		if !isRedirect(resp.StatusCode) {
			c.logger.Debug("request complete",
				"method", method,
				"url", resp.URL,
				"status", resp.Status)
			return resp, nil
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return nil, fmt.Errorf("redirect %d from %s has no Location header", resp.StatusCode, resp.URL)
		}
		next, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redirect location %q: %w", location, err)
		}
		target = target.ResolveReference(next)
		c.logger.Debug("following redirect",
			"status_code", resp.StatusCode,
			"location", target.String(),
			"remaining", remaining-1)
	}
}

func (c *httpClientWrapper) send(ctx context.Context, method string, target *url.URL, body []byte, header http.Header) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("received response", "status", resp.Status)
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		URL:        target.String(),
	}, nil
}
