package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// AuthSubHeader formats an Authorization header value for an AuthSub token
func AuthSubHeader(token string) string {
	return fmt.Sprintf("AuthSub token=%q", token)
}

// AuthSubTransport implements http.RoundTripper and adds the AuthSub
// Authorization header to outgoing requests.
type AuthSubTransport struct {
	Token     string
	Transport http.RoundTripper
}

// NewAuthSubTransport creates a new AuthSubTransport. Requests and responses
// are logged through logger at debug level. If transport is nil,
// http.DefaultTransport will be used.
func NewAuthSubTransport(token string, transport http.RoundTripper, logger *slog.Logger) *AuthSubTransport {
	return &AuthSubTransport{
		Token:     token,
		Transport: NewLoggingTransport(transport, logger),
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AuthSubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Token == "" {
		return nil, errors.New("AuthSub token cannot be empty")
	}
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	// A RoundTripper must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", AuthSubHeader(t.Token))
	return t.Transport.RoundTrip(req)
}

// LoggingTransport logs request and response bodies at debug level
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewLoggingTransport wraps transport, defaulting to http.DefaultTransport
// and a discarding logger
func NewLoggingTransport(transport http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingTransport{Transport: transport, Logger: logger}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody := ""
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			reqBody = string(bodyBytes)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
		}
	}

	t.Logger.Debug("outgoing request",
		"method", req.Method,
		"url", req.URL.String(),
		"headers", redactHeaders(req.Header),
		"body", reqBody)

	resp, err := t.Transport.RoundTrip(req)

	if err == nil && resp != nil {
		respBody := ""
		if resp.Body != nil {
			bodyBytes, err := io.ReadAll(resp.Body)
			if err == nil {
				respBody = string(bodyBytes)
				resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
			}
		}

		t.Logger.Debug("incoming response",
			"status", resp.Status,
			"headers", resp.Header,
			"body", respBody)
	}

	return resp, err
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "REDACTED")
	}
	return out
}
