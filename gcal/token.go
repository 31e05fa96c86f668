package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cyp0633/libgcal/internal/httpclient"
)

// SessionTokenPath exchanges a single-use AuthSub token for a session token
const SessionTokenPath = "/accounts/AuthSubSessionToken"

// GetSessionToken upgrades a single-use AuthSub token to a session token
// usable with NewSession. A forbidden answer yields ErrTokenInvalid.
func GetSessionToken(ctx context.Context, authToken string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if authToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}
	logger := loggerOrDiscard(cfg.Logger)
	wrapper, err := newWrapper(cfg, logger, func(base http.RoundTripper) http.RoundTripper {
		return httpclient.NewAuthSubTransport(authToken, base, logger)
	})
	if err != nil {
		return "", err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := wrapper.Get(ctx, SessionTokenPath, header)
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusForbidden:
		return "", ErrTokenInvalid
	case errors.As(err, &statusErr):
		return "", fmt.Errorf("error getting session token: %s\n%s", statusErr.Status, statusErr.Body)
	case err != nil:
		return "", err
	}

	body := string(resp.Body)
	token := strings.TrimSpace(body[strings.LastIndex(body, "=")+1:])
	if token == "" {
		return "", fmt.Errorf("no session token in response")
	}
	return token, nil
}
