package gcal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cyp0633/libgcal/internal/httpclient"
	"github.com/cyp0633/libgcal/internal/xml"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the calendar service host
const DefaultBaseURL = "https://www.google.com"

// Collection paths
const (
	BasePath             = "/calendar/feeds/default/"
	OwnedCalendarsPath   = BasePath + "owncalendars/full"
	PrivateCalendarsPath = BasePath + "private/full"
	AllCalendarsPath     = BasePath + "allcalendars/full"
	BatchSuffix          = "/batch"
)

// Config holds configuration for a Session
type Config struct {
	BaseURL string
	// Client is copied, never modified. Its Transport is wrapped with the
	// session's authorization.
	Client *http.Client
	Logger *slog.Logger
	// Timeout bounds each HTTP exchange; zero keeps the client's own timeout
	Timeout      time.Duration
	MaxRedirects int
	// TokenSource, when set, authorizes requests with OAuth2 bearer tokens
	// instead of the AuthSub session token
	TokenSource oauth2.TokenSource
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Client:       http.DefaultClient,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxRedirects: httpclient.DefaultMaxRedirects,
	}
}

// Session is an authenticated connection to the calendar service. All
// operations are synchronous and serialized, so a Session may be shared
// between goroutines.
type Session struct {
	mu     sync.Mutex
	http   httpclient.HttpClientWrapper
	logger *slog.Logger
}

// NewSession creates a session for an AuthSub session token
func NewSession(token string) (*Session, error) {
	return NewSessionWithConfig(token, DefaultConfig())
}

// NewSessionWithConfig allows injecting custom configuration. token may be
// empty when cfg.TokenSource is set.
func NewSessionWithConfig(token string, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if token == "" && cfg.TokenSource == nil {
		return nil, fmt.Errorf("token is required")
	}
	logger := loggerOrDiscard(cfg.Logger)

	var authorize func(http.RoundTripper) http.RoundTripper
	if cfg.TokenSource != nil {
		authorize = func(base http.RoundTripper) http.RoundTripper {
			return &oauth2.Transport{Source: cfg.TokenSource, Base: httpclient.NewLoggingTransport(base, logger)}
		}
	} else {
		authorize = func(base http.RoundTripper) http.RoundTripper {
			return httpclient.NewAuthSubTransport(token, base, logger)
		}
	}

	wrapper, err := newWrapper(cfg, logger, authorize)
	if err != nil {
		return nil, err
	}
	return &Session{http: wrapper, logger: logger}, nil
}

func newWrapper(cfg *Config, logger *slog.Logger, authorize func(http.RoundTripper) http.RoundTripper) (httpclient.HttpClientWrapper, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	// Preserve an existing transport if present
	client := &http.Client{}
	if cfg.Client != nil {
		*client = *cfg.Client
	}
	client.Transport = authorize(client.Transport)
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}

	wrapper, err := httpclient.NewHttpClientWrapper(client, *u, logger, cfg.MaxRedirects)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client wrapper: %w", err)
	}
	return wrapper, nil
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func (s *Session) header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", xml.ContentTypeAtom)
	return h
}

// AddCalendar creates calendar in the user's owned calendars and returns the
// path of its events feed
func (s *Session) AddCalendar(ctx context.Context, calendar *Calendar) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := calendar.encode().WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("failed to serialize calendar: %w", err)
	}
	resp, err := s.http.Post(ctx, OwnedCalendarsPath, body, s.header())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAddCalendar, err)
	}
	path, err := calendar.processAddResponse(resp.Body)
	if err != nil {
		return "", err
	}
	s.logger.Debug("added calendar", "title", calendar.Title, "path", path)
	return path, nil
}

// DeleteCalendar deletes calendar at its edit path. The service answers 400
// when asked to delete the account's primary calendar; that is reported as
// success since there is nothing more the caller can do.
func (s *Session) DeleteCalendar(ctx context.Context, calendar *Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if calendar.EditPath == "" {
		return fmt.Errorf("calendar %q has no edit path", calendar.Title)
	}
	resp, err := s.http.Do(ctx, http.MethodDelete, calendar.EditPath, nil, s.header())
	if err != nil {
		return err
	}
	switch {
	case resp.Success():
		s.logger.Debug("deleted calendar", "edit_path", calendar.EditPath)
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		s.logger.Debug("calendar cannot be deleted", "edit_path", calendar.EditPath)
		return nil
	default:
		return resp.Err()
	}
}

// ListOptions selects which calendars GetCalendarList returns
type ListOptions struct {
	// AllCalendars includes subscribed calendars, not just owned ones
	AllCalendars bool
}

// GetCalendarList lists the user's calendars
func (s *Session) GetCalendarList(ctx context.Context, opts ListOptions) ([]*Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feedURL := OwnedCalendarsPath
	if opts.AllCalendars {
		feedURL = AllCalendarsPath
	}
	resp, err := s.http.Do(ctx, http.MethodGet, feedURL, nil, s.header())
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrNoSetup
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrTokenRevoked
	case !resp.Success():
		return nil, resp.Err()
	}

	_, entries, err := xml.ParseFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar list: %w", err)
	}
	calendars := make([]*Calendar, 0, len(entries))
	for _, entry := range entries {
		calendars = append(calendars, decodeCalendar(entry))
	}
	s.logger.Debug("listed calendars", "feed", feedURL, "count", len(calendars))
	return calendars, nil
}
