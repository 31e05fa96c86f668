package gcal

import (
	"errors"
	"fmt"

	"github.com/cyp0633/libgcal/internal/httpclient"
)

// Session setup failures
var (
	ErrTokenInvalid = errors.New("token invalid or forbidden")
	ErrTokenRevoked = errors.New("session token revoked")
	ErrNoSetup      = errors.New("account not provisioned for calendar")
)

// Batch protocol failures. Any of these aborts the whole call.
var (
	ErrCalendarInvalid  = errors.New("invalid or inaccessible calendar")
	ErrInterrupted      = errors.New("batch request interrupted")
	ErrBatchFailed      = errors.New("could not complete batch request")
	ErrEditLinks        = errors.New("could not resolve edit links")
	ErrUnknownBatchID   = errors.New("unknown batch id in response")
	ErrDuplicateBatchID = errors.New("duplicate batch id in response")
	ErrIncompleteBatch  = errors.New("batch response is missing results")
	ErrMalformedEntry   = errors.New("malformed batch response entry")
)

// Request and payload validation failures
var (
	ErrInvalidOperation = errors.New("invalid batch operation")
	ErrInvalidRequest   = errors.New("invalid batch request")
	ErrInvalidTimes     = errors.New("start time must be before end time")
	ErrAddCalendar      = errors.New("could not add calendar")
)

// Transport failures, re-exported from the transport layer
var ErrRedirectLoop = httpclient.ErrRedirectLoop

// StatusError is a terminal HTTP response with a non-success status
type StatusError = httpclient.StatusError

// InterruptedError reports a batch the service aborted partway through. It
// carries the offending response entry and the full request payload.
type InterruptedError struct {
	Entry      string
	RequestXML string
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("batch request interrupted!\n%s\n\nRequest XML:\n%s", e.Entry, e.RequestXML)
}

func (e *InterruptedError) Unwrap() error {
	return ErrInterrupted
}

// classify wraps err with sentinel when the service answered with a
// non-success status; other failures (network, redirect loop) pass through
// with context only
func classify(sentinel error, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return fmt.Errorf("%s: %w", sentinel.Error(), err)
}
