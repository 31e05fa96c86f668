package gcal

import "github.com/samber/mo"

// Request is one unit of batch work. The caller owns it; BatchRequest only
// writes Event.ID, Event.EditLink and Result.
type Request struct {
	Operation Operation
	Event     *Event
	Result    Result
}

// Result is the outcome of a processed Request
type Result struct {
	// Processed is set once the request has an outcome
	Processed bool
	// Pass is true for status 200 or 201
	Pass bool
	// Status is the per-item status code; zero when the request was not
	// submitted because no concurrency token could be fetched for it
	Status int
	// AssignedID is the remote identifier given to a successful insert
	AssignedID mo.Option[string]
	// StartsAt and EndsAt echo the service's view of the event times
	StartsAt mo.Option[string]
	EndsAt   mo.Option[string]
	// Raw is the response entry, kept for diagnostics
	Raw string
}

// NewRequest is a shorthand for building a Request
func NewRequest(op Operation, event *Event) *Request {
	return &Request{Operation: op, Event: event}
}
