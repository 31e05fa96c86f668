package gcal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyp0633/libgcal/internal/xml"
	"github.com/google/uuid"
)

// MaxBatchSize is the most entries the service accepts in one batch
const MaxBatchSize = 50

// BatchRequest runs requests against the events feed at feedPath (the
// default private feed when empty). Duplicates are dropped, the rest is sent
// in chunks of MaxBatchSize, and the processed requests are returned in
// submission order with their Result filled in.
//
// Per-item failures are reported through Result.Pass. An error means a chunk
// could not be completed; processing stops there and no results are
// returned.
func (s *Session) BatchRequest(ctx context.Context, requests []*Request, feedPath string) ([]*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if feedPath == "" {
		feedPath = PrivateCalendarsPath
	}
	unique := dedupe(requests)
	results := make([]*Request, 0, len(unique))
	for _, chunk := range chunks(unique, MaxBatchSize) {
		if err := s.doBatchRequest(ctx, chunk, feedPath); err != nil {
			return nil, err
		}
		results = append(results, chunk...)
	}
	return results, nil
}

// dedupe drops repeated requests, by identity and by (operation, event),
// keeping first occurrences in order
func dedupe(requests []*Request) []*Request {
	type key struct {
		op    Operation
		event *Event
	}
	seen := make(map[*Request]struct{}, len(requests))
	seenKeys := make(map[key]struct{}, len(requests))
	out := make([]*Request, 0, len(requests))
	for _, req := range requests {
		if _, ok := seen[req]; ok {
			continue
		}
		seen[req] = struct{}{}
		if req != nil {
			k := key{op: req.Operation, event: req.Event}
			if _, ok := seenKeys[k]; ok {
				continue
			}
			seenKeys[k] = struct{}{}
		}
		out = append(out, req)
	}
	return out
}

func chunks(requests []*Request, size int) [][]*Request {
	var out [][]*Request
	for start := 0; start < len(requests); start += size {
		end := min(start+size, len(requests))
		out = append(out, requests[start:end])
	}
	return out
}

func validateRequest(req *Request, i int) error {
	if req == nil {
		return fmt.Errorf("%w: request %d is nil", ErrInvalidRequest, i)
	}
	if !req.Operation.Valid() {
		return fmt.Errorf("%w: request %d: %d", ErrInvalidOperation, i, int(req.Operation))
	}
	if req.Event == nil {
		return fmt.Errorf("%w: request %d has no event", ErrInvalidRequest, i)
	}
	return nil
}

func (s *Session) doBatchRequest(ctx context.Context, chunk []*Request, feedPath string) error {
	logger := s.logger.With("batch", uuid.NewString(), "size", len(chunk))
	batchURL := feedPath + BatchSuffix

	for i, req := range chunk {
		if err := validateRequest(req, i); err != nil {
			return err
		}
	}

	unresolved, err := s.resolveEditLinks(ctx, chunk, batchURL, logger)
	if err != nil {
		return err
	}
	submit := make([]*Request, 0, len(chunk))
	for i, req := range chunk {
		if _, ok := unresolved[i]; !ok {
			submit = append(submit, req)
		}
	}

	if len(submit) > 0 {
		if err := s.submitBatch(ctx, submit, batchURL, logger); err != nil {
			return err
		}
	}
	// Requests without a concurrency token were never sent
	for i := range unresolved {
		chunk[i].Result = Result{Processed: true}
	}

	logBatchOutcome(logger, chunk)
	return nil
}

// submitBatch posts the mutation envelope for requests and correlates the
// answer; batch ids are positions in requests
func (s *Session) submitBatch(ctx context.Context, requests []*Request, batchURL string, logger *slog.Logger) error {
	env := newEnvelope()
	for i, req := range requests {
		if err := env.addEntry(req.Event, req.Operation, i); err != nil {
			return fmt.Errorf("failed to encode request %d: %w", i, err)
		}
	}
	body, err := env.bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize batch: %w", err)
	}

	logger.Debug("submitting batch", "url", batchURL, "entries", len(requests))
	resp, err := s.http.Post(ctx, batchURL, body, s.header())
	if err != nil {
		return classify(ErrBatchFailed, err)
	}
	_, entries, err := xml.ParseFeed(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBatchFailed, err)
	}
	if err := correlate(entries, requests, string(body)); err != nil {
		logger.Debug("batch failed", "error", err)
		return err
	}
	return nil
}

func logBatchOutcome(logger *slog.Logger, chunk []*Request) {
	passed := 0
	for _, req := range chunk {
		if req.Result.Pass {
			passed++
		}
	}
	logger.Debug("batch complete", "passed", passed, "failed", len(chunk)-passed)
}
