package gcal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyp0633/libgcal/internal/xml"
)

// resolveEditLinks fetches a fresh concurrency token for every non-insert
// request in the chunk with a single query batch. Inserts are left alone and
// a chunk of only inserts costs no round-trip. The returned set holds the
// chunk indexes the service gave no token for; those must not be submitted.
func (s *Session) resolveEditLinks(ctx context.Context, chunk []*Request, batchURL string, logger *slog.Logger) (map[int]struct{}, error) {
	env := newEnvelope()
	for i, req := range chunk {
		switch req.Operation {
		case OpInsert:
			continue
		case OpUpdate, OpDelete, OpQuery:
			env.addQuery(req.Event.ID, i)
		default:
			return nil, fmt.Errorf("%w: %d", ErrInvalidOperation, int(req.Operation))
		}
	}
	if env.len() == 0 {
		logger.Debug("no edit links to resolve")
		return nil, nil
	}

	body, err := env.bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize edit link query: %w", err)
	}
	logger.Debug("resolving edit links", "queries", env.len())

	resp, err := s.http.Post(ctx, batchURL, body, s.header())
	if err != nil {
		return nil, classify(ErrEditLinks, err)
	}
	_, entries, err := xml.ParseFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEditLinks, err)
	}

	links := make(map[int]string, env.len())
	for _, entry := range entries {
		idx, err := batchIndex(entry, len(chunk))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEditLinks, err)
		}
		if chunk[idx].Operation == OpInsert {
			return nil, fmt.Errorf("%w: %w: %d is an insert", ErrEditLinks, ErrUnknownBatchID, idx)
		}
		// Without an edit link the plain id stands in; the mutation's own
		// status code reports the failure
		link := xml.Link(entry, xml.RelEdit).
			OrElse(xml.ChildText(entry, xml.Atom, xml.TagID).OrEmpty())
		if link != "" {
			links[idx] = link
		}
	}

	var unresolved map[int]struct{}
	for i, req := range chunk {
		if req.Operation == OpInsert {
			continue
		}
		link, ok := links[i]
		if !ok {
			if unresolved == nil {
				unresolved = make(map[int]struct{})
			}
			unresolved[i] = struct{}{}
			logger.Debug("no edit link", "batch_id", i, "id", req.Event.ID)
			continue
		}
		req.Event.EditLink = link
		logger.Debug("resolved edit link", "batch_id", i, "edit_link", link)
	}
	return unresolved, nil
}
