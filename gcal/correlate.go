package gcal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/cyp0633/libgcal/internal/xml"
	"github.com/samber/mo"
)

const invalidCalendarStatus = 403

func isSuccessStatus(code int) bool {
	return code == 200 || code == 201
}

// batchIndex reads an entry's correlation id and checks it addresses one of
// n submitted requests
func batchIndex(entry *etree.Element, n int) (int, error) {
	text, ok := xml.ChildText(entry, xml.Batch, xml.TagID).Get()
	if !ok {
		return 0, fmt.Errorf("%w: no batch id", ErrMalformedEntry)
	}
	idx, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: batch id %q: %w", ErrMalformedEntry, text, err)
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: %d (submitted %d)", ErrUnknownBatchID, idx, n)
	}
	return idx, nil
}

func batchStatus(entry *etree.Element) (int, error) {
	code, ok := xml.ChildAttr(entry, xml.Batch, xml.TagStatus, xml.AttrCode).Get()
	if !ok {
		return 0, fmt.Errorf("%w: no batch status", ErrMalformedEntry)
	}
	status, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, fmt.Errorf("%w: status code %q: %w", ErrMalformedEntry, code, err)
	}
	return status, nil
}

// correlate maps each response entry back to the request that produced it
// and annotates the requests in place. Nothing is written unless every
// submitted request has exactly one result, so a failing chunk leaves no
// partial results behind.
func correlate(entries []*etree.Element, chunk []*Request, requestXML string) error {
	for _, entry := range entries {
		if xml.Child(entry, xml.Batch, xml.TagInterrupted) != nil {
			return &InterruptedError{Entry: xml.ElementString(entry), RequestXML: requestXML}
		}
	}

	results := make([]mo.Option[Result], len(chunk))
	for _, entry := range entries {
		idx, err := batchIndex(entry, len(chunk))
		if err != nil {
			return err
		}
		if results[idx].IsPresent() {
			return fmt.Errorf("%w: %d", ErrDuplicateBatchID, idx)
		}
		status, err := batchStatus(entry)
		if err != nil {
			return err
		}
		if status == invalidCalendarStatus {
			return ErrCalendarInvalid
		}

		res := Result{
			Processed: true,
			Pass:      isSuccessStatus(status),
			Status:    status,
			Raw:       xml.ElementString(entry),
		}
		switch chunk[idx].Operation {
		case OpInsert:
			if res.Pass {
				id, ok := xml.ChildText(entry, xml.Atom, xml.TagID).Get()
				if !ok || id == "" {
					return fmt.Errorf("%w: insert %d succeeded without an id", ErrMalformedEntry, idx)
				}
				res.AssignedID = mo.Some(id)
			}
		case OpUpdate, OpDelete, OpQuery:
		default:
			return fmt.Errorf("%w: %d", ErrInvalidOperation, int(chunk[idx].Operation))
		}
		res.StartsAt = xml.ChildAttr(entry, xml.GData, xml.TagWhen, xml.AttrStartTime)
		res.EndsAt = xml.ChildAttr(entry, xml.GData, xml.TagWhen, xml.AttrEndTime)

		results[idx] = mo.Some(res)
	}

	for i, res := range results {
		if res.IsAbsent() {
			return fmt.Errorf("%w: no result for batch id %d", ErrIncompleteBatch, i)
		}
	}

	for i, req := range chunk {
		req.Result = results[i].MustGet()
		if id, ok := req.Result.AssignedID.Get(); ok {
			req.Event.ID = id
		}
	}
	return nil
}
