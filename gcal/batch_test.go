package gcal

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRequestChunking(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	requests := makeRequests(OpInsert, makeEvents(51))
	results, err := session.BatchRequest(context.Background(), requests, "")
	require.NoError(t, err)
	require.Len(t, results, 51)

	subs := fake.recorded()
	require.Len(t, subs, 2, "inserts need no edit link round-trip")
	assert.Len(t, subs[0].entries, 50)
	assert.Len(t, subs[1].entries, 1)
	for _, sub := range subs {
		assert.Equal(t, PrivateCalendarsPath+BatchSuffix, sub.path)
		assert.False(t, sub.query)
	}
	assert.Equal(t, 0, subs[1].entries[0].batchID, "batch ids restart per chunk")

	for i, req := range results {
		assert.Same(t, requests[i], req, "results keep submission order")
		assert.True(t, req.Result.Pass)
		assert.NotEmpty(t, req.Event.ID)
	}
	assert.NotEqual(t, results[0].Event.ID, results[50].Event.ID)
}

func TestBatchRequestMixedOperations(t *testing.T) {
	fake, server := newFakeService(t)
	events := makeEvents(3)
	events[1].ID = "http://example.com/full/upd"
	events[2].ID = "http://example.com/full/del"
	fake.onBatch = func(entries []submittedEntry) (int, string) {
		return http.StatusOK, feedXML(
			respEntry{batchID: 2, status: http.StatusOK, id: events[2].ID},
			respEntry{batchID: 0, status: http.StatusCreated, id: "http://example.com/full/new"},
			respEntry{batchID: 1, status: http.StatusNotFound},
		)
	}
	session := newTestSession(t, server.URL)

	requests := []*Request{
		NewRequest(OpInsert, events[0]),
		NewRequest(OpUpdate, events[1]),
		NewRequest(OpDelete, events[2]),
	}
	results, err := session.BatchRequest(context.Background(), requests, "")
	require.NoError(t, err)
	require.Len(t, results, 3)

	subs := fake.recorded()
	require.Len(t, subs, 2)

	query := subs[0]
	assert.True(t, query.query)
	require.Len(t, query.entries, 2, "only the update and delete are resolved")
	assert.Equal(t, 1, query.entries[0].batchID)
	assert.Equal(t, events[1].ID, query.entries[0].id)
	assert.Equal(t, 2, query.entries[1].batchID)

	mutation := subs[1]
	require.Len(t, mutation.entries, 3)
	assert.Equal(t, "insert", mutation.entries[0].operation)
	assert.Empty(t, mutation.entries[0].editLink)
	assert.Equal(t, "update", mutation.entries[1].operation)
	assert.Equal(t, events[1].ID+"/edit-v2", mutation.entries[1].editLink)
	assert.Equal(t, "delete", mutation.entries[2].operation)
	assert.Equal(t, events[2].ID+"/edit-v2", mutation.entries[2].editLink)

	assert.True(t, results[0].Result.Pass)
	assert.Equal(t, "http://example.com/full/new", events[0].ID)
	assert.False(t, results[1].Result.Pass)
	assert.Equal(t, http.StatusNotFound, results[1].Result.Status)
	assert.Equal(t, "http://example.com/full/upd", events[1].ID)
	assert.True(t, results[2].Result.Pass)
}

func TestBatchRequestDeduplicates(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	event := &Event{Title: "once"}
	req := NewRequest(OpInsert, event)
	requests := []*Request{req, req, NewRequest(OpInsert, event)}

	results, err := session.BatchRequest(context.Background(), requests, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Same(t, req, results[0])

	subs := fake.recorded()
	require.Len(t, subs, 1)
	assert.Len(t, subs[0].entries, 1)
}

func TestBatchRequestEmpty(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	results, err := session.BatchRequest(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, fake.recorded())
}

func TestBatchRequestCustomFeed(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	feed := "/calendar/feeds/abc%40group.calendar.google.com/private/full"
	_, err := session.BatchRequest(context.Background(), makeRequests(OpInsert, makeEvents(1)), feed)
	require.NoError(t, err)

	subs := fake.recorded()
	require.Len(t, subs, 1)
	assert.Equal(t, "/calendar/feeds/abc@group.calendar.google.com/private/full/batch", subs[0].path)
}

func TestBatchRequestEditLinkFallback(t *testing.T) {
	fake, server := newFakeService(t)
	fake.onQuery = func(entries []submittedEntry) (int, string) {
		return http.StatusOK, feedXML(respEntry{batchID: 0, status: http.StatusNotFound, id: "http://example.com/full/plain"})
	}
	session := newTestSession(t, server.URL)

	event := &Event{Title: "gone", ID: "http://example.com/full/plain"}
	_, err := session.BatchRequest(context.Background(), []*Request{NewRequest(OpDelete, event)}, "")
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/full/plain", event.EditLink)
	subs := fake.recorded()
	require.Len(t, subs, 2)
	assert.Equal(t, event.ID, subs[1].entries[0].editLink)
}

func TestBatchRequestQueryOperation(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	event := &Event{ID: "http://example.com/full/q"}
	results, err := session.BatchRequest(context.Background(), []*Request{NewRequest(OpQuery, event)}, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Pass)
	assert.Equal(t, "http://example.com/full/q/edit-v2", event.EditLink)
	assert.Len(t, fake.recorded(), 2)
}

func TestBatchRequestInterruptedStopsProcessing(t *testing.T) {
	fake, server := newFakeService(t)
	fake.onBatch = func(entries []submittedEntry) (int, string) {
		return http.StatusOK, feedXML(respEntry{batchID: 0, interrupted: true})
	}
	session := newTestSession(t, server.URL)

	requests := makeRequests(OpInsert, makeEvents(60))
	results, err := session.BatchRequest(context.Background(), requests, "")
	require.ErrorIs(t, err, ErrInterrupted)
	assert.Nil(t, results)

	var interrupted *InterruptedError
	require.True(t, errors.As(err, &interrupted))
	assert.Contains(t, interrupted.RequestXML, "party 1!")

	assert.Len(t, fake.recorded(), 1, "remaining chunks are not sent")
	for _, req := range requests {
		assert.False(t, req.Result.Processed)
	}
}

func TestBatchRequestInvalidCalendar(t *testing.T) {
	fake, server := newFakeService(t)
	fake.onBatch = func(entries []submittedEntry) (int, string) {
		return http.StatusOK, feedXML(respEntry{batchID: 0, status: http.StatusForbidden})
	}
	session := newTestSession(t, server.URL)

	_, err := session.BatchRequest(context.Background(), makeRequests(OpInsert, makeEvents(1)), "")
	assert.ErrorIs(t, err, ErrCalendarInvalid)
}

func TestBatchRequestTransportFailures(t *testing.T) {
	t.Run("batch post rejected", func(t *testing.T) {
		fake, server := newFakeService(t)
		fake.onBatch = func(entries []submittedEntry) (int, string) {
			return http.StatusUnauthorized, "Token invalid"
		}
		session := newTestSession(t, server.URL)

		_, err := session.BatchRequest(context.Background(), makeRequests(OpInsert, makeEvents(1)), "")
		require.ErrorIs(t, err, ErrBatchFailed)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	})

	t.Run("edit link query rejected", func(t *testing.T) {
		fake, server := newFakeService(t)
		fake.onQuery = func(entries []submittedEntry) (int, string) {
			return http.StatusInternalServerError, "boom"
		}
		session := newTestSession(t, server.URL)

		event := &Event{ID: "http://example.com/full/x"}
		_, err := session.BatchRequest(context.Background(), []*Request{NewRequest(OpUpdate, event)}, "")
		require.ErrorIs(t, err, ErrEditLinks)
		assert.Len(t, fake.recorded(), 1, "no mutation after a failed resolution")
	})

	t.Run("unparseable response", func(t *testing.T) {
		fake, server := newFakeService(t)
		fake.onBatch = func(entries []submittedEntry) (int, string) {
			return http.StatusOK, "<html>not a feed</html>"
		}
		session := newTestSession(t, server.URL)

		_, err := session.BatchRequest(context.Background(), makeRequests(OpInsert, makeEvents(1)), "")
		assert.ErrorIs(t, err, ErrBatchFailed)
	})

	t.Run("redirect loop", func(t *testing.T) {
		server := newRedirectLoopServer(t)
		session := newTestSession(t, server.URL)

		_, err := session.BatchRequest(context.Background(), makeRequests(OpInsert, makeEvents(1)), "")
		assert.ErrorIs(t, err, ErrRedirectLoop)
	})
}

func TestBatchRequestValidation(t *testing.T) {
	fake, server := newFakeService(t)
	session := newTestSession(t, server.URL)

	_, err := session.BatchRequest(context.Background(), []*Request{{Operation: Operation(9), Event: &Event{}}}, "")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = session.BatchRequest(context.Background(), []*Request{{Operation: OpInsert}}, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = session.BatchRequest(context.Background(), []*Request{nil}, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, fake.recorded(), "invalid chunks are never sent")
}

func TestChunks(t *testing.T) {
	requests := makeRequests(OpInsert, makeEvents(101))
	got := chunks(requests, MaxBatchSize)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 50)
	assert.Len(t, got[1], 50)
	assert.Len(t, got[2], 1)
	assert.Empty(t, chunks(nil, MaxBatchSize))
}

func TestBatchRequestEditLinkMissing(t *testing.T) {
	fake, server := newFakeService(t)
	fake.onQuery = func(entries []submittedEntry) (int, string) {
		// answers only the first query
		return http.StatusOK, feedXML(respEntry{batchID: entries[0].batchID, status: http.StatusOK, editLink: "http://example.com/full/a/1"})
	}
	session := newTestSession(t, server.URL)

	first := &Event{ID: "http://example.com/full/a"}
	second := &Event{ID: "http://example.com/full/b"}
	requests := []*Request{NewRequest(OpUpdate, first), NewRequest(OpDelete, second)}

	results, err := session.BatchRequest(context.Background(), requests, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Result.Pass)
	assert.Equal(t, "http://example.com/full/a/1", first.EditLink)

	assert.True(t, results[1].Result.Processed)
	assert.False(t, results[1].Result.Pass)
	assert.Zero(t, results[1].Result.Status)
	assert.Empty(t, second.EditLink)

	subs := fake.recorded()
	require.Len(t, subs, 2)
	require.Len(t, subs[1].entries, 1, "the delete without a token is not sent")
	assert.Equal(t, "update", subs[1].entries[0].operation)
	assert.Equal(t, 0, subs[1].entries[0].batchID)
}

func TestBatchRequestNoEditLinks(t *testing.T) {
	fake, server := newFakeService(t)
	fake.onQuery = func(entries []submittedEntry) (int, string) {
		return http.StatusOK, feedXML(respEntry{batchID: entries[0].batchID, status: http.StatusNotFound})
	}
	session := newTestSession(t, server.URL)

	event := &Event{ID: "http://example.com/full/a"}
	results, err := session.BatchRequest(context.Background(), []*Request{NewRequest(OpDelete, event)}, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Processed)
	assert.False(t, results[0].Result.Pass)
	assert.Len(t, fake.recorded(), 1, "nothing left to mutate")
}
