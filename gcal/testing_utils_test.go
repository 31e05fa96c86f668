package gcal

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cyp0633/libgcal/internal/xml"
	"github.com/stretchr/testify/require"
)

// respEntry describes one entry of a canned batch response feed
type respEntry struct {
	batchID     int
	status      int
	id          string
	editLink    string
	interrupted bool
	start, end  string
}

func feedXML(entries ...respEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:batch="http://schemas.google.com/gdata/batch" xmlns:gd="http://schemas.google.com/g/2005">`)
	for _, e := range entries {
		b.WriteString("<entry>")
		fmt.Fprintf(&b, "<batch:id>%d</batch:id>", e.batchID)
		if e.interrupted {
			b.WriteString(`<batch:interrupted reason="internal error" success="0" failures="1" parsed="1"/>`)
		}
		if e.status != 0 {
			fmt.Fprintf(&b, `<batch:status code="%d" reason="%s"/>`, e.status, http.StatusText(e.status))
		}
		if e.id != "" {
			fmt.Fprintf(&b, "<id>%s</id>", e.id)
		}
		if e.editLink != "" {
			fmt.Fprintf(&b, `<link rel="edit" type="application/atom+xml" href="%s"/>`, e.editLink)
		}
		if e.start != "" {
			fmt.Fprintf(&b, `<gd:when startTime="%s" endTime="%s"/>`, e.start, e.end)
		}
		b.WriteString("</entry>")
	}
	b.WriteString("</feed>")
	return b.String()
}

// submittedEntry is what the fake service saw for one request entry
type submittedEntry struct {
	batchID   int
	operation string
	id        string
	editLink  string
	title     string
}

// submission is one POST to a batch feed
type submission struct {
	path    string
	query   bool
	entries []submittedEntry
}

// fakeService answers batch POSTs. By default queries return an edit link
// per entry, inserts succeed with 201 and a fresh id, everything else 200.
type fakeService struct {
	t *testing.T

	mu          sync.Mutex
	submissions []submission
	nextID      int

	onQuery func(entries []submittedEntry) (int, string)
	onBatch func(entries []submittedEntry) (int, string)
	// other handles non-batch requests
	other http.HandlerFunc
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	f := &fakeService{t: t}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, BatchSuffix) {
		if f.other != nil {
			f.other(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		f.t.Errorf("expected POST to batch feed, got %s", r.Method)
	}
	if ct := r.Header.Get("Content-Type"); ct != "application/atom+xml" {
		f.t.Errorf("expected atom content type, got %q", ct)
	}

	body, _ := io.ReadAll(r.Body)
	_, entries, err := xml.ParseFeed(body)
	if err != nil {
		f.t.Errorf("fake service got invalid feed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sub := submission{path: r.URL.Path, query: true}
	for _, entry := range entries {
		batchID, _ := strconv.Atoi(xml.ChildText(entry, xml.Batch, xml.TagID).OrEmpty())
		op := xml.ChildAttr(entry, xml.Batch, xml.TagOperation, xml.AttrType).OrEmpty()
		if op != "query" {
			sub.query = false
		}
		sub.entries = append(sub.entries, submittedEntry{
			batchID:   batchID,
			operation: op,
			id:        xml.ChildText(entry, xml.Atom, xml.TagID).OrEmpty(),
			editLink:  xml.Link(entry, xml.RelEdit).OrEmpty(),
			title:     xml.ChildText(entry, xml.Atom, xml.TagTitle).OrEmpty(),
		})
	}

	f.mu.Lock()
	f.submissions = append(f.submissions, sub)
	f.mu.Unlock()

	status, out := http.StatusOK, ""
	switch {
	case sub.query && f.onQuery != nil:
		status, out = f.onQuery(sub.entries)
	case sub.query:
		out = f.defaultQuery(sub.entries)
	case f.onBatch != nil:
		status, out = f.onBatch(sub.entries)
	default:
		out = f.defaultBatch(sub.entries)
	}
	w.Header().Set("Content-Type", "application/atom+xml")
	w.WriteHeader(status)
	w.Write([]byte(out))
}

func (f *fakeService) defaultQuery(entries []submittedEntry) string {
	var resp []respEntry
	for _, e := range entries {
		resp = append(resp, respEntry{
			batchID:  e.batchID,
			status:   http.StatusOK,
			id:       e.id,
			editLink: e.id + "/edit-v2",
		})
	}
	return feedXML(resp...)
}

func (f *fakeService) defaultBatch(entries []submittedEntry) string {
	var resp []respEntry
	for _, e := range entries {
		r := respEntry{batchID: e.batchID, status: http.StatusOK, id: e.id}
		if e.operation == "insert" {
			f.mu.Lock()
			f.nextID++
			r.id = fmt.Sprintf("http://www.google.com/calendar/feeds/default/private/full/evt%d", f.nextID)
			f.mu.Unlock()
			r.status = http.StatusCreated
		}
		resp = append(resp, r)
	}
	return feedXML(resp...)
}

func (f *fakeService) recorded() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission(nil), f.submissions...)
}

// newRedirectLoopServer redirects every request back to itself
func newRedirectLoopServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestSession(t *testing.T, serverURL string) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = serverURL
	cfg.Client = &http.Client{}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSessionWithConfig("test-token", cfg)
	require.NoError(t, err)
	return s
}

func makeEvents(n int) []*Event {
	events := make([]*Event, n)
	for i := range events {
		events[i] = &Event{
			Title:       fmt.Sprintf("party %d!", i+1),
			Description: "fun times",
			Location:    "right over here",
		}
	}
	return events
}

func makeRequests(op Operation, events []*Event) []*Request {
	reqs := make([]*Request, len(events))
	for i, e := range events {
		reqs[i] = NewRequest(op, e)
	}
	return reqs
}
