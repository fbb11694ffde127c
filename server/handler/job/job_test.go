package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/server/resp"
	"github.com/indieinfra/ingest/server/state"
	"github.com/indieinfra/ingest/storage/journal"
	"github.com/indieinfra/ingest/storage/sink"
)

type countingSink struct {
	mu    sync.Mutex
	names []string
}

func (s *countingSink) Upload(_ context.Context, obj *sink.Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, obj.Name)
	return obj.Name, nil
}

func (s *countingSink) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []*journal.Entry
	failing bool
}

func (j *memoryJournal) Record(_ context.Context, e *journal.Entry) error {
	if j.failing {
		return errors.New("journal down")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memoryJournal) List(_ context.Context, jobID string) ([]*journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*journal.Entry
	for _, e := range j.entries {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, journal.ErrNotFound
	}
	return out, nil
}

func newState(dest sink.Sink, store journal.Store) *state.IngestState {
	cfg := &config.Config{
		Server: config.Server{Limits: config.ServerLimits{MaxPayloadSize: 4096}},
		Processing: config.Processing{
			FetchTimeout: time.Second,
			Concurrency:  1,
		},
	}
	return state.New(cfg, nil, dest, store)
}

func postRun(t *testing.T, st *state.IngestState, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	HandleRun(st).ServeHTTP(rr, req)
	return rr
}

func TestHandleRun_InvalidJSON(t *testing.T) {
	dest := &countingSink{}
	rr := postRun(t, newState(dest, &memoryJournal{}), "{not json")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if len(dest.calls()) != 0 {
		t.Fatalf("expected no uploads")
	}
}

func TestHandleRun_PayloadTooLarge(t *testing.T) {
	body := `{"input":{"videos":[{"name":"a.mp4","video":"` + strings.Repeat("A", 8192) + `"}]}}`
	rr := postRun(t, newState(&countingSink{}, &memoryJournal{}), body)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestHandleRun_ShapeErrorPerformsNoUploads(t *testing.T) {
	cases := []struct {
		name string
		body string
		desc string
	}{
		{
			name: "videos not a list",
			body: `{"input":{"videos":{"name":"a.mp4"}}}`,
			desc: "Invalid 'videos' format, must be a list of objects with 'name' and either 'video' (base64) or 'url'",
		},
		{
			name: "video without payload",
			body: `{"input":{"images":[{"name":"a.png","image":"aGVsbG8="}],"videos":[{"name":"a.mp4"}]}}`,
			desc: "Invalid 'videos' format, must be a list of objects with 'name' and either 'video' (base64) or 'url'",
		},
		{
			name: "image without data",
			body: `{"input":{"images":[{"name":"a.png"}]}}`,
			desc: "Invalid 'images' format. Must be a list of objects with 'name' and 'image' keys.",
		},
		{
			name: "missing input",
			body: `{}`,
			desc: "Please provide input",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dest := &countingSink{}
			store := &memoryJournal{}
			rr := postRun(t, newState(dest, store), tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}

			var body resp.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != "invalid_request" || body.Description != tc.desc {
				t.Fatalf("unexpected body %+v", body)
			}
			if n := len(dest.calls()); n != 0 {
				t.Fatalf("expected zero uploads, got %d", n)
			}
			if len(store.entries) != 0 {
				t.Fatalf("expected nothing journaled")
			}
		})
	}
}

func TestHandleRun_SuccessUploadsImagesThenVideos(t *testing.T) {
	dest := &countingSink{}
	store := &memoryJournal{}
	body := `{"input":{"workflow":{"k":"v"},"images":[{"name":"in.png","image":"aGVsbG8="}],"videos":[{"name":"a.mp4","video":"data:video/mp4;base64,aGVsbG8="}]}}`

	rr := postRun(t, newState(dest, store), body)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var out RunResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID == "" || out.Images == nil || out.Videos == nil {
		t.Fatalf("unexpected response %+v", out)
	}
	if out.Videos.Message != "All videos uploaded successfully" || out.Videos.Details[0] != "Successfully uploaded a.mp4" {
		t.Fatalf("unexpected video outcome %+v", out.Videos)
	}

	calls := dest.calls()
	if len(calls) != 2 || calls[0] != "in.png" || calls[1] != "a.mp4" {
		t.Fatalf("unexpected upload order %v", calls)
	}

	entries, err := store.List(context.Background(), out.ID)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected two journal entries, got %v (%v)", entries, err)
	}
}

func TestHandleRun_VideoFailureReturnsOutcomeVerbatim(t *testing.T) {
	dest := &countingSink{}
	store := &memoryJournal{}
	body := `{"input":{"videos":[{"name":"bad.mp4","video":"!!!"},{"name":"good.mp4","video":"aGVsbG8="}]}}`

	rr := postRun(t, newState(dest, store), body)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	var out resp.JobErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error != "Some videos failed to upload" {
		t.Fatalf("unexpected message %q", out.Error)
	}
	if len(out.Details) != 2 || out.Details[0] != "Successfully uploaded good.mp4" || !strings.HasPrefix(out.Details[1], "Error decoding base64 for bad.mp4: ") {
		t.Fatalf("unexpected details %v", out.Details)
	}
	if len(store.entries) != 1 || store.entries[0].Status != "error" {
		t.Fatalf("expected failed batch to be journaled, got %+v", store.entries)
	}
}

func TestHandleRun_ImageFailureSkipsVideos(t *testing.T) {
	dest := &countingSink{}
	body := `{"input":{"images":[{"name":"bad.png","image":"%%%"}],"videos":[{"name":"a.mp4","video":"aGVsbG8="}]}}`

	rr := postRun(t, newState(dest, &memoryJournal{}), body)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if n := len(dest.calls()); n != 0 {
		t.Fatalf("expected videos to be skipped, got %d uploads", n)
	}
}

func TestHandleRun_EmptyVideosList(t *testing.T) {
	rr := postRun(t, newState(&countingSink{}, &memoryJournal{}), `{"input":{"videos":[]}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var out struct {
		Videos *struct {
			Status  string   `json:"status"`
			Message string   `json:"message"`
			Details []string `json:"details"`
		} `json:"videos"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Videos == nil || out.Videos.Status != "success" || out.Videos.Message != "No videos to upload" {
		t.Fatalf("unexpected outcome %+v", out.Videos)
	}
	if out.Videos.Details == nil || len(out.Videos.Details) != 0 {
		t.Fatalf("expected empty details list, got %v", out.Videos.Details)
	}
}

func TestHandleRun_JournalFailureDoesNotChangeOutcome(t *testing.T) {
	rr := postRun(t, newState(&countingSink{}, &memoryJournal{failing: true}), `{"input":{"videos":[{"name":"a.mp4","video":"aGVsbG8="}]}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 despite journal failure, got %d", rr.Code)
	}
}

func TestHandleGet(t *testing.T) {
	store := &memoryJournal{}
	_ = store.Record(context.Background(), &journal.Entry{JobID: "job-1", Kind: "video", Status: "success", Message: "All videos uploaded successfully"})

	mux := http.NewServeMux()
	mux.Handle("GET /jobs/{id}", HandleGet(newState(&countingSink{}, store)))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var out JobResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != "job-1" || len(out.Entries) != 1 {
		t.Fatalf("unexpected response %+v", out)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHandleRun_RejectsNonJSON(t *testing.T) {
	dest := &countingSink{}
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`input=1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	HandleRun(newState(dest, &memoryJournal{})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
}

type contextCheckingSink struct {
	countingSink
}

func (s *contextCheckingSink) Upload(ctx context.Context, obj *sink.Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.countingSink.Upload(ctx, obj)
}

func TestHandleRun_ClientDisconnectDoesNotCancelBatch(t *testing.T) {
	dest := &contextCheckingSink{}
	store := &memoryJournal{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := `{"input":{"videos":[{"name":"a.mp4","video":"aGVsbG8="},{"name":"b.mp4","video":"aGVsbG8="}]}}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	HandleRun(newState(dest, store)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if n := len(dest.calls()); n != 2 {
		t.Fatalf("expected both uploads to complete, got %d", n)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected batch to be journaled, got %d entries", len(store.entries))
	}
}
