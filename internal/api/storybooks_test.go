package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/jobs"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/story"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

type stubAssembler struct {
	mu   sync.Mutex
	last story.Request
	fail error
}

func (s *stubAssembler) Assemble(_ context.Context, req story.Request) (*model.Storybook, error) {
	s.mu.Lock()
	s.last = req
	fail := s.fail
	s.mu.Unlock()

	if req.Progress != nil {
		req.Progress("assets", 2, 4)
	}
	if fail != nil {
		return nil, fail
	}
	return &model.Storybook{
		ID:    "sb-1",
		Title: "Stub Book",
		Pages: []model.Page{{Index: 0, Text: "A."}},
	}, nil
}

type memStore struct {
	mu    sync.Mutex
	books map[string]*model.Storybook
	fail  error
}

func newMemStore() *memStore {
	return &memStore{books: make(map[string]*model.Storybook)}
}

func (m *memStore) SaveStorybook(_ context.Context, sb *model.Storybook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.books[sb.ID] = sb
	return nil
}

func (m *memStore) GetStorybook(_ context.Context, id string) (*model.Storybook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id], nil
}

func (m *memStore) ListStorybooks(_ context.Context, limit int) ([]model.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Summary
	for _, sb := range m.books {
		out = append(out, model.Summary{ID: sb.ID, Title: sb.Title, PageCount: len(sb.Pages)})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) DeleteStorybook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	return nil
}

type harness struct {
	srv       *httptest.Server
	assembler *stubAssembler
	store     *memStore
	jobs      *jobs.Store[jobs.Job]
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	asm := &stubAssembler{}
	st := newMemStore()
	js := jobs.NewStore[jobs.Job](time.Minute)

	sb := NewStorybookHandler(context.Background(), asm, js, st, testDefaults())
	reg := registry.New()
	handlers := Handlers{
		Generate:   NewGenerateHandler(&stubGenerator{}, testDefaults()),
		Storybooks: sb,
		Providers:  NewProvidersHandler(reg, stubCircuits{}, tracker.New()),
		Stats:      NewStatsHandler(tracker.New(), nil),
	}

	srv := httptest.NewServer(NewServer("ignored", handlers).Handler)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, assembler: asm, store: st, jobs: js}
}

type stubCircuits struct{}

func (stubCircuits) OpenCircuits() map[string]time.Time { return nil }

func (h *harness) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(h.srv.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (h *harness) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (h *harness) waitSettled(t *testing.T, jobID string) jobs.Job {
	t.Helper()
	var job jobs.Job
	require.Eventually(t, func() bool {
		j, ok := h.jobs.Get(jobID)
		if !ok || !j.Settled() {
			return false
		}
		job = j
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestStorybookLifecycle(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/api/storybooks", `{"prompt":"a fox","scene_count":3}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	jobID := created["job_id"]
	require.NotEmpty(t, jobID)

	job := h.waitSettled(t, jobID)
	assert.Equal(t, jobs.StateDone, job.State)
	require.NotNil(t, job.Result)
	assert.Equal(t, "sb-1", job.Result.ID)

	// Progress from the assembler reached the job record
	assert.Equal(t, 2, job.Completed)
	assert.Equal(t, 4, job.Total)

	// Job endpoint serves the same view
	resp, body = h.get(t, "/api/storybooks/jobs/"+jobID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var polled jobs.Job
	require.NoError(t, json.Unmarshal(body, &polled))
	assert.Equal(t, jobs.StateDone, polled.State)

	// Assembled book was persisted and is fetchable
	resp, body = h.get(t, "/api/storybooks/sb-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sb model.Storybook
	require.NoError(t, json.Unmarshal(body, &sb))
	assert.Equal(t, "Stub Book", sb.Title)

	resp, body = h.get(t, "/api/storybooks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []model.Summary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "sb-1", list[0].ID)
}

func TestStorybookCreate_Validation(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.post(t, "/api/storybooks", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStorybookCreate_DefaultsApplied(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/api/storybooks", `{"text":"A. B. C."}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	h.waitSettled(t, created["job_id"])

	h.assembler.mu.Lock()
	defer h.assembler.mu.Unlock()
	assert.Equal(t, model.GenreFantasy, h.assembler.last.Genre)
	assert.Equal(t, model.StyleWatercolor, h.assembler.last.Style)
	assert.Equal(t, 5, h.assembler.last.SceneCount)
}

func TestStorybookCreate_SceneCountOutOfRange(t *testing.T) {
	h := newHarness(t)

	for _, body := range []string{
		`{"prompt":"a fox","scene_count":-1}`,
		`{"prompt":"a fox","scene_count":16}`,
	} {
		resp, _ := h.post(t, "/api/storybooks", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	// zero falls back to the configured default and is accepted
	resp, _ := h.post(t, "/api/storybooks", `{"prompt":"a fox","scene_count":0}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestStorybookJob_Failure(t *testing.T) {
	h := newHarness(t)
	h.assembler.fail = &story.ParseError{Reason: "no usable text"}

	resp, body := h.post(t, "/api/storybooks", `{"text":"!!! ???"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))

	job := h.waitSettled(t, created["job_id"])
	assert.Equal(t, jobs.StateFailed, job.State)
	assert.Contains(t, job.Error, "no usable text")
}

func TestStorybookJob_NotFound(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get(t, "/api/storybooks/jobs/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStorybookGet_NotFound(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get(t, "/api/storybooks/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStorybookDelete(t *testing.T) {
	h := newHarness(t)
	h.store.books["sb-9"] = &model.Storybook{ID: "sb-9"}

	req, err := http.NewRequest(http.MethodDelete, h.srv.URL+"/api/storybooks/sb-9", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, _ := h.get(t, "/api/storybooks/sb-9")
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestErrorBodyIsPlainText(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/api/generate/text", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid JSON body")
}
