package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/jobs"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/story"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/store"
)

const defaultListLimit = 50

// Assembler is the slice of the storybook pipeline this handler uses.
type Assembler interface {
	Assemble(ctx context.Context, req story.Request) (*model.Storybook, error)
}

// StorybookHandler serves storybook creation, job polling and retrieval.
type StorybookHandler struct {
	assembler Assembler
	jobs      *jobs.Store[jobs.Job]
	store     store.StorybookStore
	defaults  config.DefaultsConfig

	// baseCtx outlives individual requests; assembly jobs run on it so a
	// closed client connection does not abort the work.
	baseCtx context.Context
}

// NewStorybookHandler creates a StorybookHandler. baseCtx should be the
// server's lifetime context.
func NewStorybookHandler(baseCtx context.Context, a Assembler, js *jobs.Store[jobs.Job], st store.StorybookStore, defaults config.DefaultsConfig) *StorybookHandler {
	return &StorybookHandler{
		assembler: a,
		jobs:      js,
		store:     st,
		defaults:  defaults,
		baseCtx:   baseCtx,
	}
}

type storybookRequestDTO struct {
	Prompt     string  `json:"prompt"`
	Title      string  `json:"title"`
	Genre      string  `json:"genre"`
	Length     string  `json:"length"`
	Style      string  `json:"style"`
	Voice      string  `json:"voice"`
	Speed      float64 `json:"speed"`
	Text       string  `json:"text"`
	SceneCount int     `json:"scene_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Seed       int64   `json:"seed"`
}

// HandleCreate serves POST /api/storybooks: it starts an assembly job and
// returns 202 with the job ID.
func (h *StorybookHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req storybookRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Text) == "" {
		http.Error(w, "prompt or text is required", http.StatusBadRequest)
		return
	}
	// scene_count 0 means "use the configured default"
	if req.SceneCount != 0 && (req.SceneCount < story.MinScenes || req.SceneCount > story.MaxScenes) {
		http.Error(w, fmt.Sprintf("scene_count must be between %d and %d", story.MinScenes, story.MaxScenes), http.StatusBadRequest)
		return
	}

	job := jobs.NewJob()
	h.jobs.Put(job.ID, job)

	go h.run(job.ID, h.storyRequest(req))

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// HandleJob serves GET /api/storybooks/jobs/{id}.
func (h *StorybookHandler) HandleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := h.jobs.Get(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleGet serves GET /api/storybooks/{id}.
func (h *StorybookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sb, err := h.store.GetStorybook(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sb == nil {
		http.Error(w, "storybook not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

// HandleList serves GET /api/storybooks.
func (h *StorybookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries, err := h.store.ListStorybooks(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleDelete serves DELETE /api/storybooks/{id}.
func (h *StorybookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteStorybook(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorybookHandler) storyRequest(req storybookRequestDTO) story.Request {
	genre := req.Genre
	if genre == "" {
		genre = h.defaults.Genre
	}
	length := req.Length
	if length == "" {
		length = h.defaults.Length
	}
	style := req.Style
	if style == "" {
		style = h.defaults.Style
	}
	voice := req.Voice
	if voice == "" {
		voice = h.defaults.Voice
	}
	sceneCount := req.SceneCount
	if sceneCount <= 0 {
		sceneCount = h.defaults.SceneCount
	}

	return story.Request{
		Prompt:     req.Prompt,
		Title:      req.Title,
		Genre:      model.Genre(genre),
		Length:     model.LengthTier(length),
		Style:      model.VisualStyle(style),
		Voice:      voice,
		Speed:      req.Speed,
		Text:       req.Text,
		SceneCount: sceneCount,
		Width:      req.Width,
		Height:     req.Height,
		Seed:       req.Seed,
	}
}

// run executes one assembly job and records its lifecycle in the job store.
func (h *StorybookHandler) run(jobID string, req story.Request) {
	h.jobs.Update(jobID, func(j *jobs.Job) {
		j.State = jobs.StateRunning
		j.UpdatedAt = time.Now().UTC()
	})

	req.Progress = func(phase string, done, total int) {
		h.jobs.Update(jobID, func(j *jobs.Job) {
			j.Phase = phase
			j.Completed = done
			j.Total = total
			j.UpdatedAt = time.Now().UTC()
		})
	}

	sb, err := h.assembler.Assemble(h.baseCtx, req)
	if err != nil {
		var perr *story.ParseError
		if !errors.As(err, &perr) {
			slog.Error("Storybook job failed", "job", jobID, "error", err)
		}
		h.jobs.Update(jobID, func(j *jobs.Job) {
			j.State = jobs.StateFailed
			j.Error = err.Error()
			j.UpdatedAt = time.Now().UTC()
		})
		return
	}

	if err := h.store.SaveStorybook(h.baseCtx, sb); err != nil {
		slog.Error("Storybook save failed", "job", jobID, "id", sb.ID, "error", err)
		h.jobs.Update(jobID, func(j *jobs.Job) {
			j.State = jobs.StateFailed
			j.Error = "assembled but not saved: " + err.Error()
			j.Result = sb
			j.UpdatedAt = time.Now().UTC()
		})
		return
	}

	slog.Info("Storybook assembled", "job", jobID, "id", sb.ID,
		"pages", len(sb.Pages), "errors", len(sb.Metadata.Errors))
	h.jobs.Update(jobID, func(j *jobs.Job) {
		j.State = jobs.StateDone
		j.Result = sb
		j.UpdatedAt = time.Now().UTC()
	})
}
