package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// State is the lifecycle position of a job.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Job is one asynchronous storybook assembly.
type Job struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	Phase     string           `json:"phase,omitempty"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Error     string           `json:"error,omitempty"`
	Result    *model.Storybook `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewJob creates a pending job with a fresh ID.
func NewJob() *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.NewString(),
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Settled reports whether the job has reached a terminal state.
func (j *Job) Settled() bool {
	return j.State == StateDone || j.State == StateFailed
}
