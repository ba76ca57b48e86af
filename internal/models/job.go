package models

import "time"

// Job statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobError   = "error"
)

// Job tracks the asynchronous analysis of one accepted batch.
// The worker that runs the pipeline is the sole writer after submission;
// everyone else sees point-in-time copies.
type Job struct {
	ID        string    `json:"job_id"`
	Status    string    `json:"status"` // queued | running | done | error
	Summary   string    `json:"summary"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the job reached done or error.
func (j Job) Terminal() bool {
	return j.Status == JobDone || j.Status == JobError
}
