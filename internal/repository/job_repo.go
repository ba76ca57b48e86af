package repository

import (
	"sync"
	"time"

	"homeguard/internal/models"
)

// JobMemory is an in-process job store guarded by a RWMutex. Job records
// live only as long as the process; terminal records are reclaimed by
// SweepTerminal.
type JobMemory struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewJobMemory() *JobMemory {
	return &JobMemory{jobs: make(map[string]models.Job)}
}

// Create stores a new job record. An existing record with the same id is
// overwritten; callers use UUIDs so collisions do not occur in practice.
func (r *JobMemory) Create(j models.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

// Get returns a point-in-time copy of the record.
func (r *JobMemory) Get(id string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Update replaces the stored record. Only the owning worker calls this
// after submission, so last-write-wins is safe.
func (r *JobMemory) Update(j models.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

// SweepTerminal deletes done/error jobs last updated before the cutoff
// and returns the number removed. In-flight jobs are never touched.
func (r *JobMemory) SweepTerminal(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, j := range r.jobs {
		if j.Terminal() && j.UpdatedAt.Before(olderThan) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored records.
func (r *JobMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
