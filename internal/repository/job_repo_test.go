package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"homeguard/internal/models"
)

func TestJobMemory_CreateGetUpdate(t *testing.T) {
	t.Parallel()

	repo := NewJobMemory()

	job := models.Job{ID: "j1", Status: models.JobQueued, CreatedAt: time.Now().UTC()}
	repo.Create(job)

	got, ok := repo.Get("j1")
	if !ok {
		t.Fatal("expected job to exist")
	}
	if got.Status != models.JobQueued {
		t.Fatalf("status: want queued, got %q", got.Status)
	}

	got.Status = models.JobDone
	got.Summary = "safe_summary_sent"
	repo.Update(got)

	updated, _ := repo.Get("j1")
	if updated.Status != models.JobDone || updated.Summary != "safe_summary_sent" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, ok := repo.Get("missing"); ok {
		t.Fatal("unknown id must not resolve")
	}
}

func TestJobMemory_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := NewJobMemory()
	repo.Create(models.Job{ID: "j1", Status: models.JobQueued})

	snapshot, _ := repo.Get("j1")
	snapshot.Status = models.JobError

	stored, _ := repo.Get("j1")
	if stored.Status != models.JobQueued {
		t.Fatal("mutating a snapshot must not affect the stored record")
	}
}

func TestJobMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	repo := NewJobMemory()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			repo.Create(models.Job{ID: id, Status: models.JobQueued})
			j, _ := repo.Get(id)
			j.Status = models.JobDone
			j.Summary = id
			repo.Update(j)
		}(i)
	}
	wg.Wait()

	if repo.Len() != n {
		t.Fatalf("want %d records, got %d", n, repo.Len())
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("job-%d", i)
		j, ok := repo.Get(id)
		if !ok || j.Summary != id {
			t.Fatalf("record %q corrupted: %+v (ok=%v)", id, j, ok)
		}
	}
}

func TestJobMemory_SweepTerminal(t *testing.T) {
	t.Parallel()

	repo := NewJobMemory()
	cutoff := time.Now().UTC()

	repo.Create(models.Job{ID: "old-done", Status: models.JobDone, UpdatedAt: cutoff.Add(-time.Minute)})
	repo.Create(models.Job{ID: "old-error", Status: models.JobError, UpdatedAt: cutoff.Add(-time.Minute)})
	repo.Create(models.Job{ID: "old-running", Status: models.JobRunning, UpdatedAt: cutoff.Add(-time.Minute)})
	repo.Create(models.Job{ID: "new-done", Status: models.JobDone, UpdatedAt: cutoff.Add(time.Minute)})

	removed := repo.SweepTerminal(cutoff)
	if removed != 2 {
		t.Fatalf("want 2 removed, got %d", removed)
	}

	for _, id := range []string{"old-running", "new-done"} {
		if _, ok := repo.Get(id); !ok {
			t.Errorf("%q should survive the sweep", id)
		}
	}
	for _, id := range []string{"old-done", "old-error"} {
		if _, ok := repo.Get(id); ok {
			t.Errorf("%q should have been swept", id)
		}
	}
}
