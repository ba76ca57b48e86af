package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homeguard/internal/logger"
	"homeguard/internal/models"
	"homeguard/internal/repository"

	"github.com/google/uuid"
)

// Job summaries for the two short-circuit outcomes.
const (
	SummaryLocalEmergency = "local_emergency_triggered"
	SummarySafeSummary    = "safe_summary_sent"
)

const defaultMaxWorkers = 8

// JobService owns the asynchronous analysis pipeline. Submission is
// synchronous and fast; each accepted batch runs in its own goroutine,
// bounded by a fixed-size slot pool so burst load cannot grow pipeline
// concurrency without limit.
type JobService struct {
	repo     repository.JobRepo
	readings repository.ReadingRepo
	safety   Safety
	policy   Policy
	notifier Notifier
	log      *logger.Logger
	slots    chan struct{}
}

func NewJobService(
	repo repository.JobRepo,
	readings repository.ReadingRepo,
	safety Safety,
	policy Policy,
	notifier Notifier,
	cfg JobsConfig,
	log *logger.Logger,
) *JobService {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	return &JobService{
		repo:     repo,
		readings: readings,
		safety:   safety,
		policy:   policy,
		notifier: notifier,
		log:      log,
		slots:    make(chan struct{}, workers),
	}
}

// Submit allocates a job id, archives the batch best-effort, and launches
// the pipeline. The returned record is the initial queued snapshot.
func (s *JobService) Submit(ctx context.Context, batch []models.Reading) (models.Job, error) {
	if len(batch) == 0 {
		return models.Job{}, &ValidationError{Reason: ReasonAllInvalid}
	}

	now := time.Now().UTC()
	job := models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.repo.Create(job)

	// Archive failures never block submission.
	if s.readings != nil {
		if err := s.readings.SaveBatch(ctx, batch); err != nil && s.log != nil {
			s.log.Warnw("reading archive failed", "job_id", job.ID, "err", err)
		}
	}

	go s.run(job.ID, batch)
	return job, nil
}

// Status returns a point-in-time copy of the job record.
func (s *JobService) Status(id string) (models.Job, bool) {
	return s.repo.Get(id)
}

// run executes the pipeline for one job. The worker owns the record
// exclusively until it reaches a terminal status. Any panic is captured
// as a pipeline fault and recorded on the job.
func (s *JobService) run(id string, batch []models.Reading) {
	defer func() {
		if rec := recover(); rec != nil {
			if s.log != nil {
				s.log.Errorw("pipeline fault", "job_id", id, "panic", rec)
			}
			s.finish(id, models.JobError, "", fmt.Sprint(rec))
		}
	}()

	// Wait for a pool slot; the job stays queued until one frees up.
	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	s.setStatus(id, models.JobRunning)

	// The pipeline is decoupled from the submitting request.
	ctx := context.Background()

	if s.safety.Evaluate(ctx, batch) {
		s.finish(id, models.JobDone, SummaryLocalEmergency, "")
		return
	}

	decision := s.policy.Decide(ctx, batch)
	if s.log != nil {
		s.log.Infow("policy decision",
			"job_id", id,
			"action", decision.Action,
			"severity", decision.Severity,
		)
	}

	out := s.notifier.Dispatch(ctx, decision, batch)
	if out.DecisionSent {
		summary, err := json.Marshal(decision)
		if err != nil {
			// Decision is a plain struct; this cannot realistically fail.
			summary = []byte(decision.Action)
		}
		s.finish(id, models.JobDone, string(summary), "")
		return
	}

	s.finish(id, models.JobDone, SummarySafeSummary, "")
}

func (s *JobService) setStatus(id, status string) {
	if j, ok := s.repo.Get(id); ok {
		j.Status = status
		j.UpdatedAt = time.Now().UTC()
		s.repo.Update(j)
	}
}

func (s *JobService) finish(id, status, summary, errText string) {
	if j, ok := s.repo.Get(id); ok {
		j.Status = status
		j.Summary = summary
		j.Error = errText
		j.UpdatedAt = time.Now().UTC()
		s.repo.Update(j)
	}
}
