package service

import (
	"context"
	"time"

	"homeguard/internal/logger"
	"homeguard/internal/models"
	"homeguard/internal/repository"
)

// Normalizer validates a raw upload payload into an ordered batch.
type Normalizer interface {
	Normalize(payload any) ([]models.Reading, error)
}

// Safety is the deterministic emergency check applied to the most recent
// reading. It runs unconditionally before any policy consultation and
// reports whether it fired (and therefore already notified).
type Safety interface {
	Evaluate(ctx context.Context, batch []models.Reading) bool
}

// Policy consults the external reasoning model and parses its output
// contract. Never returns an error: any failure degrades to the safe
// default decision.
type Policy interface {
	Decide(ctx context.Context, batch []models.Reading) models.Decision
}

// Notifier resolves recipients and issues delivery attempts for a
// decision, falling back to the deterministic safe summary.
type Notifier interface {
	Dispatch(ctx context.Context, d models.Decision, batch []models.Reading) DispatchOutcome
}

// Jobs tracks asynchronous analysis of accepted batches.
type Jobs interface {
	Submit(ctx context.Context, batch []models.Reading) (models.Job, error)
	Status(id string) (models.Job, bool)
}

// EventLog exposes the dispatch audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AlertEvent, error)
}

// Readings exposes the archived sensor readings.
type Readings interface {
	Recent(ctx context.Context, limit int) ([]models.Reading, error)
}

// Janitor runs the background loop that evicts expired terminal jobs.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Normalizer
	Safety
	Policy
	Notifier
	Jobs
	EventLog
	Readings
	Janitor
}

// EmailConfig carries the two notification addresses.
type EmailConfig struct {
	UserAddr      string
	EmergencyAddr string
}

// JobsConfig tunes the worker pool and record retention.
type JobsConfig struct {
	MaxWorkers int
	TTL        time.Duration
}

// Deps carries everything the service layer needs besides repositories.
type Deps struct {
	Mailer Mailer
	Policy PolicyConfig
	Email  EmailConfig
	Jobs   JobsConfig
	Log    *logger.Logger
}

// NewService wires repositories and external collaborators into concrete
// services.
func NewService(repos *repository.Repository, d Deps) *Service {
	safety := NewSafetyService(d.Mailer, repos.Events, d.Email, d.Log)
	policy := NewPolicyService(d.Policy, d.Log)
	notifier := NewNotifierService(d.Mailer, repos.Events, d.Email, d.Log)

	return &Service{
		Normalizer: NewNormalizerService(),
		Safety:     safety,
		Policy:     policy,
		Notifier:   notifier,
		Jobs:       NewJobService(repos.Jobs, repos.Readings, safety, policy, notifier, d.Jobs, d.Log),
		EventLog:   NewEventLogService(repos.Events),
		Readings:   NewReadingService(repos.Readings),
		Janitor:    NewJanitorService(repos.Jobs, d.Jobs.TTL, d.Log),
	}
}
