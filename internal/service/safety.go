package service

import (
	"context"
	"fmt"

	"homeguard/internal/logger"
	"homeguard/internal/models"
	"homeguard/internal/repository"
)

// Deterministic emergency thresholds. These are the authoritative limits;
// the policy model only receives them as guidance and cannot override the
// local check.
const (
	EmergencyTempC = 70.0
	EmergencyGas   = 1.0
)

// Alert event types recorded in the audit log.
const (
	EventEmergency     = "EMERGENCY"
	EventDecisionEmail = "DECISION_EMAIL"
	EventSafeSummary   = "SAFE_SUMMARY"
)

const emergencySubject = "Emergency Alert"

// SafetyService is the deterministic tier of the decision pipeline.
type SafetyService struct {
	mailer      Mailer
	eventRepo   repository.EventRepo
	emergencyTo string
	log         *logger.Logger
}

func NewSafetyService(mailer Mailer, eventRepo repository.EventRepo, email EmailConfig, log *logger.Logger) *SafetyService {
	return &SafetyService{
		mailer:      mailer,
		eventRepo:   eventRepo,
		emergencyTo: email.EmergencyAddr,
		log:         log,
	}
}

// Evaluate inspects the most recent reading and, on a threshold
// violation, sends the fixed emergency message to the emergency address.
// Exactly one delivery attempt is made; a failed attempt is logged, not
// retried. Returns true when the emergency fired.
func (s *SafetyService) Evaluate(ctx context.Context, batch []models.Reading) bool {
	if len(batch) == 0 {
		return false
	}
	last := batch[len(batch)-1]

	if !(last.Temperature > EmergencyTempC || last.Gas > EmergencyGas) {
		return false
	}

	if s.log != nil {
		s.log.Warnw("local emergency triggered",
			"timestamp", last.Timestamp,
			"temperature", last.Temperature,
			"gas", last.Gas,
		)
	}

	body := fmt.Sprintf(
		"Emergency detected!\n"+
			"Timestamp: %s\n"+
			"Temperature: %v °C\n"+
			"Humidity: %v %%\n"+
			"Gas: %v\n"+
			"Action Required: Overheating or gas hazard.",
		last.Timestamp, last.Temperature, last.Humidity, last.Gas,
	)

	err := s.mailer.Send(emergencySubject, body, s.emergencyTo)
	if err != nil && s.log != nil {
		s.log.Errorw("emergency email failed", "err", err)
	}

	s.recordEvent(ctx, last, err == nil)
	return true
}

func (s *SafetyService) recordEvent(ctx context.Context, last models.Reading, delivered bool) {
	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.Append(ctx, models.AlertEvent{
		Type:        EventEmergency,
		Description: fmt.Sprintf("emergency thresholds exceeded at %s", last.Timestamp),
		Metadata: map[string]any{
			"recipient":   s.emergencyTo,
			"delivered":   delivered,
			"temperature": last.Temperature,
			"gas":         last.Gas,
		},
	})
	if err != nil && s.log != nil {
		s.log.Errorw("alert event append failed", "type", EventEmergency, "err", err)
	}
}
