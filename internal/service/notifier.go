package service

import (
	"context"
	"fmt"
	"strings"

	"homeguard/internal/logger"
	"homeguard/internal/models"
	"homeguard/internal/repository"
)

const safeSummarySubject = "HomeGuard Status: Normal Operation"

// DispatchOutcome reports which notification path completed.
type DispatchOutcome struct {
	// DecisionSent is true when at least one recipient accepted the
	// decision email.
	DecisionSent bool
	// SafeSummarySent is true when the dispatcher fell through to the
	// safe-summary path (regardless of that delivery's own outcome).
	SafeSummarySent bool
}

// NotifierService issues delivery attempts for policy decisions and owns
// the deterministic safe-summary fallback.
type NotifierService struct {
	mailer      Mailer
	eventRepo   repository.EventRepo
	userTo      string
	emergencyTo string
	log         *logger.Logger
}

func NewNotifierService(mailer Mailer, eventRepo repository.EventRepo, email EmailConfig, log *logger.Logger) *NotifierService {
	return &NotifierService{
		mailer:      mailer,
		eventRepo:   eventRepo,
		userTo:      email.UserAddr,
		emergencyTo: email.EmergencyAddr,
		log:         log,
	}
}

// Dispatch delivers the decision email to the resolved recipient set,
// aggregating success as the logical OR of individual attempts. When the
// action is not send_email, or every attempt failed, it degrades to the
// safe-summary path: a rule-based normal-status message sent to the user
// address unconditionally.
func (s *NotifierService) Dispatch(ctx context.Context, d models.Decision, batch []models.Reading) DispatchOutcome {
	if d.Action == models.ActionSendEmail {
		sent := false

		if (d.EmailRecipient == models.RecipientUser || d.EmailRecipient == models.RecipientBoth) && s.userTo != "" {
			sent = s.attempt(d.EmailSubject, d.EmailBody, s.userTo) || sent
		}
		if (d.EmailRecipient == models.RecipientEmergency || d.EmailRecipient == models.RecipientBoth) && s.emergencyTo != "" {
			sent = s.attempt(d.EmailSubject, d.EmailBody, s.emergencyTo) || sent
		}

		s.recordEvent(ctx, EventDecisionEmail,
			fmt.Sprintf("policy decision email (%s, severity %s)", d.EmailRecipient, d.Severity),
			map[string]any{"recipient": d.EmailRecipient, "delivered": sent},
		)

		if sent {
			return DispatchOutcome{DecisionSent: true}
		}
	}

	last := batch[len(batch)-1]
	summary := BuildSafeSummary(last)
	delivered := s.attempt(safeSummarySubject, summary, s.userTo)
	if !delivered && s.log != nil {
		s.log.Warnw("safe summary delivery failed", "to", s.userTo)
	}

	s.recordEvent(ctx, EventSafeSummary,
		fmt.Sprintf("safe summary for reading at %s", last.Timestamp),
		map[string]any{"recipient": s.userTo, "delivered": delivered},
	)

	return DispatchOutcome{SafeSummarySent: true}
}

func (s *NotifierService) attempt(subject, body, to string) bool {
	if err := s.mailer.Send(subject, body, to); err != nil {
		if s.log != nil {
			s.log.Errorw("notification attempt failed", "to", to, "err", err)
		}
		return false
	}
	return true
}

func (s *NotifierService) recordEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.Append(ctx, models.AlertEvent{
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && s.log != nil {
		s.log.Errorw("alert event append failed", "type", typ, "err", err)
	}
}

// SafeRecommendations evaluates the fixed advisory bands against one
// reading. Bands may overlap; each is checked independently in a fixed
// order and every match is included.
func SafeRecommendations(r models.Reading) []string {
	var rec []string

	if r.Temperature < 18 {
		rec = append(rec, "Increase room temperature for better device performance.")
	}
	if r.Temperature >= 18 && r.Temperature <= 28 {
		rec = append(rec, "Temperature is optimal for safe operation.")
	}
	if r.Humidity < 30 {
		rec = append(rec, "Consider running a humidifier for sensor stability.")
	}
	if r.Humidity > 70 {
		rec = append(rec, "Reduce humidity levels to prevent condensation.")
	}
	if r.Gas > 0.5 && r.Gas <= 1.0 {
		rec = append(rec, "Improve ventilation to keep gas levels low.")
	}
	if r.Gas <= 0.5 {
		rec = append(rec, "Gas levels are excellent. No ventilation needed.")
	}
	if r.Gas > 0.8 {
		rec = append(rec, "Open windows for better gas dissipation.")
	}

	return rec
}

// BuildSafeSummary renders the deterministic normal-status message from
// the most recent reading.
func BuildSafeSummary(last models.Reading) string {
	recommendations := strings.Join(SafeRecommendations(last), "\n- ")

	return strings.TrimSpace(fmt.Sprintf(`
Safety Check: NORMAL

All monitored readings are within safe limits.
No dangerous temperature or gas levels were detected.

Latest reading:
Timestamp: %s
Temperature: %v °C
Humidity: %v %%
Gas index: %v

Recommendations:
- %s
`, last.Timestamp, last.Temperature, last.Humidity, last.Gas, recommendations))
}
