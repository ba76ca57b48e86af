package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"homeguard/internal/models"
)

const userAddr = "user@example.com"

func newNotifierForTest(mailer *stubMailer, events *stubEventRepo) *NotifierService {
	return NewNotifierService(mailer, events, EmailConfig{
		UserAddr:      userAddr,
		EmergencyAddr: emergencyAddr,
	}, nil)
}

func sendEmailDecision(recipient string) models.Decision {
	return models.Decision{
		Action:         models.ActionSendEmail,
		EmailRecipient: recipient,
		EmailSubject:   "subject",
		EmailBody:      "body",
		Severity:       models.SeverityWarning,
	}
}

func safeBatch() []models.Reading {
	return []models.Reading{{Timestamp: "2025-01-01 00:00:00", Temperature: 25, Humidity: 50, Gas: 0.1}}
}

func recipientsOf(attempts []sentMail) []string {
	out := make([]string, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, a.To)
	}
	return out
}

func TestDispatch_RecipientResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		recipient     string
		wantTo        []string
		wantSent      bool
		wantSafeExtra bool // safe summary dispatched on top of decision attempts
	}{
		{name: "user", recipient: models.RecipientUser, wantTo: []string{userAddr}, wantSent: true},
		{name: "emergency", recipient: models.RecipientEmergency, wantTo: []string{emergencyAddr}, wantSent: true},
		{name: "both", recipient: models.RecipientBoth, wantTo: []string{userAddr, emergencyAddr}, wantSent: true},
		{name: "none falls back to summary", recipient: models.RecipientNone, wantTo: []string{userAddr}, wantSent: false, wantSafeExtra: true},
		{name: "unknown falls back to summary", recipient: "postmaster", wantTo: []string{userAddr}, wantSent: false, wantSafeExtra: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mailer := &stubMailer{}
			events := &stubEventRepo{}
			svc := newNotifierForTest(mailer, events)

			out := svc.Dispatch(context.Background(), sendEmailDecision(tc.recipient), safeBatch())

			if out.DecisionSent != tc.wantSent {
				t.Fatalf("DecisionSent: want %v, got %v", tc.wantSent, out.DecisionSent)
			}
			if out.SafeSummarySent != tc.wantSafeExtra {
				t.Fatalf("SafeSummarySent: want %v, got %v", tc.wantSafeExtra, out.SafeSummarySent)
			}

			got := recipientsOf(mailer.attempts())
			if len(got) != len(tc.wantTo) {
				t.Fatalf("attempts: want %v, got %v", tc.wantTo, got)
			}
			for i := range got {
				if got[i] != tc.wantTo[i] {
					t.Fatalf("attempts: want %v, got %v", tc.wantTo, got)
				}
			}
		})
	}
}

func TestDispatch_PartialFailureStillSuccess(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{failTo: map[string]error{userAddr: errors.New("mailbox full")}}
	events := &stubEventRepo{}
	svc := newNotifierForTest(mailer, events)

	out := svc.Dispatch(context.Background(), sendEmailDecision(models.RecipientBoth), safeBatch())

	if !out.DecisionSent {
		t.Fatal("one successful attempt out of two must count as dispatched")
	}
	if out.SafeSummarySent {
		t.Fatal("no safe summary expected after a successful decision dispatch")
	}
}

func TestDispatch_AllFailFallsBackToSummary(t *testing.T) {
	t.Parallel()

	mailer := &stubMailer{failTo: map[string]error{
		userAddr:      errors.New("down"),
		emergencyAddr: errors.New("down"),
	}}
	events := &stubEventRepo{}
	svc := newNotifierForTest(mailer, events)

	out := svc.Dispatch(context.Background(), sendEmailDecision(models.RecipientBoth), safeBatch())

	if out.DecisionSent {
		t.Fatal("no attempt succeeded; DecisionSent must be false")
	}
	if !out.SafeSummarySent {
		t.Fatal("expected fallback to the safe-summary path")
	}

	// Two failed decision attempts plus the summary attempt to the user.
	attempts := mailer.attempts()
	if len(attempts) != 3 {
		t.Fatalf("want 3 attempts, got %d", len(attempts))
	}
	if attempts[2].To != userAddr || attempts[2].Subject != safeSummarySubject {
		t.Fatalf("unexpected summary attempt: %+v", attempts[2])
	}

	// Both paths audited.
	evs := events.events()
	if len(evs) != 2 || evs[0].Type != EventDecisionEmail || evs[1].Type != EventSafeSummary {
		t.Fatalf("unexpected audit events: %+v", evs)
	}
}

func TestDispatch_ActionNoneSendsSummaryUnconditionally(t *testing.T) {
	t.Parallel()

	// Summary delivery itself failing does not change the outcome.
	mailer := &stubMailer{failTo: map[string]error{userAddr: errors.New("down")}}
	events := &stubEventRepo{}
	svc := newNotifierForTest(mailer, events)

	out := svc.Dispatch(context.Background(), models.SafeDecision(), safeBatch())

	if out.DecisionSent || !out.SafeSummarySent {
		t.Fatalf("want safe-summary outcome, got %+v", out)
	}
	attempts := mailer.attempts()
	if len(attempts) != 1 || attempts[0].To != userAddr {
		t.Fatalf("want single summary attempt to user, got %+v", attempts)
	}
	if !strings.Contains(attempts[0].Body, "Safety Check: NORMAL") {
		t.Fatalf("summary must report NORMAL: %q", attempts[0].Body)
	}
}

func TestSafeRecommendations_IndependentBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		reading models.Reading
		want    []string
	}{
		{
			name:    "optimal temp, low humidity, low gas",
			reading: models.Reading{Temperature: 25, Humidity: 25, Gas: 0.4},
			want: []string{
				"Temperature is optimal for safe operation.",
				"Consider running a humidifier for sensor stability.",
				"Gas levels are excellent. No ventilation needed.",
			},
		},
		{
			name:    "overlapping gas bands both match",
			reading: models.Reading{Temperature: 25, Humidity: 50, Gas: 0.9},
			want: []string{
				"Temperature is optimal for safe operation.",
				"Improve ventilation to keep gas levels low.",
				"Open windows for better gas dissipation.",
			},
		},
		{
			name:    "cold and humid",
			reading: models.Reading{Temperature: 10, Humidity: 80, Gas: 0.2},
			want: []string{
				"Increase room temperature for better device performance.",
				"Reduce humidity levels to prevent condensation.",
				"Gas levels are excellent. No ventilation needed.",
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := SafeRecommendations(tc.reading)
			if len(got) != len(tc.want) {
				t.Fatalf("want %d recommendations, got %v", len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("recommendation %d: want %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestBuildSafeSummary_EmbedsLatestReading(t *testing.T) {
	t.Parallel()

	summary := BuildSafeSummary(models.Reading{
		Timestamp:   "2025-01-01 00:00:00",
		Temperature: 25,
		Humidity:    50,
		Gas:         0.1,
	})

	for _, want := range []string{
		"Safety Check: NORMAL",
		"Timestamp: 2025-01-01 00:00:00",
		"Temperature: 25 °C",
		"Gas index: 0.1",
		"Recommendations:",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}
