package service

import (
	"context"
	"sync"
	"time"

	"homeguard/internal/models"
)

// stubMailer records every delivery attempt; failTo lists addresses whose
// attempts should fail.
type stubMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]error
}

type sentMail struct {
	Subject string
	Body    string
	To      string
}

func (m *stubMailer) Send(subject, body, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Subject: subject, Body: body, To: to})
	if err, ok := m.failTo[to]; ok {
		return err
	}
	return nil
}

func (m *stubMailer) attempts() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// stubEventRepo collects appended events in memory.
type stubEventRepo struct {
	mu        sync.Mutex
	appended  []models.AlertEvent
	appendErr error
	listResp  []models.AlertEvent
	listErr   error

	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (r *stubEventRepo) Append(ctx context.Context, e models.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, e)
	return r.appendErr
}

func (r *stubEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.AlertEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrom, r.lastTo, r.lastType = from, to, typ
	return r.listResp, r.listErr
}

func (r *stubEventRepo) events() []models.AlertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AlertEvent, len(r.appended))
	copy(out, r.appended)
	return out
}

// Pipeline stubs for job tests.

type stubSafety struct {
	triggered bool
	calls     int
	mu        sync.Mutex
}

func (s *stubSafety) Evaluate(ctx context.Context, batch []models.Reading) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.triggered
}

type stubPolicy struct {
	decision models.Decision
	panicMsg string
	calls    int
	mu       sync.Mutex
}

func (s *stubPolicy) Decide(ctx context.Context, batch []models.Reading) models.Decision {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.decision
}

type stubNotifier struct {
	outcome DispatchOutcome
	calls   int
	mu      sync.Mutex
}

func (s *stubNotifier) Dispatch(ctx context.Context, d models.Decision, batch []models.Reading) DispatchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.outcome
}

// waitTerminal polls the job until it reaches done/error or the deadline
// expires.
func waitTerminal(jobs *JobService, id string, deadline time.Duration) (models.Job, bool) {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if j, ok := jobs.Status(id); ok && j.Terminal() {
			return j, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	j, ok := jobs.Status(id)
	return j, ok && j.Terminal()
}
