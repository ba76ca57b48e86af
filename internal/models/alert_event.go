package models

import "time"

// AlertEvent is a single entry in the dispatch audit log.
type AlertEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // EMERGENCY | DECISION_EMAIL | SAFE_SUMMARY
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
