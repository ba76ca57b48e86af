package models

// Decision actions.
const (
	ActionNone      = "none"
	ActionSendEmail = "send_email"
)

// Decision recipients.
const (
	RecipientUser      = "user"
	RecipientEmergency = "emergency"
	RecipientBoth      = "both"
	RecipientNone      = "none"
)

// Decision severities.
const (
	SeverityInfo      = "info"
	SeverityWarning   = "warning"
	SeverityEmergency = "emergency"
)

// Decision is the structured outcome of a policy-model consultation.
// A zero-value-like safe decision (action=none, severity=info) is
// substituted whenever the model output cannot be trusted.
type Decision struct {
	Action         string `json:"action"`          // none | send_email
	EmailRecipient string `json:"email_recipient"` // user | emergency | both | none
	EmailSubject   string `json:"email_subject"`
	EmailBody      string `json:"email_body"` // advisory ≤120 words, not enforced locally
	Severity       string `json:"severity"`   // info | warning | emergency
}

// SafeDecision returns the conservative default used when the policy
// endpoint is unreachable or its output fails the contract.
func SafeDecision() Decision {
	return Decision{Action: ActionNone, Severity: SeverityInfo}
}
