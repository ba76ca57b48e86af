package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homeguard/internal/logger"
	"homeguard/internal/models"
)

// At most this many of the newest readings are serialized into the
// prompt; older ones are dropped to bound context size.
const maxPromptReadings = 40

// Inference can be slow on local models; the default bound is generous.
const defaultPolicyTimeout = 200 * time.Second

const (
	jsonOpenTag  = "<json>"
	jsonCloseTag = "</json>"
)

// policyPrompt mandates the output contract: a single JSON object inside
// <json></json> tags, nothing else. The thresholds restated here are
// model-facing guidance only; the deterministic evaluator remains
// authoritative.
const policyPrompt = `
You are an autonomous safety-analysis system for a home sensor network.

You MUST output a single JSON object ONLY, inside these tags:

<json>
{ ... }
</json>

Nothing is allowed before <json> or after </json>. Violating this rule causes override.

JSON schema:
{
  "action": "none" | "send_email",
  "email_recipient": "user" | "emergency" | "both",
  "email_subject": "string",
  "email_body": "string",
  "severity": "info" | "warning" | "emergency"
}

Rules:
- EMERGENCY if any reading has:
  - temperature > 70 °C
  - or gas > 1.0
- EMERGENCY always requires sending email.
- email_body must be ≤120 words.
- For safe readings: you MAY choose action="none" (the local system will handle summaries).

Readings:
{block}
`

// PolicyConfig points at an Ollama-style generate endpoint.
type PolicyConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// PolicyService consults the external reasoning model. All transport and
// contract failures degrade to the safe default decision; Decide never
// returns an error.
type PolicyService struct {
	cfg    PolicyConfig
	client *http.Client
	log    *logger.Logger
}

func NewPolicyService(cfg PolicyConfig, log *logger.Logger) *PolicyService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPolicyTimeout
	}
	return &PolicyService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Decide builds the bounded-context prompt, invokes the model, and parses
// the mandated output contract. Idempotent for identical inputs and
// identical model output.
func (s *PolicyService) Decide(ctx context.Context, batch []models.Reading) models.Decision {
	prompt, err := buildPrompt(batch)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("prompt build failed", "err", err)
		}
		return models.SafeDecision()
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("policy endpoint unreachable", "err", err)
		}
		return models.SafeDecision()
	}

	region, ok := extractDelimited(text)
	if !ok {
		if s.log != nil {
			s.log.Errorw("model did not return delimited JSON")
		}
		return models.SafeDecision()
	}

	d, ok := decodeDecision(region)
	if !ok {
		if s.log != nil {
			s.log.Errorw("decision decode failed", "region", region)
		}
		return models.SafeDecision()
	}
	return d
}

// buildPrompt serializes the newest readings into the instruction template.
func buildPrompt(batch []models.Reading) (string, error) {
	trimmed := batch
	if len(trimmed) > maxPromptReadings {
		trimmed = trimmed[len(trimmed)-maxPromptReadings:]
	}
	block, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return "", err
	}
	return strings.Replace(policyPrompt, "{block}", string(block), 1), nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// generate performs the model round trip and returns the raw output text.
func (s *PolicyService) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  s.cfg.Model,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("policy endpoint returned %s", resp.Status)
	}

	// Prefer the structured response field; fall back to the raw body for
	// endpoints that return plain text.
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err == nil && gr.Response != "" {
		return gr.Response, nil
	}
	return string(raw), nil
}

// extractDelimited locates the first <json>...</json> region. Embedded
// newlines are fine; content outside the tags is ignored.
func extractDelimited(text string) (string, bool) {
	start := strings.Index(text, jsonOpenTag)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(jsonOpenTag):]
	end := strings.Index(rest, jsonCloseTag)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// rawDecision mirrors the contract schema with optional fields so that
// missing keys can be defaulted per field.
type rawDecision struct {
	Action         *string `json:"action"`
	EmailRecipient *string `json:"email_recipient"`
	EmailSubject   *string `json:"email_subject"`
	EmailBody      *string `json:"email_body"`
	Severity       *string `json:"severity"`
}

// decodeDecision strictly parses the extracted region. Unknown or missing
// field values fall back to the per-field safe defaults.
func decodeDecision(region string) (models.Decision, bool) {
	var raw rawDecision
	if err := json.Unmarshal([]byte(region), &raw); err != nil {
		return models.Decision{}, false
	}

	d := models.SafeDecision()
	d.EmailRecipient = models.RecipientNone

	if raw.Action != nil {
		switch *raw.Action {
		case models.ActionNone, models.ActionSendEmail:
			d.Action = *raw.Action
		}
	}
	if raw.EmailRecipient != nil {
		switch *raw.EmailRecipient {
		case models.RecipientUser, models.RecipientEmergency, models.RecipientBoth, models.RecipientNone:
			d.EmailRecipient = *raw.EmailRecipient
		}
	}
	if raw.EmailSubject != nil {
		d.EmailSubject = *raw.EmailSubject
	}
	if raw.EmailBody != nil {
		d.EmailBody = *raw.EmailBody
	}
	if raw.Severity != nil {
		switch *raw.Severity {
		case models.SeverityInfo, models.SeverityWarning, models.SeverityEmergency:
			d.Severity = *raw.Severity
		}
	}
	return d, true
}
