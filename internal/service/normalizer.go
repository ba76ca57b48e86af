package service

import (
	"encoding/json"
	"strconv"

	"homeguard/internal/models"
)

// NormalizerService coerces raw upload payloads into canonical batches.
type NormalizerService struct{}

func NewNormalizerService() *NormalizerService { return &NormalizerService{} }

// requiredKeys must all be present for a bare object to count as a single
// reading submission.
var requiredKeys = []string{"timestamp", "temperature", "humidity", "gas"}

// Normalize accepts either {"records": [...]} or a single bare reading
// object. Records that fail coercion are dropped silently; only aggregate
// emptiness is reported. Order is preserved.
func (s *NormalizerService) Normalize(payload any) ([]models.Reading, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &ValidationError{Reason: ReasonInvalidFormat}
	}

	var candidates []any
	switch {
	case hasKey(obj, "records"):
		list, ok := obj["records"].([]any)
		if !ok {
			return nil, &ValidationError{Reason: ReasonInvalidFormat}
		}
		candidates = list
	case hasAllKeys(obj, requiredKeys):
		candidates = []any{obj}
	default:
		return nil, &ValidationError{Reason: ReasonInvalidFormat}
	}

	rows := make([]models.Reading, 0, len(candidates))
	for _, c := range candidates {
		if rd, ok := coerceReading(c); ok {
			rows = append(rows, rd)
		}
	}

	if len(rows) == 0 {
		return nil, &ValidationError{Reason: ReasonAllInvalid}
	}
	return rows, nil
}

func hasKey(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func hasAllKeys(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if !hasKey(obj, k) {
			return false
		}
	}
	return true
}

// coerceReading converts one candidate record. The timestamp is passed
// through as an opaque string; the numeric fields must coerce to float.
// Pressure is optional and defaults to zero when absent.
func coerceReading(candidate any) (models.Reading, bool) {
	rec, ok := candidate.(map[string]any)
	if !ok {
		return models.Reading{}, false
	}

	ts, ok := rec["timestamp"].(string)
	if !ok {
		return models.Reading{}, false
	}

	temp, ok := toFloat(rec["temperature"])
	if !ok {
		return models.Reading{}, false
	}
	hum, ok := toFloat(rec["humidity"])
	if !ok {
		return models.Reading{}, false
	}
	gas, ok := toFloat(rec["gas"])
	if !ok {
		return models.Reading{}, false
	}

	pressure := 0.0
	if raw, present := rec["pressure"]; present {
		p, ok := toFloat(raw)
		if !ok {
			return models.Reading{}, false
		}
		pressure = p
	}

	return models.Reading{
		Timestamp:   ts,
		Temperature: temp,
		Humidity:    hum,
		Gas:         gas,
		Pressure:    pressure,
	}, true
}

// toFloat accepts the value shapes encoding/json produces plus numeric
// strings, matching the lenient coercion applied by upstream relays.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
