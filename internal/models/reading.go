package models

// Reading is a single sensor sample relayed from the edge collector.
// Timestamp is an opaque string produced by the collector; it is passed
// through unparsed.
type Reading struct {
	Timestamp   string  `json:"timestamp"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	Gas         float64 `json:"gas"`         // relative gas index
	Pressure    float64 `json:"pressure,omitempty"` // hPa, optional
}
