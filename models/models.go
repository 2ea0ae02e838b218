package models

import (
	"encoding/json"
	"time"
)

// LogUpload is the wire payload delivered with a newFlightLog event: a
// parsed tabular flight log plus its origin.
type LogUpload struct {
	Source string          `json:"source"`
	Rows   json.RawMessage `json:"rows"`
}

// AnalysisRecord is the persisted summary of one analysis run. The full
// structured result travels as JSON so the storage schema stays stable while
// the result type evolves.
type AnalysisRecord struct {
	ID           int64           `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Source       string          `json:"source,omitempty"`
	AircraftType string          `json:"aircraftType"`
	Confidence   float64         `json:"confidence"`
	RiskScore    float64         `json:"riskScore"`
	RiskLevel    string          `json:"riskLevel"`
	AnomalyCount int             `json:"anomalyCount"`
	Rows         int             `json:"rows"`
	LatencyMs    float64         `json:"latencyMs"`
	Result       json.RawMessage `json:"result"`
}
