package flight

// Analysis Pipeline
//
// Analyze is the only operation this core exposes to its caller:
//
//   raw log -> summary stats -> type classification -> model lookup ->
//   anomaly detection -> attribution -> aggregated AnalysisResult
//
// The call is synchronous and CPU-bound; re-entrancy is the only concurrency
// requirement and is met because all per-call state is local and the registry
// publishes read-only models. Given a fixed log and unchanged model state the
// output is identical across calls.

import (
	"fmt"
	"time"
)

// Analyzer wires the pipeline stages around one model registry.
type Analyzer struct {
	registry   *ModelRegistry
	classifier ClassifierConfig
	detector   *Detector
	explainer  *Explainer
}

// NewAnalyzer builds an analyzer over the given registry.
func NewAnalyzer(registry *ModelRegistry, cfg ClassifierConfig) *Analyzer {
	return &Analyzer{
		registry:   registry,
		classifier: cfg,
		detector:   NewDetector(registry),
		explainer:  NewExplainer(registry),
	}
}

// Analyze runs the full pipeline over one flight log.
//
// A log whose aircraft type cannot be detected (classification confidence 0)
// yields a degraded result with zero risk and no anomalies rather than
// routing garbage through an arbitrary model. Typed errors: ErrInvalidInput
// for empty or unordered logs, ErrModelUnavailable when the detected type has
// no model and lazy training is off.
func (a *Analyzer) Analyze(log FlightLog) (*AnalysisResult, error) {
	if err := validate(log); err != nil {
		return nil, err
	}

	started := time.Now()
	classification := Classify(Summarize(log), a.classifier)

	if classification.Confidence == 0 {
		return aggregate(log, classification, Detection{RiskLevel: RiskLow}, Explanation{
			Summary: "no dominant contributors identified",
		}, started), nil
	}

	detection, err := a.detector.Detect(log, classification.Type)
	if err != nil {
		return nil, err
	}

	explanation, err := a.explainer.Explain(log, classification.Type)
	if err != nil {
		return nil, err
	}

	return aggregate(log, classification, detection, explanation, started), nil
}

func validate(log FlightLog) error {
	if len(log.Rows) == 0 {
		return fmt.Errorf("%w: log has no rows", ErrInvalidInput)
	}
	for i := 1; i < len(log.Rows); i++ {
		if log.Rows[i].Timestamp < log.Rows[i-1].Timestamp {
			return fmt.Errorf("%w: timestamps out of order at row %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// aggregate combines the upstream outputs into the final immutable result.
// It applies no business rules beyond copying and labeling fields.
func aggregate(log FlightLog, c Classification, d Detection, e Explanation, started time.Time) *AnalysisResult {
	return &AnalysisResult{
		AircraftType:       c.Type,
		AircraftConfidence: c.Confidence,
		Distribution:       c.Distribution,
		RiskScore:          d.RiskScore,
		RiskLevel:          d.RiskLevel,
		Anomalies:          d.Anomalies,
		Explanation:        e,
		Rows:               len(log.Rows),
		LatencyMs:          float64(time.Since(started).Microseconds()) / 1000.0,
		AnalyzedAt:         time.Now().UTC(),
	}
}
