package flight

// Anomaly Detector
//
// Runs the selected aircraft type's trained model over the type-specific
// feature matrix. The aggregate risk score is the mean per-row anomaly
// probability; individual rows at or above the fixed 0.7 threshold become
// AnomalyRecords. The aggregate risk bands reuse the 0.7 boundary with
// different semantics on purpose: a log can be high risk overall without any
// single row crossing the per-row threshold, and vice versa.

import (
	"fmt"
	"sort"
	"strings"
)

// AnomalyThreshold is the per-row probability at or above which a row is
// flagged as anomalous.
const AnomalyThreshold = 0.7

// RiskLevelFor maps an aggregate risk score onto the three-bucket scale.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLow
	case score < 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Detector scores flight logs against the registry's trained models.
type Detector struct {
	registry *ModelRegistry
}

// NewDetector returns a detector bound to a model registry.
func NewDetector(registry *ModelRegistry) *Detector {
	return &Detector{registry: registry}
}

// Detect produces the aggregate risk score and the per-row anomaly list for
// one flight log, using the model trained for the given aircraft type.
func (d *Detector) Detect(log FlightLog, aircraft AircraftType) (Detection, error) {
	model, err := d.registry.Model(aircraft)
	if err != nil {
		return Detection{}, err
	}

	detection := Detection{RiskLevel: RiskLow}
	if len(log.Rows) == 0 {
		return detection, nil
	}

	matrix := FeatureMatrix(log, aircraft)
	ranges := nominalRanges(aircraft)

	var probSum float64
	for i, features := range matrix {
		prob := model.Booster.PredictProb(model.Scaler.Transform(features))
		probSum += prob
		if prob < AnomalyThreshold {
			continue
		}

		snapshot := make(map[string]float64, len(features))
		for j, name := range model.FeatureNames {
			if j < len(features) {
				snapshot[name] = features[j]
			}
		}
		detection.Anomalies = append(detection.Anomalies, AnomalyRecord{
			Row:         i,
			Timestamp:   log.Rows[i].Timestamp,
			Probability: prob,
			Features:    snapshot,
			Description: describeDeviation(model.FeatureNames, features, ranges),
		})
	}

	detection.RiskScore = probSum / float64(len(matrix))
	detection.RiskLevel = RiskLevelFor(detection.RiskScore)
	return detection, nil
}

type deviation struct {
	name     string
	value    float64
	band     valueRange
	severity float64
}

// describeDeviation names the features of a flagged row that sit furthest
// outside their nominal band for this aircraft type.
func describeDeviation(names []string, features []float64, ranges map[string]valueRange) string {
	var deviations []deviation
	for i, name := range names {
		band, ok := ranges[name]
		if !ok || i >= len(features) {
			continue
		}
		value := features[i]
		if band.contains(value) {
			continue
		}
		width := band.Hi - band.Lo
		if width <= 0 {
			width = 1
		}
		var dist float64
		if value < band.Lo {
			dist = band.Lo - value
		} else {
			dist = value - band.Hi
		}
		deviations = append(deviations, deviation{name: name, value: value, band: band, severity: dist / width})
	}

	if len(deviations) == 0 {
		return "anomalous sensor pattern with all individual features inside nominal bounds"
	}

	sort.Slice(deviations, func(i, j int) bool { return deviations[i].severity > deviations[j].severity })
	if len(deviations) > 3 {
		deviations = deviations[:3]
	}

	parts := make([]string, len(deviations))
	for i, d := range deviations {
		direction := "above"
		if d.value < d.band.Lo {
			direction = "below"
		}
		parts[i] = fmt.Sprintf("%s=%.2f %s nominal [%.2f, %.2f]", d.name, d.value, direction, d.band.Lo, d.band.Hi)
	}
	return strings.Join(parts, "; ")
}
