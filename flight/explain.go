package flight

// Explainability Engine
//
// Computes path-based attributions for the selected aircraft type's booster
// over a bounded, deterministic sample of rows, then ranks features by mean
// absolute attribution. The ranking's contributions are signed: positive
// values pushed the anomaly probability up across the sample. A degenerate
// model (no trees, or nothing to attribute) yields an empty ranking instead
// of an error so the enclosing analysis still completes.

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// maxExplainRows bounds attribution work on long logs.
	maxExplainRows = 64

	topFeatureCount = 5
)

// Explainer derives feature attributions from the registry's trained models.
type Explainer struct {
	registry *ModelRegistry
}

// NewExplainer returns an explainer bound to a model registry.
func NewExplainer(registry *ModelRegistry) *Explainer {
	return &Explainer{registry: registry}
}

// Explain ranks the features driving the anomaly model's output for a
// bounded sample of the log's rows.
func (e *Explainer) Explain(log FlightLog, aircraft AircraftType) (Explanation, error) {
	model, err := e.registry.Model(aircraft)
	if err != nil {
		return Explanation{}, err
	}

	explanation := Explanation{}
	if len(log.Rows) == 0 || len(model.Booster.Trees) == 0 {
		explanation.Summary = "no dominant contributors identified"
		return explanation, nil
	}

	matrix := FeatureMatrix(log, aircraft)
	stride := (len(matrix) + maxExplainRows - 1) / maxExplainRows

	featureCount := len(model.FeatureNames)
	signedSum := make([]float64, featureCount)
	absSum := make([]float64, featureCount)

	sampled := 0
	for i := 0; i < len(matrix); i += stride {
		contributions, _ := model.Booster.Attribute(model.Scaler.Transform(matrix[i]))
		for j := 0; j < featureCount && j < len(contributions); j++ {
			signedSum[j] += contributions[j]
			absSum[j] += abs(contributions[j])
		}
		sampled++
	}
	explanation.SampledRows = sampled

	type ranked struct {
		index   int
		meanAbs float64
	}
	ranking := make([]ranked, 0, featureCount)
	var totalImpact float64
	for j := 0; j < featureCount; j++ {
		meanAbs := absSum[j] / float64(sampled)
		totalImpact += meanAbs
		if meanAbs > 1e-9 {
			ranking = append(ranking, ranked{index: j, meanAbs: meanAbs})
		}
	}
	explanation.OverallImpact = totalImpact

	if len(ranking) == 0 {
		explanation.Summary = "no dominant contributors identified"
		return explanation, nil
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].meanAbs != ranking[j].meanAbs {
			return ranking[i].meanAbs > ranking[j].meanAbs
		}
		return ranking[i].index < ranking[j].index
	})
	if len(ranking) > topFeatureCount {
		ranking = ranking[:topFeatureCount]
	}

	for _, r := range ranking {
		explanation.TopFeatures = append(explanation.TopFeatures, FeatureContribution{
			Feature:      model.FeatureNames[r.index],
			Contribution: signedSum[r.index] / float64(sampled),
		})
	}
	explanation.Summary = summarize(explanation.TopFeatures)
	return explanation, nil
}

// summarize turns the ranked contributions into a short sentence.
func summarize(top []FeatureContribution) string {
	parts := make([]string, 0, len(top))
	for _, fc := range top {
		if len(parts) == 3 {
			break
		}
		direction := "raising"
		if fc.Contribution < 0 {
			direction = "lowering"
		}
		parts = append(parts, fmt.Sprintf("%s (%s risk)", fc.Feature, direction))
	}
	return fmt.Sprintf("largest contributors: %s", strings.Join(parts, ", "))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
