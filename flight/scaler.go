package flight

// Feature Scaling
//
// Flight telemetry mixes scales freely (RPM in the thousands, GPS quality in
// [0,1]), so features are standardized to mean=0/std=1 before tree training
// and inference. Without this, large-magnitude columns dominate every split
// the booster considers.

import (
	"errors"
	"math"
)

// FeatureScaler standardizes features using z-score normalization computed
// from a training matrix. It is immutable after construction and safe for
// concurrent Transform calls.
type FeatureScaler struct {
	Mean   []float64 `json:"mean"`
	Stddev []float64 `json:"stddev"`
}

// NewFeatureScaler computes scaling parameters from a sample matrix.
func NewFeatureScaler(samples [][]float64) (*FeatureScaler, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples provided")
	}
	featureCount := len(samples[0])
	if featureCount == 0 {
		return nil, errors.New("samples have no features")
	}

	mean := make([]float64, featureCount)
	for _, row := range samples {
		if len(row) != featureCount {
			return nil, errors.New("inconsistent feature dimensions")
		}
		for i, val := range row {
			mean[i] += val
		}
	}
	for i := range mean {
		mean[i] /= float64(len(samples))
	}

	stddev := make([]float64, featureCount)
	for _, row := range samples {
		for i, val := range row {
			diff := val - mean[i]
			stddev[i] += diff * diff
		}
	}
	for i := range stddev {
		stddev[i] = math.Sqrt(stddev[i] / float64(len(samples)))
		// constant features would otherwise divide by zero
		if stddev[i] < 1e-10 {
			stddev[i] = 1.0
		}
	}

	return &FeatureScaler{Mean: mean, Stddev: stddev}, nil
}

// Transform applies z-score standardization to one feature vector.
func (fs *FeatureScaler) Transform(features []float64) []float64 {
	if len(features) != len(fs.Mean) {
		return features
	}
	scaled := make([]float64, len(features))
	for i, val := range features {
		scaled[i] = (val - fs.Mean[i]) / fs.Stddev[i]
	}
	return scaled
}

// TransformMatrix applies Transform to every row of a matrix.
func (fs *FeatureScaler) TransformMatrix(matrix [][]float64) [][]float64 {
	scaled := make([][]float64, len(matrix))
	for i, row := range matrix {
		scaled[i] = fs.Transform(row)
	}
	return scaled
}
