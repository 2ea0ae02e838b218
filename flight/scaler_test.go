package flight

import (
	"math"
	"testing"
)

func TestFeatureScalerTransform(t *testing.T) {
	t.Parallel()

	samples := [][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
	}
	scaler, err := NewFeatureScaler(samples)
	if err != nil {
		t.Fatalf("NewFeatureScaler failed: %v", err)
	}

	if scaler.Mean[0] != 2 {
		t.Errorf("Mean[0] = %f, want 2", scaler.Mean[0])
	}
	// a zero-variance column must scale by 1, not divide by zero
	if scaler.Stddev[1] != 1 {
		t.Errorf("Stddev[1] = %f, want 1 for a constant column", scaler.Stddev[1])
	}

	got := scaler.Transform([]float64{2, 10})
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("Transform of the mean = %v, want zeros", got)
	}
	for _, v := range scaler.Transform([]float64{math.Inf(1), -5}) {
		if math.IsNaN(v) {
			t.Error("Transform produced NaN")
		}
	}
}

func TestNewFeatureScalerRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := NewFeatureScaler(nil); err == nil {
		t.Error("no error for empty sample matrix")
	}
}
