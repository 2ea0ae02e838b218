package flight

import (
	"math"
	"math/rand"
	"testing"
)

// separableSet builds a two-feature sample where the label depends only on
// the first feature.
func separableSet(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	samples := make([][]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()
		samples[i] = []float64{x, rng.NormFloat64()}
		if x > 0.5 {
			labels[i] = 1
		}
	}
	return samples, labels
}

func TestTrainBoosterSeparatesClasses(t *testing.T) {
	t.Parallel()

	samples, labels := separableSet(600, 7)
	booster, err := TrainBooster(samples, labels, DefaultBoostConfig())
	if err != nil {
		t.Fatalf("TrainBooster failed: %v", err)
	}
	if len(booster.Trees) == 0 {
		t.Fatal("booster has no trees on a separable sample")
	}

	if p := booster.PredictProb([]float64{0.9, 0}); p < 0.7 {
		t.Errorf("P(anomaly | x=0.9) = %f, want > 0.7", p)
	}
	if p := booster.PredictProb([]float64{0.1, 0}); p > 0.3 {
		t.Errorf("P(anomaly | x=0.1) = %f, want < 0.3", p)
	}
}

func TestTrainBoosterDeterministic(t *testing.T) {
	t.Parallel()

	samples, labels := separableSet(400, 11)
	first, err := TrainBooster(samples, labels, DefaultBoostConfig())
	if err != nil {
		t.Fatalf("TrainBooster failed: %v", err)
	}
	second, err := TrainBooster(samples, labels, DefaultBoostConfig())
	if err != nil {
		t.Fatalf("TrainBooster failed: %v", err)
	}

	probes := [][]float64{{0.05, -1}, {0.35, 0.2}, {0.5, 0}, {0.72, 1.4}, {0.98, -0.3}}
	for _, probe := range probes {
		a, b := first.PredictProb(probe), second.PredictProb(probe)
		if a != b {
			t.Errorf("prediction for %v differs across identical trainings: %f vs %f", probe, a, b)
		}
	}
}

func TestTrainBoosterSingleClass(t *testing.T) {
	t.Parallel()

	samples := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	labels := []float64{0, 0, 0, 0}

	booster, err := TrainBooster(samples, labels, DefaultBoostConfig())
	if err != nil {
		t.Fatalf("TrainBooster failed: %v", err)
	}
	if len(booster.Trees) != 0 {
		t.Errorf("single-class booster built %d trees, want 0", len(booster.Trees))
	}
	if p := booster.PredictProb([]float64{100, 100}); p > 0.01 {
		t.Errorf("single-class prediction = %f, want near zero", p)
	}
}

func TestTrainBoosterRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := TrainBooster(nil, nil, DefaultBoostConfig()); err == nil {
		t.Error("no error for empty input")
	}
	if _, err := TrainBooster([][]float64{{1}}, []float64{1, 0}, DefaultBoostConfig()); err == nil {
		t.Error("no error for mismatched sample/label counts")
	}
	if _, err := TrainBooster([][]float64{{}, {}}, []float64{0, 1}, DefaultBoostConfig()); err == nil {
		t.Error("no error for samples without features")
	}
}

func TestAttributeSumsToScore(t *testing.T) {
	t.Parallel()

	samples, labels := separableSet(500, 19)
	booster, err := TrainBooster(samples, labels, DefaultBoostConfig())
	if err != nil {
		t.Fatalf("TrainBooster failed: %v", err)
	}

	probes := [][]float64{{0.12, 0.5}, {0.48, -0.7}, {0.91, 0.1}}
	for _, probe := range probes {
		contributions, bias := booster.Attribute(probe)
		if len(contributions) != booster.FeatureCount {
			t.Fatalf("got %d contributions, want %d", len(contributions), booster.FeatureCount)
		}
		total := bias
		for _, c := range contributions {
			total += c
		}
		if got, want := sigmoid(total), booster.PredictProb(probe); math.Abs(got-want) > 1e-9 {
			t.Errorf("attribution total %f does not reproduce prediction %f for %v", got, want, probe)
		}
	}
}
