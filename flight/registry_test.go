package flight

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestRegistry uses a reduced sample count and round budget so tests stay
// fast while still training real models.
func newTestRegistry() *ModelRegistry {
	return NewModelRegistry(RegistryConfig{
		Seed:         42,
		Samples:      900,
		LazyTraining: true,
		Boost:        BoostConfig{Rounds: 40, MaxDepth: 3, LearningRate: 0.15, MinLeaf: 5},
	})
}

// stubModel is a degenerate no-tree model that always predicts its base rate.
func stubModel(aircraft AircraftType) *TrainedModel {
	n := len(Profile(aircraft).FeatureNames)
	stddev := make([]float64, n)
	for i := range stddev {
		stddev[i] = 1
	}
	return &TrainedModel{
		Aircraft:     aircraft,
		FeatureNames: Profile(aircraft).FeatureNames,
		Scaler:       &FeatureScaler{Mean: make([]float64, n), Stddev: stddev},
		Booster:      &Booster{Base: -2, FeatureCount: n},
		TrainedAt:    time.Now().UTC(),
	}
}

func TestTrainAllCoversEveryType(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	report := registry.TrainAll()

	if len(report.Results) != len(AircraftTypes()) {
		t.Fatalf("TrainAll produced %d results, want %d", len(report.Results), len(AircraftTypes()))
	}
	if err := report.Err(); err != nil {
		t.Fatalf("TrainAll reported failures: %v", err)
	}

	stats := registry.Stats()
	if len(stats.Models) != len(AircraftTypes()) {
		t.Fatalf("Stats lists %d models, want %d", len(stats.Models), len(AircraftTypes()))
	}
	for i, stat := range stats.Models {
		if stat.Trees == 0 {
			t.Errorf("%s model has no trees", stat.Aircraft)
		}
		if want := len(Profile(stat.Aircraft).FeatureNames); stat.Features != want {
			t.Errorf("%s model has %d features, want %d", stat.Aircraft, stat.Features, want)
		}
		if i > 0 && stats.Models[i-1].Aircraft > stat.Aircraft {
			t.Error("Stats models are not sorted by aircraft type")
		}
	}
}

func TestModelLazyTraining(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	first, err := registry.Model(Multirotor)
	if err != nil {
		t.Fatalf("lazy Model failed: %v", err)
	}
	second, err := registry.Model(Multirotor)
	if err != nil {
		t.Fatalf("second Model failed: %v", err)
	}
	if first != second {
		t.Error("repeated lookups retrained instead of reusing the published model")
	}
}

func TestModelUnavailableWhenLazyDisabled(t *testing.T) {
	t.Parallel()

	registry := NewModelRegistry(RegistryConfig{Seed: 1, Samples: 100, LazyTraining: false})
	_, err := registry.Model(VTOL)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestRetrainSwapsModelWithoutInvalidatingReaders(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	if result := registry.Train(FixedWing); result.Failed() {
		t.Fatalf("initial training failed: %v", result.Err)
	}
	old, err := registry.Model(FixedWing)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if result := registry.Train(FixedWing); result.Failed() {
		t.Fatalf("retraining failed: %v", result.Err)
	}
	current, err := registry.Model(FixedWing)
	if err != nil {
		t.Fatalf("Model after retrain failed: %v", err)
	}
	if current == old {
		t.Error("retraining did not publish a new model value")
	}

	// a reader holding the old reference must still be able to score with it
	probe := make([]float64, len(old.FeatureNames))
	_ = old.Booster.PredictProb(old.Scaler.Transform(probe))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	if err := registry.TrainAll().Err(); err != nil {
		t.Fatalf("training failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "models.json")
	if err := registry.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded := NewModelRegistry(RegistryConfig{LazyTraining: false})
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	gen := NewSyntheticGenerator(99)
	for _, aircraft := range AircraftTypes() {
		original, err := registry.Model(aircraft)
		if err != nil {
			t.Fatalf("Model failed: %v", err)
		}
		restored, err := loaded.Model(aircraft)
		if err != nil {
			t.Fatalf("loaded Model failed: %v", err)
		}

		for _, features := range FeatureMatrix(gen.NominalLog(aircraft, 10), aircraft) {
			a := original.Booster.PredictProb(original.Scaler.Transform(features))
			b := restored.Booster.PredictProb(restored.Scaler.Transform(features))
			if a != b {
				t.Fatalf("%s: restored model predicts %f, original %f", aircraft, b, a)
			}
		}
	}
}

func TestPutInjectsStubModel(t *testing.T) {
	t.Parallel()

	registry := NewModelRegistry(RegistryConfig{LazyTraining: false})
	stub := stubModel(Multirotor)
	registry.Put(stub)

	model, err := registry.Model(Multirotor)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if model != stub {
		t.Error("registry did not serve the injected stub")
	}
}
