package flight

// Anomaly Model Registry
//
// One trained booster + scaler pair per aircraft type, keyed by type. The
// registry is an explicit injectable object, not a package singleton, so
// tests can substitute deterministic stub models.
//
// Concurrency contract: TrainedModel values are read-only after publication.
// Retraining builds the replacement entirely outside the lock and swaps the
// map entry under a short write lock, so in-flight detections finish on the
// reference they took and no lock is held during inference.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"flight-analysis/utils"
)

// TrainedModel couples a booster with the scaler and feature order it was
// trained on. Immutable after training.
type TrainedModel struct {
	Aircraft     AircraftType   `json:"aircraft"`
	FeatureNames []string       `json:"featureNames"`
	Scaler       *FeatureScaler `json:"scaler"`
	Booster      *Booster       `json:"booster"`
	Samples      int            `json:"samples"`
	TrainedAt    time.Time      `json:"trainedAt"`
}

// RegistryConfig holds the knobs of synthetic training.
type RegistryConfig struct {
	Seed         int64
	Samples      int // synthetic samples per aircraft type
	LazyTraining bool
	Boost        BoostConfig
}

// DefaultRegistryConfig enables lazy training with a fixed seed.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Seed:         42,
		Samples:      1600,
		LazyTraining: true,
		Boost:        DefaultBoostConfig(),
	}
}

// ModelRegistry owns the trained models. Safe for concurrent use.
type ModelRegistry struct {
	mu     sync.RWMutex
	cfg    RegistryConfig
	models map[AircraftType]*TrainedModel
}

// NewModelRegistry returns an empty registry.
func NewModelRegistry(cfg RegistryConfig) *ModelRegistry {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultRegistryConfig().Samples
	}
	return &ModelRegistry{
		cfg:    cfg,
		models: make(map[AircraftType]*TrainedModel),
	}
}

// Model returns the trained model for an aircraft type, lazily training it
// when the registry is configured to. Returns ErrModelUnavailable when no
// model exists and lazy training is off.
func (r *ModelRegistry) Model(aircraft AircraftType) (*TrainedModel, error) {
	r.mu.RLock()
	model, ok := r.models[aircraft]
	r.mu.RUnlock()
	if ok {
		return model, nil
	}

	if !r.cfg.LazyTraining {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, aircraft)
	}

	result := r.Train(aircraft)
	if result.Failed() {
		return nil, fmt.Errorf("lazy training %s: %w", aircraft, result.Err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[aircraft], nil
}

// Train (re)trains one aircraft type's model on seeded synthetic data and
// atomically publishes the new model/scaler pair. On failure the previous
// model, if any, stays published; the failure is reported, never swallowed.
func (r *ModelRegistry) Train(aircraft AircraftType) TrainingResult {
	started := time.Now()
	result := TrainingResult{Type: aircraft}

	model, err := r.buildModel(aircraft)
	result.Duration = time.Since(started)
	if err != nil {
		result.Err = err
		return result
	}
	result.Samples = model.Samples

	r.mu.Lock()
	r.models[aircraft] = model
	r.mu.Unlock()
	return result
}

// TrainAll trains every aircraft type. One type failing does not stop the
// others; each outcome is reported and failures are logged.
func (r *ModelRegistry) TrainAll() TrainingReport {
	logger := utils.GetLogger()
	ctx := context.Background()

	var report TrainingReport
	for _, aircraft := range AircraftTypes() {
		result := r.Train(aircraft)
		report.Results = append(report.Results, result)
		if result.Failed() {
			logger.ErrorContext(ctx, "model training failed",
				slog.String("aircraft", string(aircraft)),
				slog.Any("error", result.Err),
			)
			continue
		}
		logger.InfoContext(ctx, "model trained",
			slog.String("aircraft", string(aircraft)),
			slog.Int("samples", result.Samples),
			slog.Int("trees", r.treeCount(aircraft)),
			slog.Duration("duration", result.Duration),
		)
	}
	return report
}

func (r *ModelRegistry) buildModel(aircraft AircraftType) (*TrainedModel, error) {
	// per-type seed offset keeps training independent of call order
	seed := r.cfg.Seed
	for i, t := range AircraftTypes() {
		if t == aircraft {
			seed += int64(i+1) * 7919
		}
	}

	gen := NewSyntheticGenerator(seed)
	features, labels := gen.TrainingSet(aircraft, r.cfg.Samples)
	if len(features) == 0 {
		return nil, fmt.Errorf("synthetic generator produced no samples for %s", aircraft)
	}

	scaler, err := NewFeatureScaler(features)
	if err != nil {
		return nil, fmt.Errorf("fitting scaler for %s: %w", aircraft, err)
	}

	booster, err := TrainBooster(scaler.TransformMatrix(features), labels, r.cfg.Boost)
	if err != nil {
		return nil, fmt.Errorf("training booster for %s: %w", aircraft, err)
	}

	return &TrainedModel{
		Aircraft:     aircraft,
		FeatureNames: Profile(aircraft).FeatureNames,
		Scaler:       scaler,
		Booster:      booster,
		Samples:      len(features),
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// Put publishes a prebuilt model, replacing any existing one for its type.
// Used by persistence loading and by tests injecting stub models.
func (r *ModelRegistry) Put(model *TrainedModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[model.Aircraft] = model
}

func (r *ModelRegistry) treeCount(aircraft AircraftType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[aircraft]; ok && m.Booster != nil {
		return len(m.Booster.Trees)
	}
	return 0
}

// RegistryStats summarizes the registry contents for status surfaces.
type RegistryStats struct {
	Models []ModelStat `json:"models"`
}

// ModelStat describes one published model.
type ModelStat struct {
	Aircraft  AircraftType `json:"aircraft"`
	Features  int          `json:"features"`
	Trees     int          `json:"trees"`
	Samples   int          `json:"samples"`
	TrainedAt time.Time    `json:"trainedAt"`
}

// Stats returns a snapshot of the published models, sorted by type for
// deterministic responses.
func (r *ModelRegistry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{}
	for _, model := range r.models {
		stats.Models = append(stats.Models, ModelStat{
			Aircraft:  model.Aircraft,
			Features:  len(model.FeatureNames),
			Trees:     len(model.Booster.Trees),
			Samples:   model.Samples,
			TrainedAt: model.TrainedAt,
		})
	}
	sort.Slice(stats.Models, func(i, j int) bool {
		return stats.Models[i].Aircraft < stats.Models[j].Aircraft
	})
	return stats
}

// SaveToFile persists every published model as JSON, writing a temp file
// first and renaming so readers never observe a partial file.
func (r *ModelRegistry) SaveToFile(path string) error {
	r.mu.RLock()
	models := make([]*TrainedModel, 0, len(r.models))
	for _, m := range r.models {
		models = append(models, m)
	}
	r.mu.RUnlock()

	sort.Slice(models, func(i, j int) bool { return models[i].Aircraft < models[j].Aircraft })

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return fmt.Errorf("creating model directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing models: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("publishing model file: %w", err)
	}
	return nil
}

// LoadFromFile publishes models previously saved with SaveToFile.
func (r *ModelRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}

	var models []*TrainedModel
	if err := json.Unmarshal(data, &models); err != nil {
		return fmt.Errorf("parsing model file: %w", err)
	}
	for _, model := range models {
		if model.Booster == nil || model.Scaler == nil {
			return fmt.Errorf("model for %s is missing booster or scaler", model.Aircraft)
		}
		r.Put(model)
	}
	return nil
}
