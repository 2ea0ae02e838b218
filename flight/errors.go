package flight

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks a flight log that is empty or whose timestamps are
// not ordered. The caller recovers; nothing inside this core retries.
var ErrInvalidInput = errors.New("invalid flight log")

// ErrModelUnavailable marks a lookup for an aircraft type that has no trained
// model while lazy training is disabled.
var ErrModelUnavailable = errors.New("no trained model for aircraft type")

// TrainingResult is the explicit outcome of training one aircraft type's
// model. A failed type never aborts the others and never silently substitutes
// a stale model without this signal.
type TrainingResult struct {
	Type     AircraftType  `json:"type"`
	Samples  int           `json:"samples"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Failed reports whether this type's training failed.
func (r TrainingResult) Failed() bool { return r.Err != nil }

// TrainingReport aggregates the per-type results of a TrainAll call.
type TrainingReport struct {
	Results []TrainingResult
}

// Err returns nil when every type trained, otherwise a joined error naming
// each failed type.
func (r TrainingReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Failed() {
			errs = append(errs, fmt.Errorf("%s: %w", res.Type, res.Err))
		}
	}
	return errors.Join(errs...)
}
