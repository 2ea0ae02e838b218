package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"
	"time"

	"flight-analysis/flight"
)

// EvaluationConfig holds evaluation parameters
type EvaluationConfig struct {
	ModelPath  string
	Samples    int
	TrainSeed  int64
	EvalSeed   int64
	ReportPath string
}

// ClassMetrics tracks per-class performance on the holdout set
type ClassMetrics struct {
	Aircraft          flight.AircraftType `json:"aircraft"`
	Samples           int                 `json:"samples"`
	Accuracy          float64             `json:"accuracy"`
	TruePositives     int                 `json:"truePositives"`
	TrueNegatives     int                 `json:"trueNegatives"`
	FalsePositives    int                 `json:"falsePositives"`
	FalseNegatives    int                 `json:"falseNegatives"`
	MeanProbNominal   float64             `json:"meanProbNominal"`
	MeanProbAnomalous float64             `json:"meanProbAnomalous"`
}

// EvaluationReport contains the full evaluation results
type EvaluationReport struct {
	Timestamp       time.Time      `json:"timestamp"`
	TrainSeed       int64          `json:"trainSeed"`
	EvalSeed        int64          `json:"evalSeed"`
	TotalSamples    int            `json:"totalSamples"`
	OverallAccuracy float64        `json:"overallAccuracy"`
	ClassMetrics    []ClassMetrics `json:"classMetrics"`
	ProcessingTime  time.Duration  `json:"processingTime"`
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Println("=== Anomaly Model Evaluation Pipeline ===")
	log.Printf("Holdout samples per class: %d\n", config.Samples)
	log.Printf("Train seed: %d, eval seed: %d\n", config.TrainSeed, config.EvalSeed)
	log.Println()

	startTime := time.Now()

	registry := flight.NewModelRegistry(flight.RegistryConfig{
		Seed:    config.TrainSeed,
		Samples: config.Samples,
	})
	if config.ModelPath != "" {
		log.Printf("Loading trained models from %s...\n", config.ModelPath)
		if err := registry.LoadFromFile(config.ModelPath); err != nil {
			log.Fatalf("ERROR: Failed to load models: %v", err)
		}
	} else {
		log.Println("Training models from scratch...")
		if err := registry.TrainAll().Err(); err != nil {
			log.Fatalf("ERROR: Training failed: %v", err)
		}
	}
	log.Println()

	report := EvaluationReport{
		Timestamp: time.Now().UTC(),
		TrainSeed: config.TrainSeed,
		EvalSeed:  config.EvalSeed,
	}

	totalCorrect := 0
	gen := flight.NewSyntheticGenerator(config.EvalSeed)
	for _, aircraft := range flight.AircraftTypes() {
		model, err := registry.Model(aircraft)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}

		features, labels := gen.TrainingSet(aircraft, config.Samples)
		metrics := evaluateClass(model, aircraft, features, labels)

		log.Printf("%s: accuracy %.3f over %d samples\n", aircraft, metrics.Accuracy, metrics.Samples)
		log.Printf("  mean p(anomaly): nominal %.3f, anomalous %.3f\n",
			metrics.MeanProbNominal, metrics.MeanProbAnomalous)
		log.Printf("  TP=%d TN=%d FP=%d FN=%d\n",
			metrics.TruePositives, metrics.TrueNegatives, metrics.FalsePositives, metrics.FalseNegatives)

		report.ClassMetrics = append(report.ClassMetrics, metrics)
		report.TotalSamples += metrics.Samples
		totalCorrect += metrics.TruePositives + metrics.TrueNegatives
	}

	if report.TotalSamples > 0 {
		report.OverallAccuracy = float64(totalCorrect) / float64(report.TotalSamples)
	}
	report.ProcessingTime = time.Since(startTime)

	log.Println()
	log.Printf("Overall accuracy: %.3f (%d/%d) in %v\n",
		report.OverallAccuracy, totalCorrect, report.TotalSamples, report.ProcessingTime.Round(time.Millisecond))

	if config.ReportPath != "" {
		if err := writeReport(config.ReportPath, report); err != nil {
			log.Fatalf("ERROR: Failed to write report: %v", err)
		}
		log.Printf("Report written to %s\n", config.ReportPath)
	}
}

func evaluateClass(model *flight.TrainedModel, aircraft flight.AircraftType, features [][]float64, labels []float64) ClassMetrics {
	metrics := ClassMetrics{Aircraft: aircraft, Samples: len(features)}

	sumNominal, sumAnomalous := 0.0, 0.0
	nominalCount, anomalousCount := 0, 0
	for i, sample := range features {
		prob := model.Booster.PredictProb(model.Scaler.Transform(sample))
		anomalous := labels[i] > 0.5
		predicted := prob > 0.5

		switch {
		case anomalous && predicted:
			metrics.TruePositives++
		case anomalous && !predicted:
			metrics.FalseNegatives++
		case !anomalous && predicted:
			metrics.FalsePositives++
		default:
			metrics.TrueNegatives++
		}
		if anomalous {
			sumAnomalous += prob
			anomalousCount++
		} else {
			sumNominal += prob
			nominalCount++
		}
	}

	if metrics.Samples > 0 {
		metrics.Accuracy = float64(metrics.TruePositives+metrics.TrueNegatives) / float64(metrics.Samples)
	}
	if nominalCount > 0 {
		metrics.MeanProbNominal = sumNominal / float64(nominalCount)
	}
	if anomalousCount > 0 {
		metrics.MeanProbAnomalous = sumAnomalous / float64(anomalousCount)
	}
	if math.IsNaN(metrics.Accuracy) {
		metrics.Accuracy = 0
	}
	return metrics
}

func writeReport(path string, report EvaluationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func parseFlags() EvaluationConfig {
	var config EvaluationConfig
	flag.StringVar(&config.ModelPath, "model", "", "Trained model file (empty trains in-process)")
	flag.IntVar(&config.Samples, "samples", 800, "Holdout samples per aircraft type")
	flag.Int64Var(&config.TrainSeed, "train-seed", 42, "Seed used for training")
	flag.Int64Var(&config.EvalSeed, "eval-seed", 1337, "Seed for the holdout set")
	flag.StringVar(&config.ReportPath, "report", "", "Optional JSON report output path")
	flag.Parse()

	if config.EvalSeed == config.TrainSeed {
		log.Println("WARNING: eval seed equals train seed; holdout overlaps the training data")
	}
	return config
}
