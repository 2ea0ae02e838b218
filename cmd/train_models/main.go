package main

import (
	"flag"
	"log"
	"os"
	"time"

	"flight-analysis/flight"
)

// Config holds training configuration
type Config struct {
	OutputPath string
	Samples    int
	Seed       int64
	Rounds     int
	Depth      int
	Verbose    bool
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("=== Anomaly Model Training Pipeline ===\n")
	log.Printf("Output model file: %s\n", config.OutputPath)
	log.Printf("Samples per class: %d\n", config.Samples)
	log.Printf("Seed: %d\n", config.Seed)
	log.Println()

	startTime := time.Now()

	boost := flight.DefaultBoostConfig()
	if config.Rounds > 0 {
		boost.Rounds = config.Rounds
	}
	if config.Depth > 0 {
		boost.MaxDepth = config.Depth
	}

	registry := flight.NewModelRegistry(flight.RegistryConfig{
		Seed:    config.Seed,
		Samples: config.Samples,
		Boost:   boost,
	})

	// Step 1: Train one booster per aircraft type
	log.Println("Step 1: Training boosted models...")
	report := registry.TrainAll()
	for _, result := range report.Results {
		if result.Failed() {
			log.Printf("  - %s: FAILED (%v)\n", result.Type, result.Err)
			continue
		}
		log.Printf("  - %s: %d samples in %v\n", result.Type, result.Samples, result.Duration.Round(time.Millisecond))
	}
	if err := report.Err(); err != nil {
		log.Fatalf("ERROR: Training failed: %v", err)
	}
	log.Println()

	// Step 2: Report model shapes
	log.Println("Step 2: Inspecting trained models...")
	for _, stat := range registry.Stats().Models {
		log.Printf("  - %s: %d features, %d trees\n", stat.Aircraft, stat.Features, stat.Trees)
		if config.Verbose {
			model, err := registry.Model(stat.Aircraft)
			if err != nil {
				log.Fatalf("ERROR: %v", err)
			}
			for i, name := range model.FeatureNames {
				log.Printf("      %2d. %s (mean=%.3f, std=%.3f)\n", i, name, model.Scaler.Mean[i], model.Scaler.Stddev[i])
			}
		}
	}
	log.Println()

	// Step 3: Persist
	log.Println("Step 3: Saving models...")
	if err := registry.SaveToFile(config.OutputPath); err != nil {
		log.Fatalf("ERROR: Failed to save models: %v", err)
	}

	log.Printf("Done in %v. Models written to %s\n", time.Since(startTime).Round(time.Millisecond), config.OutputPath)
}

func parseFlags() Config {
	var config Config
	flag.StringVar(&config.OutputPath, "out", "data/models.json", "Path for the trained model file")
	flag.IntVar(&config.Samples, "samples", 1600, "Training samples per aircraft type")
	flag.Int64Var(&config.Seed, "seed", 42, "Random seed for the synthetic generator")
	flag.IntVar(&config.Rounds, "rounds", 0, "Boosting rounds (0 uses the default)")
	flag.IntVar(&config.Depth, "depth", 0, "Max tree depth (0 uses the default)")
	flag.BoolVar(&config.Verbose, "v", false, "Print per-feature scaler statistics")
	flag.Parse()

	if config.Samples < 100 {
		log.Println("WARNING: fewer than 100 samples per class produces unreliable models")
	}
	if config.OutputPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	return config
}
