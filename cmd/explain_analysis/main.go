package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"flight-analysis/flight"
	"flight-analysis/utils"
)

// Explain WHY an analysis produced the risk score it did
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run main.go <flight-log.json>")
	}

	logFile := os.Args[1]
	fmt.Printf("=== Explaining Analysis for: %s ===\n\n", filepath.Base(logFile))

	data, err := os.ReadFile(logFile)
	if err != nil {
		log.Fatalf("Failed to read flight log: %v", err)
	}

	var flightLog flight.FlightLog
	if err := json.Unmarshal(data, &flightLog.Rows); err != nil {
		log.Fatalf("Failed to parse flight log: %v", err)
	}
	fmt.Printf("Loaded %d rows\n\n", len(flightLog.Rows))

	registry := flight.NewModelRegistry(flight.DefaultRegistryConfig())
	if modelPath := utils.GetEnv("MODEL_PATH", ""); modelPath != "" {
		if err := registry.LoadFromFile(modelPath); err != nil {
			log.Fatalf("Failed to load models from %s: %v", modelPath, err)
		}
	}

	tieBreak := flight.AircraftType(utils.GetEnv("TIE_BREAK_TYPE", string(flight.Multirotor)))
	analyzer := flight.NewAnalyzer(registry, flight.ClassifierConfig{TieBreak: tieBreak})

	result, err := analyzer.Analyze(flightLog)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("📊 Classification:\n")
	fmt.Printf("   Detected type: %s (confidence %.2f)\n", result.AircraftType, result.AircraftConfidence)
	for aircraft, score := range result.Distribution {
		fmt.Printf("   - %s: %.2f\n", aircraft, score)
	}
	fmt.Println()

	if result.AircraftConfidence == 0 {
		fmt.Println("⚠️  No profile matched this log. Anomaly scoring was skipped.")
		fmt.Println("   Check that motor RPM, speed, and control surface fields are populated.")
		return
	}

	stats := flight.Summarize(flightLog)
	fmt.Printf("Flight summary:\n")
	fmt.Printf("   Active motors: %d, control surfaces: %v\n", stats.ActiveMotors, stats.ControlSurfaces)
	fmt.Printf("   Hover ratio: %.2f, cruise ratio: %.2f, avg speed: %.1f m/s\n",
		stats.HoverRatio, stats.CruiseRatio, stats.AvgSpeed)
	fmt.Printf("   Regime transitions: %d, motor symmetry: %.2f\n\n",
		stats.RegimeTransitions, stats.MotorSymmetry)

	fmt.Printf("Risk: %.3f (%s), %d anomalous rows above threshold %.2f\n\n",
		result.RiskScore, result.RiskLevel, len(result.Anomalies), flight.AnomalyThreshold)

	for i, anomaly := range result.Anomalies {
		if i >= 10 {
			fmt.Printf("   ... and %d more\n", len(result.Anomalies)-i)
			break
		}
		fmt.Printf("   row %d (t=%.1fs, p=%.2f): %s\n",
			anomaly.Row, anomaly.Timestamp, anomaly.Probability, anomaly.Description)
	}
	if len(result.Anomalies) > 0 {
		fmt.Println()
	}

	fmt.Printf("Top contributing features:\n")
	for _, contribution := range result.Explanation.TopFeatures {
		direction := "raising"
		if contribution.Contribution < 0 {
			direction = "lowering"
		}
		fmt.Printf("   %-24s %+.4f (%s risk)\n", contribution.Feature, contribution.Contribution, direction)
	}
	fmt.Printf("\n%s\n", result.Explanation.Summary)
}
