package flight

// Synthetic Training Data
//
// The anomaly models are trained on seeded synthetic logs drawn from
// physically plausible per-type distributions: roughly 80% nominal rows and
// 20% rows perturbed by one of the failure families the detector is meant to
// catch (battery under/over-voltage, motor dropout or overspeed, GPS
// degradation, excess vibration, thermal extremes).
//
// The nominal range table below is shared with the anomaly detector, which
// uses it to describe which features of a flagged row sit outside their
// nominal band.

import (
	"math"
	"math/rand"
)

type valueRange struct {
	Lo, Hi float64
}

func (r valueRange) contains(v float64) bool { return v >= r.Lo && v <= r.Hi }

// nominalRanges returns the nominal band per feature name for one aircraft
// type. Features without a band (altitude, control deflections) are never
// called out in anomaly descriptions.
func nominalRanges(aircraft AircraftType) map[string]valueRange {
	switch aircraft {
	case FixedWing:
		return map[string]valueRange{
			"battery_voltage": {11.1, 13.0},
			"motor1_rpm":      {2000, 3100},
			"airspeed":        {14, 34},
			"ground_speed":    {12, 36},
			"gps_quality":     {0.6, 1.0},
			"vibration_x":     {0, 0.8},
			"vibration_y":     {0, 0.8},
			"vibration_z":     {0, 0.9},
			"temperature":     {-5, 60},
		}
	case VTOL:
		return map[string]valueRange{
			"battery_voltage": {20.5, 25.2},
			"motor1_rpm":      {400, 4300},
			"motor2_rpm":      {400, 4300},
			"motor3_rpm":      {400, 4300},
			"motor4_rpm":      {400, 4300},
			"motor5_rpm":      {400, 4300},
			"gps_quality":     {0.6, 1.0},
			"vibration_x":     {0, 0.9},
			"vibration_y":     {0, 0.9},
			"vibration_z":     {0, 1.0},
			"temperature":     {-5, 65},
		}
	default: // multirotor
		return map[string]valueRange{
			"battery_voltage": {13.8, 16.8},
			"motor1_rpm":      {2600, 3900},
			"motor2_rpm":      {2600, 3900},
			"motor3_rpm":      {2600, 3900},
			"motor4_rpm":      {2600, 3900},
			"gps_quality":     {0.6, 1.0},
			"vibration_x":     {0, 0.8},
			"vibration_y":     {0, 0.8},
			"vibration_z":     {0, 0.9},
			"temperature":     {-5, 60},
		}
	}
}

type failureMode int

const (
	failBatteryLow failureMode = iota
	failBatteryHigh
	failMotorDropout
	failMotorOverspeed
	failGPSDegraded
	failVibration
	failThermal
	failureModeCount
)

// SyntheticGenerator produces seeded synthetic flight data for training and
// evaluation. It is not safe for concurrent use; create one per training run.
type SyntheticGenerator struct {
	rng *rand.Rand
}

// NewSyntheticGenerator returns a generator with a fixed seed so training is
// reproducible.
func NewSyntheticGenerator(seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(rand.NewSource(seed))}
}

// TrainingSet generates n labeled feature vectors for one aircraft type,
// approximately 80% nominal (label 0) and 20% perturbed (label 1). The
// vectors are produced by the same row featurizer the detector uses.
func (g *SyntheticGenerator) TrainingSet(aircraft AircraftType, n int) (features [][]float64, labels []float64) {
	features = make([][]float64, 0, n)
	labels = make([]float64, 0, n)

	prev := g.nominalRow(aircraft, 0, n)
	for i := 0; i < n; i++ {
		row := g.nominalRow(aircraft, i, n)
		label := 0.0
		if g.rng.Float64() < 0.2 {
			g.injectFailure(&row)
			label = 1.0
		}
		features = append(features, rowFeatures(prev, row, aircraft))
		labels = append(labels, label)
		prev = row
	}
	return features, labels
}

// NominalLog synthesizes a clean flight of the given type. Used by the
// evaluation tooling and by round-trip tests of the type classifier.
func (g *SyntheticGenerator) NominalLog(aircraft AircraftType, rows int) FlightLog {
	log := FlightLog{Rows: make([]FlightRow, rows)}
	for i := 0; i < rows; i++ {
		row := g.nominalRow(aircraft, i, rows)
		row.Timestamp = float64(i)
		log.Rows[i] = row
	}
	return log
}

func (g *SyntheticGenerator) nominalRow(aircraft AircraftType, i, total int) FlightRow {
	progress := 0.0
	if total > 1 {
		progress = float64(i) / float64(total-1)
	}

	switch aircraft {
	case FixedWing:
		row := FlightRow{
			BatteryVoltage: 12.6 - 0.8*progress + g.gauss(0, 0.05),
			MotorRPM:       []float64{2500 + g.gauss(0, 90)},
			Airspeed:       24 + g.gauss(0, 1.5),
			GroundSpeed:    22 + g.gauss(0, 1.5),
			Elevator:       g.gauss(0, 1.5),
			Aileron:        g.gauss(0, 2.0),
			Rudder:         g.gauss(0, 1.0),
			GPSQuality:     0.92 + g.gauss(0, 0.03),
			VibrationX:     0.3 + g.gauss(0, 0.06),
			VibrationY:     0.3 + g.gauss(0, 0.06),
			VibrationZ:     0.35 + g.gauss(0, 0.07),
			Temperature:    32 + g.gauss(0, 2),
		}
		if progress < 0.2 {
			row.Altitude = 150 + 250*progress + g.gauss(0, 1)
			row.VerticalSpeed = 2.0 + g.gauss(0, 0.3)
		} else {
			row.Altitude = 200 + g.gauss(0, 0.8)
			row.VerticalSpeed = g.gauss(0, 0.12)
		}
		return row

	case VTOL:
		row := FlightRow{
			BatteryVoltage: 23.1 - 1.2*progress + g.gauss(0, 0.08),
			GPSQuality:     0.9 + g.gauss(0, 0.03),
			VibrationX:     0.35 + g.gauss(0, 0.07),
			VibrationY:     0.35 + g.gauss(0, 0.07),
			VibrationZ:     0.4 + g.gauss(0, 0.08),
			Temperature:    35 + g.gauss(0, 2.5),
		}
		if progress < 0.35 { // hover phase on lift motors
			lift := 3400 + g.gauss(0, 120)
			row.MotorRPM = []float64{lift, lift + g.gauss(0, 80), lift + g.gauss(0, 80), lift + g.gauss(0, 80), 650 + g.gauss(0, 60)}
			row.GroundSpeed = clampLow(1.5+g.gauss(0, 0.6), 0)
			row.Altitude = 30 + 60*progress/0.35 + g.gauss(0, 0.5)
			row.VerticalSpeed = 1.8 + g.gauss(0, 0.3)
		} else { // wing-borne cruise, lift motors windmilling
			idle := 900 + g.gauss(0, 90)
			row.MotorRPM = []float64{idle, idle + g.gauss(0, 60), idle + g.gauss(0, 60), idle + g.gauss(0, 60), 2700 + g.gauss(0, 110)}
			row.Airspeed = 26 + g.gauss(0, 2)
			row.GroundSpeed = 25 + g.gauss(0, 2)
			row.Elevator = g.gauss(0, 1.8)
			row.Aileron = g.gauss(0, 2.2)
			row.Altitude = 90 + 20*(progress-0.35)/0.65 + g.gauss(0, 0.8)
			row.VerticalSpeed = 0.4 + g.gauss(0, 0.2)
		}
		return row

	default: // multirotor hover with gentle station-keeping
		base := 3250 + g.gauss(0, 60)
		row := FlightRow{
			BatteryVoltage: 15.6 - 1.0*progress + g.gauss(0, 0.06),
			MotorRPM: []float64{
				base + g.gauss(0, 70), base + g.gauss(0, 70),
				base + g.gauss(0, 70), base + g.gauss(0, 70),
			},
			GroundSpeed: clampLow(2.0+g.gauss(0, 0.7), 0),
			GPSQuality:  0.9 + g.gauss(0, 0.03),
			VibrationX:  0.3 + g.gauss(0, 0.06),
			VibrationY:  0.3 + g.gauss(0, 0.06),
			VibrationZ:  0.4 + g.gauss(0, 0.08),
			Temperature: 33 + g.gauss(0, 2),
			Altitude:    50 + 1.5*math.Sin(float64(i)*0.5),
		}
		row.VerticalSpeed = 0.9 * math.Cos(float64(i)*0.5)
		return row
	}
}

func (g *SyntheticGenerator) injectFailure(row *FlightRow) {
	switch failureMode(g.rng.Intn(int(failureModeCount))) {
	case failBatteryLow:
		row.BatteryVoltage *= 0.62 + g.rng.Float64()*0.12
	case failBatteryHigh:
		row.BatteryVoltage *= 1.25 + g.rng.Float64()*0.1
	case failMotorDropout:
		if len(row.MotorRPM) > 0 {
			row.MotorRPM[g.rng.Intn(len(row.MotorRPM))] = 0
		}
	case failMotorOverspeed:
		if len(row.MotorRPM) > 0 {
			row.MotorRPM[g.rng.Intn(len(row.MotorRPM))] *= 1.6 + g.rng.Float64()*0.3
		}
	case failGPSDegraded:
		row.GPSQuality = g.rng.Float64() * 0.3
	case failVibration:
		factor := 3.5 + g.rng.Float64()*2
		row.VibrationX *= factor
		row.VibrationY *= factor
		row.VibrationZ *= factor
	case failThermal:
		if g.rng.Float64() < 0.5 {
			row.Temperature = 85 + g.rng.Float64()*25
		} else {
			row.Temperature = -25 - g.rng.Float64()*15
		}
	}
}

func (g *SyntheticGenerator) gauss(mean, std float64) float64 {
	return mean + g.rng.NormFloat64()*std
}

func clampLow(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}

