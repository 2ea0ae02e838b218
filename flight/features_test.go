package flight

import (
	"math"
	"testing"
)

// multirotorTestLog is a hovering quad: four matched motors, slow drift and
// an oscillating vertical rate.
func multirotorTestLog(rows int) FlightLog {
	log := FlightLog{Rows: make([]FlightRow, rows)}
	for i := range log.Rows {
		vertical := 1.0
		if i%2 == 1 {
			vertical = -1.0
		}
		log.Rows[i] = FlightRow{
			Timestamp:      float64(i),
			Altitude:       49.5 + 1.5*math.Sin(float64(i)*0.4),
			BatteryVoltage: 15.4,
			MotorRPM:       []float64{3000, 3000, 3000, 3000},
			GPSQuality:     0.9,
			GroundSpeed:    2.0,
			VerticalSpeed:  vertical,
			VibrationX:     0.3,
			VibrationY:     0.3,
			VibrationZ:     0.4,
			Temperature:    33,
		}
	}
	return log
}

// fixedWingTestLog is a single-motor cruiser with active control surfaces and
// a stable altitude.
func fixedWingTestLog(rows int) FlightLog {
	log := FlightLog{Rows: make([]FlightRow, rows)}
	for i := range log.Rows {
		log.Rows[i] = FlightRow{
			Timestamp:      float64(i),
			Altitude:       200 + math.Sin(float64(i))*0.8,
			BatteryVoltage: 12.4,
			MotorRPM:       []float64{2500},
			Airspeed:       30,
			GroundSpeed:    30,
			Elevator:       2.0,
			Aileron:        1.0,
			Rudder:         0.5,
			GPSQuality:     0.92,
			VibrationX:     0.3,
			VibrationY:     0.3,
			VibrationZ:     0.35,
			Temperature:    30,
		}
	}
	return log
}

// vtolTestLog hovers on four lift motors for the first half, then switches to
// wing-borne cruise on the pusher.
func vtolTestLog(rows int) FlightLog {
	log := FlightLog{Rows: make([]FlightRow, rows)}
	for i := range log.Rows {
		row := FlightRow{
			Timestamp:      float64(i),
			BatteryVoltage: 22.8,
			GPSQuality:     0.9,
			VibrationX:     0.35,
			VibrationY:     0.35,
			VibrationZ:     0.4,
			Temperature:    34,
		}
		if i < rows/2 {
			row.MotorRPM = []float64{3500, 3500, 3500, 3500, 600}
			row.GroundSpeed = 1.0
			row.VerticalSpeed = 2.0
			row.Altitude = 30 + 35*float64(i)/float64(rows/2)
		} else {
			row.MotorRPM = []float64{900, 900, 900, 900, 2700}
			row.Airspeed = 35
			row.GroundSpeed = 35
			row.VerticalSpeed = 0.5
			row.Elevator = 1.5
			row.Aileron = 2.0
			row.Altitude = 65 + 35*float64(i-rows/2)/float64(rows-rows/2)
		}
		log.Rows[i] = row
	}
	return log
}

func zeroTestLog(rows int) FlightLog {
	return FlightLog{Rows: make([]FlightRow, rows)}
}

func TestSummarizeMultirotorLog(t *testing.T) {
	t.Parallel()

	stats := Summarize(multirotorTestLog(60))

	if stats.ActiveMotors != 4 {
		t.Errorf("ActiveMotors = %d, want 4", stats.ActiveMotors)
	}
	if stats.ControlSurfaces {
		t.Error("ControlSurfaces = true for a surface-less quad")
	}
	if stats.HoverRatio < 0.9 {
		t.Errorf("HoverRatio = %f, want > 0.9 for a hovering quad", stats.HoverRatio)
	}
	if stats.AvgSpeed < 1.5 || stats.AvgSpeed > 2.5 {
		t.Errorf("AvgSpeed = %f, want ~2.0", stats.AvgSpeed)
	}
	if stats.MotorSymmetry < 0.95 {
		t.Errorf("MotorSymmetry = %f, want ~1.0 for matched motors", stats.MotorSymmetry)
	}
	if stats.VerticalSignRatio < 0.9 {
		t.Errorf("VerticalSignRatio = %f, want ~1.0 for an alternating vertical rate", stats.VerticalSignRatio)
	}
}

func TestSummarizeFixedWingLog(t *testing.T) {
	t.Parallel()

	stats := Summarize(fixedWingTestLog(60))

	if stats.ActiveMotors != 1 {
		t.Errorf("ActiveMotors = %d, want 1", stats.ActiveMotors)
	}
	if stats.MotorChannels != 1 {
		t.Errorf("MotorChannels = %d, want 1", stats.MotorChannels)
	}
	if !stats.ControlSurfaces {
		t.Error("ControlSurfaces = false with non-zero deflections")
	}
	if stats.CruiseRatio != 1.0 {
		t.Errorf("CruiseRatio = %f, want 1.0 for level cruise", stats.CruiseRatio)
	}
	if stats.VerticalSignRatio != 0 {
		t.Errorf("VerticalSignRatio = %f, want 0 inside the deadband", stats.VerticalSignRatio)
	}
}

func TestSummarizeVTOLRegimeTransition(t *testing.T) {
	t.Parallel()

	stats := Summarize(vtolTestLog(80))

	if stats.ActiveMotors != 5 {
		t.Errorf("ActiveMotors = %d, want 5", stats.ActiveMotors)
	}
	if stats.RegimeTransitions < 1 {
		t.Errorf("RegimeTransitions = %d, want >= 1 for a hover-to-cruise flight", stats.RegimeTransitions)
	}
	if stats.HoverRatio <= 0.15 || stats.CruiseRatio <= 0.15 {
		t.Errorf("HoverRatio = %f, CruiseRatio = %f, want both > 0.15", stats.HoverRatio, stats.CruiseRatio)
	}
}

func TestSummarizeEmptyLog(t *testing.T) {
	t.Parallel()

	stats := Summarize(FlightLog{})
	if stats.Rows != 0 || stats.ActiveMotors != 0 || stats.AvgSpeed != 0 {
		t.Errorf("empty log produced non-zero stats: %+v", stats)
	}
}

func TestSummarizeCoercesMalformedValues(t *testing.T) {
	t.Parallel()

	log := FlightLog{Rows: []FlightRow{
		{
			BatteryVoltage: math.NaN(),
			MotorRPM:       []float64{math.Inf(1), 3000, 3000, 3000},
			GroundSpeed:    math.Inf(-1),
			VerticalSpeed:  math.NaN(),
		},
	}}

	stats := Summarize(log)
	if math.IsNaN(stats.AvgSpeed) || math.IsInf(stats.AvgSpeed, 0) {
		t.Errorf("AvgSpeed = %f, want finite", stats.AvgSpeed)
	}
	if math.IsNaN(stats.MotorSymmetry) {
		t.Error("MotorSymmetry is NaN")
	}
	if stats.ActiveMotors != 3 {
		t.Errorf("ActiveMotors = %d, want 3 after coercing the Inf channel to zero", stats.ActiveMotors)
	}
}

func TestFeatureMatrixShapeMatchesProfiles(t *testing.T) {
	t.Parallel()

	logs := map[AircraftType]FlightLog{
		FixedWing:  fixedWingTestLog(20),
		Multirotor: multirotorTestLog(20),
		VTOL:       vtolTestLog(20),
	}

	for _, aircraft := range AircraftTypes() {
		matrix := FeatureMatrix(logs[aircraft], aircraft)
		if len(matrix) != 20 {
			t.Fatalf("%s: matrix has %d rows, want 20", aircraft, len(matrix))
		}
		want := len(Profile(aircraft).FeatureNames)
		for i, row := range matrix {
			if len(row) != want {
				t.Fatalf("%s row %d: %d features, want %d", aircraft, i, len(row), want)
			}
		}
	}
}

func TestFeatureMatrixAltitudeDelta(t *testing.T) {
	t.Parallel()

	log := FlightLog{Rows: []FlightRow{
		{Altitude: 100, MotorRPM: []float64{3000, 3000, 3000, 3000}},
		{Altitude: 103, MotorRPM: []float64{3000, 3000, 3000, 3000}},
	}}

	matrix := FeatureMatrix(log, Multirotor)
	last := len(matrix[0]) - 1
	if matrix[0][last] != 0 {
		t.Errorf("first row altitude delta = %f, want 0", matrix[0][last])
	}
	if matrix[1][last] != 3 {
		t.Errorf("second row altitude delta = %f, want 3", matrix[1][last])
	}
}
