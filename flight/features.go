package flight

// Feature Extraction Pipeline
//
// This package converts a raw time-series flight log into two things:
//
// 1. Summary statistics used only for aircraft type detection:
//    - Active motor count: channels whose mean RPM exceeds the active threshold
//    - Control surface presence: any non-zero elevator/aileron/rudder sample
//    - Hover vs cruise time ratios: per-row flight regime classification
//      (hover = low horizontal speed, cruise = sustained horizontal speed with
//      low vertical rate)
//    - Average horizontal speed
//    - Vertical-rate sign-change ratio and hover<->cruise regime transitions
//    - Motor RPM symmetry: 1 - coefficient of variation across active motors
//
// 2. A per-aircraft-type feature matrix feeding that type's anomaly model.
//    Each row becomes a fixed-order vector matching the type profile's
//    declared feature list (see profiles.go). Columns a vehicle does not
//    produce resolve to zero, so the matrix is always fully numeric.
//
// Extraction is a pure function of the log: malformed values are coerced to
// zero before ratios are computed and a zero-row log yields zeroed statistics
// rather than an error.

import "math"

const (
	// activeRPMThreshold separates a spinning motor channel from a stopped or
	// absent one.
	activeRPMThreshold = 500.0

	// hoverSpeedMax and cruiseSpeedMin bound the per-row flight regimes.
	hoverSpeedMax  = 3.0
	cruiseSpeedMin = 10.0

	// cruiseVerticalMax is the vertical-rate magnitude above which a fast row
	// no longer counts as cruise.
	cruiseVerticalMax = 3.0

	// verticalDeadband ignores vertical-rate jitter when counting sign changes.
	verticalDeadband = 0.5

	maxMotorChannels = 5
)

// Summarize computes the aircraft-agnostic summary statistics of a log.
func Summarize(log FlightLog) SummaryStats {
	stats := SummaryStats{Rows: len(log.Rows)}
	if stats.Rows == 0 {
		return stats
	}

	motorSums := make([]float64, maxMotorChannels)
	motorSeen := make([]bool, maxMotorChannels)
	var speedSum float64
	var hoverRows, cruiseRows int
	var signChanges, signSamples int
	lastSign := 0
	lastRegime := 0 // 0 none, 1 hover, 2 cruise

	for _, row := range log.Rows {
		for i := 0; i < maxMotorChannels; i++ {
			rpm := sane(row.motor(i))
			motorSums[i] += rpm
			if rpm != 0 {
				motorSeen[i] = true
			}
		}
		if sane(row.Elevator) != 0 || sane(row.Aileron) != 0 || sane(row.Rudder) != 0 {
			stats.ControlSurfaces = true
		}

		speed := sane(row.horizontalSpeed())
		speedSum += speed
		vertical := sane(row.VerticalSpeed)

		regime := 0
		switch {
		case speed <= hoverSpeedMax:
			regime = 1
			hoverRows++
		case speed >= cruiseSpeedMin && math.Abs(vertical) <= cruiseVerticalMax:
			regime = 2
			cruiseRows++
		}
		if regime != 0 {
			if lastRegime != 0 && regime != lastRegime {
				stats.RegimeTransitions++
			}
			lastRegime = regime
		}

		if math.Abs(vertical) > verticalDeadband {
			sign := 1
			if vertical < 0 {
				sign = -1
			}
			if lastSign != 0 {
				signSamples++
				if sign != lastSign {
					signChanges++
				}
			}
			lastSign = sign
		}
	}

	rowCount := float64(stats.Rows)
	stats.AvgSpeed = speedSum / rowCount
	stats.HoverRatio = float64(hoverRows) / rowCount
	stats.CruiseRatio = float64(cruiseRows) / rowCount
	if signSamples > 0 {
		stats.VerticalSignRatio = float64(signChanges) / float64(signSamples)
	}

	var activeMeans []float64
	for i := 0; i < maxMotorChannels; i++ {
		if motorSeen[i] {
			stats.MotorChannels++
		}
		mean := motorSums[i] / rowCount
		if mean > activeRPMThreshold {
			stats.ActiveMotors++
			activeMeans = append(activeMeans, mean)
		}
	}
	stats.MotorSymmetry = rpmSymmetry(activeMeans)

	return stats
}

// FeatureMatrix builds the fixed-order anomaly feature matrix for one
// aircraft type. The column order and count come from the type's profile.
func FeatureMatrix(log FlightLog, aircraft AircraftType) [][]float64 {
	matrix := make([][]float64, len(log.Rows))
	prev := FlightRow{}
	for i, row := range log.Rows {
		if i == 0 {
			prev = row
		}
		matrix[i] = rowFeatures(prev, row, aircraft)
		prev = row
	}
	return matrix
}

// rowFeatures featurizes a single row. prev supplies the altitude delta; for
// the first row prev == cur and the delta is zero.
func rowFeatures(prev, cur FlightRow, aircraft AircraftType) []float64 {
	altDelta := sane(cur.Altitude) - sane(prev.Altitude)

	switch aircraft {
	case FixedWing:
		return []float64{
			sane(cur.Altitude),
			sane(cur.BatteryVoltage),
			sane(cur.motor(0)),
			sane(cur.Airspeed),
			sane(cur.GroundSpeed),
			sane(cur.VerticalSpeed),
			sane(cur.Elevator),
			sane(cur.Aileron),
			sane(cur.Rudder),
			math.Abs(sane(cur.Elevator)) + math.Abs(sane(cur.Aileron)) + math.Abs(sane(cur.Rudder)),
			sane(cur.GPSQuality),
			sane(cur.VibrationX),
			sane(cur.VibrationY),
			sane(cur.VibrationZ),
			sane(cur.Temperature),
			altDelta,
		}
	case VTOL:
		return []float64{
			sane(cur.Altitude),
			sane(cur.BatteryVoltage),
			sane(cur.motor(0)),
			sane(cur.motor(1)),
			sane(cur.motor(2)),
			sane(cur.motor(3)),
			sane(cur.motor(4)),
			rowRPMSpread(cur, 5),
			sane(cur.Airspeed),
			sane(cur.GroundSpeed),
			sane(cur.VerticalSpeed),
			sane(cur.Elevator),
			sane(cur.Aileron),
			sane(cur.GPSQuality),
			sane(cur.VibrationX),
			sane(cur.VibrationY),
			sane(cur.VibrationZ),
			sane(cur.Temperature),
			altDelta,
		}
	default: // multirotor
		return []float64{
			sane(cur.Altitude),
			sane(cur.BatteryVoltage),
			sane(cur.motor(0)),
			sane(cur.motor(1)),
			sane(cur.motor(2)),
			sane(cur.motor(3)),
			rowRPMSpread(cur, 4),
			sane(cur.GPSQuality),
			sane(cur.VibrationX),
			sane(cur.VibrationY),
			sane(cur.VibrationZ),
			sane(cur.GroundSpeed),
			sane(cur.VerticalSpeed),
			sane(cur.Temperature),
			altDelta,
		}
	}
}

// rowRPMSpread is the coefficient of variation across the first n motor
// channels of one row. Stopped channels count as zero.
func rowRPMSpread(row FlightRow, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		sum += sane(row.motor(i))
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 0
	}
	var variance float64
	for i := 0; i < n; i++ {
		diff := sane(row.motor(i)) - mean
		variance += diff * diff
	}
	return math.Sqrt(variance/float64(n)) / mean
}

// rpmSymmetry maps the spread of active motor means into [0, 1], where 1 is
// perfectly matched motors.
func rpmSymmetry(activeMeans []float64) float64 {
	if len(activeMeans) < 2 {
		return 0
	}
	var sum float64
	for _, m := range activeMeans {
		sum += m
	}
	mean := sum / float64(len(activeMeans))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, m := range activeMeans {
		diff := m - mean
		variance += diff * diff
	}
	cv := math.Sqrt(variance/float64(len(activeMeans))) / mean
	return clamp01(1 - cv)
}

// sane coerces NaN and infinite sensor values to zero so every downstream
// ratio stays numeric.
func sane(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
