package flight

import "time"

// AircraftType is a structural category of vehicle with a distinct
// flight envelope and sensor signature.
type AircraftType string

const (
	FixedWing  AircraftType = "fixed_wing"
	Multirotor AircraftType = "multirotor"
	VTOL       AircraftType = "vtol"
)

// AircraftTypes lists every supported category in a stable order.
func AircraftTypes() []AircraftType {
	return []AircraftType{FixedWing, Multirotor, VTOL}
}

// RiskLevel is the three-bucket summary of the aggregate risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// FlightRow is one timestamped sample of a flight log. The column set is a
// superset across aircraft types; columns a vehicle does not produce stay at
// their zero value, so every feature resolves to a number after extraction.
type FlightRow struct {
	Timestamp      float64   `json:"timestamp"` // seconds from log start
	Altitude       float64   `json:"altitude"`
	BatteryVoltage float64   `json:"batteryVoltage"`
	MotorRPM       []float64 `json:"motorRpm"` // one to five channels
	Elevator       float64   `json:"elevator"`
	Aileron        float64   `json:"aileron"`
	Rudder         float64   `json:"rudder"`
	GPSQuality     float64   `json:"gpsQuality"` // 0 (no fix) to 1 (full fix)
	VibrationX     float64   `json:"vibrationX"`
	VibrationY     float64   `json:"vibrationY"`
	VibrationZ     float64   `json:"vibrationZ"`
	Airspeed       float64   `json:"airspeed"`
	GroundSpeed    float64   `json:"groundSpeed"`
	VerticalSpeed  float64   `json:"verticalSpeed"`
	Temperature    float64   `json:"temperature"`
}

// FlightLog is an ordered sequence of rows. The caller's log parser is
// responsible for column mapping; this core only requires non-decreasing
// timestamps.
type FlightLog struct {
	Rows []FlightRow `json:"rows"`
}

// motor returns channel i of the row, treating absent channels as zero.
func (r FlightRow) motor(i int) float64 {
	if i < 0 || i >= len(r.MotorRPM) {
		return 0
	}
	return r.MotorRPM[i]
}

// horizontalSpeed prefers ground speed and falls back to airspeed for
// vehicles without a GPS-derived ground track.
func (r FlightRow) horizontalSpeed() float64 {
	if r.GroundSpeed != 0 {
		return r.GroundSpeed
	}
	return r.Airspeed
}

// SummaryStats are the aircraft-agnostic statistics the type classifier
// scores against. All ratios are in [0, 1].
type SummaryStats struct {
	Rows              int
	ActiveMotors      int     // channels whose mean RPM clears the active threshold
	MotorChannels     int     // channels with any non-zero sample
	ControlSurfaces   bool    // any non-zero elevator/aileron/rudder sample
	HoverRatio        float64 // fraction of rows in the hover regime
	CruiseRatio       float64 // fraction of rows in the cruise regime
	AvgSpeed          float64 // mean horizontal speed, m/s
	VerticalSignRatio float64 // fraction of vertical-rate sign changes
	RegimeTransitions int     // hover<->cruise switches across the log
	MotorSymmetry     float64 // 1 - coefficient of variation across active motors
}

// Classification is the type classifier's output. Confidence 0 means
// "undetected"; callers must not treat the label as meaningful then.
type Classification struct {
	Type         AircraftType             `json:"type"`
	Confidence   float64                  `json:"confidence"`
	Distribution map[AircraftType]float64 `json:"distribution"`
	TieBreak     bool                     `json:"tieBreak"` // label chosen by the configured default, not by score
}

// AnomalyRecord flags one row whose anomaly probability met the per-row
// threshold.
type AnomalyRecord struct {
	Row         int                `json:"row"`
	Timestamp   float64            `json:"timestamp"`
	Probability float64            `json:"probability"`
	Features    map[string]float64 `json:"features"`
	Description string             `json:"description"`
}

// FeatureContribution is one entry of an explanation ranking. Contribution is
// the signed mean attribution in model score space; positive values push the
// anomaly probability up.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// Explanation ranks the features driving the anomaly model's output for a
// bounded sample of rows.
type Explanation struct {
	TopFeatures   []FeatureContribution `json:"topFeatures"`
	OverallImpact float64               `json:"overallImpact"`
	SampledRows   int                   `json:"sampledRows"`
	Summary       string                `json:"summary"`
}

// Detection is the anomaly detector's output for one flight log.
type Detection struct {
	RiskScore float64         `json:"riskScore"`
	RiskLevel RiskLevel       `json:"riskLevel"`
	Anomalies []AnomalyRecord `json:"anomalies"`
}

// AnalysisResult is the single structured result of Analyze. It is created
// once per call and owned by the caller afterwards.
type AnalysisResult struct {
	AircraftType       AircraftType             `json:"aircraftType"`
	AircraftConfidence float64                  `json:"aircraftConfidence"`
	Distribution       map[AircraftType]float64 `json:"distribution"`
	RiskScore          float64                  `json:"riskScore"`
	RiskLevel          RiskLevel                `json:"riskLevel"`
	Anomalies          []AnomalyRecord          `json:"anomalies"`
	Explanation        Explanation              `json:"explanation"`
	Rows               int                      `json:"rows"`
	LatencyMs          float64                  `json:"latencyMs"`
	AnalyzedAt         time.Time                `json:"analyzedAt"`
}
