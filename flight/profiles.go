package flight

// Aircraft Type Classifier
//
// Each aircraft category is described by an immutable profile: a declared
// anomaly-feature list plus a set of weighted scoring rules over the summary
// statistics. Rules contribute additively and every profile's maximum
// attainable score is 1.0, so the winning score doubles as the classifier
// confidence.
//
// The tie-break label (used when all profiles score zero or the top scores
// are exactly equal) is configurable and surfaced on the result instead of
// being baked in, because a silent default hides degenerate inputs.

import (
	"context"
	"log/slog"
	"math"

	"flight-analysis/utils"
)

// ScoringRule is one additive predicate of an aircraft profile.
type ScoringRule struct {
	Name   string
	Weight float64
	Match  func(SummaryStats) bool
}

// AircraftProfile is a named, immutable set of scoring rules plus the
// feature list its anomaly model consumes. Profiles are built once at
// process start.
type AircraftProfile struct {
	Type         AircraftType
	FeatureNames []string
	Rules        []ScoringRule
}

// Score sums the weights of matching rules, clamped to [0, 1]. The sum is
// quantized to the 0.01 weight grid so a full match is exactly 1.0 and equal
// scores compare equal during tie detection.
func (p AircraftProfile) Score(stats SummaryStats) float64 {
	var score float64
	for _, rule := range p.Rules {
		if rule.Match(stats) {
			score += rule.Weight
		}
	}
	return clamp01(math.Round(score*100) / 100)
}

// ClassifierConfig holds the tunable parts of type classification.
type ClassifierConfig struct {
	// TieBreak is the label returned when no profile outscores the others.
	// Empty means Multirotor.
	TieBreak AircraftType
}

func (c ClassifierConfig) tieBreak() AircraftType {
	if c.TieBreak == "" {
		return Multirotor
	}
	return c.TieBreak
}

var profiles = buildProfiles()

// airborne reports whether the log shows any sign of powered flight. The
// hover and slow-speed rules trivially match a dead log, which must stay
// undetected instead.
func (s SummaryStats) airborne() bool {
	return s.ActiveMotors > 0 || s.ControlSurfaces || s.AvgSpeed > 0
}

// Profile returns the immutable profile of an aircraft type.
func Profile(aircraft AircraftType) AircraftProfile {
	for _, p := range profiles {
		if p.Type == aircraft {
			return p
		}
	}
	return profiles[1] // multirotor
}

// Classify scores the summary statistics against every profile and returns
// the winning label, its confidence and the full three-way distribution.
// It never fails: a degenerate log yields the tie-break label with
// confidence 0, which callers must treat as "undetected".
func Classify(stats SummaryStats, cfg ClassifierConfig) Classification {
	distribution := make(map[AircraftType]float64, len(profiles))
	best := Classification{Type: cfg.tieBreak(), Distribution: distribution}

	if !stats.airborne() {
		for _, p := range profiles {
			distribution[p.Type] = 0
		}
		best.TieBreak = true
		utils.GetLogger().WarnContext(context.Background(), "no flight activity in log, using tie-break label",
			slog.String("tieBreak", string(best.Type)),
		)
		return best
	}

	var topScore float64
	var topCount int
	for _, p := range profiles {
		score := p.Score(stats)
		distribution[p.Type] = score
		switch {
		case score > topScore:
			topScore = score
			topCount = 1
			best.Type = p.Type
		case score == topScore:
			topCount++
		}
	}

	if topScore == 0 || topCount > 1 {
		best.Type = cfg.tieBreak()
		best.TieBreak = true
		best.Confidence = 0
		if topScore > 0 {
			best.Confidence = clamp01(topScore)
		}
		utils.GetLogger().WarnContext(context.Background(), "aircraft type undecided, using tie-break label",
			slog.String("tieBreak", string(best.Type)),
			slog.Float64("topScore", topScore),
			slog.Int("contenders", topCount),
		)
		return best
	}

	best.Confidence = clamp01(topScore)
	return best
}

func buildProfiles() []AircraftProfile {
	return []AircraftProfile{
		{
			Type: FixedWing,
			FeatureNames: []string{
				"altitude", "battery_voltage", "motor1_rpm", "airspeed",
				"ground_speed", "vertical_speed", "elevator", "aileron",
				"rudder", "control_activity", "gps_quality", "vibration_x",
				"vibration_y", "vibration_z", "temperature", "altitude_delta",
			},
			Rules: []ScoringRule{
				{Name: "single active motor", Weight: 0.3, Match: func(s SummaryStats) bool {
					return s.ActiveMotors == 1
				}},
				{Name: "control surfaces present", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.ControlSurfaces
				}},
				{Name: "mostly cruising", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.CruiseRatio > 0.6
				}},
				{Name: "fast average speed", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.AvgSpeed > 15
				}},
				{Name: "steady vertical rate", Weight: 0.1, Match: func(s SummaryStats) bool {
					return s.Rows > 0 && s.VerticalSignRatio < 0.2
				}},
			},
		},
		{
			Type: Multirotor,
			FeatureNames: []string{
				"altitude", "battery_voltage", "motor1_rpm", "motor2_rpm",
				"motor3_rpm", "motor4_rpm", "rpm_spread", "gps_quality",
				"vibration_x", "vibration_y", "vibration_z", "ground_speed",
				"vertical_speed", "temperature", "altitude_delta",
			},
			Rules: []ScoringRule{
				{Name: "four or more active motors", Weight: 0.3, Match: func(s SummaryStats) bool {
					return s.ActiveMotors >= 4
				}},
				{Name: "significant hover time", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.HoverRatio > 0.3
				}},
				{Name: "frequent vertical reversals", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.VerticalSignRatio > 0.4
				}},
				{Name: "slow average speed", Weight: 0.1, Match: func(s SummaryStats) bool {
					return s.Rows > 0 && s.AvgSpeed < 15
				}},
				{Name: "symmetric motor load", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.MotorSymmetry > 0.7
				}},
			},
		},
		{
			Type: VTOL,
			FeatureNames: []string{
				"altitude", "battery_voltage", "motor1_rpm", "motor2_rpm",
				"motor3_rpm", "motor4_rpm", "motor5_rpm", "rpm_spread",
				"airspeed", "ground_speed", "vertical_speed", "elevator",
				"aileron", "gps_quality", "vibration_x", "vibration_y",
				"vibration_z", "temperature", "altitude_delta",
			},
			Rules: []ScoringRule{
				{Name: "five or more active motors", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.ActiveMotors >= 5
				}},
				{Name: "mixed hover and cruise", Weight: 0.3, Match: func(s SummaryStats) bool {
					return s.HoverRatio > 0.15 && s.CruiseRatio > 0.15
				}},
				{Name: "surfaces with multiple motors", Weight: 0.2, Match: func(s SummaryStats) bool {
					return s.ControlSurfaces && s.ActiveMotors >= 2
				}},
				{Name: "regime transition observed", Weight: 0.3, Match: func(s SummaryStats) bool {
					return s.RegimeTransitions >= 1
				}},
			},
		},
	}
}
