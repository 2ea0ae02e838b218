package flight

import "testing"

func TestClassifyMultirotorScenario(t *testing.T) {
	t.Parallel()

	c := Classify(Summarize(multirotorTestLog(60)), ClassifierConfig{})
	if c.Type != Multirotor {
		t.Fatalf("Type = %s, want %s (distribution %v)", c.Type, Multirotor, c.Distribution)
	}
	if c.Confidence < 0.8 {
		t.Errorf("Confidence = %f, want >= 0.8", c.Confidence)
	}
	if c.TieBreak {
		t.Error("TieBreak = true for a clear multirotor log")
	}
}

func TestClassifyFixedWingScenario(t *testing.T) {
	t.Parallel()

	c := Classify(Summarize(fixedWingTestLog(60)), ClassifierConfig{})
	if c.Type != FixedWing {
		t.Fatalf("Type = %s, want %s (distribution %v)", c.Type, FixedWing, c.Distribution)
	}
	if c.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want exactly 1.0 when every rule matches", c.Confidence)
	}
}

func TestClassifyVTOLScenario(t *testing.T) {
	t.Parallel()

	c := Classify(Summarize(vtolTestLog(80)), ClassifierConfig{})
	if c.Type != VTOL {
		t.Fatalf("Type = %s, want %s (distribution %v)", c.Type, VTOL, c.Distribution)
	}
	if c.Confidence < 0.9 {
		t.Errorf("Confidence = %f, want >= 0.9", c.Confidence)
	}
}

func TestClassifyAllZeroLogIsUndetected(t *testing.T) {
	t.Parallel()

	c := Classify(Summarize(zeroTestLog(10)), ClassifierConfig{})
	if c.Type != Multirotor {
		t.Errorf("Type = %s, want the %s tie-break default", c.Type, Multirotor)
	}
	if c.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0 for a log with no flight activity", c.Confidence)
	}
	if !c.TieBreak {
		t.Error("TieBreak = false, want the tie-break to be surfaced")
	}
}

func TestClassifyTieBreakConfigurable(t *testing.T) {
	t.Parallel()

	c := Classify(Summarize(zeroTestLog(10)), ClassifierConfig{TieBreak: FixedWing})
	if c.Type != FixedWing {
		t.Errorf("Type = %s, want the configured %s tie-break", c.Type, FixedWing)
	}
	if !c.TieBreak {
		t.Error("TieBreak = false, want true")
	}
}

func TestClassifyDistributionBounds(t *testing.T) {
	t.Parallel()

	logs := []FlightLog{
		multirotorTestLog(40),
		fixedWingTestLog(40),
		vtolTestLog(40),
		zeroTestLog(5),
	}
	for _, log := range logs {
		c := Classify(Summarize(log), ClassifierConfig{})
		if len(c.Distribution) != len(AircraftTypes()) {
			t.Fatalf("distribution has %d entries, want %d", len(c.Distribution), len(AircraftTypes()))
		}
		for aircraft, score := range c.Distribution {
			if score < 0 || score > 1 {
				t.Errorf("%s score = %f, want within [0, 1]", aircraft, score)
			}
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("Confidence = %f, want within [0, 1]", c.Confidence)
		}
	}
}

func TestProfileScoreQuantizedToWeightGrid(t *testing.T) {
	t.Parallel()

	// every fixed-wing rule matches; summing 0.3+0.2+0.2+0.2+0.1 as floats
	// drifts below 1.0 without quantization
	stats := Summarize(fixedWingTestLog(60))
	if score := Profile(FixedWing).Score(stats); score != 1.0 {
		t.Errorf("Score = %.17f, want exactly 1.0", score)
	}

	// a partial match must land exactly on the grid too, so equal scores
	// from different profiles compare equal during tie detection
	partial := SummaryStats{Rows: 60, ActiveMotors: 1, ControlSurfaces: true, AvgSpeed: 20, VerticalSignRatio: 0.5}
	if score := Profile(FixedWing).Score(partial); score != 0.7 {
		t.Errorf("Score = %.17f, want exactly 0.7", score)
	}
}

func TestProfileScoreNeverExceedsOne(t *testing.T) {
	t.Parallel()

	// stats chosen to fire as many rules of each profile as possible
	stats := SummaryStats{
		Rows:              100,
		ActiveMotors:      5,
		ControlSurfaces:   true,
		HoverRatio:        0.5,
		CruiseRatio:       0.7,
		AvgSpeed:          14,
		VerticalSignRatio: 0.1,
		RegimeTransitions: 3,
		MotorSymmetry:     0.9,
	}
	for _, aircraft := range AircraftTypes() {
		if score := Profile(aircraft).Score(stats); score > 1.0 {
			t.Errorf("%s score = %f, want <= 1.0", aircraft, score)
		}
	}
}
