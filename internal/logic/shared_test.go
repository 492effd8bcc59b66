package logic

import "testing"

func TestNewSharedDefaults(t *testing.T) {
	s := NewShared(DefaultSpeeds, DefaultTier)
	if s.Threshold() != 2000 {
		t.Errorf("threshold: got %d, want 2000", s.Threshold())
	}
	if s.Count() != 0 {
		t.Errorf("count: got %d, want 0", s.Count())
	}
	if s.Indicator() {
		t.Error("indicator should start off")
	}
	if s.Crossings() != 0 || s.ToggleFaults() != 0 {
		t.Error("counters should start at zero")
	}
}

func TestSharedSetThresholdRejectsOutsideTable(t *testing.T) {
	s := NewShared(DefaultSpeeds, 3)

	if s.SetThreshold(0) {
		t.Error("zero threshold accepted")
	}
	if s.SetThreshold(250) {
		t.Error("threshold outside table accepted")
	}
	if s.Threshold() != 100 {
		t.Errorf("rejected writes must leave threshold unchanged, got %d", s.Threshold())
	}
	if !s.SetThreshold(1000) {
		t.Error("table threshold rejected")
	}
	if s.Threshold() != 1000 {
		t.Errorf("threshold: got %d, want 1000", s.Threshold())
	}
}

func TestSharedInvalidTierFallsBack(t *testing.T) {
	s := NewShared(DefaultSpeeds, -3)
	if s.Threshold() != DefaultSpeeds[DefaultTier] {
		t.Errorf("threshold: got %d, want %d", s.Threshold(), DefaultSpeeds[DefaultTier])
	}
}
