package studio

import "testing"

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to Stage }{
		{StageIdle, StageCalibrating},
		{StageIdle, StagePlanning},
		{StageCalibrating, StageIdle},
		{StagePlanning, StageDrafting},
		{StageDrafting, StageGeneratingAssets},
		{StageGeneratingAssets, StageVerifying},
		{StageVerifying, StageRefining},
		{StageVerifying, StageComplete},
		{StageRefining, StageComplete},
		{StageComplete, StagePlanning},
		{StageComplete, StageDrafting},
		{StageDrafting, StageIdle},
		{StageVerifying, StageIdle},
		{StageComplete, StageIdle},
	}
	for _, tc := range allowed {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Errorf("%s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
	}

	denied := []struct{ from, to Stage }{
		{StageIdle, StageDrafting},
		{StageIdle, StageComplete},
		{StagePlanning, StageVerifying},
		{StageDrafting, StageRefining},
		{StageVerifying, StagePlanning},
		{StageRefining, StageVerifying},
		{StageComplete, StageVerifying},
	}
	for _, tc := range denied {
		if err := ValidateTransition(tc.from, tc.to); err == nil {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestValidateTransitionRejectsUnknownStage(t *testing.T) {
	if err := ValidateTransition("LIMBO", StageIdle); err == nil {
		t.Error("unknown from-stage should be rejected")
	}
	if err := ValidateTransition(StageIdle, "LIMBO"); err == nil {
		t.Error("unknown to-stage should be rejected")
	}
}

func TestValidStage(t *testing.T) {
	for _, s := range []Stage{StageIdle, StageCalibrating, StagePlanning, StageDrafting, StageGeneratingAssets, StageVerifying, StageRefining, StageComplete} {
		if !ValidStage(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidStage("COMPLETED") {
		t.Error("COMPLETED is not a stage")
	}
}
