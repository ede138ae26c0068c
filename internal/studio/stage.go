package studio

import "fmt"

// Stage is the orchestrator's pipeline position. COMPLETE is terminal for a
// cycle; any failure drops back to IDLE carrying a Failure reason.
type Stage string

const (
	StageIdle             Stage = "IDLE"
	StageCalibrating      Stage = "CALIBRATING"
	StagePlanning         Stage = "PLANNING"
	StageDrafting         Stage = "DRAFTING"
	StageGeneratingAssets Stage = "GENERATING_ASSETS"
	StageVerifying        Stage = "VERIFYING"
	StageRefining         Stage = "REFINING"
	StageComplete         Stage = "COMPLETE"
)

var allowedTransitions = map[Stage]map[Stage]struct{}{
	StageIdle: {
		StageCalibrating: {},
		StagePlanning:    {},
	},
	StageCalibrating: {
		StageIdle: {},
	},
	StagePlanning: {
		StageDrafting: {},
		StageIdle:     {},
	},
	StageDrafting: {
		StageGeneratingAssets: {},
		StageIdle:             {},
	},
	StageGeneratingAssets: {
		StageVerifying: {},
		StageIdle:      {},
	},
	StageVerifying: {
		StageRefining: {},
		StageComplete: {},
		StageIdle:     {},
	},
	StageRefining: {
		StageComplete: {},
		StageIdle:     {},
	},
	StageComplete: {
		// Remix re-enters planning (no blueprint) or drafting (existing one).
		StagePlanning: {},
		StageDrafting: {},
		StageIdle:     {},
	},
}

func ValidStage(s Stage) bool {
	_, ok := allowedTransitions[s]
	return ok
}

func ValidateTransition(from, to Stage) error {
	if !ValidStage(from) {
		return fmt.Errorf("invalid stage: %q", from)
	}
	if !ValidStage(to) {
		return fmt.Errorf("invalid stage: %q", to)
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid stage transition: %s -> %s", from, to)
	}
	return nil
}

// Failure is the reason code attached when a pipeline run aborts.
type Failure struct {
	Stage   Stage  `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
