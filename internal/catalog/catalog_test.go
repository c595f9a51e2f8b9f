package catalog

import (
	"testing"

	"github.com/optrack-next/internal/constants"
)

func TestAllStagesHaveValidTargets(t *testing.T) {
	for _, stage := range All() {
		for _, to := range stage.Forward {
			if !Exists(to) {
				t.Fatalf("stage %s declares unknown forward target %s", stage.ID, to)
			}
			if to == stage.ID {
				t.Fatalf("stage %s declares itself as forward target", stage.ID)
			}
		}
		for _, to := range stage.Backward {
			if !Exists(to) {
				t.Fatalf("stage %s declares unknown backward target %s", stage.ID, to)
			}
			if to == stage.ID {
				t.Fatalf("stage %s declares itself as backward target", stage.ID)
			}
		}
	}
}

func TestInitialStage(t *testing.T) {
	if InitialStage() != constants.StageCommercial {
		t.Fatalf("unexpected initial stage: %s", InitialStage())
	}
	if !Exists(InitialStage()) {
		t.Fatal("initial stage missing from catalog")
	}
}

func TestShippingReturnsOnlyToRelease(t *testing.T) {
	cfg, ok := Get(constants.StageShipping)
	if !ok {
		t.Fatal("shipping stage missing")
	}
	if len(cfg.Backward) != 1 || cfg.Backward[0] != constants.StageRelease {
		t.Fatalf("unexpected shipping backward set: %v", cfg.Backward)
	}
	if !CanReturn(constants.StageShipping, constants.StageRelease) {
		t.Fatal("shipping should return to release")
	}
	if CanReturn(constants.StageShipping, constants.StageMachining) {
		t.Fatal("shipping must not return to machining")
	}
}

func TestReleaseReturnsToAllUpstreamStages(t *testing.T) {
	upstream := []string{
		constants.StageEngineering,
		constants.StagePatternShop,
		constants.StageSupply,
		constants.StageCasting,
		constants.StageFinishing,
		constants.StageMachining,
		constants.StageBoilermaking,
		constants.StageIndustrialSupport,
	}
	for _, to := range upstream {
		if !CanReturn(constants.StageRelease, to) {
			t.Fatalf("release should return to %s", to)
		}
	}
	if CanReturn(constants.StageRelease, constants.StageShipping) {
		t.Fatal("release must not return forward to shipping")
	}
}

func TestShippingEntryRequiresShippingData(t *testing.T) {
	cfg, ok := Get(constants.StageShipping)
	if !ok {
		t.Fatal("shipping stage missing")
	}
	if !cfg.RequiresShippingData {
		t.Fatal("shipping entry should require weight and volume")
	}
	for _, stage := range All() {
		if stage.ID != constants.StageShipping && stage.RequiresShippingData {
			t.Fatalf("stage %s should not require shipping data", stage.ID)
		}
	}
}

func TestFinalizedIsTerminal(t *testing.T) {
	if !IsTerminal(constants.StageFinalized) {
		t.Fatal("finalized should be terminal")
	}
	for _, stage := range All() {
		if stage.ID != constants.StageFinalized && IsTerminal(stage.ID) {
			t.Fatalf("stage %s should not be terminal", stage.ID)
		}
	}
}

func TestCanForwardRejectsUnknownStage(t *testing.T) {
	if CanForward("unknown", constants.StageEngineering) {
		t.Fatal("unknown origin should not transition")
	}
	if CanForward(constants.StageCommercial, "unknown") {
		t.Fatal("unknown destination should not transition")
	}
}
