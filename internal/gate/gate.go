// Package gate classifies a project's ship readiness from its
// per-stage progress. The decision procedure is pure and total: the
// same stage sequence always yields the same gate, and no input can
// make it fail.
package gate

import (
	"fmt"

	"github.com/joescharf/shipgate/internal/models"
)

// Compute classifies the given stage progress sequence. The input is
// expected in canonical stage order; entries with a zero total are
// ignored.
func Compute(stages []models.StageProgressInfo) models.ShipGate {
	filtered := make([]models.StageProgressInfo, 0, len(stages))
	for _, s := range stages {
		if s.Total > 0 {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == 0 {
		return models.ShipGate{
			Status:       models.GateBuilding,
			CurrentStage: models.StageMVP,
		}
	}

	idx := -1
	for i, s := range filtered {
		if s.Percent < 100 {
			idx = i
			break
		}
	}

	// Every stage complete: ship the last one.
	if idx == -1 {
		last := filtered[len(filtered)-1].Stage
		return models.ShipGate{
			Status:        models.GateShipIt,
			CurrentStage:  last,
			StageProgress: filtered,
			Alert:         fmt.Sprintf("all stages complete — ship %s", last),
		}
	}

	current := filtered[idx]

	if idx == 0 {
		// Earliest stage still open. Any work on a later stage is
		// scope creep.
		for _, later := range filtered[1:] {
			if later.Completed > 0 {
				return models.ShipGate{
					Status:        models.GateScopeCreep,
					CurrentStage:  current.Stage,
					StageProgress: filtered,
					Alert: fmt.Sprintf("scope creep: %s work started but %s is only %d%% done",
						later.Stage, current.Stage, current.Percent),
				}
			}
		}
		return models.ShipGate{
			Status:        models.GateBuilding,
			CurrentStage:  current.Stage,
			StageProgress: filtered,
		}
	}

	// At least one earlier stage is fully complete.
	prior := filtered[idx-1].Stage
	started := current.Completed > 0
	for _, later := range filtered[idx+1:] {
		if later.Completed > 0 {
			started = true
			break
		}
	}

	if started {
		return models.ShipGate{
			Status:        models.GateShipAndBuild,
			CurrentStage:  prior,
			StageProgress: filtered,
			Alert:         fmt.Sprintf("%s ready to ship — %s in progress", prior, current.Stage),
		}
	}
	return models.ShipGate{
		Status:        models.GateShipIt,
		CurrentStage:  prior,
		StageProgress: filtered,
		Alert:         fmt.Sprintf("%s is ready — ship it!", prior),
	}
}
