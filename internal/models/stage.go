package models

import "strings"

// Stage is a release scope bucket grouping one or more milestones.
type Stage string

const (
	StageMVP Stage = "MVP"
	StageV2  Stage = "V2"
	StageV3  Stage = "V3"
	StageV4  Stage = "V4"
)

// StageOrder is the canonical stage ordering. Stage progress is always
// emitted in this order regardless of how milestones appear in the source.
var StageOrder = []Stage{StageMVP, StageV2, StageV3, StageV4}

// ParseStage matches a free-text stage label case-insensitively.
func ParseStage(s string) (Stage, bool) {
	switch Stage(strings.ToUpper(strings.TrimSpace(s))) {
	case StageMVP:
		return StageMVP, true
	case StageV2:
		return StageV2, true
	case StageV3:
		return StageV3, true
	case StageV4:
		return StageV4, true
	}
	return "", false
}

// Milestone status values produced by normalization. Unrecognized
// source tokens (BLOCKED, DEFERRED, ...) pass through as-is.
const (
	StatusComplete   = "COMPLETE"
	StatusInProgress = "IN PROGRESS"
	StatusPlanned    = "PLANNED"
)

// MilestoneEntry is one row of a project's milestone overview.
type MilestoneEntry struct {
	Phase  string `json:"phase"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  Stage  `json:"stage,omitempty"`
}

// ProgressInfo is an overall completed/total checklist count.
type ProgressInfo struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// StageProgressInfo is accumulated checklist progress for one stage.
// Stages with a zero total are never emitted.
type StageProgressInfo struct {
	Stage     Stage `json:"stage"`
	Completed int   `json:"completed"`
	Total     int   `json:"total"`
	Percent   int   `json:"percent"`
}

// GateStatus is the ship-readiness classification.
type GateStatus string

const (
	GateBuilding     GateStatus = "building"
	GateShipIt       GateStatus = "ship_it"
	GateShipAndBuild GateStatus = "ship_and_build"
	GateScopeCreep   GateStatus = "scope_creep"
)

// ShipGate is the classification result for one project.
type ShipGate struct {
	Status        GateStatus          `json:"status"`
	CurrentStage  Stage               `json:"current_stage"`
	StageProgress []StageProgressInfo `json:"stage_progress"`
	Alert         string              `json:"alert,omitempty"`
}
