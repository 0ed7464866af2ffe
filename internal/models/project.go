package models

import (
	"strings"
	"time"
)

// TrackedProject is one repository configured for monitoring.
// Supplied externally via config; never mutated by the engine.
type TrackedProject struct {
	Repo        string `json:"repo" yaml:"repo" mapstructure:"repo"`
	DisplayName string `json:"display_name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}

// BranchInfo summarizes a repository's branch set.
type BranchInfo struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
	// Healthy means the branch set is exactly the expected two:
	// a main branch plus one working branch.
	Healthy bool `json:"is_healthy"`
}

// Mergeable is the normalized mergeability of a pull request.
type Mergeable string

const (
	MergeableYes      Mergeable = "MERGEABLE"
	MergeableConflict Mergeable = "CONFLICTING"
	MergeableUnknown  Mergeable = "UNKNOWN"
)

// NormalizeMergeable maps an upstream mergeable-state string onto the
// enum. Anything unrecognized (including empty) is UNKNOWN.
func NormalizeMergeable(s string) Mergeable {
	switch Mergeable(strings.ToUpper(s)) {
	case MergeableYes:
		return MergeableYes
	case MergeableConflict:
		return MergeableConflict
	default:
		return MergeableUnknown
	}
}

// PullRequestInfo is one open pull request.
type PullRequestInfo struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	HeadRef   string    `json:"head_ref"`
	BaseRef   string    `json:"base_ref"`
	Mergeable Mergeable `json:"mergeable"`
	Author    string    `json:"author"`
	UpdatedAt string    `json:"updated_at"`
	URL       string    `json:"url"`
}

// CommitInfo is the most recent commit on the watched ref.
type CommitInfo struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Author  string `json:"author"`
}

// SessionHandoff is the parsed session-handoff document. Absent
// sections are empty strings.
type SessionHandoff struct {
	WhatWasDone  string `json:"what_was_done"`
	CurrentState string `json:"current_state"`
	NextStep     string `json:"next_step"`
	Blockers     string `json:"blockers"`
}

// OutOfScopeEntry is one row of a vision document's Out of Scope table.
type OutOfScopeEntry struct {
	ID        string `json:"id"`
	Item      string `json:"item"`
	Rationale string `json:"rationale"`
	Revisit   string `json:"revisit"`
}

// NorthStar is the parsed vision document.
type NorthStar struct {
	Vision     string            `json:"vision"`
	OutOfScope []OutOfScopeEntry `json:"out_of_scope"`
}

// ProjectStatus is the full reconstructed state of one tracked project.
// Built fresh every refresh cycle; never mutated in place.
type ProjectStatus struct {
	Repo        string `json:"repo"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	Branches   BranchInfo        `json:"branches"`
	OpenPRs    []PullRequestInfo `json:"open_prs"`
	LastCommit *CommitInfo       `json:"last_commit"`

	Milestones    []MilestoneEntry    `json:"milestones"`
	Progress      ProgressInfo        `json:"progress"`
	StageProgress []StageProgressInfo `json:"stage_progress"`
	Gate          ShipGate            `json:"gate"`

	NorthStar *NorthStar      `json:"north_star"`
	Session   *SessionHandoff `json:"session"`

	FetchedAt time.Time `json:"fetched_at"`
	Error     string    `json:"error,omitempty"`
}
