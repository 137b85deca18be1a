package domain

import (
	"time"

	"github.com/orchard9/sdlc/internal/constants"
)

// GapSeverity grades a planning gap found while surveying a milestone.
type GapSeverity string

// Gap severities.
const (
	// GapBlocker prevents any progress (dependency cycle, missing
	// prerequisite feature).
	GapBlocker GapSeverity = "blocker"

	// GapWarning means progress is possible but suboptimal.
	GapWarning GapSeverity = "warning"

	// GapInfo is advisory.
	GapInfo GapSeverity = "info"
)

// Gap is one issue detected during milestone survey.
type Gap struct {
	// Severity grades the gap.
	Severity GapSeverity `yaml:"severity" json:"severity"`

	// Feature is the slug the gap concerns, if feature-scoped.
	Feature string `yaml:"feature,omitempty" json:"feature,omitempty"`

	// Message describes the gap.
	Message string `yaml:"message" json:"message"`
}

// WaveItem is one feature scheduled within a wave.
type WaveItem struct {
	// Feature is the feature slug.
	Feature string `yaml:"feature" json:"feature"`

	// Phase is the feature's phase at planning time.
	Phase constants.Phase `yaml:"phase" json:"phase"`

	// Action is the recommended next action.
	Action constants.Action `yaml:"action" json:"action"`

	// BlockedBy lists dependency slugs that are mid-flight (assigned to
	// an earlier wave but not yet released).
	BlockedBy []string `yaml:"blocked_by,omitempty" json:"blocked_by,omitempty"`

	// NeedsWorktree is raised when two or more features share the wave
	// and therefore need isolated working copies.
	NeedsWorktree bool `yaml:"needs_worktree,omitempty" json:"needs_worktree,omitempty"`
}

// Wave is one dependency-respecting batch of parallelizable features.
type Wave struct {
	// Number is the 1-indexed wave ordinal.
	Number int `yaml:"number" json:"number"`

	// Items are the features in the wave.
	Items []WaveItem `yaml:"items" json:"items"`
}

// BlockedFeature records a milestone member excluded from waves.
type BlockedFeature struct {
	// Feature is the blocked feature slug.
	Feature string `yaml:"feature" json:"feature"`

	// Reason explains the exclusion.
	Reason string `yaml:"reason" json:"reason"`
}

// WavePlan is the wave planner's output for one milestone. When Waves
// is non-empty the plan is also persisted under the milestone directory
// for dashboards; it is always advisory and re-validated at execution
// time.
type WavePlan struct {
	// Milestone is the planned milestone's slug.
	Milestone string `yaml:"milestone" json:"milestone"`

	// ProjectPhase is the derived project lifecycle stage.
	ProjectPhase constants.ProjectPhase `yaml:"project_phase" json:"project_phase"`

	// Waves are the ordered execution batches.
	Waves []Wave `yaml:"waves,omitempty" json:"waves,omitempty"`

	// Blocked lists members excluded from waves with reasons.
	Blocked []BlockedFeature `yaml:"blocked,omitempty" json:"blocked,omitempty"`

	// Gaps lists survey findings by severity.
	Gaps []Gap `yaml:"gaps,omitempty" json:"gaps,omitempty"`

	// NextCommands is a flat list of ready-to-run CLI invocations.
	NextCommands []string `yaml:"next_commands,omitempty" json:"next_commands,omitempty"`

	// GeneratedAt is when the plan was computed.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
}
