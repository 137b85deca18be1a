package domain

import "github.com/orchard9/sdlc/internal/constants"

// Classification is the engine's computed directive for a feature: what
// should happen next. It is ephemeral — computed fresh on every call and
// never persisted.
type Classification struct {
	// Feature is the feature slug.
	Feature string `yaml:"feature" json:"feature"`

	// Title is the feature title, carried for presentation.
	Title string `yaml:"title" json:"title"`

	// Description is the feature description, carried for presentation.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Phase is the feature's current phase at classification time.
	Phase constants.Phase `yaml:"phase" json:"phase"`

	// Action is the single decided next action.
	Action constants.Action `yaml:"action" json:"action"`

	// Message is the human-readable explanation of the decision.
	Message string `yaml:"message" json:"message"`

	// NextCommand is a ready-to-run CLI invocation for the action.
	NextCommand string `yaml:"next_command,omitempty" json:"next_command,omitempty"`

	// OutputPath suggests where a produced artifact should be written.
	OutputPath string `yaml:"output_path,omitempty" json:"output_path,omitempty"`

	// TransitionTo names a phase the caller should transition the
	// feature into before executing the action, when set.
	TransitionTo constants.Phase `yaml:"transition_to,omitempty" json:"transition_to,omitempty"`

	// TaskID names the specific task for implement_task actions.
	TaskID string `yaml:"task_id,omitempty" json:"task_id,omitempty"`

	// IsHeavy hints that the action dispatches a long-running agent.
	// Advisory only; consumed by callers to set timeouts.
	IsHeavy bool `yaml:"is_heavy,omitempty" json:"is_heavy,omitempty"`

	// TimeoutMinutes is the advisory timeout for heavy actions.
	TimeoutMinutes int `yaml:"timeout_minutes,omitempty" json:"timeout_minutes,omitempty"`

	// Milestone annotates where the feature sits in milestone order
	// when the classification came from the focus selector.
	Milestone *MilestoneRef `yaml:"milestone,omitempty" json:"milestone,omitempty"`
}

// MilestoneRef locates a feature within a milestone's stored order.
type MilestoneRef struct {
	// Slug is the milestone slug.
	Slug string `yaml:"slug" json:"slug"`

	// Position is the 1-indexed position of the feature.
	Position int `yaml:"position" json:"position"`

	// Total is the milestone's member count.
	Total int `yaml:"total" json:"total"`
}

// Actionable reports whether the directive calls for work right now.
func (c *Classification) Actionable() bool {
	return c.Action.IsActionable()
}
