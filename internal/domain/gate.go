package domain

import "github.com/orchard9/sdlc/internal/constants"

// GateDefinition describes one post-action verification gate. Gates are
// configured per action and executed in list order after the action
// completes; the directive is not reported complete until every gate
// passes or a human gate pauses the run.
type GateDefinition struct {
	// Name identifies the gate in results and logs.
	Name string `yaml:"name" mapstructure:"name"`

	// Kind selects shell, human, or step_back resolution.
	Kind constants.GateKind `yaml:"kind" mapstructure:"kind"`

	// Command is the shell command for shell gates; exit 0 passes.
	Command string `yaml:"command,omitempty" mapstructure:"command"`

	// Prompt is the confirmation text for human gates.
	Prompt string `yaml:"prompt,omitempty" mapstructure:"prompt"`

	// Questions are the reflection questions for step_back gates.
	Questions []string `yaml:"questions,omitempty" mapstructure:"questions"`

	// Auto marks the gate as runnable without a person present. Human
	// and step_back gates are never auto regardless of this flag.
	Auto bool `yaml:"auto,omitempty" mapstructure:"auto"`

	// MaxRetries is the number of additional attempts after the first
	// failure (0 = one attempt total). Ignored for non-shell gates.
	MaxRetries int `yaml:"max_retries,omitempty" mapstructure:"max_retries"`

	// TimeoutSeconds bounds each individual attempt. Zero means the
	// configured default applies.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
}

// GateResult captures one gate's final outcome within a run. Results
// are transient: the runner returns them in execution order and callers
// may log them, but they are not persisted as entities.
type GateResult struct {
	// Gate is the gate name.
	Gate string `yaml:"gate" json:"gate"`

	// Passed reports whether the gate ultimately passed.
	Passed bool `yaml:"passed" json:"passed"`

	// Output is the captured combined output of the last attempt, or
	// the prompt/questions text for human and step_back gates.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	// Attempt is the 1-indexed attempt that produced this result.
	Attempt int `yaml:"attempt" json:"attempt"`

	// DurationMs is the wall time of the last attempt.
	DurationMs int64 `yaml:"duration_ms" json:"duration_ms"`

	// HumanRequired marks a human or step_back gate that paused the
	// run; distinct from an automated failure.
	HumanRequired bool `yaml:"human_required,omitempty" json:"human_required,omitempty"`
}
