package config

import (
	"github.com/spf13/viper"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// Default values applied beneath project config and environment.
const (
	// DefaultGateTimeoutSeconds bounds a gate attempt with no timeout
	// of its own.
	DefaultGateTimeoutSeconds = 120

	// DefaultHeavyTimeoutMinutes is the advisory timeout for heavy
	// classifications.
	DefaultHeavyTimeoutMinutes = 30

	// DefaultAgentCommand is the subprocess run dispatches directives to.
	DefaultAgentCommand = "sdlc-agent"

	// DefaultAuthor is the approval identity when none is configured.
	DefaultAuthor = "sdlc"
)

// DefaultConfig returns the built-in configuration: the documented
// pipeline's exit-requirement table and a human merge gate.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Author: DefaultAuthor,
		},
		Agent: AgentConfig{
			Command:             DefaultAgentCommand,
			HeavyTimeoutMinutes: DefaultHeavyTimeoutMinutes,
		},
		Gates: GatesConfig{
			DefaultTimeoutSeconds: DefaultGateTimeoutSeconds,
			PerAction: map[string][]domain.GateDefinition{
				constants.ActionMerge.String(): {
					{
						Name:   "confirm-merge",
						Kind:   constants.GateKindHuman,
						Prompt: "Confirm the feature branch has been merged.",
					},
				},
			},
		},
		Phases: PhasesConfig{
			ExitRequirements: defaultExitRequirements(),
		},
	}
}

// defaultExitRequirements is the canonical phase-exit table. Phases
// absent from the map (ready, implementation, merge) exit through
// explicit actions rather than artifact approval.
func defaultExitRequirements() map[string][]string {
	return map[string][]string{
		constants.PhaseDraft.String():     {constants.ArtifactSpec.String()},
		constants.PhaseSpecified.String(): {constants.ArtifactDesign.String()},
		constants.PhasePlanned.String():   {constants.ArtifactTasks.String(), constants.ArtifactQAPlan.String()},
		constants.PhaseReview.String():    {constants.ArtifactReview.String()},
		constants.PhaseAudit.String():     {constants.ArtifactAudit.String()},
		constants.PhaseQA.String():        {constants.ArtifactQAResults.String()},
	}
}

// setDefaults registers built-in defaults on a viper instance so that
// project config and environment only override what they name.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.author", DefaultAuthor)
	v.SetDefault("agent.command", DefaultAgentCommand)
	v.SetDefault("agent.heavy_timeout_minutes", DefaultHeavyTimeoutMinutes)
	v.SetDefault("gates.default_timeout_seconds", DefaultGateTimeoutSeconds)
	v.SetDefault("phases.exit_requirements", defaultExitRequirements())
}
