// Package config provides configuration management for the sdlc engine
// with layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. Environment variables (SDLC_* prefix)
//  2. Project config (.sdlc/config.yaml)
//  3. Built-in defaults
//
// The config supplies what spec-by-convention cannot: per-action gate
// lists, the per-phase artifact exit requirements, the agent command
// that heavy actions dispatch to, and timeout defaults.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// and internal/domain, but MUST NOT import other internal packages.
package config

import (
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// Config is the root configuration structure for the sdlc engine.
type Config struct {
	// Project contains project-level settings.
	Project ProjectConfig `yaml:"project" mapstructure:"project"`

	// Agent contains settings for the action-dispatch subprocess.
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`

	// Gates contains gate execution settings and per-action gate lists.
	Gates GatesConfig `yaml:"gates" mapstructure:"gates"`

	// Phases contains the per-phase artifact exit requirements.
	Phases PhasesConfig `yaml:"phases" mapstructure:"phases"`
}

// ProjectConfig contains project-level settings.
type ProjectConfig struct {
	// Name is the project name recorded in the State document.
	Name string `yaml:"name" mapstructure:"name"`

	// Author is the identity stamped on approvals when no explicit
	// --by flag is given.
	Author string `yaml:"author" mapstructure:"author"`
}

// AgentConfig contains settings for the subprocess that heavy actions
// dispatch to. The engine treats the agent purely as "the thing run
// invokes"; it is not implemented here.
type AgentConfig struct {
	// Command is the shell command the run command executes for a
	// directive. The directive document is passed on stdin.
	Command string `yaml:"command" mapstructure:"command"`

	// HeavyTimeoutMinutes is the advisory timeout carried by heavy
	// classifications.
	HeavyTimeoutMinutes int `yaml:"heavy_timeout_minutes" mapstructure:"heavy_timeout_minutes"`
}

// GatesConfig contains gate execution settings.
type GatesConfig struct {
	// DefaultTimeoutSeconds bounds a gate attempt when the gate
	// definition gives no timeout of its own.
	DefaultTimeoutSeconds int `yaml:"default_timeout_seconds" mapstructure:"default_timeout_seconds"`

	// PerAction maps classifier action names to the ordered gate list
	// run after that action completes.
	PerAction map[string][]domain.GateDefinition `yaml:"per_action" mapstructure:"per_action"`
}

// PhasesConfig contains the per-phase artifact exit requirements.
type PhasesConfig struct {
	// ExitRequirements maps phase names to the artifact types that must
	// be approved (or waived) to exit the phase. Phases absent from the
	// map require nothing.
	ExitRequirements map[string][]string `yaml:"exit_requirements" mapstructure:"exit_requirements"`
}

// GatesFor returns the configured gate list for an action, or nil.
func (c *Config) GatesFor(action constants.Action) []domain.GateDefinition {
	if c.Gates.PerAction == nil {
		return nil
	}
	return c.Gates.PerAction[action.String()]
}

// ExitRequirements returns the artifact types required to exit phase.
// Unknown artifact names in the config are skipped; Validate rejects
// them up front.
func (c *Config) ExitRequirements(phase constants.Phase) []constants.ArtifactType {
	names := c.Phases.ExitRequirements[phase.String()]
	if len(names) == 0 {
		return nil
	}
	out := make([]constants.ArtifactType, 0, len(names))
	for _, n := range names {
		if t, ok := constants.ParseArtifactType(n); ok {
			out = append(out, t)
		}
	}
	return out
}
