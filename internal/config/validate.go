package config

import (
	"fmt"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/errors"
)

// Validate checks a loaded configuration for values the engine cannot
// operate with. Validation failures name the offending key.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config %w", errors.ErrEmptyValue)
	}
	if cfg.Gates.DefaultTimeoutSeconds <= 0 {
		return fmt.Errorf("gates.default_timeout_seconds must be positive, got %d", cfg.Gates.DefaultTimeoutSeconds)
	}
	if cfg.Agent.HeavyTimeoutMinutes <= 0 {
		return fmt.Errorf("agent.heavy_timeout_minutes must be positive, got %d", cfg.Agent.HeavyTimeoutMinutes)
	}

	for phase, artifacts := range cfg.Phases.ExitRequirements {
		if _, ok := constants.ParsePhase(phase); !ok {
			return fmt.Errorf("%w: phases.exit_requirements key %q", errors.ErrInvalidPhase, phase)
		}
		for _, a := range artifacts {
			if _, ok := constants.ParseArtifactType(a); !ok {
				return fmt.Errorf("%w: %q in phases.exit_requirements.%s", errors.ErrArtifactUnknown, a, phase)
			}
		}
	}

	for action, gates := range cfg.Gates.PerAction {
		for i, g := range gates {
			if g.Name == "" {
				return fmt.Errorf("gates.per_action.%s[%d]: name %w", action, i, errors.ErrEmptyValue)
			}
			switch g.Kind {
			case constants.GateKindShell:
				if g.Command == "" {
					return fmt.Errorf("gates.per_action.%s[%d]: shell gate %q needs a command", action, i, g.Name)
				}
			case constants.GateKindHuman, constants.GateKindStepBack:
				// No command; resolved by a person.
			default:
				return fmt.Errorf("gates.per_action.%s[%d]: unknown gate kind %q", action, i, g.Kind)
			}
			if g.MaxRetries < 0 {
				return fmt.Errorf("gates.per_action.%s[%d]: max_retries cannot be negative", action, i)
			}
			if g.TimeoutSeconds < 0 {
				return fmt.Errorf("gates.per_action.%s[%d]: timeout_seconds cannot be negative", action, i)
			}
		}
	}
	return nil
}
