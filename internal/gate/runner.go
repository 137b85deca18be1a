// Package gate executes post-action verification gates.
//
// Gates run sequentially in configured order. A shell gate spawns its
// command with a per-attempt timeout and retries on failure up to its
// configured budget; human and step_back gates are never auto-resolved
// and halt the run for a person. The first gate that ultimately fails
// stops the run: later gates never execute.
package gate

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// CommandRunner abstracts shell execution so tests can substitute a
// scripted implementation.
type CommandRunner interface {
	// Run executes command and returns its combined output. A non-nil
	// error marks the attempt failed; output is returned either way.
	Run(ctx context.Context, command string) (string, error)
}

// ShellCommandRunner executes commands through sh -c.
type ShellCommandRunner struct{}

// Run implements CommandRunner.
func (ShellCommandRunner) Run(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //#nosec G204 -- gate commands come from project config by design
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Compile-time check that ShellCommandRunner implements CommandRunner.
var _ CommandRunner = ShellCommandRunner{}

// Runner executes an ordered gate list.
type Runner struct {
	commands       CommandRunner
	defaultTimeout time.Duration
	logger         zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommandRunner substitutes the shell executor.
func WithCommandRunner(cr CommandRunner) Option {
	return func(r *Runner) { r.commands = cr }
}

// WithDefaultTimeout sets the per-attempt timeout applied when a gate
// does not carry its own.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Runner) { r.defaultTimeout = d }
}

// WithLogger sets the runner's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a gate runner with real shell execution and the
// stock default timeout unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		commands:       ShellCommandRunner{},
		defaultTimeout: 120 * time.Second,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes gates in order and returns every result produced, in
// execution order, even when the run stops early. The error is nil when
// all gates passed, a *HumanGateRequiredError when a human or step_back
// gate paused the run, and a *GateFailedError when an automated gate
// exhausted its retries.
func (r *Runner) Run(ctx context.Context, gates []domain.GateDefinition) ([]domain.GateResult, error) {
	results := make([]domain.GateResult, 0, len(gates))

	for _, gate := range gates {
		switch gate.Kind {
		case constants.GateKindShell:
			result, err := r.runShellGate(ctx, gate)
			results = append(results, result)
			if err != nil {
				return results, err
			}

		case constants.GateKindHuman, constants.GateKindStepBack:
			result := r.humanGateResult(gate)
			results = append(results, result)
			r.logger.Info().
				Str("gate", gate.Name).
				Str("kind", gate.Kind.String()).
				Msg("gate requires human action")
			return results, &sdlcerrors.HumanGateRequiredError{Gate: gate.Name}

		default:
			return results, sdlcerrors.Wrapf(sdlcerrors.ErrGateFailed, "gate %q has unknown kind %q", gate.Name, gate.Kind)
		}
	}

	return results, nil
}

// runShellGate runs one shell gate to completion: attempt 1 always
// runs, then up to MaxRetries additional attempts, each independently
// timed. The first passing attempt short-circuits the rest.
func (r *Runner) runShellGate(ctx context.Context, gate domain.GateDefinition) (domain.GateResult, error) {
	timeout := r.defaultTimeout
	if gate.TimeoutSeconds > 0 {
		timeout = time.Duration(gate.TimeoutSeconds) * time.Second
	}

	attempts := gate.MaxRetries + 1
	var result domain.GateResult

	for attempt := 1; attempt <= attempts; attempt++ {
		output, duration, err := r.runAttempt(ctx, gate.Command, timeout)

		result = domain.GateResult{
			Gate:       gate.Name,
			Passed:     err == nil,
			Output:     output,
			Attempt:    attempt,
			DurationMs: duration.Milliseconds(),
		}

		if err == nil {
			r.logger.Debug().
				Str("gate", gate.Name).
				Int("attempt", attempt).
				Dur("duration", duration).
				Msg("gate passed")
			return result, nil
		}

		r.logger.Warn().
			Str("gate", gate.Name).
			Int("attempt", attempt).
			Int("attempts_allowed", attempts).
			Err(err).
			Msg("gate attempt failed")

		// Give up immediately when the surrounding run is cancelled.
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	return result, &sdlcerrors.GateFailedError{Gate: gate.Name, Attempts: attempts}
}

// runAttempt executes one timed attempt.
func (r *Runner) runAttempt(ctx context.Context, command string, timeout time.Duration) (string, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	output, err := r.commands.Run(attemptCtx, command)
	duration := time.Since(start)

	if err == nil && attemptCtx.Err() != nil {
		err = sdlcerrors.Wrapf(sdlcerrors.ErrGateTimeout, "attempt exceeded %s", timeout)
	}
	return output, duration, err
}

// humanGateResult builds the paused-run result for a human or
// step_back gate. Output carries the prompt or questions so callers can
// surface them verbatim.
func (r *Runner) humanGateResult(gate domain.GateDefinition) domain.GateResult {
	output := gate.Prompt
	if gate.Kind == constants.GateKindStepBack && len(gate.Questions) > 0 {
		output = strings.Join(gate.Questions, "\n")
	}
	return domain.GateResult{
		Gate:          gate.Name,
		Passed:        false,
		Output:        output,
		Attempt:       1,
		HumanRequired: true,
	}
}
