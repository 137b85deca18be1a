package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/gate"
	"github.com/orchard9/sdlc/internal/tui"
)

// runReport is the machine-readable result of one run invocation.
type runReport struct {
	Classification *domain.Classification `json:"classification"`
	Transitioned   string                 `json:"transitioned,omitempty"`
	Gates          []domain.GateResult    `json:"gates,omitempty"`
}

// AddRunCommand registers the run command: classify a feature, dispatch
// the agent for the decided action, apply any phase transition, then
// execute the action's gates. The exit code reports the outcome: 0 all
// passed, 2 a gate failed, 3 a human gate paused the run.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run SLUG",
		Short: "Execute the next action for a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			return a.runFeature(cmd, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify and print the directive without executing")
	root.AddCommand(cmd)
}

func (a *app) runFeature(cmd *cobra.Command, slug string, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	classification, err := a.classifyFeature(ctx, slug)
	if err != nil {
		return err
	}

	if dryRun {
		return printClassification(out, a.flags, classification)
	}

	if !classification.Actionable() {
		if a.flags.JSON() {
			if err := tui.WriteJSON(out, runReport{Classification: classification}); err != nil {
				return err
			}
		} else if err := printClassification(out, a.flags, classification); err != nil {
			return err
		}
		return fmt.Errorf("%s: %w", classification.Action, sdlcerrors.ErrNotActionable)
	}

	if err := a.beginWork(ctx, classification); err != nil {
		return err
	}

	report := runReport{Classification: classification}
	runErr := a.executeDirective(ctx, cmd, classification, &report)

	event := "run_completed"
	if runErr != nil {
		event = "run_halted"
	}
	if endErr := a.endWork(ctx, slug, event, classification.Action.String()); endErr != nil && runErr == nil {
		runErr = endErr
	}

	if a.flags.JSON() {
		if jsonErr := tui.WriteJSON(out, report); jsonErr != nil && runErr == nil {
			runErr = jsonErr
		}
		return runErr
	}

	if printErr := printClassification(out, a.flags, classification); printErr != nil && runErr == nil {
		runErr = printErr
	}
	if report.Transitioned != "" {
		fmt.Fprintf(out, "transitioned to %s\n", report.Transitioned)
	}
	printGateResults(out, report.Gates)
	return runErr
}

// executeDirective performs the transition, the agent dispatch, and the
// gates for one classification, recording progress into report.
func (a *app) executeDirective(ctx context.Context, cmd *cobra.Command, c *domain.Classification, report *runReport) error {
	if c.TransitionTo != "" {
		if err := a.applyTransition(ctx, c); err != nil {
			return err
		}
		report.Transitioned = c.TransitionTo.String()
	}

	if a.config.Agent.Command != "" && c.IsHeavy {
		if err := a.dispatchAgent(ctx, cmd, c); err != nil {
			return err
		}
	}

	gates := a.config.GatesFor(c.Action)
	if len(gates) == 0 {
		return nil
	}

	runner := gate.NewRunner(
		gate.WithDefaultTimeout(time.Duration(a.config.Gates.DefaultTimeoutSeconds)*time.Second),
		gate.WithLogger(a.logger),
	)
	results, err := runner.Run(ctx, gates)
	report.Gates = results
	return err
}

// applyTransition moves the feature into the classification's target
// phase, enforcing the current phase's exit requirements.
func (a *app) applyTransition(ctx context.Context, c *domain.Classification) error {
	f, err := a.store.LoadFeature(ctx, c.Feature)
	if err != nil {
		return err
	}
	if err := f.Transition(c.TransitionTo, a.config.ExitRequirements(f.Phase)); err != nil {
		return err
	}
	return a.saveFeatureAndState(ctx, f, "phase_transition", c.TransitionTo.String())
}

// dispatchAgent runs the configured agent command with the directive
// document on stdin. A nonzero agent exit passes through unchanged so
// callers can distinguish agent failures from gate outcomes.
func (a *app) dispatchAgent(ctx context.Context, cmd *cobra.Command, c *domain.Classification) error {
	directive, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode directive: %w", err)
	}

	a.logger.Info().
		Str("feature", c.Feature).
		Str("action", c.Action.String()).
		Int("timeout_minutes", c.TimeoutMinutes).
		Msg("dispatching agent")

	agentCtx := ctx
	if c.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		agentCtx, cancel = context.WithTimeout(ctx, time.Duration(c.TimeoutMinutes)*time.Minute)
		defer cancel()
	}

	agent := exec.CommandContext(agentCtx, "sh", "-c", a.config.Agent.Command) //#nosec G204 -- agent command comes from project config by design
	agent.Stdin = strings.NewReader(string(directive))
	agent.Stdout = cmd.OutOrStdout()
	agent.Stderr = cmd.ErrOrStderr()

	if err := agent.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &sdlcerrors.AgentExitError{Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("agent dispatch failed: %w", err)
	}
	return nil
}

// beginWork records the dispatch in project state.
func (a *app) beginWork(ctx context.Context, c *domain.Classification) error {
	state, err := a.store.LoadState(ctx)
	if err != nil {
		return err
	}
	state.BeginWork(c.Feature, c.Action, c.TimeoutMinutes)
	state.AppendHistory(c.Feature, "run_started", c.Action.String())
	return a.store.SaveState(ctx, state)
}

// endWork clears the in-flight record and appends the outcome event.
func (a *app) endWork(ctx context.Context, slug, event, detail string) error {
	state, err := a.store.LoadState(ctx)
	if err != nil {
		return err
	}
	state.EndWork(slug)
	state.AppendHistory(slug, event, detail)
	return a.store.SaveState(ctx, state)
}

// printGateResults renders gate outcomes for humans.
func printGateResults(w io.Writer, results []domain.GateResult) {
	for _, result := range results {
		switch {
		case result.HumanRequired:
			fmt.Fprintf(w, "gate %s: %s\n", result.Gate, tui.StyleWarning.Render("awaiting human"))
			if result.Output != "" {
				fmt.Fprintf(w, "  %s\n", result.Output)
			}
		case result.Passed:
			fmt.Fprintf(w, "gate %s: %s (attempt %d)\n", result.Gate, tui.StyleSuccess.Render("passed"), result.Attempt)
		default:
			fmt.Fprintf(w, "gate %s: %s (attempt %d)\n", result.Gate, tui.StyleError.Render("failed"), result.Attempt)
			if result.Output != "" {
				fmt.Fprintf(w, "  %s\n", strings.TrimSpace(result.Output))
			}
		}
	}
}
