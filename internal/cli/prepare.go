package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/tui"
	"github.com/orchard9/sdlc/internal/wave"
)

// AddPrepareCommand registers the prepare command, which surveys a
// milestone and produces a wave plan.
func AddPrepareCommand(root *cobra.Command, flags *GlobalFlags) {
	var milestoneSlug string

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Survey a milestone and plan execution waves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			state, err := a.store.LoadState(ctx)
			if err != nil {
				return err
			}

			slug := milestoneSlug
			if slug == "" {
				if len(state.Milestones) == 0 {
					return fmt.Errorf("%w: create one or pass --milestone", sdlcerrors.ErrNoMilestone)
				}
				slug = state.Milestones[0]
			}

			milestone, err := a.store.LoadMilestone(ctx, slug)
			if err != nil {
				return err
			}
			features, err := a.loadFeatureMap(ctx)
			if err != nil {
				return err
			}

			planner := wave.NewPlanner(wave.WithLogger(a.logger))
			plan, err := planner.Plan(ctx, &wave.Input{
				Milestone: milestone,
				Features:  features,
				State:     state,
				Config:    a.config,
			})
			if err != nil {
				return err
			}

			if len(plan.Waves) > 0 {
				if err := a.store.SaveWavePlan(ctx, plan); err != nil {
					return err
				}
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), plan)
			}
			printWavePlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	cmd.Flags().StringVarP(&milestoneSlug, "milestone", "m", "", "milestone to plan (default: first in priority order)")
	root.AddCommand(cmd)
}

func printWavePlan(w io.Writer, plan *domain.WavePlan) {
	fmt.Fprintf(w, "%s  project phase: %s\n",
		tui.StyleBold.Render(plan.Milestone), string(plan.ProjectPhase))

	for _, batch := range plan.Waves {
		fmt.Fprintln(w, tui.StyleHeading.Render(fmt.Sprintf("wave %d", batch.Number)))
		for _, item := range batch.Items {
			line := fmt.Sprintf("  %-24s %-16s %s", item.Feature, item.Phase, item.Action)
			if len(item.BlockedBy) > 0 {
				line += tui.StyleMuted.Render(fmt.Sprintf("  waits on %v", item.BlockedBy))
			}
			if item.NeedsWorktree {
				line += tui.StyleMuted.Render("  [worktree]")
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(plan.Blocked) > 0 {
		fmt.Fprintln(w, tui.StyleHeading.Render("blocked"))
		for _, b := range plan.Blocked {
			fmt.Fprintf(w, "  %-24s %s\n", b.Feature, tui.StyleError.Render(b.Reason))
		}
	}

	if len(plan.Gaps) > 0 {
		fmt.Fprintln(w, tui.StyleHeading.Render("gaps"))
		for _, gap := range plan.Gaps {
			label := tui.SeverityStyle(gap.Severity).Render(string(gap.Severity))
			if gap.Feature != "" {
				fmt.Fprintf(w, "  %-8s %s: %s\n", label, gap.Feature, gap.Message)
			} else {
				fmt.Fprintf(w, "  %-8s %s\n", label, gap.Message)
			}
		}
	}

	if len(plan.NextCommands) > 0 {
		fmt.Fprintln(w, tui.StyleHeading.Render("next"))
		for _, command := range plan.NextCommands {
			fmt.Fprintf(w, "  %s\n", tui.StyleMuted.Render(command))
		}
	}
}
