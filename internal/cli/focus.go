package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/focus"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddFocusCommand registers the focus command, which scans the whole
// project and prints the single most pressing action.
func AddFocusCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show the single next action across the project",
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
			milestones, err := a.loadMilestoneMap(ctx)
			if err != nil {
				return err
			}
			features, err := a.loadFeatureMap(ctx)
			if err != nil {
				return err
			}

			selector := focus.NewSelector(focus.WithLogger(a.logger))
			classification := selector.Select(&focus.Input{
				State:      state,
				Milestones: milestones,
				Features:   features,
				Config:     a.config,
			})
			if classification == nil {
				if flags.JSON() {
					return tui.WriteJSON(cmd.OutOrStdout(), nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.StyleMuted.Render("nothing actionable"))
				return nil
			}

			return printClassification(cmd.OutOrStdout(), flags, classification)
		},
	}

	root.AddCommand(cmd)
}
