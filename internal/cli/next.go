package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddNextCommand registers the next command, which classifies features
// and prints the recommended action without executing it. A single
// feature is named positionally or with --for; with neither, every
// active feature is classified.
func AddNextCommand(root *cobra.Command, flags *GlobalFlags) {
	var forSlug string

	cmd := &cobra.Command{
		Use:   "next [SLUG]",
		Short: "Show the next action for a feature",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}

			slug := forSlug
			if len(args) == 1 {
				if slug != "" && slug != args[0] {
					return fmt.Errorf("conflicting feature arguments %q and --for %q", args[0], slug)
				}
				slug = args[0]
			}

			if slug != "" {
				classification, err := a.classifyFeature(cmd.Context(), slug)
				if err != nil {
					return err
				}
				return printClassification(cmd.OutOrStdout(), flags, classification)
			}
			return a.classifyActiveFeatures(cmd)
		},
	}

	cmd.Flags().StringVar(&forSlug, "for", "", "feature to classify")
	root.AddCommand(cmd)
}

// classifyActiveFeatures classifies every active feature in stored
// order and prints each directive.
func (a *app) classifyActiveFeatures(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	state, err := a.store.LoadState(ctx)
	if err != nil {
		return err
	}

	classifications := make([]*domain.Classification, 0, len(state.ActiveFeatures))
	for _, slug := range state.ActiveFeatures {
		classification, err := a.classifyFeature(ctx, slug)
		if err != nil {
			return err
		}
		classifications = append(classifications, classification)
	}

	if a.flags.JSON() {
		return tui.WriteJSON(out, classifications)
	}
	if len(classifications) == 0 {
		fmt.Fprintln(out, tui.StyleMuted.Render("no active features"))
		return nil
	}
	for i, classification := range classifications {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printClassification(out, a.flags, classification); err != nil {
			return err
		}
	}
	return nil
}
