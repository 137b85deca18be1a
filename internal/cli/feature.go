package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddFeatureCommand registers the feature subcommand tree.
func AddFeatureCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Manage features",
	}

	cmd.AddCommand(
		newFeatureCreateCmd(flags),
		newFeatureShowCmd(flags),
		newFeatureListCmd(flags),
		newFeatureTransitionCmd(flags),
		newFeatureArchiveCmd(flags),
		newFeatureDependCmd(flags),
		newFeatureBlockCmd(flags),
		newFeatureUnblockCmd(flags),
	)

	root.AddCommand(cmd)
}

func newFeatureCreateCmd(flags *GlobalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create SLUG TITLE",
		Short: "Create a feature in the draft phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			f, err := domain.NewFeature(args[0], args[1])
			if err != nil {
				return err
			}
			f.Description = description

			if err := a.store.CreateFeature(ctx, f); err != nil {
				return err
			}

			state, err := a.store.LoadState(ctx)
			if err != nil {
				return err
			}
			state.AddActiveFeature(f.Slug)
			state.AppendHistory(f.Slug, "feature_created", f.Title)
			if err := a.store.SaveState(ctx, state); err != nil {
				return err
			}

			a.logger.Info().Str("feature", f.Slug).Msg("feature created")
			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s in %s\n", tui.StyleBold.Render(f.Slug), f.Phase)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "longer feature summary")
	return cmd
}

func newFeatureShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Show a feature's full state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			f, err := a.store.LoadFeature(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printFeature(cmd.OutOrStdout(), flags, f)
		},
	}
}

func newFeatureListCmd(flags *GlobalFlags) *cobra.Command {
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			features, err := a.store.ListFeatures(cmd.Context())
			if err != nil {
				return err
			}

			visible := features[:0]
			for _, f := range features {
				if includeArchived || !f.Archived {
					visible = append(visible, f)
				}
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), visible)
			}

			table := tui.NewTable(cmd.OutOrStdout(), []tui.TableColumn{
				{Name: "FEATURE", Width: 24},
				{Name: "PHASE", Width: 14},
				{Name: "TASKS", Width: 6},
				{Name: "TITLE", Width: 40},
			})
			table.WriteHeader()
			for _, f := range visible {
				table.WriteRow(f.Slug, f.Phase.String(), fmt.Sprintf("%d", len(f.Tasks)), f.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeArchived, "archived", false, "include archived features")
	return cmd
}

func newFeatureTransitionCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "transition SLUG PHASE",
		Short: "Transition a feature to the next phase",
		Long: `Moves a feature to the named phase. Only the immediate next phase in
the pipeline is accepted, and every artifact required to exit the
current phase must be approved, passed, or waived.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			target, ok := constants.ParsePhase(args[1])
			if !ok {
				return fmt.Errorf("%w: %q", sdlcerrors.ErrInvalidPhase, args[1])
			}

			f, err := a.store.LoadFeature(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.Transition(target, a.config.ExitRequirements(f.Phase)); err != nil {
				return err
			}
			if err := a.saveFeatureAndState(ctx, f, "phase_transition", string(target)); err != nil {
				return err
			}

			a.logger.Info().Str("feature", f.Slug).Str("phase", target.String()).Msg("feature transitioned")
			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", f.Slug, tui.PhaseStyle(f.Phase).Render(f.Phase.String()))
			return nil
		},
	}
}

func newFeatureArchiveCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive SLUG",
		Short: "Archive a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			f, err := a.store.LoadFeature(ctx, args[0])
			if err != nil {
				return err
			}
			f.Archive()
			if err := a.saveFeatureAndState(ctx, f, "feature_archived", ""); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", f.Slug)
			}
			return nil
		},
	}
}

func newFeatureDependCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "depend SLUG DEPENDENCY",
		Short: "Declare that a feature depends on another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// The dependency must exist; a typo here would silently gate
			// the feature forever.
			if _, err := a.store.LoadFeature(ctx, args[1]); err != nil {
				return err
			}

			f, err := a.store.LoadFeature(ctx, args[0])
			if err != nil {
				return err
			}
			if err := f.AddDependency(args[1]); err != nil {
				return err
			}
			if err := a.saveFeatureAndState(ctx, f, "dependency_added", args[1]); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s\n", f.Slug, args[1])
			}
			return nil
		},
	}
}

func newFeatureBlockCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "block SLUG REASON",
		Short: "Record a project-level block on a feature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if _, err := a.store.LoadFeature(ctx, args[0]); err != nil {
				return err
			}

			state, err := a.store.LoadState(ctx)
			if err != nil {
				return err
			}
			state.Block(args[0], args[1])
			state.AppendHistory(args[0], "feature_blocked", args[1])
			if err := a.store.SaveState(ctx, state); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "blocked %s: %s\n", args[0], args[1])
			}
			return nil
		},
	}
}

func newFeatureUnblockCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock SLUG",
		Short: "Clear a project-level block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			state, err := a.store.LoadState(ctx)
			if err != nil {
				return err
			}
			if !state.Unblock(args[0]) {
				return fmt.Errorf("feature %q has no project-level block", args[0])
			}
			state.AppendHistory(args[0], "feature_unblocked", "")
			if err := a.store.SaveState(ctx, state); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "unblocked %s\n", args[0])
			}
			return nil
		},
	}
}

// autoAdvance runs the auto-transition check after an artifact
// mutation and reports any advance.
func (a *app) autoAdvance(f *domain.Feature) bool {
	_, advanced := f.TryAutoTransition(a.config.ExitRequirements)
	return advanced
}
