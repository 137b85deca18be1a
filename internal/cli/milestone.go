package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddMilestoneCommand registers the milestone subcommand tree.
func AddMilestoneCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage milestones",
	}

	cmd.AddCommand(
		newMilestoneCreateCmd(flags),
		newMilestoneAddCmd(flags),
		newMilestoneListCmd(flags),
		newMilestoneShowCmd(flags),
	)

	root.AddCommand(cmd)
}

func newMilestoneCreateCmd(flags *GlobalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create SLUG TITLE",
		Short: "Create a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			m, err := domain.NewMilestone(args[0], args[1])
			if err != nil {
				return err
			}
			m.Description = description

			if err := a.store.CreateMilestone(ctx, m); err != nil {
				return err
			}

			state, err := a.store.LoadState(ctx)
			if err != nil {
				return err
			}
			state.AddMilestone(m.Slug)
			state.AppendHistory("", "milestone_created", m.Slug)
			if err := a.store.SaveState(ctx, state); err != nil {
				return err
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created milestone %s\n", tui.StyleBold.Render(m.Slug))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "milestone summary")
	return cmd
}

func newMilestoneAddCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add MILESTONE FEATURE",
		Short: "Add a feature to a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if _, err := a.store.LoadFeature(ctx, args[1]); err != nil {
				return err
			}

			m, err := a.store.LoadMilestone(ctx, args[0])
			if err != nil {
				return err
			}
			if err := m.AddFeature(args[1]); err != nil {
				return err
			}
			if err := a.store.SaveMilestone(ctx, m); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s (position %d)\n", args[1], m.Slug, len(m.Features))
			}
			return nil
		},
	}
}

func newMilestoneListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List milestones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			milestones, err := a.store.ListMilestones(cmd.Context())
			if err != nil {
				return err
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), milestones)
			}

			table := tui.NewTable(cmd.OutOrStdout(), []tui.TableColumn{
				{Name: "MILESTONE", Width: 24},
				{Name: "STATUS", Width: 10},
				{Name: "FEATURES", Width: 8},
				{Name: "TITLE", Width: 40},
			})
			table.WriteHeader()
			for _, m := range milestones {
				table.WriteRow(m.Slug, string(m.Status), fmt.Sprintf("%d", len(m.Features)), m.Title)
			}
			return nil
		},
	}
}

func newMilestoneShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Show a milestone and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			m, err := a.store.LoadMilestone(ctx, args[0])
			if err != nil {
				return err
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), m)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", tui.StyleBold.Render(m.Slug), m.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "  title: %s\n", m.Title)
			if m.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  description: %s\n", m.Description)
			}

			features, err := a.loadFeatureMap(ctx)
			if err != nil {
				return err
			}
			for position, slug := range m.Features {
				phase := "missing"
				if f, ok := features[slug]; ok {
					phase = f.Phase.String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %-24s %s\n", position+1, slug, phase)
			}
			return nil
		},
	}
}
