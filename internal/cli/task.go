package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddTaskCommand registers the task subcommand tree.
func AddTaskCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage a feature's tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(flags),
		newTaskStartCmd(flags),
		newTaskCompleteCmd(flags),
		newTaskBlockCmd(flags),
	)

	root.AddCommand(cmd)
}

// mutateTasks loads the feature, applies mutate, and persists.
func mutateTasks(cmd *cobra.Command, flags *GlobalFlags, slug, event string, mutate func(*domain.Feature) (string, error)) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	f, err := a.store.LoadFeature(ctx, slug)
	if err != nil {
		return err
	}

	detail, err := mutate(f)
	if err != nil {
		return err
	}
	f.Touch()

	if err := a.saveFeatureAndState(ctx, f, event, detail); err != nil {
		return err
	}

	a.logger.Info().Str("feature", f.Slug).Str("task", detail).Msg(event)
	if flags.JSON() {
		return tui.WriteJSON(cmd.OutOrStdout(), f.Tasks)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", event, detail)
	return nil
}

func newTaskAddCmd(flags *GlobalFlags) *cobra.Command {
	var dependsOn []string

	cmd := &cobra.Command{
		Use:   "add SLUG TITLE",
		Short: "Add a task to a feature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTasks(cmd, flags, args[0], "task_added", func(f *domain.Feature) (string, error) {
				return f.AddTask(args[1], dependsOn)
			})
		},
	}

	cmd.Flags().StringSliceVar(&dependsOn, "after", nil, "task ids this task depends on")
	return cmd
}

func newTaskStartCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start SLUG TASK",
		Short: "Mark a task in progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTasks(cmd, flags, args[0], "task_started", func(f *domain.Feature) (string, error) {
				return args[1], f.StartTask(args[1])
			})
		},
	}
}

func newTaskCompleteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete SLUG TASK",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTasks(cmd, flags, args[0], "task_completed", func(f *domain.Feature) (string, error) {
				return args[1], f.CompleteTask(args[1])
			})
		},
	}
}

func newTaskBlockCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "block SLUG TASK REASON",
		Short: "Mark a task blocked",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTasks(cmd, flags, args[0], "task_blocked", func(f *domain.Feature) (string, error) {
				return args[1], f.BlockTask(args[1], args[2])
			})
		},
	}
}
