package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddCommentCommand registers the comment subcommand tree.
func AddCommentCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage a feature's comments",
	}

	cmd.AddCommand(
		newCommentAddCmd(flags),
		newCommentResolveCmd(flags),
		newCommentListCmd(flags),
	)

	root.AddCommand(cmd)
}

func newCommentAddCmd(flags *GlobalFlags) *cobra.Command {
	var (
		flag     string
		author   string
		task     string
		artifact string
	)

	cmd := &cobra.Command{
		Use:   "add SLUG BODY",
		Short: "Add a comment to a feature, task, or artifact",
		Long: `Attaches a comment to the feature, or to one task (--task) or one
artifact (--artifact). A --flag blocker comment halts the feature until
resolved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if task != "" && artifact != "" {
				return fmt.Errorf("--task and --artifact are mutually exclusive: %w", sdlcerrors.ErrInvalidFlag)
			}

			target := domain.CommentTarget{Kind: domain.TargetFeature}
			switch {
			case task != "":
				target = domain.CommentTarget{Kind: domain.TargetTask, TargetID: task}
			case artifact != "":
				target = domain.CommentTarget{Kind: domain.TargetArtifact, TargetID: artifact}
			}

			f, err := a.store.LoadFeature(ctx, args[0])
			if err != nil {
				return err
			}
			id, err := f.AddComment(constants.CommentFlag(flag), target, author, args[1])
			if err != nil {
				return err
			}
			if err := a.saveFeatureAndState(ctx, f, "comment_added", id); err != nil {
				return err
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&flag, "flag", "", "comment flag (blocker|question|decision|fyi)")
	cmd.Flags().StringVar(&author, "author", defaultAuthor(), "comment author")
	cmd.Flags().StringVar(&task, "task", "", "attach to a task id")
	cmd.Flags().StringVar(&artifact, "artifact", "", "attach to an artifact type")
	return cmd
}

func newCommentResolveCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve SLUG COMMENT",
		Short: "Resolve (remove) a comment",
		Args:  cobra.ExactArgs(2),
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
			if !f.ResolveComment(args[1]) {
				return fmt.Errorf("%s: %w", args[1], sdlcerrors.ErrCommentNotFound)
			}
			if err := a.saveFeatureAndState(ctx, f, "comment_resolved", args[1]); err != nil {
				return err
			}

			if !flags.JSON() {
				fmt.Fprintf(cmd.OutOrStdout(), "resolved %s\n", args[1])
			}
			return nil
		},
	}
}

func newCommentListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list SLUG",
		Short: "List a feature's comments",
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

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), f.Comments)
			}

			table := tui.NewTable(cmd.OutOrStdout(), []tui.TableColumn{
				{Name: "ID", Width: 5},
				{Name: "FLAG", Width: 9},
				{Name: "TARGET", Width: 16},
				{Name: "AUTHOR", Width: 12},
				{Name: "BODY", Width: 48},
			})
			table.WriteHeader()
			for _, comment := range f.Comments {
				target := string(comment.Target.Kind)
				if comment.Target.TargetID != "" {
					target += ":" + comment.Target.TargetID
				}
				table.WriteRow(comment.ID, string(comment.Flag), target, comment.Author, comment.Body)
			}
			return nil
		},
	}
}
