package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddArtifactCommand registers the artifact subcommand tree. Every
// mutation re-runs the auto-transition check so a feature advances the
// moment its exit criteria are met.
func AddArtifactCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage a feature's artifacts",
	}

	cmd.AddCommand(
		newArtifactDraftCmd(flags),
		newArtifactApproveCmd(flags),
		newArtifactRejectCmd(flags),
		newArtifactWaiveCmd(flags),
		newArtifactPassCmd(flags),
		newArtifactFailCmd(flags),
	)

	root.AddCommand(cmd)
}

// mutateArtifact loads feature and artifact, applies mutate, persists,
// and reports any automatic phase advance.
func mutateArtifact(cmd *cobra.Command, flags *GlobalFlags, slug, artifactName, event string, mutate func(*domain.Artifact)) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	artifactType, ok := constants.ParseArtifactType(artifactName)
	if !ok {
		return fmt.Errorf("%s: %w", artifactName, sdlcerrors.ErrArtifactUnknown)
	}

	f, err := a.store.LoadFeature(ctx, slug)
	if err != nil {
		return err
	}
	artifact := f.Artifact(artifactType)
	if artifact == nil {
		return fmt.Errorf("%s: %w", artifactName, sdlcerrors.ErrArtifactUnknown)
	}

	mutate(artifact)
	f.Touch()
	advanced := a.autoAdvance(f)

	if err := a.saveFeatureAndState(ctx, f, event, string(artifactType)); err != nil {
		return err
	}

	a.logger.Info().
		Str("feature", f.Slug).
		Str("artifact", artifactType.String()).
		Str("status", string(artifact.Status)).
		Bool("advanced", advanced).
		Msg("artifact updated")

	if flags.JSON() {
		return tui.WriteJSON(cmd.OutOrStdout(), map[string]any{
			"feature":  f.Slug,
			"artifact": artifactType,
			"status":   artifact.Status,
			"phase":    f.Phase,
			"advanced": advanced,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s is now %s\n", f.Slug, artifactType, artifact.Status)
	reportAutoTransition(cmd.OutOrStdout(), flags, f, advanced)
	return nil
}

func newArtifactDraftCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "draft SLUG TYPE PATH",
		Short: "Record a drafted artifact document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_drafted", func(artifact *domain.Artifact) {
				artifact.MarkDraft(args[2])
			})
		},
	}
}

func newArtifactApproveCmd(flags *GlobalFlags) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "approve SLUG TYPE",
		Short: "Approve a drafted artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_approved", func(artifact *domain.Artifact) {
				artifact.Approve(by)
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", defaultAuthor(), "approver identity")
	return cmd
}

func newArtifactRejectCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reject SLUG TYPE REASON",
		Short: "Reject an artifact with a reason",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_rejected", func(artifact *domain.Artifact) {
				artifact.Reject(args[2])
			})
		},
	}
}

func newArtifactWaiveCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "waive SLUG TYPE REASON",
		Short: "Waive an artifact requirement",
		Long: `Marks an artifact as waived so it satisfies phase exit without ever
being approved. The reason is recorded; use sparingly.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_waived", func(artifact *domain.Artifact) {
				artifact.Waive(args[2])
			})
		},
	}
}

func newArtifactPassCmd(flags *GlobalFlags) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "pass SLUG TYPE",
		Short: "Mark a verification artifact as passed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_passed", func(artifact *domain.Artifact) {
				artifact.MarkPassed(by)
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", defaultAuthor(), "verifier identity")
	return cmd
}

func newArtifactFailCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fail SLUG TYPE REASON",
		Short: "Mark a verification artifact as failed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateArtifact(cmd, flags, args[0], args[1], "artifact_failed", func(artifact *domain.Artifact) {
				artifact.MarkFailed(args[2])
			})
		},
	}
}
