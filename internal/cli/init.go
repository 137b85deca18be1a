package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// AddInitCommand registers the init subcommand.
func AddInitCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize the current directory as an sdlc project",
		Long: `Creates the project-local .sdlc directory with the initial state
document, feature and milestone directories, and the log directory.
The project name defaults to the directory name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newUninitializedApp(flags)
			if err != nil {
				return err
			}

			name := filepath.Base(a.store.Root())
			if len(args) == 1 {
				name = args[0]
			}

			if err := a.store.Init(cmd.Context(), domain.NewState(name)); err != nil {
				return err
			}

			a.logger.Info().Str("project", name).Msg("project initialized")
			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), map[string]string{
					"project": name,
					"path":    filepath.Join(a.store.Root(), constants.ProjectDir),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized project %s in %s\n",
				tui.StyleBold.Render(name), constants.ProjectDir)
			return nil
		},
	}

	root.AddCommand(cmd)
}
