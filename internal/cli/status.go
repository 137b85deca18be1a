package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// statusReport is the machine-readable shape of the status command.
type statusReport struct {
	Project    string               `json:"project"`
	Features   int                  `json:"features"`
	Archived   int                  `json:"archived"`
	Released   int                  `json:"released"`
	Milestones []string             `json:"milestones,omitempty"`
	InFlight   []domain.WorkRecord  `json:"in_flight,omitempty"`
	Blocked    []domain.BlockRecord `json:"blocked,omitempty"`
}

// AddStatusCommand registers the status command, a project-wide
// overview of features, milestones, and in-flight work.
func AddStatusCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a project overview",
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
			features, err := a.store.ListFeatures(ctx)
			if err != nil {
				return err
			}

			report := statusReport{
				Project:    state.Project,
				Features:   len(features),
				Milestones: state.Milestones,
				InFlight:   state.InFlight,
				Blocked:    state.Blocked,
			}
			for _, f := range features {
				if f.Archived {
					report.Archived++
				}
				if f.Phase == constants.PhaseReleased {
					report.Released++
				}
			}

			if flags.JSON() {
				return tui.WriteJSON(cmd.OutOrStdout(), report)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %d features, %d released, %d archived\n",
				tui.StyleBold.Render(state.Project), report.Features, report.Released, report.Archived)

			if len(state.InFlight) > 0 {
				fmt.Fprintln(w, tui.StyleHeading.Render("in flight"))
				for _, work := range state.InFlight {
					fmt.Fprintf(w, "  %-24s %-20s since %s\n",
						work.Feature, work.Action, work.StartedAt.Format(time.RFC3339))
				}
			}
			if len(state.Blocked) > 0 {
				fmt.Fprintln(w, tui.StyleHeading.Render("blocked"))
				for _, block := range state.Blocked {
					fmt.Fprintf(w, "  %-24s %s\n", block.Feature, tui.StyleError.Render(block.Reason))
				}
			}

			table := tui.NewTable(w, []tui.TableColumn{
				{Name: "FEATURE", Width: 24},
				{Name: "PHASE", Width: 16},
				{Name: "TASKS", Width: 7},
				{Name: "TITLE", Width: 40},
			})
			table.WriteHeader()
			for _, f := range features {
				if f.Archived {
					continue
				}
				done := 0
				for _, t := range f.Tasks {
					if t.Status == constants.TaskStatusCompleted {
						done++
					}
				}
				table.WriteRow(f.Slug, f.Phase.String(),
					fmt.Sprintf("%d/%d", done, len(f.Tasks)), f.Title)
			}
			return nil
		},
	}

	root.AddCommand(cmd)
}
