package cli

import (
	"fmt"
	"io"

	"github.com/orchard9/sdlc/internal/domain"
	"github.com/orchard9/sdlc/internal/tui"
)

// printClassification renders a directive for humans or machines.
func printClassification(w io.Writer, flags *GlobalFlags, c *domain.Classification) error {
	if flags.JSON() {
		return tui.WriteJSON(w, c)
	}

	header := fmt.Sprintf("%s  %s", tui.StyleBold.Render(c.Feature), tui.PhaseStyle(c.Phase).Render(c.Phase.String()))
	if c.Milestone != nil {
		header += tui.StyleMuted.Render(fmt.Sprintf("  [%s %d/%d]", c.Milestone.Slug, c.Milestone.Position, c.Milestone.Total))
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "  action:  %s\n", tui.ActionStyle(c.Action).Render(c.Action.String()))
	fmt.Fprintf(w, "  reason:  %s\n", c.Message)
	if c.TaskID != "" {
		fmt.Fprintf(w, "  task:    %s\n", c.TaskID)
	}
	if c.TransitionTo != "" {
		fmt.Fprintf(w, "  then:    transition to %s\n", c.TransitionTo)
	}
	if c.OutputPath != "" {
		fmt.Fprintf(w, "  writes:  %s\n", c.OutputPath)
	}
	if c.NextCommand != "" {
		fmt.Fprintf(w, "  next:    %s\n", tui.StyleMuted.Render(c.NextCommand))
	}
	return nil
}

// printFeature renders one feature's full detail.
func printFeature(w io.Writer, flags *GlobalFlags, f *domain.Feature) error {
	if flags.JSON() {
		return tui.WriteJSON(w, f)
	}

	fmt.Fprintf(w, "%s  %s\n", tui.StyleBold.Render(f.Slug), tui.PhaseStyle(f.Phase).Render(f.Phase.String()))
	fmt.Fprintf(w, "  title: %s\n", f.Title)
	if f.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", f.Description)
	}
	if f.Archived {
		fmt.Fprintln(w, tui.StyleMuted.Render("  archived"))
	}
	if len(f.Dependencies) > 0 {
		fmt.Fprintf(w, "  depends on: %v\n", f.Dependencies)
	}

	fmt.Fprintln(w, tui.StyleHeading.Render("  artifacts"))
	for _, artifact := range f.Artifacts {
		fmt.Fprintf(w, "    %-12s %s\n", artifact.Type, artifact.Status)
	}

	if len(f.Tasks) > 0 {
		fmt.Fprintln(w, tui.StyleHeading.Render("  tasks"))
		for _, task := range f.Tasks {
			line := fmt.Sprintf("    %-4s %-12s %s", task.ID, task.Status, task.Title)
			if len(task.DependsOn) > 0 {
				line += tui.StyleMuted.Render(fmt.Sprintf("  (after %v)", task.DependsOn))
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(f.Comments) > 0 {
		fmt.Fprintln(w, tui.StyleHeading.Render("  comments"))
		for _, comment := range f.Comments {
			flag := ""
			if comment.Flag != "" {
				flag = fmt.Sprintf("[%s] ", comment.Flag)
			}
			fmt.Fprintf(w, "    %-4s %s%s (%s)\n", comment.ID, flag, comment.Body, comment.Author)
		}
	}
	return nil
}

// reportAutoTransition announces an automatic phase advance.
func reportAutoTransition(w io.Writer, flags *GlobalFlags, f *domain.Feature, advanced bool) {
	if !advanced || flags.JSON() {
		return
	}
	fmt.Fprintf(w, "%s advanced to %s\n", f.Slug, tui.PhaseStyle(f.Phase).Render(f.Phase.String()))
}
