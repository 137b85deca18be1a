// Package tui renders the engine's human-readable terminal output.
//
// All colors are AdaptiveColor pairs so output stays legible on light
// and dark terminals. Call CheckNoColor at command start to honor the
// NO_COLOR convention; --json output bypasses this package entirely.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

//nolint:gochecknoglobals // Intentional package-level styling API
var (
	// ColorPrimary is blue, used for phases and identifiers.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for passed gates and released work.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for pending approvals and warnings.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for blockers and failed gates.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for terminal states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold renders bold text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleHeading renders section headings.
	StyleHeading = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// StyleSuccess renders success text.
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)

	// StyleWarning renders attention text.
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	// StyleError renders failure text.
	StyleError = lipgloss.NewStyle().Foreground(ColorError)

	// StyleMuted renders secondary text.
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
)

// CheckNoColor disables styling when NO_COLOR is set or the terminal is
// dumb.
func CheckNoColor() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// PhaseStyle returns the style for a pipeline phase.
func PhaseStyle(phase constants.Phase) lipgloss.Style {
	switch phase {
	case constants.PhaseReleased:
		return StyleSuccess
	case constants.PhaseImplementation, constants.PhaseReview, constants.PhaseAudit, constants.PhaseQA:
		return StyleHeading
	case constants.PhaseMerge:
		return StyleWarning
	default:
		return StyleMuted
	}
}

// ActionStyle returns the style for a classifier action.
func ActionStyle(action constants.Action) lipgloss.Style {
	switch action {
	case constants.ActionResolveBlocker:
		return StyleError
	case constants.ActionWaitForApproval, constants.ActionUnblockDependency, constants.ActionMerge:
		return StyleWarning
	case constants.ActionDone:
		return StyleMuted
	default:
		return StyleSuccess
	}
}

// SeverityStyle returns the style for a gap severity.
func SeverityStyle(severity domain.GapSeverity) lipgloss.Style {
	switch severity {
	case domain.GapBlocker:
		return StyleError
	case domain.GapWarning:
		return StyleWarning
	default:
		return StyleMuted
	}
}

// GateStyle returns the style for a gate result.
func GateStyle(result domain.GateResult) lipgloss.Style {
	switch {
	case result.Passed:
		return StyleSuccess
	case result.HumanRequired:
		return StyleWarning
	default:
		return StyleError
	}
}
