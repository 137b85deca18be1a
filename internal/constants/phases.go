// Package constants defines the closed vocabularies of the sdlc engine:
// lifecycle phases, artifact types and statuses, task statuses, comment
// flags, gate kinds, classifier actions, and on-disk path fragments.
//
// This package MUST NOT import any other internal packages.
package constants

// Phase represents one stage of the fixed feature lifecycle.
// Phase values use snake_case for YAML serialization compatibility.
type Phase string

// Phase constants define the fixed pipeline every feature moves through:
//
//	Draft → Specified → Planned → Ready → Implementation →
//	Review → Audit → QA → Merge → Released
//
// Transitions are single-step forward only; exit criteria per phase are
// supplied by configuration (config.PhaseExitRequirements).
const (
	// PhaseDraft is the initial phase of every new feature.
	PhaseDraft Phase = "draft"

	// PhaseSpecified indicates the spec artifact has been approved.
	PhaseSpecified Phase = "specified"

	// PhasePlanned indicates the design artifact has been approved.
	PhasePlanned Phase = "planned"

	// PhaseReady indicates tasks and qa_plan are approved and the
	// feature is eligible for wave scheduling.
	PhaseReady Phase = "ready"

	// PhaseImplementation indicates tasks are being worked through.
	PhaseImplementation Phase = "implementation"

	// PhaseReview indicates implementation is complete and a review
	// artifact is expected.
	PhaseReview Phase = "review"

	// PhaseAudit indicates the review has been approved and an audit
	// artifact is expected.
	PhaseAudit Phase = "audit"

	// PhaseQA indicates the audit has passed and qa_results are expected.
	PhaseQA Phase = "qa"

	// PhaseMerge indicates QA has passed and the feature awaits a
	// human-gated merge.
	PhaseMerge Phase = "merge"

	// PhaseReleased is the terminal phase.
	PhaseReleased Phase = "released"
)

// phaseOrder is the canonical pipeline ordering.
var phaseOrder = []Phase{
	PhaseDraft,
	PhaseSpecified,
	PhasePlanned,
	PhaseReady,
	PhaseImplementation,
	PhaseReview,
	PhaseAudit,
	PhaseQA,
	PhaseMerge,
	PhaseReleased,
}

// Phases returns the pipeline phases in order. The returned slice is a
// copy; callers may mutate it freely.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// String returns the string representation of the Phase.
// This implements fmt.Stringer for convenient logging and debugging.
func (p Phase) String() string {
	return string(p)
}

// IsValid reports whether p is one of the pipeline phases.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the zero-based position of p in the pipeline, or -1 if
// p is not a valid phase.
func (p Phase) Index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p in the pipeline. The second
// return value is false when p is terminal or invalid.
func (p Phase) Next() (Phase, bool) {
	idx := p.Index()
	if idx < 0 || idx == len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[idx+1], true
}

// ParsePhase converts a string into a Phase, reporting whether the
// input named a valid phase.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(s)
	if !p.IsValid() {
		return "", false
	}
	return p, true
}
