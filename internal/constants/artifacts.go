package constants

// ArtifactType identifies a required deliverable gating phase exit.
// Values use snake_case for YAML serialization compatibility.
type ArtifactType string

// Artifact type constants enumerate the closed artifact set. Every
// feature carries exactly one artifact slot per type.
const (
	// ArtifactSpec is the feature specification document.
	ArtifactSpec ArtifactType = "spec"

	// ArtifactDesign is the technical design document.
	ArtifactDesign ArtifactType = "design"

	// ArtifactTasks is the task breakdown document.
	ArtifactTasks ArtifactType = "tasks"

	// ArtifactQAPlan is the QA test plan.
	ArtifactQAPlan ArtifactType = "qa_plan"

	// ArtifactReview is the code review report.
	ArtifactReview ArtifactType = "review"

	// ArtifactAudit is the security/quality audit report.
	ArtifactAudit ArtifactType = "audit"

	// ArtifactQAResults is the QA execution results document.
	ArtifactQAResults ArtifactType = "qa_results"
)

// artifactOrder is the canonical artifact ordering, matching the phase
// in which each artifact is first produced.
var artifactOrder = []ArtifactType{
	ArtifactSpec,
	ArtifactDesign,
	ArtifactTasks,
	ArtifactQAPlan,
	ArtifactReview,
	ArtifactAudit,
	ArtifactQAResults,
}

// ArtifactTypes returns all artifact types in canonical order.
// The returned slice is a copy; callers may mutate it freely.
func ArtifactTypes() []ArtifactType {
	out := make([]ArtifactType, len(artifactOrder))
	copy(out, artifactOrder)
	return out
}

// String returns the string representation of the ArtifactType.
func (t ArtifactType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the closed artifact types.
func (t ArtifactType) IsValid() bool {
	for _, candidate := range artifactOrder {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseArtifactType converts a string into an ArtifactType, reporting
// whether the input named a valid type.
func ParseArtifactType(s string) (ArtifactType, bool) {
	t := ArtifactType(s)
	if !t.IsValid() {
		return "", false
	}
	return t, true
}

// ArtifactStatus represents the lifecycle state of an artifact.
// Values use snake_case for YAML serialization compatibility.
type ArtifactStatus string

// Artifact status constants define the valid states an artifact can be in:
//
//	Missing → Draft
//	Draft → Approved, Rejected, NeedsFix, Waived
//	Approved ↔ Rejected (re-review)
//	Draft → Passed, Failed (verification artifacts)
const (
	// ArtifactStatusMissing indicates the artifact has not been produced.
	ArtifactStatusMissing ArtifactStatus = "missing"

	// ArtifactStatusDraft indicates the artifact exists but is unreviewed.
	ArtifactStatusDraft ArtifactStatus = "draft"

	// ArtifactStatusApproved indicates a reviewer accepted the artifact.
	ArtifactStatusApproved ArtifactStatus = "approved"

	// ArtifactStatusRejected indicates a reviewer rejected the artifact.
	ArtifactStatusRejected ArtifactStatus = "rejected"

	// ArtifactStatusNeedsFix indicates the artifact needs rework before
	// another review round.
	ArtifactStatusNeedsFix ArtifactStatus = "needs_fix"

	// ArtifactStatusPassed indicates a verification artifact (audit,
	// qa_results) succeeded. Counts as approved for phase exit.
	ArtifactStatusPassed ArtifactStatus = "passed"

	// ArtifactStatusFailed indicates a verification artifact failed.
	ArtifactStatusFailed ArtifactStatus = "failed"

	// ArtifactStatusWaived indicates the artifact requirement was
	// explicitly waived with a reason.
	ArtifactStatusWaived ArtifactStatus = "waived"
)

// String returns the string representation of the ArtifactStatus.
func (s ArtifactStatus) String() string {
	return string(s)
}
