package domain

import (
	"time"

	"github.com/orchard9/sdlc/internal/constants"
)

// Artifact is a required deliverable gating phase exit. A feature holds
// exactly one Artifact per type; a type that has not been produced yet
// sits in the Missing status rather than being absent.
//
// Invariant: approving clears any prior rejection fields and rejecting
// clears the approval fields. Every mutator below is total: it always
// succeeds and leaves the artifact in a representable state.
type Artifact struct {
	// Type is the artifact's position in the closed artifact set.
	Type constants.ArtifactType `yaml:"artifact_type"`

	// Status is the current lifecycle state.
	Status constants.ArtifactStatus `yaml:"status"`

	// Path is the on-disk location of the artifact document, relative
	// to the project root. Set by MarkDraft.
	Path string `yaml:"path,omitempty"`

	// CreatedAt is when the artifact was first drafted.
	CreatedAt *time.Time `yaml:"created_at,omitempty"`

	// ApprovedAt is when the artifact was approved or passed.
	ApprovedAt *time.Time `yaml:"approved_at,omitempty"`

	// ApprovedBy identifies who approved the artifact.
	ApprovedBy string `yaml:"approved_by,omitempty"`

	// RejectedAt is when the artifact was rejected or failed.
	RejectedAt *time.Time `yaml:"rejected_at,omitempty"`

	// RejectionReason explains a rejection, needs-fix, failure, or waiver.
	RejectionReason string `yaml:"rejection_reason,omitempty"`
}

// IsApproved reports whether the artifact is in a reviewed-and-accepted
// status. Only Approved and Passed qualify; Waived does not (it
// satisfies phase exit but was never accepted by review).
func (a *Artifact) IsApproved() bool {
	return a.Status == constants.ArtifactStatusApproved || a.Status == constants.ArtifactStatusPassed
}

// SatisfiesExit reports whether the artifact counts toward phase-exit
// criteria: approved, passed, or explicitly waived.
func (a *Artifact) SatisfiesExit() bool {
	return a.IsApproved() || a.Status == constants.ArtifactStatusWaived
}

// MarkDraft sets the artifact to Draft, stamping created_at and
// recording where the document lives. Re-drafting refreshes created_at
// and clears any prior review outcome.
func (a *Artifact) MarkDraft(path string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusDraft
	a.Path = path
	a.CreatedAt = &now
	a.clearApproval()
	a.clearRejection()
}

// Approve sets the artifact to Approved, stamps approved_at/approved_by,
// and clears any prior rejection fields.
func (a *Artifact) Approve(by string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusApproved
	a.ApprovedAt = &now
	a.ApprovedBy = by
	a.clearRejection()
}

// Reject sets the artifact to Rejected with a reason and clears the
// approval fields. It is the mirror of Approve.
func (a *Artifact) Reject(reason string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusRejected
	a.RejectedAt = &now
	a.RejectionReason = reason
	a.clearApproval()
}

// MarkNeedsFix sets the artifact to NeedsFix with a reason, clearing the
// approval fields.
func (a *Artifact) MarkNeedsFix(reason string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusNeedsFix
	a.RejectedAt = &now
	a.RejectionReason = reason
	a.clearApproval()
}

// MarkPassed sets a verification artifact to Passed. Passed counts as
// approved for phase exit.
func (a *Artifact) MarkPassed(by string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusPassed
	a.ApprovedAt = &now
	a.ApprovedBy = by
	a.clearRejection()
}

// MarkFailed sets a verification artifact to Failed with a reason.
func (a *Artifact) MarkFailed(reason string) {
	now := timeNow().UTC()
	a.Status = constants.ArtifactStatusFailed
	a.RejectedAt = &now
	a.RejectionReason = reason
	a.clearApproval()
}

// Waive sets the artifact to Waived with a reason. The reason is kept in
// RejectionReason so the waiver's justification survives in the record.
func (a *Artifact) Waive(reason string) {
	a.Status = constants.ArtifactStatusWaived
	a.RejectionReason = reason
	a.clearApproval()
	a.RejectedAt = nil
}

func (a *Artifact) clearApproval() {
	a.ApprovedAt = nil
	a.ApprovedBy = ""
}

func (a *Artifact) clearRejection() {
	a.RejectedAt = nil
	a.RejectionReason = ""
}
