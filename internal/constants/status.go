package constants

// TaskStatus represents the state of a task within a feature.
// Values use snake_case for YAML serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in:
//
//	Pending → InProgress, Blocked
//	InProgress → Completed, Blocked
//	Blocked → Pending, InProgress
const (
	// TaskStatusPending indicates the task has not been started.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates the task is done.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusBlocked indicates the task cannot proceed; Blocker
	// carries the reason.
	TaskStatusBlocked TaskStatus = "blocked"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// CommentFlag classifies a comment's intent. An empty flag is a plain
// remark with no workflow effect.
type CommentFlag string

// Comment flag constants. Only Blocker has engine semantics: an
// unresolved blocker comment halts classification of its target.
const (
	// CommentFlagBlocker halts progress on the comment's target until
	// the comment is resolved.
	CommentFlagBlocker CommentFlag = "blocker"

	// CommentFlagQuestion marks a question awaiting an answer.
	CommentFlagQuestion CommentFlag = "question"

	// CommentFlagDecision records a decision for the project log.
	CommentFlagDecision CommentFlag = "decision"

	// CommentFlagFyi marks an informational note.
	CommentFlagFyi CommentFlag = "fyi"
)

// String returns the string representation of the CommentFlag.
func (f CommentFlag) String() string {
	return string(f)
}

// IsValid reports whether f is a known flag. The empty flag is valid.
func (f CommentFlag) IsValid() bool {
	switch f {
	case "", CommentFlagBlocker, CommentFlagQuestion, CommentFlagDecision, CommentFlagFyi:
		return true
	default:
		return false
	}
}

// MilestoneStatus represents the state of a milestone.
type MilestoneStatus string

// Milestone status constants.
const (
	// MilestoneStatusActive indicates the milestone is being worked.
	MilestoneStatusActive MilestoneStatus = "active"

	// MilestoneStatusComplete indicates every member feature released.
	MilestoneStatusComplete MilestoneStatus = "complete"

	// MilestoneStatusCancelled indicates the milestone was abandoned.
	MilestoneStatusCancelled MilestoneStatus = "cancelled"
)

// String returns the string representation of the MilestoneStatus.
func (s MilestoneStatus) String() string {
	return string(s)
}

// GateKind identifies how a verification gate is resolved.
type GateKind string

// Gate kind constants. Shell gates are automated and retryable; Human
// and StepBack gates halt the run until a person acts and are never
// retried.
const (
	// GateKindShell runs a shell command; exit 0 passes.
	GateKindShell GateKind = "shell"

	// GateKindHuman requires a person to confirm a prompt.
	GateKindHuman GateKind = "human"

	// GateKindStepBack requires a person to answer reflection questions
	// before the pipeline may continue.
	GateKindStepBack GateKind = "step_back"
)

// String returns the string representation of the GateKind.
func (k GateKind) String() string {
	return string(k)
}

// ProjectPhase represents the coarse lifecycle stage of the whole
// project, derived from milestone and feature state by the wave planner.
type ProjectPhase string

// Project phase constants.
const (
	// ProjectIdle indicates no active milestone exists.
	ProjectIdle ProjectPhase = "idle"

	// ProjectPondering indicates milestone features are still being
	// specified (draft/specified).
	ProjectPondering ProjectPhase = "pondering"

	// ProjectPlanning indicates features are planned but execution has
	// not begun.
	ProjectPlanning ProjectPhase = "planning"

	// ProjectExecuting indicates at least one feature is mid-flight.
	ProjectExecuting ProjectPhase = "executing"

	// ProjectVerifying indicates every unfinished feature is in a
	// verification phase (review/audit/qa/merge).
	ProjectVerifying ProjectPhase = "verifying"
)

// String returns the string representation of the ProjectPhase.
func (p ProjectPhase) String() string {
	return string(p)
}
