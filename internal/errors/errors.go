// Package errors provides centralized error handling for the sdlc engine.
//
// It defines sentinel errors for programmatic categorization (checked
// with errors.Is), typed errors that carry transition and gate detail
// (checked with errors.As), and the exit-code mapping the CLI applies
// to gate outcomes.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrFeatureNotFound indicates the requested feature does not exist.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrFeatureExists indicates an attempt to create a feature whose
	// slug is already taken.
	ErrFeatureExists = errors.New("feature already exists")

	// ErrMilestoneNotFound indicates the requested milestone does not exist.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrMilestoneExists indicates an attempt to create a milestone
	// whose slug is already taken.
	ErrMilestoneExists = errors.New("milestone already exists")

	// ErrStateNotFound indicates the project state document is missing;
	// the project has not been initialized.
	ErrStateNotFound = errors.New("project state not found")

	// ErrTaskNotFound indicates a task id does not exist in the feature.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCommentNotFound indicates a comment id does not exist in the feature.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrArtifactUnknown indicates an artifact type outside the closed set.
	ErrArtifactUnknown = errors.New("unknown artifact type")

	// ErrInvalidSlug indicates a malformed slug, rejected before any mutation.
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrInvalidPhase indicates a phase name outside the pipeline.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrInvalidFlag indicates an unknown comment flag.
	ErrInvalidFlag = errors.New("invalid comment flag")

	// ErrBlocked indicates an active blocker comment or unresolved
	// dependency prevents the requested operation.
	ErrBlocked = errors.New("feature is blocked")

	// ErrDependencyCycle indicates the declared feature dependencies
	// contain a cycle and no wave ordering exists.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrGateFailed indicates an automated gate exhausted its retries.
	ErrGateFailed = errors.New("gate failed")

	// ErrHumanGateRequired indicates the pipeline halted awaiting a
	// person. Distinct from failure; the run is not retried.
	ErrHumanGateRequired = errors.New("human gate required")

	// ErrGateTimeout indicates a gate attempt exceeded its timeout.
	ErrGateTimeout = errors.New("gate timeout exceeded")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrLockTimeout indicates a file lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrPathTraversal indicates an attempt to use path traversal in an
	// entity slug or filename.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrCorruptEntity indicates an entity file exists but cannot be parsed.
	ErrCorruptEntity = errors.New("corrupted entity file")

	// ErrNotInitialized indicates the .sdlc directory is absent.
	ErrNotInitialized = errors.New("project not initialized (run 'sdlc init')")

	// ErrAlreadyInitialized indicates init was run twice.
	ErrAlreadyInitialized = errors.New("project already initialized")

	// ErrNoMilestone indicates no milestone was given and none could be
	// auto-detected from project state.
	ErrNoMilestone = errors.New("no active milestone")

	// ErrNotActionable indicates a run was requested for a feature whose
	// directive is terminal or human-gated.
	ErrNotActionable = errors.New("no actionable directive")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// CLI exit codes for the run command. Exit codes are part of the
// contract consumed by scripts and the web backend.
const (
	// ExitOK indicates the action and all its gates passed.
	ExitOK = 0

	// ExitFailure is the generic failure exit code.
	ExitFailure = 1

	// ExitGateFailed indicates an automated gate failed after
	// exhausting its retries.
	ExitGateFailed = 2

	// ExitHumanGateRequired indicates the run halted at a human or
	// step-back gate.
	ExitHumanGateRequired = 3
)

// ExitCode maps an error to the CLI exit code contract. A nil error is
// ExitOK; gate failures and human gates get their dedicated codes; an
// AgentExitError passes the agent's own code through; everything else
// is ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var agentErr *AgentExitError
	if errors.As(err, &agentErr) {
		return agentErr.Code
	}
	if errors.Is(err, ErrHumanGateRequired) {
		return ExitHumanGateRequired
	}
	if errors.Is(err, ErrGateFailed) {
		return ExitGateFailed
	}
	return ExitFailure
}
