package constants

// Action is the classifier's verdict on what should happen next for a
// feature. Actions are consumed by the CLI, the MCP tool server, and the
// web backend to dispatch work; the engine itself never executes them.
type Action string

// Action constants. Ordering here mirrors the classifier rule table:
// blocker resolution before artifact production, artifact production
// before approvals, approvals before task execution, terminal states
// last.
const (
	// ActionResolveBlocker means an unresolved blocker comment or a
	// project-level block entry halts the feature.
	ActionResolveBlocker Action = "resolve_blocker"

	// ActionUnblockDependency means a declared dependency has not been
	// released yet; nothing can proceed until it has.
	ActionUnblockDependency Action = "unblock_dependency"

	// ActionCreateSpec means the spec artifact must be written.
	ActionCreateSpec Action = "create_spec"

	// ActionReviseSpec means the spec was rejected or needs fixes.
	ActionReviseSpec Action = "revise_spec"

	// ActionCreateDesign means the design artifact must be written.
	ActionCreateDesign Action = "create_design"

	// ActionReviseDesign means the design was rejected or needs fixes.
	ActionReviseDesign Action = "revise_design"

	// ActionCreateTasks means the task breakdown must be written.
	ActionCreateTasks Action = "create_tasks"

	// ActionReviseTasks means the task breakdown needs rework.
	ActionReviseTasks Action = "revise_tasks"

	// ActionCreateQAPlan means the QA plan must be written.
	ActionCreateQAPlan Action = "create_qa_plan"

	// ActionReviseQAPlan means the QA plan needs rework.
	ActionReviseQAPlan Action = "revise_qa_plan"

	// ActionStartImplementation means the feature is ready and the
	// implementation phase should begin.
	ActionStartImplementation Action = "start_implementation"

	// ActionImplementTask means a specific task should be worked next.
	ActionImplementTask Action = "implement_task"

	// ActionCreateReview means the review artifact must be produced.
	ActionCreateReview Action = "create_review"

	// ActionCreateAudit means the audit artifact must be produced.
	ActionCreateAudit Action = "create_audit"

	// ActionRunQA means the QA plan should be executed and qa_results
	// recorded.
	ActionRunQA Action = "run_qa"

	// ActionMerge means the feature awaits its human-gated merge.
	ActionMerge Action = "merge"

	// ActionWaitForApproval means a drafted artifact awaits a human
	// approve/reject decision.
	ActionWaitForApproval Action = "wait_for_approval"

	// ActionDone is the universal fallback: nothing is pending.
	ActionDone Action = "done"
)

// String returns the string representation of the Action.
func (a Action) String() string {
	return string(a)
}

// IsActionable reports whether the action calls for work right now.
// Done is terminal, WaitForApproval is human-gated, and
// UnblockDependency is gated on another feature; none of those are
// actionable by the focus selector. Merge stays actionable so the
// pending human confirmation is surfaced rather than hidden.
func (a Action) IsActionable() bool {
	switch a {
	case ActionDone, ActionWaitForApproval, ActionUnblockDependency:
		return false
	default:
		return true
	}
}

// IsHeavy reports whether the action typically dispatches a long-running
// agent invocation. Callers use this to pick timeouts; the engine does
// not enforce it.
func (a Action) IsHeavy() bool {
	switch a {
	case ActionCreateSpec, ActionReviseSpec,
		ActionCreateDesign, ActionReviseDesign,
		ActionCreateTasks, ActionReviseTasks,
		ActionCreateQAPlan, ActionReviseQAPlan,
		ActionImplementTask, ActionCreateReview,
		ActionCreateAudit, ActionRunQA:
		return true
	default:
		return false
	}
}
