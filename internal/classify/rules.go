package classify

import (
	"fmt"
	"path/filepath"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// defaultRules is the ordered rule table. First match wins; the final
// fallback is unconditional. Ordering follows the pipeline: terminal
// states, then blockers, then dependencies, then artifact production,
// then approvals, then task execution, then the human-gated merge.
func defaultRules() []Rule {
	return []Rule{
		{Name: "archived", Build: ruleArchived},
		{Name: "released", Build: ruleReleased},
		{Name: "blocker_comment", Build: ruleBlockerComment},
		{Name: "state_block", Build: ruleStateBlock},
		{Name: "unreleased_dependency", Build: ruleUnreleasedDependency},
		{Name: "artifact_needed", Build: ruleArtifactNeeded},
		{Name: "artifact_pending_approval", Build: ruleArtifactPendingApproval},
		{Name: "start_implementation", Build: ruleStartImplementation},
		{Name: "implementation_tasks", Build: ruleImplementationTasks},
		{Name: "merge", Build: ruleMerge},
		{Name: "fallback_done", Build: ruleFallbackDone},
	}
}

func ruleArchived(ec *EvalContext) *domain.Classification {
	if !ec.Feature.Archived {
		return nil
	}
	return classificationFor(ec.Feature, constants.ActionDone, "feature is archived")
}

func ruleReleased(ec *EvalContext) *domain.Classification {
	if ec.Feature.Phase != constants.PhaseReleased {
		return nil
	}
	return classificationFor(ec.Feature, constants.ActionDone, "feature is released")
}

func ruleBlockerComment(ec *EvalContext) *domain.Classification {
	blockers := ec.Feature.BlockerComments()
	if len(blockers) == 0 {
		return nil
	}
	first := blockers[0]
	result := classificationFor(ec.Feature, constants.ActionResolveBlocker,
		fmt.Sprintf("blocker comment %s: %s", first.ID, first.Body))
	result.NextCommand = fmt.Sprintf("sdlc comment resolve %s %s", ec.Feature.Slug, first.ID)
	return result
}

func ruleStateBlock(ec *EvalContext) *domain.Classification {
	if ec.State == nil {
		return nil
	}
	reason, blocked := ec.State.BlockReason(ec.Feature.Slug)
	if !blocked {
		return nil
	}
	result := classificationFor(ec.Feature, constants.ActionResolveBlocker,
		fmt.Sprintf("feature is blocked: %s", reason))
	result.NextCommand = fmt.Sprintf("sdlc feature unblock %s", ec.Feature.Slug)
	return result
}

func ruleUnreleasedDependency(ec *EvalContext) *domain.Classification {
	for _, dep := range ec.Feature.Dependencies {
		depFeature, ok := ec.Deps[dep]
		if ok && depFeature.Phase == constants.PhaseReleased {
			continue
		}
		result := classificationFor(ec.Feature, constants.ActionUnblockDependency,
			fmt.Sprintf("dependency %q is not released", dep))
		result.NextCommand = fmt.Sprintf("sdlc next --for %s", dep)
		return result
	}
	return nil
}

// artifactActions maps artifact types to their production actions.
// Review, audit and QA artifacts have no revise variant: rework is
// re-running the same action.
var artifactActions = map[constants.ArtifactType]struct {
	create constants.Action
	revise constants.Action
}{
	constants.ArtifactSpec:      {constants.ActionCreateSpec, constants.ActionReviseSpec},
	constants.ArtifactDesign:    {constants.ActionCreateDesign, constants.ActionReviseDesign},
	constants.ArtifactTasks:     {constants.ActionCreateTasks, constants.ActionReviseTasks},
	constants.ArtifactQAPlan:    {constants.ActionCreateQAPlan, constants.ActionReviseQAPlan},
	constants.ArtifactReview:    {constants.ActionCreateReview, constants.ActionCreateReview},
	constants.ArtifactAudit:     {constants.ActionCreateAudit, constants.ActionCreateAudit},
	constants.ArtifactQAResults: {constants.ActionRunQA, constants.ActionRunQA},
}

func ruleArtifactNeeded(ec *EvalContext) *domain.Classification {
	for _, artifactType := range exitRequirements(ec) {
		artifact := ec.Feature.Artifact(artifactType)
		if artifact == nil {
			continue
		}

		actions, ok := artifactActions[artifactType]
		if !ok {
			continue
		}

		var action constants.Action
		var message string
		switch artifact.Status {
		case constants.ArtifactStatusMissing:
			action = actions.create
			message = fmt.Sprintf("artifact %s is missing", artifactType)
		case constants.ArtifactStatusRejected:
			action = actions.revise
			message = fmt.Sprintf("artifact %s was rejected: %s", artifactType, artifact.RejectionReason)
		case constants.ArtifactStatusNeedsFix:
			action = actions.revise
			message = fmt.Sprintf("artifact %s needs fixes", artifactType)
		case constants.ArtifactStatusFailed:
			action = actions.revise
			message = fmt.Sprintf("artifact %s failed", artifactType)
		default:
			continue
		}

		result := classificationFor(ec.Feature, action, message)
		result.OutputPath = artifactPath(ec.Feature.Slug, artifactType)
		result.NextCommand = fmt.Sprintf("sdlc run %s", ec.Feature.Slug)
		return result
	}
	return nil
}

func ruleArtifactPendingApproval(ec *EvalContext) *domain.Classification {
	for _, artifactType := range exitRequirements(ec) {
		artifact := ec.Feature.Artifact(artifactType)
		if artifact == nil || artifact.Status != constants.ArtifactStatusDraft {
			continue
		}
		result := classificationFor(ec.Feature, constants.ActionWaitForApproval,
			fmt.Sprintf("artifact %s is drafted and awaits approval", artifactType))
		result.NextCommand = fmt.Sprintf("sdlc artifact approve %s %s", ec.Feature.Slug, artifactType)
		return result
	}
	return nil
}

func ruleStartImplementation(ec *EvalContext) *domain.Classification {
	if ec.Feature.Phase != constants.PhaseReady {
		return nil
	}
	result := classificationFor(ec.Feature, constants.ActionStartImplementation,
		"feature is ready; begin implementation")
	result.TransitionTo = constants.PhaseImplementation
	result.NextCommand = fmt.Sprintf("sdlc run %s", ec.Feature.Slug)
	return result
}

func ruleImplementationTasks(ec *EvalContext) *domain.Classification {
	if ec.Feature.Phase != constants.PhaseImplementation {
		return nil
	}

	if next := domain.NextTask(ec.Feature.Tasks); next != nil {
		result := classificationFor(ec.Feature, constants.ActionImplementTask,
			fmt.Sprintf("task %s: %s", next.ID, next.Title))
		result.TaskID = next.ID
		result.NextCommand = fmt.Sprintf("sdlc run %s", ec.Feature.Slug)
		return result
	}

	if ec.Feature.AllTasksCompleted() {
		result := classificationFor(ec.Feature, constants.ActionCreateReview,
			"all tasks complete; move to review")
		result.TransitionTo = constants.PhaseReview
		result.OutputPath = artifactPath(ec.Feature.Slug, constants.ArtifactReview)
		result.NextCommand = fmt.Sprintf("sdlc run %s", ec.Feature.Slug)
		return result
	}

	// Remaining tasks exist but none is runnable: every candidate is
	// blocked or waiting on a blocked chain.
	result := classificationFor(ec.Feature, constants.ActionResolveBlocker,
		"no runnable task; remaining tasks are blocked")
	result.NextCommand = fmt.Sprintf("sdlc feature show %s", ec.Feature.Slug)
	return result
}

func ruleMerge(ec *EvalContext) *domain.Classification {
	if ec.Feature.Phase != constants.PhaseMerge {
		return nil
	}
	result := classificationFor(ec.Feature, constants.ActionMerge,
		"feature awaits its merge confirmation")
	result.NextCommand = fmt.Sprintf("sdlc run %s", ec.Feature.Slug)
	return result
}

func ruleFallbackDone(ec *EvalContext) *domain.Classification {
	return classificationFor(ec.Feature, constants.ActionDone, "no pending actions")
}

// exitRequirements returns the artifact types required to exit the
// feature's current phase, honoring config overrides.
func exitRequirements(ec *EvalContext) []constants.ArtifactType {
	if ec.Config != nil {
		return ec.Config.ExitRequirements(ec.Feature.Phase)
	}
	return nil
}

// artifactPath suggests the conventional on-disk location for an
// artifact document.
func artifactPath(slug string, artifactType constants.ArtifactType) string {
	return filepath.Join(constants.ProjectDir, constants.FeaturesDir, slug, artifactType.String()+".md")
}
