package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

func newEvalContext(t *testing.T, f *domain.Feature) *EvalContext {
	t.Helper()

	return &EvalContext{
		Feature: f,
		State:   domain.NewState("test"),
		Config:  config.DefaultConfig(),
		Deps:    map[string]*domain.Feature{},
	}
}

func mustFeature(t *testing.T, slug string) *domain.Feature {
	t.Helper()

	f, err := domain.NewFeature(slug, "Feature "+slug)
	require.NoError(t, err)

	return f
}

func TestClassify(t *testing.T) {
	classifier := New()

	t.Run("archived wins over everything", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Archived = true
		_, err := f.AddComment(constants.CommentFlagBlocker, domain.CommentTarget{Kind: domain.TargetFeature}, "tester", "stuck")
		require.NoError(t, err)

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionDone, result.Action)
		assert.Equal(t, "feature is archived", result.Message)
	})

	t.Run("released is done", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseReleased

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionDone, result.Action)
	})

	t.Run("blocker comment wins over missing artifact", func(t *testing.T) {
		f := mustFeature(t, "auth")
		id, err := f.AddComment(constants.CommentFlagBlocker, domain.CommentTarget{Kind: domain.TargetFeature}, "tester", "waiting on legal")
		require.NoError(t, err)

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionResolveBlocker, result.Action)
		assert.Contains(t, result.Message, id)
		assert.Contains(t, result.Message, "waiting on legal")
		assert.False(t, result.IsHeavy)
	})

	t.Run("state block", func(t *testing.T) {
		f := mustFeature(t, "auth")
		ec := newEvalContext(t, f)
		ec.State.Block("auth", "infra outage")

		result := classifier.Classify(ec)
		require.Equal(t, constants.ActionResolveBlocker, result.Action)
		assert.Contains(t, result.Message, "infra outage")
	})

	t.Run("unreleased dependency", func(t *testing.T) {
		f := mustFeature(t, "auth")
		require.NoError(t, f.AddDependency("database"))

		dep := mustFeature(t, "database")
		dep.Phase = constants.PhaseImplementation

		ec := newEvalContext(t, f)
		ec.Deps["database"] = dep

		result := classifier.Classify(ec)
		require.Equal(t, constants.ActionUnblockDependency, result.Action)
		assert.Contains(t, result.Message, "database")
		assert.False(t, result.Actionable())
	})

	t.Run("released dependency does not block", func(t *testing.T) {
		f := mustFeature(t, "auth")
		require.NoError(t, f.AddDependency("database"))

		dep := mustFeature(t, "database")
		dep.Phase = constants.PhaseReleased

		ec := newEvalContext(t, f)
		ec.Deps["database"] = dep

		result := classifier.Classify(ec)
		assert.Equal(t, constants.ActionCreateSpec, result.Action)
	})

	t.Run("missing dependency snapshot counts as unmet", func(t *testing.T) {
		f := mustFeature(t, "auth")
		require.NoError(t, f.AddDependency("ghost"))

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionUnblockDependency, result.Action)
	})

	t.Run("draft needs spec", func(t *testing.T) {
		f := mustFeature(t, "auth")

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionCreateSpec, result.Action)
		assert.Contains(t, result.OutputPath, "spec.md")
		assert.True(t, result.IsHeavy)
		assert.Equal(t, config.DefaultHeavyTimeoutMinutes, result.TimeoutMinutes)
	})

	t.Run("rejected spec needs revision", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Artifact(constants.ArtifactSpec).Reject("too vague")

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionReviseSpec, result.Action)
		assert.Contains(t, result.Message, "too vague")
	})

	t.Run("drafted spec awaits approval", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Artifact(constants.ArtifactSpec).MarkDraft("spec.md")

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionWaitForApproval, result.Action)
		assert.Contains(t, result.NextCommand, "artifact approve")
		assert.False(t, result.Actionable())
	})

	t.Run("planned needs tasks then qa_plan", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhasePlanned

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionCreateTasks, result.Action)

		f.Artifact(constants.ArtifactTasks).MarkDraft("tasks.md")
		f.Artifact(constants.ArtifactTasks).Approve("tester")

		result = classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionCreateQAPlan, result.Action)
	})

	t.Run("ready starts implementation", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseReady

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionStartImplementation, result.Action)
		assert.Equal(t, constants.PhaseImplementation, result.TransitionTo)
	})

	t.Run("implementation picks next runnable task", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseImplementation
		first, err := f.AddTask("schema", nil)
		require.NoError(t, err)
		second, err := f.AddTask("handlers", []string{first})
		require.NoError(t, err)

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionImplementTask, result.Action)
		assert.Equal(t, first, result.TaskID)

		require.NoError(t, f.CompleteTask(first))
		result = classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionImplementTask, result.Action)
		assert.Equal(t, second, result.TaskID)
	})

	t.Run("all tasks complete moves to review", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseImplementation
		id, err := f.AddTask("schema", nil)
		require.NoError(t, err)
		require.NoError(t, f.CompleteTask(id))

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionCreateReview, result.Action)
		assert.Equal(t, constants.PhaseReview, result.TransitionTo)
	})

	t.Run("blocked tasks surface as blocker", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseImplementation
		id, err := f.AddTask("schema", nil)
		require.NoError(t, err)
		require.NoError(t, f.BlockTask(id, "waiting on dba"))

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionResolveBlocker, result.Action)
	})

	t.Run("qa phase failed results rerun", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseQA
		f.Artifact(constants.ArtifactQAResults).MarkFailed("flaky integration suite")

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionRunQA, result.Action)
	})

	t.Run("merge is human gated", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseMerge

		result := classifier.Classify(newEvalContext(t, f))
		require.Equal(t, constants.ActionMerge, result.Action)
		assert.False(t, result.IsHeavy)
		assert.True(t, result.Actionable())
	})

	t.Run("fallback when exit criteria already satisfied", func(t *testing.T) {
		f := mustFeature(t, "auth")
		f.Phase = constants.PhaseSpecified
		f.Artifact(constants.ArtifactDesign).MarkDraft("design.md")
		f.Artifact(constants.ArtifactDesign).Approve("tester")

		result := classifier.Classify(newEvalContext(t, f))
		assert.Equal(t, constants.ActionDone, result.Action)
		assert.Equal(t, "no pending actions", result.Message)
	})
}

// Classification is total: any combination of phase and artifact
// statuses yields a directive with the feature's identity filled in.
func TestClassifyTotal(t *testing.T) {
	classifier := New()
	phases := constants.Phases()

	statuses := []constants.ArtifactStatus{
		constants.ArtifactStatusMissing,
		constants.ArtifactStatusDraft,
		constants.ArtifactStatusApproved,
		constants.ArtifactStatusRejected,
		constants.ArtifactStatusNeedsFix,
		constants.ArtifactStatusPassed,
		constants.ArtifactStatusFailed,
		constants.ArtifactStatusWaived,
	}

	rapid.Check(t, func(t *rapid.T) {
		f, err := domain.NewFeature("subject", "Subject")
		require.NoError(t, err)

		f.Phase = phases[rapid.IntRange(0, len(phases)-1).Draw(t, "phase")]
		f.Archived = rapid.Bool().Draw(t, "archived")
		for i := range f.Artifacts {
			f.Artifacts[i].Status = statuses[rapid.IntRange(0, len(statuses)-1).Draw(t, "status")]
		}

		result := classifier.Classify(&EvalContext{
			Feature: f,
			State:   domain.NewState("test"),
			Config:  config.DefaultConfig(),
		})

		require.NotNil(t, result)
		assert.Equal(t, "subject", result.Feature)
		assert.Equal(t, f.Phase, result.Phase)
		assert.NotEmpty(t, result.Action)
		assert.NotEmpty(t, result.Message)
	})
}
