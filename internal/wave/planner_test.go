package wave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/orchard9/sdlc/internal/clock"
	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

type fixture struct {
	milestone *domain.Milestone
	features  map[string]*domain.Feature
	state     *domain.State
}

func newFixture(t *testing.T, memberSlugs ...string) *fixture {
	t.Helper()

	m, err := domain.NewMilestone("v1", "First release")
	require.NoError(t, err)

	fx := &fixture{
		milestone: m,
		features:  map[string]*domain.Feature{},
		state:     domain.NewState("test"),
	}
	for _, slug := range memberSlugs {
		fx.addMember(t, slug)
	}
	return fx
}

func (fx *fixture) addMember(t *testing.T, slug string) *domain.Feature {
	t.Helper()

	f, err := domain.NewFeature(slug, "Feature "+slug)
	require.NoError(t, err)
	fx.features[slug] = f
	fx.milestone.AddFeature(slug)
	return f
}

func (fx *fixture) input() *Input {
	return &Input{
		Milestone: fx.milestone,
		Features:  fx.features,
		State:     fx.state,
		Config:    config.DefaultConfig(),
	}
}

func plan(t *testing.T, fx *fixture, opts ...Option) *domain.WavePlan {
	t.Helper()

	p, err := NewPlanner(opts...).Plan(context.Background(), fx.input())
	require.NoError(t, err)
	return p
}

func TestDeriveProjectPhase(t *testing.T) {
	tests := []struct {
		name   string
		phases []constants.Phase
		want   constants.ProjectPhase
	}{
		{"no members", nil, constants.ProjectIdle},
		{"all released", []constants.Phase{constants.PhaseReleased}, constants.ProjectIdle},
		{"drafting", []constants.Phase{constants.PhaseDraft, constants.PhaseSpecified}, constants.ProjectPondering},
		{"planning", []constants.Phase{constants.PhaseDraft, constants.PhasePlanned}, constants.ProjectPlanning},
		{"implementing dominates", []constants.Phase{constants.PhaseImplementation, constants.PhaseQA}, constants.ProjectExecuting},
		{"verifying", []constants.Phase{constants.PhaseReview, constants.PhaseReleased}, constants.ProjectVerifying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			for i, phase := range tt.phases {
				f := fx.addMember(t, fmt.Sprintf("f%d", i))
				f.Phase = phase
			}
			assert.Equal(t, tt.want, plan(t, fx).ProjectPhase)
		})
	}
}

func TestPartition(t *testing.T) {
	t.Run("dependency chain spreads across waves", func(t *testing.T) {
		fx := newFixture(t, "core", "api", "ui")
		require.NoError(t, fx.features["api"].AddDependency("core"))
		require.NoError(t, fx.features["ui"].AddDependency("api"))

		p := plan(t, fx)
		require.Len(t, p.Waves, 3)
		assert.Equal(t, "core", p.Waves[0].Items[0].Feature)
		assert.Equal(t, "api", p.Waves[1].Items[0].Feature)
		assert.Equal(t, "ui", p.Waves[2].Items[0].Feature)
		assert.Equal(t, []string{"api"}, p.Waves[2].Items[0].BlockedBy)
		assert.False(t, p.Waves[0].Items[0].NeedsWorktree)
	})

	t.Run("released dependency joins wave one", func(t *testing.T) {
		fx := newFixture(t, "core", "api")
		fx.features["core"].Phase = constants.PhaseReleased
		require.NoError(t, fx.features["api"].AddDependency("core"))

		p := plan(t, fx)
		require.Len(t, p.Waves, 1)
		assert.Equal(t, "api", p.Waves[0].Items[0].Feature)
		assert.Empty(t, p.Waves[0].Items[0].BlockedBy)
	})

	t.Run("parallel wave raises needs_worktree", func(t *testing.T) {
		fx := newFixture(t, "a", "b")

		p := plan(t, fx)
		require.Len(t, p.Waves, 1)
		require.Len(t, p.Waves[0].Items, 2)
		assert.True(t, p.Waves[0].Items[0].NeedsWorktree)
		assert.True(t, p.Waves[0].Items[1].NeedsWorktree)
	})

	t.Run("blocked member is excluded with its dependents", func(t *testing.T) {
		fx := newFixture(t, "core", "api")
		fx.state.Block("core", "infra outage")
		require.NoError(t, fx.features["api"].AddDependency("core"))

		p := plan(t, fx)
		assert.Empty(t, p.Waves)
		require.Len(t, p.Blocked, 2)
		assert.Equal(t, "core", p.Blocked[0].Feature)
		assert.Equal(t, "infra outage", p.Blocked[0].Reason)
		assert.Equal(t, "api", p.Blocked[1].Feature)
	})

	t.Run("blocker comment excludes member", func(t *testing.T) {
		fx := newFixture(t, "core")
		_, err := fx.features["core"].AddComment(constants.CommentFlagBlocker, domain.CommentTarget{Kind: domain.TargetFeature}, "tester", "legal hold")
		require.NoError(t, err)

		p := plan(t, fx)
		assert.Empty(t, p.Waves)
		require.Len(t, p.Blocked, 1)
		assert.Contains(t, p.Blocked[0].Reason, "legal hold")
	})

	t.Run("waiting and done members are skipped silently", func(t *testing.T) {
		fx := newFixture(t, "waiting", "done", "working")
		fx.features["waiting"].Artifact(constants.ArtifactSpec).MarkDraft("spec.md")
		fx.features["done"].Phase = constants.PhaseReleased

		p := plan(t, fx)
		require.Len(t, p.Waves, 1)
		require.Len(t, p.Waves[0].Items, 1)
		assert.Equal(t, "working", p.Waves[0].Items[0].Feature)
		assert.Empty(t, p.Blocked)
	})

	t.Run("next commands come from the first wave", func(t *testing.T) {
		fx := newFixture(t, "core", "api")
		require.NoError(t, fx.features["api"].AddDependency("core"))

		p := plan(t, fx)
		assert.Equal(t, []string{"sdlc run core"}, p.NextCommands)
	})
}

func TestDetectGaps(t *testing.T) {
	t.Run("cycle is a blocker gap", func(t *testing.T) {
		fx := newFixture(t, "a", "b")
		require.NoError(t, fx.features["a"].AddDependency("b"))
		require.NoError(t, fx.features["b"].AddDependency("a"))

		p := plan(t, fx)
		assert.Empty(t, p.Waves)
		require.Len(t, p.Blocked, 2)

		var cycleGaps int
		for _, gap := range p.Gaps {
			if gap.Severity == domain.GapBlocker {
				cycleGaps++
			}
		}
		assert.Equal(t, 2, cycleGaps)
	})

	t.Run("missing prerequisite is a blocker gap", func(t *testing.T) {
		fx := newFixture(t, "api")
		require.NoError(t, fx.features["api"].AddDependency("ghost"))

		p := plan(t, fx)
		assert.Empty(t, p.Waves)
		require.Len(t, p.Gaps, 1)
		assert.Equal(t, domain.GapBlocker, p.Gaps[0].Severity)
		assert.Contains(t, p.Gaps[0].Message, "ghost")
	})

	t.Run("nonexistent milestone member is a blocker gap", func(t *testing.T) {
		fx := newFixture(t, "api")
		fx.milestone.AddFeature("phantom")

		p := plan(t, fx)
		require.Len(t, p.Gaps, 1)
		assert.Equal(t, "phantom", p.Gaps[0].Feature)
	})

	t.Run("long-pending draft is a warning", func(t *testing.T) {
		fx := newFixture(t, "api")
		fx.features["api"].Artifact(constants.ArtifactSpec).MarkDraft("spec.md")

		future := clock.NewFixed(time.Now().UTC().Add(8 * 24 * time.Hour))
		p := plan(t, fx, WithClock(future))

		require.Len(t, p.Gaps, 1)
		assert.Equal(t, domain.GapWarning, p.Gaps[0].Severity)
		assert.Contains(t, p.Gaps[0].Message, "spec")
	})

	t.Run("archived member is informational", func(t *testing.T) {
		fx := newFixture(t, "api")
		fx.features["api"].Archived = true

		p := plan(t, fx)
		require.Len(t, p.Gaps, 1)
		assert.Equal(t, domain.GapInfo, p.Gaps[0].Severity)
		assert.Empty(t, p.Waves)
		assert.Empty(t, p.Blocked)
	})
}

// The wave invariant: every scheduled feature's dependencies are either
// released or assigned to a strictly earlier wave.
func TestWaveDependencyLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		memberCount := rapid.IntRange(1, 8).Draw(t, "members")

		m, err := domain.NewMilestone("v1", "First release")
		require.NoError(t, err)

		features := make(map[string]*domain.Feature, memberCount)
		slugs := make([]string, memberCount)
		for i := 0; i < memberCount; i++ {
			slug := fmt.Sprintf("f%d", i)
			slugs[i] = slug
			f, ferr := domain.NewFeature(slug, "Feature "+slug)
			require.NoError(t, ferr)
			if rapid.Bool().Draw(t, "released") {
				f.Phase = constants.PhaseReleased
			}
			features[slug] = f
			m.AddFeature(slug)
		}

		// Edges only point backwards, so the graph is acyclic.
		for i := 1; i < memberCount; i++ {
			for j := 0; j < i; j++ {
				if rapid.Bool().Draw(t, "edge") {
					require.NoError(t, features[slugs[i]].AddDependency(slugs[j]))
				}
			}
		}

		p, err := NewPlanner().Plan(context.Background(), &Input{
			Milestone: m,
			Features:  features,
			State:     domain.NewState("test"),
			Config:    config.DefaultConfig(),
		})
		require.NoError(t, err)

		waveOf := make(map[string]int)
		for _, wave := range p.Waves {
			for _, item := range wave.Items {
				waveOf[item.Feature] = wave.Number
			}
		}

		for _, wave := range p.Waves {
			for _, item := range wave.Items {
				for _, dep := range features[item.Feature].Dependencies {
					if features[dep].Phase == constants.PhaseReleased {
						continue
					}
					assigned, ok := waveOf[dep]
					require.True(t, ok, "dependency %s of %s is neither released nor scheduled", dep, item.Feature)
					require.Less(t, assigned, wave.Number)
				}
			}
		}
	})
}
