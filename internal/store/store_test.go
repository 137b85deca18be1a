package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Init(context.Background(), domain.NewState("test-project")))

	return s
}

func mustFeature(t *testing.T, slug, title string) *domain.Feature {
	t.Helper()

	f, err := domain.NewFeature(slug, title)
	require.NoError(t, err)

	return f
}

func mustMilestone(t *testing.T, slug, title string) *domain.Milestone {
	t.Helper()

	m, err := domain.NewMilestone(slug, title)
	require.NoError(t, err)

	return m
}

func TestInit(t *testing.T) {
	t.Run("creates project layout", func(t *testing.T) {
		s := NewFileStore(t.TempDir())
		require.False(t, s.Initialized())

		err := s.Init(context.Background(), domain.NewState("proj"))
		require.NoError(t, err)

		assert.True(t, s.Initialized())
		assert.DirExists(t, filepath.Join(s.Root(), constants.ProjectDir, constants.FeaturesDir))
		assert.DirExists(t, filepath.Join(s.Root(), constants.ProjectDir, constants.MilestonesDir))
		assert.FileExists(t, filepath.Join(s.Root(), constants.ProjectDir, constants.StateFileName))
	})

	t.Run("rejects double init", func(t *testing.T) {
		s := newTestStore(t)

		err := s.Init(context.Background(), domain.NewState("proj"))
		require.ErrorIs(t, err, sdlcerrors.ErrAlreadyInitialized)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		s := NewFileStore(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Init(ctx, domain.NewState("proj"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-project", state.Project)

	state.AddActiveFeature("auth")
	state.AppendHistory("auth", "feature_created", "")
	require.NoError(t, s.SaveState(ctx, state))

	reloaded, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth"}, reloaded.ActiveFeatures)
	require.Len(t, reloaded.History, 1)
	assert.Equal(t, "auth", reloaded.History[0].Feature)
	assert.Equal(t, "feature_created", reloaded.History[0].Event)
}

func TestLoadStateNotFound(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, err := s.LoadState(context.Background())
	require.ErrorIs(t, err, sdlcerrors.ErrStateNotFound)
}

func TestCreateFeature(t *testing.T) {
	t.Run("persists and reloads", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateFeature(ctx, mustFeature(t, "auth", "Authentication")))

		got, err := s.LoadFeature(ctx, "auth")
		require.NoError(t, err)
		assert.Equal(t, "auth", got.Slug)
		assert.Equal(t, constants.PhaseDraft, got.Phase)
		assert.Len(t, got.Artifacts, len(constants.ArtifactTypes()))
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		require.NoError(t, s.CreateFeature(ctx, mustFeature(t, "auth", "Auth")))
		err := s.CreateFeature(ctx, mustFeature(t, "auth", "Auth again"))
		require.ErrorIs(t, err, sdlcerrors.ErrFeatureExists)
	})

	t.Run("rejects invalid slug", func(t *testing.T) {
		s := newTestStore(t)

		err := s.CreateFeature(context.Background(), &domain.Feature{Slug: "../escape", Title: "Bad"})
		require.ErrorIs(t, err, sdlcerrors.ErrInvalidSlug)
	})
}

func TestLoadFeature(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.LoadFeature(context.Background(), "missing")
		require.ErrorIs(t, err, sdlcerrors.ErrFeatureNotFound)
		assert.True(t, IsNotFound(err))
	})

	t.Run("rejects traversal slug", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.LoadFeature(context.Background(), "../../etc/passwd")
		require.ErrorIs(t, err, sdlcerrors.ErrInvalidSlug)
	})

	t.Run("corrupt manifest", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreateFeature(ctx, mustFeature(t, "auth", "Auth")))

		manifest := filepath.Join(s.Root(), constants.ProjectDir, constants.FeaturesDir, "auth", constants.ManifestFileName)
		require.NoError(t, os.WriteFile(manifest, []byte("{not yaml: ["), 0o600))

		_, err := s.LoadFeature(ctx, "auth")
		require.ErrorIs(t, err, sdlcerrors.ErrCorruptEntity)
	})
}

func TestSaveFeature(t *testing.T) {
	t.Run("round-trips mutations", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		f := mustFeature(t, "auth", "Auth")
		require.NoError(t, s.CreateFeature(ctx, f))

		id, err := f.AddTask("write handlers", nil)
		require.NoError(t, err)
		require.NoError(t, s.SaveFeature(ctx, f))

		got, err := s.LoadFeature(ctx, "auth")
		require.NoError(t, err)
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, id, got.Tasks[0].ID)
	})

	t.Run("rejects never-created feature", func(t *testing.T) {
		s := newTestStore(t)

		err := s.SaveFeature(context.Background(), mustFeature(t, "ghost", "Ghost"))
		require.ErrorIs(t, err, sdlcerrors.ErrFeatureNotFound)
	})
}

func TestListFeatures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, slug := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.CreateFeature(ctx, mustFeature(t, slug, slug)))
	}

	features, err := s.ListFeatures(ctx)
	require.NoError(t, err)
	require.Len(t, features, 3)
	assert.Equal(t, "alpha", features[0].Slug)
	assert.Equal(t, "mid", features[1].Slug)
	assert.Equal(t, "zeta", features[2].Slug)
}

func TestMilestones(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := mustMilestone(t, "v1", "First release")
	require.NoError(t, s.CreateMilestone(ctx, m))
	require.ErrorIs(t, s.CreateMilestone(ctx, mustMilestone(t, "v1", "dup")), sdlcerrors.ErrMilestoneExists)

	m.AddFeature("auth")
	require.NoError(t, s.SaveMilestone(ctx, m))

	got, err := s.LoadMilestone(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"auth"}, got.Features)

	all, err := s.ListMilestones(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestWavePlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMilestone(ctx, mustMilestone(t, "v1", "First release")))

	plan := &domain.WavePlan{
		Milestone:    "v1",
		ProjectPhase: constants.ProjectExecuting,
		Waves: []domain.Wave{
			{Number: 1, Items: []domain.WaveItem{{Feature: "auth", Phase: constants.PhaseImplementation, Action: constants.ActionImplementTask}}},
		},
	}
	require.NoError(t, s.SaveWavePlan(ctx, plan))

	got, err := s.LoadWavePlan(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got.Waves, 1)
	assert.Equal(t, "auth", got.Waves[0].Items[0].Feature)

	t.Run("unknown milestone", func(t *testing.T) {
		err := s.SaveWavePlan(ctx, &domain.WavePlan{Milestone: "ghost"})
		require.ErrorIs(t, err, sdlcerrors.ErrMilestoneNotFound)
	})
}
