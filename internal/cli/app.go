package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/orchard9/sdlc/internal/classify"
	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/store"
)

// app bundles the wiring every subcommand needs: the entity store, the
// effective configuration, and the CLI logger.
type app struct {
	store  *store.FileStore
	config *config.Config
	logger zerolog.Logger
	flags  *GlobalFlags
}

// newApp wires an app rooted at the working directory. The project must
// be initialized; init itself uses newUninitializedApp.
func newApp(flags *GlobalFlags) (*app, error) {
	a, err := newUninitializedApp(flags)
	if err != nil {
		return nil, err
	}
	if !a.store.Initialized() {
		return nil, fmt.Errorf("%w: run %q first", sdlcerrors.ErrNotInitialized, "sdlc init")
	}
	return a, nil
}

// newUninitializedApp wires an app without requiring .sdlc to exist.
func newUninitializedApp(flags *GlobalFlags) (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	return &app{
		store:  store.NewFileStore(cwd),
		config: cfg,
		logger: GetLogger(),
		flags:  flags,
	}, nil
}

// defaultAuthor is the identity stamped on approvals and comments when
// --by/--author is not given.
func defaultAuthor() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return config.DefaultAuthor
}

// loadFeatureMap loads every persisted feature keyed by slug.
func (a *app) loadFeatureMap(ctx context.Context) (map[string]*domain.Feature, error) {
	features, err := a.store.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Feature, len(features))
	for _, f := range features {
		out[f.Slug] = f
	}
	return out, nil
}

// loadMilestoneMap loads every persisted milestone keyed by slug.
func (a *app) loadMilestoneMap(ctx context.Context) (map[string]*domain.Milestone, error) {
	milestones, err := a.store.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.Milestone, len(milestones))
	for _, m := range milestones {
		out[m.Slug] = m
	}
	return out, nil
}

// classifyFeature classifies one feature against the full project
// snapshot.
func (a *app) classifyFeature(ctx context.Context, slug string) (*domain.Classification, error) {
	f, err := a.store.LoadFeature(ctx, slug)
	if err != nil {
		return nil, err
	}
	state, err := a.store.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	features, err := a.loadFeatureMap(ctx)
	if err != nil {
		return nil, err
	}

	return classify.New().Classify(&classify.EvalContext{
		Feature: f,
		State:   state,
		Config:  a.config,
		Deps:    features,
	}), nil
}

// saveFeatureAndState persists a mutated feature together with a state
// history entry. State save failures are reported but do not roll back
// the feature write; the two documents are independently atomic.
func (a *app) saveFeatureAndState(ctx context.Context, f *domain.Feature, event, detail string) error {
	if err := a.store.SaveFeature(ctx, f); err != nil {
		return err
	}

	state, err := a.store.LoadState(ctx)
	if err != nil {
		return err
	}
	state.AppendHistory(f.Slug, event, detail)
	return a.store.SaveState(ctx, state)
}
