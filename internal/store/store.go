// Package store provides persistence for the sdlc entity documents.
// It implements a file-per-entity layout under the project-local .sdlc
// directory with atomic write-replace semantics and advisory file
// locking around each entity's load/mutate/save window.
//
// The store is a pure I/O boundary: it never inspects or mutates the
// business state of the documents it moves.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/ctxutil"
	"github.com/orchard9/sdlc/internal/domain"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// LockTimeout is the maximum duration to wait for acquiring a file lock.
const LockTimeout = 5 * time.Second

// lockPollInterval is how often lock acquisition is retried.
const lockPollInterval = 50 * time.Millisecond

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// FileStore persists entities under <root>/.sdlc. There is no
// cross-entity transaction: each Save is individually atomic and
// individually locked, and multi-entity reads see no snapshot.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at the given project directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the project root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Initialized reports whether the .sdlc directory exists.
func (s *FileStore) Initialized() bool {
	info, err := os.Stat(s.projectDir())
	return err == nil && info.IsDir()
}

// Init creates the .sdlc layout and writes the initial State document.
// Returns ErrAlreadyInitialized when the layout already exists.
func (s *FileStore) Init(ctx context.Context, state *domain.State) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if s.Initialized() {
		return fmt.Errorf("%s: %w", s.projectDir(), sdlcerrors.ErrAlreadyInitialized)
	}
	for _, dir := range []string{
		s.projectDir(),
		filepath.Join(s.projectDir(), constants.FeaturesDir),
		filepath.Join(s.projectDir(), constants.MilestonesDir),
		filepath.Join(s.projectDir(), constants.LogsDir),
	} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s.SaveState(ctx, state)
}

// LoadState reads the State document.
func (s *FileStore) LoadState(ctx context.Context) (*domain.State, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	var state domain.State
	if err := s.loadDocument(ctx, s.statePath(), &state, sdlcerrors.ErrStateNotFound); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the State document atomically.
func (s *FileStore) SaveState(ctx context.Context, state *domain.State) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("state %w", sdlcerrors.ErrEmptyValue)
	}
	return s.saveDocument(ctx, s.statePath(), state)
}

// CreateFeature persists a new feature. Returns ErrFeatureExists when
// the slug is already taken.
func (s *FileStore) CreateFeature(ctx context.Context, f *domain.Feature) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("feature %w", sdlcerrors.ErrEmptyValue)
	}
	if err := domain.ValidateSlug(f.Slug); err != nil {
		return err
	}
	dir := s.featureDir(f.Slug)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("feature %q: %w", f.Slug, sdlcerrors.ErrFeatureExists)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create feature directory: %w", err)
	}
	return s.saveDocument(ctx, s.featurePath(f.Slug), f)
}

// LoadFeature reads a feature by slug.
func (s *FileStore) LoadFeature(ctx context.Context, slug string) (*domain.Feature, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, err
	}
	var f domain.Feature
	if err := s.loadDocument(ctx, s.featurePath(slug), &f, sdlcerrors.ErrFeatureNotFound); err != nil {
		return nil, sdlcerrors.Wrapf(err, "feature %q", slug)
	}
	return &f, nil
}

// SaveFeature writes an existing feature atomically. Returns
// ErrFeatureNotFound when the feature was never created.
func (s *FileStore) SaveFeature(ctx context.Context, f *domain.Feature) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("feature %w", sdlcerrors.ErrEmptyValue)
	}
	if _, err := os.Stat(s.featureDir(f.Slug)); os.IsNotExist(err) {
		return fmt.Errorf("feature %q: %w", f.Slug, sdlcerrors.ErrFeatureNotFound)
	}
	return s.saveDocument(ctx, s.featurePath(f.Slug), f)
}

// ListFeatures returns every persisted feature sorted by slug.
func (s *FileStore) ListFeatures(ctx context.Context) ([]*domain.Feature, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	return listEntities(ctx, s, filepath.Join(s.projectDir(), constants.FeaturesDir), s.LoadFeature)
}

// CreateMilestone persists a new milestone. Returns ErrMilestoneExists
// when the slug is already taken.
func (s *FileStore) CreateMilestone(ctx context.Context, m *domain.Milestone) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("milestone %w", sdlcerrors.ErrEmptyValue)
	}
	if err := domain.ValidateSlug(m.Slug); err != nil {
		return err
	}
	dir := s.milestoneDir(m.Slug)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("milestone %q: %w", m.Slug, sdlcerrors.ErrMilestoneExists)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create milestone directory: %w", err)
	}
	return s.saveDocument(ctx, s.milestonePath(m.Slug), m)
}

// LoadMilestone reads a milestone by slug.
func (s *FileStore) LoadMilestone(ctx context.Context, slug string) (*domain.Milestone, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, err
	}
	var m domain.Milestone
	if err := s.loadDocument(ctx, s.milestonePath(slug), &m, sdlcerrors.ErrMilestoneNotFound); err != nil {
		return nil, sdlcerrors.Wrapf(err, "milestone %q", slug)
	}
	return &m, nil
}

// SaveMilestone writes an existing milestone atomically.
func (s *FileStore) SaveMilestone(ctx context.Context, m *domain.Milestone) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("milestone %w", sdlcerrors.ErrEmptyValue)
	}
	if _, err := os.Stat(s.milestoneDir(m.Slug)); os.IsNotExist(err) {
		return fmt.Errorf("milestone %q: %w", m.Slug, sdlcerrors.ErrMilestoneNotFound)
	}
	return s.saveDocument(ctx, s.milestonePath(m.Slug), m)
}

// ListMilestones returns every persisted milestone sorted by slug.
func (s *FileStore) ListMilestones(ctx context.Context) ([]*domain.Milestone, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	return listEntities(ctx, s, filepath.Join(s.projectDir(), constants.MilestonesDir), s.LoadMilestone)
}

// SaveWavePlan writes the milestone-scoped wave plan document.
func (s *FileStore) SaveWavePlan(ctx context.Context, plan *domain.WavePlan) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("wave plan %w", sdlcerrors.ErrEmptyValue)
	}
	if _, err := os.Stat(s.milestoneDir(plan.Milestone)); os.IsNotExist(err) {
		return fmt.Errorf("milestone %q: %w", plan.Milestone, sdlcerrors.ErrMilestoneNotFound)
	}
	return s.saveDocument(ctx, s.wavePlanPath(plan.Milestone), plan)
}

// LoadWavePlan reads the last persisted wave plan for a milestone.
func (s *FileStore) LoadWavePlan(ctx context.Context, milestone string) (*domain.WavePlan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := domain.ValidateSlug(milestone); err != nil {
		return nil, err
	}
	var plan domain.WavePlan
	if err := s.loadDocument(ctx, s.wavePlanPath(milestone), &plan, sdlcerrors.ErrMilestoneNotFound); err != nil {
		return nil, sdlcerrors.Wrapf(err, "wave plan for %q", milestone)
	}
	return &plan, nil
}

// listEntities loads every manifest-bearing subdirectory of dir via load,
// sorted by slug. Subdirectories without a readable manifest are skipped.
func listEntities[T any](ctx context.Context, s *FileStore, dir string, load func(context.Context, string) (*T, error)) ([]*T, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*T{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]*T, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}
		e, err := load(ctx, entry.Name())
		if err != nil {
			// Skip directories without a valid manifest.
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Path helpers.

func (s *FileStore) projectDir() string {
	return filepath.Join(s.root, constants.ProjectDir)
}

func (s *FileStore) statePath() string {
	return filepath.Join(s.projectDir(), constants.StateFileName)
}

func (s *FileStore) featureDir(slug string) string {
	return filepath.Join(s.projectDir(), constants.FeaturesDir, slug)
}

func (s *FileStore) featurePath(slug string) string {
	return filepath.Join(s.featureDir(slug), constants.ManifestFileName)
}

func (s *FileStore) milestoneDir(slug string) string {
	return filepath.Join(s.projectDir(), constants.MilestonesDir, slug)
}

func (s *FileStore) milestonePath(slug string) string {
	return filepath.Join(s.milestoneDir(slug), constants.ManifestFileName)
}

func (s *FileStore) wavePlanPath(slug string) string {
	return filepath.Join(s.milestoneDir(slug), constants.WavePlanFileName)
}
