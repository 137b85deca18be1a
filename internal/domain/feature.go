package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// slugRegex matches valid entity slugs: lowercase alphanumeric plus
// hyphen, no leading or trailing hyphen, 1-64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?$`)

// ValidateSlug reports whether s is a legal feature or milestone slug.
func ValidateSlug(s string) error {
	if s == "" {
		return fmt.Errorf("slug %w", sdlcerrors.ErrEmptyValue)
	}
	if len(s) > constants.SlugMaxLen || !slugRegex.MatchString(s) {
		return fmt.Errorf("%w: %q must be lowercase alphanumeric with hyphens, 1-%d chars",
			sdlcerrors.ErrInvalidSlug, s, constants.SlugMaxLen)
	}
	return nil
}

// Feature is the unit of work tracked through the pipeline.
//
// Invariants:
//   - Slug never changes after creation.
//   - PhaseHistory always has exactly one open entry (no exited_at)
//     matching Phase; every transition closes the old entry and appends
//     a new one.
//   - NextCommentSeq only ever increases, so comment ids are never
//     reused even after a comment is resolved.
type Feature struct {
	// Slug is the immutable unique identifier.
	Slug string `yaml:"slug"`

	// Title is the human-readable name.
	Title string `yaml:"title"`

	// Description is an optional longer summary.
	Description string `yaml:"description,omitempty"`

	// Phase is the current lifecycle phase.
	Phase constants.Phase `yaml:"phase"`

	// Artifacts holds one slot per artifact type, in canonical order.
	Artifacts []Artifact `yaml:"artifacts"`

	// Tasks is the ordered task list. Ids are T1, T2, ... by creation
	// order and are never reused.
	Tasks []Task `yaml:"tasks,omitempty"`

	// Comments is the ordered comment list.
	Comments []Comment `yaml:"comments,omitempty"`

	// Blockers is a free-text list of known impediments.
	Blockers []string `yaml:"blockers,omitempty"`

	// Dependencies lists slugs of features that must be released before
	// this one may enter a wave.
	Dependencies []string `yaml:"dependencies,omitempty"`

	// PhaseHistory records every phase the feature has entered.
	PhaseHistory []PhaseRecord `yaml:"phase_history"`

	// Archived excludes the feature from classification and planning.
	Archived bool `yaml:"archived,omitempty"`

	// NextCommentSeq is the monotonic counter backing comment ids.
	NextCommentSeq int `yaml:"next_comment_seq"`

	// CreatedAt is when the feature was created.
	CreatedAt time.Time `yaml:"created_at"`

	// UpdatedAt is when the feature was last modified.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// PhaseRecord is one entry of a feature's phase history.
type PhaseRecord struct {
	// Phase the feature entered.
	Phase constants.Phase `yaml:"phase"`

	// EnteredAt is when the phase began.
	EnteredAt time.Time `yaml:"entered_at"`

	// ExitedAt is when the phase ended; nil for the open entry.
	ExitedAt *time.Time `yaml:"exited_at,omitempty"`
}

// NewFeature creates a feature in the draft phase with a full artifact
// slot list and an open phase-history entry.
func NewFeature(slug, title string) (*Feature, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("title %w", sdlcerrors.ErrEmptyValue)
	}

	now := timeNow().UTC()
	types := constants.ArtifactTypes()
	artifacts := make([]Artifact, 0, len(types))
	for _, t := range types {
		artifacts = append(artifacts, Artifact{
			Type:   t,
			Status: constants.ArtifactStatusMissing,
		})
	}

	return &Feature{
		Slug:      slug,
		Title:     title,
		Phase:     constants.PhaseDraft,
		Artifacts: artifacts,
		PhaseHistory: []PhaseRecord{
			{Phase: constants.PhaseDraft, EnteredAt: now},
		},
		NextCommentSeq: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Artifact returns the artifact slot for the given type, or nil when
// the type is outside the closed set.
func (f *Feature) Artifact(t constants.ArtifactType) *Artifact {
	for i := range f.Artifacts {
		if f.Artifacts[i].Type == t {
			return &f.Artifacts[i]
		}
	}
	return nil
}

// Transition moves the feature to target. It succeeds only when target
// is the immediate next pipeline phase and every artifact in required is
// in an approved-equivalent status. On success it closes the open
// phase-history entry and opens one for target. On failure the feature
// is byte-for-byte unchanged.
func (f *Feature) Transition(target constants.Phase, required []constants.ArtifactType) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %q", sdlcerrors.ErrInvalidPhase, target)
	}
	next, ok := f.Phase.Next()
	if !ok {
		return &sdlcerrors.InvalidTransitionError{
			From:   f.Phase.String(),
			To:     target.String(),
			Reason: "phase is terminal",
		}
	}
	if target != next {
		return &sdlcerrors.InvalidTransitionError{
			From:   f.Phase.String(),
			To:     target.String(),
			Reason: fmt.Sprintf("only %s follows %s", next, f.Phase),
		}
	}
	for _, t := range required {
		a := f.Artifact(t)
		if a == nil {
			return &sdlcerrors.InvalidTransitionError{
				From:   f.Phase.String(),
				To:     target.String(),
				Reason: fmt.Sprintf("unknown required artifact %q", t),
			}
		}
		if !a.SatisfiesExit() {
			return &sdlcerrors.InvalidTransitionError{
				From:   f.Phase.String(),
				To:     target.String(),
				Reason: fmt.Sprintf("artifact %s is %s, not approved", t, a.Status),
			}
		}
	}

	now := timeNow().UTC()
	for i := range f.PhaseHistory {
		if f.PhaseHistory[i].ExitedAt == nil {
			exited := now
			f.PhaseHistory[i].ExitedAt = &exited
		}
	}
	f.PhaseHistory = append(f.PhaseHistory, PhaseRecord{Phase: target, EnteredAt: now})
	f.Phase = target
	f.UpdatedAt = now
	return nil
}

// TryAutoTransition re-evaluates the exit criteria of the current phase
// and advances one step when they are satisfied. It is invoked after
// every artifact mutation so the "did enough happen to advance" logic
// lives in one place.
//
// Phases whose exit requires no artifacts (ready, implementation, merge)
// never auto-advance; those transitions are driven by explicit actions.
// The second return value reports whether a transition happened.
func (f *Feature) TryAutoTransition(required func(constants.Phase) []constants.ArtifactType) (constants.Phase, bool) {
	reqs := required(f.Phase)
	if len(reqs) == 0 {
		return f.Phase, false
	}
	next, ok := f.Phase.Next()
	if !ok {
		return f.Phase, false
	}
	for _, t := range reqs {
		a := f.Artifact(t)
		if a == nil || !a.SatisfiesExit() {
			return f.Phase, false
		}
	}
	// Criteria met; Transition cannot fail here.
	if err := f.Transition(next, reqs); err != nil {
		return f.Phase, false
	}
	return f.Phase, true
}

// CurrentPhaseRecord returns the open phase-history entry.
func (f *Feature) CurrentPhaseRecord() *PhaseRecord {
	for i := range f.PhaseHistory {
		if f.PhaseHistory[i].ExitedAt == nil {
			return &f.PhaseHistory[i]
		}
	}
	return nil
}

// BlockerComments returns the unresolved blocker comments on the feature.
func (f *Feature) BlockerComments() []Comment {
	var out []Comment
	for _, c := range f.Comments {
		if c.Flag == constants.CommentFlagBlocker {
			out = append(out, c)
		}
	}
	return out
}

// Archive marks the feature archived; classification and planning skip it.
func (f *Feature) Archive() {
	f.Archived = true
	f.UpdatedAt = timeNow().UTC()
}

// AddDependency records a dependency on another feature's slug.
// Adding an existing dependency is a no-op.
func (f *Feature) AddDependency(slug string) error {
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	if slug == f.Slug {
		return fmt.Errorf("%w: feature cannot depend on itself", sdlcerrors.ErrInvalidSlug)
	}
	for _, d := range f.Dependencies {
		if d == slug {
			return nil
		}
	}
	f.Dependencies = append(f.Dependencies, slug)
	f.UpdatedAt = timeNow().UTC()
	return nil
}

// Touch bumps the updated timestamp. Callers that mutate fields directly
// (title, description, blockers) use this before persisting.
func (f *Feature) Touch() {
	f.UpdatedAt = timeNow().UTC()
}
