package domain

import (
	"fmt"
	"time"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// CommentTargetKind distinguishes what a comment is attached to.
type CommentTargetKind string

// Comment target kinds.
const (
	// TargetFeature attaches the comment to the feature as a whole.
	TargetFeature CommentTargetKind = "feature"

	// TargetTask attaches the comment to one task (TargetID holds T<n>).
	TargetTask CommentTargetKind = "task"

	// TargetArtifact attaches the comment to one artifact (TargetID
	// holds the artifact type).
	TargetArtifact CommentTargetKind = "artifact"
)

// CommentTarget identifies what a comment is attached to.
type CommentTarget struct {
	// Kind is the target category.
	Kind CommentTargetKind `yaml:"kind"`

	// TargetID is the task id or artifact type; empty for feature targets.
	TargetID string `yaml:"target_id,omitempty"`
}

// Comment is a flagged remark attached to a feature, task, or artifact.
// A comment flagged Blocker halts classification of the feature until
// it is resolved.
type Comment struct {
	// ID is the sequential identifier C1, C2, ... drawn from the
	// feature's own counter. Ids are never reused, even after resolve.
	ID string `yaml:"id"`

	// Flag classifies the comment; empty means a plain remark.
	Flag constants.CommentFlag `yaml:"flag,omitempty"`

	// Target is what the comment is attached to.
	Target CommentTarget `yaml:"target"`

	// Author identifies who wrote the comment.
	Author string `yaml:"author"`

	// Body is the comment text.
	Body string `yaml:"body"`

	// CreatedAt is when the comment was written.
	CreatedAt time.Time `yaml:"created_at"`
}

// AddComment appends a comment and returns its id. The feature's
// persistent counter is incremented before the id is formatted, so
// resolved comments never cause id reuse.
func (f *Feature) AddComment(flag constants.CommentFlag, target CommentTarget, author, body string) (string, error) {
	if !flag.IsValid() {
		return "", fmt.Errorf("%w: %q", sdlcerrors.ErrInvalidFlag, flag)
	}
	if body == "" {
		return "", fmt.Errorf("comment body %w", sdlcerrors.ErrEmptyValue)
	}
	switch target.Kind {
	case TargetFeature:
	case TargetTask:
		if f.task(target.TargetID) == nil {
			return "", fmt.Errorf("task %q: %w", target.TargetID, sdlcerrors.ErrTaskNotFound)
		}
	case TargetArtifact:
		t, ok := constants.ParseArtifactType(target.TargetID)
		if !ok || f.Artifact(t) == nil {
			return "", fmt.Errorf("%w: %q", sdlcerrors.ErrArtifactUnknown, target.TargetID)
		}
	default:
		return "", fmt.Errorf("%w: comment target kind %q", sdlcerrors.ErrInvalidFlag, target.Kind)
	}

	if f.NextCommentSeq < 1 {
		f.NextCommentSeq = 1
	}
	seq := f.NextCommentSeq
	f.NextCommentSeq++

	id := fmt.Sprintf("C%d", seq)
	f.Comments = append(f.Comments, Comment{
		ID:        id,
		Flag:      flag,
		Target:    target,
		Author:    author,
		Body:      body,
		CreatedAt: timeNow().UTC(),
	})
	f.UpdatedAt = timeNow().UTC()
	return id, nil
}

// ResolveComment removes the comment with the given id and reports
// whether anything was removed. The id is retired permanently; the
// counter never rolls back.
func (f *Feature) ResolveComment(id string) bool {
	for i := range f.Comments {
		if f.Comments[i].ID == id {
			f.Comments = append(f.Comments[:i], f.Comments[i+1:]...)
			f.UpdatedAt = timeNow().UTC()
			return true
		}
	}
	return false
}
