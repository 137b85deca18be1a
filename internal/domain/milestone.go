package domain

import (
	"fmt"
	"time"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// Milestone groups features into an ordered, independently plannable
// unit of delivery. Member order matters: the focus selector walks
// features in stored order.
type Milestone struct {
	// Slug is the immutable unique identifier.
	Slug string `yaml:"slug"`

	// Title is the human-readable name.
	Title string `yaml:"title"`

	// Description is an optional longer summary.
	Description string `yaml:"description,omitempty"`

	// Features is the ordered list of member feature slugs.
	Features []string `yaml:"features,omitempty"`

	// Status is the milestone lifecycle state.
	Status constants.MilestoneStatus `yaml:"status"`

	// CreatedAt is when the milestone was created.
	CreatedAt time.Time `yaml:"created_at"`

	// UpdatedAt is when the milestone was last modified.
	UpdatedAt time.Time `yaml:"updated_at"`
}

// NewMilestone creates an active milestone with no members.
func NewMilestone(slug, title string) (*Milestone, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("title %w", sdlcerrors.ErrEmptyValue)
	}
	now := timeNow().UTC()
	return &Milestone{
		Slug:      slug,
		Title:     title,
		Status:    constants.MilestoneStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddFeature appends a member feature slug. Adding an existing member
// is a no-op.
func (m *Milestone) AddFeature(slug string) error {
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	for _, s := range m.Features {
		if s == slug {
			return nil
		}
	}
	m.Features = append(m.Features, slug)
	m.UpdatedAt = timeNow().UTC()
	return nil
}

// Contains reports whether slug is a member of the milestone.
func (m *Milestone) Contains(slug string) bool {
	for _, s := range m.Features {
		if s == slug {
			return true
		}
	}
	return false
}
