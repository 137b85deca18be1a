// Package focus selects the single highest-priority directive across
// the whole project: milestones in stored order first, each milestone's
// members in stored order, then the active-feature list as a fallback.
// The first actionable classification wins.
package focus

import (
	"github.com/rs/zerolog"

	"github.com/orchard9/sdlc/internal/classify"
	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// Input is the read-only project snapshot the selector walks. Features
// must contain every milestone member, every active feature, and any
// feature one of them depends on.
type Input struct {
	State      *domain.State
	Milestones map[string]*domain.Milestone
	Features   map[string]*domain.Feature
	Config     *config.Config
}

// Selector picks the next feature to work on.
type Selector struct {
	classifier *classify.Classifier
	logger     zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the selector's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Selector) { s.logger = logger }
}

// NewSelector creates a selector with the default classifier.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		classifier: classify.New(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the first actionable directive, or nil when every
// feature across both passes is terminal, human-gated, or
// dependency-gated. Milestone hits carry their position annotation.
func (s *Selector) Select(in *Input) *domain.Classification {
	visited := make(map[string]bool)

	for _, milestoneSlug := range in.State.Milestones {
		milestone, ok := in.Milestones[milestoneSlug]
		if !ok || milestone.Status != constants.MilestoneStatusActive {
			continue
		}

		for position, slug := range milestone.Features {
			visited[slug] = true
			result := s.classifyFeature(in, slug)
			if result == nil || !result.Actionable() {
				continue
			}
			result.Milestone = &domain.MilestoneRef{
				Slug:     milestone.Slug,
				Position: position + 1,
				Total:    len(milestone.Features),
			}
			s.logger.Debug().
				Str("feature", slug).
				Str("milestone", milestone.Slug).
				Str("action", result.Action.String()).
				Msg("focus selected from milestone")
			return result
		}
	}

	for _, slug := range in.State.ActiveFeatures {
		if visited[slug] {
			continue
		}
		result := s.classifyFeature(in, slug)
		if result == nil || !result.Actionable() {
			continue
		}
		s.logger.Debug().
			Str("feature", slug).
			Str("action", result.Action.String()).
			Msg("focus selected from active features")
		return result
	}

	return nil
}

// classifyFeature classifies one slug, skipping unknown and archived
// features.
func (s *Selector) classifyFeature(in *Input, slug string) *domain.Classification {
	f, ok := in.Features[slug]
	if !ok || f.Archived {
		return nil
	}
	return s.classifier.Classify(&classify.EvalContext{
		Feature: f,
		State:   in.State,
		Config:  in.Config,
		Deps:    in.Features,
	})
}
