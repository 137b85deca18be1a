// Package wave plans dependency-respecting execution batches for a
// milestone. The planner classifies every member, surveys the milestone
// for gaps, and partitions the workable members into waves: a feature
// lands in the earliest wave where all of its dependencies are either
// released or scheduled in an earlier wave. The resulting plan is
// advisory and re-validated at execution time.
package wave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/orchard9/sdlc/internal/classify"
	"github.com/orchard9/sdlc/internal/clock"
	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// surveyWorkers bounds the classification fan-out.
const surveyWorkers = 4

// staleDraftAge is how long a drafted artifact may sit unapproved
// before the survey raises a warning gap.
const staleDraftAge = 7 * 24 * time.Hour

// Input is the read-only snapshot a plan is computed from. Features
// must contain every milestone member plus any feature a member depends
// on; a declared dependency absent from the map is a missing
// prerequisite.
type Input struct {
	Milestone *domain.Milestone
	Features  map[string]*domain.Feature
	State     *domain.State
	Config    *config.Config
}

// Planner computes wave plans.
type Planner struct {
	classifier *classify.Classifier
	clock      clock.Clock
	logger     zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock substitutes the time source.
func WithClock(c clock.Clock) Option {
	return func(p *Planner) { p.clock = c }
}

// WithLogger sets the planner's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// NewPlanner creates a planner with the default classifier.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		classifier: classify.New(),
		clock:      clock.RealClock{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan surveys the milestone and computes its wave plan.
func (p *Planner) Plan(ctx context.Context, in *Input) (*domain.WavePlan, error) {
	plan := &domain.WavePlan{
		Milestone:   in.Milestone.Slug,
		GeneratedAt: p.clock.Now().UTC(),
	}

	members := p.members(in)
	plan.ProjectPhase = deriveProjectPhase(members)

	classifications, err := p.classifyMembers(ctx, in, members)
	if err != nil {
		return nil, err
	}

	plan.Gaps = p.detectGaps(in, members, classifications)
	p.partition(in, members, classifications, plan)

	p.logger.Debug().
		Str("milestone", in.Milestone.Slug).
		Int("waves", len(plan.Waves)).
		Int("blocked", len(plan.Blocked)).
		Int("gaps", len(plan.Gaps)).
		Msg("wave plan computed")

	return plan, nil
}

// members resolves the milestone's member slugs to loaded features,
// preserving stored order. Unknown slugs are skipped here and reported
// as gaps by the survey.
func (p *Planner) members(in *Input) []*domain.Feature {
	out := make([]*domain.Feature, 0, len(in.Milestone.Features))
	for _, slug := range in.Milestone.Features {
		if f, ok := in.Features[slug]; ok {
			out = append(out, f)
		}
	}
	return out
}

// classifyMembers runs the classifier over every member with a bounded
// fan-out. Classification is pure, so members can be evaluated
// concurrently against the shared snapshot.
func (p *Planner) classifyMembers(ctx context.Context, in *Input, members []*domain.Feature) (map[string]*domain.Classification, error) {
	var mu sync.Mutex
	results := make(map[string]*domain.Classification, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(surveyWorkers)

	for _, member := range members {
		member := member
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := p.classifier.Classify(&classify.EvalContext{
				Feature: member,
				State:   in.State,
				Config:  in.Config,
				Deps:    in.Features,
			})
			mu.Lock()
			results[member.Slug] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// deriveProjectPhase maps the milestone's member phases onto the coarse
// project lifecycle stage. Later stages dominate earlier ones.
func deriveProjectPhase(members []*domain.Feature) constants.ProjectPhase {
	if len(members) == 0 {
		return constants.ProjectIdle
	}

	var executing, verifying, planning, pondering bool
	allReleased := true
	for _, m := range members {
		if m.Archived {
			continue
		}
		if m.Phase != constants.PhaseReleased {
			allReleased = false
		}
		switch m.Phase {
		case constants.PhaseImplementation:
			executing = true
		case constants.PhaseReview, constants.PhaseAudit, constants.PhaseQA, constants.PhaseMerge:
			verifying = true
		case constants.PhasePlanned, constants.PhaseReady:
			planning = true
		case constants.PhaseDraft, constants.PhaseSpecified:
			pondering = true
		}
	}

	switch {
	case allReleased:
		return constants.ProjectIdle
	case executing:
		return constants.ProjectExecuting
	case verifying:
		return constants.ProjectVerifying
	case planning:
		return constants.ProjectPlanning
	case pondering:
		return constants.ProjectPondering
	default:
		return constants.ProjectIdle
	}
}

// detectGaps surveys the milestone for planning problems.
func (p *Planner) detectGaps(in *Input, members []*domain.Feature, classifications map[string]*domain.Classification) []domain.Gap {
	var gaps []domain.Gap

	// Milestone members that were never created.
	for _, slug := range in.Milestone.Features {
		if _, ok := in.Features[slug]; !ok {
			gaps = append(gaps, domain.Gap{
				Severity: domain.GapBlocker,
				Feature:  slug,
				Message:  fmt.Sprintf("milestone member %q does not exist", slug),
			})
		}
	}

	// Dependencies that point at nothing.
	for _, member := range members {
		for _, dep := range member.Dependencies {
			if _, ok := in.Features[dep]; !ok {
				gaps = append(gaps, domain.Gap{
					Severity: domain.GapBlocker,
					Feature:  member.Slug,
					Message:  fmt.Sprintf("missing prerequisite %q", dep),
				})
			}
		}
	}

	// Dependency cycles make any progress impossible for the cycle.
	for _, slug := range detectCycles(members, in.Features) {
		gaps = append(gaps, domain.Gap{
			Severity: domain.GapBlocker,
			Feature:  slug,
			Message:  "feature is part of a dependency cycle",
		})
	}

	now := p.clock.Now().UTC()
	for _, member := range members {
		if member.Archived {
			gaps = append(gaps, domain.Gap{
				Severity: domain.GapInfo,
				Feature:  member.Slug,
				Message:  "archived member excluded from planning",
			})
			continue
		}

		// Long-pending drafts stall their feature silently.
		c := classifications[member.Slug]
		if c == nil || c.Action != constants.ActionWaitForApproval {
			continue
		}
		for _, artifact := range member.Artifacts {
			if artifact.Status != constants.ArtifactStatusDraft || artifact.CreatedAt == nil {
				continue
			}
			if now.Sub(*artifact.CreatedAt) >= staleDraftAge {
				gaps = append(gaps, domain.Gap{
					Severity: domain.GapWarning,
					Feature:  member.Slug,
					Message:  fmt.Sprintf("artifact %s has awaited approval since %s", artifact.Type, artifact.CreatedAt.Format("2006-01-02")),
				})
			}
		}
	}

	return gaps
}
