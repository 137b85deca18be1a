package wave

import (
	"fmt"
	"sort"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// partition splits the milestone's workable members into waves and
// fills the plan's blocked list and next commands. A feature joins the
// earliest wave where every dependency is released or already assigned
// to an earlier wave; members with no schedulable wave land in the
// blocked list instead.
func (p *Planner) partition(in *Input, members []*domain.Feature, classifications map[string]*domain.Classification, plan *domain.WavePlan) {
	cycles := make(map[string]bool)
	for _, slug := range detectCycles(members, in.Features) {
		cycles[slug] = true
	}

	blockedReason := make(map[string]string)
	candidates := make([]*domain.Feature, 0, len(members))

	for _, member := range members {
		if member.Archived {
			continue
		}

		if blockers := member.BlockerComments(); len(blockers) > 0 {
			blockedReason[member.Slug] = fmt.Sprintf("blocker comment %s: %s", blockers[0].ID, blockers[0].Body)
			continue
		}
		if reason, blocked := in.State.BlockReason(member.Slug); blocked {
			blockedReason[member.Slug] = reason
			continue
		}
		if cycles[member.Slug] {
			blockedReason[member.Slug] = "dependency cycle"
			continue
		}
		if missing := missingDependency(member, in.Features); missing != "" {
			blockedReason[member.Slug] = fmt.Sprintf("missing prerequisite %q", missing)
			continue
		}

		c := classifications[member.Slug]
		if c == nil || c.Action == constants.ActionDone || c.Action == constants.ActionWaitForApproval {
			continue
		}
		candidates = append(candidates, member)
	}

	waveOf := make(map[string]int)
	remaining := candidates

	for waveNumber := 1; len(remaining) > 0; waveNumber++ {
		placed := make([]*domain.Feature, 0, len(remaining))
		deferred := make([]*domain.Feature, 0, len(remaining))

		for _, member := range remaining {
			if dependenciesSatisfied(member, in.Features, waveOf, waveNumber) {
				placed = append(placed, member)
			} else {
				deferred = append(deferred, member)
			}
		}

		// No progress: every remaining member waits on something that
		// will never be scheduled in this plan.
		if len(placed) == 0 {
			for _, member := range remaining {
				blockedReason[member.Slug] = "dependencies cannot be scheduled"
			}
			break
		}

		for _, member := range placed {
			waveOf[member.Slug] = waveNumber
		}

		wave := domain.Wave{Number: waveNumber}
		needsWorktree := len(placed) >= 2
		for _, member := range placed {
			c := classifications[member.Slug]
			wave.Items = append(wave.Items, domain.WaveItem{
				Feature:       member.Slug,
				Phase:         member.Phase,
				Action:        c.Action,
				BlockedBy:     inFlightDependencies(member, in.Features),
				NeedsWorktree: needsWorktree,
			})
		}
		plan.Waves = append(plan.Waves, wave)

		remaining = deferred
	}

	for _, member := range members {
		if reason, ok := blockedReason[member.Slug]; ok {
			plan.Blocked = append(plan.Blocked, domain.BlockedFeature{Feature: member.Slug, Reason: reason})
		}
	}

	plan.NextCommands = nextCommands(plan, classifications)
}

// dependenciesSatisfied reports whether every dependency is released or
// assigned to an earlier wave.
func dependenciesSatisfied(f *domain.Feature, features map[string]*domain.Feature, waveOf map[string]int, waveNumber int) bool {
	for _, dep := range f.Dependencies {
		if depFeature, ok := features[dep]; ok && depFeature.Phase == constants.PhaseReleased {
			continue
		}
		if assigned, ok := waveOf[dep]; ok && assigned < waveNumber {
			continue
		}
		return false
	}
	return true
}

// inFlightDependencies lists dependencies that are scheduled but not
// yet released.
func inFlightDependencies(f *domain.Feature, features map[string]*domain.Feature) []string {
	var out []string
	for _, dep := range f.Dependencies {
		if depFeature, ok := features[dep]; ok && depFeature.Phase == constants.PhaseReleased {
			continue
		}
		out = append(out, dep)
	}
	return out
}

// missingDependency returns the first declared dependency with no
// loaded feature, or empty.
func missingDependency(f *domain.Feature, features map[string]*domain.Feature) string {
	for _, dep := range f.Dependencies {
		if _, ok := features[dep]; !ok {
			return dep
		}
	}
	return ""
}

// nextCommands flattens the first wave's suggested invocations,
// deduplicated in item order.
func nextCommands(plan *domain.WavePlan, classifications map[string]*domain.Classification) []string {
	if len(plan.Waves) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, item := range plan.Waves[0].Items {
		c := classifications[item.Feature]
		if c == nil || c.NextCommand == "" || seen[c.NextCommand] {
			continue
		}
		seen[c.NextCommand] = true
		out = append(out, c.NextCommand)
	}
	return out
}

// detectCycles returns the slugs of members involved in dependency
// cycles, sorted. Edges to unknown features are skipped: a missing
// prerequisite is reported separately and is never a cycle.
func detectCycles(members []*domain.Feature, features map[string]*domain.Feature) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	inCycle := make(map[string]bool)

	var visit func(slug string, stack []string)
	visit = func(slug string, stack []string) {
		visited[slug] = true
		onStack[slug] = true
		stack = append(stack, slug)

		if f, ok := features[slug]; ok {
			for _, dep := range f.Dependencies {
				if _, exists := features[dep]; !exists {
					continue
				}
				if !visited[dep] {
					visit(dep, stack)
				} else if onStack[dep] {
					// Everything from dep to the stack top is cyclic.
					for i := len(stack) - 1; i >= 0; i-- {
						inCycle[stack[i]] = true
						if stack[i] == dep {
							break
						}
					}
				}
			}
		}

		onStack[slug] = false
	}

	for _, member := range members {
		if !visited[member.Slug] {
			visit(member.Slug, nil)
		}
	}

	out := make([]string, 0, len(inCycle))
	for slug := range inCycle {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
