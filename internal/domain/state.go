package domain

import (
	"time"

	"github.com/orchard9/sdlc/internal/constants"
)

// State is the process-wide project document: one per project, created
// at init. Every mutating core operation bumps LastUpdated; history is
// trimmed to the most recent constants.HistoryCap entries on write.
type State struct {
	// Project is the project name.
	Project string `yaml:"project"`

	// ActiveFeatures lists feature slugs currently being worked, in
	// insertion order. The focus selector falls back to this list when
	// no milestone yields a directive.
	ActiveFeatures []string `yaml:"active_features,omitempty"`

	// InFlight records actions that were dispatched and have not yet
	// been reported complete.
	InFlight []WorkRecord `yaml:"in_flight,omitempty"`

	// History is the capped action log, oldest first.
	History []HistoryEntry `yaml:"history,omitempty"`

	// Blocked records features halted at the project level.
	Blocked []BlockRecord `yaml:"blocked,omitempty"`

	// Milestones lists milestone slugs in priority order. The focus
	// selector and wave planner walk this order.
	Milestones []string `yaml:"milestones,omitempty"`

	// LastUpdated is bumped by every mutating core operation.
	LastUpdated time.Time `yaml:"last_updated"`
}

// WorkRecord is one in-flight action dispatch.
type WorkRecord struct {
	// Feature is the feature slug being worked.
	Feature string `yaml:"feature"`

	// Action is the dispatched classifier action.
	Action constants.Action `yaml:"action"`

	// StartedAt is when the dispatch happened.
	StartedAt time.Time `yaml:"started_at"`

	// TimeoutMinutes is the advisory timeout the dispatcher applied.
	TimeoutMinutes int `yaml:"timeout_minutes,omitempty"`
}

// HistoryEntry is one line of the capped action log.
type HistoryEntry struct {
	// At is when the event happened.
	At time.Time `yaml:"at"`

	// Feature is the feature slug involved, if any.
	Feature string `yaml:"feature,omitempty"`

	// Event is a short machine-readable event name.
	Event string `yaml:"event"`

	// Detail is free-text context.
	Detail string `yaml:"detail,omitempty"`
}

// BlockRecord is one project-level feature block.
type BlockRecord struct {
	// Feature is the blocked feature slug.
	Feature string `yaml:"feature"`

	// Reason explains the block.
	Reason string `yaml:"reason"`

	// Since is when the block was recorded.
	Since time.Time `yaml:"since"`
}

// NewState creates the initial project state.
func NewState(project string) *State {
	return &State{
		Project:     project,
		LastUpdated: timeNow().UTC(),
	}
}

// AddActiveFeature appends slug to the active list; a no-op when the
// slug is already present.
func (s *State) AddActiveFeature(slug string) {
	for _, f := range s.ActiveFeatures {
		if f == slug {
			return
		}
	}
	s.ActiveFeatures = append(s.ActiveFeatures, slug)
	s.LastUpdated = timeNow().UTC()
}

// AddMilestone appends slug to the milestone order; a no-op when the
// slug is already present.
func (s *State) AddMilestone(slug string) {
	for _, m := range s.Milestones {
		if m == slug {
			return
		}
	}
	s.Milestones = append(s.Milestones, slug)
	s.LastUpdated = timeNow().UTC()
}

// BeginWork records an in-flight action dispatch, replacing any prior
// record for the same feature.
func (s *State) BeginWork(feature string, action constants.Action, timeoutMinutes int) {
	s.EndWork(feature)
	s.InFlight = append(s.InFlight, WorkRecord{
		Feature:        feature,
		Action:         action,
		StartedAt:      timeNow().UTC(),
		TimeoutMinutes: timeoutMinutes,
	})
	s.LastUpdated = timeNow().UTC()
}

// EndWork removes the in-flight record for feature, if any.
func (s *State) EndWork(feature string) {
	for i := range s.InFlight {
		if s.InFlight[i].Feature == feature {
			s.InFlight = append(s.InFlight[:i], s.InFlight[i+1:]...)
			s.LastUpdated = timeNow().UTC()
			return
		}
	}
}

// AppendHistory records an event and trims the log to the newest
// constants.HistoryCap entries.
func (s *State) AppendHistory(feature, event, detail string) {
	s.History = append(s.History, HistoryEntry{
		At:      timeNow().UTC(),
		Feature: feature,
		Event:   event,
		Detail:  detail,
	})
	if overflow := len(s.History) - constants.HistoryCap; overflow > 0 {
		s.History = append([]HistoryEntry(nil), s.History[overflow:]...)
	}
	s.LastUpdated = timeNow().UTC()
}

// Block records a project-level block for feature, replacing any prior
// record for the same feature.
func (s *State) Block(feature, reason string) {
	s.Unblock(feature)
	s.Blocked = append(s.Blocked, BlockRecord{
		Feature: feature,
		Reason:  reason,
		Since:   timeNow().UTC(),
	})
	s.LastUpdated = timeNow().UTC()
}

// Unblock removes the block record for feature and reports whether one
// existed.
func (s *State) Unblock(feature string) bool {
	for i := range s.Blocked {
		if s.Blocked[i].Feature == feature {
			s.Blocked = append(s.Blocked[:i], s.Blocked[i+1:]...)
			s.LastUpdated = timeNow().UTC()
			return true
		}
	}
	return false
}

// BlockReason returns the project-level block reason for feature, and
// whether the feature is blocked.
func (s *State) BlockReason(feature string) (string, bool) {
	for _, b := range s.Blocked {
		if b.Feature == feature {
			return b.Reason, true
		}
	}
	return "", false
}
