// Package classify implements the rule-based next-action classifier.
//
// A Classifier evaluates an ordered rule list over a read-only snapshot
// of a feature and the project state, and returns the first match as a
// fully populated Classification. The rule list always ends with an
// unconditional fallback, so classification is total: every feature
// gets a directive, even if that directive is "done". The classifier
// never mutates its inputs and is safe for concurrent use.
package classify

import (
	"github.com/orchard9/sdlc/internal/config"
	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/domain"
)

// EvalContext is the read-only snapshot a classification is computed
// from. Deps carries the feature's declared dependencies, keyed by
// slug; a declared dependency absent from the map is treated as an
// unmet prerequisite.
type EvalContext struct {
	Feature *domain.Feature
	State   *domain.State
	Config  *config.Config
	Deps    map[string]*domain.Feature
}

// Rule is one entry in the classifier's ordered rule table. Build
// returns nil when the rule does not match; the first non-nil result
// wins.
type Rule struct {
	// Name identifies the rule in logs.
	Name string

	// Build evaluates the rule against the snapshot.
	Build func(ec *EvalContext) *domain.Classification
}

// Classifier evaluates the rule table in order.
type Classifier struct {
	rules []Rule
}

// New returns a classifier with the default rule table.
func New() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify returns the first matching directive for the feature. The
// trailing fallback rule guarantees a non-nil result.
func (c *Classifier) Classify(ec *EvalContext) *domain.Classification {
	for _, rule := range c.rules {
		if result := rule.Build(ec); result != nil {
			c.finish(ec, result)
			return result
		}
	}

	// Unreachable: defaultRules ends with an unconditional fallback.
	done := classificationFor(ec.Feature, constants.ActionDone, "no pending actions")
	c.finish(ec, done)
	return done
}

// finish fills the advisory cost hints from config.
func (c *Classifier) finish(ec *EvalContext, result *domain.Classification) {
	result.IsHeavy = result.Action.IsHeavy()
	if result.IsHeavy && ec.Config != nil {
		result.TimeoutMinutes = ec.Config.Agent.HeavyTimeoutMinutes
	}
}

// classificationFor seeds a Classification with the feature's identity.
func classificationFor(f *domain.Feature, action constants.Action, message string) *domain.Classification {
	return &domain.Classification{
		Feature:     f.Slug,
		Title:       f.Title,
		Description: f.Description,
		Phase:       f.Phase,
		Action:      action,
		Message:     message,
	}
}
