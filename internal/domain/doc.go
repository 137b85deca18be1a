// Package domain provides the data model and state machines of the sdlc
// engine: Feature, Artifact, Task, Comment, Milestone, the global State
// document, and the transient Classification / gate types.
//
// Mutation methods enforce the lifecycle invariants: phase transitions
// are all-or-nothing, artifact mutators are total, task ids are strictly
// increasing, and comment ids are never reused. No method here touches
// the filesystem; persistence belongs to internal/store.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All YAML field names use snake_case.
package domain

import "time"

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now
