package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchard9/sdlc/internal/constants"
)

func TestStateWorkRecords(t *testing.T) {
	s := NewState("demo")

	s.BeginWork("auth", constants.ActionCreateSpec, 30)
	require.Len(t, s.InFlight, 1)
	assert.Equal(t, 30, s.InFlight[0].TimeoutMinutes)

	// Re-dispatching replaces the prior record instead of stacking.
	s.BeginWork("auth", constants.ActionCreateDesign, 0)
	require.Len(t, s.InFlight, 1)
	assert.Equal(t, constants.ActionCreateDesign, s.InFlight[0].Action)

	s.EndWork("auth")
	assert.Empty(t, s.InFlight)
	s.EndWork("auth")
	assert.Empty(t, s.InFlight)
}

func TestStateBlocking(t *testing.T) {
	s := NewState("demo")

	s.Block("auth", "legal review pending")
	reason, blocked := s.BlockReason("auth")
	require.True(t, blocked)
	assert.Equal(t, "legal review pending", reason)

	s.Block("auth", "updated reason")
	require.Len(t, s.Blocked, 1)
	reason, _ = s.BlockReason("auth")
	assert.Equal(t, "updated reason", reason)

	assert.True(t, s.Unblock("auth"))
	assert.False(t, s.Unblock("auth"))
	_, blocked = s.BlockReason("auth")
	assert.False(t, blocked)
}

func TestStateHistoryCapped(t *testing.T) {
	s := NewState("demo")

	for i := 0; i < constants.HistoryCap+25; i++ {
		s.AppendHistory("auth", "event", fmt.Sprintf("%d", i))
	}

	require.Len(t, s.History, constants.HistoryCap)
	assert.Equal(t, "24", s.History[0].Detail, "oldest entries are trimmed first")
	assert.Equal(t, fmt.Sprintf("%d", constants.HistoryCap+24), s.History[len(s.History)-1].Detail)
}

func TestStateOrderedLists(t *testing.T) {
	s := NewState("demo")

	s.AddActiveFeature("auth")
	s.AddActiveFeature("core")
	s.AddActiveFeature("auth")
	assert.Equal(t, []string{"auth", "core"}, s.ActiveFeatures)

	s.AddMilestone("m2")
	s.AddMilestone("m1")
	s.AddMilestone("m2")
	assert.Equal(t, []string{"m2", "m1"}, s.Milestones)
}
