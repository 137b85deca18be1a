package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

func TestNewMilestone(t *testing.T) {
	m, err := NewMilestone("mvp", "Minimum viable product")
	require.NoError(t, err)
	assert.Equal(t, constants.MilestoneStatusActive, m.Status)
	assert.Empty(t, m.Features)

	_, err = NewMilestone("mvp", "")
	assert.ErrorIs(t, err, sdlcerrors.ErrEmptyValue)

	_, err = NewMilestone("Bad Slug", "title")
	assert.ErrorIs(t, err, sdlcerrors.ErrInvalidSlug)
}

func TestMilestoneMembers(t *testing.T) {
	m, err := NewMilestone("mvp", "Minimum viable product")
	require.NoError(t, err)

	require.NoError(t, m.AddFeature("core"))
	require.NoError(t, m.AddFeature("auth"))
	require.NoError(t, m.AddFeature("core"))
	assert.Equal(t, []string{"core", "auth"}, m.Features, "order is insertion order, duplicates ignored")

	assert.True(t, m.Contains("auth"))
	assert.False(t, m.Contains("billing"))

	assert.ErrorIs(t, m.AddFeature("Bad Slug"), sdlcerrors.ErrInvalidSlug)
}
