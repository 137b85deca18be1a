package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

func TestAddTask(t *testing.T) {
	f, err := NewFeature("auth", "Authentication")
	require.NoError(t, err)

	id1, err := f.AddTask("set up schema", nil)
	require.NoError(t, err)
	assert.Equal(t, "T1", id1)

	id2, err := f.AddTask("write handlers", []string{id1})
	require.NoError(t, err)
	assert.Equal(t, "T2", id2)

	_, err = f.AddTask("", nil)
	assert.ErrorIs(t, err, sdlcerrors.ErrEmptyValue)

	_, err = f.AddTask("dangling", []string{"T99"})
	assert.ErrorIs(t, err, sdlcerrors.ErrTaskNotFound)
}

func TestTaskLifecycle(t *testing.T) {
	f, err := NewFeature("auth", "Authentication")
	require.NoError(t, err)

	id, err := f.AddTask("set up schema", nil)
	require.NoError(t, err)

	require.NoError(t, f.StartTask(id))
	assert.Equal(t, constants.TaskStatusInProgress, f.Tasks[0].Status)
	assert.NotNil(t, f.Tasks[0].StartedAt)

	require.NoError(t, f.BlockTask(id, "waiting on credentials"))
	assert.Equal(t, constants.TaskStatusBlocked, f.Tasks[0].Status)
	assert.Equal(t, "waiting on credentials", f.Tasks[0].Blocker)

	// Restarting clears the blocker.
	require.NoError(t, f.StartTask(id))
	assert.Empty(t, f.Tasks[0].Blocker)

	require.NoError(t, f.CompleteTask(id))
	assert.Equal(t, constants.TaskStatusCompleted, f.Tasks[0].Status)
	assert.NotNil(t, f.Tasks[0].CompletedAt)

	assert.ErrorIs(t, f.StartTask("T99"), sdlcerrors.ErrTaskNotFound)
}

func TestNextTask(t *testing.T) {
	f, err := NewFeature("auth", "Authentication")
	require.NoError(t, err)

	t1, err := f.AddTask("schema", nil)
	require.NoError(t, err)
	t2, err := f.AddTask("handlers", []string{t1})
	require.NoError(t, err)
	_, err = f.AddTask("docs", []string{t2})
	require.NoError(t, err)

	next := NextTask(f.Tasks)
	require.NotNil(t, next)
	assert.Equal(t, t1, next.ID)

	require.NoError(t, f.CompleteTask(t1))
	next = NextTask(f.Tasks)
	require.NotNil(t, next)
	assert.Equal(t, t2, next.ID)

	require.NoError(t, f.BlockTask(t2, "stuck"))
	assert.Nil(t, NextTask(f.Tasks), "blocked task gates its dependents")

	assert.False(t, f.AllTasksCompleted())
}

func TestAllTasksCompletedOnEmptyList(t *testing.T) {
	f, err := NewFeature("auth", "Authentication")
	require.NoError(t, err)
	assert.True(t, f.AllTasksCompleted())
}

func TestTaskIdsStayMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f, err := NewFeature("auth", "Authentication")
		if err != nil {
			t.Fatal(err)
		}

		count := rapid.IntRange(1, 30).Draw(t, "count")
		for i := 0; i < count; i++ {
			id, err := f.AddTask(fmt.Sprintf("task %d", i), nil)
			if err != nil {
				t.Fatal(err)
			}
			if want := fmt.Sprintf("T%d", i+1); id != want {
				t.Fatalf("id %q, want %q", id, want)
			}

			// Random status churn must not perturb id assignment.
			switch rapid.IntRange(0, 2).Draw(t, "churn") {
			case 1:
				_ = f.StartTask(id)
			case 2:
				_ = f.CompleteTask(id)
			}
		}
	})
}
