package domain

import (
	"fmt"
	"time"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// Task is a single unit of implementation work within a feature.
type Task struct {
	// ID is the sequential identifier T1, T2, ... Ids are assigned at
	// creation and never reused.
	ID string `yaml:"id"`

	// Title is the human-readable summary.
	Title string `yaml:"title"`

	// Status is the current task state.
	Status constants.TaskStatus `yaml:"status"`

	// DependsOn lists ids of tasks in the same feature that must be
	// completed first.
	DependsOn []string `yaml:"depends_on,omitempty"`

	// Blocker explains why the task is blocked; set by BlockTask.
	Blocker string `yaml:"blocker,omitempty"`

	// CreatedAt is when the task was added.
	CreatedAt time.Time `yaml:"created_at"`

	// StartedAt is when work began.
	StartedAt *time.Time `yaml:"started_at,omitempty"`

	// CompletedAt is when the task finished.
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`
}

// AddTask appends a new pending task and returns its id. The id is
// derived from the current task count, so ids stay strictly increasing
// (T1, T2, T3, ...) regardless of intervening status changes.
func (f *Feature) AddTask(title string, dependsOn []string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("task title %w", sdlcerrors.ErrEmptyValue)
	}
	for _, dep := range dependsOn {
		if f.task(dep) == nil {
			return "", fmt.Errorf("dependency %q: %w", dep, sdlcerrors.ErrTaskNotFound)
		}
	}

	id := fmt.Sprintf("T%d", len(f.Tasks)+1)
	f.Tasks = append(f.Tasks, Task{
		ID:        id,
		Title:     title,
		Status:    constants.TaskStatusPending,
		DependsOn: append([]string(nil), dependsOn...),
		CreatedAt: timeNow().UTC(),
	})
	f.UpdatedAt = timeNow().UTC()
	return id, nil
}

// StartTask marks the task in progress and stamps started_at.
func (f *Feature) StartTask(id string) error {
	t := f.task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, sdlcerrors.ErrTaskNotFound)
	}
	now := timeNow().UTC()
	t.Status = constants.TaskStatusInProgress
	t.Blocker = ""
	if t.StartedAt == nil {
		t.StartedAt = &now
	}
	f.UpdatedAt = now
	return nil
}

// CompleteTask marks the task completed and stamps completed_at.
func (f *Feature) CompleteTask(id string) error {
	t := f.task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, sdlcerrors.ErrTaskNotFound)
	}
	now := timeNow().UTC()
	t.Status = constants.TaskStatusCompleted
	t.Blocker = ""
	t.CompletedAt = &now
	f.UpdatedAt = now
	return nil
}

// BlockTask marks the task blocked with a reason.
func (f *Feature) BlockTask(id, reason string) error {
	t := f.task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, sdlcerrors.ErrTaskNotFound)
	}
	t.Status = constants.TaskStatusBlocked
	t.Blocker = reason
	f.UpdatedAt = timeNow().UTC()
	return nil
}

// NextTask returns the first Pending or InProgress task whose
// dependencies are all completed, or nil when no task is workable.
// InProgress tasks win over Pending ones at the same position because
// the list is scanned in creation order.
func NextTask(tasks []Task) *Task {
	byID := make(map[string]*Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	for i := range tasks {
		t := &tasks[i]
		if t.Status != constants.TaskStatusPending && t.Status != constants.TaskStatusInProgress {
			continue
		}
		ready := true
		for _, dep := range t.DependsOn {
			d, ok := byID[dep]
			if !ok || d.Status != constants.TaskStatusCompleted {
				ready = false
				break
			}
		}
		if ready {
			return t
		}
	}
	return nil
}

// AllTasksCompleted reports whether every task has completed. A feature
// with no tasks counts as complete.
func (f *Feature) AllTasksCompleted() bool {
	for _, t := range f.Tasks {
		if t.Status != constants.TaskStatusCompleted {
			return false
		}
	}
	return true
}

func (f *Feature) task(id string) *Task {
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			return &f.Tasks[i]
		}
	}
	return nil
}
