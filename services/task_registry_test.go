package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskAndList(t *testing.T) {
	registry := NewTaskRegistry(NewMemoryStore())
	ctx := context.Background()

	task, err := registry.CreateTask(ctx, "T1", "Title", "Do the thing")
	require.NoError(t, err)
	assert.Equal(t, "T1", task.TaskID)
	assert.False(t, task.CreatedAt.IsZero())

	tasks, err := registry.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T1", tasks[0].TaskID)
}

func TestCreateTaskDuplicateIsConflict(t *testing.T) {
	registry := NewTaskRegistry(NewMemoryStore())
	ctx := context.Background()

	_, err := registry.CreateTask(ctx, "T1", "Original", "original description")
	require.NoError(t, err)

	_, err = registry.CreateTask(ctx, "T1", "Replacement", "other description")
	assert.Equal(t, KindConflict, KindOf(err))

	// The existing definition stays untouched.
	task, err := registry.GetTask(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "Original", task.Title)
}

func TestCreateTaskValidation(t *testing.T) {
	registry := NewTaskRegistry(NewMemoryStore())
	ctx := context.Background()

	for _, tc := range []struct {
		name                       string
		taskID, title, description string
	}{
		{"missing id", "", "t", "d"},
		{"missing title", "T1", "", "d"},
		{"missing description", "T1", "t", ""},
		{"whitespace id", "   ", "t", "d"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := registry.CreateTask(ctx, tc.taskID, tc.title, tc.description)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	registry := NewTaskRegistry(NewMemoryStore())

	_, err := registry.GetTask(context.Background(), "ghost")
	assert.Equal(t, KindNotFound, KindOf(err))
}
