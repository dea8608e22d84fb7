package services

import (
	"context"
	"errors"
	"time"

	"task-reviewer-api/models"
	"task-reviewer-api/utils"
)

// TaskRegistry manages immutable task definitions.
type TaskRegistry struct {
	store TaskStore
}

// NewTaskRegistry wraps a TaskStore.
func NewTaskRegistry(store TaskStore) *TaskRegistry {
	return &TaskRegistry{store: store}
}

// CreateTask stores a new definition. The task_id is caller-supplied;
// creating an id that already exists is a conflict and leaves the existing
// definition untouched.
func (r *TaskRegistry) CreateTask(ctx context.Context, taskID, title, description string) (*models.TaskDefinition, error) {
	taskID = utils.SanitizeInput(taskID)
	title = utils.SanitizeInput(title)

	if taskID == "" {
		return nil, NewValidationError("task_id is required")
	}
	if !utils.ValidIdentifier(taskID) {
		return nil, NewValidationError("task_id may only contain letters, digits, '.', '_' and '-'")
	}
	if title == "" {
		return nil, NewValidationError("title is required")
	}
	if description == "" {
		return nil, NewValidationError("description is required")
	}

	task := &models.TaskDefinition{
		TaskID:      taskID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := r.store.CreateTask(ctx, task); err != nil {
		if errors.Is(err, ErrTaskExists) {
			return nil, NewConflictError("task with id '%s' already exists", taskID)
		}
		return nil, err
	}
	return task, nil
}

// GetTask fetches one definition by id.
func (r *TaskRegistry) GetTask(ctx context.Context, taskID string) (*models.TaskDefinition, error) {
	task, err := r.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, NewNotFoundError("task with id '%s' not found", taskID)
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns every definition.
func (r *TaskRegistry) ListTasks(ctx context.Context) ([]models.TaskDefinition, error) {
	return r.store.ListTasks(ctx)
}
