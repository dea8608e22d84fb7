package services

import (
	"context"
	"errors"

	"task-reviewer-api/models"
)

// Store-level sentinel errors. Services translate these into the AppError
// taxonomy; stores stay free of HTTP or workflow concerns.
var (
	ErrTaskExists     = errors.New("task already exists")
	ErrTaskNotFound   = errors.New("task not found")
	ErrReviewNotFound = errors.New("review not found")

	// ErrStatusConflict signals a failed compare-and-set: the record was not
	// in the expected status. AdvanceStatus returns it together with the
	// record in its current state so callers can report what was found.
	ErrStatusConflict = errors.New("review status mismatch")
)

// TaskStore persists immutable task definitions.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.TaskDefinition) error
	GetTask(ctx context.Context, taskID string) (*models.TaskDefinition, error)
	ListTasks(ctx context.Context) ([]models.TaskDefinition, error)
}

// ReviewMutation carries the fields a lifecycle transition writes alongside
// the status change. Nil fields are left untouched.
type ReviewMutation struct {
	Feedback     *models.Feedback
	OverallScore *int
	NextTask     *models.NextTask
}

// ReviewStore persists review records. AdvanceStatus is the only mutation
// after creation and must be atomic per record: the status check and the
// update are one compare-and-set, so two racing callers get exactly one
// success and one ErrStatusConflict.
type ReviewStore interface {
	CreateReview(ctx context.Context, record *models.ReviewRecord) error
	GetReview(ctx context.Context, reviewID string) (*models.ReviewRecord, error)
	ListReviewsByStatus(ctx context.Context, status models.ReviewStatus) ([]models.ReviewRecord, error)
	ListReviewsByUsername(ctx context.Context, username string) ([]models.ReviewRecord, error)

	// AdvanceStatus moves the record from `from` to `to` and applies mut.
	// On success the updated record is returned. When the record exists but
	// is not in `from`, the record is returned as-is with ErrStatusConflict.
	AdvanceStatus(ctx context.Context, reviewID string, from, to models.ReviewStatus, mut ReviewMutation) (*models.ReviewRecord, error)
}
