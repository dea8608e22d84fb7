package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"task-reviewer-api/models"
	"task-reviewer-api/utils"
)

// ReviewLifecycle owns ReviewRecord state and enforces the transition rules:
//
//	(create) -> pending_feedback -> feedback_provided -> completed
//
// Every transition is a per-record compare-and-set through the ReviewStore,
// so concurrent callers racing the same transition get exactly one success.
// Failed preconditions are conflicts that name the current and the required
// state; nothing is ever silently no-oped or overwritten.
type ReviewLifecycle struct {
	tasks     TaskStore
	reviews   ReviewStore
	generator ReviewGenerator
	notifier  *FeedbackNotifier
}

// NewReviewLifecycle wires the lifecycle manager. The notifier may be nil.
func NewReviewLifecycle(tasks TaskStore, reviews ReviewStore, generator ReviewGenerator, notifier *FeedbackNotifier) *ReviewLifecycle {
	return &ReviewLifecycle{
		tasks:     tasks,
		reviews:   reviews,
		generator: generator,
		notifier:  notifier,
	}
}

// Submit runs submission intake: it resolves the task, calls the review
// generator synchronously, and persists a fresh record in pending_feedback.
// A generator failure fails the whole call; no record is persisted without
// a populated ai_review.
func (s *ReviewLifecycle) Submit(ctx context.Context, taskID, username string, submission models.Submission) (*models.ReviewRecord, error) {
	username = utils.SanitizeInput(username)
	if username == "" {
		return nil, NewValidationError("username is required")
	}
	if !utils.ValidIdentifier(username) {
		return nil, NewValidationError("username may only contain letters, digits, '.', '_' and '-'")
	}
	if submission.Payload == "" {
		return nil, NewValidationError("submission payload is empty")
	}
	switch submission.Kind {
	case models.SubmissionText, models.SubmissionFile, models.SubmissionLink:
	default:
		return nil, NewValidationError("unknown submission kind '%s'", submission.Kind)
	}

	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, NewNotFoundError("task with id '%s' not found", taskID)
		}
		return nil, err
	}

	review, err := s.generator.Evaluate(ctx, task, submission)
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, NewUpstreamError("review generation failed", err)
	}

	now := time.Now()
	record := &models.ReviewRecord{
		ReviewID:   uuid.NewString(),
		TaskID:     taskID,
		Username:   username,
		Submission: submission,
		AIReview:   *review,
		Status:     models.StatusPendingFeedback,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reviews.CreateReview(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ProvideFeedback applies the supervisor's one-shot assessment, moving the
// record from pending_feedback to feedback_provided. A second feedback call
// on the same record is a conflict, not an idempotent success. notifyEmail
// optionally triggers a best-effort learner notification.
func (s *ReviewLifecycle) ProvideFeedback(ctx context.Context, reviewID string, feedback models.Feedback, notifyEmail string) (*models.ReviewRecord, error) {
	if feedback.Sentiment != models.SentimentUp && feedback.Sentiment != models.SentimentDown {
		return nil, NewValidationError("sentiment must be '%s' or '%s'", models.SentimentUp, models.SentimentDown)
	}
	if !feedback.DHIScores.InBounds() {
		return nil, NewValidationError("dhi scores must be between %d and %d", models.DHIScoreMin, models.DHIScoreMax)
	}

	current, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, NewNotFoundError("review with id '%s' not found", reviewID)
		}
		return nil, err
	}

	overall := overallScore(current.AIReview, feedback.DHIScores)
	mut := ReviewMutation{
		Feedback:     &feedback,
		OverallScore: &overall,
	}

	record, err := s.reviews.AdvanceStatus(ctx, reviewID, models.StatusPendingFeedback, models.StatusFeedbackProvided, mut)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, NewTransitionConflictError(reviewID, record.Status, models.StatusPendingFeedback)
		}
		if errors.Is(err, ErrReviewNotFound) {
			return nil, NewNotFoundError("review with id '%s' not found", reviewID)
		}
		return nil, err
	}

	s.notifier.NotifyFeedback(notifyEmail, record)
	return record, nil
}

// GenerateNextTask computes the follow-up task suggestion and moves the
// record from feedback_provided to the terminal completed state. Only the
// submitting username may trigger it.
func (s *ReviewLifecycle) GenerateNextTask(ctx context.Context, reviewID, username string) (*models.ReviewRecord, error) {
	current, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, NewNotFoundError("review with id '%s' not found", reviewID)
		}
		return nil, err
	}

	// Ownership check comes before the status check: a mismatched caller
	// learns nothing about the record's progress.
	if current.Username != username {
		return nil, NewAuthorizationError("username does not match the review's submitter")
	}

	if current.Status != models.StatusFeedbackProvided {
		return nil, NewTransitionConflictError(reviewID, current.Status, models.StatusFeedbackProvided)
	}

	next, err := s.generator.NextTask(ctx, current)
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, NewUpstreamError("next task generation failed", err)
	}

	record, err := s.reviews.AdvanceStatus(ctx, reviewID, models.StatusFeedbackProvided, models.StatusCompleted, ReviewMutation{NextTask: next})
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, NewTransitionConflictError(reviewID, record.Status, models.StatusFeedbackProvided)
		}
		if errors.Is(err, ErrReviewNotFound) {
			return nil, NewNotFoundError("review with id '%s' not found", reviewID)
		}
		return nil, err
	}
	return record, nil
}

// GetReview returns the full record in any state.
func (s *ReviewLifecycle) GetReview(ctx context.Context, reviewID string) (*models.ReviewRecord, error) {
	record, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, NewNotFoundError("review with id '%s' not found", reviewID)
		}
		return nil, err
	}
	return record, nil
}

// ListPendingReviews returns records awaiting supervisor feedback.
func (s *ReviewLifecycle) ListPendingReviews(ctx context.Context) ([]models.ReviewRecord, error) {
	return s.reviews.ListReviewsByStatus(ctx, models.StatusPendingFeedback)
}

// ListUserReviews returns records submitted under the given username.
func (s *ReviewLifecycle) ListUserReviews(ctx context.Context, username string) ([]models.ReviewRecord, error) {
	return s.reviews.ListReviewsByUsername(ctx, username)
}

// overallScore blends the AI score with the supervisor's DHI marks on a
// common 0-100 scale: 70% model, 30% human.
func overallScore(review models.AIReview, dhi models.DHIScores) int {
	return int(math.Round(0.7*float64(review.Score) + 0.3*(dhi.Mean()*10)))
}
