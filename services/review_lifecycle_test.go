package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-reviewer-api/models"
)

// stubGenerator returns canned results without any network round trip.
type stubGenerator struct {
	evaluateErr error
	nextTaskErr error
	evaluations int
}

func (g *stubGenerator) Evaluate(_ context.Context, task *models.TaskDefinition, submission models.Submission) (*models.AIReview, error) {
	if g.evaluateErr != nil {
		return nil, g.evaluateErr
	}
	g.evaluations++
	return &models.AIReview{
		Score:        80,
		Summary:      fmt.Sprintf("submission for %s (%s)", task.TaskID, submission.Kind),
		DoneWell:     []string{"clear structure"},
		Missing:      []string{"tests"},
		FeedbackNote: "Good progress, keep going.",
	}, nil
}

func (g *stubGenerator) NextTask(_ context.Context, record *models.ReviewRecord) (*models.NextTask, error) {
	if g.nextTaskErr != nil {
		return nil, g.nextTaskErr
	}
	return &models.NextTask{
		Title:        "Follow-up for " + record.TaskID,
		Objectives:   []string{"add tests"},
		Deliverables: "a tested module",
	}, nil
}

func newTestLifecycle(t *testing.T) (*ReviewLifecycle, *MemoryStore, *stubGenerator) {
	t.Helper()
	store := NewMemoryStore()
	gen := &stubGenerator{}
	lifecycle := NewReviewLifecycle(store, store, gen, nil)

	_, err := store.GetTask(context.Background(), "T1")
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.NoError(t, store.CreateTask(context.Background(), &models.TaskDefinition{
		TaskID:      "T1",
		Title:       "Refactor for Efficiency",
		Description: "Refactor the provided function to be more memory-efficient.",
	}))

	return lifecycle, store, gen
}

func textSubmission(payload string) models.Submission {
	return models.Submission{Kind: models.SubmissionText, Payload: payload}
}

func TestSubmitCreatesPendingRecord(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)

	record, err := lifecycle.Submit(context.Background(), "T1", "alice", textSubmission("def f(): return 1"))
	require.NoError(t, err)

	assert.NotEmpty(t, record.ReviewID)
	assert.Equal(t, models.StatusPendingFeedback, record.Status)
	assert.Equal(t, "alice", record.Username)
	assert.NotZero(t, record.AIReview.Score)
	assert.NotEmpty(t, record.AIReview.Summary)
	assert.Nil(t, record.Feedback)
	assert.Nil(t, record.NextTask)
}

func TestSubmitUnknownTask(t *testing.T) {
	lifecycle, _, gen := newTestLifecycle(t)

	_, err := lifecycle.Submit(context.Background(), "missing", "alice", textSubmission("work"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Zero(t, gen.evaluations, "generator must not run for an unknown task")
}

func TestSubmitGeneratorFailurePersistsNothing(t *testing.T) {
	lifecycle, store, gen := newTestLifecycle(t)
	gen.evaluateErr = NewUpstreamError("model quota exceeded", nil)

	_, err := lifecycle.Submit(context.Background(), "T1", "alice", textSubmission("work"))
	assert.Equal(t, KindUpstream, KindOf(err))

	records, listErr := store.ListReviewsByUsername(context.Background(), "alice")
	require.NoError(t, listErr)
	assert.Empty(t, records, "no partial record may survive a generator failure")
}

func TestSubmitValidation(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	_, err := lifecycle.Submit(ctx, "T1", "", textSubmission("work"))
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = lifecycle.Submit(ctx, "T1", "alice", textSubmission(""))
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = lifecycle.Submit(ctx, "T1", "alice", models.Submission{Kind: "carrier-pigeon", Payload: "work"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func validFeedback() models.Feedback {
	return models.Feedback{
		Sentiment: models.SentimentUp,
		DHIScores: models.DHIScores{Dignity: 8, Honesty: 9, Integrity: 10},
	}
}

func TestProvideFeedbackOnce(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)

	updated, err := lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFeedbackProvided, updated.Status)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, models.SentimentUp, updated.Feedback.Sentiment)
	// 0.7*80 + 0.3*(9*10) = 83
	require.NotNil(t, updated.OverallScore)
	assert.Equal(t, 83, *updated.OverallScore)
}

func TestProvideFeedbackTwiceIsConflict(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)

	first, err := lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	require.NoError(t, err)

	second := models.Feedback{
		Sentiment: models.SentimentDown,
		DHIScores: models.DHIScores{Dignity: 1, Honesty: 1, Integrity: 1},
	}
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, second, "")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), string(models.StatusFeedbackProvided))
	assert.Contains(t, err.Error(), string(models.StatusPendingFeedback))

	// The original feedback must be untouched.
	current, err := lifecycle.GetReview(ctx, record.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, first.Feedback, current.Feedback)
	assert.Equal(t, models.StatusFeedbackProvided, current.Status)
}

func TestProvideFeedbackValidation(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)

	badDHI := models.Feedback{
		Sentiment: models.SentimentUp,
		DHIScores: models.DHIScores{Dignity: 11, Honesty: 9, Integrity: 10},
	}
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, badDHI, "")
	assert.Equal(t, KindValidation, KindOf(err))

	badSentiment := models.Feedback{
		Sentiment: "sideways",
		DHIScores: models.DHIScores{Dignity: 8, Honesty: 9, Integrity: 10},
	}
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, badSentiment, "")
	assert.Equal(t, KindValidation, KindOf(err))

	// Neither rejected call may have mutated the record.
	current, err := lifecycle.GetReview(ctx, record.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingFeedback, current.Status)
	assert.Nil(t, current.Feedback)
}

func TestProvideFeedbackUnknownReview(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)

	_, err := lifecycle.ProvideFeedback(context.Background(), "nope", validFeedback(), "")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGenerateNextTaskBeforeFeedbackIsConflict(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)

	_, err = lifecycle.GenerateNextTask(ctx, record.ReviewID, "alice")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Contains(t, err.Error(), string(models.StatusFeedbackProvided))
}

func TestGenerateNextTaskHappyPathThenConflict(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	require.NoError(t, err)

	completed, err := lifecycle.GenerateNextTask(ctx, record.ReviewID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.NextTask)
	assert.NotEmpty(t, completed.NextTask.Title)

	// completed is terminal: neither transition may run again.
	_, err = lifecycle.GenerateNextTask(ctx, record.ReviewID, "alice")
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestGenerateNextTaskUsernameMismatch(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	require.NoError(t, err)

	// Rejected even though the status precondition holds.
	_, err = lifecycle.GenerateNextTask(ctx, record.ReviewID, "mallory")
	assert.Equal(t, KindAuthorization, KindOf(err))

	current, err := lifecycle.GetReview(ctx, record.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFeedbackProvided, current.Status)
	assert.Nil(t, current.NextTask)
}

func TestGenerateNextTaskGeneratorFailureLeavesRecord(t *testing.T) {
	lifecycle, _, gen := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)
	_, err = lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
	require.NoError(t, err)

	gen.nextTaskErr = errors.New("connection reset")
	_, err = lifecycle.GenerateNextTask(ctx, record.ReviewID, "alice")
	assert.Equal(t, KindUpstream, KindOf(err))

	current, err := lifecycle.GetReview(ctx, record.ReviewID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFeedbackProvided, current.Status)
	assert.Nil(t, current.NextTask)
}

func TestConcurrentFeedbackSingleWinner(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lifecycle.ProvideFeedback(ctx, record.ReviewID, validFeedback(), "")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, KindConflict, KindOf(err))
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent feedback call may win")
}

func TestListPendingAndUserReviews(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	r1, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("first"))
	require.NoError(t, err)
	r2, err := lifecycle.Submit(ctx, "T1", "bob", textSubmission("second"))
	require.NoError(t, err)

	pending, err := lifecycle.ListPendingReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = lifecycle.ProvideFeedback(ctx, r1.ReviewID, validFeedback(), "")
	require.NoError(t, err)

	pending, err = lifecycle.ListPendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ReviewID, pending[0].ReviewID)

	alices, err := lifecycle.ListUserReviews(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alices, 1)
	assert.Equal(t, r1.ReviewID, alices[0].ReviewID)
}
