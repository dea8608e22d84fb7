package services

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"task-reviewer-api/models"
)

// The lifecycle must hold its invariants under any call sequence: status
// only moves forward, feedback exists iff the record reached
// feedback_provided, next_task exists iff the record completed, and the
// ai_review never changes after creation.
func TestLifecycleInvariantsUnderRandomCalls(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := NewMemoryStore()
		gen := &stubGenerator{}
		lifecycle := NewReviewLifecycle(store, store, gen, nil)

		if err := store.CreateTask(ctx, &models.TaskDefinition{
			TaskID: "T1", Title: "t", Description: "d",
		}); err != nil {
			rt.Fatal(err)
		}

		record, err := lifecycle.Submit(ctx, "T1", "alice", textSubmission("work"))
		if err != nil {
			rt.Fatal(err)
		}
		initialReview := record.AIReview
		prev := record.Status

		ops := []string{"feedback", "next_task", "next_task_wrong_user", "get"}
		steps := rapid.IntRange(1, 12).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom(ops).Draw(rt, "op")
			switch op {
			case "feedback":
				fb := models.Feedback{
					Sentiment: rapid.SampledFrom([]string{models.SentimentUp, models.SentimentDown}).Draw(rt, "sentiment"),
					DHIScores: models.DHIScores{
						Dignity:   rapid.IntRange(0, 10).Draw(rt, "dignity"),
						Honesty:   rapid.IntRange(0, 10).Draw(rt, "honesty"),
						Integrity: rapid.IntRange(0, 10).Draw(rt, "integrity"),
					},
				}
				_, _ = lifecycle.ProvideFeedback(ctx, record.ReviewID, fb, "")
			case "next_task":
				_, _ = lifecycle.GenerateNextTask(ctx, record.ReviewID, "alice")
			case "next_task_wrong_user":
				if _, err := lifecycle.GenerateNextTask(ctx, record.ReviewID, "mallory"); KindOf(err) != KindAuthorization {
					rt.Fatalf("wrong-user next task: got %v, want authorization error", err)
				}
			case "get":
				// reads never mutate, checked below like every other op
			}

			current, err := lifecycle.GetReview(ctx, record.ReviewID)
			if err != nil {
				rt.Fatal(err)
			}

			if current.Status.Before(prev) {
				rt.Fatalf("status moved backward: %s -> %s", prev, current.Status)
			}
			if !current.Status.Valid() {
				rt.Fatalf("unknown status %q", current.Status)
			}
			if gotFeedback := current.Feedback != nil; gotFeedback != (current.Status != models.StatusPendingFeedback) {
				rt.Fatalf("feedback presence %v inconsistent with status %s", gotFeedback, current.Status)
			}
			if gotNext := current.NextTask != nil; gotNext != (current.Status == models.StatusCompleted) {
				rt.Fatalf("next_task presence %v inconsistent with status %s", gotNext, current.Status)
			}
			if current.AIReview.Score != initialReview.Score || current.AIReview.Summary != initialReview.Summary {
				rt.Fatalf("ai_review mutated after creation")
			}
			prev = current.Status
		}
	})
}
