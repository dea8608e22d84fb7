package services

import (
	"fmt"
	"log"

	"task-reviewer-api/config"
	"task-reviewer-api/models"
)

// FeedbackNotifier emails a learner when supervisor feedback lands. Delivery
// is best-effort: failures are logged and never fail the transition.
type FeedbackNotifier struct {
	mailer *config.Mailer
}

// NewFeedbackNotifier wraps a mailer; a nil mailer disables notifications.
func NewFeedbackNotifier(mailer *config.Mailer) *FeedbackNotifier {
	return &FeedbackNotifier{mailer: mailer}
}

// NotifyFeedback sends the feedback summary to the given address.
func (n *FeedbackNotifier) NotifyFeedback(email string, record *models.ReviewRecord) {
	if n == nil || n.mailer == nil || email == "" || record.Feedback == nil {
		return
	}

	subject := fmt.Sprintf("Feedback received for task %s", record.TaskID)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your submission for task <b>%s</b> has been reviewed.</p>"+
			"<p>Sentiment: %s<br>Dignity: %d, Honesty: %d, Integrity: %d</p>"+
			"<p>You can now generate your next task.</p>",
		record.Username,
		record.TaskID,
		record.Feedback.Sentiment,
		record.Feedback.DHIScores.Dignity,
		record.Feedback.DHIScores.Honesty,
		record.Feedback.DHIScores.Integrity,
	)

	if err := n.mailer.Send([]string{email}, subject, html); err != nil {
		log.Printf("Warning: feedback notification to %s failed: %v", email, err)
	}
}
