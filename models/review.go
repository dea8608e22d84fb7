package models

import "time"

// ReviewStatus is the lifecycle state of a ReviewRecord. It only moves
// forward: pending_feedback -> feedback_provided -> completed.
type ReviewStatus string

const (
	StatusPendingFeedback  ReviewStatus = "pending_feedback"
	StatusFeedbackProvided ReviewStatus = "feedback_provided"
	StatusCompleted        ReviewStatus = "completed"
)

// statusRank fixes the total order of lifecycle states.
var statusRank = map[ReviewStatus]int{
	StatusPendingFeedback:  0,
	StatusFeedbackProvided: 1,
	StatusCompleted:        2,
}

// Valid reports whether s is a known lifecycle state.
func (s ReviewStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Next returns the state that follows s, or "" when s is terminal.
func (s ReviewStatus) Next() ReviewStatus {
	switch s {
	case StatusPendingFeedback:
		return StatusFeedbackProvided
	case StatusFeedbackProvided:
		return StatusCompleted
	default:
		return ""
	}
}

// Before reports whether s precedes other in the lifecycle order.
func (s ReviewStatus) Before(other ReviewStatus) bool {
	return statusRank[s] < statusRank[other]
}

// SubmissionKind tags the submission payload variant.
type SubmissionKind string

const (
	SubmissionText SubmissionKind = "text"
	SubmissionFile SubmissionKind = "file"
	SubmissionLink SubmissionKind = "link"
)

// Submission is the tagged union of the three ways a learner hands in work.
// For file submissions the payload holds the decoded UTF-8 content and
// Filename the original upload name; for links the payload is the URL.
type Submission struct {
	Kind     SubmissionKind `json:"kind"`
	Payload  string         `json:"payload"`
	Filename string         `json:"filename,omitempty"`
}

// AIReview is the structured evaluation produced by the review generator.
// It is populated exactly once, synchronously during submission intake.
// FeedbackNote is the short mentor-style prose derived from the evaluation.
type AIReview struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	DoneWell     []string `json:"done_well"`
	Missing      []string `json:"missing"`
	FeedbackNote string   `json:"feedback_note,omitempty"`
}

// DHI score bounds, inclusive.
const (
	DHIScoreMin = 0
	DHIScoreMax = 10
)

// DHIScores are the supervisor's dignity/honesty/integrity marks.
type DHIScores struct {
	Dignity   int `json:"dignity"`
	Honesty   int `json:"honesty"`
	Integrity int `json:"integrity"`
}

// InBounds reports whether every score lies within [DHIScoreMin, DHIScoreMax].
func (d DHIScores) InBounds() bool {
	for _, v := range []int{d.Dignity, d.Honesty, d.Integrity} {
		if v < DHIScoreMin || v > DHIScoreMax {
			return false
		}
	}
	return true
}

// Mean returns the average DHI score.
func (d DHIScores) Mean() float64 {
	return float64(d.Dignity+d.Honesty+d.Integrity) / 3.0
}

// Sentiment values accepted in supervisor feedback.
const (
	SentimentUp   = "up"
	SentimentDown = "down"
)

// Feedback is the supervisor's one-shot assessment of an AI review.
type Feedback struct {
	Sentiment string    `json:"sentiment"`
	DHIScores DHIScores `json:"dhi_scores"`
}

// NextTask is the follow-up task suggestion stored at completion.
type NextTask struct {
	Title        string   `json:"title"`
	Objectives   []string `json:"objectives"`
	Deliverables string   `json:"deliverables"`
}

// ReviewRecord represents the review_records table: one record per
// submission event, carrying the AI evaluation and the lifecycle state.
//
// Username is a caller-supplied label with no credential behind it. It still
// gates next-task generation, which reproduces a gap in the upstream design
// rather than a deliberate security boundary; see middleware/auth.go.
type ReviewRecord struct {
	ReviewID     string       `gorm:"primaryKey;column:review_id" json:"review_id"`
	TaskID       string       `gorm:"column:task_id" json:"task_id"`
	Username     string       `gorm:"column:username" json:"username"`
	Submission   Submission   `gorm:"column:submission;serializer:json" json:"submission"`
	AIReview     AIReview     `gorm:"column:ai_review;serializer:json" json:"ai_review"`
	Feedback     *Feedback    `gorm:"column:feedback;serializer:json" json:"feedback,omitempty"`
	OverallScore *int         `gorm:"column:overall_score" json:"overall_score,omitempty"`
	NextTask     *NextTask    `gorm:"column:next_task;serializer:json" json:"next_task,omitempty"`
	Status       ReviewStatus `gorm:"column:status" json:"status"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for ReviewRecord.
func (ReviewRecord) TableName() string {
	return "review_records"
}
