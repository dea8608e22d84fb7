package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-reviewer-api/models"
	"task-reviewer-api/services"
)

// FeedbackController exposes the two lifecycle transitions after intake:
// supervisor feedback and learner next-task generation.
type FeedbackController struct {
	lifecycle *services.ReviewLifecycle
}

func NewFeedbackController(lifecycle *services.ReviewLifecycle) *FeedbackController {
	return &FeedbackController{lifecycle: lifecycle}
}

type feedbackRequest struct {
	Sentiment   string           `json:"sentiment" binding:"required"`
	DHIScores   models.DHIScores `json:"dhi_scores"`
	NotifyEmail string           `json:"notify_email"`
}

// ProvideFeedback handles POST /feedback/:review_id (admin only).
func (fc *FeedbackController) ProvideFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	feedback := models.Feedback{
		Sentiment: req.Sentiment,
		DHIScores: req.DHIScores,
	}

	record, err := fc.lifecycle.ProvideFeedback(c.Request.Context(), c.Param("review_id"), feedback, req.NotifyEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"updated_record": record,
	})
}

type nextTaskRequest struct {
	Username string `json:"username" binding:"required"`
}

// GenerateNextTask handles POST /generate-next-task/:review_id. The caller
// supplies their username in the body; it must match the record's submitter.
func (fc *FeedbackController) GenerateNextTask(c *gin.Context) {
	var req nextTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	record, err := fc.lifecycle.GenerateNextTask(c.Request.Context(), c.Param("review_id"), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"updated_record": record,
	})
}
