package controllers

import (
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"task-reviewer-api/models"
	"task-reviewer-api/services"
)

// maxUploadBytes caps file submissions at 1 MiB; submissions are prose or
// source text, not binaries.
const maxUploadBytes = 1 << 20

// ReviewController exposes submission intake and read operations on review
// records.
type ReviewController struct {
	lifecycle *services.ReviewLifecycle
}

func NewReviewController(lifecycle *services.ReviewLifecycle) *ReviewController {
	return &ReviewController{lifecycle: lifecycle}
}

type textSubmissionRequest struct {
	SubmissionText string `json:"submission_text" binding:"required"`
}

// SubmitText handles POST /review/text/:task_id/:username.
func (rc *ReviewController) SubmitText(c *gin.Context) {
	var req textSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rc.submit(c, models.Submission{
		Kind:    models.SubmissionText,
		Payload: req.SubmissionText,
	})
}

// SubmitFile handles POST /review/file/:task_id/:username. The upload is
// decoded as UTF-8 text and reviewed like a text submission.
func (rc *ReviewController) SubmitFile(c *gin.Context) {
	fileHeader, err := c.FormFile("submission_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission_file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission_file exceeds the 1MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open submission_file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read submission_file"})
		return
	}
	if !utf8.Valid(content) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission_file must be UTF-8 text"})
		return
	}

	rc.submit(c, models.Submission{
		Kind:     models.SubmissionFile,
		Payload:  string(content),
		Filename: fileHeader.Filename,
	})
}

type linkSubmissionRequest struct {
	SubmissionLink string `json:"submission_link" binding:"required,url"`
}

// SubmitLink handles POST /review/link/:task_id/:username. The link itself
// is the payload; nothing is fetched server-side.
func (rc *ReviewController) SubmitLink(c *gin.Context) {
	var req linkSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rc.submit(c, models.Submission{
		Kind:    models.SubmissionLink,
		Payload: req.SubmissionLink,
	})
}

func (rc *ReviewController) submit(c *gin.Context, submission models.Submission) {
	taskID := c.Param("task_id")
	username := c.Param("username")

	record, err := rc.lifecycle.Submit(c.Request.Context(), taskID, username, submission)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetReview handles GET /review/:review_id.
func (rc *ReviewController) GetReview(c *gin.Context) {
	record, err := rc.lifecycle.GetReview(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetUserReviews handles GET /user/:username/reviews.
func (rc *ReviewController) GetUserReviews(c *gin.Context) {
	records, err := rc.lifecycle.ListUserReviews(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetPendingReviews handles GET /admin/pending-reviews (admin only).
func (rc *ReviewController) GetPendingReviews(c *gin.Context) {
	records, err := rc.lifecycle.ListPendingReviews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
