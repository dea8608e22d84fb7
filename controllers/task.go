package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-reviewer-api/services"
)

// TaskController exposes the task registry.
type TaskController struct {
	registry *services.TaskRegistry
}

func NewTaskController(registry *services.TaskRegistry) *TaskController {
	return &TaskController{registry: registry}
}

type createTaskRequest struct {
	TaskID      string `json:"task_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateTask handles POST /tasks (admin only).
func (tc *TaskController) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := tc.registry.CreateTask(c.Request.Context(), req.TaskID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Task created successfully",
		"task":    task,
	})
}

// ListTasks handles GET /tasks/all.
func (tc *TaskController) ListTasks(c *gin.Context) {
	tasks, err := tc.registry.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
