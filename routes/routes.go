package routes

import (
	"github.com/gin-gonic/gin"

	"task-reviewer-api/config"
	"task-reviewer-api/controllers"
	"task-reviewer-api/middleware"
	"task-reviewer-api/services"
)

// Deps bundles the wired services the route tree needs.
type Deps struct {
	Cfg       *config.Config
	Registry  *services.TaskRegistry
	Lifecycle *services.ReviewLifecycle
}

// SetupRoutes registers every endpoint. All routes except /health sit behind
// the service credential; admin routes additionally require a session marker.
func SetupRoutes(router *gin.Engine, deps Deps) {
	authController := controllers.NewAuthController(deps.Cfg)
	taskController := controllers.NewTaskController(deps.Registry)
	reviewController := controllers.NewReviewController(deps.Lifecycle)
	feedbackController := controllers.NewFeedbackController(deps.Lifecycle)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Reviewer API is running",
		})
	})

	// Every call below carries the service credential
	authed := router.Group("")
	authed.Use(middleware.APIKeyMiddleware(deps.Cfg))
	{
		// Admin session exchange
		authed.POST("/auth/admin", authController.AdminLogin)

		// Any authenticated caller
		authed.GET("/tasks/all", taskController.ListTasks)
		authed.GET("/review/:review_id", reviewController.GetReview)
		authed.GET("/user/:username/reviews", reviewController.GetUserReviews)

		// User role: submission intake and next-task generation
		authed.POST("/review/text/:task_id/:username", reviewController.SubmitText)
		authed.POST("/review/file/:task_id/:username", reviewController.SubmitFile)
		authed.POST("/review/link/:task_id/:username", reviewController.SubmitLink)
		authed.POST("/generate-next-task/:review_id", feedbackController.GenerateNextTask)

		// Admin role
		admin := authed.Group("")
		admin.Use(middleware.AdminAuthMiddleware(deps.Cfg))
		{
			admin.POST("/tasks", taskController.CreateTask)
			admin.GET("/admin/pending-reviews", reviewController.GetPendingReviews)
			admin.POST("/feedback/:review_id", feedbackController.ProvideFeedback)
		}
	}

	// 404 catch-all
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
