package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/controllers"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/services"
)

func SetupRouter(r *gin.Engine, h *controllers.Handler, allowedOrigins []string) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())

	api.GET("/categories", h.GetCategories)
	api.POST("/uploads/:endpoint", h.Upload)

	courses := api.Group("/courses")
	{
		courses.POST("", h.CreateCourse)
		courses.GET("", h.ListCourses)
		courses.GET("/:courseId", h.GetCourse)
		courses.PATCH("/:courseId", h.UpdateCourse)
		courses.DELETE("/:courseId", h.DeleteCourse)
		courses.PATCH("/:courseId/publish", h.PublishCourse)
		courses.PATCH("/:courseId/unpublish", h.UnpublishCourse)

		courses.POST("/:courseId/attachments", h.CreateAttachment)
		courses.DELETE("/:courseId/attachments/:attachmentId", h.DeleteAttachment)

		courses.PUT("/:courseId/chapters/reorder", h.ReorderChapters)
		courses.POST("/:courseId/chapters", h.CreateChapter)
		courses.GET("/:courseId/chapters/:chapterId", h.GetChapter)
		courses.PATCH("/:courseId/chapters/:chapterId", h.UpdateChapter)
		courses.DELETE("/:courseId/chapters/:chapterId", h.DeleteChapter)
		courses.PATCH("/:courseId/chapters/:chapterId/publish", h.PublishChapter)
		courses.PATCH("/:courseId/chapters/:chapterId/unpublish", h.UnpublishChapter)
	}

	if h.Hub != nil {
		authorize := func(ctx context.Context, userID, courseID string) error {
			id, err := services.ParseCourseID(courseID)
			if err != nil {
				return err
			}
			return h.Courses.Authorize(ctx, userID, id)
		}
		r.GET("/ws/courses/:courseId", h.Hub.HandleCourseWebSocket(authorize, allowedOrigins))
	}

	return r
}
