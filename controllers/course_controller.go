package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/models"
)

type courseResponse struct {
	*models.Course
	Completion models.Completion `json:"completion"`
}

func withCompletion(course *models.Course) courseResponse {
	return courseResponse{Course: course, Completion: course.Completion()}
}

func (h *Handler) CreateCourse(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	var input struct {
		Title string `json:"title" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "create course", err)
		return
	}

	course, err := h.Courses.Create(c.Request.Context(), uid, input.Title)
	if err != nil {
		h.fail(c, "create course", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.Courses.List(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, "list courses", err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) GetCourse(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "get course")
	if !ok {
		return
	}
	course, err := h.Courses.Get(c.Request.Context(), uid, courseID)
	if err != nil {
		h.fail(c, "get course", err)
		return
	}
	c.JSON(http.StatusOK, withCompletion(course))
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "update course")
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "update course", err)
		return
	}

	course, err := h.Courses.Update(c.Request.Context(), uid, courseID, body)
	if err != nil {
		h.fail(c, "update course", err)
		return
	}
	h.notify(courseID, "course_updated", uuid.Nil)
	c.JSON(http.StatusOK, withCompletion(course))
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "delete course")
	if !ok {
		return
	}
	course, err := h.Courses.Delete(c.Request.Context(), uid, courseID)
	if err != nil {
		h.fail(c, "delete course", err)
		return
	}
	h.notify(courseID, "course_deleted", uuid.Nil)
	c.JSON(http.StatusOK, course)
}

func (h *Handler) PublishCourse(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "publish course")
	if !ok {
		return
	}
	course, err := h.Courses.Publish(c.Request.Context(), uid, courseID)
	if err != nil {
		h.fail(c, "publish course", err)
		return
	}
	h.notify(courseID, "course_published", uuid.Nil)
	c.JSON(http.StatusOK, course)
}

func (h *Handler) UnpublishCourse(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "unpublish course")
	if !ok {
		return
	}
	course, err := h.Courses.Unpublish(c.Request.Context(), uid, courseID)
	if err != nil {
		h.fail(c, "unpublish course", err)
		return
	}
	h.notify(courseID, "course_unpublished", uuid.Nil)
	c.JSON(http.StatusOK, course)
}
