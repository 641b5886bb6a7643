package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/ws"
)

type Handler struct {
	DB          *gorm.DB
	Courses     *services.CourseService
	Chapters    *services.ChapterService
	Attachments *services.AttachmentService
	Uploads     *services.UploadService
	Hub         *ws.Hub
	Log         *zap.Logger
}

// fail turns a service error into a status and a plain-text label. Details
// only go to the log.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.String(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		c.String(http.StatusNotFound, "Not Found")
	case errors.Is(err, services.ErrIncomplete):
		c.String(http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, services.ErrInvalidInput):
		h.Log.Debug(op, zap.Error(err))
		c.String(http.StatusBadRequest, "Bad Request")
	default:
		h.Log.Error(op, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.String(http.StatusInternalServerError, "Internal Error")
	}
}

func (h *Handler) badRequest(c *gin.Context, op string, err error) {
	h.fail(c, op, errors.Wrap(services.ErrInvalidInput, err.Error()))
}

func userID(c *gin.Context) string {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return ""
	}
	return s.UserID
}

// courseScope reads the caller and the :courseId param and checks that the
// caller owns the course. On failure the response has already been written.
func (h *Handler) courseScope(c *gin.Context, op string) (string, uuid.UUID, bool) {
	uid := userID(c)
	if uid == "" {
		h.fail(c, op, services.ErrUnauthorized)
		return "", uuid.Nil, false
	}
	courseID, err := services.ParseCourseID(c.Param("courseId"))
	if err != nil {
		h.fail(c, op, err)
		return "", uuid.Nil, false
	}
	// ownership before the body and nested ids
	if err := h.Courses.Authorize(c.Request.Context(), uid, courseID); err != nil {
		h.fail(c, op, err)
		return "", uuid.Nil, false
	}
	return uid, courseID, true
}

// childScope is courseScope plus one nested id param.
func (h *Handler) childScope(c *gin.Context, op, param string) (string, uuid.UUID, uuid.UUID, bool) {
	uid, courseID, ok := h.courseScope(c, op)
	if !ok {
		return "", uuid.Nil, uuid.Nil, false
	}
	id, err := services.ParseID(c.Param(param))
	if err != nil {
		h.fail(c, op, err)
		return "", uuid.Nil, uuid.Nil, false
	}
	return uid, courseID, id, true
}

func (h *Handler) notify(courseID uuid.UUID, action string, target uuid.UUID) {
	if h.Hub == nil {
		return
	}
	targetID := ""
	if target != uuid.Nil {
		targetID = target.String()
	}
	h.Hub.BroadcastCourseChanged(courseID.String(), action, targetID)
}
