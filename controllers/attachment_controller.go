package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateAttachment(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "create attachment")
	if !ok {
		return
	}
	var input struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "create attachment", err)
		return
	}

	attachment, err := h.Attachments.Create(c.Request.Context(), uid, courseID, input.URL)
	if err != nil {
		h.fail(c, "create attachment", err)
		return
	}
	h.notify(courseID, "attachment_created", attachment.ID)
	c.JSON(http.StatusOK, attachment)
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	uid, courseID, attachmentID, ok := h.childScope(c, "delete attachment", "attachmentId")
	if !ok {
		return
	}
	attachment, err := h.Attachments.Delete(c.Request.Context(), uid, courseID, attachmentID)
	if err != nil {
		h.fail(c, "delete attachment", err)
		return
	}
	h.notify(courseID, "attachment_deleted", attachmentID)
	c.JSON(http.StatusOK, attachment)
}
