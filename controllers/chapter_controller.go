package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/services"
)

func (h *Handler) CreateChapter(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "create chapter")
	if !ok {
		return
	}
	var input struct {
		Title string `json:"title" binding:"required,max=255"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "create chapter", err)
		return
	}

	chapter, err := h.Chapters.Create(c.Request.Context(), uid, courseID, input.Title)
	if err != nil {
		h.fail(c, "create chapter", err)
		return
	}
	h.notify(courseID, "chapter_created", chapter.ID)
	c.JSON(http.StatusOK, chapter)
}

// ReorderChapters takes {"list":[{"id":...,"position":...}]}.
func (h *Handler) ReorderChapters(c *gin.Context) {
	uid, courseID, ok := h.courseScope(c, "reorder chapters")
	if !ok {
		return
	}
	var input struct {
		List []services.PositionUpdate `json:"list" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "reorder chapters", err)
		return
	}

	if err := h.Chapters.Reorder(c.Request.Context(), uid, courseID, input.List); err != nil {
		h.fail(c, "reorder chapters", err)
		return
	}
	h.notify(courseID, "chapters_reordered", uuid.Nil)
	c.String(http.StatusOK, "Success")
}

func (h *Handler) GetChapter(c *gin.Context) {
	uid, courseID, chapterID, ok := h.childScope(c, "get chapter", "chapterId")
	if !ok {
		return
	}
	chapter, err := h.Chapters.Get(c.Request.Context(), uid, courseID, chapterID)
	if err != nil {
		h.fail(c, "get chapter", err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (h *Handler) UpdateChapter(c *gin.Context) {
	uid, courseID, chapterID, ok := h.childScope(c, "update chapter", "chapterId")
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "update chapter", err)
		return
	}

	chapter, err := h.Chapters.Update(c.Request.Context(), uid, courseID, chapterID, body)
	if err != nil {
		h.fail(c, "update chapter", err)
		return
	}
	h.notify(courseID, "chapter_updated", chapterID)
	c.JSON(http.StatusOK, chapter)
}

func (h *Handler) DeleteChapter(c *gin.Context) {
	uid, courseID, chapterID, ok := h.childScope(c, "delete chapter", "chapterId")
	if !ok {
		return
	}
	chapter, err := h.Chapters.Delete(c.Request.Context(), uid, courseID, chapterID)
	if err != nil {
		h.fail(c, "delete chapter", err)
		return
	}
	h.notify(courseID, "chapter_deleted", chapterID)
	c.JSON(http.StatusOK, chapter)
}

func (h *Handler) PublishChapter(c *gin.Context) {
	h.setChapterPublished(c, true)
}

func (h *Handler) UnpublishChapter(c *gin.Context) {
	h.setChapterPublished(c, false)
}

func (h *Handler) setChapterPublished(c *gin.Context, published bool) {
	op, action := "unpublish chapter", "chapter_unpublished"
	set := h.Chapters.Unpublish
	if published {
		op, action = "publish chapter", "chapter_published"
		set = h.Chapters.Publish
	}

	uid, courseID, chapterID, ok := h.childScope(c, op, "chapterId")
	if !ok {
		return
	}
	chapter, err := set(c.Request.Context(), uid, courseID, chapterID)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.notify(courseID, action, chapterID)
	c.JSON(http.StatusOK, chapter)
}
