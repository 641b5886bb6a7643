package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCategories feeds the category picker of the course editor.
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.Courses.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
