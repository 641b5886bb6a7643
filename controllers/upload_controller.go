package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Upload stores one multipart "file" for the editor widget named by :endpoint
// and returns its public URL.
func (h *Handler) Upload(c *gin.Context) {
	if userID(c) == "" {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "upload", err)
		return
	}

	url, err := h.Uploads.Upload(c.Request.Context(), c.Param("endpoint"), header)
	if err != nil {
		h.fail(c, "upload", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "name": header.Filename})
}
