package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landslide-monitor/models"
)

// Login authenticates a moderator and returns a JWT token.
func (h *Handlers) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, err := h.Moderators.Login(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, "error", "Error generating token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
