package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landslide-monitor/models"
)

func (h *Handlers) GetEducation(c *gin.Context) {
	articles, err := h.Education.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch education data")
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *Handlers) CreateEducation(c *gin.Context) {
	var in models.EducationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data"})
		return
	}
	article, err := h.Education.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Failed to create education")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Education created successfully", "id": article.ID})
}

func (h *Handlers) UpdateEducation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.EducationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data"})
		return
	}
	if err := h.Education.Update(c.Request.Context(), id, in); err != nil {
		h.fail(c, err, "Failed to update education")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Education updated successfully"})
}

// DeleteEducation succeeds whether or not the article existed.
func (h *Handlers) DeleteEducation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Education.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete education")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Education deleted successfully"})
}
