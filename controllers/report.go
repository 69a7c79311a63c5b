package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"landslide-monitor/models"
)

// SubmitReport accepts a report as JSON or as a multipart form with an
// optional "image" file.
func (h *Handlers) SubmitReport(c *gin.Context) {
	var (
		sub   models.ReportSubmission
		image *multipart.FileHeader
	)
	if isForm(c.ContentType()) {
		if err := c.ShouldBind(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		sub.Latitude = models.ParseNumber(c.PostForm("latitude"))
		sub.Longitude = models.ParseNumber(c.PostForm("longitude"))

		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			image = fh
		case errors.Is(err, http.ErrMissingFile):
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid image upload"})
			return
		}
	} else if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	report, err := h.Reports.Submit(c.Request.Context(), sub, image)
	if err != nil {
		h.fail(c, err, "Server error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted", "reportId": report.ID})
}

func (h *Handlers) UpdateReportStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var body models.ReportStatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status value"})
		return
	}
	if err := h.Reports.UpdateStatus(c.Request.Context(), id, body.Status); err != nil {
		h.fail(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

func (h *Handlers) GetReports(c *gin.Context) {
	reports, err := h.Reports.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch reports")
		return
	}
	c.JSON(http.StatusOK, reports)
}

func isForm(contentType string) bool {
	return strings.HasPrefix(contentType, "multipart/form-data") ||
		strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}
