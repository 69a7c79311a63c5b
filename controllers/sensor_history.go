package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landslide-monitor/models"
	"landslide-monitor/services"
	"landslide-monitor/utils"
)

func (h *Handlers) GetHistorySummary(c *gin.Context) {
	rows, err := h.History.Summary(c.Request.Context(), c.Query("range"))
	if err != nil {
		h.fail(c, err, "Failed to fetch sensor history")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) GetSensorPerformance(c *gin.Context) {
	rows, err := h.History.Performance(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch sensor performance")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) GetStatusDistribution(c *gin.Context) {
	rows, err := h.History.StatusDistribution(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Error fetching status distribution")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateSensorLog appends a reading and moves the sensor to its status.
func (h *Handlers) CreateSensorLog(c *gin.Context) {
	var in models.ReadingLog
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	record, err := h.History.AppendLog(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "Error creating sensor log")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sensor log created", "record": record})
}

// ExportSensorTrend downloads one metric's daily averages as csv or xlsx.
func (h *Handlers) ExportSensorTrend(c *gin.Context) {
	export, err := h.History.ExportTrend(c.Request.Context(),
		c.DefaultQuery("range", utils.DefaultRange),
		c.DefaultQuery("metric", "temperature"),
		c.DefaultQuery("format", services.FormatCSV))
	if err != nil {
		h.respondError(c, err, "error", "Internal Server Error")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
