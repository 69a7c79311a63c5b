package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landslide-monitor/models"
)

// CreateSensor registers a new sensor.
func (h *Handlers) CreateSensor(c *gin.Context) {
	var payload models.SensorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	sensor, err := h.Sensors.Register(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, err, "Failed to save sensor")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sensor saved successfully", "sensor": sensor})
}

// GetSensors lists every sensor with its history.
func (h *Handlers) GetSensors(c *gin.Context) {
	sensors, err := h.Sensors.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch sensors")
		return
	}
	c.JSON(http.StatusOK, sensors)
}

func (h *Handlers) UpdateSensor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload models.SensorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	sensor, err := h.Sensors.Update(c.Request.Context(), id, payload)
	if err != nil {
		h.fail(c, err, "Failed to update sensor.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sensor updated successfully.", "sensor": sensor})
}

func (h *Handlers) DeleteSensor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Sensors.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete sensor.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sensor deleted successfully."})
}

func (h *Handlers) GetSensorOverview(c *gin.Context) {
	overview, err := h.Sensors.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Error fetching overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}
