package handlers

import (
	"errors"
	"net/http"

	"lightsensord/internal/sensor"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK         = "ok"
	statusEnabled    = "enabled"
	statusDisabled   = "disabled"
	statusCalibrated = "calibrated"

	errEnableSensor  = "failed to enable sensor"
	errDisableSensor = "failed to disable sensor"
	errCalibrate     = "failed to calibrate sensor"
	errGetState      = "failed to load state"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// enableStatusCode maps a failed enable write to 502: the device refused,
// the request itself was fine.
func enableStatusCode(err error) int {
	if errors.Is(err, sensor.ErrEnableWriteFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Enable sensor
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensor/enable [post]
// @Security     BearerAuth
func (h *Handler) enableSensor(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Sensor.Enable(ctx); err != nil {
		h.logAndJSONError(c, enableStatusCode(err), errEnableSensor, "sensor_enable_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusEnabled, gin.H{})
}

// @Summary      Disable sensor
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensor/disable [post]
// @Security     BearerAuth
func (h *Handler) disableSensor(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Sensor.Disable(ctx); err != nil {
		h.logAndJSONError(c, enableStatusCode(err), errDisableSensor, "sensor_disable_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusDisabled, gin.H{})
}

// @Summary      Re-run calibration
// @Description  Reloads the persisted calibration record and writes the factor to the chip. A failed load is reported with its kind; the sensor keeps running on factory defaults.
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}  "error, kind, state"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensor/calibrate [post]
// @Security     BearerAuth
func (h *Handler) calibrateSensor(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Sensor.Calibrate(ctx)
	if err != nil {
		var ce *sensor.CalibrationError
		if errors.As(err, &ce) {
			if h.log != nil {
				h.log.Warnw("sensor_calibrate_failed", "kind", ce.Kind.String(), "err", err)
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": errCalibrate,
				"kind":  ce.Kind.String(),
				"state": st,
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCalibrate, "sensor_calibrate_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCalibrated, "state": st})
}

// @Summary      Get sensor state
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  models.SensorState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sensor/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "sensor_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
