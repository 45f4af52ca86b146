package handlers

import (
	"net/http"
	"strconv"

	"lightsensord/internal/service"

	"github.com/gin-gonic/gin"
)

const errLimitInvalid = "invalid 'limit'; use a non-negative integer"

// @Summary      List readings
// @Description  Stored light readings, oldest first. At most 'limit' of the most recent readings in the range are returned (default 100, max 1000).
// @Tags         readings
// @Produce      json
// @Param        from   query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to     query   string  false  "End of range. Date-only treated as end of day."
// @Param        limit  query   int     false  "Maximum number of readings"  example(100)
// @Success      200    {object}  map[string]interface{}  "count, readings"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getReadings(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = v
	}

	readings, err := h.services.ReadingLog.List(ctx, service.ReadingFilter{From: from, To: to, Limit: limit})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load readings", "readings_list_failed", err, "from", from, "to", to, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}
