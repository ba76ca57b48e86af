package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary      List archived readings
// @Description  Returns the most recently received readings, newest first.
// @Tags         readings
// @Produce      json
// @Param        limit  query  int  false  "Max rows (default 100, cap 1000)"
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     ApiKeyAuth
func (h *Handler) getReadings(c *gin.Context) {
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil {
			limit = v
		}
	}

	rows, err := h.services.Readings.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load readings", "readings_list_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(rows),
		"readings": rows,
	})
}
