package handlers

import (
	"errors"
	"net/http"
	"time"

	"homeguard/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errInvalidJSON  = "invalid_json"
	errUnknownJob   = "unknown_job"
	errSubmitFailed = "failed to schedule analysis"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// UploadRequest is an exported model for Swagger docs of the upload payload.
type UploadRequest struct {
	// Records is the batch form; a single bare reading object is also accepted.
	Records []map[string]any `json:"records"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
		"ts":     time.Now().Unix(),
	})
}

// @Summary      Submit a batch of sensor readings
// @Description  Accepts {"records":[...]} or a single bare reading. Readings that fail coercion are dropped; an empty result rejects the whole batch.
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        body  body   UploadRequest  true  "Batch payload"
// @Success      202   {object}  map[string]interface{}  "status, job_id, batch_size"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /upload [post]
// @Security     ApiKeyAuth
func (h *Handler) upload(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSON})
		return
	}

	batch, err := h.services.Normalizer.Normalize(payload)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.services.Jobs.Submit(c.Request.Context(), batch)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSubmitFailed, "job_submit_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":     statusAccepted,
		"job_id":     job.ID,
		"batch_size": len(batch),
	})
}

// @Summary      Job status
// @Description  Point-in-time read of one job record.
// @Tags         ingestion
// @Produce      json
// @Param        id  path  string  true  "Job id"
// @Success      200  {object}  models.Job
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /jobs/{id} [get]
// @Security     ApiKeyAuth
func (h *Handler) jobStatus(c *gin.Context) {
	job, ok := h.services.Jobs.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownJob})
		return
	}
	c.JSON(http.StatusOK, job)
}
