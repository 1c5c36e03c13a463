package slot

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/schedulo/practicum-api/internal/service/slot"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
	"github.com/schedulo/practicum-api/pkg/httputil"
	"github.com/schedulo/practicum-api/pkg/metrics"
)

type Handler struct {
	service *slot.Service
	metrics *metrics.Metrics
}

func NewHandler(service *slot.Service, metrics *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: metrics}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/slots", h.GetAvailableSlots)
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	engagementID, err := uuid.Parse(c.Query("engagement_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid engagement ID", err))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err))
		return
	}

	query := slot.Query{
		EngagementID: engagementID,
		Date:         date,
	}

	if v := c.Query("practitioner_id"); v != "" {
		practitionerID, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid practitioner ID", err))
			return
		}
		query.PractitionerID = practitionerID
	}

	if v := c.Query("granularity_minutes"); v != "" {
		granularity, err := strconv.Atoi(v)
		if err != nil || granularity <= 0 {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid granularity", err))
			return
		}
		query.GranularityMinutes = granularity
	}

	timer := prometheus.NewTimer(h.metrics.SlotQueryDuration)
	slots, err := h.service.Available(c.Request.Context(), query)
	timer.ObserveDuration()
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}
