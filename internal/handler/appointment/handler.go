package appointment

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/middleware"
	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/service/appointment"
	"github.com/schedulo/practicum-api/internal/service/audit"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
	"github.com/schedulo/practicum-api/pkg/httputil"
	"github.com/schedulo/practicum-api/pkg/metrics"
	"github.com/schedulo/practicum-api/pkg/validator"
)

type Handler struct {
	service   *appointment.Service
	auditor   *audit.Service
	validator *validator.Validator
	metrics   *metrics.Metrics
}

func NewHandler(service *appointment.Service, auditor *audit.Service, validator *validator.Validator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		auditor:   auditor,
		validator: validator,
		metrics:   metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.GET("/:id/history", h.GetAppointmentHistory)
		appointments.PATCH("/:id/reschedule", h.RescheduleAppointment)
		appointments.POST("/:id/transition", h.TransitionAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var proposal model.AppointmentProposal
	if err := c.ShouldBindJSON(&proposal); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err := h.validator.Validate(&proposal); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.ActorID(c), &proposal)
	if err != nil {
		h.countBookingFailure(err)
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.BookingsTotal.WithLabelValues("created").Inc()
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) GetAppointmentHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	entries, err := h.auditor.History(c.Request.Context(), model.AuditEntityAppointment, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("engagement_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid engagement ID", err))
			return
		}
		filters.EngagementID = id
	}
	if v := c.Query("practitioner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid practitioner ID", err))
			return
		}
		filters.PractitionerID = id
	}
	if v := c.Query("status"); v != "" {
		status := model.AppointmentStatus(v)
		if !status.Valid() {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid status", nil))
			return
		}
		filters.Status = status
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from timestamp", err))
			return
		}
		filters.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to timestamp", err))
			return
		}
		filters.To = t
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.Reschedule(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		h.countBookingFailure(err)
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.BookingsTotal.WithLabelValues("rescheduled").Inc()
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) TransitionAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.Transition(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.TransitionsTotal.WithLabelValues(string(updated.Status)).Inc()
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) countBookingFailure(err error) {
	var conflict *model.ConflictError
	if errors.As(err, &conflict) {
		h.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
		h.metrics.ConflictsTotal.WithLabelValues(string(conflict.Kind)).Inc()
		return
	}
	h.metrics.BookingsTotal.WithLabelValues("error").Inc()
}
