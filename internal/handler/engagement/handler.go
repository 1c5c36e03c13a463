package engagement

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/middleware"
	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/service/engagement"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
	"github.com/schedulo/practicum-api/pkg/httputil"
	"github.com/schedulo/practicum-api/pkg/validator"
)

type Handler struct {
	service   *engagement.Service
	validator *validator.Validator
}

func NewHandler(service *engagement.Service, validator *validator.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	engagements := r.Group("/engagements")
	{
		engagements.POST("", h.CreateEngagement)
		engagements.GET("", h.ListEngagements)
		engagements.GET("/:id", h.GetEngagement)
		engagements.POST("/:id/close", h.CloseEngagement)
	}
}

func (h *Handler) CreateEngagement(c *gin.Context) {
	var req model.CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetEngagement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid engagement ID", err))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) ListEngagements(c *gin.Context) {
	filters := &model.EngagementFilters{}

	if v := c.Query("instructor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid instructor ID", err))
			return
		}
		filters.InstructorID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.EngagementStatus(v)
	}

	engagements, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, engagements)
}

func (h *Handler) CloseEngagement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid engagement ID", err))
		return
	}

	closed, err := h.service.Close(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, closed)
}
