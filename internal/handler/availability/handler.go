package availability

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schedulo/practicum-api/internal/middleware"
	"github.com/schedulo/practicum-api/internal/model"
	"github.com/schedulo/practicum-api/internal/service/availability"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
	"github.com/schedulo/practicum-api/pkg/httputil"
	"github.com/schedulo/practicum-api/pkg/validator"
)

type Handler struct {
	service   *availability.Service
	validator *validator.Validator
}

func NewHandler(service *availability.Service, validator *validator.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	windows := r.Group("/availability-windows")
	{
		windows.POST("", h.AddWindow)
		windows.GET("", h.ListWindows)
		windows.DELETE("/:id", h.RetireWindow)
	}
}

func (h *Handler) AddWindow(c *gin.Context) {
	var req model.CreateAvailabilityWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	window, err := h.service.AddWindow(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, window)
}

func (h *Handler) ListWindows(c *gin.Context) {
	instructorID, err := uuid.Parse(c.Query("instructor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid instructor ID", err))
		return
	}

	if day := c.Query("weekday"); day != "" {
		weekday, err := model.ParseWeekday(day)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
			return
		}
		windows, err := h.service.WindowsFor(c.Request.Context(), instructorID, weekday)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, windows)
		return
	}

	windows, err := h.service.ListForInstructor(c.Request.Context(), instructorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, windows)
}

func (h *Handler) RetireWindow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid window ID", err))
		return
	}

	if err := h.service.Retire(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}
