package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schedulo/practicum-api/internal/model"
	apperrors "github.com/schedulo/practicum-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError translates domain outcomes to transport responses.
// Conflicts carry their kind so the client can render a precise message; the
// core never decides HTTP severity itself.
func RespondWithError(c *gin.Context, err error) {
	var conflict *model.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error: &Error{
				Code:    string(conflict.Kind),
				Message: conflict.Message,
			},
		})
		return
	}

	if errors.Is(err, model.ErrInvalidStateTransition) {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &Error{
				Code:    "invalid_state_transition",
				Message: err.Error(),
			},
		})
		return
	}

	if errors.Is(err, model.ErrWindowOverlap) {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error: &Error{
				Code:    "window_overlap",
				Message: err.Error(),
			},
		})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Code), Response{
			Success: false,
			Error: &Error{
				Code:    codeFor(appErr.Code),
				Message: appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error: &Error{
			Code:    "internal",
			Message: "internal server error",
		},
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrUnprocessable:
		return http.StatusUnprocessableEntity
	case apperrors.ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrBadRequest:
		return "bad_request"
	case apperrors.ErrUnauthorized:
		return "unauthorized"
	case apperrors.ErrConflict:
		return "conflict"
	case apperrors.ErrUnprocessable:
		return "unprocessable"
	case apperrors.ErrTimeout:
		return "timeout"
	default:
		return "internal"
	}
}
