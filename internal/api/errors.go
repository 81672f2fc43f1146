package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/roach88/flaggraph/internal/engine"
)

// Error codes produced by the HTTP layer itself.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL"
)

// statusFor maps an engine error code to an HTTP status.
func statusFor(code engine.ErrorCode) int {
	switch code {
	case engine.ErrCodeFlagNotFound:
		return http.StatusNotFound
	case engine.ErrCodeDuplicateFlag:
		return http.StatusConflict
	case engine.ErrCodeUnresolvedDependency,
		engine.ErrCodeCycleDetected,
		engine.ErrCodeUnsatisfiedDependencies:
		return http.StatusUnprocessableEntity
	case engine.ErrCodeInvalidName:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders an engine error. Infrastructure errors are logged by the
// engine and surface as a generic 500.
func writeError(c *gin.Context, err error) {
	var fe *engine.FlagError
	if errors.As(err, &fe) {
		c.JSON(statusFor(fe.Code), ErrorResponse{
			Error:      fe.Message,
			Code:       string(fe.Code),
			Missing:    fe.Missing,
			Dependency: fe.Dependency,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal error",
		Code:  CodeInternal,
	})
}

// writeBindError renders a request binding or validation failure.
func writeBindError(c *gin.Context, err error) {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		msg = "field " + first.Field() + " failed " + first.Tag() + " validation"
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: msg,
		Code:  CodeInvalidRequest,
	})
}
