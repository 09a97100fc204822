// Package handlers implements the gin HTTP handlers for the evaluation API.
// Every handler delegates to the application service and translates AppError
// codes into HTTP status codes with a uniform error envelope.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/interfaces/http/middleware"
	apperrors "github.com/turtacn/PatentGym/pkg/errors"
)

// errorBody is the wire form of a failed request.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorEnvelope wraps errorBody under the "error" key so success and failure
// payloads are structurally distinguishable.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// respondError writes err with the HTTP status derived from its error code.
// Non-AppError values map to 500 internal.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	body := errorBody{
		Code:      code.String(),
		Message:   err.Error(),
		RequestID: middleware.RequestIDFrom(c),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(code.HTTPStatus(), errorEnvelope{Error: body})
}

// respondBadRequest is the shortcut for malformed request payloads.
func respondBadRequest(c *gin.Context, detail string) {
	respondError(c, apperrors.New(apperrors.ErrCodeBadRequest, "invalid request payload").WithDetail(detail))
}

// respondJSON writes a success payload.
func respondJSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}
