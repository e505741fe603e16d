package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError describes one failed binding rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithMessage sends a success response carrying a human message.
func RespondWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	if appErr, ok := apperrors.As(err); ok {
		statusCode = appErr.StatusCode()
		if statusCode < http.StatusInternalServerError || appErr.Code == apperrors.ErrUnavailable {
			message = appErr.Message
		}
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    statusCode,
			Message: message,
		},
	})
}

// RespondWithBindError reports a request that failed binding or validation.
func RespondWithBindError(c *gin.Context, err error) {
	resp := &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid request",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
	} else {
		resp.Message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Success: false, Error: resp})
}
