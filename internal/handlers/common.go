package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger returns the request scoped logger stored by
// utils.ContextLogger, or the handler logger with the same request fields.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if _, scoped := c.Get(utils.LoggerContextKey); scoped {
		return utils.GetLoggerFromContext(c)
	}
	return h.logger.With(
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(additionalFields, "remote_addr", c.ClientIP())
	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    "validation_failed",
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
			Code: businessRuleError.Rule,
		})
		return
	}

	switch {
	case services.IsExtraction(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Could not read document",
			Details: err.Error(),
			Code:    "extraction_failed",
		})
	case errors.Is(err, services.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "Uploaded file is too large",
			Code:    "payload_too_large",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz session not found",
			Code:    "not_found",
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    "conflict",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
			Code:    "validation_failed",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

const (
	// multipartOverhead leaves room for boundaries and form fields on top of
	// the file size limit.
	multipartOverhead = 64 << 10
	multipartMemory   = 32 << 20
)

// parseMultipart caps the request body at maxBytes plus multipartOverhead and
// parses the multipart form before any field is read. It writes the error
// response itself and returns false.
func (h *BaseHandler) parseMultipart(c *gin.Context, maxBytes int64) bool {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.LogWarn(c, "Upload body exceeds limit", "limit", tooLarge.Limit)
			h.handleServiceError(c, services.ErrPayloadTooLarge)
			return false
		}
		h.RespondWithError(c, http.StatusBadRequest, "Invalid multipart form", err, err.Error())
		return false
	}
	return true
}

// readUpload reads the multipart file in field, rejecting files over
// maxBytes. It writes the error response itself and returns ok=false.
func (h *BaseHandler) readUpload(c *gin.Context, field string, maxBytes int64) (*multipart.FileHeader, []byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "A file is required", err, fmt.Sprintf("multipart field %q is missing", field))
		return nil, nil, false
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		h.handleServiceError(c, services.ErrPayloadTooLarge)
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not open uploaded file", err)
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded file", err)
		return nil, nil, false
	}
	return fileHeader, data, true
}
