package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"giveaway-settlement/internal/common/errors"
)

// ErrorHandler recovers panics and answers them as internal errors.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error("Panic recovered",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.String("stack", string(debug.Stack())),
		)

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithRequestID(requestID).
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr, logger)
	})
}

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger *zap.Logger) {
	requestID := getRequestID(c)

	appErr.WithRequestID(requestID).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	statusCode := HTTPStatus(appErr)

	response := ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	}

	logError(appErr, logger, c)

	c.AbortWithStatusJSON(statusCode, response)
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidBankAccount,
		errors.ErrCodeInvalidWinners, errors.ErrCodeQuizExpired:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeGiveawayNotFound, errors.ErrCodeParticipantNotFound,
		errors.ErrCodeTransactionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized, errors.ErrCodeWrongPassword:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden, errors.ErrCodeNotOwner, errors.ErrCodeCreatorCannotJoin:
		return http.StatusForbidden
	case errors.ErrCodeConflict, errors.ErrCodeDuplicateParticipant, errors.ErrCodeInvalidTransition,
		errors.ErrCodeGiveawayNotActive:
		return http.StatusConflict
	case errors.ErrCodeTooManyRequests, errors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrCodeGiveawayFull:
		return http.StatusGone
	case errors.ErrCodeDatabaseError, errors.ErrCodeTransactionFailed, errors.ErrCodeConnectionFailed:
		return http.StatusInternalServerError
	case errors.ErrCodeCacheError, errors.ErrCodeQuizUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeExternalAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, logger *zap.Logger, c *gin.Context) {
	requestID := getRequestID(c)
	userID := getUserID(c)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("error_code", string(appErr.Code)),
		zap.String("error_message", appErr.Message),
		zap.Time("timestamp", appErr.Timestamp),
	}

	if userID != 0 {
		fields = append(fields, zap.Int64("user_id", userID))
	}

	if appErr.UserID != 0 {
		fields = append(fields, zap.Int64("error_user_id", appErr.UserID))
	}

	if len(appErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(appErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	if len(appErr.Context) > 0 {
		contextJSON, _ := json.Marshal(appErr.Context)
		fields = append(fields, zap.String("context", string(contextJSON)))
	}

	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch {
	case appErr.IsInternal():
		logger.Error("Internal error occurred", fields...)
	case appErr.IsUnauthorized():
		logger.Warn("Unauthorized access attempt", fields...)
	case appErr.IsValidation():
		logger.Info("Validation error", fields...)
	case appErr.IsNotFound():
		logger.Info("Resource not found", fields...)
	case appErr.IsTransport():
		logger.Warn("Upstream call failed", fields...)
	default:
		logger.Error("Application error occurred", fields...)
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

func getUserID(c *gin.Context) int64 {
	if userID, exists := c.Get(UserIDKey); exists {
		if id, ok := userID.(int64); ok {
			return id
		}
	}
	return 0
}

// HandleErrorWrapper turns the last error attached with c.Error into an error response.
func HandleErrorWrapper(logger *zap.Logger) func(gin.HandlerFunc) gin.HandlerFunc {
	return func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			handler(c)

			if len(c.Errors) > 0 {
				err := c.Errors.Last().Err

				if appErr, ok := errors.AsAppError(err); ok {
					sendErrorResponse(c, appErr, logger)
					return
				}

				appErr := errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred").
					WithRequestID(getRequestID(c)).
					WithUserID(getUserID(c))

				sendErrorResponse(c, appErr, logger)
			}
		}
	}
}
