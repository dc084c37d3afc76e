package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/content"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusClientClosed is the nginx convention for a request abandoned by the client.
const statusClientClosed = 499

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict, apperr.CodeInvalidState:
		return http.StatusConflict
	case apperr.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Server-side failures are logged and sent to Sentry.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error(), "code": apperr.CodeOf(err).String()}

	var ce *content.CounterError
	if errors.As(err, &ce) {
		body["ledger_applied"] = ce.LedgerApplied
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.Error(err))
		mw.CaptureError(c, err)
		var ae *apperr.Error
		if ce == nil && errors.As(err, &ae) {
			body["error"] = ae.Message
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.CodeInvalidArgument.String()})
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns the integer query parameter name, or def when absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func queryInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
