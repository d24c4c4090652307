package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/godilite/voting-tool/internal/domain"
	"github.com/godilite/voting-tool/internal/session"
	"go.uber.org/zap"
)

// actionSelect tells the client to pick a voting before retrying.
const actionSelect = "select"

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Action string `json:"action,omitempty"`
}

// statusFor maps the error taxonomy to an HTTP status and a user-facing
// message.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidSubmission), errors.Is(err, domain.ErrInvalidName):
		return http.StatusBadRequest, "invalid request", ""
	case errors.Is(err, session.ErrNoSelection):
		return http.StatusBadRequest, "no voting selected", actionSelect
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "voting not found, select another voting", actionSelect
	case errors.Is(err, domain.ErrNameCollision):
		return http.StatusConflict, "voting already exists", ""
	case errors.Is(err, domain.ErrConnection):
		return http.StatusServiceUnavailable, "store unreachable, try again later", ""
	case errors.Is(err, domain.ErrStoreWrite):
		return http.StatusInternalServerError, "ballot not saved, please resubmit", ""
	case errors.Is(err, domain.ErrParse):
		return http.StatusInternalServerError, "stored data is malformed", ""
	default:
		return http.StatusInternalServerError, "internal error", ""
	}
}

func (h *Handlers) writeError(c *gin.Context, op string, err error) {
	code, msg, action := statusFor(err)

	fields := []zap.Field{zap.String("op", op), zap.Int("status", code), zap.Error(err)}
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}

	c.AbortWithStatusJSON(code, errorResponse{Error: msg, Detail: err.Error(), Action: action})
}
