package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminTokenHeader carries the static admin credential.
const AdminTokenHeader = "X-Admin-Token"

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_addr", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request failed", fields...)
			return
		}
		logger.Info("HTTP request completed", fields...)
	}
}

// AdminAuth compares the admin header against a bcrypt hash. An empty hash
// leaves admin routes open.
func AdminAuth(tokenHash string, logger *zap.Logger) gin.HandlerFunc {
	hash := []byte(tokenHash)
	return func(c *gin.Context) {
		if len(hash) == 0 {
			c.Next()
			return
		}

		token := c.GetHeader(AdminTokenHeader)
		if token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
			logger.Warn("admin authentication failed",
				zap.String("path", c.FullPath()),
				zap.String("client_addr", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
