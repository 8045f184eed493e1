package middleware

import (
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger 用 zap 记录访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid := c.GetUint(util.ContextUserIDKey); uid != 0 {
			fields = append(fields, zap.Uint("userID", uid))
		}
		if status >= http.StatusInternalServerError {
			logger.Log.Warn("Request failed", fields...)
			return
		}
		logger.Log.Debug("Request", fields...)
	}
}

// Recovery panic 记入 zap，客户端只拿到通用错误
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		util.InternalServerError(c)
	})
}
