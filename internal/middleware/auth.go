package middleware

import (
	"context"
	"edunest_backend/internal/config"
	"edunest_backend/internal/model"
	"edunest_backend/internal/util"
	"edunest_backend/pkg/logger"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionValidator 检查令牌对应的会话是否仍然有效（登出后失效）
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *util.Claims) error
}

// tokenFromRequest 依次读取 Authorization 头、会话 Cookie、token 查询参数（WebSocket）
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

func authenticate(c *gin.Context, cfg *config.Config, sessions SessionValidator) (*util.Claims, error) {
	tokenString := tokenFromRequest(c, cfg.Session.CookieName)
	if tokenString == "" {
		return nil, util.ErrUnauthorized
	}

	claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	if sessions != nil {
		if err := sessions.ValidateSession(c.Request.Context(), claims); err != nil {
			return nil, err
		}
	}
	return claims, nil
}

func AuthMiddleware(cfg *config.Config, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, cfg, sessions)
		if err != nil {
			if !errors.Is(err, util.ErrUnauthorized) && !errors.Is(err, util.ErrSessionRevoked) {
				logger.Log.Debug("Authentication failed", zap.Error(err), zap.String("path", c.FullPath()))
			}
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Set(util.ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// TryAuthMiddleware 公开接口使用：有合法令牌就识别用户，否则按访客继续
func TryAuthMiddleware(cfg *config.Config, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := authenticate(c, cfg, sessions); err == nil {
			c.Set(util.ContextUserKey, claims)
			c.Set(util.ContextUserIDKey, claims.UserID)
		}
		c.Next()
	}
}

// RoleMiddleware 管理员通过所有角色校验
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
