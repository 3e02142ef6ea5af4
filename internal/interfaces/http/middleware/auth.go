// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/pkg/logger"
	"sparkgen-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	// IdentityKey Gin Context 中身份信息的键
	IdentityKey = "identity"
)

// TokenVerifier 身份令牌校验器
type TokenVerifier interface {
	// Verify 校验令牌并返回身份；失败时返回错误
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}

// JWTVerifier 基于 JWT 的 TokenVerifier 实现
type JWTVerifier struct {
	manager *utils.JWTManager
}

func NewJWTVerifier(manager *utils.JWTManager) *JWTVerifier {
	return &JWTVerifier{manager: manager}
}

// Verify 校验 JWT 并提取身份声明
func (v *JWTVerifier) Verify(_ context.Context, token string) (*entity.Identity, error) {
	claims, err := v.manager.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &entity.Identity{
		UID:   claims.UID,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

// Auth 认证中间件。
// 令牌缺失/非法/过期一律 401 终止，后续组件（含台账）不会执行。
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		ident, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		c.Set(IdentityKey, ident)

		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, ident.UID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// IdentityFromContext 从 Gin Context 提取已认证身份
func IdentityFromContext(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return entity.Identity{}, false
	}
	ident, ok := v.(*entity.Identity)
	if !ok || ident == nil {
		return entity.Identity{}, false
	}
	return *ident, true
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    msg,
		"code":     401,
		"trace_id": c.GetString("trace_id"),
	})
}
