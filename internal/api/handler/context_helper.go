package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Oskru/study-smart/internal/api/middleware"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/jwt"
	"github.com/Oskru/study-smart/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 提取当前用户与角色
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	uid := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if uid == "" || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{UserID: uid, Role: role}, true
}

// MustGetClaims 提取 JWTAuth 注入的完整声明（登出需要 jti 与过期时间）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
