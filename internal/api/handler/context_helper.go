package handler

import (
	"github.com/gin-gonic/gin"

	"dwreport/backend/pkg/jwt"
	"dwreport/backend/pkg/response"
)

// MustGetProfileID 从 Gin 上下文中安全提取 profile_id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetProfileID(c *gin.Context) (string, bool) {
	return mustGetString(c, "profile_id")
}

// MustGetAuthUserID 从 Gin 上下文中安全提取 auth_user_id。
func MustGetAuthUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "auth_user_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetClaims 从 Gin 上下文中安全提取完整 JWT 声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
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

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}
