package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-basket/pkg/errors"
	"github.com/xiebiao/bookstore-basket/pkg/jwt"
	"github.com/xiebiao/bookstore-basket/pkg/response"
)

const contextKeyUserID = "user_id"

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. 从Authorization: Bearer <token>中提取Token
// 2. 校验签名和过期时间
// 3. 将user_id注入gin.Context,购物车、结算、交易历史都以它作为用户标识
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAuth 要求登录
//
//	basket := v1.Group("/basket")
//	basket.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID 从Context获取当前登录用户ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get(contextKeyUserID); exists {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
