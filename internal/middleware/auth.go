package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/utils"
)

const (
	contextPlayerID = "playerID"
	contextNickname = "nickname"
)

// TokenValidator 令牌校验
type TokenValidator interface {
	ValidateToken(token string) (*utils.PlayerClaims, error)
}

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth 需要认证的中间件
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abort(c, errors.New(errors.ErrAuthentication, "缺少认证令牌"))
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			abort(c, errors.Wrap(err, errors.ErrTokenInvalid, "无效的令牌"))
			return
		}

		c.Set(contextPlayerID, claims.PlayerID)
		c.Set(contextNickname, claims.Nickname)
		c.Next()
	}
}

func abort(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), errors.NewErrorResponse(err, c.GetHeader("X-Request-ID")))
}

// ExtractToken 从请求中提取令牌
func ExtractToken(c *gin.Context) string {
	// 1. Authorization: Bearer
	if bearer := c.GetHeader("Authorization"); bearer != "" {
		parts := strings.SplitN(bearer, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. X-Access-Token
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// 3. 查询参数，浏览器 WebSocket 无法自定义请求头
	return c.Query("token")
}

// GetPlayerID 从上下文获取玩家ID
func GetPlayerID(c *gin.Context) (string, bool) {
	id := c.GetString(contextPlayerID)
	return id, id != ""
}

// GetNickname 从上下文获取昵称
func GetNickname(c *gin.Context) string {
	return c.GetString(contextNickname)
}
