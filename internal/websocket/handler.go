package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/middleware"
	"go.uber.org/zap"
)

// Membership 房间成员查询
type Membership interface {
	IsMember(roomID, playerID string) bool
}

// Handler WebSocket升级处理器
type Handler struct {
	hub       *Hub
	validator middleware.TokenValidator
	members   Membership
	upgrader  websocket.Upgrader
	ctx       context.Context
}

// NewHandler 创建处理器，ctx 是连接上命令执行的上下文
func NewHandler(ctx context.Context, hub *Hub, validator middleware.TokenValidator, members Membership) *Handler {
	return &Handler{
		hub:       hub,
		validator: validator,
		members:   members,
		ctx:       ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  hub.cfg.ReadBufferSize,
			WriteBufferSize: hub.cfg.WriteBufferSize,
			// 跨域由 CORS 配置控制
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS GET /ws?room=<roomID>&token=<jwt>
func (h *Handler) ServeWS(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		h.reject(c, errors.New(errors.ErrAuthentication, "缺少认证令牌"))
		return
	}
	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.reject(c, errors.Wrap(err, errors.ErrTokenInvalid))
		return
	}

	roomID := c.Query("room")
	if roomID == "" {
		h.reject(c, errors.ParameterMissing("缺少房间"))
		return
	}
	if !h.members.IsMember(roomID, claims.PlayerID) {
		h.reject(c, errors.NotAllowed("玩家不在房间中: %s", claims.PlayerID))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, roomID, claims.PlayerID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.ctx)
}

func (h *Handler) reject(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), errors.NewErrorResponse(err, c.GetHeader("X-Request-ID")))
}
