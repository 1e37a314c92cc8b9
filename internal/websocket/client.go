package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/game"
	"go.uber.org/zap"
)

const sendBufferSize = 256

// Client 一个玩家在一个房间内的连接
type Client struct {
	ID       string
	RoomID   string
	PlayerID string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, roomID, playerID string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		RoomID:   roomID,
		PlayerID: playerID,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, sendBufferSize),
	}
}

// ReadPump 读取消息并分发给命令处理器
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	cfg := c.Hub.cfg
	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			return
		}

		c.handleMessage(ctx, message)
	}
}

// WritePump 写入消息并定时发送 ping
func (c *Client) WritePump() {
	cfg := c.Hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 每条消息单独一帧，客户端按帧解析 JSON
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 解析信封，发送者固定为连接认证的玩家
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var env game.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.Hub.logger.Warn("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.Hub.Error(c.RoomID, c.PlayerID, errors.Wrap(err, errors.ErrMessageFormat))
		return
	}
	if env.SenderID != "" && env.SenderID != c.PlayerID {
		c.Hub.logger.Warn("消息发送者与连接玩家不一致",
			zap.String("client_id", c.ID),
			zap.String("sender_id", env.SenderID),
			zap.String("player_id", c.PlayerID))
	}
	env.SenderID = c.PlayerID

	if c.Hub.dispatcher == nil {
		return
	}
	// 错误已由处理器回给发送者
	_ = c.Hub.dispatcher.Dispatch(ctx, c.RoomID, env)
}
