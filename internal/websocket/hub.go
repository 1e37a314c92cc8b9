package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/liar-game/internal/config"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/game"
	"go.uber.org/zap"
)

// Message 服务端下发的消息
type Message struct {
	UUID      string `json:"uuid"`
	Method    string `json:"method"`
	Body      any    `json:"body,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Dispatcher 处理客户端上行的命令
type Dispatcher interface {
	Dispatch(ctx context.Context, roomID string, env game.Envelope) error
}

// Hub WebSocket连接管理中心，按房间和玩家索引连接
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // roomID -> clientID -> client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	dispatcher Dispatcher
	cfg        config.WebSocketConfig
	logger     *zap.Logger
}

var _ game.Publisher = (*Hub)(nil)

// NewHub 创建Hub
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cfg:        withDefaults(cfg),
		logger:     logger,
	}
}

func withDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongTimeout {
		cfg.PingInterval = cfg.PongTimeout * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	return cfg
}

// SetDispatcher 设置命令处理器
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.dispatcher = d
}

// Run 运行Hub，ctx 结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Register 注册客户端，Hub 已停止时返回 false
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.RoomID]
	if !ok {
		clients = make(map[string]*Client)
		h.rooms[client.RoomID] = clients
	}
	clients[client.ID] = client
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("room_id", client.RoomID),
		zap.String("player_id", client.PlayerID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if clients, ok := h.rooms[client.RoomID]; ok {
		if _, ok := clients[client.ID]; ok {
			delete(clients, client.ID)
			close(client.Send)
		}
		if len(clients) == 0 {
			delete(h.rooms, client.RoomID)
		}
	}
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("room_id", client.RoomID),
		zap.String("player_id", client.PlayerID))
}

// CloseRoom 关闭房间内所有连接
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	clients := h.rooms[roomID]
	delete(h.rooms, roomID)
	for _, c := range clients {
		close(c.Send)
	}
	h.mu.Unlock()

	if len(clients) > 0 {
		h.logger.Info("关闭房间连接", zap.String("room_id", roomID), zap.Int("clients", len(clients)))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.rooms, roomID)
	}
}

func (h *Hub) encode(method string, body any) ([]byte, error) {
	return json.Marshal(&Message{
		UUID:      uuid.New().String(),
		Method:    method,
		Body:      body,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Broadcast 发给房间内所有连接
func (h *Hub) Broadcast(roomID, method string, body any) {
	data, err := h.encode(method, body)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.String("method", method), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[roomID] {
		h.trySend(client, data)
	}
}

// Unicast 发给房间内指定玩家的所有连接
func (h *Hub) Unicast(roomID, playerID, method string, body any) {
	data, err := h.encode(method, body)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.String("method", method), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[roomID] {
		if client.PlayerID == playerID {
			h.trySend(client, data)
		}
	}
}

// Error 把命令错误私发给发送者
func (h *Hub) Error(roomID, playerID string, err *errors.AppError) {
	h.Unicast(roomID, playerID, game.NotifyError, game.NewErrorBody(err))
}

// trySend 调用方持有读锁，不阻塞会话锁内的发布
func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("客户端发送缓冲区满，丢弃消息",
			zap.String("client_id", client.ID),
			zap.String("player_id", client.PlayerID))
	}
}

// OnlineCount 房间在线连接数
func (h *Hub) OnlineCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// DisconnectPlayer 关闭玩家在房间内的所有连接
func (h *Hub) DisconnectPlayer(roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[roomID]
	for id, c := range clients {
		if c.PlayerID == playerID {
			delete(clients, id)
			close(c.Send)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
}

// OnRoomCreated 房间事件：无需处理
func (h *Hub) OnRoomCreated(roomID, ownerID string, players []string) error { return nil }

// OnRoomDeleted 房间事件：关闭房间连接
func (h *Hub) OnRoomDeleted(roomID string) { h.CloseRoom(roomID) }

// OnPlayerJoined 房间事件：无需处理
func (h *Hub) OnPlayerJoined(roomID, playerID string) {}

// OnPlayerLeft 房间事件：断开离开玩家的连接
func (h *Hub) OnPlayerLeft(roomID, playerID string) { h.DisconnectPlayer(roomID, playerID) }
