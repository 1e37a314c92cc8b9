package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/liar-game/internal/errors"
	"go.uber.org/zap"
)

// SessionRegistry 房间ID到游戏会话的并发映射
type SessionRegistry struct {
	sessions sync.Map // roomID -> *GameSession
	count    atomic.Int64
	logger   *zap.Logger
}

// NewSessionRegistry 创建会话注册表
func NewSessionRegistry(logger *zap.Logger) *SessionRegistry {
	return &SessionRegistry{logger: logger}
}

// Create 为房间创建会话，房间已有会话时返回 ErrAlreadyExists
func (r *SessionRegistry) Create(roomID, ownerID string, players []string) (*GameSession, error) {
	session := NewGameSession(roomID, ownerID, players)
	if _, loaded := r.sessions.LoadOrStore(roomID, session); loaded {
		return nil, errors.Newf(errors.ErrAlreadyExists, "房间已有游戏会话: %s", roomID)
	}
	r.count.Add(1)

	r.logger.Info("创建游戏会话",
		zap.String("room_id", roomID),
		zap.String("owner_id", ownerID),
		zap.Int("players", len(players)))
	return session, nil
}

// Get 获取会话
func (r *SessionRegistry) Get(roomID string) (*GameSession, error) {
	v, ok := r.sessions.Load(roomID)
	if !ok {
		return nil, errors.NotExist("游戏会话不存在: %s", roomID)
	}
	return v.(*GameSession), nil
}

// Remove 移除会话
func (r *SessionRegistry) Remove(roomID string) error {
	v, ok := r.sessions.LoadAndDelete(roomID)
	if !ok {
		return errors.NotExist("游戏会话不存在: %s", roomID)
	}
	r.count.Add(-1)

	session := v.(*GameSession)
	r.logger.Info("移除游戏会话",
		zap.String("room_id", roomID),
		zap.String("state", string(session.State())),
		zap.Int("round", session.Round()))
	return nil
}

// Count 当前会话数
func (r *SessionRegistry) Count() int {
	return int(r.count.Load())
}

// Range 遍历所有会话，fn 返回 false 时停止
func (r *SessionRegistry) Range(fn func(session *GameSession) bool) {
	r.sessions.Range(func(_, v any) bool {
		return fn(v.(*GameSession))
	})
}

// CleanupIdle 移除在 BEFORE_START 状态闲置超过 maxIdle 的会话，返回被移除的房间ID
func (r *SessionRegistry) CleanupIdle(maxIdle time.Duration) []string {
	now := time.Now()
	var removed []string

	r.sessions.Range(func(k, v any) bool {
		session := v.(*GameSession)
		if session.State() != StateBeforeStart {
			return true
		}
		if idle := now.Sub(session.LastActivity()); idle > maxIdle {
			if r.sessions.CompareAndDelete(k, v) {
				r.count.Add(-1)
				removed = append(removed, session.RoomID())
				r.logger.Info("清理闲置会话",
					zap.String("room_id", session.RoomID()),
					zap.Duration("idle", idle))
			}
		}
		return true
	})

	return removed
}

// StartCleanupTask 启动闲置会话清理任务，onRemove 在每个被移除的房间上调用
func (r *SessionRegistry) StartCleanupTask(ctx context.Context, interval, maxIdle time.Duration, onRemove func(roomID string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("停止会话清理任务")
				return
			case <-ticker.C:
				for _, roomID := range r.CleanupIdle(maxIdle) {
					if onRemove != nil {
						onRemove(roomID)
					}
				}
			}
		}
	}()
}
