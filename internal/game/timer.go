package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase 计时阶段
type Phase string

const (
	PhaseTurn   Phase = "turn"   // 描述回合
	PhaseVote   Phase = "vote"   // 投票
	PhaseAnswer Phase = "answer" // 骗子猜词
)

// Timeout 计时器触发后产生的系统命令
type Timeout struct {
	RoomID        string    `json:"room_id"`
	Phase         Phase     `json:"phase"`
	CorrelationID string    `json:"correlation_id"`
	Turn          int       `json:"turn"` // 只对回合计时器有意义，设置时的回合序号
	FiredAt       time.Time `json:"fired_at"`
}

// TimeoutHandler 处理超时命令
type TimeoutHandler func(ctx context.Context, t Timeout)

type timerKey struct {
	roomID string
	phase  Phase
}

type pendingTimer struct {
	timer *time.Timer
	id    string
}

// TimerCoordinator 按 (房间, 阶段) 管理延时回调，每个键最多一个计时器。
// 触发时把超时命令放入队列，由固定数量的 worker 交给处理器。
type TimerCoordinator struct {
	mu     sync.Mutex
	timers map[timerKey]*pendingTimer
	queue  chan Timeout
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewTimerCoordinator 创建计时协调器
func NewTimerCoordinator(queueSize int, logger *zap.Logger) *TimerCoordinator {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &TimerCoordinator{
		timers: make(map[timerKey]*pendingTimer),
		queue:  make(chan Timeout, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run 启动 workers 个 worker 处理超时命令，ctx 结束或 Stop 后退出
func (c *TimerCoordinator) Run(ctx context.Context, workers int, handler TimeoutHandler) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go func(worker int) {
			defer c.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-c.done:
					return
				case t := <-c.queue:
					c.dispatch(ctx, worker, handler, t)
				}
			}
		}(i)
	}
}

// dispatch 调用处理器，单个超时的 panic 不影响 worker
func (c *TimerCoordinator) dispatch(ctx context.Context, worker int, handler TimeoutHandler, t Timeout) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("处理超时命令panic",
				zap.Int("worker", worker),
				zap.String("room_id", t.RoomID),
				zap.String("phase", string(t.Phase)),
				zap.Any("panic", r))
		}
	}()
	handler(ctx, t)
}

// Start 为 (roomID, phase) 设置计时器，已有的计时器会先被取消。返回关联ID。
func (c *TimerCoordinator) Start(roomID string, phase Phase, delay time.Duration, turn int) string {
	key := timerKey{roomID: roomID, phase: phase}
	pending := &pendingTimer{id: uuid.New().String()}

	c.mu.Lock()
	if old, ok := c.timers[key]; ok {
		old.timer.Stop()
	}
	c.timers[key] = pending
	pending.timer = time.AfterFunc(delay, func() {
		c.fire(key, pending, turn)
	})
	c.mu.Unlock()

	c.logger.Debug("设置计时器",
		zap.String("room_id", roomID),
		zap.String("phase", string(phase)),
		zap.Duration("delay", delay),
		zap.String("correlation_id", pending.id))
	return pending.id
}

// fire 计时器到期，已被替换或取消的计时器直接丢弃
func (c *TimerCoordinator) fire(key timerKey, pending *pendingTimer, turn int) {
	c.mu.Lock()
	current, ok := c.timers[key]
	if !ok || current != pending {
		c.mu.Unlock()
		return
	}
	delete(c.timers, key)
	c.mu.Unlock()

	t := Timeout{
		RoomID:        key.roomID,
		Phase:         key.phase,
		CorrelationID: pending.id,
		Turn:          turn,
		FiredAt:       time.Now(),
	}

	select {
	case c.queue <- t:
	case <-c.done:
	}
}

// Cancel 取消 (roomID, phase) 的计时器，返回是否存在
func (c *TimerCoordinator) Cancel(roomID string, phase Phase) bool {
	key := timerKey{roomID: roomID, phase: phase}

	c.mu.Lock()
	defer c.mu.Unlock()
	pending, ok := c.timers[key]
	if !ok {
		return false
	}
	pending.timer.Stop()
	delete(c.timers, key)
	return true
}

// CancelRoom 取消房间的所有计时器
func (c *TimerCoordinator) CancelRoom(roomID string) {
	for _, phase := range []Phase{PhaseTurn, PhaseVote, PhaseAnswer} {
		c.Cancel(roomID, phase)
	}
}

// Running 计时器是否在等待触发
func (c *TimerCoordinator) Running(roomID string, phase Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[timerKey{roomID: roomID, phase: phase}]
	return ok
}

// Pending 等待触发的计时器数量
func (c *TimerCoordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Stop 停止所有计时器和 worker
func (c *TimerCoordinator) Stop() {
	c.once.Do(func() {
		c.mu.Lock()
		for key, pending := range c.timers {
			pending.timer.Stop()
			delete(c.timers, key)
		}
		c.mu.Unlock()
		close(c.done)
	})
	c.wg.Wait()
}
