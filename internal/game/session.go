package game

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/liar-game/internal/errors"
)

// Settings 一局游戏的设置，开始游戏时写入，之后不再改变
type Settings struct {
	Round      int      `json:"round"`      // 轮数
	Turn       int      `json:"turn"`       // 每人每轮描述次数
	Categories []string `json:"categories"` // 候选类别
}

// Ranking 最终排名
type Ranking struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// Snapshot 会话的只读快照
type Snapshot struct {
	RoomID        string         `json:"room_id"`
	OwnerID       string         `json:"owner_id"`
	State         State          `json:"state"`
	Round         int            `json:"round"`
	Turn          int            `json:"turn"`
	TurnOrder     []string       `json:"turn_order"`
	CurrentTurnID string         `json:"current_turn_id,omitempty"`
	Category      string         `json:"category,omitempty"`
	Settings      Settings       `json:"settings"`
	VoteCount     int            `json:"vote_count"`
	Scoreboard    map[string]int `json:"scoreboard"`
	Timers        map[Phase]bool `json:"timers"`
}

// GameSession 一个房间的游戏会话
//
// cmdMu 由编排器在处理一条命令的整个"读取-判断-写入"过程中持有，
// mu 保护字段本身，使 NextTurn 和投票记录在单独调用时也是原子的。
// 加锁顺序固定为 cmdMu -> mu。
type GameSession struct {
	roomID  string
	ownerID string

	cmdMu sync.Mutex
	mu    sync.RWMutex

	state      State
	settings   Settings
	round      int
	turn       int
	turnOrder  []string
	liarID     string
	category   string
	keyword    string
	voteResult map[string]string
	voteCount  int
	liarAnswer bool
	scored     bool
	scoreboard map[string]int
	timers     map[Phase]string // 阶段 -> 当前计时器的关联ID

	lastActivity time.Time
}

// NewGameSession 创建会话，初始状态为 BEFORE_START
func NewGameSession(roomID, ownerID string, players []string) *GameSession {
	s := &GameSession{
		roomID:       roomID,
		ownerID:      ownerID,
		state:        StateBeforeStart,
		turn:         -1,
		voteResult:   make(map[string]string),
		scoreboard:   make(map[string]int),
		timers:       make(map[Phase]string),
		lastActivity: time.Now(),
	}
	for _, p := range players {
		s.scoreboard[p] = 0
	}
	return s
}

// RoomID 房间ID
func (s *GameSession) RoomID() string { return s.roomID }

// OwnerID 房主ID
func (s *GameSession) OwnerID() string { return s.ownerID }

// Lock 获取命令锁
func (s *GameSession) Lock() { s.cmdMu.Lock() }

// Unlock 释放命令锁
func (s *GameSession) Unlock() { s.cmdMu.Unlock() }

// State 当前状态
func (s *GameSession) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition 沿状态图移动到 to，不存在的边返回 StateNotAllowed
func (s *GameSession) Transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanReach(to) {
		return errors.StateNotAllowed("不存在的状态转换: %s -> %s", s.state, to)
	}
	s.state = to
	s.lastActivity = time.Now()
	return nil
}

// Advance 沿 advance 边前进，返回新状态
func (s *GameSession) Advance() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Advance()
	s.lastActivity = time.Now()
	return s.state
}

// Loop 沿 loop 边前进，返回新状态
func (s *GameSession) Loop() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Loop()
	s.lastActivity = time.Now()
	return s.state
}

// Settings 游戏设置
func (s *GameSession) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ApplySettings 写入游戏设置，只能在 BEFORE_START 状态写入
func (s *GameSession) ApplySettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateBeforeStart {
		return errors.StateNotAllowed("游戏已开始，不能修改设置")
	}
	settings.Categories = append([]string(nil), settings.Categories...)
	s.settings = settings
	return nil
}

// Round 当前轮次
func (s *GameSession) Round() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// NextRound 进入下一轮
func (s *GameSession) NextRound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round++
	return s.round
}

// HasNextRound 是否还有剩余轮次
func (s *GameSession) HasNextRound() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round < s.settings.Round
}

// Turn 当前回合序号，-1 表示本轮还没有开始描述
func (s *GameSession) Turn() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn
}

// TurnLimit 本轮回合总数
func (s *GameSession) TurnLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turnLimit()
}

func (s *GameSession) turnLimit() int {
	return s.settings.Turn * len(s.turnOrder)
}

// NextTurn 回合序号加一，返回新的序号。已达上限时返回 StateNotAllowed。
// 返回值等于上限表示所有回合都已结束。
func (s *GameSession) NextTurn() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn >= s.turnLimit() {
		return s.turn, errors.StateNotAllowed("回合已全部结束: turn=%d, limit=%d", s.turn, s.turnLimit())
	}
	s.turn++
	s.lastActivity = time.Now()
	return s.turn, nil
}

// TurnsFinished 是否所有回合都已结束
func (s *GameSession) TurnsFinished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn >= s.turnLimit()
}

// SetTurnOrder 设置本轮发言顺序
func (s *GameSession) SetTurnOrder(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnOrder = append([]string(nil), order...)
}

// TurnOrder 本轮发言顺序
func (s *GameSession) TurnOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.turnOrder...)
}

// InTurnOrder 玩家是否参与本轮
func (s *GameSession) InTurnOrder(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.turnOrder {
		if id == userID {
			return true
		}
	}
	return false
}

// CurrentTurnID 当前回合的玩家，顺序循环使用
func (s *GameSession) CurrentTurnID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTurnID()
}

func (s *GameSession) currentTurnID() string {
	if len(s.turnOrder) == 0 || s.turn < 0 || s.turn >= s.turnLimit() {
		return ""
	}
	return s.turnOrder[s.turn%len(s.turnOrder)]
}

// SetLiar 设置本轮骗子
func (s *GameSession) SetLiar(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liarID = userID
}

// LiarID 本轮骗子
func (s *GameSession) LiarID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liarID
}

// SetKeyword 设置本轮类别和关键词
func (s *GameSession) SetKeyword(category, keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
	s.keyword = keyword
}

// Category 本轮类别
func (s *GameSession) Category() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.category
}

// Keyword 本轮关键词
func (s *GameSession) Keyword() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyword
}

// AddVoteResult 记录一票，同一玩家本轮重复投票返回 NotAllowedAction。
// suspect 为空表示超时弃权。
func (s *GameSession) AddVoteResult(voter, suspect string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, voted := s.voteResult[voter]; voted {
		return errors.NotAllowed("玩家已投票: %s", voter)
	}
	s.voteResult[voter] = suspect
	s.voteCount++
	s.lastActivity = time.Now()
	return nil
}

// HasVoted 玩家本轮是否已投票
func (s *GameSession) HasVoted(voter string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voteResult[voter]
	return ok
}

// VoteCount 已投票人数
func (s *GameSession) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteCount
}

// VoteResult 投票结果副本
func (s *GameSession) VoteResult() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.voteResult))
	for k, v := range s.voteResult {
		out[k] = v
	}
	return out
}

// VoteFinished 所有参与本轮的玩家（包括骗子）都已投票
func (s *GameSession) VoteFinished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turnOrder) > 0 && s.voteCount == len(s.turnOrder)
}

// MissingVoters 还没有投票的玩家，按发言顺序
func (s *GameSession) MissingVoters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var missing []string
	for _, id := range s.turnOrder {
		if _, ok := s.voteResult[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// DepartedVoters 已离开房间但还没有投票的本轮玩家
func (s *GameSession) DepartedVoters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var departed []string
	for _, id := range s.turnOrder {
		if _, voted := s.voteResult[id]; voted {
			continue
		}
		if _, present := s.scoreboard[id]; !present {
			departed = append(departed, id)
		}
	}
	return departed
}

// MostVotedUserIDAndCount 并列最高票的嫌疑人
func (s *GameSession) MostVotedUserIDAndCount() []VoteCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TallyVotes(s.voteResult)
}

// IsUsersMatchLiar 唯一最高票是否为骗子，平票视为没抓到
func (s *GameSession) IsUsersMatchLiar() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isUsersMatchLiar()
}

func (s *GameSession) isUsersMatchLiar() bool {
	top := TallyVotes(s.voteResult)
	return len(top) == 1 && s.liarID != "" && top[0].UserID == s.liarID
}

// SetLiarAnswer 记录骗子是否猜中关键词
func (s *GameSession) SetLiarAnswer(correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liarAnswer = correct
}

// LiarAnswer 骗子是否猜中关键词
func (s *GameSession) LiarAnswer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liarAnswer
}

// UpdateScoreBoard 按本轮结果计分，每轮只能执行一次，返回本轮得分增量
func (s *GameSession) UpdateScoreBoard() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scored {
		return nil, errors.StateNotAllowed("本轮已计分")
	}
	delta := ApplyScore(s.scoreboard, RoundOutcome{
		LiarID:     s.liarID,
		Players:    s.turnOrder,
		Votes:      s.voteResult,
		Matched:    s.isUsersMatchLiar(),
		LiarAnswer: s.liarAnswer,
	})
	s.scored = true
	return delta, nil
}

// Scored 本轮是否已计分
func (s *GameSession) Scored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scored
}

// Scoreboard 积分榜副本
func (s *GameSession) Scoreboard() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.scoreboard))
	for k, v := range s.scoreboard {
		out[k] = v
	}
	return out
}

// AddPlayer 玩家加入房间
func (s *GameSession) AddPlayer(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scoreboard[userID]; !ok {
		s.scoreboard[userID] = 0
	}
}

// RemovePlayer 玩家离开房间
func (s *GameSession) RemovePlayer(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scoreboard, userID)
}

// Rankings 按分数降序排名，同分同名次，同分内按ID排序
func (s *GameSession) Rankings() []Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rankings := make([]Ranking, 0, len(s.scoreboard))
	for id, score := range s.scoreboard {
		rankings = append(rankings, Ranking{UserID: id, Score: score})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score > rankings[j].Score
		}
		return rankings[i].UserID < rankings[j].UserID
	})
	for i := range rankings {
		if i > 0 && rankings[i].Score == rankings[i-1].Score {
			rankings[i].Rank = rankings[i-1].Rank
		} else {
			rankings[i].Rank = i + 1
		}
	}
	return rankings
}

// Initialize 新一局开始：计数器、本轮数据和积分清零
func (s *GameSession) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = 0
	s.resetTurn()
	s.resetVoteResult()
	s.resetLiarInfo()
	for id := range s.scoreboard {
		s.scoreboard[id] = 0
	}
}

// Reset 整局结束，回到 BEFORE_START 可以重新设置
func (s *GameSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateBeforeStart
	s.settings = Settings{}
	s.round = 0
	s.resetTurn()
	s.resetVoteResult()
	s.resetLiarInfo()
	for id := range s.scoreboard {
		s.scoreboard[id] = 0
	}
	s.lastActivity = time.Now()
}

// ResetTurn 重置回合信息
func (s *GameSession) ResetTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTurn()
}

func (s *GameSession) resetTurn() {
	s.turn = -1
	s.turnOrder = nil
}

// ResetVoteResult 清空投票
func (s *GameSession) ResetVoteResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetVoteResult()
}

func (s *GameSession) resetVoteResult() {
	s.voteResult = make(map[string]string)
	s.voteCount = 0
}

// ResetLiarInfo 清空骗子和关键词信息
func (s *GameSession) ResetLiarInfo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLiarInfo()
}

func (s *GameSession) resetLiarInfo() {
	s.liarID = ""
	s.liarAnswer = false
	s.category = ""
	s.keyword = ""
	s.scored = false
}

// SetTimer 记录某阶段当前计时器的关联ID
func (s *GameSession) SetTimer(phase Phase, correlationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[phase] = correlationID
}

// ClearTimer 清除某阶段的计时器记录
func (s *GameSession) ClearTimer(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, phase)
}

// TimerID 某阶段当前计时器的关联ID，没有时为空
func (s *GameSession) TimerID(phase Phase) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timers[phase]
}

// TimerRunning 某阶段计时器是否在运行
func (s *GameSession) TimerRunning(phase Phase) bool {
	return s.TimerID(phase) != ""
}

// LastActivity 最后活动时间
func (s *GameSession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Snapshot 生成只读快照，不包含骗子和关键词
func (s *GameSession) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := make(map[string]int, len(s.scoreboard))
	for k, v := range s.scoreboard {
		board[k] = v
	}
	timers := make(map[Phase]bool, len(s.timers))
	for k, v := range s.timers {
		timers[k] = v != ""
	}
	settings := s.settings
	settings.Categories = append([]string(nil), s.settings.Categories...)

	return Snapshot{
		RoomID:        s.roomID,
		OwnerID:       s.ownerID,
		State:         s.state,
		Round:         s.round,
		Turn:          s.turn,
		TurnOrder:     append([]string(nil), s.turnOrder...),
		CurrentTurnID: s.currentTurnID(),
		Category:      s.category,
		Settings:      settings,
		VoteCount:     s.voteCount,
		Scoreboard:    board,
		Timers:        timers,
	}
}
