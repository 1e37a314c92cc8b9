package game

import "fmt"

// State 游戏状态枚举
type State string

const (
	StateBeforeStart     State = "BEFORE_START"     // 等待房主开始游戏
	StateBeforeRound     State = "BEFORE_ROUND"     // 等待开始新一轮
	StateSelectLiar      State = "SELECT_LIAR"      // 选择骗子
	StateOpenKeyword     State = "OPEN_KEYWORD"     // 公布关键词
	StateInProgress      State = "IN_PROGRESS"      // 轮流描述
	StateVoteLiar        State = "VOTE_LIAR"        // 投票
	StateOpenLiar        State = "OPEN_LIAR"        // 公布骗子
	StateLiarAnswer      State = "LIAR_ANSWER"      // 骗子猜关键词
	StatePublishScore    State = "PUBLISH_SCORE"    // 公布本轮得分
	StatePublishRankings State = "PUBLISH_RANKINGS" // 公布最终排名
)

// edge 状态的两条出边：advance 用于整局向前推进，loop 用于还有剩余轮次时回到下一轮
type edge struct {
	advance State
	loop    State
}

// stateGraph 状态转换表，只有 PUBLISH_SCORE 的两条出边不同
var stateGraph = map[State]edge{
	StateBeforeStart:     {advance: StateBeforeRound, loop: StateBeforeRound},
	StateBeforeRound:     {advance: StateSelectLiar, loop: StateSelectLiar},
	StateSelectLiar:      {advance: StateOpenKeyword, loop: StateOpenKeyword},
	StateOpenKeyword:     {advance: StateInProgress, loop: StateInProgress},
	StateInProgress:      {advance: StateVoteLiar, loop: StateVoteLiar},
	StateVoteLiar:        {advance: StateOpenLiar, loop: StateOpenLiar},
	StateOpenLiar:        {advance: StateLiarAnswer, loop: StateLiarAnswer},
	StateLiarAnswer:      {advance: StatePublishScore, loop: StatePublishScore},
	StatePublishScore:    {advance: StatePublishRankings, loop: StateBeforeRound},
	StatePublishRankings: {advance: StateBeforeStart, loop: StateBeforeStart},
}

// Advance 整局向前推进的下一个状态
func (s State) Advance() State {
	e, ok := stateGraph[s]
	if !ok {
		panic(fmt.Sprintf("未知的游戏状态: %s", s))
	}
	return e.advance
}

// Loop 还有剩余轮次时的下一个状态
func (s State) Loop() State {
	e, ok := stateGraph[s]
	if !ok {
		panic(fmt.Sprintf("未知的游戏状态: %s", s))
	}
	return e.loop
}

// Valid 是否为已定义的状态
func (s State) Valid() bool {
	_, ok := stateGraph[s]
	return ok
}

// CanReach 判断 to 是否是 s 的一条合法出边
func (s State) CanReach(to State) bool {
	e, ok := stateGraph[s]
	return ok && (e.advance == to || e.loop == to)
}

// InRound 是否处于一轮进行中（选骗子到骗子猜词）
func (s State) InRound() bool {
	switch s {
	case StateSelectLiar, StateOpenKeyword, StateInProgress, StateVoteLiar, StateOpenLiar, StateLiarAnswer:
		return true
	}
	return false
}

// AllStates 按游戏流程顺序返回所有状态
func AllStates() []State {
	return []State{
		StateBeforeStart,
		StateBeforeRound,
		StateSelectLiar,
		StateOpenKeyword,
		StateInProgress,
		StateVoteLiar,
		StateOpenLiar,
		StateLiarAnswer,
		StatePublishScore,
		StatePublishRankings,
	}
}
