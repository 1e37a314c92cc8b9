package game

import (
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/wfunc/liar-game/internal/errors"
)

// 入站命令
const (
	MethodStartGame           = "startGame"
	MethodStartRound          = "startRound"
	MethodSelectLiar          = "selectLiar"
	MethodOpenKeyword         = "openKeyword"
	MethodRequestTurnFinished = "requestTurnFinished"
	MethodVoteLiar            = "voteLiar"
	MethodOpenLiar            = "openLiar"
	MethodCheckKeywordCorrect = "checkKeywordCorrect"
	MethodNotifyScores        = "notifyScores"
	MethodNotifyRoundEnd      = "notifyRoundEnd"
	MethodOpenScores          = "openScores"
	MethodPublishRankings     = "publishRankings"
	MethodGetGameState        = "getGameState"
	MethodGetGameCategory     = "getGameCategory"
)

// 出站通知
const (
	NotifyGameStarted       = "notifyGameStarted"
	NotifyRoundStarted      = "notifyRoundStarted"
	NotifyLiarSelected      = "notifyLiarSelected"
	NotifyKeywordOpened     = "notifyKeywordOpened"
	NotifyTurn              = "notifyTurn"
	NotifyTurnTimeout       = "notifyTurnTimeout"
	NotifyVoteStarted       = "notifyVoteStarted"
	NotifyVoteResult        = "notifyVoteResult"
	NotifyNewVoteNeeded     = "notifyNewVoteNeeded"
	NotifyVoteTimeout       = "notifyVoteTimeout"
	NotifyLiarOpened        = "notifyLiarOpened"
	NotifyLiarAnswerNeeded  = "notifyLiarAnswerNeeded"
	NotifyLiarAnswerCorrect = "notifyLiarAnswerCorrect"
	NotifyLiarAnswerTimeout = "notifyLiarAnswerTimeout"
	NotifyScores            = "notifyScores"
	NotifyRoundEnd          = "notifyRoundEnd"
	NotifyRankingsPublished = "notifyRankingsPublished"
	NotifyGameEnd           = "notifyGameEnd"
	NotifyGameState         = "notifyGameState"
	NotifyGameCategory      = "notifyGameCategory"
	NotifyError             = "notifyError"
)

// Envelope 客户端与服务端之间的消息信封
type Envelope struct {
	UUID     string          `json:"uuid"`
	SenderID string          `json:"senderId"`
	Method   string          `json:"method"`
	Body     json.RawMessage `json:"body,omitempty"`
}

// Decode 解析消息体，空消息体保持零值
func (e Envelope) Decode(v any) error {
	if len(e.Body) == 0 || string(e.Body) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Body, v); err != nil {
		return errors.Wrapf(err, errors.ErrMessageFormat, "消息体格式错误: %s", e.Method)
	}
	return nil
}

// StartGameBody startGame 的消息体
type StartGameBody struct {
	Round    int      `json:"round"`
	Turn     int      `json:"turn"`
	Category []string `json:"category"`
}

// VoteLiarBody voteLiar 的消息体
type VoteLiarBody struct {
	LiarID string `json:"liarId"`
}

// KeywordBody checkKeywordCorrect 的消息体
type KeywordBody struct {
	Keyword string `json:"keyword"`
}

// GameStartedBody 游戏开始通知
type GameStartedBody struct {
	Settings Settings `json:"settings"`
	Players  []string `json:"players"`
}

// RoundStartedBody 新一轮开始通知
type RoundStartedBody struct {
	Round int `json:"round"`
}

// LiarSelectedBody 私发给每个玩家：自己是否为骗子
type LiarSelectedBody struct {
	Round int  `json:"round"`
	Liar  bool `json:"liar"`
}

// KeywordOpenedBody 私发给每个玩家的类别和关键词，骗子拿不到关键词
type KeywordOpenedBody struct {
	Category  string   `json:"category"`
	Keyword   string   `json:"keyword,omitempty"`
	Liar      bool     `json:"liar"`
	TurnOrder []string `json:"turnOrder"`
}

// TurnBody 回合通知
type TurnBody struct {
	Turn   int    `json:"turn"`
	UserID string `json:"userId"`
	Limit  int    `json:"limit"`
}

// VoteStartedBody 投票开始通知
type VoteStartedBody struct {
	Voters []string `json:"voters"`
}

// VoteResultBody 投票结果
type VoteResultBody struct {
	MostVoted []VoteCount       `json:"mostVoted"`
	Votes     map[string]string `json:"votes"`
}

// VoteTimeoutBody 投票超时，列出被记为弃权的玩家
type VoteTimeoutBody struct {
	Abstained []string `json:"abstained"`
}

// LiarOpenedBody 公布骗子
type LiarOpenedBody struct {
	LiarID  string `json:"liarId"`
	Matched bool   `json:"matched"`
}

// LiarAnswerNeededBody 私发给骗子
type LiarAnswerNeededBody struct {
	Category string `json:"category"`
}

// LiarAnswerBody 骗子猜词结果
type LiarAnswerBody struct {
	LiarID  string `json:"liarId"`
	Answer  string `json:"answer,omitempty"`
	Keyword string `json:"keyword"`
	Correct bool   `json:"correct"`
}

// ScoresBody 本轮计分
type ScoresBody struct {
	Scoreboard map[string]int `json:"scoreboard"`
	Delta      map[string]int `json:"delta"`
}

// RoundEndBody 本轮结束
type RoundEndBody struct {
	Round     int   `json:"round"`
	NextState State `json:"nextState"`
}

// RankingsBody 最终排名
type RankingsBody struct {
	Rankings []Ranking `json:"rankings"`
}

// GameEndBody 游戏结束
type GameEndBody struct {
	Rounds  int    `json:"rounds"`
	Aborted bool   `json:"aborted"`
	Reason  string `json:"reason,omitempty"`
}

// CategoryBody 可选类别
type CategoryBody struct {
	Categories []string `json:"categories"`
	Current    string   `json:"current,omitempty"`
}

// ErrorBody 私发给命令发送者的错误
type ErrorBody struct {
	Code    int    `json:"code"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// NewErrorBody 由 AppError 生成错误消息体
func NewErrorBody(err *errors.AppError) ErrorBody {
	return ErrorBody{Code: int(err.Code), Tag: err.Tag(), Message: err.Error()}
}

// PlayerLister 房间目录，提供房间当前玩家
type PlayerLister interface {
	ListPlayers(roomID string) ([]string, error)
}

// Publisher 出站通知，三种寻址方式
type Publisher interface {
	Broadcast(roomID, method string, body any)
	Unicast(roomID, playerID, method string, body any)
	Error(roomID, playerID string, err *errors.AppError)
}

// Random 随机源，*rand.Rand 满足该接口
type Random interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRandom 默认随机源：当前时间与房间ID哈希混合作为种子，不用于安全场景
func NewRandom(roomID string) Random {
	h := fnv.New64a()
	_, _ = h.Write([]byte(roomID))
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(h.Sum64())))
}
