package game

import (
	"context"
	"time"

	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/logger"
	"go.uber.org/zap"
)

// Options 编排器参数
type Options struct {
	MinPlayers    int
	MaxRound      int
	MaxTurn       int
	TurnTimeout   time.Duration
	VoteTimeout   time.Duration
	AnswerTimeout time.Duration

	// Random 为房间创建随机源，为空时使用 NewRandom
	Random func(roomID string) Random
	// Recorder 保存游戏记录，可为空
	Recorder Recorder
}

func (o *Options) setDefaults() {
	if o.MinPlayers <= 0 {
		o.MinPlayers = 1
	}
	if o.MaxRound <= 0 {
		o.MaxRound = 5
	}
	if o.MaxTurn <= 0 {
		o.MaxTurn = 3
	}
	if o.TurnTimeout <= 0 {
		o.TurnTimeout = 30 * time.Second
	}
	if o.VoteTimeout <= 0 {
		o.VoteTimeout = 60 * time.Second
	}
	if o.AnswerTimeout <= 0 {
		o.AnswerTimeout = 30 * time.Second
	}
	if o.Random == nil {
		o.Random = NewRandom
	}
}

// Orchestrator 游戏命令入口：校验前置条件、修改会话、发送通知、设置计时器
type Orchestrator struct {
	sessions   *SessionRegistry
	timers     *TimerCoordinator
	players    PlayerLister
	publisher  Publisher
	vocabulary *Vocabulary
	opts       Options
	logger     *zap.Logger
}

// NewOrchestrator 创建编排器
func NewOrchestrator(sessions *SessionRegistry, timers *TimerCoordinator, players PlayerLister,
	publisher Publisher, vocabulary *Vocabulary, opts Options, logger *zap.Logger) *Orchestrator {
	opts.setDefaults()
	return &Orchestrator{
		sessions:   sessions,
		timers:     timers,
		players:    players,
		publisher:  publisher,
		vocabulary: vocabulary,
		opts:       opts,
		logger:     logger,
	}
}

// Run 启动超时处理 worker
func (o *Orchestrator) Run(ctx context.Context, workers int) {
	o.timers.Run(ctx, workers, o.HandleTimeout)
}

// Sessions 会话注册表
func (o *Orchestrator) Sessions() *SessionRegistry {
	return o.sessions
}

// withSession 持有会话命令锁执行 fn
func (o *Orchestrator) withSession(roomID string, fn func(s *GameSession) error) error {
	session, err := o.sessions.Get(roomID)
	if err != nil {
		return err
	}
	session.Lock()
	defer session.Unlock()
	return fn(session)
}

func requireOwner(s *GameSession, senderID string) error {
	if senderID != s.OwnerID() {
		return errors.NotAllowed("只有房主可以执行该操作: %s", senderID)
	}
	return nil
}

func requireState(s *GameSession, want State) error {
	if current := s.State(); current != want {
		return errors.StateNotAllowed("当前状态为 %s，需要 %s", current, want)
	}
	return nil
}

// ownerCommand 房主命令的公共前置检查
func ownerCommand(s *GameSession, senderID string, want State) error {
	if err := requireOwner(s, senderID); err != nil {
		return err
	}
	return requireState(s, want)
}

func (o *Orchestrator) armTimer(s *GameSession, phase Phase, delay time.Duration, turn int) {
	s.SetTimer(phase, o.timers.Start(s.RoomID(), phase, delay, turn))
}

func (o *Orchestrator) disarmTimer(s *GameSession, phase Phase) {
	o.timers.Cancel(s.RoomID(), phase)
	s.ClearTimer(phase)
}

func (o *Orchestrator) disarmAll(s *GameSession) {
	o.timers.CancelRoom(s.RoomID())
	for _, phase := range []Phase{PhaseTurn, PhaseVote, PhaseAnswer} {
		s.ClearTimer(phase)
	}
}

// StartGame 写入设置并进入 BEFORE_ROUND
func (o *Orchestrator) StartGame(ctx context.Context, roomID, senderID string, body StartGameBody) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StateBeforeStart); err != nil {
			return err
		}
		settings, err := o.validateSettings(body)
		if err != nil {
			return err
		}
		players, err := o.players.ListPlayers(roomID)
		if err != nil {
			return err
		}
		if len(players) < o.opts.MinPlayers {
			return errors.NotAllowed("玩家人数不足: %d < %d", len(players), o.opts.MinPlayers)
		}

		if err := s.ApplySettings(settings); err != nil {
			return err
		}
		for _, p := range players {
			s.AddPlayer(p)
		}
		s.Initialize()
		s.Advance()

		logger.LogGameEvent(o.logger, "game_started", roomID,
			zap.Int("round", settings.Round),
			zap.Int("turn", settings.Turn),
			zap.Strings("categories", settings.Categories))
		o.publisher.Broadcast(roomID, NotifyGameStarted, GameStartedBody{Settings: settings, Players: players})
		return nil
	})
}

func (o *Orchestrator) validateSettings(body StartGameBody) (Settings, error) {
	if body.Round < 1 || body.Round > o.opts.MaxRound {
		return Settings{}, errors.ParameterMissing("轮数必须在 1-%d 之间: %d", o.opts.MaxRound, body.Round)
	}
	if body.Turn < 1 || body.Turn > o.opts.MaxTurn {
		return Settings{}, errors.ParameterMissing("描述次数必须在 1-%d 之间: %d", o.opts.MaxTurn, body.Turn)
	}
	if len(body.Category) == 0 {
		return Settings{}, errors.ParameterMissing("至少需要一个类别")
	}
	seen := make(map[string]bool, len(body.Category))
	categories := make([]string, 0, len(body.Category))
	for _, c := range body.Category {
		if !o.vocabulary.Has(c) {
			return Settings{}, errors.NotExist("类别不存在: %s", c)
		}
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	return Settings{Round: body.Round, Turn: body.Turn, Categories: categories}, nil
}

// StartRound 开始新一轮
func (o *Orchestrator) StartRound(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StateBeforeRound); err != nil {
			return err
		}
		if !s.HasNextRound() {
			return errors.StateNotAllowed("已达到最大轮数: %d", s.Settings().Round)
		}

		s.ResetTurn()
		s.ResetVoteResult()
		s.ResetLiarInfo()
		round := s.NextRound()
		s.Advance()

		logger.LogGameEvent(o.logger, "round_started", roomID, zap.Int("round", round))
		o.publisher.Broadcast(roomID, NotifyRoundStarted, RoundStartedBody{Round: round})
		return nil
	})
}

// SelectLiar 从当前玩家中随机选出骗子，只私发给每个玩家自己的身份
func (o *Orchestrator) SelectLiar(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StateSelectLiar); err != nil {
			return err
		}
		players, err := o.players.ListPlayers(roomID)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			return errors.NotExist("房间没有玩家: %s", roomID)
		}

		liar := players[o.opts.Random(roomID).Intn(len(players))]
		s.SetLiar(liar)
		s.Advance()

		logger.LogGameEvent(o.logger, "liar_selected", roomID, zap.Int("round", s.Round()))
		for _, p := range players {
			o.publisher.Unicast(roomID, p, NotifyLiarSelected, LiarSelectedBody{Round: s.Round(), Liar: p == liar})
		}
		return nil
	})
}

// OpenKeyword 选出类别和关键词，打乱发言顺序并开始第一个回合
func (o *Orchestrator) OpenKeyword(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StateOpenKeyword); err != nil {
			return err
		}
		players, err := o.players.ListPlayers(roomID)
		if err != nil {
			return err
		}
		liar := s.LiarID()
		if !contains(players, liar) {
			return errors.NotExist("骗子已不在房间: %s", liar)
		}

		rng := o.opts.Random(roomID)
		categories := s.Settings().Categories
		category := categories[rng.Intn(len(categories))]
		keywords, ok := o.vocabulary.Keywords(category)
		if !ok {
			return errors.NotExist("类别不存在: %s", category)
		}
		keyword := keywords[rng.Intn(len(keywords))]
		order := append([]string(nil), players...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		s.SetKeyword(category, keyword)
		s.SetTurnOrder(order)
		s.Advance()

		logger.LogGameEvent(o.logger, "keyword_opened", roomID,
			zap.String("category", category),
			zap.Strings("turn_order", order))
		for _, p := range order {
			body := KeywordOpenedBody{Category: category, TurnOrder: order, Liar: p == liar}
			if p != liar {
				body.Keyword = keyword
			}
			o.publisher.Unicast(roomID, p, NotifyKeywordOpened, body)
		}
		return o.advanceTurn(s)
	})
}

// advanceTurn 回合加一。最后一个回合结束后进入投票。
func (o *Orchestrator) advanceTurn(s *GameSession) error {
	turn, err := s.NextTurn()
	if err != nil {
		return err
	}
	roomID := s.RoomID()

	if turn >= s.TurnLimit() {
		o.disarmTimer(s, PhaseTurn)
		s.Advance()
		voters := s.TurnOrder()
		logger.LogGameEvent(o.logger, "vote_started", roomID, zap.Int("voters", len(voters)))
		o.publisher.Broadcast(roomID, NotifyVoteStarted, VoteStartedBody{Voters: voters})
		o.armTimer(s, PhaseVote, o.opts.VoteTimeout, 0)
		o.abstainDeparted(s)
		return nil
	}

	o.publisher.Broadcast(roomID, NotifyTurn, TurnBody{Turn: turn, UserID: s.CurrentTurnID(), Limit: s.TurnLimit()})
	o.armTimer(s, PhaseTurn, o.opts.TurnTimeout, turn)
	return nil
}

// RequestTurnFinished 当前回合的玩家结束描述
func (o *Orchestrator) RequestTurnFinished(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := requireState(s, StateInProgress); err != nil {
			return err
		}
		if current := s.CurrentTurnID(); senderID != current {
			return errors.NotAllowed("不是当前回合的玩家: %s, 当前: %s", senderID, current)
		}
		return o.advanceTurn(s)
	})
}

// VoteLiar 记录一票，所有人投完后统计
func (o *Orchestrator) VoteLiar(ctx context.Context, roomID, voterID, suspectID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := requireState(s, StateVoteLiar); err != nil {
			return err
		}
		if !s.InTurnOrder(voterID) {
			return errors.NotAllowed("玩家没有参与本轮: %s", voterID)
		}
		if suspectID == "" {
			return errors.ParameterMissing("缺少投票对象")
		}
		if !s.InTurnOrder(suspectID) {
			return errors.NotExist("投票对象不存在: %s", suspectID)
		}
		if err := s.AddVoteResult(voterID, suspectID); err != nil {
			return err
		}

		o.logger.Debug("收到投票",
			zap.String("room_id", roomID),
			zap.String("voter", voterID),
			zap.Int("vote_count", s.VoteCount()))
		if s.VoteFinished() {
			o.disarmTimer(s, PhaseVote)
			o.finishVote(s)
		}
		return nil
	})
}

// finishVote 统计投票。平票时清空所有票重新投票。
func (o *Orchestrator) finishVote(s *GameSession) {
	roomID := s.RoomID()
	top := s.MostVotedUserIDAndCount()

	if IsTie(top) {
		s.ResetVoteResult()
		logger.LogGameEvent(o.logger, "vote_tied", roomID, zap.Int("tied", len(top)))
		o.publisher.Broadcast(roomID, NotifyNewVoteNeeded, VoteResultBody{MostVoted: top, Votes: map[string]string{}})
		o.armTimer(s, PhaseVote, o.opts.VoteTimeout, 0)
		o.abstainDeparted(s)
		return
	}

	votes := s.VoteResult()
	s.Advance()
	logger.LogGameEvent(o.logger, "vote_finished", roomID, zap.Any("most_voted", top))
	o.publisher.Broadcast(roomID, NotifyVoteResult, VoteResultBody{MostVoted: top, Votes: votes})
}

// abstainDeparted 已离开的玩家在投票阶段直接记为弃权，全部投完时立即统计
func (o *Orchestrator) abstainDeparted(s *GameSession) {
	departed := s.DepartedVoters()
	if len(departed) == 0 {
		return
	}
	for _, voter := range departed {
		if err := s.AddVoteResult(voter, ""); err != nil {
			o.logger.Debug("离开玩家弃权", zap.String("voter", voter), zap.Error(err))
		}
	}
	o.logger.Debug("离开玩家记为弃权",
		zap.String("room_id", s.RoomID()),
		zap.Strings("departed", departed))
	if s.VoteFinished() {
		o.disarmTimer(s, PhaseVote)
		o.finishVote(s)
	}
}

// OpenLiar 公布骗子并等待骗子猜词
func (o *Orchestrator) OpenLiar(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StateOpenLiar); err != nil {
			return err
		}
		liar := s.LiarID()
		matched := s.IsUsersMatchLiar()
		s.Advance()
		o.armTimer(s, PhaseAnswer, o.opts.AnswerTimeout, 0)

		logger.LogGameEvent(o.logger, "liar_opened", roomID,
			zap.String("liar_id", liar),
			zap.Bool("matched", matched))
		o.publisher.Broadcast(roomID, NotifyLiarOpened, LiarOpenedBody{LiarID: liar, Matched: matched})
		o.publisher.Unicast(roomID, liar, NotifyLiarAnswerNeeded, LiarAnswerNeededBody{Category: s.Category()})
		return nil
	})
}

// CheckKeywordCorrect 骗子提交猜测的关键词
func (o *Orchestrator) CheckKeywordCorrect(ctx context.Context, roomID, senderID, answer string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := requireState(s, StateLiarAnswer); err != nil {
			return err
		}
		liar := s.LiarID()
		if senderID != liar {
			return errors.NotAllowed("只有骗子可以猜关键词: %s", senderID)
		}
		if answer == "" {
			return errors.ParameterMissing("缺少关键词")
		}

		o.disarmTimer(s, PhaseAnswer)
		keyword := s.Keyword()
		correct := answer == keyword
		s.SetLiarAnswer(correct)
		s.Advance()

		logger.LogGameEvent(o.logger, "liar_answered", roomID, zap.Bool("correct", correct))
		o.publisher.Broadcast(roomID, NotifyLiarAnswerCorrect, LiarAnswerBody{
			LiarID: liar, Answer: answer, Keyword: keyword, Correct: correct,
		})
		return nil
	})
}

// NotifyScores 计算本轮得分
func (o *Orchestrator) NotifyScores(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StatePublishScore); err != nil {
			return err
		}
		return o.notifyScores(s)
	})
}

func (o *Orchestrator) notifyScores(s *GameSession) error {
	delta, err := s.UpdateScoreBoard()
	if err != nil {
		return err
	}
	board := s.Scoreboard()
	logger.LogGameEvent(o.logger, "scores_updated", s.RoomID(),
		zap.Int("round", s.Round()),
		zap.Any("delta", delta))
	o.publisher.Broadcast(s.RoomID(), NotifyScores, ScoresBody{Scoreboard: board, Delta: delta})
	return nil
}

// NotifyRoundEnd 结束本轮：还有剩余轮次时回到 BEFORE_ROUND，否则进入 PUBLISH_RANKINGS
func (o *Orchestrator) NotifyRoundEnd(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := requireState(s, StatePublishScore); err != nil {
			return err
		}
		return o.notifyRoundEnd(s)
	})
}

func (o *Orchestrator) notifyRoundEnd(s *GameSession) error {
	if !s.Scored() {
		return errors.StateNotAllowed("本轮还没有计分")
	}
	round := s.Round()

	var next State
	if s.HasNextRound() {
		next = s.Loop()
		s.ResetTurn()
		s.ResetVoteResult()
		s.ResetLiarInfo()
	} else {
		next = s.Advance()
	}

	logger.LogGameEvent(o.logger, "round_ended", s.RoomID(),
		zap.Int("round", round),
		zap.String("next_state", string(next)))
	o.publisher.Broadcast(s.RoomID(), NotifyRoundEnd, RoundEndBody{Round: round, NextState: next})
	return nil
}

// OpenScores 计分并结束本轮
func (o *Orchestrator) OpenScores(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StatePublishScore); err != nil {
			return err
		}
		if err := o.notifyScores(s); err != nil {
			return err
		}
		return o.notifyRoundEnd(s)
	})
}

// PublishRankings 公布最终排名，保存游戏记录并重置会话
func (o *Orchestrator) PublishRankings(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if err := ownerCommand(s, senderID, StatePublishRankings); err != nil {
			return err
		}
		rankings := s.Rankings()
		settings := s.Settings()
		rounds := s.Round()

		o.publisher.Broadcast(roomID, NotifyRankingsPublished, RankingsBody{Rankings: rankings})
		if o.opts.Recorder != nil {
			result := GameResult{
				RoomID:     roomID,
				OwnerID:    s.OwnerID(),
				Settings:   settings,
				Rounds:     rounds,
				Rankings:   rankings,
				FinishedAt: time.Now(),
			}
			if err := o.opts.Recorder.Save(ctx, result); err != nil {
				o.logger.Error("保存游戏记录失败", zap.String("room_id", roomID), zap.Error(err))
			}
		}

		o.disarmAll(s)
		s.Advance()
		s.Reset()

		logger.LogGameEvent(o.logger, "game_ended", roomID, zap.Int("rounds", rounds))
		o.publisher.Broadcast(roomID, NotifyGameEnd, GameEndBody{Rounds: rounds})
		return nil
	})
}

// GetGameState 私发当前会话快照
func (o *Orchestrator) GetGameState(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if _, ok := s.Scoreboard()[senderID]; !ok {
			return errors.NotAllowed("不是房间成员: %s", senderID)
		}
		o.publisher.Unicast(roomID, senderID, NotifyGameState, s.Snapshot())
		return nil
	})
}

// GetGameCategory 私发可选类别
func (o *Orchestrator) GetGameCategory(ctx context.Context, roomID, senderID string) error {
	return o.withSession(roomID, func(s *GameSession) error {
		if _, ok := s.Scoreboard()[senderID]; !ok {
			return errors.NotAllowed("不是房间成员: %s", senderID)
		}
		o.publisher.Unicast(roomID, senderID, NotifyGameCategory, CategoryBody{
			Categories: o.vocabulary.Categories(),
			Current:    s.Category(),
		})
		return nil
	})
}

// HandleTimeout 处理计时器触发的系统命令，已失效的超时直接丢弃
func (o *Orchestrator) HandleTimeout(ctx context.Context, t Timeout) {
	err := o.withSession(t.RoomID, func(s *GameSession) error {
		if t.CorrelationID == "" || s.TimerID(t.Phase) != t.CorrelationID {
			return errors.StateNotAllowed("计时器已失效")
		}

		switch t.Phase {
		case PhaseTurn:
			return o.turnTimeout(s, t)
		case PhaseVote:
			return o.voteTimeout(s)
		case PhaseAnswer:
			return o.answerTimeout(s)
		}
		return errors.NotExist("未知的计时阶段: %s", t.Phase)
	})
	if err != nil {
		o.logger.Debug("丢弃超时命令",
			zap.String("room_id", t.RoomID),
			zap.String("phase", string(t.Phase)),
			zap.String("correlation_id", t.CorrelationID),
			zap.Error(err))
	}
}

func (o *Orchestrator) turnTimeout(s *GameSession, t Timeout) error {
	if err := requireState(s, StateInProgress); err != nil {
		return err
	}
	if s.Turn() != t.Turn {
		return errors.StateNotAllowed("回合已变化: %d -> %d", t.Turn, s.Turn())
	}
	s.ClearTimer(PhaseTurn)
	o.publisher.Broadcast(s.RoomID(), NotifyTurnTimeout, TurnBody{Turn: t.Turn, UserID: s.CurrentTurnID(), Limit: s.TurnLimit()})
	return o.advanceTurn(s)
}

func (o *Orchestrator) voteTimeout(s *GameSession) error {
	if err := requireState(s, StateVoteLiar); err != nil {
		return err
	}
	s.ClearTimer(PhaseVote)
	missing := s.MissingVoters()
	for _, voter := range missing {
		if err := s.AddVoteResult(voter, ""); err != nil {
			return err
		}
	}
	logger.LogGameEvent(o.logger, "vote_timeout", s.RoomID(), zap.Strings("abstained", missing))
	o.publisher.Broadcast(s.RoomID(), NotifyVoteTimeout, VoteTimeoutBody{Abstained: missing})
	o.finishVote(s)
	return nil
}

func (o *Orchestrator) answerTimeout(s *GameSession) error {
	if err := requireState(s, StateLiarAnswer); err != nil {
		return err
	}
	s.ClearTimer(PhaseAnswer)
	s.SetLiarAnswer(false)
	s.Advance()
	logger.LogGameEvent(o.logger, "answer_timeout", s.RoomID())
	o.publisher.Broadcast(s.RoomID(), NotifyLiarAnswerTimeout, LiarAnswerBody{
		LiarID: s.LiarID(), Keyword: s.Keyword(),
	})
	return nil
}

// Dispatch 按 method 分发客户端命令，失败时把错误私发给发送者
func (o *Orchestrator) Dispatch(ctx context.Context, roomID string, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("处理命令panic",
				zap.String("room_id", roomID),
				zap.String("method", env.Method),
				zap.Any("panic", r))
			err = errors.Newf(errors.ErrUnknown, "处理命令失败: %s", env.Method)
			o.publisher.Error(roomID, env.SenderID, errors.From(err))
		}
	}()

	err = o.dispatch(ctx, roomID, env)
	if err != nil {
		appErr := errors.From(err)
		o.logger.Debug("命令执行失败",
			zap.String("room_id", roomID),
			zap.String("sender_id", env.SenderID),
			zap.String("method", env.Method),
			zap.String("tag", appErr.Tag()),
			zap.Error(err))
		o.publisher.Error(roomID, env.SenderID, appErr)
	}
	return err
}

func (o *Orchestrator) dispatch(ctx context.Context, roomID string, env Envelope) error {
	sender := env.SenderID
	if sender == "" {
		return errors.ParameterMissing("缺少发送者")
	}

	switch env.Method {
	case MethodStartGame:
		var body StartGameBody
		if err := env.Decode(&body); err != nil {
			return err
		}
		return o.StartGame(ctx, roomID, sender, body)
	case MethodStartRound:
		return o.StartRound(ctx, roomID, sender)
	case MethodSelectLiar:
		return o.SelectLiar(ctx, roomID, sender)
	case MethodOpenKeyword:
		return o.OpenKeyword(ctx, roomID, sender)
	case MethodRequestTurnFinished:
		return o.RequestTurnFinished(ctx, roomID, sender)
	case MethodVoteLiar:
		var body VoteLiarBody
		if err := env.Decode(&body); err != nil {
			return err
		}
		return o.VoteLiar(ctx, roomID, sender, body.LiarID)
	case MethodOpenLiar:
		return o.OpenLiar(ctx, roomID, sender)
	case MethodCheckKeywordCorrect:
		var body KeywordBody
		if err := env.Decode(&body); err != nil {
			return err
		}
		return o.CheckKeywordCorrect(ctx, roomID, sender, body.Keyword)
	case MethodNotifyScores:
		return o.NotifyScores(ctx, roomID, sender)
	case MethodNotifyRoundEnd:
		return o.NotifyRoundEnd(ctx, roomID, sender)
	case MethodOpenScores:
		return o.OpenScores(ctx, roomID, sender)
	case MethodPublishRankings:
		return o.PublishRankings(ctx, roomID, sender)
	case MethodGetGameState:
		return o.GetGameState(ctx, roomID, sender)
	case MethodGetGameCategory:
		return o.GetGameCategory(ctx, roomID, sender)
	}
	return errors.Newf(errors.ErrMessageFormat, "未知的命令: %s", env.Method)
}

// OnRoomCreated 房间创建时建立会话
func (o *Orchestrator) OnRoomCreated(roomID, ownerID string, players []string) error {
	_, err := o.sessions.Create(roomID, ownerID, players)
	return err
}

// OnRoomDeleted 房间删除时取消计时器并销毁会话
func (o *Orchestrator) OnRoomDeleted(roomID string) {
	o.timers.CancelRoom(roomID)
	if err := o.sessions.Remove(roomID); err != nil {
		o.logger.Debug("删除会话", zap.String("room_id", roomID), zap.Error(err))
	}
}

// OnPlayerJoined 玩家加入房间，加入积分榜
func (o *Orchestrator) OnPlayerJoined(roomID, playerID string) {
	_ = o.withSession(roomID, func(s *GameSession) error {
		s.AddPlayer(playerID)
		return nil
	})
}

// OnPlayerLeft 玩家离开房间。一轮进行中骗子离开或人数不足时终止本局，
// 公布得分和排名阶段只从积分榜移除。
func (o *Orchestrator) OnPlayerLeft(roomID, playerID string) {
	_ = o.withSession(roomID, func(s *GameSession) error {
		s.RemovePlayer(playerID)
		state := s.State()
		if !state.InRound() && state != StateBeforeRound {
			return nil
		}

		reason := ""
		switch {
		case state.InRound() && playerID == s.LiarID():
			reason = "骗子离开了房间"
		case len(s.Scoreboard()) < o.opts.MinPlayers:
			reason = "玩家人数不足"
		}
		if reason == "" {
			if state == StateVoteLiar {
				o.abstainDeparted(s)
			}
			return nil
		}

		rounds := s.Round()
		o.disarmAll(s)
		s.Reset()
		logger.LogGameEvent(o.logger, "game_aborted", roomID,
			zap.String("player_id", playerID),
			zap.String("reason", reason))
		o.publisher.Broadcast(roomID, NotifyGameEnd, GameEndBody{Rounds: rounds, Aborted: true, Reason: reason})
		return nil
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
