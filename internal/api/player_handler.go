package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/models"
	"github.com/wfunc/liar-game/internal/repository"
	"github.com/wfunc/liar-game/internal/utils"
	"go.uber.org/zap"
)

// PlayerHandler 访客玩家处理器
type PlayerHandler struct {
	players repository.PlayerRepository
	records repository.GameRecordRepository
	jwt     *utils.JWTManager
	log     *zap.Logger
}

// NewPlayerHandler 创建访客玩家处理器
func NewPlayerHandler(players repository.PlayerRepository, records repository.GameRecordRepository, jwt *utils.JWTManager, log *zap.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, records: records, jwt: jwt, log: log}
}

// CreatePlayerRequest 创建访客请求
type CreatePlayerRequest struct {
	Nickname string `json:"nickname" binding:"required,max=32"`
}

// PlayerResponse 访客玩家和令牌
type PlayerResponse struct {
	PlayerID  string `json:"player_id"`
	Nickname  string `json:"nickname"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Create 创建访客玩家并签发令牌
// POST /api/v1/players
func (h *PlayerHandler) Create(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		fail(c, errors.New(errors.ErrInvalidParam, "昵称不能为空"))
		return
	}

	player := &models.Player{
		PlayerID: uuid.New().String(),
		Nickname: nickname,
	}
	if err := h.players.Create(c.Request.Context(), player); err != nil {
		h.log.Error("创建玩家失败", zap.Error(err))
		fail(c, errors.Wrap(err, errors.ErrDatabaseInsert))
		return
	}

	token, err := h.jwt.GenerateToken(player.PlayerID, player.Nickname)
	if err != nil {
		fail(c, errors.Wrap(err, errors.ErrUnknown, "签发令牌失败"))
		return
	}

	h.log.Info("创建访客玩家", zap.String("player_id", player.PlayerID), zap.String("nickname", nickname))
	created(c, PlayerResponse{
		PlayerID:  player.PlayerID,
		Nickname:  player.Nickname,
		Token:     token,
		ExpiresIn: int64(h.jwt.Expiry().Seconds()),
	})
}

// Stats 玩家获胜次数
// GET /api/v1/players/:id/stats
func (h *PlayerHandler) Stats(c *gin.Context) {
	playerID := c.Param("id")
	player, err := h.players.FindByPlayerID(c.Request.Context(), playerID)
	if err != nil {
		fail(c, errors.Wrapf(err, errors.ErrNotFound, "玩家不存在: %s", playerID))
		return
	}
	wins, err := h.records.CountWinsByPlayer(c.Request.Context(), playerID)
	if err != nil {
		fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	ok(c, gin.H{
		"player_id":    player.PlayerID,
		"nickname":     player.Nickname,
		"last_seen_at": player.LastSeenAt,
		"wins":         wins,
	})
}
