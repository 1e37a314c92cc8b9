package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/game"
	"github.com/wfunc/liar-game/internal/middleware"
	"github.com/wfunc/liar-game/internal/repository"
	"github.com/wfunc/liar-game/internal/room"
	"go.uber.org/zap"
)

// RoomHandler 房间处理器
type RoomHandler struct {
	rooms     *room.Directory
	sessions  *game.SessionRegistry
	records   repository.GameRecordRepository
	players   repository.PlayerRepository
	publicURL string
	log       *zap.Logger
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(rooms *room.Directory, sessions *game.SessionRegistry, records repository.GameRecordRepository,
	players repository.PlayerRepository, publicURL string, log *zap.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:     rooms,
		sessions:  sessions,
		records:   records,
		players:   players,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Name string `json:"name" binding:"max=64"`
}

// RoomResponse 房间信息和会话状态
type RoomResponse struct {
	room.Room
	State game.State `json:"state"`
	Round int        `json:"round"`
}

func (h *RoomHandler) view(r room.Room) RoomResponse {
	resp := RoomResponse{Room: r, State: game.StateBeforeStart}
	if s, err := h.sessions.Get(r.ID); err == nil {
		resp.State = s.State()
		resp.Round = s.Round()
	}
	return resp
}

func (h *RoomHandler) touch(c *gin.Context, playerID string) {
	if err := h.players.Touch(c.Request.Context(), playerID); err != nil {
		h.log.Debug("更新玩家活跃时间失败", zap.String("player_id", playerID), zap.Error(err))
	}
}

// Create 创建房间
// POST /api/v1/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	playerID, _ := middleware.GetPlayerID(c)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		fail(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}

	r, err := h.rooms.Create(playerID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	h.touch(c, playerID)
	created(c, h.view(r))
}

// List 房间列表
// GET /api/v1/rooms
func (h *RoomHandler) List(c *gin.Context) {
	rooms := h.rooms.List()
	views := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, h.view(r))
	}
	ok(c, views)
}

// Get 房间详情
// GET /api/v1/rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	r, err := h.rooms.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, h.view(r))
}

// Delete 删除房间（仅房主）
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	playerID, _ := middleware.GetPlayerID(c)
	if err := h.rooms.Delete(c.Param("id"), playerID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Join 加入房间
// POST /api/v1/rooms/:id/join
func (h *RoomHandler) Join(c *gin.Context) {
	playerID, _ := middleware.GetPlayerID(c)
	r, err := h.rooms.Join(c.Param("id"), playerID)
	if err != nil {
		fail(c, err)
		return
	}
	h.touch(c, playerID)
	ok(c, h.view(r))
}

// Leave 离开房间，房主离开时房间关闭
// POST /api/v1/rooms/:id/leave
func (h *RoomHandler) Leave(c *gin.Context) {
	playerID, _ := middleware.GetPlayerID(c)
	closed, err := h.rooms.Leave(c.Param("id"), playerID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"closed": closed})
}

// QRCode 房间加入地址的二维码
// GET /api/v1/rooms/:id/qrcode?size=256
func (h *RoomHandler) QRCode(c *gin.Context) {
	r, err := h.rooms.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	size, convErr := strconv.Atoi(c.DefaultQuery("size", "256"))
	if convErr != nil || size < 64 || size > 1024 {
		fail(c, errors.New(errors.ErrInvalidParam, "size 必须在 64 到 1024 之间"))
		return
	}

	png, err := qrcode.Encode(h.JoinURL(r.ID), qrcode.Medium, size)
	if err != nil {
		fail(c, errors.Wrap(err, errors.ErrUnknown, "生成二维码失败"))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// JoinURL 房间加入地址
func (h *RoomHandler) JoinURL(roomID string) string {
	return h.publicURL + "/join?room=" + url.QueryEscape(roomID)
}

// Records 房间历史对局
// GET /api/v1/rooms/:id/records?page=1&page_size=20
func (h *RoomHandler) Records(c *gin.Context) {
	p := repository.ParsePagination(c.Query("page"), c.Query("page_size"))
	records, err := h.records.FindByRoomID(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	ok(c, gin.H{"records": records, "pagination": p})
}
