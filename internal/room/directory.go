package room

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/liar-game/internal/errors"
	"go.uber.org/zap"
)

// Listener 房间生命周期事件的接收者
type Listener interface {
	OnRoomCreated(roomID, ownerID string, players []string) error
	OnRoomDeleted(roomID string)
	OnPlayerJoined(roomID, playerID string)
	OnPlayerLeft(roomID, playerID string)
}

// Room 房间信息
type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	Players    []string  `json:"players"`
	MaxPlayers int       `json:"max_players"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Room) clone() Room {
	c := *r
	c.Players = append([]string(nil), r.Players...)
	return c
}

func (r *Room) indexOf(playerID string) int {
	for i, p := range r.Players {
		if p == playerID {
			return i
		}
	}
	return -1
}

// Directory 内存房间目录。事件在释放目录锁之后才通知 Listener。
type Directory struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	maxPlayers int
	listener   Listener
	logger     *zap.Logger
}

// NewDirectory 创建房间目录，maxPlayers<=0 表示不限人数
func NewDirectory(maxPlayers int, logger *zap.Logger) *Directory {
	return &Directory{
		rooms:      make(map[string]*Room),
		maxPlayers: maxPlayers,
		logger:     logger,
	}
}

// SetListener 设置事件接收者
func (d *Directory) SetListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = l
}

func (d *Directory) currentListener() Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.listener
}

// Create 创建房间，创建者成为房主和第一个玩家
func (d *Directory) Create(ownerID, name string) (Room, error) {
	if ownerID == "" {
		return Room{}, errors.ParameterMissing("缺少房主")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = ownerID + "的房间"
	}

	room := &Room{
		ID:         uuid.New().String(),
		Name:       name,
		OwnerID:    ownerID,
		Players:    []string{ownerID},
		MaxPlayers: d.maxPlayers,
		CreatedAt:  time.Now(),
	}

	d.mu.Lock()
	d.rooms[room.ID] = room
	snapshot := room.clone()
	d.mu.Unlock()

	if l := d.currentListener(); l != nil {
		if err := l.OnRoomCreated(room.ID, ownerID, snapshot.Players); err != nil {
			d.mu.Lock()
			delete(d.rooms, room.ID)
			d.mu.Unlock()
			return Room{}, err
		}
	}

	d.logger.Info("创建房间",
		zap.String("room_id", room.ID),
		zap.String("owner_id", ownerID),
		zap.String("name", name))
	return snapshot, nil
}

// Get 获取房间
func (d *Directory) Get(roomID string) (Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[roomID]
	if !ok {
		return Room{}, errors.NotExist("房间不存在: %s", roomID)
	}
	return room.clone(), nil
}

// List 所有房间，按创建时间排序
func (d *Directory) List() []Room {
	d.mu.RLock()
	rooms := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r.clone())
	}
	d.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

// Delete 删除房间，只有房主可以删除
func (d *Directory) Delete(roomID, requesterID string) error {
	d.mu.Lock()
	room, ok := d.rooms[roomID]
	if !ok {
		d.mu.Unlock()
		return errors.NotExist("房间不存在: %s", roomID)
	}
	if room.OwnerID != requesterID {
		d.mu.Unlock()
		return errors.NotAllowed("只有房主可以删除房间: %s", requesterID)
	}
	delete(d.rooms, roomID)
	d.mu.Unlock()

	d.notifyDeleted(roomID)
	return nil
}

// Remove 不检查房主直接移除房间（闲置清理使用）
func (d *Directory) Remove(roomID string) bool {
	d.mu.Lock()
	_, ok := d.rooms[roomID]
	delete(d.rooms, roomID)
	d.mu.Unlock()

	if ok {
		d.notifyDeleted(roomID)
	}
	return ok
}

func (d *Directory) notifyDeleted(roomID string) {
	if l := d.currentListener(); l != nil {
		l.OnRoomDeleted(roomID)
	}
	d.logger.Info("删除房间", zap.String("room_id", roomID))
}

// Join 玩家加入房间，已在房间中时不做任何事
func (d *Directory) Join(roomID, playerID string) (Room, error) {
	if playerID == "" {
		return Room{}, errors.ParameterMissing("缺少玩家")
	}

	d.mu.Lock()
	room, ok := d.rooms[roomID]
	if !ok {
		d.mu.Unlock()
		return Room{}, errors.NotExist("房间不存在: %s", roomID)
	}
	if room.indexOf(playerID) >= 0 {
		snapshot := room.clone()
		d.mu.Unlock()
		return snapshot, nil
	}
	if room.MaxPlayers > 0 && len(room.Players) >= room.MaxPlayers {
		d.mu.Unlock()
		return Room{}, errors.NotAllowed("房间已满: %d", room.MaxPlayers)
	}
	room.Players = append(room.Players, playerID)
	snapshot := room.clone()
	d.mu.Unlock()

	if l := d.currentListener(); l != nil {
		l.OnPlayerJoined(roomID, playerID)
	}
	d.logger.Info("玩家加入房间",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.Int("players", len(snapshot.Players)))
	return snapshot, nil
}

// Leave 玩家离开房间。房主离开时房间关闭，返回 true。
func (d *Directory) Leave(roomID, playerID string) (closed bool, err error) {
	d.mu.Lock()
	room, ok := d.rooms[roomID]
	if !ok {
		d.mu.Unlock()
		return false, errors.NotExist("房间不存在: %s", roomID)
	}
	idx := room.indexOf(playerID)
	if idx < 0 {
		d.mu.Unlock()
		return false, errors.NotExist("玩家不在房间中: %s", playerID)
	}
	if room.OwnerID == playerID {
		delete(d.rooms, roomID)
		d.mu.Unlock()
		d.notifyDeleted(roomID)
		return true, nil
	}
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	d.mu.Unlock()

	if l := d.currentListener(); l != nil {
		l.OnPlayerLeft(roomID, playerID)
	}
	d.logger.Info("玩家离开房间",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID))
	return false, nil
}

// ListPlayers 房间当前玩家，按加入顺序
func (d *Directory) ListPlayers(roomID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, errors.NotExist("房间不存在: %s", roomID)
	}
	return append([]string(nil), room.Players...), nil
}

// IsMember 玩家是否在房间中
func (d *Directory) IsMember(roomID, playerID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[roomID]
	return ok && room.indexOf(playerID) >= 0
}

// Count 房间数
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
