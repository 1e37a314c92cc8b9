package models

import "time"

// Player 访客玩家
type Player struct {
	BaseModel
	PlayerID   string    `gorm:"uniqueIndex;size:64;not null" json:"player_id"`
	Nickname   string    `gorm:"size:50;not null" json:"nickname"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// TableName 表名
func (Player) TableName() string {
	return "players"
}
