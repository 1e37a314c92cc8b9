package models

import "time"

// GameRecord 一局结束后的记录
type GameRecord struct {
	BaseModel
	RoomID         string      `gorm:"size:64;not null;index" json:"room_id"`
	OwnerID        string      `gorm:"size:64;not null" json:"owner_id"`
	Rounds         int         `gorm:"not null" json:"rounds"`
	TurnsPerPlayer int         `gorm:"not null" json:"turns_per_player"`
	Categories     StringList  `gorm:"type:text" json:"categories"`
	Rankings       RankingList `gorm:"type:text" json:"rankings"`
	WinnerID       string      `gorm:"size:64" json:"winner_id"`
	FinishedAt     time.Time   `gorm:"index" json:"finished_at"`
}

// TableName 表名
func (GameRecord) TableName() string {
	return "game_records"
}
