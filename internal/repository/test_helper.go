package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/liar-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建迁移好的内存数据库
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接独立，固定为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Player{}, &models.GameRecord{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateTestGameRecord 创建测试游戏记录
func CreateTestGameRecord(roomID, winnerID string, finishedAt time.Time) *models.GameRecord {
	return &models.GameRecord{
		RoomID:         roomID,
		OwnerID:        "owner",
		Rounds:         3,
		TurnsPerPlayer: 2,
		Categories:     models.StringList{"food"},
		Rankings: models.RankingList{
			{Rank: 1, PlayerID: winnerID, Score: 4},
			{Rank: 2, PlayerID: "other", Score: 1},
		},
		WinnerID:   winnerID,
		FinishedAt: finishedAt,
	}
}
