package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/liar-game/internal/models"
	"github.com/wfunc/liar-game/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testResult() GameResult {
	return GameResult{
		RoomID:   "room-1",
		OwnerID:  "a",
		Settings: Settings{Round: 2, Turn: 1, Categories: []string{"food", "animal"}},
		Rounds:   2,
		Rankings: []Ranking{
			{Rank: 1, UserID: "b", Score: 3},
			{Rank: 2, UserID: "a", Score: 1},
		},
		FinishedAt: time.Now(),
	}
}

func TestToRecord(t *testing.T) {
	record := ToRecord(testResult())
	assert.Equal(t, "room-1", record.RoomID)
	assert.Equal(t, 1, record.TurnsPerPlayer)
	assert.Equal(t, models.StringList{"food", "animal"}, record.Categories)
	assert.Equal(t, "b", record.WinnerID)
	require.Len(t, record.Rankings, 2)
	assert.Equal(t, models.RankingEntry{Rank: 2, PlayerID: "a", Score: 1}, record.Rankings[1])
}

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder()
	require.NoError(t, r.Save(context.Background(), testResult()))
	results := r.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "room-1", results[0].RoomID)
}

func TestDatabaseRecorder(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}))

	repo := repository.NewGameRecordRepository(db)
	recorder := NewDatabaseRecorder(repo)
	require.NoError(t, recorder.Save(context.Background(), testResult()))

	records, err := repo.FindByRoomID(context.Background(), "room-1", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].WinnerID)
	assert.Equal(t, 2, records[0].Rounds)
}
