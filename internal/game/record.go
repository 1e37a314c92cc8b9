package game

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/liar-game/internal/errors"
	"github.com/wfunc/liar-game/internal/models"
	"github.com/wfunc/liar-game/internal/repository"
)

// GameResult 一局结束时的结果
type GameResult struct {
	RoomID     string    `json:"room_id"`
	OwnerID    string    `json:"owner_id"`
	Settings   Settings  `json:"settings"`
	Rounds     int       `json:"rounds"`
	Rankings   []Ranking `json:"rankings"`
	FinishedAt time.Time `json:"finished_at"`
}

// Recorder 保存游戏结果
type Recorder interface {
	Save(ctx context.Context, result GameResult) error
}

// MemoryRecorder 内存记录器（用于测试）
type MemoryRecorder struct {
	mu      sync.RWMutex
	results []GameResult
}

// NewMemoryRecorder 创建内存记录器
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Save 保存结果
func (r *MemoryRecorder) Save(ctx context.Context, result GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.Rankings = append([]Ranking(nil), result.Rankings...)
	r.results = append(r.results, result)
	return nil
}

// Results 已保存的结果
func (r *MemoryRecorder) Results() []GameResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]GameResult(nil), r.results...)
}

// DatabaseRecorder 把结果写入 game_records 表
type DatabaseRecorder struct {
	repo repository.GameRecordRepository
}

// NewDatabaseRecorder 创建数据库记录器
func NewDatabaseRecorder(repo repository.GameRecordRepository) *DatabaseRecorder {
	return &DatabaseRecorder{repo: repo}
}

// Save 保存结果
func (r *DatabaseRecorder) Save(ctx context.Context, result GameResult) error {
	if err := r.repo.Create(ctx, ToRecord(result)); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "保存游戏记录失败")
	}
	return nil
}

// ToRecord 结果转换为数据库模型
func ToRecord(result GameResult) *models.GameRecord {
	record := &models.GameRecord{
		RoomID:         result.RoomID,
		OwnerID:        result.OwnerID,
		Rounds:         result.Rounds,
		TurnsPerPlayer: result.Settings.Turn,
		Categories:     models.StringList(append([]string(nil), result.Settings.Categories...)),
		FinishedAt:     result.FinishedAt,
	}
	for _, r := range result.Rankings {
		record.Rankings = append(record.Rankings, models.RankingEntry{Rank: r.Rank, PlayerID: r.UserID, Score: r.Score})
	}
	if len(result.Rankings) > 0 && result.Rankings[0].Rank == 1 {
		record.WinnerID = result.Rankings[0].UserID
	}
	return record
}
