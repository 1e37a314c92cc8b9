package repository

import (
	"context"

	"github.com/wfunc/liar-game/internal/models"
	"gorm.io/gorm"
)

// GameRecordRepository 游戏记录仓储接口
type GameRecordRepository interface {
	Create(ctx context.Context, record *models.GameRecord) error
	FindByID(ctx context.Context, id uint) (*models.GameRecord, error)
	FindByRoomID(ctx context.Context, roomID string, p *Pagination) ([]*models.GameRecord, error)
	CountWinsByPlayer(ctx context.Context, playerID string) (int64, error)
}

// gameRecordRepo 游戏记录仓储实现
type gameRecordRepo struct {
	*BaseRepo
}

// NewGameRecordRepository 创建游戏记录仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 保存游戏记录
func (r *gameRecordRepo) Create(ctx context.Context, record *models.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID 根据ID查找
func (r *gameRecordRepo) FindByID(ctx context.Context, id uint) (*models.GameRecord, error) {
	var record models.GameRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByRoomID 查询房间的历史记录，按结束时间倒序
func (r *gameRecordRepo) FindByRoomID(ctx context.Context, roomID string, p *Pagination) ([]*models.GameRecord, error) {
	var records []*models.GameRecord
	query := r.db.WithContext(ctx).Model(&models.GameRecord{}).Where("room_id = ?", roomID)

	if p != nil {
		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, err
		}
		p.SetTotal(total)
		query = query.Scopes(Paginate(p))
	}

	err := query.Order("finished_at DESC").Order("id DESC").Find(&records).Error
	return records, err
}

// CountWinsByPlayer 玩家获得第一名的局数
func (r *gameRecordRepo) CountWinsByPlayer(ctx context.Context, playerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("winner_id = ?", playerID).
		Count(&count).Error
	return count, err
}
