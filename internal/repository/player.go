package repository

import (
	"context"
	"time"

	"github.com/wfunc/liar-game/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository 访客玩家仓储接口
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	FindByPlayerID(ctx context.Context, playerID string) (*models.Player, error)
	Touch(ctx context.Context, playerID string) error
}

// playerRepo 访客玩家仓储实现
type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository 创建访客玩家仓储
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建玩家
func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	if player.LastSeenAt.IsZero() {
		player.LastSeenAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(player).Error
}

// FindByPlayerID 根据玩家ID查找
func (r *playerRepo) FindByPlayerID(ctx context.Context, playerID string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// Touch 更新最后活跃时间
func (r *playerRepo) Touch(ctx context.Context, playerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("player_id = ?", playerID).
		Update("last_seen_at", time.Now()).Error
}
