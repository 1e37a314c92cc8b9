package database

import (
	"fmt"

	"github.com/wfunc/liar-game/internal/config"
	"github.com/wfunc/liar-game/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models 需要迁移的模型
func Models() []interface{} {
	return []interface{}{
		&models.Player{},
		&models.GameRecord{},
	}
}

// AutoMigrate 自动迁移表结构，SQLite 文件库迁移时持有文件锁
func AutoMigrate(db *gorm.DB, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if path := sqliteFilePath(cfg); path != "" {
		lock, err := acquireMigrationLock(path, log)
		if err != nil {
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lock, log)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	log.Info("数据库迁移完成", zap.Int("tables", len(Models())))
	return nil
}
