package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wfunc/liar-game/internal/config"
	"go.uber.org/zap"
)

const (
	lockAttempts = 30
	lockStaleAge = 5 * time.Minute
)

// sqliteFilePath SQLite 文件库的路径，内存库和其他驱动返回空
func sqliteFilePath(cfg *config.DatabaseConfig) string {
	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		return ""
	}
	dsn := cfg.DSN
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	dsn = strings.TrimPrefix(dsn, "file:")
	if dsn == "" || dsn == ":memory:" || strings.Contains(cfg.DSN, "mode=memory") {
		return ""
	}
	return dsn
}

// acquireMigrationLock 独占创建锁文件，多个进程同时启动时只有一个执行迁移
func acquireMigrationLock(dbPath string, log *zap.Logger) (*os.File, error) {
	lockPath := dbPath + ".migration.lock"

	for i := 0; i < lockAttempts; i++ {
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			log.Debug("获取迁移锁成功", zap.String("lock", lockPath))
			return lockFile, nil
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAge {
			log.Warn("迁移锁文件过期，尝试删除", zap.String("lock", lockPath))
			_ = os.Remove(lockPath)
			continue
		}

		log.Debug("等待迁移锁", zap.Int("attempt", i+1))
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("无法获取迁移锁，可能有其他进程正在执行迁移: %s", lockPath)
}

// releaseMigrationLock 释放迁移锁
func releaseMigrationLock(lockFile *os.File, log *zap.Logger) {
	if lockFile == nil {
		return
	}
	lockPath := lockFile.Name()
	_ = lockFile.Close()
	_ = os.Remove(lockPath)
	log.Debug("释放迁移锁", zap.String("lock", lockPath))
}
