package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/liar-game/internal/config"
	"go.uber.org/zap"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         "file::memory:?cache=shared",
		LogLevel:    "silent",
		AutoMigrate: true,
	}
	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("game_records"))
	assert.True(t, db.Migrator().HasTable("players"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSQLiteFilePath(t *testing.T) {
	tests := []struct {
		cfg  config.DatabaseConfig
		want string
	}{
		{config.DatabaseConfig{Driver: "sqlite", DSN: "./data/liar.db"}, "./data/liar.db"},
		{config.DatabaseConfig{Driver: "sqlite3", DSN: "file:game.db?_busy_timeout=5000"}, "game.db"},
		{config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, ""},
		{config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"}, ""},
		{config.DatabaseConfig{Driver: "postgres", DSN: "host=localhost"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteFilePath(&tt.cfg), tt.cfg.DSN)
	}
}

func TestMigrationLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liar.db")
	log := zap.NewNop()

	lock, err := acquireMigrationLock(path, log)
	require.NoError(t, err)
	_, err = os.Stat(path + ".migration.lock")
	require.NoError(t, err)

	releaseMigrationLock(lock, log)
	_, err = os.Stat(path + ".migration.lock")
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_SQLiteFileMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liar.db")
	cfg := &config.DatabaseConfig{Driver: "sqlite", DSN: path, LogLevel: "silent", AutoMigrate: true}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("game_records"))

	_, err = os.Stat(path + ".migration.lock")
	assert.True(t, os.IsNotExist(err))

	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
}
