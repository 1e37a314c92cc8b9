package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/liar-game/internal/models"
	"gorm.io/gorm"
)

func TestPlayerRepository(t *testing.T) {
	repo := NewPlayerRepository(TestDB(t))
	ctx := context.Background()

	player := &models.Player{PlayerID: "p-1", Nickname: "alice", LastSeenAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, player))

	found, err := repo.FindByPlayerID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Nickname)
	before := found.LastSeenAt

	require.NoError(t, repo.Touch(ctx, "p-1"))
	found, err = repo.FindByPlayerID(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, found.LastSeenAt.After(before))

	_, err = repo.FindByPlayerID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlayerRepository_DuplicateID(t *testing.T) {
	repo := NewPlayerRepository(TestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Player{PlayerID: "p-1", Nickname: "alice"}))
	assert.Error(t, repo.Create(ctx, &models.Player{PlayerID: "p-1", Nickname: "bob"}))
}
