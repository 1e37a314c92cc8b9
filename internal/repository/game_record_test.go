package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRecordRepository_Create(t *testing.T) {
	repo := NewGameRecordRepository(TestDB(t))
	ctx := context.Background()

	record := CreateTestGameRecord("room-1", "alice", time.Now())
	require.NoError(t, repo.Create(ctx, record))
	assert.NotZero(t, record.ID)

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "room-1", found.RoomID)
	assert.Equal(t, []string{"food"}, []string(found.Categories))
	require.Len(t, found.Rankings, 2)
	assert.Equal(t, "alice", found.Rankings[0].PlayerID)
	assert.Equal(t, 4, found.Rankings[0].Score)
}

func TestGameRecordRepository_FindByRoomID(t *testing.T) {
	repo := NewGameRecordRepository(TestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, CreateTestGameRecord("room-1", "alice", base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("room-2", "bob", base)))

	p := NewPagination(1, 3)
	records, err := repo.FindByRoomID(ctx, "room-1", p)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, int64(5), p.Total)
	assert.Equal(t, 2, p.Pages)
	assert.True(t, p.HasMore)
	assert.True(t, records[0].FinishedAt.After(records[1].FinishedAt))

	all, err := repo.FindByRoomID(ctx, "room-2", nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := repo.FindByRoomID(ctx, "missing", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGameRecordRepository_CountWinsByPlayer(t *testing.T) {
	repo := NewGameRecordRepository(TestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("room-1", "alice", time.Now())))
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("room-2", "alice", time.Now())))
	require.NoError(t, repo.Create(ctx, CreateTestGameRecord("room-3", "bob", time.Now())))

	wins, err := repo.CountWinsByPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), wins)
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxRecordsPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 20)
	assert.Equal(t, 40, p.Offset())

	p = ParsePagination("", "abc")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, RecordsPageSize, p.PageSize)

	p = ParsePagination("2", "5")
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.PageSize)
	assert.Equal(t, 5, p.Offset())
}

func TestPagination_SetTotal(t *testing.T) {
	p := NewPagination(1, 3)
	p.SetTotal(7)
	assert.Equal(t, 3, p.Pages)
	assert.True(t, p.HasMore)

	p = NewPagination(3, 3)
	p.SetTotal(7)
	assert.False(t, p.HasMore)

	p = NewPagination(1, 3)
	p.SetTotal(0)
	assert.Zero(t, p.Pages)
	assert.False(t, p.HasMore)
}
