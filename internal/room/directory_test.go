package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/liar-game/internal/errors"
	"go.uber.org/zap"
)

type recordingListener struct {
	mu        sync.Mutex
	events    []string
	createErr error
}

func (l *recordingListener) record(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *recordingListener) OnRoomCreated(roomID, ownerID string, players []string) error {
	if l.createErr != nil {
		return l.createErr
	}
	l.record("created:%s:%v", ownerID, players)
	return nil
}

func (l *recordingListener) OnRoomDeleted(roomID string)            { l.record("deleted") }
func (l *recordingListener) OnPlayerJoined(roomID, playerID string) { l.record("joined:%s", playerID) }
func (l *recordingListener) OnPlayerLeft(roomID, playerID string)   { l.record("left:%s", playerID) }

func (l *recordingListener) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type DirectoryTestSuite struct {
	suite.Suite
	dir      *Directory
	listener *recordingListener
}

func (s *DirectoryTestSuite) SetupTest() {
	s.dir = NewDirectory(3, zap.NewNop())
	s.listener = &recordingListener{}
	s.dir.SetListener(s.listener)
}

func (s *DirectoryTestSuite) TestCreateAndGet() {
	room, err := s.dir.Create("alice", "  ")
	s.Require().NoError(err)
	s.NotEmpty(room.ID)
	s.Equal("alice", room.OwnerID)
	s.Equal([]string{"alice"}, room.Players)
	s.Equal("alice的房间", room.Name)

	got, err := s.dir.Get(room.ID)
	s.Require().NoError(err)
	s.Equal(room.ID, got.ID)
	s.Equal([]string{"created:alice:[alice]"}, s.listener.list())

	_, err = s.dir.Get("missing")
	s.True(errors.Is(err, errors.ErrNotExist))
}

func (s *DirectoryTestSuite) TestCreateRollsBackWhenListenerFails() {
	s.listener.createErr = errors.New(errors.ErrAlreadyExists)
	_, err := s.dir.Create("alice", "room")
	s.Error(err)
	s.Zero(s.dir.Count())
}

func (s *DirectoryTestSuite) TestJoinLeave() {
	room, _ := s.dir.Create("alice", "room")

	_, err := s.dir.Join(room.ID, "bob")
	s.Require().NoError(err)
	_, err = s.dir.Join(room.ID, "bob")
	s.Require().NoError(err)
	_, err = s.dir.Join(room.ID, "carol")
	s.Require().NoError(err)

	_, err = s.dir.Join(room.ID, "dave")
	s.True(errors.Is(err, errors.ErrNotAllowedAction))

	players, err := s.dir.ListPlayers(room.ID)
	s.Require().NoError(err)
	s.Equal([]string{"alice", "bob", "carol"}, players)

	closed, err := s.dir.Leave(room.ID, "bob")
	s.Require().NoError(err)
	s.False(closed)
	s.False(s.dir.IsMember(room.ID, "bob"))
	s.True(s.dir.IsMember(room.ID, "carol"))

	_, err = s.dir.Leave(room.ID, "bob")
	s.True(errors.Is(err, errors.ErrNotExist))

	s.Equal([]string{"created:alice:[alice]", "joined:bob", "joined:carol", "left:bob"}, s.listener.list())
}

func (s *DirectoryTestSuite) TestOwnerLeavingClosesRoom() {
	room, _ := s.dir.Create("alice", "room")
	_, _ = s.dir.Join(room.ID, "bob")

	closed, err := s.dir.Leave(room.ID, "alice")
	s.Require().NoError(err)
	s.True(closed)
	s.Zero(s.dir.Count())
	s.Contains(s.listener.list(), "deleted")
}

func (s *DirectoryTestSuite) TestDeleteOnlyOwner() {
	room, _ := s.dir.Create("alice", "room")
	_, _ = s.dir.Join(room.ID, "bob")

	s.True(errors.Is(s.dir.Delete(room.ID, "bob"), errors.ErrNotAllowedAction))
	s.Require().NoError(s.dir.Delete(room.ID, "alice"))
	s.True(errors.Is(s.dir.Delete(room.ID, "alice"), errors.ErrNotExist))
	s.False(s.dir.Remove(room.ID))
}

func (s *DirectoryTestSuite) TestListSorted() {
	for i := 0; i < 3; i++ {
		_, err := s.dir.Create(fmt.Sprintf("owner-%d", i), "")
		s.Require().NoError(err)
	}
	rooms := s.dir.List()
	s.Len(rooms, 3)
	s.Equal("owner-0", rooms[0].OwnerID)
}

func TestDirectoryTestSuite(t *testing.T) {
	suite.Run(t, new(DirectoryTestSuite))
}

func TestDirectory_ConcurrentJoin(t *testing.T) {
	dir := NewDirectory(0, zap.NewNop())
	room, err := dir.Create("owner", "room")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = dir.Join(room.ID, fmt.Sprintf("p-%d", i%25))
		}(i)
	}
	wg.Wait()

	players, err := dir.ListPlayers(room.ID)
	require.NoError(t, err)
	assert.Len(t, players, 26)
}

func TestListeners_CreateFailureRollsBack(t *testing.T) {
	first := &recordingListener{}
	second := &recordingListener{createErr: errors.NotAllowed("拒绝")}

	dir := NewDirectory(0, zap.NewNop())
	dir.SetListener(Listeners{first, second})

	_, err := dir.Create("alice", "room")
	require.Error(t, err)
	assert.Equal(t, []string{"created:alice:[alice]", "deleted"}, first.list())
	assert.Zero(t, dir.Count())
}

func TestListeners_FanOut(t *testing.T) {
	a, b := &recordingListener{}, &recordingListener{}
	dir := NewDirectory(0, zap.NewNop())
	dir.SetListener(Listeners{a, b})

	r, err := dir.Create("alice", "room")
	require.NoError(t, err)
	_, err = dir.Join(r.ID, "bob")
	require.NoError(t, err)
	_, err = dir.Leave(r.ID, "bob")
	require.NoError(t, err)
	require.NoError(t, dir.Delete(r.ID, "alice"))

	want := []string{"created:alice:[alice]", "joined:bob", "left:bob", "deleted"}
	assert.Equal(t, want, a.list())
	assert.Equal(t, want, b.list())
}
