package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/liar-game/internal/errors"
)

func newTestSession(players ...string) *GameSession {
	return NewGameSession("room-1", players[0], players)
}

func TestGameSession_Initial(t *testing.T) {
	s := newTestSession("a", "b", "c")
	assert.Equal(t, StateBeforeStart, s.State())
	assert.Equal(t, 0, s.Round())
	assert.Equal(t, -1, s.Turn())
	assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": 0}, s.Scoreboard())
	assert.Empty(t, s.CurrentTurnID())
}

func TestGameSession_Transition(t *testing.T) {
	s := newTestSession("a")
	require.NoError(t, s.Transition(StateBeforeRound))

	err := s.Transition(StateVoteLiar)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStateNotAllowed))
	assert.Equal(t, StateBeforeRound, s.State())
}

func TestGameSession_ApplySettingsOnlyBeforeStart(t *testing.T) {
	s := newTestSession("a")
	require.NoError(t, s.ApplySettings(Settings{Round: 3, Turn: 2, Categories: []string{"food"}}))
	assert.Equal(t, 3, s.Settings().Round)

	s.Advance()
	err := s.ApplySettings(Settings{Round: 1, Turn: 1, Categories: []string{"food"}})
	assert.True(t, errors.Is(err, errors.ErrStateNotAllowed))
	assert.Equal(t, 3, s.Settings().Round)
}

func TestGameSession_TurnBounds(t *testing.T) {
	s := newTestSession("a", "b")
	require.NoError(t, s.ApplySettings(Settings{Round: 1, Turn: 2, Categories: []string{"food"}}))
	s.SetTurnOrder([]string{"b", "a"})
	assert.Equal(t, 4, s.TurnLimit())

	var ids []string
	for i := 0; i < 4; i++ {
		turn, err := s.NextTurn()
		require.NoError(t, err)
		assert.Equal(t, i, turn)
		ids = append(ids, s.CurrentTurnID())
	}
	assert.Equal(t, []string{"b", "a", "b", "a"}, ids)

	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 4, turn)
	assert.True(t, s.TurnsFinished())
	assert.Empty(t, s.CurrentTurnID())

	_, err = s.NextTurn()
	assert.True(t, errors.Is(err, errors.ErrStateNotAllowed))
	assert.Equal(t, 4, s.Turn())
}

func TestGameSession_NextTurnConcurrent(t *testing.T) {
	players := make([]string, 50)
	for i := range players {
		players[i] = string(rune('A' + i))
	}
	s := newTestSession(players...)
	require.NoError(t, s.ApplySettings(Settings{Round: 1, Turn: 3, Categories: []string{"food"}}))
	s.SetTurnOrder(players)

	const calls = 100
	var wg sync.WaitGroup
	wg.Add(calls)
	for i := 0; i < calls; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.NextTurn()
		}()
	}
	wg.Wait()

	assert.Equal(t, -1+calls, s.Turn())
}

func TestGameSession_NextTurnConcurrentStopsAtLimit(t *testing.T) {
	s := newTestSession("a", "b")
	require.NoError(t, s.ApplySettings(Settings{Round: 1, Turn: 1, Categories: []string{"food"}}))
	s.SetTurnOrder([]string{"a", "b"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.NextTurn(); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, s.Turn())
}

func TestGameSession_Votes(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.SetTurnOrder([]string{"a", "b", "c"})
	s.SetLiar("c")

	require.NoError(t, s.AddVoteResult("a", "c"))
	require.NoError(t, s.AddVoteResult("b", "c"))
	assert.False(t, s.VoteFinished())
	assert.Equal(t, []string{"c"}, s.MissingVoters())

	err := s.AddVoteResult("a", "b")
	assert.True(t, errors.Is(err, errors.ErrNotAllowedAction))
	assert.Equal(t, 2, s.VoteCount())
	assert.Equal(t, "c", s.VoteResult()["a"])

	require.NoError(t, s.AddVoteResult("c", ""))
	assert.True(t, s.VoteFinished())
	assert.Equal(t, len(s.VoteResult()), s.VoteCount())
	assert.Equal(t, []VoteCount{{UserID: "c", Count: 2}}, s.MostVotedUserIDAndCount())
	assert.True(t, s.IsUsersMatchLiar())

	s.ResetVoteResult()
	assert.Zero(t, s.VoteCount())
	assert.False(t, s.HasVoted("a"))
}

func TestGameSession_VotesConcurrent(t *testing.T) {
	players := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	s := newTestSession(players...)
	s.SetTurnOrder(players)

	var wg sync.WaitGroup
	for _, p := range players {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(voter string) {
				defer wg.Done()
				_ = s.AddVoteResult(voter, "a")
			}(p)
		}
	}
	wg.Wait()

	assert.Equal(t, len(players), s.VoteCount())
	assert.True(t, s.VoteFinished())
}

func TestGameSession_TieIsNoMatch(t *testing.T) {
	s := newTestSession("a", "b", "c", "d")
	s.SetTurnOrder([]string{"a", "b", "c", "d"})
	s.SetLiar("a")
	require.NoError(t, s.AddVoteResult("b", "a"))
	require.NoError(t, s.AddVoteResult("c", "d"))

	assert.Len(t, s.MostVotedUserIDAndCount(), 2)
	assert.False(t, s.IsUsersMatchLiar())
}

func TestGameSession_UpdateScoreBoardOnce(t *testing.T) {
	s := newTestSession("a", "b", "liar")
	s.SetTurnOrder([]string{"a", "b", "liar"})
	s.SetLiar("liar")
	require.NoError(t, s.AddVoteResult("a", "liar"))
	require.NoError(t, s.AddVoteResult("b", "liar"))
	require.NoError(t, s.AddVoteResult("liar", "a"))

	delta, err := s.UpdateScoreBoard()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, delta)

	_, err = s.UpdateScoreBoard()
	assert.True(t, errors.Is(err, errors.ErrStateNotAllowed))
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "liar": 0}, s.Scoreboard())

	s.ResetLiarInfo()
	assert.False(t, s.Scored())
	assert.Empty(t, s.LiarID())
}

func TestGameSession_Rankings(t *testing.T) {
	s := newTestSession("a", "b", "c", "d")
	s.mu.Lock()
	s.scoreboard = map[string]int{"a": 2, "b": 5, "c": 2, "d": 0}
	s.mu.Unlock()

	assert.Equal(t, []Ranking{
		{Rank: 1, UserID: "b", Score: 5},
		{Rank: 2, UserID: "a", Score: 2},
		{Rank: 2, UserID: "c", Score: 2},
		{Rank: 4, UserID: "d", Score: 0},
	}, s.Rankings())
}

func TestGameSession_PlayersFollowRoom(t *testing.T) {
	s := newTestSession("a")
	s.AddPlayer("b")
	s.AddPlayer("b")
	assert.Len(t, s.Scoreboard(), 2)

	s.RemovePlayer("a")
	assert.Equal(t, map[string]int{"b": 0}, s.Scoreboard())
}

func TestGameSession_Reset(t *testing.T) {
	s := newTestSession("a", "b")
	require.NoError(t, s.ApplySettings(Settings{Round: 2, Turn: 1, Categories: []string{"food"}}))
	s.Advance()
	s.NextRound()
	s.SetTurnOrder([]string{"a", "b"})
	s.SetLiar("a")
	s.SetKeyword("food", "pizza")
	s.SetTimer(PhaseTurn, "id")

	s.Reset()
	assert.Equal(t, StateBeforeStart, s.State())
	assert.Zero(t, s.Round())
	assert.Equal(t, -1, s.Turn())
	assert.Empty(t, s.TurnOrder())
	assert.Empty(t, s.Keyword())
	assert.Equal(t, Settings{}, s.Settings())
}

func TestGameSession_Timers(t *testing.T) {
	s := newTestSession("a")
	assert.False(t, s.TimerRunning(PhaseVote))

	s.SetTimer(PhaseVote, "corr-1")
	assert.True(t, s.TimerRunning(PhaseVote))
	assert.False(t, s.TimerRunning(PhaseTurn))
	assert.Equal(t, "corr-1", s.TimerID(PhaseVote))
	assert.True(t, s.Snapshot().Timers[PhaseVote])

	s.ClearTimer(PhaseVote)
	assert.False(t, s.TimerRunning(PhaseVote))
}

func TestGameSession_SnapshotHidesSecrets(t *testing.T) {
	s := newTestSession("a", "b")
	s.SetLiar("b")
	s.SetKeyword("food", "pizza")

	snap := s.Snapshot()
	assert.Equal(t, "food", snap.Category)
	assert.Equal(t, "room-1", snap.RoomID)
	assert.Equal(t, "a", snap.OwnerID)
	assert.NotContains(t, []string{snap.Category, snap.CurrentTurnID}, "pizza")
}
