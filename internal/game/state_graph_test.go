package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateGraph_AdvanceOrder(t *testing.T) {
	states := AllStates()
	for i := 0; i < len(states)-1; i++ {
		if states[i] == StatePublishScore {
			assert.Equal(t, StatePublishRankings, states[i].Advance())
			continue
		}
		assert.Equal(t, states[i+1], states[i].Advance(), "advance from %s", states[i])
	}
	assert.Equal(t, StateBeforeStart, StatePublishRankings.Advance())
}

func TestStateGraph_LoopOnlyDiffersAtPublishScore(t *testing.T) {
	for _, s := range AllStates() {
		if s == StatePublishScore {
			assert.Equal(t, StateBeforeRound, s.Loop())
			assert.NotEqual(t, s.Advance(), s.Loop())
			continue
		}
		assert.Equal(t, s.Advance(), s.Loop(), "state %s", s)
	}
}

func TestStateGraph_CanReach(t *testing.T) {
	assert.True(t, StateBeforeStart.CanReach(StateBeforeRound))
	assert.True(t, StatePublishScore.CanReach(StateBeforeRound))
	assert.True(t, StatePublishScore.CanReach(StatePublishRankings))
	assert.False(t, StateBeforeStart.CanReach(StateVoteLiar))
	assert.False(t, StateVoteLiar.CanReach(StateInProgress))
	assert.False(t, State("UNKNOWN").CanReach(StateBeforeStart))
}

func TestStateGraph_UnknownState(t *testing.T) {
	assert.False(t, State("UNKNOWN").Valid())
	assert.Panics(t, func() { State("UNKNOWN").Advance() })
	assert.Panics(t, func() { State("UNKNOWN").Loop() })
}

func TestStateGraph_EveryStateReachableFromStart(t *testing.T) {
	seen := map[State]bool{StateBeforeStart: true}
	queue := []State{StateBeforeStart}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, next := range []State{s.Advance(), s.Loop()} {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, s := range AllStates() {
		assert.True(t, seen[s], "state %s unreachable", s)
	}
	assert.Len(t, seen, len(AllStates()))
}

func TestState_InRound(t *testing.T) {
	inRound := map[State]bool{
		StateSelectLiar:  true,
		StateOpenKeyword: true,
		StateInProgress:  true,
		StateVoteLiar:    true,
		StateOpenLiar:    true,
		StateLiarAnswer:  true,
	}
	for _, st := range AllStates() {
		assert.Equal(t, inRound[st], st.InRound(), st)
	}
}
