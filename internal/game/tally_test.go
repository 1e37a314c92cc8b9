package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyVotes(t *testing.T) {
	tests := []struct {
		name  string
		votes map[string]string
		want  []VoteCount
	}{
		{
			name:  "唯一最高票",
			votes: map[string]string{"A": "X", "B": "X", "C": "Y"},
			want:  []VoteCount{{UserID: "X", Count: 2}},
		},
		{
			name:  "平票",
			votes: map[string]string{"A": "X", "B": "Y"},
			want:  []VoteCount{{UserID: "X", Count: 1}, {UserID: "Y", Count: 1}},
		},
		{
			name:  "弃权不计票",
			votes: map[string]string{"A": "", "B": "Y", "C": ""},
			want:  []VoteCount{{UserID: "Y", Count: 1}},
		},
		{
			name:  "全部弃权",
			votes: map[string]string{"A": "", "B": ""},
			want:  []VoteCount{},
		},
		{
			name:  "没有投票",
			votes: nil,
			want:  []VoteCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TallyVotes(tt.votes)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got)
		})
	}
}

func TestIsTie(t *testing.T) {
	assert.False(t, IsTie(nil))
	assert.False(t, IsTie([]VoteCount{{UserID: "X", Count: 2}}))
	assert.True(t, IsTie([]VoteCount{{UserID: "X", Count: 1}, {UserID: "Y", Count: 1}}))
}
