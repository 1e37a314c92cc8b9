package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(content)))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadYAML(t, "server:\n  port: 9090\n")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 10, cfg.Game.MaxPlayers)
	assert.Equal(t, 5, cfg.Game.MaxRound)
	assert.Equal(t, 3, cfg.Game.MaxTurn)
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeout)
	assert.Equal(t, 60*time.Second, cfg.Game.VoteTimeout)
	assert.Equal(t, 4, cfg.Game.TimerWorkers)
}

func TestLoad_Vocabulary(t *testing.T) {
	cfg, err := loadYAML(t, `
game:
  turn_timeout: 5s
  vocabulary:
    food: [pizza, sushi]
    animal: [cat]
`)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Game.TurnTimeout)
	assert.ElementsMatch(t, []string{"pizza", "sushi"}, cfg.Game.Vocabulary["food"])
	assert.Equal(t, []string{"cat"}, cfg.Game.Vocabulary["animal"])
}

func TestLoad_Invalid(t *testing.T) {
	_, err := loadYAML(t, "game:\n  timer_workers: 0\n")
	assert.Error(t, err)

	_, err = loadYAML(t, "game:\n  vote_timeout: -1s\n")
	assert.Error(t, err)

	_, err = loadYAML(t, "game:\n  min_players: 4\n  max_players: 3\n")
	assert.Error(t, err)
}
