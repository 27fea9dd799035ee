package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"HOST_IP", "GAME_PORT", "STATUS_ADDR", "MAX_MESSAGE_SIZE", "REDIS_ADDR", "MONGO_URI", "LEADERBOARD_SIZE", "TRACE_OUTPUT"} {
			t.Setenv(k, "")
		}

		c := Load()
		assert.Equal(t, "", c.HostIP)
		assert.Equal(t, 0, c.GamePort)
		assert.Equal(t, defaultMaxMessageSize, c.MaxMessageSize)
		assert.Equal(t, defaultLeaderboardSize, c.LeaderboardSize)
		assert.Empty(t, c.RedisAddr)
		assert.Empty(t, c.MongoURI)
		assert.Empty(t, c.TraceOutput)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("HOST_IP", "127.0.0.1")
		t.Setenv("GAME_PORT", "6969")
		t.Setenv("STATUS_ADDR", ":8080")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("LEADERBOARD_KEY", "scores")
		t.Setenv("TRACE_OUTPUT", "stdout")

		c := Load()
		assert.Equal(t, "127.0.0.1", c.HostIP)
		assert.Equal(t, 6969, c.GamePort)
		assert.Equal(t, ":8080", c.StatusAddr)
		assert.Equal(t, "localhost:6379", c.RedisAddr)
		assert.Equal(t, "scores", c.LeaderboardKey)
		assert.Equal(t, "stdout", c.TraceOutput)
	})
}
