package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"

	"settlers/eventstore"
)

func load(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := load(map[string]string{})
		require.NoError(t, err)
		require.Equal(t, "info", cfg.LogLevel)
		require.Equal(t, eventstore.DriverMemory, cfg.StoreDriver)
		require.Equal(t, 4, cfg.Players)
		require.Equal(t, 25, cfg.MaxActions)
		require.Equal(t, 300, cfg.MaxTurns)
		require.Equal(t, 3, cfg.AppendRetries)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := load(map[string]string{
			"SETTLERS_STORE_DRIVER":     "sqlite",
			"SETTLERS_SQLITE_PATH":      "/tmp/x.db",
			"SETTLERS_GAMES":            "10",
			"SETTLERS_PLAYERS":          "2",
			"SETTLERS_SEED":             "42",
			"SETTLERS_AI_DIFFICULTY":    "hard",
			"SETTLERS_AI_THINKING_TIME": "250ms",
			"SETTLERS_LOG_FORMAT":       "json",
		})
		require.NoError(t, err)
		require.Equal(t, eventstore.Options{Driver: "sqlite", SQLitePath: "/tmp/x.db"}, cfg.Store())
		require.Equal(t, 10, cfg.Games)

		a := cfg.Agent()
		require.EqualValues(t, "hard", a.Difficulty)
		require.Equal(t, 250*time.Millisecond, a.ThinkingTime)
		require.Equal(t, uint64(42), a.Seed)
	})

	for name, vars := range map[string]map[string]string{
		"log format":      {"SETTLERS_LOG_FORMAT": "xml"},
		"driver":          {"SETTLERS_STORE_DRIVER": "mongo"},
		"postgres no dsn": {"SETTLERS_STORE_DRIVER": "postgres"},
		"experiment":      {"SETTLERS_EXPERIMENT": "tournament"},
		"games":           {"SETTLERS_GAMES": "0"},
		"players":         {"SETTLERS_PLAYERS": "5"},
		"difficulty":      {"SETTLERS_AI_DIFFICULTY": "genius"},
		"max turns":       {"SETTLERS_MAX_TURNS": "0"},
		"not a number":    {"SETTLERS_GAMES": "many"},
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := load(vars)
			require.Error(t, err)
		})
	}
}
