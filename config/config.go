package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"settlers/agent"
	"settlers/eventstore"
	"settlers/meta"
)

// Config drives the self-play CLI.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console or json

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"` // memory, sqlite or postgres
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"settlers.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	Experiment string `env:"EXPERIMENT" envDefault:"self_play"` // self_play, ladder or personalities
	Games      int    `env:"GAMES"      envDefault:"1"`
	Players    int    `env:"PLAYERS"    envDefault:"4"`
	Seed       uint64 `env:"SEED"`

	Difficulty   string        `env:"AI_DIFFICULTY"    envDefault:"medium"`
	Personality  string        `env:"AI_PERSONALITY"   envDefault:"balanced"`
	ThinkingTime time.Duration `env:"AI_THINKING_TIME" envDefault:"0s"`
	MaxActions   int           `env:"AI_MAX_ACTIONS"   envDefault:"25"`

	AppendRetries int    `env:"APPEND_RETRIES" envDefault:"3"`
	MaxTurns      int    `env:"MAX_TURNS"      envDefault:"300"`
	ResultsDir    string `env:"RESULTS_DIR"    envDefault:"results"`
}

// Prefix is prepended to every variable name.
const Prefix = "SETTLERS_"

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch c.StoreDriver {
	case eventstore.DriverMemory, eventstore.DriverSQLite:
	case eventstore.DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres store needs %sPOSTGRES_DSN", Prefix)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.Experiment {
	case "self_play", "ladder", "personalities":
	default:
		return fmt.Errorf("unknown experiment %q", c.Experiment)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Players < meta.MIN_PLAYERS || c.Players > meta.MAX_PLAYERS {
		return fmt.Errorf("players must be between %d and %d, got %d", meta.MIN_PLAYERS, meta.MAX_PLAYERS, c.Players)
	}
	if _, err := agent.NewProfile(agent.Difficulty(c.Difficulty), agent.Personality(c.Personality)); err != nil {
		return err
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("max turns must be positive, got %d", c.MaxTurns)
	}
	return nil
}

// Store returns the event store options.
func (c Config) Store() eventstore.Options {
	return eventstore.Options{Driver: c.StoreDriver, SQLitePath: c.SQLitePath, PostgresDSN: c.PostgresDSN}
}

// Agent returns the AI seat configuration.
func (c Config) Agent() agent.Config {
	return agent.Config{
		Difficulty:   agent.Difficulty(c.Difficulty),
		Personality:  agent.Personality(c.Personality),
		ThinkingTime: c.ThinkingTime,
		MaxActions:   c.MaxActions,
		Seed:         c.Seed,
	}
}
