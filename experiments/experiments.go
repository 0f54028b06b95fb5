package experiments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"settlers/agent"
	"settlers/engine"
	"settlers/experiments/metrics"
	"settlers/game"
	"settlers/gamemaster"
	"settlers/meta"
)

// Experiment is a series of self-play games between fixed seat configurations.
type Experiment struct {
	Name     string
	Games    int
	Seats    []metrics.AgentConfig // one per seat, in seating order
	Seed     uint64                // game i uses Seed+i
	MaxTurns int
}

// Results holds everything recorded while running an experiment.
type Results struct {
	Configs []metrics.AgentConfig
	Games   []metrics.GameRecord
	Turns   []metrics.TurnRecord
}

// Run plays every game of exp through gm. A failed game stops the run; the
// records gathered so far are returned with the error.
func Run(ctx context.Context, gm *gamemaster.Service, exp Experiment, logger zerolog.Logger) (Results, error) {
	results := Results{Configs: distinct(exp.Seats)}
	if n := len(exp.Seats); n < meta.MIN_PLAYERS || n > meta.MAX_PLAYERS {
		return results, fmt.Errorf("experiment %s: need %d to %d seats, got %d", exp.Name, meta.MIN_PLAYERS, meta.MAX_PLAYERS, n)
	}
	log := logger.With().Str("experiment", exp.Name).Logger()
	log.Info().Int("games", exp.Games).Int("seats", len(exp.Seats)).Msg("starting experiment")

	for i := 0; i < exp.Games; i++ {
		seed := exp.Seed + uint64(i)
		record, turns, err := runGame(ctx, gm, exp, seed, logger)
		record.ID = i + 1
		results.Games = append(results.Games, record)
		for _, tm := range turns {
			results.Turns = append(results.Turns, metrics.TurnRecord{Game: record.ID, TurnMetric: tm})
		}
		if err != nil {
			return results, fmt.Errorf("game %d of %d: %w", i+1, exp.Games, err)
		}
		log.Info().Int("game", i+1).Str("winner", record.Winner).Int("turns", record.Turns).Dur("duration", record.Duration).Msg("completed game")
	}

	log.Info().Msg("completed experiment")
	return results, nil
}

// Merge appends other, numbering its games after those already held.
func (r *Results) Merge(other Results) {
	offset := len(r.Games)
	r.Configs = distinct(append(r.Configs, other.Configs...))
	for _, g := range other.Games {
		g.ID += offset
		r.Games = append(r.Games, g)
	}
	for _, t := range other.Turns {
		t.Game += offset
		r.Turns = append(r.Turns, t)
	}
}

// Write stores the results as CSV files.
func (r Results) Write(w *metrics.Writer) error {
	if err := w.WriteAgentConfigs(r.Configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := w.WriteGameRecords(r.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := w.WriteTurnRecords(r.Turns); err != nil {
		return fmt.Errorf("failed to write turn records: %w", err)
	}
	return nil
}

func runGame(ctx context.Context, gm *gamemaster.Service, exp Experiment, seed uint64, logger zerolog.Logger) (metrics.GameRecord, []metrics.TurnMetric, error) {
	record := metrics.GameRecord{GameID: uuid.NewString()}
	seats := make([]game.Seat, len(exp.Seats))
	configs := make(map[string]agent.Config, len(exp.Seats))
	for i, cfg := range exp.Seats {
		id := fmt.Sprintf("p%d", i+1)
		seats[i] = game.Seat{ID: id, Name: fmt.Sprintf("%s %s", cfg.Personality, cfg.Difficulty), IsAI: true}
		configs[id] = agentConfig(cfg, seed+uint64(i))
		record.Agents = append(record.Agents, cfg.ID)
	}

	if _, err := gm.CreateGame(ctx, game.Setup{GameID: record.GameID, Seats: seats, Seed: seed, Shuffle: true}); err != nil {
		return record, nil, err
	}
	e, err := engine.LocalEngine(gm, configs, logger, engine.WithMaxTurns(exp.MaxTurns))
	if err != nil {
		return record, nil, err
	}
	gameMetric, turns, err := e.Run(ctx, record.GameID)
	record.GameMetric = gameMetric
	return record, turns, err
}

func agentConfig(cfg metrics.AgentConfig, seed uint64) agent.Config {
	return agent.Config{
		Difficulty:   agent.Difficulty(cfg.Difficulty),
		Personality:  agent.Personality(cfg.Personality),
		ThinkingTime: cfg.ThinkingTime,
		MaxActions:   cfg.MaxActions,
		Seed:         seed,
	}
}

func distinct(configs []metrics.AgentConfig) []metrics.AgentConfig {
	seen := make(map[int]bool)
	var out []metrics.AgentConfig
	for _, c := range configs {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}
