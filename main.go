package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"settlers/config"
	"settlers/eventstore"
	"settlers/experiments"
	"settlers/experiments/metrics"
	"settlers/game"
	"settlers/gamemaster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("self-play failed")
	}
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := eventstore.Open(ctx, cfg.Store())
	if err != nil {
		return err
	}
	defer store.Close()

	proc := game.NewProcessor(log.Logger)
	gm := gamemaster.New(store, proc, log.Logger, gamemaster.WithAppendRetries(cfg.AppendRetries))

	writer, err := metrics.NewWriter(cfg.ResultsDir)
	if err != nil {
		return err
	}

	var all experiments.Results
	for _, exp := range plan(cfg) {
		results, err := experiments.Run(ctx, gm, exp, log.Logger)
		all.Merge(results)
		if err != nil {
			log.Error().Err(err).Str("experiment", exp.Name).Msg("experiment stopped")
			break
		}
	}

	if err := all.Write(writer); err != nil {
		return err
	}
	log.Info().Str("dir", writer.Dir()).Int("games", len(all.Games)).Msg("stored results")
	return ctx.Err()
}

// plan expands the configured experiment into runs.
func plan(cfg config.Config) []experiments.Experiment {
	ai := cfg.Agent()
	seat := metrics.AgentConfig{
		Difficulty:   string(ai.Difficulty),
		Personality:  string(ai.Personality),
		ThinkingTime: ai.ThinkingTime,
		MaxActions:   ai.MaxActions,
	}
	switch cfg.Experiment {
	case "ladder":
		return experiments.DifficultyLadder(cfg.Games, ai.Personality, ai.ThinkingTime, ai.Seed, cfg.MaxTurns)
	case "personalities":
		return []experiments.Experiment{experiments.PersonalityRound(cfg.Games, ai.Difficulty, ai.ThinkingTime, ai.Seed, cfg.MaxTurns)}
	}
	return []experiments.Experiment{experiments.SelfPlay(cfg.Games, cfg.Players, seat, ai.Seed, cfg.MaxTurns)}
}
