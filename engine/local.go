package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"settlers/agent"
	"settlers/apperr"
	"settlers/experiments/metrics"
	"settlers/gamemaster"
	"settlers/meta"
)

type Option func(*Local)

// WithMaxTurns stops a game once its turn counter passes n.
func WithMaxTurns(n int) Option {
	return func(l *Local) {
		if n > 0 {
			l.maxTurns = n
		}
	}
}

// Local drives every seat of a game with an AutoPlayer through a gamemaster.
type Local struct {
	gm       *gamemaster.Service
	players  map[string]*agent.AutoPlayer
	maxTurns int
	log      zerolog.Logger
}

// LocalEngine builds an AutoPlayer for each configured seat.
func LocalEngine(gm *gamemaster.Service, seats map[string]agent.Config, logger zerolog.Logger, options ...Option) (*Local, error) {
	if len(seats) < meta.MIN_PLAYERS {
		return nil, apperr.Validation("need at least %d players, got %d", meta.MIN_PLAYERS, len(seats))
	}
	l := &Local{
		gm:       gm,
		players:  make(map[string]*agent.AutoPlayer, len(seats)),
		maxTurns: meta.MAX_TURNS,
		log:      logger,
	}
	for id, cfg := range seats {
		p, err := agent.NewAutoPlayer(id, cfg, gm, logger)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", id, err)
		}
		l.players[id] = p
	}
	for _, option := range options {
		option(l)
	}
	return l, nil
}

// Run executes the game loop until the game ends or the turn limit is hit,
// then checks that the stored events replay to the final state.
func (l *Local) Run(ctx context.Context, gameID string) (metrics.GameMetric, []metrics.TurnMetric, error) {
	gs, err := l.gm.State(ctx, gameID)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	log := l.log.With().Str("game", gameID).Logger()

	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	if order := gs.TurnOrder(); len(order) > 0 {
		gameMetric.StartingPlayer = order[0]
	}
	log.Info().Str("starting", gameMetric.StartingPlayer).Int("players", len(l.players)).Msg("game started")

	var turnMetrics []metrics.TurnMetric
	for !gs.Ended() && gs.Turn <= l.maxTurns {
		actor := gs.Actor()
		p, ok := l.players[actor]
		if !ok {
			return gameMetric, turnMetrics, apperr.NotFound("no auto player for seat %s", actor)
		}

		result, err := p.PlayTurn(ctx, gameID)
		turnMetrics = append(turnMetrics, result.Metric)
		gameMetric.TotalActions += result.ActionsExecuted
		if err != nil {
			return gameMetric, turnMetrics, fmt.Errorf("turn %d of %s: %w", gs.Turn, actor, err)
		}
		if result.ActionsExecuted == 0 {
			return gameMetric, turnMetrics, fmt.Errorf("game %s stalled on %s in %s", gameID, actor, gs.Phase)
		}

		if gs, err = l.gm.State(ctx, gameID); err != nil {
			return gameMetric, turnMetrics, err
		}
	}

	gameMetric.Winner = gs.Winner
	gameMetric.Turns = gs.Turn
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)

	rebuilt, err := l.gm.Rebuild(ctx, gameID)
	if err != nil {
		return gameMetric, turnMetrics, err
	}
	if rebuilt.Hash() != gs.Hash() {
		return gameMetric, turnMetrics, fmt.Errorf("game %s: replayed state %x differs from live state %x", gameID, rebuilt.Hash(), gs.Hash())
	}

	if gs.Winner == "" {
		log.Info().Int("turns", gs.Turn).Int("actions", gameMetric.TotalActions).Msg("stopped at turn limit")
	} else {
		log.Info().Str("winner", gs.Winner).Int("turns", gs.Turn).Int("actions", gameMetric.TotalActions).Msg("game over")
	}
	return gameMetric, turnMetrics, nil
}
