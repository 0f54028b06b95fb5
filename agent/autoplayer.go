package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"settlers/apperr"
	"settlers/experiments/metrics"
	"settlers/game"
)

const (
	DefaultMaxActions = 25
	// Append conflicts tolerated per turn before giving up.
	maxConflicts = 3
)

// Submitter is the write path an AutoPlayer plays through.
type Submitter interface {
	State(ctx context.Context, gameID string) (*game.GameState, error)
	Submit(ctx context.Context, gameID string, a game.Action) (*game.GameState, error)
}

// Config is the per-seat AI configuration.
type Config struct {
	Difficulty   Difficulty
	Personality  Personality
	ThinkingTime time.Duration // pause before each action
	MaxActions   int           // per turn
	Seed         uint64        // heuristic noise
}

type Option func(*AutoPlayer)

// WithRegistry replaces the default tier chain.
func WithRegistry(r *Registry) Option {
	return func(p *AutoPlayer) {
		if r != nil {
			p.registry = r
		}
	}
}

// AutoPlayer plays one seat by asking its tiers for decisions and
// submitting them until the turn is over.
type AutoPlayer struct {
	id         string
	profile    Profile
	registry   *Registry
	submitter  Submitter
	log        zerolog.Logger
	thinking   time.Duration
	maxActions int
}

func NewAutoPlayer(playerID string, cfg Config, submitter Submitter, logger zerolog.Logger, options ...Option) (*AutoPlayer, error) {
	if playerID == "" {
		return nil, apperr.Validation("auto player needs a player id")
	}
	profile, err := NewProfile(cfg.Difficulty, cfg.Personality)
	if err != nil {
		return nil, err
	}
	p := &AutoPlayer{
		id:         playerID,
		profile:    profile,
		registry:   DefaultRegistry(cfg.Seed),
		submitter:  submitter,
		log:        logger.With().Str("player", playerID).Logger(),
		thinking:   max(cfg.ThinkingTime, 0),
		maxActions: cfg.MaxActions,
	}
	if p.maxActions <= 0 {
		p.maxActions = DefaultMaxActions
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

func (p *AutoPlayer) ID() string {
	return p.id
}

func (p *AutoPlayer) Profile() Profile {
	return p.profile
}

// TurnResult reports what one call to PlayTurn did.
type TurnResult struct {
	ActionsExecuted int
	Success         bool
	Decisions       []Decision // committed decisions in order
	Metric          metrics.TurnMetric
}

// PlayTurn acts for the player while the game waits on them. It returns
// after the player ends the turn, hands the move to someone else, or hits
// the action cap, in which case the turn is ended for them when possible.
//
// Rejected actions are excluded and another decision is requested. Append
// conflicts refresh the state and retry. Any other error, including a
// cancelled ctx, aborts the turn; only actions already submitted stay
// committed.
func (p *AutoPlayer) PlayTurn(ctx context.Context, gameID string) (result TurnResult, err error) {
	start := time.Now()
	result.Metric.Player = p.id
	defer func() {
		result.Metric.Actions = result.ActionsExecuted
		result.Metric.Duration = time.Since(start)
	}()

	gs, err := p.submitter.State(ctx, gameID)
	if err != nil {
		return result, err
	}
	result.Metric.Turn = gs.Turn
	log := p.log.With().Str("game", gameID).Int("turn", gs.Turn).Logger()

	rejected := make(map[game.Action]bool)
	conflicts := 0
	for attempts := 0; attempts < 2*p.maxActions && result.ActionsExecuted < p.maxActions; attempts++ {
		if gs.Ended() || gs.Actor() != p.id {
			break
		}
		if err := p.think(ctx); err != nil {
			return result, err
		}

		c := NewContext(gs, p.id, p.profile)
		c.Legal = without(c.Legal, rejected)
		d, ok := p.registry.Decide(ctx, c)
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !ok {
			if d, ok = forced(c); !ok {
				return result, apperr.System("no legal action left", nil).WithMetadata("player", p.id)
			}
			result.Metric.Forced = true
		}
		result.Metric.Add(d.Search)

		next, err := p.submitter.Submit(ctx, gameID, d.Action)
		switch {
		case err == nil:
			gs = next
			p.record(&result, d)
			log.Debug().Str("tier", d.Tier).Str("goal", string(d.StrategicGoal)).
				Float64("confidence", d.Confidence).Str("action", d.Action.String()).Msg("action applied")
			if d.Action.Type == game.EndTurnAction {
				result.Success = true
				return result, nil
			}

		case apperr.IsValidation(err) || apperr.IsNotFound(err):
			rejected[d.Action] = true
			result.Metric.Rejected++
			log.Warn().Err(err).Str("tier", d.Tier).Str("action", d.Action.String()).Msg("action rejected")

		case apperr.IsConflict(err):
			conflicts++
			if conflicts > maxConflicts {
				return result, err
			}
			log.Debug().Err(err).Msg("state changed, refreshing")
			if gs, err = p.submitter.State(ctx, gameID); err != nil {
				return result, err
			}

		default:
			log.Error().Err(err).Str("action", d.Action.String()).Msg("turn aborted")
			return result, err
		}
	}

	if !gs.Ended() && gs.Phase == game.ActionsPhase && gs.CurrentPlayer == p.id {
		c := NewContext(gs, p.id, p.profile)
		if d, ok := forced(c); ok && d.Action.Type == game.EndTurnAction {
			if _, err := p.submitter.Submit(ctx, gameID, d.Action); err != nil {
				return result, err
			}
			result.Metric.Forced = true
			p.record(&result, d)
			log.Debug().Int("actions", result.ActionsExecuted).Msg("action cap reached, turn ended")
		}
	}
	result.Success = true
	return result, nil
}

func (p *AutoPlayer) record(result *TurnResult, d Decision) {
	result.ActionsExecuted++
	result.Decisions = append(result.Decisions, d)
	switch d.Tier {
	case ImmediateTier:
		result.Metric.Immediate++
	case HeuristicTier:
		result.Metric.Heuristic++
	case StrategicTier:
		result.Metric.Strategic++
	}
}

// think waits out the thinking time unless ctx is done first.
func (p *AutoPlayer) think(ctx context.Context) error {
	if p.thinking == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.thinking)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// forced ends the turn when that is legal, otherwise takes the first legal
// action.
func forced(c Context) (Decision, bool) {
	if len(c.Legal) == 0 {
		return Decision{}, false
	}
	d := Decision{Action: c.Legal[0], Tier: ForcedTier, StrategicGoal: GoalEndTurn}
	for _, a := range c.Legal {
		if a.Type == game.EndTurnAction {
			d.Action = a
			return d, true
		}
	}
	d.StrategicGoal = ""
	return d, true
}

func without(actions []game.Action, excluded map[game.Action]bool) []game.Action {
	if len(excluded) == 0 {
		return actions
	}
	out := make([]game.Action, 0, len(actions))
	for _, a := range actions {
		if !excluded[a] {
			out = append(out, a)
		}
	}
	return out
}
