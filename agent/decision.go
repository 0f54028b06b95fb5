package agent

import (
	"context"

	"settlers/experiments/metrics"
	"settlers/game"
)

// Tier names.
const (
	ImmediateTier = "immediate"
	HeuristicTier = "heuristic"
	StrategicTier = "strategic"
	ForcedTier    = "forced"
)

// Goal tags the intent behind a decision.
type Goal string

const (
	GoalWin        Goal = "win"
	GoalDiscard    Goal = "discard"
	GoalUpgrade    Goal = "upgrade_city"
	GoalDefend     Goal = "defend_production"
	GoalSpendCards Goal = "spend_cards"
	GoalSetup      Goal = "initial_placement"
	GoalRoll       Goal = "roll"
	GoalExpand     Goal = "expand"
	GoalRoad       Goal = "extend_road"
	GoalDevelop    Goal = "develop"
	GoalTrade      Goal = "trade"
	GoalArmy       Goal = "largest_army"
	GoalBlock      Goal = "block_leader"
	GoalSteal      Goal = "steal"
	GoalSearch     Goal = "search"
	GoalEndTurn    Goal = "end_turn"
)

// Decision is one action chosen by a tier.
type Decision struct {
	Action        game.Action
	Confidence    float64 // between 0 and 1
	StrategicGoal Goal
	Tier          string
	Reasoning     string

	// Search is set when the decision came from a forward search.
	Search metrics.SearchMetric
}

// Context is everything a tier may look at. Legal excludes actions that the
// validator already rejected during the current turn.
type Context struct {
	State    *game.GameState
	PlayerID string
	Legal    []game.Action
	Profile  Profile
}

// NewContext enumerates the legal actions of the player.
func NewContext(gs *game.GameState, playerID string, profile Profile) Context {
	return Context{
		State:    gs,
		PlayerID: playerID,
		Legal:    game.LegalActions(gs, playerID),
		Profile:  profile,
	}
}

// Me returns the deciding player.
func (c Context) Me() *game.Player {
	p, _ := c.State.Player(c.PlayerID)
	return p
}

// MyMove reports whether the game is waiting on the deciding player.
func (c Context) MyMove() bool {
	return c.State != nil && !c.State.Ended() && c.State.Actor() == c.PlayerID
}

// Of returns the legal actions of one type.
func (c Context) Of(t game.ActionType) []game.Action {
	var out []game.Action
	for _, a := range c.Legal {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Tier is one strategy in the decision chain. Decide reports false when the
// tier has nothing to offer.
type Tier struct {
	Name      string
	CanHandle func(c Context) bool
	Decide    func(ctx context.Context, c Context) (Decision, bool)
}

// Registry tries tiers in order; the first decision wins.
type Registry struct {
	tiers []Tier
}

func NewRegistry(tiers ...Tier) *Registry {
	return &Registry{tiers: tiers}
}

// Tiers returns the registered tier names in priority order.
func (r *Registry) Tiers() []string {
	names := make([]string, len(r.tiers))
	for i, t := range r.tiers {
		names[i] = t.Name
	}
	return names
}

func (r *Registry) Decide(ctx context.Context, c Context) (Decision, bool) {
	for _, t := range r.tiers {
		if ctx.Err() != nil {
			return Decision{}, false
		}
		if t.CanHandle != nil && !t.CanHandle(c) {
			continue
		}
		if d, ok := t.Decide(ctx, c); ok {
			d.Tier = t.Name
			return d, true
		}
	}
	return Decision{}, false
}

// DefaultRegistry chains the immediate, heuristic and strategic tiers.
func DefaultRegistry(seed uint64) *Registry {
	return NewRegistry(Immediate(), Heuristic(seed), Strategic())
}
