package agent

import (
	"context"

	"settlers/game"
	"settlers/searcher"
)

// Strategic searches forward from the current state when the cheaper tiers
// found nothing worth doing. It picks the legal action the search visited
// most, which is often ending the turn.
func Strategic() Tier {
	return Tier{
		Name: StrategicTier,
		CanHandle: func(c Context) bool {
			return c.MyMove() && len(c.Legal) > 1
		},
		Decide: func(ctx context.Context, c Context) (Decision, bool) {
			level := c.Profile.Level
			mcts := searcher.NewMCTS(level.Goroutines,
				searcher.WithEpisodes(level.Episodes),
				searcher.WithCutoff(level.Cutoff),
				searcher.WithMetrics(),
			)
			policy, metric := mcts.Simulate(ctx, game.NewSimulation(c.State))

			best, share := -1, 0.0
			for i, a := range c.Legal {
				if p := policy[a]; p > share {
					best, share = i, p
				}
			}
			if best < 0 {
				return Decision{}, false
			}
			goal := GoalSearch
			if c.Legal[best].Type == game.EndTurnAction {
				goal = GoalEndTurn
			}
			return Decision{
				Action:        c.Legal[best],
				Confidence:    share,
				StrategicGoal: goal,
				Reasoning:     "most visited in forward search",
				Search:        metric,
			}, true
		},
	}
}
