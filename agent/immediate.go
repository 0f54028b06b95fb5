package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"settlers/game"
	"settlers/meta"
	"settlers/utils"
)

// Turn from which unplayed development cards count as stale.
const lateTurn = 60

// Robber yield, in pips times building points, worth a knight.
const defendThreshold = 4

type rule func(proc *game.Processor, c Context) (Decision, bool)

// Immediate handles forced and obvious moves. Every rule answers with
// confidence of at least 0.8.
func Immediate() Tier {
	proc := game.NewProcessor(zerolog.Nop())
	rules := []rule{mandatoryDiscard, winningMove, defendProduction, upgradeCity, spendStaleCards}
	return Tier{
		Name: ImmediateTier,
		CanHandle: func(c Context) bool {
			if !c.MyMove() {
				return false
			}
			switch c.State.Phase {
			case game.DiscardPhase, game.RollPhase, game.ActionsPhase:
				return true
			}
			return false
		},
		Decide: func(_ context.Context, c Context) (Decision, bool) {
			for _, r := range rules {
				if d, ok := r(proc, c); ok {
					return d, true
				}
			}
			return Decision{}, false
		},
	}
}

func mandatoryDiscard(_ *game.Processor, c Context) (Decision, bool) {
	options := c.Of(game.DiscardAction)
	if len(options) == 0 {
		return Decision{}, false
	}
	hand := c.Me().Resources
	pips := c.State.ResourcePips(c.PlayerID)
	i := utils.ArgMax(options, func(a game.Action) float64 {
		left := hand.Sub(a.Resources)
		// Keep recipes intact, then keep what we produce least.
		kept := 0.0
		for _, res := range a.Resources.Cards() {
			kept += float64(pips[res])
		}
		return handRecipe(left)*10 + kept
	})
	return Decision{
		Action:        options[i],
		Confidence:    1,
		StrategicGoal: GoalDiscard,
		Reasoning:     fmt.Sprintf("discard %s", options[i].Resources),
	}, true
}

// winningMove looks for a deterministic action that ends the game in our
// favour. No single action is worth more than two points.
func winningMove(proc *game.Processor, c Context) (Decision, bool) {
	if c.Me().Score.Total()+meta.ACHIEVEMENT_BONUS < meta.VICTORY_POINTS {
		return Decision{}, false
	}
	for _, a := range c.Legal {
		if a.IsStochastic() || a.Type == game.EndTurnAction || a.Type == game.TradeAction {
			continue
		}
		next, _, err := proc.Process(c.State, a)
		if err == nil && next.Winner == c.PlayerID {
			return Decision{
				Action:        a,
				Confidence:    0.99,
				StrategicGoal: GoalWin,
				Reasoning:     "action wins the game",
			}, true
		}
	}
	return Decision{}, false
}

// defendProduction plays a knight when the robber sits on one of our
// productive hexes.
func defendProduction(_ *game.Processor, c Context) (Decision, bool) {
	var knight *game.Action
	for _, a := range c.Of(game.PlayCardAction) {
		if a.CardType == game.Knight {
			knight = &a
			break
		}
	}
	if knight == nil {
		return Decision{}, false
	}
	if robberYield(c.State, c.PlayerID) < defendThreshold {
		return Decision{}, false
	}
	return Decision{
		Action:        *knight,
		Confidence:    0.85,
		StrategicGoal: GoalDefend,
		Reasoning:     fmt.Sprintf("robber blocks %s", c.State.Robber),
	}, true
}

// robberYield is what the robber's hex would produce for the player.
func robberYield(gs *game.GameState, playerID string) int {
	h := gs.Board.Hexes[gs.Robber]
	yield := 0
	for _, v := range gs.BuildingsOf(playerID) {
		for _, ph := range gs.Board.ProducingHexes(v) {
			if ph.Coord == h.Coord {
				yield += ph.Pips() * gs.Buildings[v].Points()
			}
		}
	}
	return yield
}

func upgradeCity(_ *game.Processor, c Context) (Decision, bool) {
	cities := c.Of(game.BuildCityAction)
	if len(cities) == 0 {
		return Decision{}, false
	}
	i := utils.ArgMax(cities, func(a game.Action) int {
		pips := 0
		for _, h := range c.State.Board.ProducingHexes(a.Vertex) {
			if h.Coord != c.State.Robber {
				pips += h.Pips()
			}
		}
		return pips
	})
	return Decision{
		Action:        cities[i],
		Confidence:    0.9,
		StrategicGoal: GoalUpgrade,
		Reasoning:     fmt.Sprintf("upgrade %s", cities[i].Vertex),
	}, true
}

// spendStaleCards plays held development cards once the game nears its end.
func spendStaleCards(_ *game.Processor, c Context) (Decision, bool) {
	if c.State.Phase != game.ActionsPhase || !lateGame(c.State) {
		return Decision{}, false
	}
	plays := c.Of(game.PlayCardAction)
	if len(plays) == 0 {
		return Decision{}, false
	}
	hand := c.Me().Resources
	i := utils.ArgMax(plays, func(a game.Action) float64 {
		switch a.CardType {
		case game.Monopoly:
			taken := 0
			for _, p := range c.State.Players {
				if p.ID != c.PlayerID {
					taken += p.Resources.Get(a.Resource)
				}
			}
			return float64(taken)
		case game.YearOfPlenty:
			return 1 + 2*handRecipe(hand.Add(a.Resources))
		case game.RoadBuilding:
			return 2
		default:
			return 1
		}
	})
	return Decision{
		Action:        plays[i],
		Confidence:    0.8,
		StrategicGoal: GoalSpendCards,
		Reasoning:     fmt.Sprintf("late game, play %s", plays[i].CardType),
	}, true
}

func lateGame(gs *game.GameState) bool {
	if gs.Turn >= lateTurn {
		return true
	}
	for _, p := range gs.Players {
		if p.Score.Public >= meta.VICTORY_POINTS-3 {
			return true
		}
	}
	return false
}
