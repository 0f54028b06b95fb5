package agent

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/rand"

	"settlers/board"
	"settlers/game"
	"settlers/meta"
	"settlers/utils"
)

// Base values of the candidate kinds in the actions phase, before weights.
const (
	settlementValue = 10.0
	cityValue       = 12.0
	cardValue       = 3.0
)

type candidate struct {
	action game.Action
	score  float64
	goal   Goal
}

// Heuristic scores candidate placements, trades and purchases. It has
// nothing to offer in the actions phase when only ending the turn is left.
func Heuristic(seed uint64) Tier {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	jitter := func(level float64) float64 {
		if level == 0 {
			return 1
		}
		mu.Lock()
		defer mu.Unlock()
		return 1 + level*(2*rng.Float64()-1)
	}

	return Tier{
		Name: HeuristicTier,
		CanHandle: func(c Context) bool {
			return c.MyMove() && len(c.Legal) > 0
		},
		Decide: func(_ context.Context, c Context) (Decision, bool) {
			var candidates []candidate
			switch c.State.Phase {
			case game.Setup1Phase, game.Setup2Phase:
				candidates = setupCandidates(c)
			case game.RollPhase:
				candidates = rollCandidates(c)
			case game.DiscardPhase:
				return mandatoryDiscard(nil, c)
			case game.MoveRobberPhase:
				candidates = robberCandidates(c)
			case game.StealPhase:
				candidates = stealCandidates(c)
			case game.ActionsPhase:
				candidates = turnCandidates(c)
			}
			if len(candidates) == 0 {
				return Decision{}, false
			}

			noise := c.Profile.Level.Noise
			for i := range candidates {
				candidates[i].score *= jitter(noise)
			}
			best := candidates[utils.ArgMax(candidates, func(cd candidate) float64 { return cd.score })]
			return Decision{
				Action:        best.action,
				Confidence:    0.5 + 0.3*best.score/(best.score+10),
				StrategicGoal: best.goal,
				Reasoning:     fmt.Sprintf("%s scored %.2f", best.action, best.score),
			}, true
		},
	}
}

func setupCandidates(c Context) []candidate {
	w := c.Profile.Weights
	pips := boardPips(c.State.Board)
	var out []candidate
	for _, a := range c.Of(game.BuildSettlementAction) {
		out = append(out, candidate{a, scoreVertex(c.State, c.PlayerID, a.Vertex, w, pips), GoalSetup})
	}
	for _, a := range c.Of(game.BuildRoadAction) {
		out = append(out, candidate{a, roadReach(c, a.Edge, pips) + 1, GoalSetup})
	}
	return out
}

func rollCandidates(c Context) []candidate {
	var out []candidate
	for _, a := range c.Of(game.RollAction) {
		out = append(out, candidate{a, 1, GoalRoll})
	}
	return out
}

// robberCandidates prefer hexes that cost opponents the most production,
// with extra weight on the leader. Our own hexes are only considered when
// nothing else is left.
func robberCandidates(c Context) []candidate {
	gs := c.State
	w := c.Profile.Weights
	top := leader(gs, c.PlayerID)

	var out, own []candidate
	for _, a := range c.Of(game.MoveRobberAction) {
		h := gs.Board.Hexes[a.Hex]
		score, mine := 0.0, false
		for _, v := range gs.Board.VerticesOf(a.Hex) {
			b, ok := gs.Buildings[v]
			if !ok {
				continue
			}
			value := float64(h.Pips() * b.Points())
			switch b.Owner {
			case c.PlayerID:
				mine = mine || value > 0
				score -= 3 * value
			case top:
				score += value * (1 + w.Blocking)
			default:
				score += value
			}
		}
		// Offset keeps scores positive for the noise multiplier.
		cd := candidate{a, score + 100, GoalBlock}
		if mine {
			own = append(own, cd)
		} else {
			out = append(out, cd)
		}
	}
	if len(out) == 0 {
		return own
	}
	return out
}

func stealCandidates(c Context) []candidate {
	top := leader(c.State, c.PlayerID)
	var out []candidate
	for _, a := range c.Of(game.StealAction) {
		p, _ := c.State.Player(a.Target)
		score := float64(p.Resources.Total()) + 1
		if a.Target == top {
			score += 2 * c.Profile.Weights.Blocking
		}
		out = append(out, candidate{a, score, GoalSteal})
	}
	return out
}

// turnCandidates scores every productive action. Ending the turn is never a
// candidate.
func turnCandidates(c Context) []candidate {
	gs := c.State
	me := c.Me()
	w := c.Profile.Weights
	pips := boardPips(gs.Board)
	hand := me.Resources
	canSettle := len(c.Of(game.BuildSettlementAction)) > 0

	var out []candidate
	for _, a := range c.Legal {
		switch a.Type {
		case game.BuildSettlementAction:
			out = append(out, candidate{a, settlementValue + scoreVertex(gs, c.PlayerID, a.Vertex, w, pips), GoalExpand})

		case game.BuildCityAction:
			value := 0
			for _, h := range gs.Board.ProducingHexes(a.Vertex) {
				value += h.Pips()
			}
			out = append(out, candidate{a, cityValue + w.Production*float64(value), GoalUpgrade})

		case game.BuildRoadAction:
			if gs.FreeRoads > 0 {
				out = append(out, candidate{a, 1 + roadReach(c, a.Edge, pips), GoalRoad})
				continue
			}
			if canSettle || me.Inventory.Settlements == 0 {
				continue
			}
			score := w.Expansion * roadReach(c, a.Edge, pips) / 3
			if me.LongestRoadLength >= meta.LONGEST_ROAD_MIN-1 && !me.HasLongestRoad {
				score += 2 * w.Expansion
			}
			if score > 1 {
				out = append(out, candidate{a, score, GoalRoad})
			}

		case game.BuyCardAction:
			// Hold ore and wheat for a pending city.
			if me.Inventory.Cities > 0 && hand.Covers(game.CityCost) && !hand.Sub(game.CardCost).Covers(game.CityCost) {
				continue
			}
			out = append(out, candidate{a, cardValue * w.Development, GoalDevelop})

		case game.PlayCardAction:
			if score, goal := cardScore(c, a, pips); score > 0 {
				out = append(out, candidate{a, score, goal})
			}

		case game.TradeAction:
			after := hand.Sub(game.Single(a.Give, gs.TradeRatio(c.PlayerID, a.Give))).Add(game.Single(a.Receive, a.Amount))
			if gain := handRecipe(after) - handRecipe(hand); gain > 0 {
				out = append(out, candidate{a, 4 * w.Trade * gain, GoalTrade})
			}
		}
	}
	return out
}

func cardScore(c Context, a game.Action, pips map[board.Resource]int) (float64, Goal) {
	w := c.Profile.Weights
	me := c.Me()
	switch a.CardType {
	case game.Knight:
		score := w.Army * float64(me.KnightsPlayed+1) / meta.LARGEST_ARMY_MIN
		if robberYield(c.State, c.PlayerID) > 0 {
			score += 2
		}
		return score, GoalArmy
	case game.Monopoly:
		taken := 0
		for _, p := range c.State.Players {
			if p.ID != c.PlayerID {
				taken += p.Resources.Get(a.Resource)
			}
		}
		if taken < 3 {
			return 0, ""
		}
		return float64(taken) * scarcity(pips, a.Resource), GoalDevelop
	case game.YearOfPlenty:
		return 1 + 3*handRecipe(me.Resources.Add(a.Resources)), GoalDevelop
	case game.RoadBuilding:
		return 2 * w.Expansion, GoalRoad
	}
	return 0, ""
}

// roadReach values the best site a road would lead to.
func roadReach(c Context, e board.EdgeID, pips map[board.Resource]int) float64 {
	a, b := e.Endpoints()
	best := 0.0
	for _, v := range []board.VertexID{a, b} {
		if owner, ok := c.State.Buildings[v]; ok && owner.Owner != c.PlayerID {
			continue
		}
		if freeSite(c.State, v) {
			best = max(best, scoreVertex(c.State, c.PlayerID, v, c.Profile.Weights, pips))
		}
		best = max(best, bestSiteFrom(c.State, c.PlayerID, v, c.Profile.Weights, pips))
	}
	return best
}
