package agent

import (
	"math"

	"settlers/board"
	"settlers/game"
	"settlers/utils"
)

// Resources needed for the two building recipes worth completing.
var recipes = [][]board.Resource{
	{board.Wood, board.Brick, board.Sheep, board.Wheat},
	{board.Wheat, board.Ore},
}

// boardPips totals the pips on the board per resource.
func boardPips(b *board.Board) map[board.Resource]int {
	out := make(map[board.Resource]int, len(board.Resources))
	for _, c := range b.HexIDs() {
		h := b.Hexes[c]
		if res, ok := h.Resource(); ok {
			out[res] += h.Pips()
		}
	}
	return out
}

// scarcity is sqrt(maxResourcePips / thisResourcePips), so the rarest
// resource on the board weighs the most.
func scarcity(pips map[board.Resource]int, res board.Resource) float64 {
	maxPips := 0
	for _, n := range pips {
		maxPips = max(maxPips, n)
	}
	if pips[res] == 0 {
		return 1
	}
	return math.Sqrt(float64(maxPips) / float64(pips[res]))
}

// recipeGain rewards new production that completes a recipe, and half as
// much for bringing one within a single resource.
func recipeGain(produced map[board.Resource]int, added map[board.Resource]bool) float64 {
	gain := 0.0
	for _, recipe := range recipes {
		before, after := 0, 0
		for _, res := range recipe {
			if produced[res] == 0 {
				before++
				if !added[res] {
					after++
				}
			}
		}
		switch {
		case before > 0 && after == 0:
			gain++
		case before > 1 && after == 1:
			gain += 0.5
		}
	}
	return gain
}

// scoreVertex values a settlement site for a player.
func scoreVertex(gs *game.GameState, playerID string, v board.VertexID, w Weights, pips map[board.Resource]int) float64 {
	produced := gs.ResourcePips(playerID)
	added := make(map[board.Resource]bool)
	hexes := gs.Board.ProducingHexes(v)

	score := 0.0
	for _, h := range hexes {
		res, _ := h.Resource()
		value := float64(h.Pips()) * (1 + w.Scarcity*(scarcity(pips, res)-1))
		if h.Coord == gs.Robber {
			value /= 2
		}
		score += w.Production * value
		if produced[res] == 0 && !added[res] {
			score += w.Diversity
		}
		added[res] = true
	}
	if n := len(hexes); n > 1 {
		score += w.HexCount * float64(n-1)
	}
	score += w.Recipe * recipeGain(produced, added)

	if port := gs.Board.Vertices[v].Port; port != nil {
		switch {
		case port.Generic():
			score += w.Port
		case produced[port.Resource] > 0 || added[port.Resource]:
			score += 1.5 * w.Port
		default:
			score += 0.5 * w.Port
		}
	}
	return score
}

// handRecipe scores how close a hand is to paying for a city or settlement:
// 1 per recipe covered, 0.5 per recipe one card short.
func handRecipe(hand game.Resources) float64 {
	score := 0.0
	for _, cost := range []game.Resources{game.SettlementCost, game.CityCost} {
		switch hand.Missing(cost).Total() {
		case 0:
			score++
		case 1:
			score += 0.5
		}
	}
	return score
}

// bestSiteFrom returns the best free settlement site within two edges of a
// vertex, as seen by the player. Zero when there is none.
func bestSiteFrom(gs *game.GameState, playerID string, from board.VertexID, w Weights, pips map[board.Resource]int) float64 {
	best := 0.0
	seen := map[board.VertexID]bool{from: true}
	frontier := []board.VertexID{from}
	for depth := 0; depth < 2; depth++ {
		var next []board.VertexID
		for _, v := range frontier {
			neighbors, _ := gs.Board.AdjacentVertices(v)
			for _, n := range neighbors {
				if seen[n] {
					continue
				}
				seen[n] = true
				next = append(next, n)
				if freeSite(gs, n) {
					best = max(best, scoreVertex(gs, playerID, n, w, pips)/float64(depth+1))
				}
			}
		}
		frontier = next
	}
	return best
}

// freeSite reports whether a vertex satisfies the distance rule.
func freeSite(gs *game.GameState, v board.VertexID) bool {
	if _, taken := gs.Buildings[v]; taken {
		return false
	}
	neighbors, _ := gs.Board.AdjacentVertices(v)
	return !utils.ContainsFunc(neighbors, func(n board.VertexID) bool {
		_, taken := gs.Buildings[n]
		return taken
	})
}

// leader returns the opponent with the highest public score, ties broken by
// turn order.
func leader(gs *game.GameState, playerID string) string {
	best, bestScore := "", -1
	for _, id := range gs.TurnOrder() {
		if id == playerID {
			continue
		}
		p, _ := gs.Player(id)
		if p.Score.Public > bestScore {
			best, bestScore = id, p.Score.Public
		}
	}
	return best
}
