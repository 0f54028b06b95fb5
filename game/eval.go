package game

import (
	"settlers/board"
	"settlers/meta"
)

// ProductionPips sums the pips of every hex a player's buildings touch,
// doubled for cities. Hexes under the robber are skipped.
func (gs *GameState) ProductionPips(playerID string) int {
	total := 0
	for _, v := range gs.BuildingsOf(playerID) {
		points := gs.Buildings[v].Points()
		for _, h := range gs.Board.ProducingHexes(v) {
			if h.Coord != gs.Robber {
				total += h.Pips() * points
			}
		}
	}
	return total
}

// ResourcePips is ProductionPips split per resource.
func (gs *GameState) ResourcePips(playerID string) map[board.Resource]int {
	out := make(map[board.Resource]int, len(board.Resources))
	for _, v := range gs.BuildingsOf(playerID) {
		points := gs.Buildings[v].Points()
		for _, h := range gs.Board.ProducingHexes(v) {
			if h.Coord == gs.Robber {
				continue
			}
			res, _ := h.Resource()
			out[res] += h.Pips() * points
		}
	}
	return out
}

// Evaluate returns a score between 0 and 1 indicating how favourable the
// position is for the player. Finished games score 1 for the winner and 0
// for everyone else.
func Evaluate(gs *GameState, playerID string) float64 {
	if gs.Ended() {
		if gs.Winner == playerID {
			return 1
		}
		return 0
	}
	me, ok := gs.Player(playerID)
	if !ok {
		return 0
	}

	// Compare against the strongest opponent on each axis.
	var points, production, hand, army, road float64
	for _, p := range gs.Players {
		if p.ID == playerID {
			continue
		}
		points = max(points, float64(p.Score.Total()))
		production = max(production, float64(gs.ProductionPips(p.ID)))
		hand = max(hand, float64(p.Resources.Total()+len(p.UnplayedCards())))
		army = max(army, float64(p.KnightsPlayed))
		road = max(road, float64(p.LongestRoadLength))
	}

	pointScore := normalize(float64(me.Score.Total()), points)
	productionScore := normalize(float64(gs.ProductionPips(playerID)), production)
	handScore := normalize(float64(me.Resources.Total()+len(me.UnplayedCards())), hand)
	achievementScore := (normalize(float64(me.KnightsPlayed), army) + normalize(float64(me.LongestRoadLength), road)) / 2
	progress := float64(me.Score.Total()) / meta.VICTORY_POINTS

	// Weighted combination in [-1, 1], shifted to [0, 1]
	combined := (3*pointScore + 2*productionScore + handScore + achievementScore + 3*(2*progress-1)) / 10
	return (min(max(combined, -1), 1) + 1) / 2
}

// normalize converts two values into a single score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	// [a/(a+b)-0.5]*2 = (a-b)/(a+b)
	return (value - otherValue) / total
}
