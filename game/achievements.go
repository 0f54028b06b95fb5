package game

import (
	"settlers/board"
	"settlers/meta"
)

// LongestRoad returns the number of segments in the longest simple path
// through the player's roads. A path may revisit a vertex but never an edge,
// and it cannot continue through a vertex holding an opponent's building.
func (gs *GameState) LongestRoad(playerID string) int {
	adjacency := make(map[board.VertexID][]board.EdgeID)
	for _, e := range gs.RoadsOf(playerID) {
		a, b := e.Endpoints()
		adjacency[a] = append(adjacency[a], e)
		adjacency[b] = append(adjacency[b], e)
	}

	visited := make(map[board.EdgeID]bool)
	var walk func(at board.VertexID, length int) int
	walk = func(at board.VertexID, length int) int {
		if b, ok := gs.Buildings[at]; ok && b.Owner != playerID && length > 0 {
			return length
		}
		best := length
		for _, e := range adjacency[at] {
			if visited[e] {
				continue
			}
			visited[e] = true
			a, b := e.Endpoints()
			next := a
			if next == at {
				next = b
			}
			if l := walk(next, length+1); l > best {
				best = l
			}
			visited[e] = false
		}
		return best
	}

	longest := 0
	for _, v := range gs.Board.VertexIDs() {
		if _, ok := adjacency[v]; !ok {
			continue
		}
		if l := walk(v, 0); l > longest {
			longest = l
		}
	}
	return longest
}

// award decides who holds an achievement given every player's value. The
// incumbent keeps it while tied for the lead; otherwise a unique leader at or
// above the minimum takes it, and a tie leaves it unassigned.
func award(values map[string]int, order []string, incumbent string, minimum int) string {
	best := 0
	for _, v := range values {
		best = max(best, v)
	}
	if best < minimum {
		return ""
	}
	var leaders []string
	for _, id := range order {
		if values[id] == best {
			leaders = append(leaders, id)
		}
	}
	for _, id := range leaders {
		if id == incumbent {
			return incumbent
		}
	}
	if len(leaders) == 1 {
		return leaders[0]
	}
	return ""
}

func (gs *GameState) refreshLongestRoad() {
	lengths := make(map[string]int, len(gs.Players))
	incumbent := ""
	for i := range gs.Players {
		p := &gs.Players[i]
		p.LongestRoadLength = gs.LongestRoad(p.ID)
		lengths[p.ID] = p.LongestRoadLength
		if p.HasLongestRoad {
			incumbent = p.ID
		}
	}
	holder := award(lengths, gs.TurnOrder(), incumbent, meta.LONGEST_ROAD_MIN)
	for i := range gs.Players {
		gs.Players[i].HasLongestRoad = gs.Players[i].ID == holder
	}
}

func (gs *GameState) refreshLargestArmy() {
	knights := make(map[string]int, len(gs.Players))
	incumbent := ""
	for _, p := range gs.Players {
		knights[p.ID] = p.KnightsPlayed
		if p.HasLargestArmy {
			incumbent = p.ID
		}
	}
	holder := award(knights, gs.TurnOrder(), incumbent, meta.LARGEST_ARMY_MIN)
	for i := range gs.Players {
		gs.Players[i].HasLargestArmy = gs.Players[i].ID == holder
	}
}

// refreshScores recomputes every score from the board and the hands.
func (gs *GameState) refreshScores() {
	public := make(map[string]int, len(gs.Players))
	for _, b := range gs.Buildings {
		public[b.Owner] += b.Points()
	}
	for i := range gs.Players {
		p := &gs.Players[i]
		score := Score{Public: public[p.ID]}
		if p.HasLongestRoad {
			score.Public += meta.ACHIEVEMENT_BONUS
		}
		if p.HasLargestArmy {
			score.Public += meta.ACHIEVEMENT_BONUS
		}
		for _, c := range p.Cards {
			if c.Type == VictoryPoint {
				score.Hidden++
			}
		}
		p.Score = score
	}
}

// checkWinner ends the game if the acting player has reached the target.
func (gs *GameState) checkWinner(playerID string) {
	p, ok := gs.Player(playerID)
	if !ok || gs.Phase.IsSetup() {
		return
	}
	if p.Score.Total() >= meta.VICTORY_POINTS {
		gs.Phase = EndedPhase
		gs.Winner = playerID
	}
}
