package searcher

import "math"

// uct scores children of one parent with the UCT formula. Child statistics
// are kept from the child's player's perspective and flipped when the parent
// belongs to someone else.
type uct struct {
	player    string
	numerator float64
}

func newUCT(player string, cSquared float64, N float64) uct {
	if N <= 0 {
		panic("cannot compute UCT: parent has no visits")
	}
	return uct{player: player, numerator: cSquared * math.Log(N)}
}

// score returns +Inf for unvisited children so they are tried first.
func (u uct) score(child Node) float64 {
	player, q, n := child.stats()
	if n == 0 {
		return math.Inf(1)
	}
	if player != u.player {
		q = n*Win - q
	}
	// UCT = q/n + sqrt(c^2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

// best returns the index of the highest scoring child.
func (u uct) best(children []Node) int {
	bestIndex, bestScore := 0, math.Inf(-1)
	for i, child := range children {
		if s := u.score(child); s > bestScore {
			bestIndex, bestScore = i, s
		}
	}
	return bestIndex
}
