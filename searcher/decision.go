package searcher

import (
	"sync"

	"golang.org/x/exp/rand"

	"settlers/game"
)

type decision struct {
	sync.RWMutex
	parent     Node
	player     string // player to move
	hash       game.StateHash
	unexplored []game.Move
	explored   []game.Move
	children   []Node // aligned with explored
	rewards    float64
	visits     float64
}

func newDecision(parent Node, state game.State) *decision {
	moves := state.LegalMoves()
	rand.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	return &decision{
		parent:     parent,
		player:     state.Player(),
		hash:       state.Hash(),
		unexplored: moves,
		explored:   make([]game.Move, 0, len(moves)),
		children:   make([]Node, 0, len(moves)),
	}
}

func (d *decision) SelectOrExpand(state game.State) (Node, game.State, bool) {
	d.Lock()
	defer d.Unlock()

	if len(d.unexplored) == 0 && len(d.explored) == 0 { // Terminal node
		return d, state, false
	}

	if n := len(d.unexplored); n > 0 { // Expandable node
		move := d.unexplored[n-1]
		d.unexplored = d.unexplored[:n-1]
		next := state.Play(move)

		var child Node
		if move.IsStochastic() {
			// The outcome is expanded under the chance node on the next step
			child = newChance(d)
		} else {
			child = newDecision(d, next)
		}
		d.explored = append(d.explored, move)
		d.children = append(d.children, child)
		child.applyLoss()
		return child, next, move.IsStochastic()
	}

	// Fully expanded node. Concurrent episodes may expand every move before
	// the first backup reaches this node.
	ith := newUCT(d.player, CSquared, max(d.visits, 1)).best(d.children)
	child := d.children[ith]
	child.applyLoss()
	return child, state.Play(d.explored[ith]), true
}

func (d *decision) applyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += Loss
	d.visits++
}

func (d *decision) stats() (string, float64, float64) {
	d.RLock()
	defer d.RUnlock()

	return d.player, d.rewards, d.visits
}

func (d *decision) Backup(player string, score float64) Node {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Root never receives a virtual loss
		d.reverseLoss()
	}
	d.rewards += computeReward(player, score, d.player)
	d.visits++

	return d.parent
}

func (d *decision) reverseLoss() {
	d.rewards -= Loss
	d.visits--
}

// Policy returns each explored move's share of the visits.
func (d *decision) Policy() map[game.Move]float64 {
	d.RLock()
	defer d.RUnlock()

	total := 0.0
	visits := make([]float64, len(d.children))
	for i, child := range d.children {
		_, _, visits[i] = child.stats()
		total += visits[i]
	}
	policy := make(map[game.Move]float64, len(d.explored))
	for i, move := range d.explored {
		if total > 0 {
			policy[move] = visits[i] / total
		} else {
			policy[move] = 0
		}
	}
	return policy
}

// bestMove returns the most visited move, or nil if nothing was explored.
func (d *decision) bestMove() game.Move {
	d.RLock()
	defer d.RUnlock()

	var best game.Move
	maxVisits := -1.0
	for i, child := range d.children {
		if _, _, v := child.stats(); v > maxVisits {
			best, maxVisits = d.explored[i], v
		}
	}
	return best
}
