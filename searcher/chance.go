package searcher

import (
	"sync"

	"settlers/game"
)

// chance branches on the outcomes of one stochastic move, such as a dice roll
// or a card draw. Outcomes are keyed by the hash of the state they lead to.
type chance struct {
	mu       sync.RWMutex
	parent   Node
	player   string
	outcomes map[game.StateHash]*decision
	rewards  float64
	visits   float64
}

func newChance(parent *decision) *chance {
	return &chance{
		parent:   parent,
		player:   parent.player,
		outcomes: make(map[game.StateHash]*decision),
	}
}

// SelectOrExpand descends into the outcome the sampled state belongs to. The
// descent stops at an outcome seen for the first time.
func (c *chance) SelectOrExpand(state game.State) (Node, game.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	child, seen := c.outcomes[state.Hash()]
	if !seen {
		if c.outcomes == nil {
			c.outcomes = make(map[game.StateHash]*decision)
		}
		child = newDecision(c, state)
		c.outcomes[child.hash] = child
	}
	child.applyLoss()
	return child, state, seen
}

func (c *chance) applyLoss() {
	c.mu.Lock()
	c.visits++
	c.rewards += Loss
	c.mu.Unlock()
}

func (c *chance) stats() (player string, rewards float64, visits float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player, c.rewards, c.visits
}

// Backup swaps the virtual loss taken on the way down for the real reward.
func (c *chance) Backup(player string, score float64) Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rewards += computeReward(player, score, c.player) - Loss
	return c.parent
}
