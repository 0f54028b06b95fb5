package searcher

import (
	"settlers/game"
)

// Node is a vertex of the search tree. Decision nodes choose between legal
// moves; chance nodes branch on the random outcomes of a stochastic move.
type Node interface {
	// SelectOrExpand descends one level from the node. selected is false
	// when the returned child was just added, which ends the descent.
	SelectOrExpand(state game.State) (child Node, childState game.State, selected bool)
	// Backup records a playout result and returns the parent.
	Backup(player string, score float64) Node
	applyLoss()
	stats() (player string, rewards float64, visits float64)
}

// computeReward converts a playout score into a reward from the perspective
// of the node's player. Scores are in [0, 1] for the scoring player.
func computeReward(player string, score float64, nodePlayer string) float64 {
	if player == nodePlayer {
		return score
	}
	return Win - score
}
