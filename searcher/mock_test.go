package searcher

import (
	"settlers/experiments/metrics"
	"settlers/game"
)

type mockMove struct {
	id         int
	stochastic bool
}

func (m mockMove) IsStochastic() bool {
	return m.stochastic
}

type mockState struct {
	player string
	hash   game.StateHash
	moves  []game.Move
	played []game.Move
	winner string
}

func (s mockState) Player() string          { return s.player }
func (s mockState) LegalMoves() []game.Move { return append([]game.Move(nil), s.moves...) }
func (s mockState) Hash() game.StateHash    { return s.hash }
func (s mockState) Winner() string          { return s.winner }

func (s mockState) Play(m game.Move) game.State {
	next := s
	next.played = append(append([]game.Move(nil), s.played...), m)
	return next
}

// nim is a take-away game: players alternately remove 1 or 2 stones and
// whoever takes the last stone wins.
type nim struct {
	stones int
	turn   int // index into players
}

var nimPlayers = []string{"alice", "bob"}

type take int

func (take) IsStochastic() bool { return false }

func (n nim) Player() string { return nimPlayers[n.turn] }

func (n nim) LegalMoves() []game.Move {
	var moves []game.Move
	for i := 1; i <= min(2, n.stones); i++ {
		moves = append(moves, take(i))
	}
	return moves
}

func (n nim) Play(m game.Move) game.State {
	return nim{stones: n.stones - int(m.(take)), turn: 1 - n.turn}
}

func (n nim) Hash() game.StateHash {
	return game.StateHash(n.stones*2 + n.turn)
}

func (n nim) Winner() string {
	if n.stones == 0 {
		return nimPlayers[1-n.turn]
	}
	return ""
}

func nimEvaluate(game.State, string) float64 { return 0.5 }

type countingCollector struct {
	episodes, full int
}

func (c *countingCollector) Start(int, int)                 {}
func (c *countingCollector) AddFullPlayout()                { c.full++ }
func (c *countingCollector) AddEpisode()                    { c.episodes++ }
func (c *countingCollector) Complete() metrics.SearchMetric { return metrics.SearchMetric{} }
