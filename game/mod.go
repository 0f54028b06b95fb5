package game

import (
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// Move is an opaque step in a searchable game.
type Move interface {
	IsStochastic() bool
}

type StateHash uint64

// State should be immutable - operations on State always return a new copy
type State interface {
	Player() string
	LegalMoves() []Move
	Play(Move) State
	Hash() StateHash
	Winner() string
}

// Evaluator scores a state between 0 and 1 from one player's perspective.
type Evaluator func(state State, player string) float64

// sharedRand draws from the package-level source, which is safe for
// concurrent use by search goroutines.
type sharedRand struct{}

func (sharedRand) Intn(n int) int { return rand.Intn(n) }

// Simulation adapts a GameState to State so that search can play it
// forward. Chance outcomes are drawn from a shared random source.
type Simulation struct {
	state *GameState
	proc  *Processor
}

func NewSimulation(gs *GameState) *Simulation {
	return &Simulation{state: gs, proc: NewProcessor(zerolog.Nop(), WithRand(sharedRand{}))}
}

// Player returns the player expected to act next.
func (s *Simulation) Player() string {
	return s.state.Actor()
}

func (s *Simulation) LegalMoves() []Move {
	actions := LegalActions(s.state, s.Player())
	moves := make([]Move, len(actions))
	for i, a := range actions {
		moves[i] = a
	}
	return moves
}

// Play returns the state after a move. An illegal move leaves the state
// unchanged.
func (s *Simulation) Play(m Move) State {
	a, ok := m.(Action)
	if !ok {
		return s
	}
	next, _, err := s.proc.Process(s.state, a)
	if err != nil {
		return s
	}
	return &Simulation{state: next, proc: s.proc}
}

func (s *Simulation) Hash() StateHash {
	return s.state.Hash()
}

func (s *Simulation) Winner() string {
	return s.state.Winner
}

// EvaluateSimulation is an Evaluator for Simulation states.
func EvaluateSimulation(state State, player string) float64 {
	s, ok := state.(*Simulation)
	if !ok {
		return 0
	}
	return Evaluate(s.state, player)
}
