package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"settlers/board"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// scriptedRand returns the given values in order, then zeros.
type scriptedRand struct {
	values []int
	next   int
}

func (s *scriptedRand) Intn(n int) int {
	if s.next >= len(s.values) {
		return 0
	}
	v := s.values[s.next] % n
	s.next++
	return v
}

// dice scripts a roll of a and b.
func dice(a, b int) *scriptedRand {
	return &scriptedRand{values: []int{a - 1, b - 1}}
}

func newTestProcessor(rng Rand) *Processor {
	return NewProcessor(zerolog.Nop(), WithRand(rng), WithClock(func() time.Time { return fixedTime }))
}

func seats(n int) []Seat {
	colors := []string{"red", "blue", "white", "orange"}
	out := make([]Seat, n)
	for i := range out {
		out[i] = Seat{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1), Color: colors[i]}
	}
	return out
}

func newTestGame(t *testing.T, players int, seed uint64) (*GameState, []Event, *Processor) {
	t.Helper()
	proc := newTestProcessor(rand.New(rand.NewSource(seed)))
	gs, events, err := proc.NewGame(Setup{GameID: "g1", Seats: seats(players), Seed: seed})
	require.NoError(t, err)
	return gs, events, proc
}

// play processes an action that must succeed.
func play(t *testing.T, proc *Processor, gs *GameState, a Action) *GameState {
	t.Helper()
	next, _, err := proc.Process(gs, a)
	require.NoError(t, err, a.String())
	return next
}

// completeSetup places the first legal settlement and road for every setup turn.
func completeSetup(t *testing.T, proc *Processor, gs *GameState) (*GameState, []Event) {
	t.Helper()
	var events []Event
	for gs.Phase.IsSetup() {
		actions := LegalActions(gs, gs.Actor())
		require.NotEmpty(t, actions)
		next, ev, err := proc.Process(gs, actions[0])
		require.NoError(t, err)
		gs = next
		events = append(events, ev)
	}
	return gs, events
}

// inPhase returns a copy of gs with the given player to act in phase.
func inPhase(gs *GameState, playerID string, phase Phase, turn int) *GameState {
	next := gs.Copy()
	next.Phase = phase
	next.CurrentPlayer = playerID
	next.Turn = turn
	next.SetupVertex = nil
	return next
}

// give moves cards from the bank to a player.
func give(t *testing.T, gs *GameState, playerID string, r Resources) {
	t.Helper()
	p, ok := gs.Player(playerID)
	require.True(t, ok)
	require.True(t, gs.Bank.Covers(r))
	gs.grant(p, r)
}

// place puts a building on the board as if it had been built.
func place(gs *GameState, playerID string, v board.VertexID, t BuildingType) {
	gs.Buildings[v] = Building{Type: t, Owner: playerID}
	p, _ := gs.Player(playerID)
	p.Inventory.Settlements--
	if t == City {
		p.Inventory.Settlements++
		p.Inventory.Cities--
	}
	gs.refreshScores()
}

func placeRoad(gs *GameState, playerID string, e board.EdgeID) {
	gs.Roads[e] = playerID
	p, _ := gs.Player(playerID)
	p.Inventory.Roads--
}

func hand(gs *GameState, playerID string) Resources {
	p, _ := gs.Player(playerID)
	return p.Resources
}

func findHex(gs *GameState, match func(h *board.Hex) bool) *board.Hex {
	for _, c := range gs.Board.HexIDs() {
		if h := gs.Board.Hexes[c]; match(h) {
			return h
		}
	}
	return nil
}
