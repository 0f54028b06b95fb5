package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"settlers/board"
	"settlers/meta"
)

// playout drives a game with uniformly random legal actions and checks the
// rules engine invariants after every step.
func playout(t *testing.T, seed uint64, players, steps int) (*GameState, []Event) {
	t.Helper()
	gs, events, proc := newTestGame(t, players, seed)
	rng := rand.New(rand.NewSource(seed * 7919))

	for i := 0; i < steps && !gs.Ended(); i++ {
		actor := gs.Actor()
		actions := LegalActions(gs, actor)
		require.NotEmpty(t, actions, "no legal action for %s in %s", actor, gs.Phase)
		for _, a := range actions {
			require.NoError(t, Validate(gs, a), a.String())
		}

		next, ev, err := proc.Process(gs, actions[rng.Intn(len(actions))])
		require.NoError(t, err)
		events = append(events, ev)
		gs = next

		checkInvariants(t, gs)
	}
	return gs, events
}

func checkInvariants(t *testing.T, gs *GameState) {
	t.Helper()
	require.Equal(t, Uniform(meta.RESOURCE_SUPPLY), gs.TotalResources())

	cards := len(gs.Deck) + len(gs.DiscardPile)
	for _, p := range gs.Players {
		require.True(t, p.Resources.Valid(), p.ID)
		cards += len(p.UnplayedCards())

		settlements, cities := 0, 0
		for _, v := range gs.BuildingsOf(p.ID) {
			if gs.Buildings[v].Type == City {
				cities++
			} else {
				settlements++
			}
		}
		// A city hands its settlement back to the inventory.
		require.Equal(t, meta.MAX_SETTLEMENTS, settlements+p.Inventory.Settlements, p.ID)
		require.Equal(t, meta.MAX_CITIES, cities+p.Inventory.Cities, p.ID)
		require.Equal(t, meta.MAX_ROADS, len(gs.RoadsOf(p.ID))+p.Inventory.Roads, p.ID)
	}
	require.Equal(t, 25, cards)

	var occupied []board.VertexID
	for v := range gs.Buildings {
		occupied = append(occupied, v)
	}
	for i, a := range occupied {
		for _, b := range occupied[i+1:] {
			d, err := gs.Board.Distance(a, b)
			require.NoError(t, err)
			require.GreaterOrEqual(t, d, 2, "%s and %s", a, b)
		}
	}
}

func TestRandomPlayouts(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 4} {
		players := 2 + int(seed%3)
		final, events := playout(t, seed, players, 400)
		require.False(t, final.Phase.IsSetup())

		t.Run("replay", func(t *testing.T) {
			replayed, err := Replay(events)
			require.NoError(t, err)
			require.Equal(t, final, replayed)
		})

		t.Run("stored round trip", func(t *testing.T) {
			decoded := make([]Event, len(events))
			for i, ev := range events {
				data, err := ev.Encode()
				require.NoError(t, err)
				decoded[i], err = DecodeEvent(string(ev.Type), data, ev.At)
				require.NoError(t, err)
			}
			replayed, err := Replay(decoded)
			require.NoError(t, err)
			require.Equal(t, final.Hash(), replayed.Hash())

			want, err := json.Marshal(final)
			require.NoError(t, err)
			got, err := json.Marshal(replayed)
			require.NoError(t, err)
			require.JSONEq(t, string(want), string(got))
		})
	}
}

func TestReplayPrefix(t *testing.T) {
	gs, events, proc := newTestGame(t, 2, 17)
	gs, more := completeSetup(t, proc, gs)
	events = append(events, more...)

	for i := 1; i <= len(events); i++ {
		_, err := Replay(events[:i])
		require.NoError(t, err)
	}
	replayed, err := Replay(events)
	require.NoError(t, err)
	require.Equal(t, gs.Hash(), replayed.Hash())

	t.Run("unknown events are ignored", func(t *testing.T) {
		ev, err := DecodeEvent("chat_message", []byte(`{"text":"hi"}`), fixedTime)
		require.NoError(t, err)
		next, err := Apply(replayed, ev)
		require.NoError(t, err)
		require.Equal(t, replayed.Hash(), next.Hash())
	})

	t.Run("events need a game", func(t *testing.T) {
		_, err := Replay(events[1:])
		require.Error(t, err)
		_, err = Replay(nil)
		require.Error(t, err)
	})
}

func TestSimulation(t *testing.T) {
	gs, _, _ := newTestGame(t, 2, 23)
	sim := NewSimulation(gs)
	require.Equal(t, "p1", sim.Player())
	require.Equal(t, gs.Hash(), sim.Hash())

	moves := sim.LegalMoves()
	require.NotEmpty(t, moves)
	next := sim.Play(moves[0])
	require.NotEqual(t, sim.Hash(), next.Hash())
	require.Equal(t, gs.Hash(), sim.Hash(), "play leaves the source untouched")

	illegal := Action{Type: EndTurnAction, PlayerID: "p1"}
	require.Same(t, sim, sim.Play(illegal))
	require.Empty(t, sim.Winner())

	var evaluate Evaluator = EvaluateSimulation
	require.InDelta(t, Evaluate(gs, "p1"), evaluate(sim, "p1"), 1e-9)
	require.Zero(t, evaluate(nil, "p1"), "only simulations can be evaluated")
}

func TestEvaluate(t *testing.T) {
	gs, _, _ := newTestGame(t, 2, 29)
	gs = inPhase(gs, "p1", ActionsPhase, 4)
	require.InDelta(t, Evaluate(gs, "p1"), Evaluate(gs, "p2"), 1e-9)

	ahead := gs.Copy()
	place(ahead, "p1", board.VertexID{Hex: board.HexCoord{}, Dir: board.North}, City)
	require.Greater(t, Evaluate(ahead, "p1"), Evaluate(gs, "p1"))
	require.Greater(t, Evaluate(ahead, "p1"), Evaluate(ahead, "p2"))

	ended := ahead.Copy()
	ended.Phase = EndedPhase
	ended.Winner = "p2"
	require.Equal(t, 1.0, Evaluate(ended, "p2"))
	require.Zero(t, Evaluate(ended, "p1"))

	for _, v := range []float64{Evaluate(gs, "p1"), Evaluate(ahead, "p1"), Evaluate(ahead, "p2")} {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}
