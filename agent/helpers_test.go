package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"settlers/board"
	"settlers/game"
)

func newGame(t *testing.T, players int, seed uint64) (*game.GameState, *game.Processor) {
	t.Helper()
	proc := game.NewProcessor(zerolog.Nop(), game.WithRand(rand.New(rand.NewSource(seed))))
	seats := make([]game.Seat, players)
	for i := range seats {
		seats[i] = game.Seat{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("AI %d", i+1), IsAI: true}
	}
	gs, _, err := proc.NewGame(game.Setup{GameID: "g1", Seats: seats, Seed: seed})
	require.NoError(t, err)
	return gs, proc
}

// afterSetup places the first legal settlement and road on every setup turn.
func afterSetup(t *testing.T, players int, seed uint64) (*game.GameState, *game.Processor) {
	t.Helper()
	gs, proc := newGame(t, players, seed)
	for gs.Phase.IsSetup() {
		actions := game.LegalActions(gs, gs.Actor())
		require.NotEmpty(t, actions)
		next, _, err := proc.Process(gs, actions[0])
		require.NoError(t, err)
		gs = next
	}
	return gs, proc
}

// inPhase returns a copy with the player to act in the phase.
func inPhase(gs *game.GameState, playerID string, phase game.Phase, turn int) *game.GameState {
	next := gs.Copy()
	next.Phase = phase
	next.CurrentPlayer = playerID
	next.Turn = turn
	return next
}

// setHand moves cards between the bank and a player so the hand equals r.
func setHand(t *testing.T, gs *game.GameState, playerID string, r game.Resources) {
	t.Helper()
	p, ok := gs.Player(playerID)
	require.True(t, ok)
	gs.Bank = gs.Bank.Add(p.Resources).Sub(r)
	require.True(t, gs.Bank.Valid())
	p.Resources = r
}

func profile(t *testing.T, d Difficulty, p Personality) Profile {
	t.Helper()
	pr, err := NewProfile(d, p)
	require.NoError(t, err)
	return pr
}

func hexWithPips(gs *game.GameState, pips int) *board.Hex {
	for _, c := range gs.Board.HexIDs() {
		if h := gs.Board.Hexes[c]; h.Pips() == pips {
			return h
		}
	}
	return nil
}

// spy counts how often a tier is asked to decide.
type spy struct {
	decided int
	result  *Decision
}

func (s *spy) tier(name string) Tier {
	return Tier{
		Name:      name,
		CanHandle: func(Context) bool { return true },
		Decide: func(context.Context, Context) (Decision, bool) {
			s.decided++
			if s.result == nil {
				return Decision{}, false
			}
			return *s.result, true
		},
	}
}

// localGame is an in-memory Submitter.
type localGame struct {
	mu        sync.Mutex
	proc      *game.Processor
	state     *game.GameState
	submitted []game.Action
	fail      func(a game.Action) error
}

func (l *localGame) State(ctx context.Context, _ string) (*game.GameState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, ctx.Err()
}

func (l *localGame) Submit(ctx context.Context, _ string, a game.Action) (*game.GameState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.fail != nil {
		if err := l.fail(a); err != nil {
			return nil, err
		}
	}
	next, _, err := l.proc.Process(l.state, a)
	if err != nil {
		return nil, err
	}
	l.state = next
	l.submitted = append(l.submitted, a)
	return next, nil
}
