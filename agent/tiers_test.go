package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"settlers/board"
	"settlers/game"
	"settlers/utils"
)

func TestRegistry(t *testing.T) {
	c := Context{PlayerID: "p1"}
	want := Decision{Action: game.Action{Type: game.EndTurnAction, PlayerID: "p1"}, Confidence: 0.5}

	t.Run("first decision wins", func(t *testing.T) {
		first, second, third := &spy{}, &spy{result: &want}, &spy{result: &want}
		r := NewRegistry(first.tier("a"), second.tier("b"), third.tier("c"))

		got, ok := r.Decide(context.Background(), c)

		require.True(t, ok)
		require.Equal(t, "b", got.Tier)
		require.Equal(t, want.Action, got.Action)
		require.Equal(t, []int{1, 1, 0}, []int{first.decided, second.decided, third.decided})
		require.Equal(t, []string{"a", "b", "c"}, r.Tiers())
	})

	t.Run("tiers that cannot handle are skipped", func(t *testing.T) {
		s := &spy{result: &want}
		skipped := s.tier("skipped")
		skipped.CanHandle = func(Context) bool { return false }
		_, ok := NewRegistry(skipped).Decide(context.Background(), c)
		require.False(t, ok)
		require.Zero(t, s.decided)
	})

	t.Run("cancelled context decides nothing", func(t *testing.T) {
		s := &spy{result: &want}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, ok := NewRegistry(s.tier("a")).Decide(ctx, c)
		require.False(t, ok)
		require.Zero(t, s.decided)
	})
}

func TestProfile(t *testing.T) {
	p, err := NewProfile("", "")
	require.NoError(t, err)
	require.Equal(t, Medium, p.Difficulty)
	require.Equal(t, Balanced, p.Personality)

	for _, personality := range []Personality{Aggressive, Balanced, Defensive, Economic} {
		p := profile(t, Hard, personality)
		require.Positive(t, p.Weights.Production)
	}
	require.Greater(t, profile(t, Easy, Balanced).Level.Noise, profile(t, Hard, Balanced).Level.Noise)
	require.Less(t, profile(t, Easy, Balanced).Level.Episodes, profile(t, Hard, Balanced).Level.Episodes)

	_, err = NewProfile("impossible", Balanced)
	require.Error(t, err)
	_, err = NewProfile(Easy, "reckless")
	require.Error(t, err)
}

func TestImmediate(t *testing.T) {
	base, proc := afterSetup(t, 3, 5)
	hard := profile(t, Hard, Balanced)

	t.Run("winning build short-circuits lower tiers", func(t *testing.T) {
		gs := inPhase(base, "p1", game.ActionsPhase, 5)
		p1, _ := gs.Player("p1")
		for i := 0; i < 7; i++ {
			p1.Cards = append(p1.Cards, game.DevelopmentCard{ID: string(rune('a' + i)), Type: game.VictoryPoint, PurchasedTurn: 1})
		}
		p1.Score.Hidden = 7
		setHand(t, gs, "p1", game.CityCost)

		heuristic, strategic := &spy{}, &spy{}
		r := NewRegistry(Immediate(), heuristic.tier(HeuristicTier), strategic.tier(StrategicTier))
		d, ok := r.Decide(context.Background(), NewContext(gs, "p1", hard))

		require.True(t, ok)
		require.Equal(t, ImmediateTier, d.Tier)
		require.Equal(t, GoalWin, d.StrategicGoal)
		require.GreaterOrEqual(t, d.Confidence, 0.95)
		require.Equal(t, game.BuildCityAction, d.Action.Type)
		require.Zero(t, heuristic.decided)
		require.Zero(t, strategic.decided)

		next, _, err := proc.Process(gs, d.Action)
		require.NoError(t, err)
		require.Equal(t, "p1", next.Winner)
	})

	t.Run("mandatory discard", func(t *testing.T) {
		gs := inPhase(base, "p1", game.DiscardPhase, 5)
		setHand(t, gs, "p1", game.Resources{Wood: 5, Brick: 1, Ore: 3})
		gs.PendingDiscards = map[string]int{"p1": 2}

		d, ok := Immediate().Decide(context.Background(), NewContext(gs, "p1", hard))
		require.True(t, ok)
		require.Equal(t, GoalDiscard, d.StrategicGoal)
		require.Equal(t, 2, d.Action.Resources.Total())
		require.NoError(t, game.Validate(gs, d.Action))
	})

	t.Run("city upgrade", func(t *testing.T) {
		gs := inPhase(base, "p1", game.ActionsPhase, 5)
		setHand(t, gs, "p1", game.CityCost)

		d, ok := Immediate().Decide(context.Background(), NewContext(gs, "p1", hard))
		require.True(t, ok)
		require.Equal(t, GoalUpgrade, d.StrategicGoal)
		require.Equal(t, game.BuildCityAction, d.Action.Type)
		require.GreaterOrEqual(t, d.Confidence, 0.8)
	})

	t.Run("knight displaces robber from own hex", func(t *testing.T) {
		gs := inPhase(base, "p1", game.RollPhase, 5)
		rich := hexWithPips(gs, 5)
		require.NotNil(t, rich)
		gs.Buildings[board.Corners(rich.Coord)[0]] = game.Building{Type: game.Settlement, Owner: "p1"}
		gs.Robber = rich.Coord
		p1, _ := gs.Player("p1")
		p1.Cards = append(p1.Cards, game.DevelopmentCard{ID: "k1", Type: game.Knight, PurchasedTurn: 2})

		d, ok := Immediate().Decide(context.Background(), NewContext(gs, "p1", hard))
		require.True(t, ok)
		require.Equal(t, GoalDefend, d.StrategicGoal)
		require.Equal(t, game.Knight, d.Action.CardType)
		require.GreaterOrEqual(t, d.Confidence, 0.8)
	})

	t.Run("stale cards late in the game", func(t *testing.T) {
		gs := inPhase(base, "p1", game.ActionsPhase, lateTurn+1)
		setHand(t, gs, "p1", game.Resources{})
		setHand(t, gs, "p2", game.Resources{Wheat: 3, Wood: 1})
		p1, _ := gs.Player("p1")
		p1.Cards = append(p1.Cards, game.DevelopmentCard{ID: "m1", Type: game.Monopoly, PurchasedTurn: 3})

		d, ok := Immediate().Decide(context.Background(), NewContext(gs, "p1", hard))
		require.True(t, ok)
		require.Equal(t, GoalSpendCards, d.StrategicGoal)
		require.Equal(t, board.Wheat, d.Action.Resource)
		require.GreaterOrEqual(t, d.Confidence, 0.8)

		early := inPhase(gs, "p1", game.ActionsPhase, 5)
		_, ok = Immediate().Decide(context.Background(), NewContext(early, "p1", hard))
		require.False(t, ok, "cards are kept early on")
	})

	t.Run("not our move", func(t *testing.T) {
		gs := inPhase(base, "p2", game.ActionsPhase, 5)
		require.False(t, Immediate().CanHandle(NewContext(gs, "p1", hard)))
		setup, _ := newGame(t, 2, 1)
		require.False(t, Immediate().CanHandle(NewContext(setup, "p1", hard)))
	})
}

func TestHeuristic(t *testing.T) {
	hard := profile(t, Hard, Balanced)
	tier := Heuristic(1)

	t.Run("setup takes the best scoring site", func(t *testing.T) {
		gs, _ := newGame(t, 3, 8)
		c := NewContext(gs, "p1", hard)
		d, ok := tier.Decide(context.Background(), c)
		require.True(t, ok)
		require.Equal(t, game.BuildSettlementAction, d.Action.Type)
		require.Equal(t, GoalSetup, d.StrategicGoal)

		pips := boardPips(gs.Board)
		best := 0.0
		for _, a := range c.Of(game.BuildSettlementAction) {
			best = max(best, scoreVertex(gs, "p1", a.Vertex, hard.Weights, pips))
		}
		require.InDelta(t, best, scoreVertex(gs, "p1", d.Action.Vertex, hard.Weights, pips), 1e-9)
	})

	t.Run("robber avoids own hexes", func(t *testing.T) {
		base, _ := afterSetup(t, 3, 9)
		gs := inPhase(base, "p1", game.MoveRobberPhase, 4)
		d, ok := tier.Decide(context.Background(), NewContext(gs, "p1", hard))
		require.True(t, ok)
		require.Equal(t, game.MoveRobberAction, d.Action.Type)
		moved := gs.Copy()
		moved.Robber = d.Action.Hex
		require.Zero(t, robberYield(moved, "p1"))
	})

	t.Run("steal prefers the fuller hand", func(t *testing.T) {
		gs, _ := afterSetup(t, 3, 9)
		setHand(t, gs, "p2", game.Resources{Wood: 1})
		setHand(t, gs, "p3", game.Resources{Wood: 3, Ore: 3})
		c := Context{State: gs, PlayerID: "p1", Profile: hard, Legal: []game.Action{
			{Type: game.StealAction, PlayerID: "p1", Target: "p2"},
			{Type: game.StealAction, PlayerID: "p1", Target: "p3"},
		}}
		candidates := stealCandidates(c)
		best := utils.ArgMax(candidates, func(cd candidate) float64 { return cd.score })
		require.Equal(t, "p3", candidates[best].action.Target)
	})

	t.Run("trade that completes a recipe", func(t *testing.T) {
		base, _ := afterSetup(t, 2, 12)
		gs := inPhase(base, "p1", game.ActionsPhase, 4)
		setHand(t, gs, "p1", game.Resources{Wood: 5, Brick: 1, Sheep: 1})

		var trades []game.Action
		for _, cd := range turnCandidates(NewContext(gs, "p1", hard)) {
			if cd.action.Type == game.TradeAction {
				trades = append(trades, cd.action)
			}
		}
		require.NotEmpty(t, trades)
		for _, a := range trades {
			require.Equal(t, board.Wheat, a.Receive)
		}
	})

	t.Run("nothing to do leaves the turn to later tiers", func(t *testing.T) {
		base, _ := afterSetup(t, 2, 12)
		gs := inPhase(base, "p1", game.ActionsPhase, 4)
		setHand(t, gs, "p1", game.Resources{})
		_, ok := tier.Decide(context.Background(), NewContext(gs, "p1", hard))
		require.False(t, ok)
	})

	t.Run("roll", func(t *testing.T) {
		base, _ := afterSetup(t, 2, 12)
		d, ok := tier.Decide(context.Background(), NewContext(base, base.CurrentPlayer, hard))
		require.True(t, ok)
		require.Equal(t, game.RollAction, d.Action.Type)
	})
}

func TestScoring(t *testing.T) {
	gs, _ := newGame(t, 2, 3)
	pips := boardPips(gs.Board)
	require.Equal(t, 58, utils.Sum([]int{pips[board.Wood], pips[board.Brick], pips[board.Ore], pips[board.Wheat], pips[board.Sheep]}))

	require.InDelta(t, 1.4142, scarcity(map[board.Resource]int{board.Wood: 10, board.Ore: 5}, board.Ore), 1e-4)
	require.Equal(t, 1.0, scarcity(map[board.Resource]int{board.Wood: 10, board.Ore: 5}, board.Wood))

	produced := map[board.Resource]int{board.Wheat: 5}
	require.Equal(t, 1.0, recipeGain(produced, map[board.Resource]bool{board.Ore: true}))
	require.Equal(t, 0.5, recipeGain(map[board.Resource]int{}, map[board.Resource]bool{board.Ore: true}))
	require.Zero(t, recipeGain(produced, nil))

	require.Equal(t, 1.0, handRecipe(game.SettlementCost))
	require.Equal(t, 0.5, handRecipe(game.Resources{Wheat: 2, Ore: 2}))
	require.Equal(t, 2.0, handRecipe(game.SettlementCost.Add(game.CityCost)))

	t.Run("three hexes beat two", func(t *testing.T) {
		w := Weights{HexCount: 1}
		var inland, coast board.VertexID
		for _, v := range gs.Board.VertexIDs() {
			switch len(gs.Board.ProducingHexes(v)) {
			case 3:
				inland = v
			case 2:
				coast = v
			}
		}
		require.Greater(t, scoreVertex(gs, "p1", inland, w, pips), scoreVertex(gs, "p1", coast, w, pips))
	})
}

func TestStrategic(t *testing.T) {
	base, _ := afterSetup(t, 2, 21)
	gs := inPhase(base, "p1", game.ActionsPhase, 4)
	setHand(t, gs, "p1", game.Resources{Wood: 2, Brick: 2})
	easy := profile(t, Easy, Balanced)

	c := NewContext(gs, "p1", easy)
	require.True(t, Strategic().CanHandle(c))
	d, ok := Strategic().Decide(context.Background(), c)
	require.True(t, ok)
	require.Contains(t, c.Legal, d.Action)
	require.NoError(t, game.Validate(gs, d.Action))
	require.Equal(t, easy.Level.Episodes, d.Search.Episodes)
	require.Positive(t, d.Confidence)

	only := NewContext(gs, "p1", easy)
	only.Legal = only.Of(game.EndTurnAction)
	require.False(t, Strategic().CanHandle(only), "a single option needs no search")
}
