package game

import (
	"settlers/board"
)

// LegalActions enumerates the actions the player may take in the given
// state. Discards are limited to a handful of representative partitions.
func LegalActions(gs *GameState, playerID string) []Action {
	if gs == nil || gs.Ended() {
		return nil
	}
	p, ok := gs.Player(playerID)
	if !ok {
		return nil
	}

	if gs.Phase == DiscardPhase {
		var actions []Action
		for _, r := range DiscardOptions(p.Resources, gs.PendingDiscards[playerID]) {
			actions = append(actions, Action{Type: DiscardAction, PlayerID: playerID, Resources: r})
		}
		return actions
	}
	if playerID != gs.CurrentPlayer {
		return nil
	}

	var actions []Action
	switch gs.Phase {
	case Setup1Phase, Setup2Phase:
		if gs.SetupVertex == nil {
			for _, v := range gs.settlementSites(playerID) {
				actions = append(actions, Action{Type: BuildSettlementAction, PlayerID: playerID, Vertex: v})
			}
		} else {
			for _, e := range gs.roadSites(playerID) {
				actions = append(actions, Action{Type: BuildRoadAction, PlayerID: playerID, Edge: e})
			}
		}
	case RollPhase:
		actions = append(actions, Action{Type: RollAction, PlayerID: playerID})
		if !gs.CardPlayed && p.PlayableCard(Knight, gs.Turn) >= 0 {
			actions = append(actions, Action{Type: PlayCardAction, PlayerID: playerID, CardType: Knight})
		}
	case MoveRobberPhase:
		for _, c := range gs.Board.HexIDs() {
			if c != gs.Robber && gs.Board.Hexes[c].Terrain.IsLand() {
				actions = append(actions, Action{Type: MoveRobberAction, PlayerID: playerID, Hex: c})
			}
		}
	case StealPhase:
		for _, id := range gs.StealCandidates() {
			actions = append(actions, Action{Type: StealAction, PlayerID: playerID, Target: id})
		}
	case ActionsPhase:
		actions = gs.turnActions(p)
	}
	return actions
}

func (gs *GameState) turnActions(p *Player) []Action {
	id := p.ID
	var actions []Action

	if p.Inventory.Cities > 0 && p.Resources.Covers(CityCost) {
		for _, v := range gs.BuildingsOf(id) {
			if gs.Buildings[v].Type == Settlement {
				actions = append(actions, Action{Type: BuildCityAction, PlayerID: id, Vertex: v})
			}
		}
	}
	if p.Inventory.Settlements > 0 && p.Resources.Covers(SettlementCost) {
		for _, v := range gs.settlementSites(id) {
			actions = append(actions, Action{Type: BuildSettlementAction, PlayerID: id, Vertex: v})
		}
	}
	if p.Inventory.Roads > 0 && (gs.FreeRoads > 0 || p.Resources.Covers(RoadCost)) {
		for _, e := range gs.roadSites(id) {
			actions = append(actions, Action{Type: BuildRoadAction, PlayerID: id, Edge: e})
		}
	}
	if len(gs.Deck) > 0 && p.Resources.Covers(CardCost) {
		actions = append(actions, Action{Type: BuyCardAction, PlayerID: id})
	}
	if !gs.CardPlayed {
		actions = append(actions, gs.cardActions(p)...)
	}
	for _, give := range board.Resources {
		ratio := gs.TradeRatio(id, give)
		if p.Resources.Get(give) < ratio {
			continue
		}
		for _, receive := range board.Resources {
			if receive != give && gs.Bank.Get(receive) > 0 {
				actions = append(actions, Action{Type: TradeAction, PlayerID: id, Give: give, Receive: receive, Amount: 1})
			}
		}
	}
	if !gs.freeRoadAvailable(id) {
		actions = append(actions, Action{Type: EndTurnAction, PlayerID: id})
	}
	return actions
}

func (gs *GameState) cardActions(p *Player) []Action {
	var actions []Action
	play := func(t CardType) Action {
		return Action{Type: PlayCardAction, PlayerID: p.ID, CardType: t}
	}
	if p.PlayableCard(Knight, gs.Turn) >= 0 {
		actions = append(actions, play(Knight))
	}
	if p.PlayableCard(RoadBuilding, gs.Turn) >= 0 && p.Inventory.Roads > 0 {
		actions = append(actions, play(RoadBuilding))
	}
	if p.PlayableCard(YearOfPlenty, gs.Turn) >= 0 {
		for i, a := range board.Resources {
			for _, b := range board.Resources[i:] {
				pick := Single(a, 1).Add(Single(b, 1))
				if gs.Bank.Covers(pick) {
					action := play(YearOfPlenty)
					action.Resources = pick
					actions = append(actions, action)
				}
			}
		}
	}
	if p.PlayableCard(Monopoly, gs.Turn) >= 0 {
		for _, res := range board.Resources {
			action := play(Monopoly)
			action.Resource = res
			actions = append(actions, action)
		}
	}
	return actions
}

// DiscardOptions returns distinct ways to discard owed cards from a hand.
// The first option always sheds the most plentiful resources; the others
// protect one resource each for as long as possible.
func DiscardOptions(hand Resources, owed int) []Resources {
	if owed <= 0 || owed > hand.Total() {
		return nil
	}
	var options []Resources
	seen := make(map[Resources]bool)
	add := func(r Resources) {
		if !seen[r] {
			seen[r] = true
			options = append(options, r)
		}
	}
	add(shed(hand, owed, ""))
	for _, res := range board.Resources {
		if hand.Get(res) > 0 {
			add(shed(hand, owed, res))
		}
	}
	return options
}

// shed removes cards one at a time from the largest pile, leaving the
// protected resource for last.
func shed(hand Resources, owed int, protect board.Resource) Resources {
	var discard Resources
	left := hand
	for i := 0; i < owed; i++ {
		pick := board.Resource("")
		for _, res := range board.Resources {
			if left.Get(res) == 0 {
				continue
			}
			if pick == "" || (pick == protect && res != protect) ||
				(res != protect && left.Get(res) > left.Get(pick)) {
				pick = res
			}
		}
		left.Set(pick, left.Get(pick)-1)
		discard.Set(pick, discard.Get(pick)+1)
	}
	return discard
}
