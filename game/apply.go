package game

import (
	"sort"

	"settlers/apperr"
	"settlers/board"
	"settlers/meta"
)

// Apply returns the state that follows ev. The input state is not modified.
// Apply trusts that ev was produced by a Processor for this state, so it
// never consults a random source and replaying the same events always
// yields the same state. Unknown event types leave the state unchanged.
func Apply(gs *GameState, ev Event) (*GameState, error) {
	if created, ok := ev.Payload.(*GameCreatedPayload); ok {
		b, err := board.New(created.Layout)
		if err != nil {
			return nil, err
		}
		return NewGameState(created.GameID, b, created.Deck, ev.At), nil
	}
	if gs == nil {
		return nil, apperr.Validation("%s before %s", ev.Type, GameCreated)
	}

	next := gs.Copy()
	var err error
	switch p := ev.Payload.(type) {
	case *PlayerJoinedPayload:
		next.applyPlayerJoined(p)
	case *GameStartedPayload:
		next.applyGameStarted(p)
	case *DiceRolledPayload:
		next.applyDiceRolled(p)
	case *SettlementBuiltPayload:
		err = next.applySettlementBuilt(p)
	case *CityBuiltPayload:
		err = next.applyCityBuilt(p)
	case *RoadBuiltPayload:
		err = next.applyRoadBuilt(p)
	case *CardBoughtPayload:
		err = next.applyCardBought(p)
	case *CardPlayedPayload:
		err = next.applyCardPlayed(p)
	case *ResourcesDiscardedPayload:
		err = next.applyResourcesDiscarded(p)
	case *RobberMovedPayload:
		next.applyRobberMoved(p)
	case *ResourceStolenPayload:
		err = next.applyResourceStolen(p)
	case *BankTradedPayload:
		err = next.applyBankTraded(p)
	case *TurnEndedPayload:
		next.applyTurnEnded(p)
	default:
		return gs, nil
	}
	if err != nil {
		return nil, err
	}
	if !ev.At.IsZero() {
		next.UpdatedAt = ev.At
	}
	return next, nil
}

func (gs *GameState) mustPlayer(id string) (*Player, error) {
	p, ok := gs.Player(id)
	if !ok {
		return nil, apperr.NotFound("player %s", id)
	}
	return p, nil
}

// pay moves cards from a player to the bank.
func (gs *GameState) pay(p *Player, cost Resources) {
	p.Resources = p.Resources.Sub(cost)
	gs.Bank = gs.Bank.Add(cost)
}

// grant moves cards from the bank to a player.
func (gs *GameState) grant(p *Player, r Resources) {
	p.Resources = p.Resources.Add(r)
	gs.Bank = gs.Bank.Sub(r)
}

func (gs *GameState) applyPlayerJoined(p *PlayerJoinedPayload) {
	gs.Players = append(gs.Players, newPlayer(p.PlayerID, p.Name, p.Color, p.JoinOrder, p.IsAI))
	sort.SliceStable(gs.Players, func(i, j int) bool { return gs.Players[i].JoinOrder < gs.Players[j].JoinOrder })
}

func (gs *GameState) applyGameStarted(p *GameStartedPayload) {
	gs.Phase = Setup1Phase
	gs.Turn = 0
	gs.CurrentPlayer = p.FirstPlayer
	if _, ok := gs.Player(p.FirstPlayer); !ok && len(gs.Players) > 0 {
		gs.CurrentPlayer = gs.TurnOrder()[0]
	}
}

func (gs *GameState) applyDiceRolled(p *DiceRolledPayload) {
	roll := Roll{Dice: p.Dice}
	gs.LastRoll = &roll
	if roll.Sum() != 7 {
		gs.produce(roll.Sum())
		gs.Phase = ActionsPhase
		return
	}

	gs.ResumePhase = ActionsPhase
	gs.PendingDiscards = nil
	for _, player := range gs.Players {
		if total := player.Resources.Total(); total > meta.MAX_HAND {
			if gs.PendingDiscards == nil {
				gs.PendingDiscards = make(map[string]int)
			}
			gs.PendingDiscards[player.ID] = total - meta.MAX_HAND
		}
	}
	if len(gs.PendingDiscards) > 0 {
		gs.Phase = DiscardPhase
	} else {
		gs.Phase = MoveRobberPhase
	}
}

// produce hands out resources for a dice sum. When the bank cannot cover
// everyone owed a resource, nobody receives it unless a single player is
// owed, who then takes what is left.
func (gs *GameState) produce(sum int) {
	owed := make(map[string]Resources)
	for _, c := range gs.Board.HexIDs() {
		h := gs.Board.Hexes[c]
		res, ok := h.Resource()
		if !ok || h.Number != sum || c == gs.Robber {
			continue
		}
		for _, v := range gs.Board.VerticesOf(c) {
			if b, ok := gs.Buildings[v]; ok {
				r := owed[b.Owner]
				r.Set(res, r.Get(res)+b.Points())
				owed[b.Owner] = r
			}
		}
	}

	order := gs.TurnOrder()
	for _, res := range board.Resources {
		total := 0
		var recipients []string
		for _, id := range order {
			if n := owed[id].Get(res); n > 0 {
				total += n
				recipients = append(recipients, id)
			}
		}
		if total == 0 {
			continue
		}
		available := gs.Bank.Get(res)
		switch {
		case total <= available:
			for _, id := range recipients {
				p, _ := gs.Player(id)
				gs.grant(p, Single(res, owed[id].Get(res)))
			}
		case len(recipients) == 1 && available > 0:
			p, _ := gs.Player(recipients[0])
			gs.grant(p, Single(res, available))
		}
	}
}

func (gs *GameState) applySettlementBuilt(e *SettlementBuiltPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	gs.Buildings[e.Vertex] = Building{Type: Settlement, Owner: p.ID}
	p.Inventory.Settlements--

	if gs.Phase.IsSetup() {
		v := e.Vertex
		gs.SetupVertex = &v
		if gs.Phase == Setup2Phase {
			for _, h := range gs.Board.ProducingHexes(e.Vertex) {
				res, _ := h.Resource()
				if gs.Bank.Get(res) > 0 {
					gs.grant(p, Single(res, 1))
				}
			}
		}
	} else {
		gs.pay(p, SettlementCost)
	}

	// A settlement can cut an opponent's road.
	gs.refreshLongestRoad()
	gs.refreshScores()
	gs.checkWinner(p.ID)
	return nil
}

func (gs *GameState) applyCityBuilt(e *CityBuiltPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	gs.Buildings[e.Vertex] = Building{Type: City, Owner: p.ID}
	p.Inventory.Settlements++
	p.Inventory.Cities--
	gs.pay(p, CityCost)
	gs.refreshScores()
	gs.checkWinner(p.ID)
	return nil
}

func (gs *GameState) applyRoadBuilt(e *RoadBuiltPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	gs.Roads[e.Edge] = p.ID
	p.Inventory.Roads--

	switch {
	case gs.Phase.IsSetup():
		gs.SetupVertex = nil
		gs.advanceSetup()
	case gs.FreeRoads > 0:
		gs.FreeRoads--
		if !gs.freeRoadAvailable(p.ID) {
			gs.FreeRoads = 0
		}
	default:
		gs.pay(p, RoadCost)
	}

	gs.refreshLongestRoad()
	gs.refreshScores()
	gs.checkWinner(p.ID)
	return nil
}

// advanceSetup moves placement forward through the turn order in setup1 and
// back through it in setup2; the last player places twice in a row.
func (gs *GameState) advanceSetup() {
	order := gs.TurnOrder()
	first, last := order[0], order[len(order)-1]
	switch gs.Phase {
	case Setup1Phase:
		if gs.CurrentPlayer == last {
			gs.Phase = Setup2Phase
			return
		}
		gs.CurrentPlayer = gs.NextPlayer(gs.CurrentPlayer)
	case Setup2Phase:
		if gs.CurrentPlayer == first {
			gs.Phase = RollPhase
			gs.Turn = 1
			return
		}
		gs.CurrentPlayer = gs.previousPlayer(gs.CurrentPlayer)
	}
}

func (gs *GameState) applyCardBought(e *CardBoughtPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range gs.Deck {
		if c.ID == e.CardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFound("card %s in deck", e.CardID)
	}
	card := gs.Deck[idx]
	gs.Deck = append(gs.Deck[:idx], gs.Deck[idx+1:]...)
	card.PurchasedTurn = gs.Turn
	p.Cards = append(p.Cards, card)
	gs.pay(p, CardCost)
	gs.refreshScores()
	gs.checkWinner(p.ID)
	return nil
}

func (gs *GameState) applyCardPlayed(e *CardPlayedPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	idx := p.Card(e.CardID)
	if idx < 0 {
		return apperr.NotFound("card %s of %s", e.CardID, p.ID)
	}
	p.Cards[idx].PlayedTurn = gs.Turn
	gs.DiscardPile = append(gs.DiscardPile, p.Cards[idx])
	gs.CardPlayed = true

	switch p.Cards[idx].Type {
	case Knight:
		p.KnightsPlayed++
		gs.refreshLargestArmy()
		gs.ResumePhase = gs.Phase
		gs.Phase = MoveRobberPhase
	case RoadBuilding:
		gs.FreeRoads = min(2, p.Inventory.Roads)
		if !gs.freeRoadAvailable(p.ID) {
			gs.FreeRoads = 0
		}
	case YearOfPlenty:
		gs.grant(p, e.Resources)
	case Monopoly:
		for i := range gs.Players {
			victim := &gs.Players[i]
			if victim.ID == p.ID {
				continue
			}
			n := victim.Resources.Get(e.Resource)
			victim.Resources.Set(e.Resource, 0)
			p.Resources.Set(e.Resource, p.Resources.Get(e.Resource)+n)
		}
	}

	gs.refreshScores()
	gs.checkWinner(p.ID)
	return nil
}

func (gs *GameState) applyResourcesDiscarded(e *ResourcesDiscardedPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	gs.pay(p, e.Resources)
	delete(gs.PendingDiscards, p.ID)
	if len(gs.PendingDiscards) == 0 {
		gs.PendingDiscards = nil
		gs.Phase = MoveRobberPhase
	}
	return nil
}

func (gs *GameState) applyRobberMoved(e *RobberMovedPayload) {
	gs.Robber = e.Hex
	if len(gs.StealCandidates()) > 0 {
		gs.Phase = StealPhase
		return
	}
	gs.resume()
}

func (gs *GameState) applyResourceStolen(e *ResourceStolenPayload) error {
	thief, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	victim, err := gs.mustPlayer(e.Victim)
	if err != nil {
		return err
	}
	victim.Resources.Set(e.Resource, victim.Resources.Get(e.Resource)-1)
	thief.Resources.Set(e.Resource, thief.Resources.Get(e.Resource)+1)
	gs.resume()
	return nil
}

// resume returns to the phase that was interrupted by the robber.
func (gs *GameState) resume() {
	gs.Phase = gs.ResumePhase
	if gs.Phase == "" {
		gs.Phase = ActionsPhase
	}
	gs.ResumePhase = ""
}

func (gs *GameState) applyBankTraded(e *BankTradedPayload) error {
	p, err := gs.mustPlayer(e.PlayerID)
	if err != nil {
		return err
	}
	gs.pay(p, e.Give)
	gs.grant(p, e.Receive)
	return nil
}

func (gs *GameState) applyTurnEnded(e *TurnEndedPayload) {
	gs.Turn++
	gs.CurrentPlayer = e.NextPlayer
	if _, ok := gs.Player(e.NextPlayer); !ok {
		gs.CurrentPlayer = gs.NextPlayer(e.PlayerID)
	}
	gs.Phase = RollPhase
	gs.LastRoll = nil
	gs.CardPlayed = false
	gs.FreeRoads = 0
}
