package game

import (
	"fmt"

	"settlers/board"
)

// ActionType represents the type of action a player can perform.
type ActionType string

const (
	RollAction            ActionType = "roll"
	BuildSettlementAction ActionType = "buildSettlement"
	BuildCityAction       ActionType = "buildCity"
	BuildRoadAction       ActionType = "buildRoad"
	BuyCardAction         ActionType = "buyCard"
	PlayCardAction        ActionType = "playCard"
	DiscardAction         ActionType = "discard"
	MoveRobberAction      ActionType = "moveRobber"
	StealAction           ActionType = "steal"
	TradeAction           ActionType = "trade"
	EndTurnAction         ActionType = "endTurn"
)

// Action is a move proposed by a player. Only the fields relevant to Type
// are read.
type Action struct {
	Type     ActionType     `json:"type"`
	PlayerID string         `json:"playerId"`
	Vertex   board.VertexID `json:"vertex,omitzero"`
	Edge     board.EdgeID   `json:"edge,omitzero"`
	Hex      board.HexCoord `json:"hex,omitzero"`
	Target   string         `json:"target,omitempty"` // steal victim

	// playCard selects a card by id, or the first playable card of CardType.
	CardID   string   `json:"cardId,omitempty"`
	CardType CardType `json:"cardType,omitempty"`

	// Resources is the discarded hand or the Year of Plenty pick.
	Resources Resources      `json:"resources,omitzero"`
	Resource  board.Resource `json:"resource,omitempty"` // Monopoly pick

	// Bank trade: Amount units of Receive for ratio*Amount units of Give.
	Give    board.Resource `json:"give,omitempty"`
	Receive board.Resource `json:"receive,omitempty"`
	Amount  int            `json:"amount,omitempty"`
}

// IsStochastic reports whether the outcome depends on chance.
func (a Action) IsStochastic() bool {
	return a.Type == RollAction || a.Type == BuyCardAction || a.Type == StealAction
}

func (a Action) String() string {
	switch a.Type {
	case BuildSettlementAction, BuildCityAction:
		return fmt.Sprintf("%s %s %s", a.PlayerID, a.Type, a.Vertex)
	case BuildRoadAction:
		return fmt.Sprintf("%s %s %s", a.PlayerID, a.Type, a.Edge)
	case MoveRobberAction:
		return fmt.Sprintf("%s %s %s", a.PlayerID, a.Type, a.Hex)
	case StealAction:
		return fmt.Sprintf("%s %s from %s", a.PlayerID, a.Type, a.Target)
	case PlayCardAction:
		return fmt.Sprintf("%s %s %s%s", a.PlayerID, a.Type, a.CardType, a.CardID)
	case DiscardAction:
		return fmt.Sprintf("%s %s %s", a.PlayerID, a.Type, a.Resources)
	case TradeAction:
		return fmt.Sprintf("%s %s %s for %d %s", a.PlayerID, a.Type, a.Give, a.Amount, a.Receive)
	default:
		return fmt.Sprintf("%s %s", a.PlayerID, a.Type)
	}
}
