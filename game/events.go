package game

import (
	"encoding/json"
	"fmt"
	"time"

	"settlers/apperr"
	"settlers/board"
)

// EventType tags a game event.
type EventType string

const (
	GameCreated        EventType = "game_created"
	PlayerJoined       EventType = "player_joined"
	GameStarted        EventType = "game_started"
	DiceRolled         EventType = "dice_rolled"
	SettlementBuilt    EventType = "settlement_built"
	CityBuilt          EventType = "city_built"
	RoadBuilt          EventType = "road_built"
	CardBought         EventType = "development_card_bought"
	CardPlayed         EventType = "development_card_played"
	ResourcesDiscarded EventType = "resources_discarded"
	RobberMoved        EventType = "robber_moved"
	ResourceStolen     EventType = "resource_stolen"
	BankTraded         EventType = "bank_traded"
	TurnEnded          EventType = "turn_ended"
)

// Event is a rules-engine event before it is stored. Payload is one of the
// *Payload types below; every random outcome is recorded in it so applying
// an event never consults a random source.
type Event struct {
	Type    EventType
	Payload any
	At      time.Time
}

type GameCreatedPayload struct {
	GameID string            `json:"gameId"`
	Layout board.Layout      `json:"layout"`
	Deck   []DevelopmentCard `json:"deck"`
}

type PlayerJoinedPayload struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	JoinOrder int    `json:"joinOrder"`
	IsAI      bool   `json:"isAI"`
}

type GameStartedPayload struct {
	FirstPlayer string `json:"firstPlayer"`
}

type DiceRolledPayload struct {
	PlayerID string `json:"playerId"`
	Dice     [2]int `json:"dice"`
}

type SettlementBuiltPayload struct {
	PlayerID string         `json:"playerId"`
	Vertex   board.VertexID `json:"vertex"`
}

type CityBuiltPayload struct {
	PlayerID string         `json:"playerId"`
	Vertex   board.VertexID `json:"vertex"`
}

type RoadBuiltPayload struct {
	PlayerID string       `json:"playerId"`
	Edge     board.EdgeID `json:"edge"`
	Free     bool         `json:"free,omitempty"`
}

type CardBoughtPayload struct {
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
}

type CardPlayedPayload struct {
	PlayerID  string         `json:"playerId"`
	CardID    string         `json:"cardId"`
	CardType  CardType       `json:"cardType"`
	Resources Resources      `json:"resources,omitzero"`
	Resource  board.Resource `json:"resource,omitempty"`
}

type ResourcesDiscardedPayload struct {
	PlayerID  string    `json:"playerId"`
	Resources Resources `json:"resources"`
}

type RobberMovedPayload struct {
	PlayerID string         `json:"playerId"`
	Hex      board.HexCoord `json:"hex"`
}

type ResourceStolenPayload struct {
	PlayerID string         `json:"playerId"`
	Victim   string         `json:"victim"`
	Resource board.Resource `json:"resource"`
}

type BankTradedPayload struct {
	PlayerID string    `json:"playerId"`
	Give     Resources `json:"give"`
	Receive  Resources `json:"receive"`
}

type TurnEndedPayload struct {
	PlayerID   string `json:"playerId"`
	NextPlayer string `json:"nextPlayer"`
}

func newPayload(t EventType) (any, bool) {
	switch t {
	case GameCreated:
		return &GameCreatedPayload{}, true
	case PlayerJoined:
		return &PlayerJoinedPayload{}, true
	case GameStarted:
		return &GameStartedPayload{}, true
	case DiceRolled:
		return &DiceRolledPayload{}, true
	case SettlementBuilt:
		return &SettlementBuiltPayload{}, true
	case CityBuilt:
		return &CityBuiltPayload{}, true
	case RoadBuilt:
		return &RoadBuiltPayload{}, true
	case CardBought:
		return &CardBoughtPayload{}, true
	case CardPlayed:
		return &CardPlayedPayload{}, true
	case ResourcesDiscarded:
		return &ResourcesDiscardedPayload{}, true
	case RobberMoved:
		return &RobberMovedPayload{}, true
	case ResourceStolen:
		return &ResourceStolenPayload{}, true
	case BankTraded:
		return &BankTradedPayload{}, true
	case TurnEnded:
		return &TurnEndedPayload{}, true
	}
	return nil, false
}

// DecodeEvent rebuilds a typed event from its stored form. Unknown types
// decode to an event with a nil payload, which Apply ignores.
func DecodeEvent(t string, data []byte, at time.Time) (Event, error) {
	payload, ok := newPayload(EventType(t))
	if !ok {
		return Event{Type: EventType(t), At: at}, nil
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return Event{}, apperr.System(fmt.Sprintf("decode %s payload", t), err)
	}
	return Event{Type: EventType(t), Payload: payload, At: at}, nil
}

// Encode serialises the payload for storage.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, apperr.System(fmt.Sprintf("encode %s payload", e.Type), err)
	}
	return data, nil
}
