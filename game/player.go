package game

import "settlers/meta"

// Inventory counts the pieces a player has not yet placed.
type Inventory struct {
	Settlements int `json:"settlements"`
	Cities      int `json:"cities"`
	Roads       int `json:"roads"`
}

// Score splits victory points into what every player can see and what is
// held as unrevealed victory cards.
type Score struct {
	Public int `json:"public"`
	Hidden int `json:"hidden"`
}

func (s Score) Total() int {
	return s.Public + s.Hidden
}

// Player is one seat in a game. Turn order follows JoinOrder.
type Player struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Color     string            `json:"color"`
	JoinOrder int               `json:"joinOrder"`
	IsAI      bool              `json:"isAI"`
	Resources Resources         `json:"resources"`
	Cards     []DevelopmentCard `json:"cards"`
	Inventory Inventory         `json:"inventory"`
	Score     Score             `json:"score"`

	HasLongestRoad    bool `json:"hasLongestRoad"`
	HasLargestArmy    bool `json:"hasLargestArmy"`
	LongestRoadLength int  `json:"longestRoadLength"`
	KnightsPlayed     int  `json:"knightsPlayed"`
}

func newPlayer(id, name, color string, joinOrder int, isAI bool) Player {
	return Player{
		ID:        id,
		Name:      name,
		Color:     color,
		JoinOrder: joinOrder,
		IsAI:      isAI,
		Inventory: Inventory{
			Settlements: meta.MAX_SETTLEMENTS,
			Cities:      meta.MAX_CITIES,
			Roads:       meta.MAX_ROADS,
		},
	}
}

func (p Player) copy() Player {
	cp := p
	cp.Cards = append([]DevelopmentCard(nil), p.Cards...)
	return cp
}

// Card returns the index of the card with the given id, or -1.
func (p *Player) Card(id string) int {
	for i, c := range p.Cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// PlayableCard returns the first card of the given type playable on turn, or -1.
func (p *Player) PlayableCard(t CardType, turn int) int {
	for i, c := range p.Cards {
		if c.Type == t && c.PlayableOn(turn) {
			return i
		}
	}
	return -1
}

// UnplayedCards returns the cards still in hand, victory cards included.
func (p *Player) UnplayedCards() []DevelopmentCard {
	var out []DevelopmentCard
	for _, c := range p.Cards {
		if !c.Played() {
			out = append(out, c)
		}
	}
	return out
}
