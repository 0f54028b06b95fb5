package game

import (
	"fmt"

	"golang.org/x/exp/rand"

	"settlers/meta"
)

type CardType string

const (
	Knight       CardType = "knight"
	VictoryPoint CardType = "victoryPoint"
	RoadBuilding CardType = "roadBuilding"
	YearOfPlenty CardType = "yearOfPlenty"
	Monopoly     CardType = "monopoly"
)

// DevelopmentCard is stamped with the turn it was bought and, once played,
// the turn it was played. PlayedTurn is 0 while the card is in hand.
type DevelopmentCard struct {
	ID            string   `json:"id"`
	Type          CardType `json:"type"`
	PurchasedTurn int      `json:"purchasedTurn,omitempty"`
	PlayedTurn    int      `json:"playedTurn,omitempty"`
}

func (c DevelopmentCard) Played() bool {
	return c.PlayedTurn > 0
}

// PlayableOn reports whether the card may be played during the given turn.
// Victory cards are never played; they score while held.
func (c DevelopmentCard) PlayableOn(turn int) bool {
	return c.Type != VictoryPoint && !c.Played() && c.PurchasedTurn < turn
}

// NewDeck returns the 25 development cards in shuffled order.
func NewDeck(rng *rand.Rand) []DevelopmentCard {
	counts := []struct {
		t CardType
		n int
	}{
		{Knight, meta.KNIGHT_CARDS},
		{VictoryPoint, meta.VICTORY_CARDS},
		{RoadBuilding, meta.ROAD_BUILDING_CARDS},
		{YearOfPlenty, meta.YEAR_OF_PLENTY},
		{Monopoly, meta.MONOPOLY_CARDS},
	}
	var deck []DevelopmentCard
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			deck = append(deck, DevelopmentCard{Type: c.t})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	for i := range deck {
		deck[i].ID = fmt.Sprintf("dc-%02d", i+1)
	}
	return deck
}
