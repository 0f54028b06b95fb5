package game

import (
	"fmt"
	"strings"

	"settlers/board"
)

// Resources is a hand of resource cards, one non-negative counter per type.
type Resources struct {
	Wood  int `json:"wood,omitempty"`
	Brick int `json:"brick,omitempty"`
	Ore   int `json:"ore,omitempty"`
	Wheat int `json:"wheat,omitempty"`
	Sheep int `json:"sheep,omitempty"`
}

// Building costs.
var (
	RoadCost       = Resources{Wood: 1, Brick: 1}
	SettlementCost = Resources{Wood: 1, Brick: 1, Sheep: 1, Wheat: 1}
	CityCost       = Resources{Wheat: 2, Ore: 3}
	CardCost       = Resources{Ore: 1, Sheep: 1, Wheat: 1}
)

// Single returns a hand of n cards of one resource.
func Single(r board.Resource, n int) Resources {
	var out Resources
	out.Set(r, n)
	return out
}

// Uniform returns a hand of n cards of every resource.
func Uniform(n int) Resources {
	return Resources{Wood: n, Brick: n, Ore: n, Wheat: n, Sheep: n}
}

func (r Resources) Get(res board.Resource) int {
	switch res {
	case board.Wood:
		return r.Wood
	case board.Brick:
		return r.Brick
	case board.Ore:
		return r.Ore
	case board.Wheat:
		return r.Wheat
	case board.Sheep:
		return r.Sheep
	}
	return 0
}

func (r *Resources) Set(res board.Resource, n int) {
	switch res {
	case board.Wood:
		r.Wood = n
	case board.Brick:
		r.Brick = n
	case board.Ore:
		r.Ore = n
	case board.Wheat:
		r.Wheat = n
	case board.Sheep:
		r.Sheep = n
	}
}

func (r Resources) Add(o Resources) Resources {
	return Resources{
		Wood:  r.Wood + o.Wood,
		Brick: r.Brick + o.Brick,
		Ore:   r.Ore + o.Ore,
		Wheat: r.Wheat + o.Wheat,
		Sheep: r.Sheep + o.Sheep,
	}
}

func (r Resources) Sub(o Resources) Resources {
	return r.Add(o.Scale(-1))
}

func (r Resources) Scale(k int) Resources {
	return Resources{Wood: r.Wood * k, Brick: r.Brick * k, Ore: r.Ore * k, Wheat: r.Wheat * k, Sheep: r.Sheep * k}
}

// Total is the number of cards in the hand.
func (r Resources) Total() int {
	return r.Wood + r.Brick + r.Ore + r.Wheat + r.Sheep
}

// Covers reports whether r holds at least every counter of o.
func (r Resources) Covers(o Resources) bool {
	for _, res := range board.Resources {
		if r.Get(res) < o.Get(res) {
			return false
		}
	}
	return true
}

// Valid reports whether no counter is negative.
func (r Resources) Valid() bool {
	return r.Covers(Resources{})
}

// Missing returns what r lacks to cover o.
func (r Resources) Missing(o Resources) Resources {
	var out Resources
	for _, res := range board.Resources {
		if d := o.Get(res) - r.Get(res); d > 0 {
			out.Set(res, d)
		}
	}
	return out
}

// Cards expands the hand into one entry per card in a fixed resource order.
func (r Resources) Cards() []board.Resource {
	out := make([]board.Resource, 0, r.Total())
	for _, res := range board.Resources {
		for i := 0; i < r.Get(res); i++ {
			out = append(out, res)
		}
	}
	return out
}

func (r Resources) String() string {
	var parts []string
	for _, res := range board.Resources {
		if n := r.Get(res); n != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, res))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
