package agent

import (
	"settlers/apperr"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type Personality string

const (
	Aggressive Personality = "aggressive"
	Balanced   Personality = "balanced"
	Defensive  Personality = "defensive"
	Economic   Personality = "economic"
)

// Weights scale the components of the heuristic scores.
type Weights struct {
	Production  float64 // per pip of a candidate vertex
	HexCount    float64 // per producing hex beyond the first
	Scarcity    float64 // 0 ignores scarcity, 1 applies the full multiplier
	Diversity   float64 // per resource the player does not produce yet
	Recipe      float64 // completing a settlement or city recipe
	Port        float64
	Expansion   float64 // roads toward new sites
	Development float64 // buying cards
	Army        float64 // knights toward largest army
	Blocking    float64 // robber pressure on the leader rather than the richest hex
	Trade       float64
}

var personalities = map[Personality]Weights{
	Aggressive: {Production: 1, HexCount: 0.5, Scarcity: 0.5, Diversity: 1, Recipe: 2, Port: 0.5, Expansion: 1.5, Development: 1.5, Army: 2, Blocking: 2, Trade: 1},
	Balanced:   {Production: 1, HexCount: 1, Scarcity: 1, Diversity: 2, Recipe: 2, Port: 1, Expansion: 1, Development: 1, Army: 1, Blocking: 1, Trade: 1},
	Defensive:  {Production: 1, HexCount: 1.5, Scarcity: 1, Diversity: 3, Recipe: 1.5, Port: 1, Expansion: 0.5, Development: 1.5, Army: 1.5, Blocking: 0.5, Trade: 0.5},
	Economic:   {Production: 1.5, HexCount: 1, Scarcity: 1.5, Diversity: 2, Recipe: 3, Port: 2, Expansion: 1, Development: 0.5, Army: 0.5, Blocking: 0.5, Trade: 2},
}

// Level sets how much effort a difficulty spends.
type Level struct {
	Noise      float64 // relative random perturbation of heuristic scores
	Episodes   int     // search episodes per strategic decision
	Cutoff     int     // rollout depth
	Goroutines int
}

var levels = map[Difficulty]Level{
	Easy:   {Noise: 0.35, Episodes: 40, Cutoff: 20, Goroutines: 1},
	Medium: {Noise: 0.1, Episodes: 150, Cutoff: 40, Goroutines: 2},
	Hard:   {Noise: 0, Episodes: 500, Cutoff: 80, Goroutines: 4},
}

// Profile is the fixed configuration of one AI seat.
type Profile struct {
	Difficulty  Difficulty
	Personality Personality
	Weights     Weights
	Level       Level
}

func NewProfile(d Difficulty, p Personality) (Profile, error) {
	if d == "" {
		d = Medium
	}
	if p == "" {
		p = Balanced
	}
	level, ok := levels[d]
	if !ok {
		return Profile{}, apperr.Validation("unknown difficulty %q", d)
	}
	weights, ok := personalities[p]
	if !ok {
		return Profile{}, apperr.Validation("unknown personality %q", p)
	}
	return Profile{Difficulty: d, Personality: p, Weights: weights, Level: level}, nil
}
