package experiments

import (
	"fmt"
	"time"

	"settlers/agent"
	"settlers/experiments/metrics"
)

// SelfPlay seats the same configuration in every chair.
func SelfPlay(games, players int, seat metrics.AgentConfig, seed uint64, maxTurns int) Experiment {
	seat.ID = 1
	seats := make([]metrics.AgentConfig, players)
	for i := range seats {
		seats[i] = seat
	}
	return Experiment{Name: "self_play", Games: games, Seats: seats, Seed: seed, MaxTurns: maxTurns}
}

// DifficultyLadder pairs each difficulty against a medium baseline of the
// same personality.
func DifficultyLadder(games int, personality agent.Personality, thinking time.Duration, seed uint64, maxTurns int) []Experiment {
	baseline := metrics.AgentConfig{ID: 0, Difficulty: string(agent.Medium), Personality: string(personality), ThinkingTime: thinking}
	var out []Experiment
	for i, d := range []agent.Difficulty{agent.Easy, agent.Medium, agent.Hard} {
		challenger := metrics.AgentConfig{ID: i + 1, Difficulty: string(d), Personality: string(personality), ThinkingTime: thinking}
		out = append(out, Experiment{
			Name:     fmt.Sprintf("ladder_%s", d),
			Games:    games,
			Seats:    []metrics.AgentConfig{baseline, challenger},
			Seed:     seed,
			MaxTurns: maxTurns,
		})
	}
	return out
}

// PersonalityRound seats one agent of each personality at the same table.
func PersonalityRound(games int, difficulty agent.Difficulty, thinking time.Duration, seed uint64, maxTurns int) Experiment {
	var seats []metrics.AgentConfig
	for i, p := range []agent.Personality{agent.Aggressive, agent.Balanced, agent.Defensive, agent.Economic} {
		seats = append(seats, metrics.AgentConfig{ID: i + 1, Difficulty: string(difficulty), Personality: string(p), ThinkingTime: thinking})
	}
	return Experiment{Name: "personality_round", Games: games, Seats: seats, Seed: seed, MaxTurns: maxTurns}
}
