package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"settlers/agent"
	"settlers/eventstore"
	"settlers/experiments/metrics"
	"settlers/game"
	"settlers/gamemaster"
)

func newGamemaster() *gamemaster.Service {
	proc := game.NewProcessor(zerolog.Nop(), game.WithRand(rand.New(rand.NewSource(13))))
	return gamemaster.New(eventstore.NewMemoryStore(), proc, zerolog.Nop())
}

func TestRun(t *testing.T) {
	seat := metrics.AgentConfig{Difficulty: string(agent.Easy), Personality: string(agent.Economic)}
	exp := SelfPlay(2, 3, seat, 40, 3)

	results, err := Run(context.Background(), newGamemaster(), exp, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, results.Configs, 1)
	require.Len(t, results.Games, 2)
	require.NotEqual(t, results.Games[0].GameID, results.Games[1].GameID)
	for i, g := range results.Games {
		require.Equal(t, i+1, g.ID)
		require.Equal(t, []int{1, 1, 1}, g.Agents)
		require.Positive(t, g.TotalActions)
	}
	require.NotEmpty(t, results.Turns)
	require.Equal(t, 1, results.Turns[0].Game)

	w, err := metrics.NewWriter(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, results.Write(w))
	for _, name := range []string{"agent_configs.csv", "game_records.csv", "turn_records.csv"} {
		_, err := os.Stat(filepath.Join(w.Dir(), name))
		require.NoError(t, err, name)
	}
}

func TestRunRejectsBadExperiments(t *testing.T) {
	t.Run("one seat", func(t *testing.T) {
		exp := Experiment{Name: "solo", Games: 1, Seats: []metrics.AgentConfig{{ID: 1}}}
		_, err := Run(context.Background(), newGamemaster(), exp, zerolog.Nop())
		require.Error(t, err)
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		exp := SelfPlay(1, 2, metrics.AgentConfig{Difficulty: "genius"}, 1, 3)
		results, err := Run(context.Background(), newGamemaster(), exp, zerolog.Nop())
		require.Error(t, err)
		require.Len(t, results.Games, 1)
		require.Empty(t, results.Turns)
	})
}

func TestPresets(t *testing.T) {
	ladder := DifficultyLadder(5, agent.Defensive, 0, 9, 100)
	require.Len(t, ladder, 3)
	for _, exp := range ladder {
		require.Len(t, exp.Seats, 2)
		require.Equal(t, string(agent.Medium), exp.Seats[0].Difficulty)
		require.Equal(t, 5, exp.Games)
	}
	require.Equal(t, string(agent.Hard), ladder[2].Seats[1].Difficulty)
	require.Len(t, distinct(append(ladder[0].Seats, ladder[1].Seats...)), 3)

	round := PersonalityRound(1, agent.Hard, 0, 9, 100)
	require.Len(t, round.Seats, 4)
	require.Len(t, distinct(round.Seats), 4)
}

func TestMerge(t *testing.T) {
	var all Results
	all.Merge(Results{
		Configs: []metrics.AgentConfig{{ID: 0}, {ID: 1}},
		Games:   []metrics.GameRecord{{ID: 1}, {ID: 2}},
		Turns:   []metrics.TurnRecord{{Game: 2}},
	})
	all.Merge(Results{
		Configs: []metrics.AgentConfig{{ID: 0}, {ID: 2}},
		Games:   []metrics.GameRecord{{ID: 1}},
		Turns:   []metrics.TurnRecord{{Game: 1}},
	})
	require.Len(t, all.Configs, 3)
	require.Equal(t, 3, all.Games[2].ID)
	require.Equal(t, 2, all.Turns[0].Game)
	require.Equal(t, 3, all.Turns[1].Game)
}
