package searcher

import (
	"context"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"settlers/experiments/metrics"
	"settlers/game"
)

type Option func(mcts *MCTS)

// MCTS is a parallel Monte Carlo tree search over game.State. Each search
// builds a fresh tree, so one MCTS may serve several searches at once.
type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluator
	metrics    func() metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluator) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: max(goroutines, 1),
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateSimulation,
		metrics:    metrics.NewDummyCollector,
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// Simulate searches from state and returns the visit share of every root
// move. It stops after the configured episodes or duration, or when ctx is
// done, whichever comes first.
func (m *MCTS) Simulate(ctx context.Context, state game.State) (map[game.Move]float64, metrics.SearchMetric) {
	root, metric := m.search(ctx, state)
	return root.Policy(), metric
}

// FindMove returns the most visited root move, or nil if state has no legal
// moves.
func (m *MCTS) FindMove(ctx context.Context, state game.State) (game.Move, metrics.SearchMetric) {
	root, metric := m.search(ctx, state)
	return root.bestMove(), metric
}

func (m *MCTS) search(ctx context.Context, state game.State) (*decision, metrics.SearchMetric) {
	root := newDecision(nil, state)
	collector := m.metrics()
	collector.Start(m.goroutines, m.cutoff)

	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	// Episodes are handed out through a closed channel; a duration-only search
	// runs until the deadline.
	var remaining chan struct{}
	if m.episodes > 0 {
		remaining = make(chan struct{}, m.episodes)
		for i := 0; i < m.episodes; i++ {
			remaining <- struct{}{}
		}
		close(remaining)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.goroutines; i++ {
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return nil
				}
				if remaining != nil {
					if _, ok := <-remaining; !ok {
						return nil
					}
				}
				m.simulate(root, state, collector)
				collector.AddEpisode()
			}
		})
	}
	_ = g.Wait()

	return root, collector.Complete()
}

func (m *MCTS) simulate(root *decision, state game.State, collector metrics.Collector) {
	newNode, newState := selectThenExpand(root, state)
	player, score := rollout(newState, m.cutoff, m.evaluate, collector)
	backup(newNode, player, score)
}

func selectThenExpand(root Node, state game.State) (Node, game.State) {
	parent := root
	child, state, selected := parent.SelectOrExpand(state)
	for selected && (child != parent) {
		parent = child
		child, state, selected = parent.SelectOrExpand(state)
	}
	return child, state
}

func rollout(state game.State, cutoff int, evaluate game.Evaluator, collector metrics.Collector) (string, float64) {
	depth := 0
	moves := state.LegalMoves()
	// Rollout till game over or for cutoff number of moves
	for len(moves) > 0 && state.Winner() == "" && depth < cutoff {
		move := moves[rand.Intn(len(moves))] // Random rollout policy
		state = state.Play(move)
		moves = state.LegalMoves()
		depth++
	}

	if winner := state.Winner(); winner != "" { // Game over before cutoff
		collector.AddFullPlayout()
		return winner, Win
	}

	// At cutoff state, return an evaluation score from current player's perspective
	player := state.Player()
	return player, evaluate(state, player)
}

func backup(newNode Node, player string, score float64) {
	node := newNode
	for node != nil {
		parent := node.Backup(player, score)
		node = parent
	}
}
