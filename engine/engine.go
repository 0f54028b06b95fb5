package engine

import (
	"context"

	"settlers/experiments/metrics"
)

// Engine plays a game until there's a winner or a max number of turns is reached.
type Engine interface {
	Run(ctx context.Context, gameID string) (metrics.GameMetric, []metrics.TurnMetric, error)
}
