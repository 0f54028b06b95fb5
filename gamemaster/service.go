// Package gamemaster is the boundary of the core: every write goes through
// a Service, which serializes work per aggregate and persists the resulting
// events.
package gamemaster

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"settlers/agent"
	"settlers/apperr"
	"settlers/eventstore"
	"settlers/game"
	"settlers/projection"
)

const DefaultAppendRetries = 3

type Option func(*Service)

// WithAppendRetries sets how often a conflicting append is retried against
// a refreshed state.
func WithAppendRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// snapshot is the last known state of a game and the sequence number of
// the event that produced it.
type snapshot struct {
	state *game.GameState
	seq   int64
}

type Service struct {
	store   eventstore.Store
	proc    *game.Processor
	log     zerolog.Logger
	retries int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]snapshot
}

func New(store eventstore.Store, proc *game.Processor, logger zerolog.Logger, options ...Option) *Service {
	s := &Service{
		store:   store,
		proc:    proc,
		log:     logger,
		retries: DefaultAppendRetries,
		locks:   make(map[string]*sync.Mutex),
		cache:   make(map[string]snapshot),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// lock serializes work on one aggregate.
func (s *Service) lock(aggregateID string) func() {
	s.mu.Lock()
	l, ok := s.locks[aggregateID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[aggregateID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) cached(gameID string) (snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.cache[gameID]
	return snap, ok
}

func (s *Service) remember(gameID string, snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.state == nil {
		delete(s.cache, gameID)
		return
	}
	s.cache[gameID] = snap
}

// CreateGame seeds a new game and stores its opening events. A missing
// game id is generated.
func (s *Service) CreateGame(ctx context.Context, setup game.Setup) (*game.GameState, error) {
	if setup.GameID == "" {
		setup.GameID = uuid.NewString()
	}
	unlock := s.lock(setup.GameID)
	defer unlock()

	gs, events, err := s.proc.NewGame(setup)
	if err != nil {
		return nil, err
	}
	drafts, err := projection.GameDrafts(events...)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Append(ctx, setup.GameID, 0, drafts...)
	if apperr.IsConflict(err) {
		return nil, apperr.Conflict("game %s already exists", setup.GameID)
	}
	if err != nil {
		return nil, err
	}
	s.remember(setup.GameID, snapshot{state: gs, seq: stored[len(stored)-1].Seq})
	return gs, nil
}

// State returns the current state of a game. The returned value must not be
// modified.
func (s *Service) State(ctx context.Context, gameID string) (*game.GameState, error) {
	unlock := s.lock(gameID)
	defer unlock()

	snap, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return snap.state, nil
}

// Events returns the stored history of an aggregate in sequence order.
func (s *Service) Events(ctx context.Context, aggregateID string) ([]eventstore.Event, error) {
	return s.store.List(ctx, aggregateID, 0, 0)
}

// Rebuild replays a game from the store, bypassing the cache.
func (s *Service) Rebuild(ctx context.Context, gameID string) (*game.GameState, error) {
	events, err := s.store.List(ctx, gameID, 0, 0)
	if err != nil {
		return nil, err
	}
	return projection.Game(gameID, events)
}

func (s *Service) load(ctx context.Context, gameID string) (snapshot, error) {
	if snap, ok := s.cached(gameID); ok {
		return snap, nil
	}
	events, err := s.store.List(ctx, gameID, 0, 0)
	if err != nil {
		return snapshot{}, err
	}
	gs, err := projection.Game(gameID, events)
	if err != nil {
		return snapshot{}, err
	}
	snap := snapshot{state: gs, seq: events[len(events)-1].Seq}
	s.remember(gameID, snap)
	return snap, nil
}

// Result is the outcome of one submitted action.
type Result struct {
	State *game.GameState
	Event eventstore.Event
}

// Process validates and applies an action, then appends its event. A
// conflicting append means another writer got there first: the state is
// reloaded and the action re-validated against it.
func (s *Service) Process(ctx context.Context, gameID string, a game.Action) (Result, error) {
	unlock := s.lock(gameID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		snap, err := s.load(ctx, gameID)
		if err != nil {
			return Result{}, err
		}
		next, ev, err := s.proc.Process(snap.state, a)
		if err != nil {
			return Result{}, err
		}
		drafts, err := projection.GameDrafts(ev)
		if err != nil {
			return Result{}, err
		}

		stored, err := s.store.Append(ctx, gameID, snap.seq, drafts...)
		if err == nil {
			s.remember(gameID, snapshot{state: next, seq: stored[0].Seq})
			return Result{State: next, Event: stored[0]}, nil
		}
		s.remember(gameID, snapshot{})
		if !apperr.IsConflict(err) || attempt >= s.retries {
			return Result{}, err
		}
		s.log.Debug().Err(err).Str("game", gameID).Int("attempt", attempt+1).Msg("append conflict, retrying")
	}
}

// Submit is Process for callers that only need the new state.
func (s *Service) Submit(ctx context.Context, gameID string, a game.Action) (*game.GameState, error) {
	r, err := s.Process(ctx, gameID, a)
	if err != nil {
		return nil, err
	}
	return r.State, nil
}

// RunAITurn plays for an AI seat until its turn is over.
func (s *Service) RunAITurn(ctx context.Context, gameID, playerID string, cfg agent.Config) (agent.TurnResult, error) {
	gs, err := s.State(ctx, gameID)
	if err != nil {
		return agent.TurnResult{}, err
	}
	p, ok := gs.Player(playerID)
	if !ok {
		return agent.TurnResult{}, apperr.NotFound("player %s in game %s", playerID, gameID)
	}
	if !p.IsAI {
		return agent.TurnResult{}, apperr.Validation("player %s is not an AI seat", playerID)
	}
	player, err := agent.NewAutoPlayer(playerID, cfg, s, s.log)
	if err != nil {
		return agent.TurnResult{}, err
	}
	result, err := player.PlayTurn(ctx, gameID)
	if err != nil {
		return result, err
	}
	s.log.Info().Str("game", gameID).Str("player", playerID).Int("actions", result.ActionsExecuted).
		Int("rejected", result.Metric.Rejected).Dur("duration", result.Metric.Duration).Msg("ai turn")
	return result, nil
}
