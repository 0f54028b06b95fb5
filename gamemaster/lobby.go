package gamemaster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"settlers/agent"
	"settlers/apperr"
	"settlers/eventstore"
	"settlers/game"
	"settlers/meta"
	"settlers/projection"
)

// Colors handed to AI seats, in order of preference.
var seatColors = []string{"red", "blue", "white", "orange"}

// LobbySeat is a human joining a lobby.
type LobbySeat struct {
	ID    string
	Name  string
	Color string
}

// decideFn turns the current lobby into the event a command appends.
type decideFn func(l *projection.LobbyState) (eventType string, payload any, err error)

// lobbyCommand appends the event decided for the current lobby, provided the
// lobby would still satisfy its invariants afterwards. Conflicting appends
// are decided again against the refreshed lobby.
func (s *Service) lobbyCommand(ctx context.Context, lobbyID string, decide decideFn) (*projection.LobbyState, error) {
	aggregateID := projection.LobbyAggregate(lobbyID)
	unlock := s.lock(aggregateID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		events, err := s.store.List(ctx, aggregateID, 0, 0)
		if err != nil {
			return nil, err
		}
		lobby, err := projection.Lobby(lobbyID, events)
		if err != nil {
			return nil, err
		}
		// Events the lobby ignores still take up sequence numbers.
		var last int64
		if n := len(events); n > 0 {
			last = events[n-1].Seq
		}
		eventType, payload, err := decide(lobby)
		if err != nil {
			return nil, err
		}
		draft, err := eventstore.NewDraft(eventType, payload, time.Now())
		if err != nil {
			return nil, err
		}

		candidate := eventstore.Event{AggregateID: aggregateID, Type: eventType, Data: draft.Data, Seq: last + 1}
		next, err := projection.Lobby(lobbyID, append(events, candidate))
		if err != nil {
			return nil, err
		}
		if violations := projection.Validate(next); len(violations) > 0 {
			return nil, apperr.Validation("%s", violations[0].Message).WithMetadata("code", violations[0].Code)
		}

		_, err = s.store.Append(ctx, aggregateID, last, draft)
		if err == nil {
			s.log.Debug().Str("lobby", lobbyID).Str("event", eventType).Int64("version", next.Version).Msg("lobby updated")
			return next, nil
		}
		if !apperr.IsConflict(err) || attempt >= s.retries {
			return nil, err
		}
	}
}

func exists(l *projection.LobbyState, lobbyID string) error {
	if l.Version == 0 {
		return apperr.NotFound("lobby %s", lobbyID)
	}
	return nil
}

func openLobby(l *projection.LobbyState, lobbyID string) error {
	if err := exists(l, lobbyID); err != nil {
		return err
	}
	if l.Status != projection.LobbyOpen {
		return apperr.Validation("lobby %s has already started", lobbyID)
	}
	return nil
}

func hostOnly(l *projection.LobbyState, requesterID string) error {
	if l.HostID != requesterID {
		return apperr.Validation("only the host can do that")
	}
	return nil
}

// CreateLobby opens a lobby hosted by the given player and returns its id.
func (s *Service) CreateLobby(ctx context.Context, host LobbySeat, settings projection.LobbySettingsPayload) (string, *projection.LobbyState, error) {
	if host.ID == "" {
		return "", nil, apperr.Validation("host needs a player id")
	}
	if settings.MaxPlayers != 0 && (settings.MaxPlayers < meta.MIN_PLAYERS || settings.MaxPlayers > meta.MAX_PLAYERS) {
		return "", nil, apperr.Validation("max players must be between %d and %d", meta.MIN_PLAYERS, meta.MAX_PLAYERS)
	}
	lobbyID := uuid.NewString()
	if _, err := s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		return projection.LobbyCreated, projection.LobbyCreatedPayload{Settings: settings}, nil
	}); err != nil {
		return "", nil, err
	}
	lobby, err := s.JoinLobby(ctx, lobbyID, host)
	if err != nil {
		return "", nil, err
	}
	return lobbyID, lobby, nil
}

// Lobby returns the projected lobby.
func (s *Service) Lobby(ctx context.Context, lobbyID string) (*projection.LobbyState, error) {
	events, err := s.store.List(ctx, projection.LobbyAggregate(lobbyID), 0, 0)
	if err != nil {
		return nil, err
	}
	lobby, err := projection.Lobby(lobbyID, events)
	if err != nil {
		return nil, err
	}
	if err := exists(lobby, lobbyID); err != nil {
		return nil, err
	}
	return lobby, nil
}

func (s *Service) JoinLobby(ctx context.Context, lobbyID string, seat LobbySeat) (*projection.LobbyState, error) {
	return s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		if err := openLobby(l, lobbyID); err != nil {
			return "", nil, err
		}
		if seat.ID == "" {
			return "", nil, apperr.Validation("player id is required")
		}
		if _, ok := l.Player(seat.ID); ok {
			return "", nil, apperr.Validation("player %s is already seated", seat.ID)
		}
		return projection.LobbyPlayerJoined, projection.LobbyPlayerJoinedPayload{PlayerID: seat.ID, Name: seat.Name, Color: seat.Color}, nil
	})
}

func (s *Service) LeaveLobby(ctx context.Context, lobbyID, playerID string) (*projection.LobbyState, error) {
	return s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		if err := openLobby(l, lobbyID); err != nil {
			return "", nil, err
		}
		if _, ok := l.Player(playerID); !ok {
			return "", nil, apperr.NotFound("player %s in lobby %s", playerID, lobbyID)
		}
		return projection.LobbyPlayerLeft, projection.LobbyPlayerLeftPayload{PlayerID: playerID}, nil
	})
}

// AddAIPlayer seats an AI with the first free color.
func (s *Service) AddAIPlayer(ctx context.Context, lobbyID, requesterID string, difficulty agent.Difficulty, personality agent.Personality) (*projection.LobbyState, error) {
	profile, err := agent.NewProfile(difficulty, personality)
	if err != nil {
		return nil, err
	}
	id := "ai-" + uuid.NewString()[:8]
	return s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		if err := openLobby(l, lobbyID); err != nil {
			return "", nil, err
		}
		if err := hostOnly(l, requesterID); err != nil {
			return "", nil, err
		}
		color, err := freeColor(l)
		if err != nil {
			return "", nil, err
		}
		return projection.LobbyAIPlayerAdded, projection.LobbyAIPlayerAddedPayload{
			PlayerID:    id,
			Name:        fmt.Sprintf("%s AI", profile.Personality),
			Color:       color,
			Difficulty:  string(profile.Difficulty),
			Personality: string(profile.Personality),
		}, nil
	})
}

func freeColor(l *projection.LobbyState) (string, error) {
	taken := make(map[string]bool, len(l.Players))
	for _, p := range l.Players {
		taken[p.Color] = true
	}
	for _, c := range seatColors {
		if !taken[c] {
			return c, nil
		}
	}
	return "", apperr.Validation("no free color left")
}

func (s *Service) UpdateLobbySettings(ctx context.Context, lobbyID, requesterID string, settings projection.LobbySettingsPayload) (*projection.LobbyState, error) {
	return s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		if err := openLobby(l, lobbyID); err != nil {
			return "", nil, err
		}
		if err := hostOnly(l, requesterID); err != nil {
			return "", nil, err
		}
		if settings.MaxPlayers != 0 && (settings.MaxPlayers < meta.MIN_PLAYERS || settings.MaxPlayers > meta.MAX_PLAYERS) {
			return "", nil, apperr.Validation("max players must be between %d and %d", meta.MIN_PLAYERS, meta.MAX_PLAYERS)
		}
		return projection.LobbySettings, settings, nil
	})
}

// StartLobbyGame closes the lobby and creates its game with the seats in
// join order, shuffled when the settings ask for it.
func (s *Service) StartLobbyGame(ctx context.Context, lobbyID, requesterID string) (*game.GameState, error) {
	gameID := uuid.NewString()
	lobby, err := s.lobbyCommand(ctx, lobbyID, func(l *projection.LobbyState) (string, any, error) {
		if err := openLobby(l, lobbyID); err != nil {
			return "", nil, err
		}
		if err := hostOnly(l, requesterID); err != nil {
			return "", nil, err
		}
		if n := len(l.Players); n < meta.MIN_PLAYERS {
			return "", nil, apperr.Validation("a game needs at least %d players, the lobby has %d", meta.MIN_PLAYERS, n)
		}
		return projection.LobbyGameStarted, projection.LobbyGameStartedPayload{GameID: gameID}, nil
	})
	if err != nil {
		return nil, err
	}

	seats := make([]game.Seat, len(lobby.Players))
	for i, p := range lobby.Players {
		seats[i] = game.Seat{ID: p.ID, Name: p.Name, Color: p.Color, IsAI: p.IsAI}
	}
	seed := lobby.Settings.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return s.CreateGame(ctx, game.Setup{GameID: gameID, Seats: seats, Seed: seed, Shuffle: lobby.Settings.ShuffleSeats})
}
