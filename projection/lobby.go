package projection

import (
	"encoding/json"
	"fmt"
	"sort"

	"settlers/apperr"
	"settlers/eventstore"
	"settlers/meta"
)

// Lobby event types.
const (
	LobbyCreated       = "lobby_created"
	LobbyPlayerJoined  = "player_joined"
	LobbyPlayerLeft    = "player_left"
	LobbyAIPlayerAdded = "ai_player_added"
	LobbySettings      = "settings_changed"
	LobbyGameStarted   = "game_started"
)

type LobbyStatus string

const (
	LobbyOpen    LobbyStatus = "open"
	LobbyStarted LobbyStatus = "started"
)

// LobbySettingsPayload configures the game a lobby will start.
type LobbySettingsPayload struct {
	MaxPlayers   int    `json:"maxPlayers,omitempty"`
	ShuffleSeats bool   `json:"shuffleSeats"`
	Seed         uint64 `json:"seed,omitempty"`
}

type LobbyCreatedPayload struct {
	Settings LobbySettingsPayload `json:"settings"`
}

type LobbyPlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Color    string `json:"color"`
}

type LobbyPlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type LobbyAIPlayerAddedPayload struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Difficulty  string `json:"difficulty"`
	Personality string `json:"personality"`
}

type LobbyGameStartedPayload struct {
	GameID string `json:"gameId"`
}

// LobbyPlayer is one seat in a lobby.
type LobbyPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	JoinOrder   int    `json:"joinOrder"`
	IsHost      bool   `json:"isHost"`
	IsAI        bool   `json:"isAI"`
	Difficulty  string `json:"difficulty,omitempty"`
	Personality string `json:"personality,omitempty"`
}

// LobbyState is derived only from the lobby's events.
type LobbyState struct {
	ID            string               `json:"id"`
	Status        LobbyStatus          `json:"status"`
	HostID        string               `json:"hostId"`
	Players       []LobbyPlayer        `json:"players"` // ordered by JoinOrder
	Settings      LobbySettingsPayload `json:"settings"`
	GameID        string               `json:"gameId,omitempty"`
	Version       int64                `json:"version"`
	nextJoinOrder int
}

// Player returns the seat with the given id.
func (l *LobbyState) Player(id string) (*LobbyPlayer, bool) {
	for i := range l.Players {
		if l.Players[i].ID == id {
			return &l.Players[i], true
		}
	}
	return nil, false
}

// LobbyAggregate is the event stream id of a lobby.
func LobbyAggregate(lobbyID string) string {
	return "lobby:" + lobbyID
}

func newLobby(aggregateID string) *LobbyState {
	return &LobbyState{
		ID:       aggregateID,
		Status:   LobbyOpen,
		Settings: LobbySettingsPayload{MaxPlayers: meta.MAX_PLAYERS},
	}
}

var lobbyProjector = NewProjector(newLobby).
	On(LobbyCreated, lobbyReducer(func(l *LobbyState, p *LobbyCreatedPayload) {
		l.applySettings(p.Settings)
	})).
	On(LobbyPlayerJoined, lobbyReducer(func(l *LobbyState, p *LobbyPlayerJoinedPayload) {
		l.seat(LobbyPlayer{ID: p.PlayerID, Name: p.Name, Color: p.Color})
	})).
	On(LobbyAIPlayerAdded, lobbyReducer(func(l *LobbyState, p *LobbyAIPlayerAddedPayload) {
		l.seat(LobbyPlayer{
			ID:          p.PlayerID,
			Name:        p.Name,
			Color:       p.Color,
			IsAI:        true,
			Difficulty:  p.Difficulty,
			Personality: p.Personality,
		})
	})).
	On(LobbyPlayerLeft, lobbyReducer(func(l *LobbyState, p *LobbyPlayerLeftPayload) {
		l.leave(p.PlayerID)
	})).
	On(LobbySettings, lobbyReducer(func(l *LobbyState, p *LobbySettingsPayload) {
		l.applySettings(*p)
	})).
	On(LobbyGameStarted, lobbyReducer(func(l *LobbyState, p *LobbyGameStartedPayload) {
		l.Status = LobbyStarted
		l.GameID = p.GameID
	}))

// lobbyReducer decodes the payload and applies it to a copy of the lobby.
func lobbyReducer[P any](apply func(l *LobbyState, p *P)) Reducer[*LobbyState] {
	return func(l *LobbyState, ev eventstore.Event) (*LobbyState, error) {
		var p P
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, apperr.System(fmt.Sprintf("decode %s payload", ev.Type), err)
		}
		next := l.copy()
		apply(next, &p)
		next.Version = ev.Seq
		return next, nil
	}
}

// Lobby projects a lobby's events. A lobby with no events is empty and open.
func Lobby(lobbyID string, events []eventstore.Event) (*LobbyState, error) {
	return lobbyProjector.Project(LobbyAggregate(lobbyID), events)
}

func (l *LobbyState) copy() *LobbyState {
	cp := *l
	cp.Players = append([]LobbyPlayer(nil), l.Players...)
	return &cp
}

func (l *LobbyState) applySettings(s LobbySettingsPayload) {
	if s.MaxPlayers > 0 {
		l.Settings.MaxPlayers = s.MaxPlayers
	}
	l.Settings.ShuffleSeats = s.ShuffleSeats
	if s.Seed != 0 {
		l.Settings.Seed = s.Seed
	}
}

// seat adds a player; the first seated player hosts. Joining twice is a no-op.
func (l *LobbyState) seat(p LobbyPlayer) {
	if _, ok := l.Player(p.ID); ok {
		return
	}
	p.JoinOrder = l.nextJoinOrder
	l.nextJoinOrder++
	if l.HostID == "" {
		p.IsHost = true
		l.HostID = p.ID
	}
	l.Players = append(l.Players, p)
}

// leave removes a player. A departing host hands over to the earliest
// remaining human, or to the earliest remaining seat when only AI is left.
func (l *LobbyState) leave(id string) {
	idx := -1
	for i, p := range l.Players {
		if p.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return
	}
	l.Players = append(l.Players[:idx], l.Players[idx+1:]...)
	if l.HostID != id {
		return
	}
	l.HostID = ""
	sort.SliceStable(l.Players, func(i, j int) bool { return l.Players[i].JoinOrder < l.Players[j].JoinOrder })
	if len(l.Players) == 0 {
		return
	}
	next := 0
	for i := range l.Players {
		if !l.Players[i].IsAI {
			next = i
			break
		}
	}
	l.Players[next].IsHost = true
	l.HostID = l.Players[next].ID
}

// Violation is a broken lobby invariant.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks the lobby invariants and returns every violation found.
func Validate(l *LobbyState) []Violation {
	var out []Violation
	add := func(code, format string, args ...any) {
		out = append(out, Violation{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if limit := l.Settings.MaxPlayers; len(l.Players) > limit {
		add("too_many_players", "%d players exceed the maximum of %d", len(l.Players), limit)
	}
	colors := make(map[string]string)
	orders := make(map[int]string)
	hosts := 0
	for _, p := range l.Players {
		if other, ok := colors[p.Color]; ok && p.Color != "" {
			add("duplicate_color", "%s and %s both chose %s", other, p.ID, p.Color)
		}
		colors[p.Color] = p.ID
		if other, ok := orders[p.JoinOrder]; ok {
			add("duplicate_join_order", "%s and %s share join order %d", other, p.ID, p.JoinOrder)
		}
		orders[p.JoinOrder] = p.ID
		if p.IsHost {
			hosts++
			if p.ID != l.HostID {
				add("host_mismatch", "%s is flagged host but the lobby host is %q", p.ID, l.HostID)
			}
		}
	}
	if len(l.Players) > 0 && hosts != 1 {
		add("host_count", "expected exactly one host, found %d", hosts)
	}
	return out
}
