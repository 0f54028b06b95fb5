package gamemaster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"settlers/agent"
	"settlers/apperr"
	"settlers/eventstore"
	"settlers/projection"
)

func TestLobby(t *testing.T) {
	ctx := context.Background()
	s := newService(t, eventstore.NewMemoryStore())

	lobbyID, lobby, err := s.CreateLobby(ctx, LobbySeat{ID: "alice", Name: "Alice", Color: "red"}, projection.LobbySettingsPayload{MaxPlayers: 3, Seed: 11})
	require.NoError(t, err)
	require.NotEmpty(t, lobbyID)
	require.Equal(t, "alice", lobby.HostID)
	require.Equal(t, int64(2), lobby.Version)

	t.Run("join", func(t *testing.T) {
		lobby, err := s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "bob", Name: "Bob", Color: "blue"})
		require.NoError(t, err)
		require.Len(t, lobby.Players, 2)
		require.Equal(t, 1, lobby.Players[1].JoinOrder)

		_, err = s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "bob", Name: "Bob", Color: "white"})
		require.True(t, apperr.IsValidation(err), "already seated")
	})

	t.Run("duplicate color is refused", func(t *testing.T) {
		_, err := s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "carol", Color: "red"})
		require.True(t, apperr.IsValidation(err))
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, "duplicate_color", appErr.Metadata["code"])
	})

	t.Run("only the host adds AI", func(t *testing.T) {
		_, err := s.AddAIPlayer(ctx, lobbyID, "bob", agent.Hard, agent.Economic)
		require.True(t, apperr.IsValidation(err))
		_, err = s.AddAIPlayer(ctx, lobbyID, "alice", "genius", agent.Economic)
		require.True(t, apperr.IsValidation(err))

		lobby, err := s.AddAIPlayer(ctx, lobbyID, "alice", agent.Hard, agent.Economic)
		require.NoError(t, err)
		ai := lobby.Players[2]
		require.True(t, ai.IsAI)
		require.Equal(t, "white", ai.Color, "first free color")
		require.Equal(t, string(agent.Economic), ai.Personality)
	})

	t.Run("full lobby", func(t *testing.T) {
		_, err := s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "dave", Color: "orange"})
		require.True(t, apperr.IsValidation(err))
	})

	t.Run("host leaves", func(t *testing.T) {
		lobby, err := s.LeaveLobby(ctx, lobbyID, "alice")
		require.NoError(t, err)
		require.Equal(t, "bob", lobby.HostID)
		require.Empty(t, projection.Validate(lobby))

		_, err = s.LeaveLobby(ctx, lobbyID, "alice")
		require.True(t, apperr.IsNotFound(err))
	})

	t.Run("settings", func(t *testing.T) {
		_, err := s.UpdateLobbySettings(ctx, lobbyID, "bob", projection.LobbySettingsPayload{MaxPlayers: 9})
		require.True(t, apperr.IsValidation(err))
		lobby, err := s.UpdateLobbySettings(ctx, lobbyID, "bob", projection.LobbySettingsPayload{MaxPlayers: 4, ShuffleSeats: true})
		require.NoError(t, err)
		require.Equal(t, 4, lobby.Settings.MaxPlayers)
		require.Equal(t, uint64(11), lobby.Settings.Seed, "unset seed keeps the old one")
	})

	t.Run("start game", func(t *testing.T) {
		_, err := s.StartLobbyGame(ctx, lobbyID, "ai")
		require.True(t, apperr.IsValidation(err))

		gs, err := s.StartLobbyGame(ctx, lobbyID, "bob")
		require.NoError(t, err)
		require.Len(t, gs.Players, 2)
		p, ok := gs.Player("bob")
		require.True(t, ok)
		require.False(t, p.IsAI)

		lobby, err := s.Lobby(ctx, lobbyID)
		require.NoError(t, err)
		require.Equal(t, projection.LobbyStarted, lobby.Status)
		require.Equal(t, gs.ID, lobby.GameID)

		_, err = s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "erin", Color: "orange"})
		require.True(t, apperr.IsValidation(err), "lobby closed")
	})

	t.Run("missing lobby", func(t *testing.T) {
		_, err := s.Lobby(ctx, "nope")
		require.True(t, apperr.IsNotFound(err))
		_, err = s.JoinLobby(ctx, "nope", LobbySeat{ID: "x"})
		require.True(t, apperr.IsNotFound(err))
	})

	t.Run("a game needs two seats", func(t *testing.T) {
		soloID, _, err := s.CreateLobby(ctx, LobbySeat{ID: "solo", Color: "red"}, projection.LobbySettingsPayload{})
		require.NoError(t, err)
		_, err = s.StartLobbyGame(ctx, soloID, "solo")
		require.True(t, apperr.IsValidation(err))
	})
}

func TestLobbyWithForeignEvents(t *testing.T) {
	ctx := context.Background()
	store := &interloper{Store: eventstore.NewMemoryStore()}
	s := newService(t, store)

	lobbyID, _, err := s.CreateLobby(ctx, LobbySeat{ID: "alice", Name: "Alice", Color: "red"}, projection.LobbySettingsPayload{})
	require.NoError(t, err)

	store.pending = 1
	lobby, err := s.JoinLobby(ctx, lobbyID, LobbySeat{ID: "bob", Name: "Bob", Color: "blue"})
	require.NoError(t, err, "the join is decided again after the chat line")
	require.Len(t, lobby.Players, 2)
	require.Equal(t, int64(4), lobby.Version)

	lobby, err = s.AddAIPlayer(ctx, lobbyID, "alice", agent.Easy, agent.Balanced)
	require.NoError(t, err)
	require.Equal(t, int64(5), lobby.Version)

	events, err := s.Events(ctx, projection.LobbyAggregate(lobbyID))
	require.NoError(t, err)
	require.Len(t, events, 5)
	require.Equal(t, "chat_message", events[2].Type)
}
