package projection

import (
	"settlers/apperr"
	"settlers/eventstore"
	"settlers/game"
)

var gameProjector = NewProjector(func(string) *game.GameState { return nil }).
	Otherwise(func(gs *game.GameState, ev eventstore.Event) (*game.GameState, error) {
		decoded, err := game.DecodeEvent(ev.Type, ev.Data, ev.Timestamp)
		if err != nil {
			return nil, err
		}
		if decoded.Payload == nil {
			return gs, nil
		}
		return game.Apply(gs, decoded)
	})

// Game rebuilds a game from its stored events.
func Game(gameID string, events []eventstore.Event) (*game.GameState, error) {
	gs, err := gameProjector.Project(gameID, events)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, apperr.NotFound("game %s", gameID)
	}
	return gs, nil
}

// GameDrafts encodes rules-engine events for storage.
func GameDrafts(events ...game.Event) ([]eventstore.Draft, error) {
	drafts := make([]eventstore.Draft, len(events))
	for i, ev := range events {
		data, err := ev.Encode()
		if err != nil {
			return nil, err
		}
		drafts[i] = eventstore.Draft{Type: string(ev.Type), Data: data, At: ev.At}
	}
	return drafts, nil
}
