package game

import (
	"settlers/apperr"
	"settlers/board"
	"settlers/meta"
)

// checkSettlementSite enforces the placement rules for a new settlement:
// the vertex is empty, no building sits on a neighbouring vertex, and
// outside setup one of the player's roads touches it.
func (gs *GameState) checkSettlementSite(playerID string, id board.VertexID, setup bool) error {
	v, err := gs.Board.Vertex(id)
	if err != nil {
		return err
	}
	if _, occupied := gs.Buildings[id]; occupied {
		return apperr.Validation("vertex %s is occupied", id)
	}
	for _, n := range v.Neighbors {
		if _, occupied := gs.Buildings[n]; occupied {
			return apperr.Validation("vertex %s is too close to the building at %s", id, n)
		}
	}
	if setup {
		return nil
	}
	for _, e := range v.Edges {
		if gs.Roads[e] == playerID {
			return nil
		}
	}
	return apperr.Validation("vertex %s is not connected to a road of %s", id, playerID)
}

// checkRoadSite enforces the placement rules for a new road. During setup the
// road must touch the settlement placed this turn; afterwards one endpoint
// must hold the player's building, or one of the player's roads without an
// opponent's building in between.
func (gs *GameState) checkRoadSite(playerID string, id board.EdgeID) error {
	e, err := gs.Board.Edge(id)
	if err != nil {
		return err
	}
	if _, taken := gs.Roads[id]; taken {
		return apperr.Validation("edge %s already has a road", id)
	}
	if gs.Phase.IsSetup() {
		if gs.SetupVertex == nil {
			return apperr.Validation("place a settlement before its road")
		}
		if e.Endpoints[0] != *gs.SetupVertex && e.Endpoints[1] != *gs.SetupVertex {
			return apperr.Validation("edge %s does not touch the settlement at %s", id, *gs.SetupVertex)
		}
		return nil
	}
	for _, end := range e.Endpoints {
		if b, ok := gs.Buildings[end]; ok {
			if b.Owner == playerID {
				return nil
			}
			continue
		}
		for _, other := range gs.Board.Vertices[end].Edges {
			if other != id && gs.Roads[other] == playerID {
				return nil
			}
		}
	}
	return apperr.Validation("edge %s is not connected to the network of %s", id, playerID)
}

// settlementSites lists every vertex where the player may place a settlement.
func (gs *GameState) settlementSites(playerID string) []board.VertexID {
	setup := gs.Phase.IsSetup()
	var out []board.VertexID
	for _, id := range gs.Board.VertexIDs() {
		if gs.checkSettlementSite(playerID, id, setup) == nil {
			out = append(out, id)
		}
	}
	return out
}

// roadSites lists every edge where the player may place a road.
func (gs *GameState) roadSites(playerID string) []board.EdgeID {
	var out []board.EdgeID
	for _, id := range gs.Board.EdgeIDs() {
		if gs.checkRoadSite(playerID, id) == nil {
			out = append(out, id)
		}
	}
	return out
}

// TradeRatio returns how many cards of a resource the player gives the bank
// for one card of another.
func (gs *GameState) TradeRatio(playerID string, res board.Resource) int {
	ratio := meta.BANK_RATIO
	for _, id := range gs.BuildingsOf(playerID) {
		port := gs.Board.Vertices[id].Port
		if port == nil {
			continue
		}
		if port.Resource == res {
			return meta.SPECIFIC_PORT_RATIO
		}
		if port.Generic() {
			ratio = meta.GENERIC_PORT_RATIO
		}
	}
	return ratio
}

// StealCandidates lists the opponents of the current player with a building
// next to the robber and at least one resource card, in turn order.
func (gs *GameState) StealCandidates() []string {
	adjacent := make(map[string]bool)
	for _, v := range gs.Board.VerticesOf(gs.Robber) {
		if b, ok := gs.Buildings[v]; ok && b.Owner != gs.CurrentPlayer {
			adjacent[b.Owner] = true
		}
	}
	var out []string
	for _, id := range gs.TurnOrder() {
		p, _ := gs.Player(id)
		if adjacent[id] && p.Resources.Total() > 0 {
			out = append(out, id)
		}
	}
	return out
}

// freeRoadAvailable reports whether a Road Building card still has a road
// to grant that can legally be placed.
func (gs *GameState) freeRoadAvailable(playerID string) bool {
	p, ok := gs.Player(playerID)
	if !ok || gs.FreeRoads == 0 || p.Inventory.Roads == 0 {
		return false
	}
	return len(gs.roadSites(playerID)) > 0
}
