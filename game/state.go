package game

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"time"

	"settlers/board"
	"settlers/meta"
)

type Phase string

const (
	CreatedPhase    Phase = "created"
	Setup1Phase     Phase = "setup1"
	Setup2Phase     Phase = "setup2"
	RollPhase       Phase = "roll"
	ActionsPhase    Phase = "actions"
	DiscardPhase    Phase = "discard"
	MoveRobberPhase Phase = "moveRobber"
	StealPhase      Phase = "steal"
	EndedPhase      Phase = "ended"
)

func (p Phase) IsSetup() bool {
	return p == Setup1Phase || p == Setup2Phase
}

type BuildingType string

const (
	Settlement BuildingType = "settlement"
	City       BuildingType = "city"
)

// Building occupies a vertex.
type Building struct {
	Type  BuildingType `json:"type"`
	Owner string       `json:"owner"`
}

// Points is the public score a building is worth.
func (b Building) Points() int {
	if b.Type == City {
		return 2
	}
	return 1
}

// Roll is the outcome of two dice.
type Roll struct {
	Dice [2]int `json:"dice"`
}

func (r Roll) Sum() int {
	return r.Dice[0] + r.Dice[1]
}

// GameState is the full state of one game. It is never modified in place by
// the rules engine: Apply returns a new value and leaves its input untouched.
// The Board is immutable and shared between copies.
type GameState struct {
	ID            string                      `json:"id"`
	Phase         Phase                       `json:"phase"`
	Turn          int                         `json:"turn"` // 0 during setup, 1 from the first roll
	CurrentPlayer string                      `json:"currentPlayer"`
	Players       []Player                    `json:"players"` // ordered by JoinOrder
	Board         *board.Board                `json:"-"`
	Buildings     map[board.VertexID]Building `json:"buildings"`
	Roads         map[board.EdgeID]string     `json:"roads"`
	Robber        board.HexCoord              `json:"robber"`
	LastRoll      *Roll                       `json:"lastRoll"`
	Deck          []DevelopmentCard           `json:"deck"`
	DiscardPile   []DevelopmentCard           `json:"discardPile"`
	Bank          Resources                   `json:"bank"`
	Winner        string                      `json:"winner,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`

	// Sub-phase bookkeeping.
	PendingDiscards map[string]int  `json:"pendingDiscards,omitempty"`
	ResumePhase     Phase           `json:"resumePhase,omitempty"`
	SetupVertex     *board.VertexID `json:"setupVertex,omitempty"`
	FreeRoads       int             `json:"freeRoads,omitempty"`
	CardPlayed      bool            `json:"cardPlayed,omitempty"`
}

// NewGameState returns an empty game on the given board with the robber on
// the desert and a full bank.
func NewGameState(id string, b *board.Board, deck []DevelopmentCard, createdAt time.Time) *GameState {
	return &GameState{
		ID:        id,
		Phase:     CreatedPhase,
		Board:     b,
		Buildings: make(map[board.VertexID]Building),
		Roads:     make(map[board.EdgeID]string),
		Robber:    b.Desert(),
		Deck:      append([]DevelopmentCard(nil), deck...),
		Bank:      Uniform(meta.RESOURCE_SUPPLY),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Copy returns a deep copy sharing only the immutable board.
func (gs *GameState) Copy() *GameState {
	cp := *gs

	cp.Players = make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		cp.Players[i] = p.copy()
	}

	cp.Buildings = make(map[board.VertexID]Building, len(gs.Buildings))
	for k, v := range gs.Buildings {
		cp.Buildings[k] = v
	}
	cp.Roads = make(map[board.EdgeID]string, len(gs.Roads))
	for k, v := range gs.Roads {
		cp.Roads[k] = v
	}

	cp.Deck = append([]DevelopmentCard(nil), gs.Deck...)
	cp.DiscardPile = append([]DevelopmentCard(nil), gs.DiscardPile...)

	if gs.LastRoll != nil {
		roll := *gs.LastRoll
		cp.LastRoll = &roll
	}
	if gs.SetupVertex != nil {
		v := *gs.SetupVertex
		cp.SetupVertex = &v
	}
	if gs.PendingDiscards != nil {
		cp.PendingDiscards = make(map[string]int, len(gs.PendingDiscards))
		for k, v := range gs.PendingDiscards {
			cp.PendingDiscards[k] = v
		}
	}
	return &cp
}

// Player returns the player with the given id.
func (gs *GameState) Player(id string) (*Player, bool) {
	for i := range gs.Players {
		if gs.Players[i].ID == id {
			return &gs.Players[i], true
		}
	}
	return nil, false
}

// TurnOrder returns player ids ordered by join order.
func (gs *GameState) TurnOrder() []string {
	players := append([]Player(nil), gs.Players...)
	sort.SliceStable(players, func(i, j int) bool { return players[i].JoinOrder < players[j].JoinOrder })
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

// NextPlayer returns the player after id in turn order, wrapping around.
func (gs *GameState) NextPlayer(id string) string {
	order := gs.TurnOrder()
	for i, pid := range order {
		if pid == id {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func (gs *GameState) previousPlayer(id string) string {
	order := gs.TurnOrder()
	for i, pid := range order {
		if pid == id {
			return order[(i+len(order)-1)%len(order)]
		}
	}
	return ""
}

// Actor returns the player expected to act next: the first player owing a
// discard during the discard phase, otherwise the current player.
func (gs *GameState) Actor() string {
	if gs.Phase == DiscardPhase {
		for _, id := range gs.TurnOrder() {
			if gs.PendingDiscards[id] > 0 {
				return id
			}
		}
	}
	return gs.CurrentPlayer
}

// Ended reports whether the game is over.
func (gs *GameState) Ended() bool {
	return gs.Phase == EndedPhase
}

// BuildingsOf returns the vertices holding a building of the given owner in
// board order.
func (gs *GameState) BuildingsOf(owner string) []board.VertexID {
	var out []board.VertexID
	for _, v := range gs.Board.VertexIDs() {
		if b, ok := gs.Buildings[v]; ok && b.Owner == owner {
			out = append(out, v)
		}
	}
	return out
}

// RoadsOf returns the edges holding a road of the given owner in board order.
func (gs *GameState) RoadsOf(owner string) []board.EdgeID {
	var out []board.EdgeID
	for _, e := range gs.Board.EdgeIDs() {
		if gs.Roads[e] == owner {
			out = append(out, e)
		}
	}
	return out
}

// TotalResources counts every resource card held by players and the bank.
func (gs *GameState) TotalResources() Resources {
	total := gs.Bank
	for _, p := range gs.Players {
		total = total.Add(p.Resources)
	}
	return total
}

// Hash identifies the observable game position. Chance outcomes that lead to
// the same position share a hash.
func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()
	write := func(vs ...any) {
		for _, v := range vs {
			switch v := v.(type) {
			case string:
				hasher.Write([]byte(v))
				hasher.Write([]byte{0})
			case int:
				binary.Write(hasher, binary.LittleEndian, int64(v))
			case bool:
				binary.Write(hasher, binary.LittleEndian, v)
			}
		}
	}

	write(string(gs.Phase), gs.Turn, gs.CurrentPlayer, gs.Robber.Q, gs.Robber.R, len(gs.Deck), gs.FreeRoads, gs.CardPlayed)
	for _, p := range gs.Players {
		r := p.Resources
		write(p.ID, r.Wood, r.Brick, r.Ore, r.Wheat, r.Sheep, len(p.Cards), p.KnightsPlayed, gs.PendingDiscards[p.ID])
		for _, c := range p.Cards {
			write(c.ID, c.PlayedTurn)
		}
	}
	for _, v := range gs.Board.VertexIDs() {
		if b, ok := gs.Buildings[v]; ok {
			write(v.String(), string(b.Type), b.Owner)
		}
	}
	for _, e := range gs.Board.EdgeIDs() {
		if owner, ok := gs.Roads[e]; ok {
			write(e.String(), owner)
		}
	}
	if gs.LastRoll != nil {
		write(gs.LastRoll.Dice[0], gs.LastRoll.Dice[1])
	}
	return StateHash(hasher.Sum64())
}
