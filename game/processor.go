package game

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"settlers/apperr"
	"settlers/board"
	"settlers/meta"
)

// Rand is the source of chance outcomes: dice, card draws and steals.
type Rand interface {
	Intn(n int) int
}

type Option func(p *Processor)

// WithRand sets the random source used to resolve chance outcomes.
func WithRand(rng Rand) Option {
	return func(p *Processor) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithClock sets the clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// Processor is the single gate through which game state changes. Process
// validates an action against a state and, on success, resolves its random
// outcomes into an event and returns the state that event produces. Neither
// the input state nor anything else is modified; the caller persists the
// event and swaps in the new state.
type Processor struct {
	log zerolog.Logger
	rng Rand
	now func() time.Time
}

func NewProcessor(logger zerolog.Logger, options ...Option) *Processor {
	p := &Processor{
		log: logger,
		rng: rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Process validates and applies an action.
func (p *Processor) Process(gs *GameState, a Action) (*GameState, Event, error) {
	if gs == nil {
		return nil, Event{}, apperr.NotFound("game")
	}
	if err := p.Validate(gs, a); err != nil {
		p.log.Debug().Str("game", gs.ID).Str("action", a.String()).Err(err).Msg("action rejected")
		return nil, Event{}, err
	}
	ev := Event{Type: eventTypeOf(a.Type), Payload: p.resolve(gs, a), At: p.now()}
	next, err := Apply(gs, ev)
	if err != nil {
		return nil, Event{}, err
	}
	if next.Ended() && !gs.Ended() {
		p.log.Info().Str("game", gs.ID).Str("winner", next.Winner).Int("turn", next.Turn).Msg("game won")
	}
	return next, ev, nil
}

func eventTypeOf(t ActionType) EventType {
	switch t {
	case RollAction:
		return DiceRolled
	case BuildSettlementAction:
		return SettlementBuilt
	case BuildCityAction:
		return CityBuilt
	case BuildRoadAction:
		return RoadBuilt
	case BuyCardAction:
		return CardBought
	case PlayCardAction:
		return CardPlayed
	case DiscardAction:
		return ResourcesDiscarded
	case MoveRobberAction:
		return RobberMoved
	case StealAction:
		return ResourceStolen
	case TradeAction:
		return BankTraded
	default:
		return TurnEnded
	}
}

// resolve builds the event payload for a validated action, drawing any
// random outcome it needs.
func (p *Processor) resolve(gs *GameState, a Action) any {
	switch a.Type {
	case RollAction:
		return &DiceRolledPayload{PlayerID: a.PlayerID, Dice: [2]int{p.rng.Intn(6) + 1, p.rng.Intn(6) + 1}}
	case BuildSettlementAction:
		return &SettlementBuiltPayload{PlayerID: a.PlayerID, Vertex: a.Vertex}
	case BuildCityAction:
		return &CityBuiltPayload{PlayerID: a.PlayerID, Vertex: a.Vertex}
	case BuildRoadAction:
		return &RoadBuiltPayload{PlayerID: a.PlayerID, Edge: a.Edge, Free: !gs.Phase.IsSetup() && gs.FreeRoads > 0}
	case BuyCardAction:
		card := gs.Deck[p.rng.Intn(len(gs.Deck))]
		return &CardBoughtPayload{PlayerID: a.PlayerID, CardID: card.ID}
	case PlayCardAction:
		player, _ := gs.Player(a.PlayerID)
		card := player.Cards[cardIndex(player, a, gs.Turn)]
		return &CardPlayedPayload{
			PlayerID:  a.PlayerID,
			CardID:    card.ID,
			CardType:  card.Type,
			Resources: a.Resources,
			Resource:  a.Resource,
		}
	case DiscardAction:
		return &ResourcesDiscardedPayload{PlayerID: a.PlayerID, Resources: a.Resources}
	case MoveRobberAction:
		return &RobberMovedPayload{PlayerID: a.PlayerID, Hex: a.Hex}
	case StealAction:
		victim, _ := gs.Player(a.Target)
		cards := victim.Resources.Cards()
		return &ResourceStolenPayload{PlayerID: a.PlayerID, Victim: a.Target, Resource: cards[p.rng.Intn(len(cards))]}
	case TradeAction:
		ratio := gs.TradeRatio(a.PlayerID, a.Give)
		return &BankTradedPayload{
			PlayerID: a.PlayerID,
			Give:     Single(a.Give, ratio*a.Amount),
			Receive:  Single(a.Receive, a.Amount),
		}
	default:
		return &TurnEndedPayload{PlayerID: a.PlayerID, NextPlayer: gs.NextPlayer(a.PlayerID)}
	}
}

// cardIndex finds the card an action refers to: by id when given, otherwise
// the first card of the requested type that is playable this turn.
func cardIndex(p *Player, a Action, turn int) int {
	if a.CardID != "" {
		return p.Card(a.CardID)
	}
	return p.PlayableCard(a.CardType, turn)
}

// Validate checks an action against the state without changing anything.
func (p *Processor) Validate(gs *GameState, a Action) error {
	return Validate(gs, a)
}

// Validate checks an action against the state without changing anything.
func Validate(gs *GameState, a Action) error {
	if gs == nil {
		return apperr.NotFound("game")
	}
	if gs.Ended() {
		return apperr.Validation("game is over")
	}
	player, ok := gs.Player(a.PlayerID)
	if !ok {
		return apperr.NotFound("player %s", a.PlayerID)
	}

	if a.Type == DiscardAction {
		return validateDiscard(gs, player, a)
	}
	if a.PlayerID != gs.CurrentPlayer {
		return apperr.Validation("it is %s's turn, not %s's", gs.CurrentPlayer, a.PlayerID)
	}

	switch a.Type {
	case RollAction:
		return expectPhase(gs, a, RollPhase)
	case BuildSettlementAction:
		return validateSettlement(gs, player, a)
	case BuildCityAction:
		return validateCity(gs, player, a)
	case BuildRoadAction:
		return validateRoad(gs, player, a)
	case BuyCardAction:
		if err := expectPhase(gs, a, ActionsPhase); err != nil {
			return err
		}
		if len(gs.Deck) == 0 {
			return apperr.Validation("development deck is empty")
		}
		return canAfford(player, CardCost)
	case PlayCardAction:
		return validatePlayCard(gs, player, a)
	case MoveRobberAction:
		return validateMoveRobber(gs, a)
	case StealAction:
		if err := expectPhase(gs, a, StealPhase); err != nil {
			return err
		}
		for _, id := range gs.StealCandidates() {
			if id == a.Target {
				return nil
			}
		}
		return apperr.Validation("cannot steal from %q", a.Target)
	case TradeAction:
		return validateTrade(gs, player, a)
	case EndTurnAction:
		if err := expectPhase(gs, a, ActionsPhase); err != nil {
			return err
		}
		if gs.freeRoadAvailable(player.ID) {
			return apperr.Validation("%d free roads still to place", gs.FreeRoads)
		}
		return nil
	}
	return apperr.Validation("unknown action type %q", a.Type)
}

func expectPhase(gs *GameState, a Action, phases ...Phase) error {
	for _, phase := range phases {
		if gs.Phase == phase {
			return nil
		}
	}
	return apperr.Validation("%s is not allowed in phase %s", a.Type, gs.Phase).
		WithMetadata("phase", string(gs.Phase))
}

func canAfford(p *Player, cost Resources) error {
	if !p.Resources.Covers(cost) {
		return apperr.Validation("insufficient resources: missing %s", p.Resources.Missing(cost))
	}
	return nil
}

func validateSettlement(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, Setup1Phase, Setup2Phase, ActionsPhase); err != nil {
		return err
	}
	setup := gs.Phase.IsSetup()
	if setup && gs.SetupVertex != nil {
		return apperr.Validation("place a road next to %s first", *gs.SetupVertex)
	}
	if p.Inventory.Settlements == 0 {
		return apperr.Validation("no settlements left")
	}
	if !setup {
		if err := canAfford(p, SettlementCost); err != nil {
			return err
		}
	}
	return gs.checkSettlementSite(p.ID, a.Vertex, setup)
}

func validateCity(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, ActionsPhase); err != nil {
		return err
	}
	if _, err := gs.Board.Vertex(a.Vertex); err != nil {
		return err
	}
	b, ok := gs.Buildings[a.Vertex]
	if !ok || b.Type != Settlement || b.Owner != p.ID {
		return apperr.Validation("vertex %s does not hold a settlement of %s", a.Vertex, p.ID)
	}
	if p.Inventory.Cities == 0 {
		return apperr.Validation("no cities left")
	}
	return canAfford(p, CityCost)
}

func validateRoad(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, Setup1Phase, Setup2Phase, ActionsPhase); err != nil {
		return err
	}
	if p.Inventory.Roads == 0 {
		return apperr.Validation("no roads left")
	}
	if gs.Phase == ActionsPhase && gs.FreeRoads == 0 {
		if err := canAfford(p, RoadCost); err != nil {
			return err
		}
	}
	return gs.checkRoadSite(p.ID, a.Edge)
}

func validatePlayCard(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, RollPhase, ActionsPhase); err != nil {
		return err
	}
	idx := cardIndex(p, a, gs.Turn)
	if idx < 0 {
		if a.CardID != "" {
			return apperr.NotFound("card %s", a.CardID)
		}
		return apperr.Validation("no playable %s card", a.CardType)
	}
	card := p.Cards[idx]
	switch {
	case card.Type == VictoryPoint:
		return apperr.Validation("victory point cards are never played")
	case card.Played():
		return apperr.Validation("card %s was already played", card.ID)
	case card.PurchasedTurn >= gs.Turn:
		return apperr.Validation("card %s cannot be played on the turn it was bought", card.ID)
	case gs.CardPlayed:
		return apperr.Validation("a development card was already played this turn")
	case gs.Phase == RollPhase && card.Type != Knight:
		return apperr.Validation("only a knight may be played before rolling")
	}

	switch card.Type {
	case YearOfPlenty:
		if !a.Resources.Valid() || a.Resources.Total() != 2 {
			return apperr.Validation("year of plenty takes exactly 2 resources, got %s", a.Resources)
		}
		if !gs.Bank.Covers(a.Resources) {
			return apperr.Validation("bank cannot supply %s", a.Resources)
		}
	case Monopoly:
		if !a.Resource.Valid() {
			return apperr.Validation("unknown resource %q", a.Resource)
		}
	case RoadBuilding:
		if p.Inventory.Roads == 0 {
			return apperr.Validation("no roads left")
		}
	}
	return nil
}

func validateDiscard(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, DiscardPhase); err != nil {
		return err
	}
	owed := gs.PendingDiscards[p.ID]
	if owed == 0 {
		return apperr.Validation("%s does not need to discard", p.ID)
	}
	if !a.Resources.Valid() || !p.Resources.Covers(a.Resources) {
		return apperr.Validation("%s cannot discard %s", p.ID, a.Resources)
	}
	if a.Resources.Total() != owed {
		return apperr.Validation("%s must discard exactly %d cards to keep %d, not %d",
			p.ID, owed, p.Resources.Total()-owed, a.Resources.Total())
	}
	return nil
}

func validateMoveRobber(gs *GameState, a Action) error {
	if err := expectPhase(gs, a, MoveRobberPhase); err != nil {
		return err
	}
	h, err := gs.Board.Hex(a.Hex)
	if err != nil {
		return err
	}
	if !h.Terrain.IsLand() {
		return apperr.Validation("the robber cannot move to sea hex %s", a.Hex)
	}
	if a.Hex == gs.Robber {
		return apperr.Validation("the robber is already on %s", a.Hex)
	}
	return nil
}

func validateTrade(gs *GameState, p *Player, a Action) error {
	if err := expectPhase(gs, a, ActionsPhase); err != nil {
		return err
	}
	if !a.Give.Valid() || !a.Receive.Valid() {
		return apperr.Validation("unknown resource in trade %s for %s", a.Give, a.Receive)
	}
	if a.Give == a.Receive {
		return apperr.Validation("cannot trade %s for itself", a.Give)
	}
	if a.Amount < 1 {
		return apperr.Validation("trade amount must be positive")
	}
	give := gs.TradeRatio(p.ID, a.Give) * a.Amount
	if p.Resources.Get(a.Give) < give {
		return apperr.Validation("insufficient resources: trade needs %d %s", give, a.Give)
	}
	if gs.Bank.Get(a.Receive) < a.Amount {
		return apperr.Validation("bank holds only %d %s", gs.Bank.Get(a.Receive), a.Receive)
	}
	return nil
}

// Seat describes one player of a new game.
type Seat struct {
	ID    string
	Name  string
	Color string
	IsAI  bool
}

// Setup describes a new game. The seed drives the board layout, the deck
// order and, when Shuffle is set, the seating order.
type Setup struct {
	GameID  string
	Seats   []Seat
	Seed    uint64
	Shuffle bool
}

// NewGame builds the events that create and start a game and returns the
// resulting state.
func (p *Processor) NewGame(setup Setup) (*GameState, []Event, error) {
	if n := len(setup.Seats); n < meta.MIN_PLAYERS || n > meta.MAX_PLAYERS {
		return nil, nil, apperr.Validation("a game needs %d to %d players, got %d", meta.MIN_PLAYERS, meta.MAX_PLAYERS, n)
	}
	seen := make(map[string]bool)
	for _, s := range setup.Seats {
		if s.ID == "" || seen[s.ID] {
			return nil, nil, apperr.Validation("player ids must be unique and non-empty")
		}
		seen[s.ID] = true
	}

	rng := rand.New(rand.NewSource(setup.Seed))
	layout := board.StandardLayout(rng)
	deck := NewDeck(rng)
	seats := append([]Seat(nil), setup.Seats...)
	if setup.Shuffle {
		rng.Shuffle(len(seats), func(i, j int) { seats[i], seats[j] = seats[j], seats[i] })
	}

	at := p.now()
	events := []Event{{Type: GameCreated, Payload: &GameCreatedPayload{GameID: setup.GameID, Layout: layout, Deck: deck}, At: at}}
	for i, s := range seats {
		events = append(events, Event{Type: PlayerJoined, At: at, Payload: &PlayerJoinedPayload{
			PlayerID:  s.ID,
			Name:      s.Name,
			Color:     s.Color,
			JoinOrder: i,
			IsAI:      s.IsAI,
		}})
	}
	events = append(events, Event{Type: GameStarted, Payload: &GameStartedPayload{FirstPlayer: seats[0].ID}, At: at})

	gs, err := Replay(events)
	if err != nil {
		return nil, nil, err
	}
	p.log.Info().Str("game", setup.GameID).Int("players", len(seats)).Uint64("seed", setup.Seed).Msg("game created")
	return gs, events, nil
}

// Replay folds Apply over events in order.
func Replay(events []Event) (*GameState, error) {
	var gs *GameState
	for _, ev := range events {
		next, err := Apply(gs, ev)
		if err != nil {
			return nil, err
		}
		gs = next
	}
	if gs == nil {
		return nil, apperr.NotFound("game")
	}
	return gs, nil
}
