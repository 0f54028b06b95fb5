// meta/meta.go
package meta

// VICTORY_POINTS is the score that ends the game.
const VICTORY_POINTS = 10

// RESOURCE_SUPPLY is the number of cards of each resource in the bank.
const RESOURCE_SUPPLY = 19

// MAX_HAND defines the hand size above which a rolled 7 forces a discard.
const MAX_HAND = 7

// Building inventory per player.
const (
	MAX_SETTLEMENTS = 5
	MAX_CITIES      = 4
	MAX_ROADS       = 15
)

// Achievement thresholds.
const (
	LONGEST_ROAD_MIN  = 5
	LARGEST_ARMY_MIN  = 3
	ACHIEVEMENT_BONUS = 2
)

// Development deck composition.
const (
	KNIGHT_CARDS        = 14
	VICTORY_CARDS       = 5
	ROAD_BUILDING_CARDS = 2
	YEAR_OF_PLENTY      = 2
	MONOPOLY_CARDS      = 2
)

// Trade ratios with the bank.
const (
	BANK_RATIO          = 4
	GENERIC_PORT_RATIO  = 3
	SPECIFIC_PORT_RATIO = 2
)

// MAX_TURNS bounds a self-play game.
const MAX_TURNS = 300

// MIN_PLAYERS and MAX_PLAYERS bound a game's seats.
const (
	MIN_PLAYERS = 2
	MAX_PLAYERS = 4
)
