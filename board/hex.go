// Package board models the hex grid, its vertices and edges, and the
// adjacency queries the rules engine is built on.
// Hexes use axial coordinates (q, r) with pointy tops; the cube coordinate s
// is derived as -(q+r).
package board

import (
	"fmt"

	"settlers/utils"
)

// HexCoord identifies a board cell.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

func (h HexCoord) String() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

// Axial offsets of the six neighbours.
var (
	dirE  = HexCoord{Q: 1, R: 0}
	dirNE = HexCoord{Q: 1, R: -1}
	dirNW = HexCoord{Q: 0, R: -1}
	dirW  = HexCoord{Q: -1, R: 0}
	dirSW = HexCoord{Q: -1, R: 1}
	dirSE = HexCoord{Q: 0, R: 1}
)

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{dirE, dirNE, dirNW, dirW, dirSW, dirSE}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// HexDistance returns the hex-grid distance between two coordinates.
func HexDistance(a, b HexCoord) int {
	return max(utils.Abs(a.Q-b.Q), utils.Abs(a.R-b.R), utils.Abs(a.S()-b.S()))
}

// Terrain of a hex tile.
type Terrain string

const (
	Forest    Terrain = "forest"
	Hills     Terrain = "hills"
	Mountains Terrain = "mountains"
	Fields    Terrain = "fields"
	Pasture   Terrain = "pasture"
	Desert    Terrain = "desert"
	Sea       Terrain = "sea"
)

// Resource is one of the five tradeable card types.
type Resource string

const (
	Wood  Resource = "wood"
	Brick Resource = "brick"
	Ore   Resource = "ore"
	Wheat Resource = "wheat"
	Sheep Resource = "sheep"
)

// Resources lists every resource in a fixed order.
var Resources = []Resource{Wood, Brick, Ore, Wheat, Sheep}

func (r Resource) Valid() bool {
	return utils.Contains(Resources, r)
}

// Produces returns the resource a terrain yields, if any.
func (t Terrain) Produces() (Resource, bool) {
	switch t {
	case Forest:
		return Wood, true
	case Hills:
		return Brick, true
	case Mountains:
		return Ore, true
	case Fields:
		return Wheat, true
	case Pasture:
		return Sheep, true
	default:
		return "", false
	}
}

func (t Terrain) IsLand() bool {
	return t != Sea && t != ""
}

// Pips returns the number of two-die combinations that roll n. Seven and
// out-of-range numbers produce nothing and return 0.
func Pips(n int) int {
	if n < 2 || n > 12 || n == 7 {
		return 0
	}
	return 6 - utils.Abs(7-n)
}

// Hex is a single tile.
type Hex struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`
	Number  int      `json:"number,omitempty"` // 0 for desert and sea
}

// Resource returns the produced resource, if any.
func (h *Hex) Resource() (Resource, bool) {
	return h.Terrain.Produces()
}

// Pips returns the production weight of the hex.
func (h *Hex) Pips() int {
	if _, ok := h.Resource(); !ok {
		return 0
	}
	return Pips(h.Number)
}
