package board

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// Layout is the serialisable description of a board. It is recorded in the
// game_created event so replays rebuild the exact same board.
type Layout struct {
	Hexes []Hex      `json:"hexes"`
	Ports []PortSpec `json:"ports"`
}

// PortSpec places a port on a coastal edge. An empty resource is a 3:1 port.
type PortSpec struct {
	Edge     EdgeID   `json:"edge"`
	Resource Resource `json:"resource,omitempty"`
}

const (
	landRadius        = 2
	seaRadius         = 3
	maxNumberShuffles = 1000
)

var (
	standardTerrain = []Terrain{
		Forest, Forest, Forest, Forest,
		Pasture, Pasture, Pasture, Pasture,
		Fields, Fields, Fields, Fields,
		Hills, Hills, Hills,
		Mountains, Mountains, Mountains,
		Desert,
	}
	standardNumbers = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}
	standardPorts   = []Resource{"", "", "", "", Wood, Brick, Ore, Wheat, Sheep}
)

// StandardLayout shuffles the 19 land tiles, their number tokens and the 9
// ports. Number tokens are reshuffled until no two red numbers (6 and 8) touch.
func StandardLayout(rng *rand.Rand) Layout {
	land := ring(0, landRadius)
	terrain := append([]Terrain(nil), standardTerrain...)
	rng.Shuffle(len(terrain), func(i, j int) { terrain[i], terrain[j] = terrain[j], terrain[i] })

	var numbers []int
	for attempt := 0; attempt < maxNumberShuffles; attempt++ {
		numbers = append(numbers[:0], standardNumbers...)
		rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })
		if !redNumbersTouch(land, terrain, numbers) {
			break
		}
	}

	layout := Layout{}
	next := 0
	for i, coord := range land {
		h := Hex{Coord: coord, Terrain: terrain[i]}
		if terrain[i] != Desert {
			h.Number = numbers[next]
			next++
		}
		layout.Hexes = append(layout.Hexes, h)
	}
	for _, coord := range ring(seaRadius, seaRadius) {
		layout.Hexes = append(layout.Hexes, Hex{Coord: coord, Terrain: Sea})
	}

	ports := append([]Resource(nil), standardPorts...)
	rng.Shuffle(len(ports), func(i, j int) { ports[i], ports[j] = ports[j], ports[i] })
	coast := coastalEdges(land)
	for i, res := range ports {
		idx := int(math.Round(float64(i) * float64(len(coast)) / float64(len(ports))))
		layout.Ports = append(layout.Ports, PortSpec{Edge: coast[idx], Resource: res})
	}
	return layout
}

// ring returns every coordinate whose distance from the origin is in
// [minRadius, maxRadius], sorted row by row.
func ring(minRadius, maxRadius int) []HexCoord {
	var out []HexCoord
	origin := HexCoord{}
	for q := -maxRadius; q <= maxRadius; q++ {
		for r := -maxRadius; r <= maxRadius; r++ {
			c := HexCoord{Q: q, R: r}
			if d := HexDistance(origin, c); d >= minRadius && d <= maxRadius {
				out = append(out, c)
			}
		}
	}
	sortCoords(out)
	return out
}

func redNumbersTouch(land []HexCoord, terrain []Terrain, numbers []int) bool {
	red := make(map[HexCoord]bool)
	next := 0
	for i, coord := range land {
		if terrain[i] == Desert {
			continue
		}
		if n := numbers[next]; n == 6 || n == 8 {
			red[coord] = true
		}
		next++
	}
	for coord := range red {
		for _, n := range coord.Neighbors() {
			if red[n] {
				return true
			}
		}
	}
	return false
}

// coastalEdges returns the edges between land and sea, ordered by angle
// around the board centre.
func coastalEdges(land []HexCoord) []EdgeID {
	isLand := make(map[HexCoord]bool, len(land))
	for _, c := range land {
		isLand[c] = true
	}
	seen := make(map[EdgeID]bool)
	var coast []EdgeID
	for _, c := range land {
		for _, e := range Sides(c) {
			hexes := e.AdjacentHexes()
			if isLand[hexes[0]] == isLand[hexes[1]] || seen[e] {
				continue
			}
			seen[e] = true
			coast = append(coast, e)
		}
	}
	sort.Slice(coast, func(i, j int) bool { return edgeAngle(coast[i]) < edgeAngle(coast[j]) })
	return coast
}

func edgeAngle(e EdgeID) float64 {
	hexes := e.AdjacentHexes()
	var x, y float64
	for _, h := range hexes {
		x += math.Sqrt(3) * (float64(h.Q) + float64(h.R)/2)
		y += 1.5 * float64(h.R)
	}
	return math.Atan2(y, x)
}
