package board

import (
	"sort"

	"settlers/apperr"
)

// Vertex is an intersection of two or three hexes.
type Vertex struct {
	ID        VertexID
	Hexes     []HexCoord // hexes present on the board, land or sea
	Edges     []EdgeID
	Neighbors []VertexID
	Port      *Port
}

// Edge joins two vertices along the border of two hexes.
type Edge struct {
	ID        EdgeID
	Hexes     [2]HexCoord
	Endpoints [2]VertexID
}

// Port grants a better bank ratio to buildings on its two vertices.
type Port struct {
	Resource Resource    `json:"resource,omitempty"` // empty for a generic 3:1 port
	Edge     EdgeID      `json:"edge"`
	Vertices [2]VertexID `json:"vertices"`
}

// Generic reports whether the port trades any resource at 3:1.
func (p Port) Generic() bool {
	return p.Resource == ""
}

// Board is the static topology of one game. It never changes after New;
// buildings, roads and the robber live in the game state.
type Board struct {
	Hexes    map[HexCoord]*Hex
	Vertices map[VertexID]*Vertex
	Edges    map[EdgeID]*Edge
	Ports    []Port

	// Index-stable orderings so iteration never depends on map order.
	hexOrder    []HexCoord
	vertexOrder []VertexID
	edgeOrder   []EdgeID
	desert      HexCoord
	layout      Layout
}

// New builds the topology described by a layout. Vertices and edges are
// generated around every land hex.
func New(layout Layout) (*Board, error) {
	b := &Board{
		Hexes:    make(map[HexCoord]*Hex, len(layout.Hexes)),
		Vertices: make(map[VertexID]*Vertex),
		Edges:    make(map[EdgeID]*Edge),
		layout:   layout,
	}
	hasDesert := false
	for _, tile := range layout.Hexes {
		if _, dup := b.Hexes[tile.Coord]; dup {
			return nil, apperr.Validation("duplicate hex %s in layout", tile.Coord)
		}
		h := tile
		b.Hexes[tile.Coord] = &h
		b.hexOrder = append(b.hexOrder, tile.Coord)
		if tile.Terrain == Desert && !hasDesert {
			b.desert = tile.Coord
			hasDesert = true
		}
	}
	sortCoords(b.hexOrder)

	for _, coord := range b.hexOrder {
		if !b.Hexes[coord].Terrain.IsLand() {
			continue
		}
		for _, id := range Sides(coord) {
			b.addEdge(id)
		}
	}
	for _, id := range b.edgeOrder {
		a, c := id.Endpoints()
		b.link(a, c, id)
		b.link(c, a, id)
	}
	sort.Slice(b.vertexOrder, func(i, j int) bool { return vertexLess(b.vertexOrder[i], b.vertexOrder[j]) })
	sort.Slice(b.edgeOrder, func(i, j int) bool { return edgeLess(b.edgeOrder[i], b.edgeOrder[j]) })

	for _, ps := range layout.Ports {
		edge, ok := b.Edges[ps.Edge]
		if !ok {
			return nil, apperr.NotFound("port edge %s", ps.Edge)
		}
		port := Port{Resource: ps.Resource, Edge: ps.Edge, Vertices: edge.Endpoints}
		b.Ports = append(b.Ports, port)
		for _, v := range edge.Endpoints {
			p := port
			b.Vertices[v].Port = &p
		}
	}
	return b, nil
}

func (b *Board) addEdge(id EdgeID) {
	if _, ok := b.Edges[id]; ok {
		return
	}
	a, c := id.Endpoints()
	b.Edges[id] = &Edge{ID: id, Hexes: id.AdjacentHexes(), Endpoints: [2]VertexID{a, c}}
	b.edgeOrder = append(b.edgeOrder, id)
	for _, v := range []VertexID{a, c} {
		if _, ok := b.Vertices[v]; ok {
			continue
		}
		vertex := &Vertex{ID: v}
		for _, h := range v.AdjacentHexes() {
			if _, ok := b.Hexes[h]; ok {
				vertex.Hexes = append(vertex.Hexes, h)
			}
		}
		b.Vertices[v] = vertex
		b.vertexOrder = append(b.vertexOrder, v)
	}
}

func (b *Board) link(from, to VertexID, via EdgeID) {
	v := b.Vertices[from]
	v.Edges = append(v.Edges, via)
	v.Neighbors = append(v.Neighbors, to)
}

// Layout returns the layout the board was built from.
func (b *Board) Layout() Layout {
	return b.layout
}

// Desert returns the first desert hex, the robber's starting location.
func (b *Board) Desert() HexCoord {
	return b.desert
}

// HexIDs returns every hex coordinate in a stable order.
func (b *Board) HexIDs() []HexCoord {
	return b.hexOrder
}

// VertexIDs returns every vertex id in a stable order.
func (b *Board) VertexIDs() []VertexID {
	return b.vertexOrder
}

// EdgeIDs returns every edge id in a stable order.
func (b *Board) EdgeIDs() []EdgeID {
	return b.edgeOrder
}

func (b *Board) Hex(c HexCoord) (*Hex, error) {
	h, ok := b.Hexes[c]
	if !ok {
		return nil, apperr.NotFound("hex %s", c)
	}
	return h, nil
}

func (b *Board) Vertex(id VertexID) (*Vertex, error) {
	v, ok := b.Vertices[id]
	if !ok {
		return nil, apperr.NotFound("vertex %s", id)
	}
	return v, nil
}

func (b *Board) Edge(id EdgeID) (*Edge, error) {
	e, ok := b.Edges[id]
	if !ok {
		return nil, apperr.NotFound("edge %s", id)
	}
	return e, nil
}

// AdjacentHexes returns the board hexes touching a vertex.
func (b *Board) AdjacentHexes(id VertexID) ([]HexCoord, error) {
	v, err := b.Vertex(id)
	if err != nil {
		return nil, err
	}
	return v.Hexes, nil
}

// ConnectedEdges returns the edges meeting at a vertex.
func (b *Board) ConnectedEdges(id VertexID) ([]EdgeID, error) {
	v, err := b.Vertex(id)
	if err != nil {
		return nil, err
	}
	return v.Edges, nil
}

// AdjacentVertices returns the vertices one edge away.
func (b *Board) AdjacentVertices(id VertexID) ([]VertexID, error) {
	v, err := b.Vertex(id)
	if err != nil {
		return nil, err
	}
	return v.Neighbors, nil
}

// Endpoints returns the two vertices of an edge.
func (b *Board) Endpoints(id EdgeID) (VertexID, VertexID, error) {
	e, err := b.Edge(id)
	if err != nil {
		return VertexID{}, VertexID{}, err
	}
	return e.Endpoints[0], e.Endpoints[1], nil
}

// VerticesOf returns the board vertices on the corners of a hex.
func (b *Board) VerticesOf(c HexCoord) []VertexID {
	var out []VertexID
	for _, v := range Corners(c) {
		if _, ok := b.Vertices[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Distance returns the number of edges on the shortest path between two
// vertices, not the hex distance between hexes they touch. The distance rule
// keeps buildings at least 2 edges apart, so only this count is exact for
// neighbouring corners of the same hex.
func (b *Board) Distance(from, to VertexID) (int, error) {
	if _, err := b.Vertex(from); err != nil {
		return 0, err
	}
	if _, err := b.Vertex(to); err != nil {
		return 0, err
	}
	if from == to {
		return 0, nil
	}
	// Breadth first over the vertex graph; the first visit of to is shortest.
	dist := map[VertexID]int{from: 0}
	queue := []VertexID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range b.Vertices[current].Neighbors {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[current] + 1
			if n == to {
				return dist[n], nil
			}
			queue = append(queue, n)
		}
	}
	return 0, apperr.NotFound("no path from %s to %s", from, to)
}

// ProducingHexes returns the land hexes around a vertex that yield a resource.
func (b *Board) ProducingHexes(id VertexID) []*Hex {
	var out []*Hex
	v, ok := b.Vertices[id]
	if !ok {
		return nil
	}
	for _, c := range v.Hexes {
		h := b.Hexes[c]
		if _, ok := h.Resource(); ok {
			out = append(out, h)
		}
	}
	return out
}

func sortCoords(coords []HexCoord) {
	sort.Slice(coords, func(i, j int) bool { return coordLess(coords[i], coords[j]) })
}

func coordLess(a, b HexCoord) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	return a.Q < b.Q
}

func vertexLess(a, b VertexID) bool {
	if a.Hex != b.Hex {
		return coordLess(a.Hex, b.Hex)
	}
	return a.Dir < b.Dir
}

func edgeLess(a, b EdgeID) bool {
	if a.Hex != b.Hex {
		return coordLess(a.Hex, b.Hex)
	}
	return a.Dir < b.Dir
}
