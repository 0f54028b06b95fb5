package board

import (
	"fmt"
	"strconv"
	"strings"
)

// VertexDir tags which corner of its representative hex a vertex is.
// Every vertex is the north or the south corner of exactly one hex.
type VertexDir string

const (
	North VertexDir = "N"
	South VertexDir = "S"
)

// VertexID identifies an intersection.
type VertexID struct {
	Hex HexCoord
	Dir VertexDir
}

// EdgeDir tags which side of its representative hex an edge is.
// Every edge is the north-east, north-west or west side of exactly one hex.
type EdgeDir string

const (
	NorthEast EdgeDir = "NE"
	NorthWest EdgeDir = "NW"
	West      EdgeDir = "W"
)

// EdgeID identifies a path between two intersections.
type EdgeID struct {
	Hex HexCoord
	Dir EdgeDir
}

// AdjacentHexes returns the three hex coordinates meeting at the vertex,
// whether or not they are on a board.
func (v VertexID) AdjacentHexes() [3]HexCoord {
	if v.Dir == North {
		return [3]HexCoord{v.Hex, v.Hex.Add(dirNW), v.Hex.Add(dirNE)}
	}
	return [3]HexCoord{v.Hex, v.Hex.Add(dirSW), v.Hex.Add(dirSE)}
}

// AdjacentHexes returns the two hex coordinates sharing the edge.
func (e EdgeID) AdjacentHexes() [2]HexCoord {
	switch e.Dir {
	case NorthEast:
		return [2]HexCoord{e.Hex, e.Hex.Add(dirNE)}
	case NorthWest:
		return [2]HexCoord{e.Hex, e.Hex.Add(dirNW)}
	default:
		return [2]HexCoord{e.Hex, e.Hex.Add(dirW)}
	}
}

// Endpoints returns the two vertices the edge joins.
func (e EdgeID) Endpoints() (VertexID, VertexID) {
	h := e.Hex
	switch e.Dir {
	case NorthEast:
		return VertexID{h, North}, VertexID{h.Add(dirNE), South}
	case NorthWest:
		return VertexID{h.Add(dirNW), South}, VertexID{h, North}
	default:
		return VertexID{h.Add(dirSW), North}, VertexID{h.Add(dirNW), South}
	}
}

// Corners returns the six vertices of a hex, clockwise from north.
func Corners(h HexCoord) [6]VertexID {
	return [6]VertexID{
		{h, North},
		{h.Add(dirNE), South},
		{h.Add(dirSE), North},
		{h, South},
		{h.Add(dirSW), North},
		{h.Add(dirNW), South},
	}
}

// Sides returns the six edges of a hex in canonical form, clockwise from
// north-east.
func Sides(h HexCoord) [6]EdgeID {
	return [6]EdgeID{
		{h, NorthEast},
		{h.Add(dirE), West},
		{h.Add(dirSE), NorthWest},
		{h.Add(dirSW), NorthEast},
		{h, West},
		{h, NorthWest},
	}
}

func (v VertexID) String() string {
	return fmt.Sprintf("v:%d,%d:%s", v.Hex.Q, v.Hex.R, v.Dir)
}

func (e EdgeID) String() string {
	return fmt.Sprintf("e:%d,%d:%s", e.Hex.Q, e.Hex.R, e.Dir)
}

// MarshalText lets ids serve as JSON object keys.
func (v VertexID) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *VertexID) UnmarshalText(text []byte) error {
	parsed, err := ParseVertexID(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (e EdgeID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EdgeID) UnmarshalText(text []byte) error {
	parsed, err := ParseEdgeID(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseVertexID parses the "v:q,r:N" form produced by VertexID.String.
func ParseVertexID(s string) (VertexID, error) {
	hex, dir, err := parseID(s, "v")
	if err != nil {
		return VertexID{}, err
	}
	switch VertexDir(dir) {
	case North, South:
		return VertexID{Hex: hex, Dir: VertexDir(dir)}, nil
	}
	return VertexID{}, fmt.Errorf("invalid vertex direction %q", dir)
}

// ParseEdgeID parses the "e:q,r:NE" form produced by EdgeID.String.
func ParseEdgeID(s string) (EdgeID, error) {
	hex, dir, err := parseID(s, "e")
	if err != nil {
		return EdgeID{}, err
	}
	switch EdgeDir(dir) {
	case NorthEast, NorthWest, West:
		return EdgeID{Hex: hex, Dir: EdgeDir(dir)}, nil
	}
	return EdgeID{}, fmt.Errorf("invalid edge direction %q", dir)
}

func parseID(s, prefix string) (HexCoord, string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] != prefix {
		return HexCoord{}, "", fmt.Errorf("malformed id %q", s)
	}
	coords := strings.Split(parts[1], ",")
	if len(coords) != 2 {
		return HexCoord{}, "", fmt.Errorf("malformed coordinates in %q", s)
	}
	q, err := strconv.Atoi(coords[0])
	if err != nil {
		return HexCoord{}, "", fmt.Errorf("malformed q in %q: %w", s, err)
	}
	r, err := strconv.Atoi(coords[1])
	if err != nil {
		return HexCoord{}, "", fmt.Errorf("malformed r in %q: %w", s, err)
	}
	return HexCoord{Q: q, R: r}, parts[2], nil
}
