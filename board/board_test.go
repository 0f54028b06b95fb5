package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"settlers/apperr"
)

func newStandardBoard(t *testing.T, seed uint64) *Board {
	t.Helper()
	b, err := New(StandardLayout(rand.New(rand.NewSource(seed))))
	require.NoError(t, err)
	return b
}

func TestStandardBoard(t *testing.T) {
	b := newStandardBoard(t, 7)

	t.Run("counts", func(t *testing.T) {
		require.Len(t, b.Hexes, 37)
		require.Len(t, b.Vertices, 54)
		require.Len(t, b.Edges, 72)
		require.Len(t, b.Ports, 9)
		require.Len(t, b.VertexIDs(), 54)
		require.Len(t, b.EdgeIDs(), 72)
	})

	t.Run("cube invariant", func(t *testing.T) {
		for _, c := range b.HexIDs() {
			require.Equal(t, 0, c.Q+c.R+c.S())
		}
	})

	t.Run("terrain and numbers", func(t *testing.T) {
		land, deserts, numbered := 0, 0, 0
		for _, h := range b.Hexes {
			if !h.Terrain.IsLand() {
				require.Zero(t, h.Number)
				continue
			}
			land++
			if h.Terrain == Desert {
				deserts++
				require.Zero(t, h.Number)
				require.Equal(t, h.Coord, b.Desert())
				continue
			}
			numbered++
			require.NotEqual(t, 7, h.Number)
		}
		require.Equal(t, 19, land)
		require.Equal(t, 1, deserts)
		require.Equal(t, 18, numbered)
	})

	t.Run("red numbers never touch", func(t *testing.T) {
		for _, h := range b.Hexes {
			if h.Number != 6 && h.Number != 8 {
				continue
			}
			for _, n := range h.Coord.Neighbors() {
				if other, ok := b.Hexes[n]; ok {
					require.False(t, other.Number == 6 || other.Number == 8, "%s and %s", h.Coord, n)
				}
			}
		}
	})

	t.Run("ports sit on the coast", func(t *testing.T) {
		generic := 0
		for _, p := range b.Ports {
			hexes := b.Edges[p.Edge].Hexes
			require.NotEqual(t, b.Hexes[hexes[0]].Terrain.IsLand(), b.Hexes[hexes[1]].Terrain.IsLand())
			for _, v := range p.Vertices {
				require.NotNil(t, b.Vertices[v].Port)
			}
			if p.Generic() {
				generic++
			}
		}
		require.Equal(t, 4, generic)
	})

	t.Run("same seed same layout", func(t *testing.T) {
		require.Equal(t, b.Layout(), newStandardBoard(t, 7).Layout())
	})
}

func TestAdjacency(t *testing.T) {
	b := newStandardBoard(t, 1)
	centre := VertexID{Hex: HexCoord{0, 0}, Dir: North}

	t.Run("inner vertices touch three hexes", func(t *testing.T) {
		hexes, err := b.AdjacentHexes(centre)
		require.NoError(t, err)
		require.ElementsMatch(t, []HexCoord{{0, 0}, {0, -1}, {1, -1}}, hexes)

		edges, err := b.ConnectedEdges(centre)
		require.NoError(t, err)
		require.Len(t, edges, 3)
	})

	t.Run("coastal vertices have two or three edges", func(t *testing.T) {
		for _, id := range b.VertexIDs() {
			v := b.Vertices[id]
			require.GreaterOrEqual(t, len(v.Edges), 2)
			require.LessOrEqual(t, len(v.Edges), 3)
			require.Len(t, v.Hexes, 3, "sea ring surrounds every land vertex")
		}
	})

	t.Run("endpoints are corners of both hexes", func(t *testing.T) {
		for _, id := range b.EdgeIDs() {
			a, c, err := b.Endpoints(id)
			require.NoError(t, err)
			require.NotEqual(t, a, c)
			for _, h := range b.Edges[id].Hexes {
				corners := Corners(h)
				require.Contains(t, corners[:], a)
				require.Contains(t, corners[:], c)
			}
		}
	})

	t.Run("hex corners and sides agree", func(t *testing.T) {
		corners := Corners(HexCoord{1, -1})
		sides := Sides(HexCoord{1, -1})
		for i, side := range sides {
			a, c := side.Endpoints()
			require.ElementsMatch(t, []VertexID{corners[i], corners[(i+1)%6]}, []VertexID{a, c}, "side %d", i)
		}
	})

	t.Run("distance", func(t *testing.T) {
		d, err := b.Distance(centre, centre)
		require.NoError(t, err)
		require.Zero(t, d)

		for _, n := range b.Vertices[centre].Neighbors {
			d, err := b.Distance(centre, n)
			require.NoError(t, err)
			require.Equal(t, 1, d)
		}

		opposite := VertexID{Hex: HexCoord{0, 0}, Dir: South}
		d, err = b.Distance(centre, opposite)
		require.NoError(t, err)
		require.Equal(t, 3, d)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		far := VertexID{Hex: HexCoord{9, 9}, Dir: North}
		_, err := b.AdjacentHexes(far)
		require.True(t, apperr.IsNotFound(err))
		_, err = b.Distance(centre, far)
		require.True(t, apperr.IsNotFound(err))
		_, _, err = b.Endpoints(EdgeID{Hex: HexCoord{9, 9}, Dir: West})
		require.True(t, apperr.IsNotFound(err))
		_, err = b.Hex(HexCoord{5, 5})
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestIDs(t *testing.T) {
	t.Run("round trip as map keys", func(t *testing.T) {
		in := map[VertexID]EdgeID{
			{Hex: HexCoord{-2, 1}, Dir: South}: {Hex: HexCoord{0, -2}, Dir: NorthWest},
		}
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		require.JSONEq(t, `{"v:-2,1:S":"e:0,-2:NW"}`, string(raw))

		var out map[VertexID]EdgeID
		require.NoError(t, json.Unmarshal(raw, &out))
		require.Equal(t, in, out)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "v:1,2", "e:1,2:N", "v:a,2:N", "v:1,2:NE"} {
			_, errV := ParseVertexID(s)
			_, errE := ParseEdgeID(s)
			require.True(t, errV != nil && errE != nil, s)
		}
	})
}

func TestPips(t *testing.T) {
	require.Equal(t, 5, Pips(6))
	require.Equal(t, 5, Pips(8))
	require.Equal(t, 1, Pips(2))
	require.Equal(t, 1, Pips(12))
	require.Zero(t, Pips(7))
	require.Zero(t, Pips(13))
}
