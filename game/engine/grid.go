package engine

// Grid is the fixed-size tile store. Every in-range coordinate holds exactly
// one tile; out-of-range lookups yield nil, which doubles as the off-board
// sentinel for movement and ray termination.
type Grid struct {
	Tiles [][]Tile `json:"tiles"`
}

// NewGrid creates an empty GridSize x GridSize grid of grass tiles.
func NewGrid() *Grid {
	tiles := make([][]Tile, GridSize)
	for y := range tiles {
		tiles[y] = make([]Tile, GridSize)
		for x := range tiles[y] {
			tiles[y][x] = Tile{Ground: Ground{Type: Grass}}
		}
	}
	return &Grid{Tiles: tiles}
}

// At returns the tile at p, or nil if p is off the board. This is the sole
// addressing mechanism; callers never index Tiles directly, so off-board
// arithmetic can never panic.
func (g *Grid) At(p Vec) *Tile {
	if p.Y < 0 || p.Y >= len(g.Tiles) || p.X < 0 || p.X >= len(g.Tiles[p.Y]) {
		return nil
	}
	return &g.Tiles[p.Y][p.X]
}

// Clone deep-copies the grid, including objects and their gun payloads, so a
// level's template grid is never mutated in place.
func (g *Grid) Clone() *Grid {
	tiles := make([][]Tile, len(g.Tiles))
	for y, row := range g.Tiles {
		tiles[y] = make([]Tile, len(row))
		for x, t := range row {
			nt := Tile{Ground: t.Ground}
			if t.Object != nil {
				nt.Object = NewObjectFromSpec(t.Object.Spec())
			}
			if t.Exit != nil {
				e := *t.Exit
				nt.Exit = &e
			}
			tiles[y][x] = nt
		}
	}
	return &Grid{Tiles: tiles}
}

// Find returns the coordinates of every object of the given kind in row-major
// order.
func (g *Grid) Find(kind Kind) []Vec {
	var out []Vec
	for y, row := range g.Tiles {
		for x := range row {
			if obj := row[x].Object; obj != nil && obj.Kind == kind {
				out = append(out, Vec{x, y})
			}
		}
	}
	return out
}

// CountObjects counts objects of the given kind.
func (g *Grid) CountObjects(kind Kind) int {
	return len(g.Find(kind))
}

// slideDestination resolves the resting tile for a move from src in dir,
// extending across ice: while the destination is empty ice and the tile
// beyond it is empty too, the destination advances one more step.
func (g *Grid) slideDestination(src, dir Vec) Vec {
	dst := src.Add(dir)
	for {
		t := g.At(dst)
		if t == nil || t.Object != nil || t.Ground.Type != Ice {
			break
		}
		beyond := g.At(dst.Add(dir))
		if beyond == nil || beyond.Object != nil {
			break
		}
		dst = dst.Add(dir)
	}
	return dst
}
