package domino

// Side selects which end of the chain a tile is played on.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// End is one exposed end of the chain: the outward pip value and the tile
// exposing it.
type End struct {
	Value  uint8 `json:"value"`
	TileID uint8 `json:"tileId"`
}

// Board is the chain value object. Invariant: len(Tiles) == 0 exactly when
// both ends are nil; otherwise Left.Value is the outward pip of Tiles[0]
// and Right.Value the outward pip of the last tile.
type Board struct {
	Tiles []Tile
	Left  *End
	Right *End
}

// CanPlace reports whether t may be placed on the given side: always on an
// empty board, otherwise one of the tile's halves must match that side's
// exposed value.
func (b Board) CanPlace(t Tile, side Side) bool {
	if len(b.Tiles) == 0 {
		return true
	}
	switch side {
	case SideLeft:
		return t.Matches(b.Left.Value)
	case SideRight:
		return t.Matches(b.Right.Value)
	}
	return false
}

// HasMoveFor reports whether t is playable on either side.
func (b Board) HasMoveFor(t Tile) bool {
	return b.CanPlace(t, SideLeft) || b.CanPlace(t, SideRight)
}

// Place returns a new board with t played on the given side, orienting the
// matching half inward. ok is false when the placement is illegal. The
// receiver is never modified.
func (b Board) Place(t Tile, side Side) (Board, bool) {
	if !b.CanPlace(t, side) {
		return b, false
	}

	if len(b.Tiles) == 0 {
		nb := Board{Tiles: []Tile{t}}
		nb.Left = &End{Value: t.Left(), TileID: t.ID()}
		nb.Right = &End{Value: t.Right(), TileID: t.ID()}
		return nb, true
	}

	oriented := t
	switch side {
	case SideLeft:
		// Inward half is the right half; flip when the left half is the match.
		if t.Right() != b.Left.Value {
			oriented = t.Flip()
		}
		tiles := make([]Tile, 0, len(b.Tiles)+1)
		tiles = append(tiles, oriented)
		tiles = append(tiles, b.Tiles...)
		nb := Board{Tiles: tiles}
		nb.Left = &End{Value: oriented.Left(), TileID: oriented.ID()}
		nb.Right = &End{Value: b.Right.Value, TileID: b.Right.TileID}
		return nb, true
	default:
		// Inward half is the left half.
		if t.Left() != b.Right.Value {
			oriented = t.Flip()
		}
		tiles := make([]Tile, 0, len(b.Tiles)+1)
		tiles = append(tiles, b.Tiles...)
		tiles = append(tiles, oriented)
		nb := Board{Tiles: tiles}
		nb.Left = &End{Value: b.Left.Value, TileID: b.Left.TileID}
		nb.Right = &End{Value: oriented.Right(), TileID: oriented.ID()}
		return nb, true
	}
}
