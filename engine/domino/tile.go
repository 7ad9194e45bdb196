// Package domino implements the tile-chain game: a standard double-six set
// played onto a single open chain, with blocked-game and team scoring.
package domino

// Tile is a packed uint8: upper 4 bits = left pip value, lower 4 bits =
// right pip value, both 0..6. Orientation (which half is "left") matters for
// the board display; identity does not depend on it.
type Tile uint8

// NoTile represents the absence of a tile.
const NoTile Tile = 0xFF

// SetSize is the number of tiles in a double-six set: all unordered pairs
// of 0..6.
const SetSize = 28

// MaxPip is the highest pip value on a half.
const MaxPip = 6

// NewTile constructs a tile with the given left/right pip values.
func NewTile(left, right uint8) Tile {
	return Tile((left << 4) | (right & 0x0F))
}

// Left returns the left-half pip value.
func (t Tile) Left() uint8 { return uint8(t) >> 4 }

// Right returns the right-half pip value.
func (t Tile) Right() uint8 { return uint8(t) & 0x0F }

// Flip returns the tile with its halves swapped. Identity is unchanged.
func (t Tile) Flip() Tile { return NewTile(t.Right(), t.Left()) }

// IsDouble reports whether both halves carry the same pip value.
func (t Tile) IsDouble() bool { return t.Left() == t.Right() }

// PipTotal returns the sum of both halves.
func (t Tile) PipTotal() int { return int(t.Left()) + int(t.Right()) }

// Matches reports whether either half carries the given pip value.
func (t Tile) Matches(v uint8) bool { return t.Left() == v || t.Right() == v }

// ID returns the tile's orientation-independent identity: an index in
// [0, SetSize) over the canonical double-six set. A tile and its flip share
// an ID.
func (t Tile) ID() uint8 {
	hi, lo := t.Left(), t.Right()
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi*(hi+1)/2 + lo
}

// FullSet returns the 28 tiles of a double-six set in canonical order
// (index i holds the tile with ID i).
func FullSet() []Tile {
	set := make([]Tile, 0, SetSize)
	for hi := uint8(0); hi <= MaxPip; hi++ {
		for lo := uint8(0); lo <= hi; lo++ {
			set = append(set, NewTile(hi, lo))
		}
	}
	return set
}
