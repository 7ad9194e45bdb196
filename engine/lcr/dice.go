// Package lcr implements the dice/chip-passing game: each seat rolls one
// die per held chip (capped at 3), and faces move chips to neighbors, the
// center pot, or, on a wild die, pull a chip from a chosen opponent.
package lcr

// Face is the game meaning of a die side.
type Face string

const (
	FaceDot    Face = "dot"
	FaceLeft   Face = "left"
	FaceRight  Face = "right"
	FaceCenter Face = "center"
	FaceWild   Face = "wild"
)

// DieRoll pairs a raw 1..6 value with its mapped face; the raw value is
// kept so clients can render the physical die.
type DieRoll struct {
	Face Face  `json:"face"`
	Raw  uint8 `json:"raw"`
}

// faceFor maps a raw die value through the face table. Raw 1 is the third
// dot face unless wild mode is enabled, in which case it becomes WILD.
func faceFor(raw int, wild bool) Face {
	switch raw {
	case 1:
		if wild {
			return FaceWild
		}
		return FaceDot
	case 2, 3:
		return FaceDot
	case 4:
		return FaceLeft
	case 5:
		return FaceCenter
	default:
		return FaceRight
	}
}

// Movement is a delta descriptor for one die: a chip moving between a seat
// and another seat or the center pot. It is never applied one at a time;
// a whole roll's movements are settled as a single batch.
type Movement struct {
	FromPlayerID string `json:"fromPlayerId"`
	ToPlayerID   string `json:"toPlayerId,omitempty"` // empty → center pot
	Count        int    `json:"count"`
	DieFace      Face   `json:"dieFace"`
}

// MaxDicePerRoll caps a normal roll. Challenge rolls are uncapped: they
// use the challenger's full chip count.
const MaxDicePerRoll = 3

// faceString renders a roll for audit entries, e.g. "left,dot,center".
func faceString(roll []DieRoll) string {
	out := ""
	for i, d := range roll {
		if i > 0 {
			out += ","
		}
		out += string(d.Face)
	}
	return out
}

// allFaces reports whether every die in the roll shows the given face.
func allFaces(roll []DieRoll, f Face) bool {
	if len(roll) == 0 {
		return false
	}
	for _, d := range roll {
		if d.Face != f {
			return false
		}
	}
	return true
}
