package nn

import (
	"strings"

	"github.com/herohde/xiangzero/pkg/board"
)

// piecesOrder fixes the channel order of the input planes: the uppercase
// (opponent) pieces first, then the lowercase (mover) pieces.
const piecesOrder = "KABNRCPkabnrcp"

// NumPlanes is the number of one-hot piece planes.
const NumPlanes = len(piecesOrder)

// Planes is the fixed-shape input tensor for one canonical state: a one-hot
// piece indicator per channel over the 10x9 board, indexed [plane][rank][file].
type Planes [NumPlanes][board.NumRanks][board.NumFiles]float32

// Encode maps a canonical state to its input planes.
func Encode(s board.State) (Planes, error) {
	var ret Planes

	pos, err := s.Position()
	if err != nil {
		return ret, err
	}
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		piece := pos.At(sq)
		if piece.IsEmpty() {
			continue
		}
		ch := strings.IndexByte(piecesOrder, byte(piece))
		ret[ch][sq.Rank()][sq.File()] = 1
	}
	return ret, nil
}
