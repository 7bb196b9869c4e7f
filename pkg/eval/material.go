// Package eval contains position evaluation heuristics. The search itself
// relies on the network value head; these heuristics only adjudicate games
// that exceed the length limit.
package eval

import (
	"math"

	"github.com/herohde/xiangzero/pkg/board"
)

// Material returns the material balance of a canonical state from the
// mover's perspective, squashed into (-1,1) with tanh. The balance is the
// piece-value difference over the total piece value on the board, clamped
// to [-1,1] before squashing.
func Material(s board.State) float64 {
	var balance, total float64
	for _, r := range string(s) {
		piece, ok := board.ParsePiece(r)
		if !ok {
			continue
		}
		value := float64(piece.Kind().Value())
		if piece.IsMover() {
			balance += value
		} else {
			balance -= value
		}
		total += value
	}
	if total == 0 {
		return 0
	}

	v := balance / total
	v = math.Max(-1, math.Min(1, v))
	return math.Tanh(3 * v)
}

// Adjudicate maps the material balance to an outcome in {-1, 0, +1} from
// the mover's perspective.
func Adjudicate(s board.State) int {
	switch v := Material(s); {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
