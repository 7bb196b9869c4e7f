// Package fen contains utilities for reading and writing Xiangqi positions
// in FEN-like notation. Only the placement field is meaningful; trailing
// fields (side to move, clocks) are accepted and ignored, since the
// canonical frame carries the side to move implicitly.
package fen

import (
	"strings"

	"github.com/herohde/xiangzero/pkg/board"
)

// Initial is the standard Xiangqi opening position in the canonical frame.
const Initial = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR"

// Decode returns a new position from a FEN description. Any fields after the
// placement are ignored.
//
// Example:
//
//	"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r - - 0 1"
func Decode(fen string) (*board.Position, error) {
	placement, _, _ := strings.Cut(strings.TrimSpace(fen), " ")
	return board.ParsePosition(placement)
}

// DecodeState returns the canonical state for a FEN description.
func DecodeState(fen string) (board.State, error) {
	pos, err := Decode(fen)
	if err != nil {
		return "", err
	}
	return board.State(pos.String()), nil
}

// Encode encodes the position as a placement string.
func Encode(pos *board.Position) string {
	return pos.String()
}
