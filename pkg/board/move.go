package board

import "fmt"

// Move represents a not-necessarily legal move in four-character coordinate
// notation: from-file, from-rank, to-file, to-rank, such as "e0e1". Moves are
// expressed in the canonical frame of the position they apply to. 16 bits.
type Move struct {
	From, To Square
}

// ParseMove parses a move in coordinate notation, such as "b2e2" or "h0g2".
func ParseMove(str string) (Move, error) {
	runes := []rune(str)
	if len(runes) != 4 {
		return Move{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}
	return Move{From: from, To: to}, nil
}

// Flip returns the move as seen from the flipped board, mirroring both
// endpoints vertically. It translates a canonical-frame move into the real
// frame when the true mover is the flipped side.
func (m Move) Flip() Move {
	return Move{
		From: NewSquare(m.From.File(), m.From.Rank().Flip()),
		To:   NewSquare(m.To.File(), m.To.Rank().Flip()),
	}
}

func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To
}

func (m Move) String() string {
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// FormatMoves formats a list of moves with the given printer.
func FormatMoves(list []Move, fn func(Move) string) []string {
	var ret []string
	for _, m := range list {
		ret = append(ret, fn(m))
	}
	return ret
}
