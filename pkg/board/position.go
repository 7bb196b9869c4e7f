// Package board contains the Xiangqi board representation and utilities.
//
// All positions are kept in the canonical frame: the side to move owns the
// lowercase pieces and occupies ranks 0-4, regardless of which real side it
// is. Making a move flips the board, so the resulting position is canonical
// for the opponent in turn.
package board

import (
	"fmt"
	"strings"
)

// Position represents a Xiangqi piece placement as a flat 90-cell grid.
// Positions are immutable once created.
type Position struct {
	cells [NumSquares]Piece
}

// ParsePosition parses a placement string with rank separators "/" and digit
// run-length empties 1-9. It accepts placement only; see the fen package for
// inputs with trailing fields.
func ParsePosition(str string) (*Position, error) {
	ranks := strings.Split(str, "/")
	if len(ranks) != int(NumRanks) {
		return nil, fmt.Errorf("invalid number of ranks in placement: '%v'", str)
	}

	pos := &Position{}
	for y, rank := range ranks {
		x := 0
		for _, r := range rank {
			switch {
			case '1' <= r && r <= '9':
				x += int(r - '0')

			default:
				piece, ok := ParsePiece(r)
				if !ok {
					return nil, fmt.Errorf("invalid piece '%v' in placement: '%v'", string(r), str)
				}
				if x >= int(NumFiles) {
					return nil, fmt.Errorf("rank overflow in placement: '%v'", str)
				}
				pos.cells[y*int(NumFiles)+x] = piece
				x++
			}
		}
		if x != int(NumFiles) {
			return nil, fmt.Errorf("invalid rank length in placement: '%v'", str)
		}
	}
	return pos, nil
}

// At returns the piece on the given square, if any.
func (p *Position) At(sq Square) Piece {
	return p.cells[sq]
}

// Flip returns the vertically mirrored position with all piece cases
// swapped. It normalizes the side to move after a move is made.
func (p *Position) Flip() *Position {
	ret := &Position{}
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		flipped := NewSquare(sq.File(), sq.Rank().Flip())
		ret.cells[flipped] = p.cells[sq].Flip()
	}
	return ret
}

// Move applies a legal move for the side to move and returns the resulting
// position, flipped so that it is canonical for the opponent. Returns false
// iff the move is not legal.
func (p *Position) Move(m Move) (*Position, bool) {
	if !p.isLegal(m) {
		return nil, false
	}

	next := &Position{cells: p.cells}
	next.cells[m.To] = next.cells[m.From]
	next.cells[m.From] = NoPiece
	return next.Flip(), true
}

func (p *Position) isLegal(m Move) bool {
	for _, legal := range p.LegalMoves() {
		if legal.Equals(m) {
			return true
		}
	}
	return false
}

// LegalMoves enumerates the moves available to the side to move, i.e., the
// lowercase pieces. King safety is not considered: moving into check or
// leaving the king en prise is legal and resolved by king capture.
func (p *Position) LegalMoves() []Move {
	var ret []Move
	for y := 0; y < int(NumRanks); y++ {
		for x := 0; x < int(NumFiles); x++ {
			piece := p.at(x, y)
			if !piece.IsMover() {
				continue
			}

			switch piece.Kind() {
			case King:
				ret = p.kingMoves(ret, x, y)
			case Advisor:
				ret = p.advisorMoves(ret, x, y)
			case Bishop:
				ret = p.bishopMoves(ret, x, y)
			case Knight:
				ret = p.knightMoves(ret, x, y)
			case Pawn:
				ret = p.pawnMoves(ret, x, y)
			case Rook, Cannon:
				ret = p.lineMoves(ret, x, y, piece.Kind() == Cannon)
			}
		}
	}
	return ret
}

var (
	kingDirs    = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	advisorDirs = [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	bishopDirs  = [][2]int{{-2, -2}, {2, -2}, {2, 2}, {-2, 2}}
	knightDirs  = [][2]int{{-1, -2}, {1, -2}, {2, -1}, {2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}}
	pawnDirs    = [][2]int{{0, 1}, {-1, 0}, {1, 0}}
)

// kingMoves generates the palace-bound king steps plus the flying-general
// capture: if the two kings face each other on an otherwise empty file, the
// mover's king may take the opposing king directly.
func (p *Position) kingMoves(ret []Move, x, y int) []Move {
	for _, d := range kingDirs {
		nx, ny := x+d[0], y+d[1]
		if !p.canMove(nx, ny) || !inPalace(nx, ny) {
			continue
		}
		ret = append(ret, newMove(x, y, nx, ny))
	}

	for ny := y + 1; ny < int(NumRanks); ny++ {
		blocker := p.at(x, ny)
		if blocker.IsEmpty() {
			continue
		}
		if blocker.Kind() == King && blocker.IsOpponent() {
			ret = append(ret, newMove(x, y, x, ny))
		}
		break
	}
	return ret
}

func (p *Position) advisorMoves(ret []Move, x, y int) []Move {
	for _, d := range advisorDirs {
		nx, ny := x+d[0], y+d[1]
		if !p.canMove(nx, ny) || !inPalace(nx, ny) {
			continue
		}
		ret = append(ret, newMove(x, y, nx, ny))
	}
	return ret
}

func (p *Position) bishopMoves(ret []Move, x, y int) []Move {
	for _, d := range bishopDirs {
		nx, ny := x+d[0], y+d[1]
		if !p.canMove(nx, ny) {
			continue
		}
		if !p.at(x+d[0]/2, y+d[1]/2).IsEmpty() {
			continue // blocked eye
		}
		if ny > 4 {
			continue // may not cross the river
		}
		ret = append(ret, newMove(x, y, nx, ny))
	}
	return ret
}

func (p *Position) knightMoves(ret []Move, x, y int) []Move {
	for _, d := range knightDirs {
		nx, ny := x+d[0], y+d[1]
		if !p.canMove(nx, ny) {
			continue
		}
		if !p.at(x+d[0]/2, y+d[1]/2).IsEmpty() {
			continue // hobbled leg
		}
		ret = append(ret, newMove(x, y, nx, ny))
	}
	return ret
}

func (p *Position) pawnMoves(ret []Move, x, y int) []Move {
	for _, d := range pawnDirs {
		nx, ny := x+d[0], y+d[1]
		if !p.canMove(nx, ny) {
			continue
		}
		if y < 5 && nx != x {
			continue // no sidestep before the river
		}
		ret = append(ret, newMove(x, y, nx, ny))
	}
	return ret
}

// lineMoves generates rook and cannon moves. Both slide over the empty
// squares up to the nearest piece in each direction. The rook may capture
// that piece; the cannon jumps it as a screen and may capture the next piece
// behind it.
func (p *Position) lineMoves(ret []Move, x, y int, cannon bool) []Move {
	l, r := p.blockersX(x, y)
	d, u := p.blockersY(x, y)

	for nx := l + 1; nx < x; nx++ {
		ret = append(ret, newMove(x, y, nx, y))
	}
	for nx := x + 1; nx < r; nx++ {
		ret = append(ret, newMove(x, y, nx, y))
	}
	for ny := d + 1; ny < y; ny++ {
		ret = append(ret, newMove(x, y, x, ny))
	}
	for ny := y + 1; ny < u; ny++ {
		ret = append(ret, newMove(x, y, x, ny))
	}

	if !cannon {
		for _, c := range [][2]int{{l, y}, {r, y}, {x, d}, {x, u}} {
			if p.canMove(c[0], c[1]) {
				ret = append(ret, newMove(x, y, c[0], c[1]))
			}
		}
		return ret
	}

	ll, _ := p.blockersX(l, y)
	_, rr := p.blockersX(r, y)
	dd, _ := p.blockersY(x, d)
	_, uu := p.blockersY(x, u)
	for _, c := range [][2]int{{ll, y}, {rr, y}, {x, dd}, {x, uu}} {
		if p.canMove(c[0], c[1]) {
			ret = append(ret, newMove(x, y, c[0], c[1]))
		}
	}
	return ret
}

// blockersX returns the x coordinates of the nearest occupied squares left
// and right of (x,y), or -1/NumFiles if the edge is reached first. The x
// argument may be out of range, in which case the scan is empty.
func (p *Position) blockersX(x, y int) (int, int) {
	l, r := x-1, x+1
	for l > -1 && p.at(l, y).IsEmpty() {
		l--
	}
	for r < int(NumFiles) && p.at(r, y).IsEmpty() {
		r++
	}
	return l, r
}

func (p *Position) blockersY(x, y int) (int, int) {
	d, u := y-1, y+1
	for d > -1 && p.at(x, d).IsEmpty() {
		d--
	}
	for u < int(NumRanks) && p.at(x, u).IsEmpty() {
		u++
	}
	return d, u
}

// canMove returns true iff (x,y) is a valid destination for the side to
// move: on the board and not occupied by one of its own pieces.
func (p *Position) canMove(x, y int) bool {
	if x < 0 || x >= int(NumFiles) || y < 0 || y >= int(NumRanks) {
		return false
	}
	return !p.at(x, y).IsMover()
}

func (p *Position) at(x, y int) Piece {
	return p.cells[y*int(NumFiles)+x]
}

func inPalace(x, y int) bool {
	return 3 <= x && x <= 5 && y <= 2
}

func newMove(x, y, nx, ny int) Move {
	return Move{From: NewSquare(File(x), Rank(y)), To: NewSquare(File(nx), Rank(ny))}
}

// String returns the placement string for the position.
func (p *Position) String() string {
	var sb strings.Builder
	for y := 0; y < int(NumRanks); y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < int(NumFiles); x++ {
			piece := p.at(x, y)
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(byte(piece))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}
