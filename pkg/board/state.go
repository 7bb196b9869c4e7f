package board

import (
	"fmt"
	"strings"
)

// State is a canonical Xiangqi position string: piece placement only, with
// the side to move normalized to the lowercase pieces on ranks 0-4. It is
// the key type for the search tree, so two real positions that are mirror
// images with cases swapped share a state.
type State string

// Position parses the state into a Position.
func (s State) Position() (*Position, error) {
	return ParsePosition(string(s))
}

// Flip returns the state with rank order reversed and piece cases swapped.
// Flip is an involution: s.Flip().Flip() == s.
func (s State) Flip() State {
	ranks := strings.Split(string(s), "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	for i, rank := range ranks {
		var sb strings.Builder
		for _, r := range rank {
			if piece, ok := ParsePiece(r); ok {
				sb.WriteByte(byte(piece.Flip()))
			} else {
				sb.WriteRune(r)
			}
		}
		ranks[i] = sb.String()
	}
	return State(strings.Join(ranks, "/"))
}

// LegalMoves enumerates the legal moves for the side to move.
func (s State) LegalMoves() ([]Move, error) {
	pos, err := s.Position()
	if err != nil {
		return nil, err
	}
	return pos.LegalMoves(), nil
}

// Step applies a legal move and returns the successor state, canonical for
// the opponent in turn. Illegal moves are rejected without mutation.
func (s State) Step(m Move) (State, error) {
	pos, err := s.Position()
	if err != nil {
		return "", err
	}
	next, ok := pos.Move(m)
	if !ok {
		return "", fmt.Errorf("illegal move %v on %v", m, s)
	}
	return State(next.String()), nil
}

// GameOver returns +1 if the opposing king has been captured (the mover has
// won), -1 if the mover's own king is gone, and 0 if the game is still on.
// There is no check or checkmate detection beyond king capture.
func (s State) GameOver() int {
	if !strings.ContainsRune(string(s), 'k') {
		return -1
	}
	if !strings.ContainsRune(string(s), 'K') {
		return 1
	}
	return 0
}
