package board_test

import (
	"testing"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquare(t *testing.T) {
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		assert.True(t, sq.IsValid())
		assert.Equal(t, sq, board.NewSquare(sq.File(), sq.Rank()))

		parsed, err := board.ParseSquareStr(sq.String())
		require.NoError(t, err)
		assert.Equal(t, sq, parsed)
	}

	assert.False(t, board.Square(90).IsValid())

	for _, bad := range []string{"", "a", "j0", "a:", "a10"} {
		_, err := board.ParseSquareStr(bad)
		assert.Errorf(t, err, "parsed: %v", bad)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		str     string
		flipped string
	}{
		{"a0a1", "a9a8"},
		{"e0e9", "e9e0"},
		{"b2e2", "b7e7"},
		{"h9g7", "h0g2"},
	}

	for _, tt := range tests {
		m, err := board.ParseMove(tt.str)
		require.NoError(t, err)

		assert.Equal(t, tt.str, m.String())
		assert.Equal(t, tt.flipped, m.Flip().String())
		assert.Equal(t, m, m.Flip().Flip())
	}

	for _, bad := range []string{"", "a0", "a0a", "a0j1", "a0a1q"} {
		_, err := board.ParseMove(bad)
		assert.Errorf(t, err, "parsed: %v", bad)
	}
}

func TestPiece(t *testing.T) {
	for _, r := range "kabnrcpKABNRCP" {
		piece, ok := board.ParsePiece(r)
		require.True(t, ok)

		assert.True(t, piece.IsValid())
		assert.True(t, piece.Kind().IsValid())
		assert.Equal(t, piece, piece.Flip().Flip())
		assert.NotEqual(t, piece.Color(), piece.Flip().Color())
	}

	_, ok := board.ParsePiece('q')
	assert.False(t, ok)
	assert.True(t, board.NoPiece.IsEmpty())

	assert.Equal(t, board.Piece('n'), board.NewPiece(board.Knight, board.Mover))
	assert.Equal(t, board.Piece('R'), board.NewPiece(board.Rook, board.Opponent))
}
