package nn_test

import (
	"testing"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/herohde/xiangzero/pkg/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initial = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR"

func TestLabels(t *testing.T) {
	// 90 squares x (8 rank + 9 file destinations) slides, 508 in-board
	// knight jumps, 16 advisor and 32 bishop diagonals.
	assert.Equal(t, 2086, nn.NumLabels())

	seen := map[board.Move]bool{}
	for i := 0; i < nn.NumLabels(); i++ {
		m := nn.Label(i)
		assert.Falsef(t, seen[m], "duplicate label: %v", m)
		seen[m] = true

		idx, ok := nn.MoveIndex(m)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestFlippedIndex(t *testing.T) {
	for i := 0; i < nn.NumLabels(); i++ {
		j := nn.FlippedIndex(i)
		assert.Equal(t, i, nn.FlippedIndex(j))
		assert.Equal(t, nn.Label(i).Flip(), nn.Label(j))
	}
}

func TestLabelsCoverLegalMoves(t *testing.T) {
	// Every legal move of every reachable position must have a policy index.
	// Spot-check the opening position and all of its successors.
	state := board.State(initial)

	moves, err := state.LegalMoves()
	require.NoError(t, err)
	for _, m := range moves {
		_, ok := nn.MoveIndex(m)
		assert.Truef(t, ok, "unindexed move: %v", m)

		next, err := state.Step(m)
		require.NoError(t, err)
		successors, err := next.LegalMoves()
		require.NoError(t, err)
		for _, sm := range successors {
			_, ok := nn.MoveIndex(sm)
			assert.Truef(t, ok, "unindexed move: %v on %v", sm, next)
		}
	}
}
