package eval_test

import (
	"testing"

	"github.com/herohde/xiangzero/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestMaterial(t *testing.T) {
	const initial = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR"

	assert.Equal(t, 0.0, eval.Material(initial))
	assert.Equal(t, 0, eval.Adjudicate(initial))

	// Mover up a rook.
	up := eval.Material("rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/1NBAKABNR")
	assert.Greater(t, up, 0.0)
	assert.Less(t, up, 1.0)
	assert.Equal(t, 1, eval.Adjudicate("rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/1NBAKABNR"))

	// Mover down to a bare king: squashed but strictly within (-1,1).
	down := eval.Material("4k4/9/9/9/9/9/9/9/9/RNBAKABNR")
	assert.Less(t, down, 0.0)
	assert.Greater(t, down, -1.0)
	assert.Equal(t, -1, eval.Adjudicate("4k4/9/9/9/9/9/9/9/9/RNBAKABNR"))

	assert.Equal(t, 0.0, eval.Material("9/9/9/9/9/9/9/9/9/9"))
}
