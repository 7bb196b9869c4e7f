package search

import (
	"sync"
	"testing"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTemperature(t *testing.T) {
	policy := []float32{0.5, 0.3, 0.2, 0}

	t.Run("unit", func(t *testing.T) {
		// tau = 1^(turn+1) = 1: the raw normalized visits pass through.
		p := &Player{cfg: Config{TauDecayRate: 1}}
		ret := p.applyTemperature(policy, 0)
		for i := range policy {
			assert.InDelta(t, policy[i], ret[i], 1e-6)
		}
	})

	t.Run("decay", func(t *testing.T) {
		// As tau decays the policy concentrates on the argmax; below 0.1 it
		// snaps to a one-hot.
		p := &Player{cfg: Config{TauDecayRate: 0.5}}

		warm := p.applyTemperature(policy, 0) // tau = 0.5
		assert.Greater(t, warm[0], policy[0])

		cold := p.applyTemperature(policy, 10) // tau < 0.1
		assert.Equal(t, []float32{1, 0, 0, 0}, cold)
	})

	t.Run("deterministic", func(t *testing.T) {
		p := &Player{cfg: Config{TauDecayRate: 0}}
		assert.Equal(t, []float32{1, 0, 0, 0}, p.applyTemperature(policy, 0))
	})
}

func TestSample(t *testing.T) {
	p := &Player{rnd: newRNG(1)}

	counts := map[int]int{}
	for i := 0; i < 1000; i++ {
		idx := p.sample([]float32{0, 0.25, 0, 0.75})
		counts[idx]++
	}
	assert.Zero(t, counts[0])
	assert.Zero(t, counts[2])
	assert.Greater(t, counts[3], counts[1])

	// Degenerate distribution: one-hot sampling is exact.
	for i := 0; i < 10; i++ {
		assert.Equal(t, 2, p.sample([]float32{0, 0, 1, 0}))
	}
}

func TestDirichlet(t *testing.T) {
	rnd := newRNG(42)

	for _, n := range []int{1, 5, 44} {
		sample := rnd.dirichlet(0.3, n)
		require.Len(t, sample, n)

		var sum float64
		for _, v := range sample {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPool(t *testing.T) {
	p := newPool(4)
	defer p.close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	// Tasks may submit follow-up tasks without deadlocking the workers.
	wg.Add(200)
	for i := 0; i < 100; i++ {
		p.submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
			wg.Done()

			p.submit(func() {
				mu.Lock()
				count++
				mu.Unlock()
				wg.Done()
			})
		})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 200, count)
}

func TestTrail(t *testing.T) {
	tr := newTrail("a")
	assert.Equal(t, board.State("a"), tr.top())
	assert.False(t, tr.seen("a"))

	m := board.Move{}
	tr.push(m, "b")
	tr.push(m, "a")
	assert.Equal(t, board.State("a"), tr.top())
	assert.True(t, tr.seen("a"), "root repeated")
	assert.False(t, tr.seen("c"))
}

func TestTree(t *testing.T) {
	tree := NewTree()

	n := tree.Node("s")
	assert.Same(t, n, tree.Node("s"))
	assert.Equal(t, 1, tree.Size())

	_, ok := tree.Lookup("t")
	assert.False(t, ok)

	n.Lock()
	e := n.Edge(board.Move{})
	assert.Same(t, e, n.Edge(board.Move{}))
	n.Unlock()
}
