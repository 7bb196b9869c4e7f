package search

import (
	"math"
	"math/rand"
	"sync"
)

// rng is a lockable random source, shared by concurrent simulation workers.
type rng struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{rnd: rand.New(rand.NewSource(seed))}
}

func (r *rng) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rnd.Float64()
}

// dirichlet draws a symmetric Dirichlet(alpha) sample of dimension n.
func (r *rng) dirichlet(alpha float64, n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make([]float64, n)
	var sum float64
	for i := range ret {
		ret[i] = r.gamma(alpha)
		sum += ret[i]
	}
	if sum == 0 {
		return ret
	}
	for i := range ret {
		ret[i] /= sum
	}
	return ret
}

// gamma draws from Gamma(alpha, 1) using Marsaglia-Tsang, with the usual
// boost for alpha < 1. Caller must hold the lock.
func (r *rng) gamma(alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	if alpha < 1 {
		return r.gamma(alpha+1) * math.Pow(r.rnd.Float64(), 1/alpha)
	}

	d := alpha - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = r.rnd.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := r.rnd.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
