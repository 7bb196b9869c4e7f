package nn

import (
	"context"
	"fmt"
)

// Prediction pairs the policy and value head outputs for one position.
type Prediction struct {
	// Policy is a distribution over the move alphabet, length NumLabels().
	Policy []float32
	// Value is the expected outcome in [-1,1] from the mover's perspective.
	Value float32
}

// Network is a pluggable policy/value network. PredictOnBatch is expected to
// block and return exactly one prediction per input row, in row order. It is
// invoked from a single broker goroutine per model.
type Network interface {
	PredictOnBatch(ctx context.Context, batch []Planes) ([]Prediction, error)
}

// Uniform is a stand-in network returning a flat prior and zero value. It is
// used for cold starts and tests; search under it reduces to visit-count
// exploration.
type Uniform struct{}

func (Uniform) PredictOnBatch(ctx context.Context, batch []Planes) ([]Prediction, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	prior := make([]float32, NumLabels())
	for i := range prior {
		prior[i] = 1 / float32(NumLabels())
	}

	ret := make([]Prediction, len(batch))
	for i := range ret {
		ret[i] = Prediction{Policy: prior}
	}
	return ret, nil
}
