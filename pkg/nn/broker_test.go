package nn_test

import (
	"context"
	"sync"
	"testing"

	"github.com/herohde/xiangzero/pkg/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoNet records batch sizes and echoes each request's marker value back,
// so tests can verify request/response pairing.
type echoNet struct {
	mu      sync.Mutex
	batches []int
}

func (n *echoNet) PredictOnBatch(ctx context.Context, batch []nn.Planes) ([]nn.Prediction, error) {
	n.mu.Lock()
	n.batches = append(n.batches, len(batch))
	n.mu.Unlock()

	ret := make([]nn.Prediction, len(batch))
	for i, planes := range batch {
		ret[i] = nn.Prediction{Policy: make([]float32, nn.NumLabels()), Value: planes[0][0][0]}
	}
	return ret, nil
}

func (n *echoNet) sizes() []int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]int(nil), n.batches...)
}

func marked(v float32) nn.Planes {
	var ret nn.Planes
	ret[0][0][0] = v
	return ret
}

func TestBrokerBatching(t *testing.T) {
	ctx := context.Background()
	net := &echoNet{}
	broker := nn.NewBroker(net)
	defer broker.Close()

	a := broker.Open()
	b := broker.Open()

	// Queue both requests before the broker runs: they must be evaluated as
	// one batch of 8 and partitioned back 3/5.
	require.NoError(t, a.Send(ctx, []nn.Planes{marked(1), marked(2), marked(3)}))
	require.NoError(t, b.Send(ctx, []nn.Planes{marked(4), marked(5), marked(6), marked(7), marked(8)}))

	go broker.Run(ctx)

	got, err := a.Recv(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, pred := range got {
		assert.Equal(t, float32(i+1), pred.Value)
	}

	got, err = b.Recv(ctx)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, pred := range got {
		assert.Equal(t, float32(i+4), pred.Value)
	}

	assert.Equal(t, []int{8}, net.sizes())
}

func TestBrokerPipeFIFO(t *testing.T) {
	ctx := context.Background()
	broker := nn.NewBroker(&echoNet{})
	defer broker.Close()
	go broker.Run(ctx)

	pipe := broker.Open()
	defer pipe.Close()

	// Sequential send/recv pairs stay in order regardless of batching.
	for round := 0; round < 10; round++ {
		v := float32(round + 1)
		require.NoError(t, pipe.Send(ctx, []nn.Planes{marked(v), marked(v + 100)}))

		got, err := pipe.Recv(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, v, got[0].Value)
		assert.Equal(t, v+100, got[1].Value)
	}
}

func TestBrokerClose(t *testing.T) {
	ctx := context.Background()
	broker := nn.NewBroker(&echoNet{})
	go broker.Run(ctx)

	pipe := broker.Open()
	broker.Close()

	_, err := pipe.Recv(ctx)
	assert.ErrorIs(t, err, nn.ErrClosed)
}

func TestPipeClose(t *testing.T) {
	ctx := context.Background()
	broker := nn.NewBroker(&echoNet{})
	defer broker.Close()
	go broker.Run(ctx)

	pipe := broker.Open()
	pipe.Close()

	assert.ErrorIs(t, pipe.Send(ctx, []nn.Planes{marked(1)}), nn.ErrClosed)
	_, err := pipe.Recv(ctx)
	assert.ErrorIs(t, err, nn.ErrClosed)
}

func TestUniform(t *testing.T) {
	ctx := context.Background()

	preds, err := nn.Uniform{}.PredictOnBatch(ctx, []nn.Planes{marked(1), marked(2)})
	require.NoError(t, err)
	require.Len(t, preds, 2)

	var sum float32
	for _, v := range preds[0].Policy {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.Equal(t, float32(0), preds[0].Value)
}
