package nn

import (
	"context"
	"errors"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// ErrClosed is returned by pipe operations after the pipe or its broker has
// been closed.
var ErrClosed = errors.New("pipe closed")

// Broker amortizes network overhead by gathering evaluation requests from
// many pipes into single batched calls. One broker runs per model; players
// attach via Open.
type Broker struct {
	net      Network
	requests chan request
	quit     iox.AsyncCloser
}

type request struct {
	pipe   *Pipe
	planes []Planes
}

func NewBroker(net Network) *Broker {
	return &Broker{
		net:      net,
		requests: make(chan request, 64),
		quit:     iox.NewAsyncCloser(),
	}
}

// Open attaches a new pipe to the broker.
func (b *Broker) Open() *Pipe {
	return &Pipe{
		broker: b,
		out:    make(chan []Prediction, 1),
		done:   iox.NewAsyncCloser(),
	}
}

// Run processes batches until the broker is closed: it waits for a pending
// request, drains every other request already queued, evaluates the
// concatenated batch in one network call and scatters the predictions back
// in request order. In-flight batches complete after Close.
func (b *Broker) Run(ctx context.Context) {
	for {
		var first request
		select {
		case first = <-b.requests:
		case <-b.quit.Closed():
			return
		}

		batch := append([]Planes(nil), first.planes...)
		parts := []request{first}
	drain:
		for {
			select {
			case req := <-b.requests:
				batch = append(batch, req.planes...)
				parts = append(parts, req)
			default:
				break drain
			}
		}

		preds, err := b.net.PredictOnBatch(ctx, batch)
		if err != nil || len(preds) != len(batch) {
			logw.Errorf(ctx, "Prediction batch of %v failed: %v", len(batch), err)
			for _, part := range parts {
				part.pipe.Close()
			}
			continue
		}

		k := 0
		for _, part := range parts {
			n := len(part.planes)
			if !part.pipe.deliver(preds[k:k+n], b.quit.Closed()) {
				logw.Warningf(ctx, "Pipe closed: dropping %v predictions", n)
			}
			k += n
		}
	}
}

// Close stops the broker. Idempotent.
func (b *Broker) Close() {
	b.quit.Close()
}

// Pipe is a duplex endpoint between one player and the broker. Sends and
// receives pair up FIFO: the k-th prediction of a receive corresponds to the
// k-th planes of the matching send. No ordering holds across pipes.
type Pipe struct {
	broker *Broker
	out    chan []Prediction
	done   iox.AsyncCloser
}

// deliver hands a slice of predictions to the pipe's receiving side. Returns
// false iff the pipe was closed, or the broker quit, before the predictions
// could be accepted.
func (p *Pipe) deliver(preds []Prediction, quit <-chan struct{}) bool {
	select {
	case p.out <- preds:
		return true
	case <-p.done.Closed():
		return false
	case <-quit:
		return false
	}
}

// Send submits a list of plane tensors for evaluation.
func (p *Pipe) Send(ctx context.Context, planes []Planes) error {
	if p.done.IsClosed() || p.broker.quit.IsClosed() {
		return ErrClosed
	}

	select {
	case p.broker.requests <- request{pipe: p, planes: planes}:
		return nil
	case <-p.done.Closed():
		return ErrClosed
	case <-p.broker.quit.Closed():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the predictions for the oldest outstanding Send, one per sent
// tensor in send order.
func (p *Pipe) Recv(ctx context.Context) ([]Prediction, error) {
	// Drain delivered predictions before considering shutdown.
	select {
	case preds := <-p.out:
		return preds, nil
	default:
	}

	select {
	case preds := <-p.out:
		return preds, nil
	case <-p.done.Closed():
		return nil, ErrClosed
	case <-p.broker.quit.Closed():
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close detaches the pipe from the broker. Outstanding predictions are
// dropped. Idempotent.
func (p *Pipe) Close() {
	p.done.Close()
}
