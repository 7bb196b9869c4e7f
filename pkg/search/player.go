package search

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/herohde/xiangzero/pkg/nn"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

// ErrClosed is an error indicating that the player has been closed.
var ErrClosed = errors.New("player closed")

// firstVisitBonus makes any unvisited edge outscore every visited one.
const firstVisitBonus = 10000

// sendLimit caps the number of evaluation requests per pipe message.
const sendLimit = 256

// Sample is one training example: a canonical state, the visit-derived
// policy over the move alphabet and, once the game finishes, the outcome
// from the perspective of the state's mover.
type Sample struct {
	State  board.State `json:"state"`
	Policy []float32   `json:"policy"`
	Z      int         `json:"z"`
}

// Player selects moves by parallel PUCT Monte Carlo Tree Search, evaluating
// leaves in batches through an inference pipe. Simulation workers share one
// tree per decision; virtual loss steers concurrent workers onto different
// paths while a leaf evaluation is in flight.
type Player struct {
	ctx  context.Context
	cfg  Config
	pipe *nn.Pipe
	rnd  *rng

	// tree and root are fixed for the duration of an Action call; the tree
	// is discarded between moves.
	tree *Tree
	root board.State

	// pending counts launched simulations not yet backed up.
	pending sync.WaitGroup

	// buffers hold encoded leaves and their trails awaiting dispatch.
	mu        sync.Mutex
	bufPlanes []nn.Planes
	bufTrails []*trail

	// inflight passes each sent batch's trails to the receiver, pairing
	// responses with requests in FIFO order.
	inflight chan []*trail

	pool   *pool
	quit   iox.AsyncCloser
	closed atomic.Bool

	smu     sync.Mutex
	samples []Sample
}

// Option is a player creation option.
type Option func(*Player)

// WithSeed configures the player's random source for root noise and action
// sampling. Defaults to zero for reproducibility.
func WithSeed(seed int64) Option {
	return func(p *Player) {
		p.rnd = newRNG(seed)
	}
}

// NewPlayer returns a player searching through the given pipe. It spawns
// the simulation worker pool plus one sender and one receiver task.
func NewPlayer(ctx context.Context, cfg Config, pipe *nn.Pipe, opts ...Option) *Player {
	p := &Player{
		ctx:      ctx,
		cfg:      cfg,
		pipe:     pipe,
		rnd:      newRNG(0),
		tree:     NewTree(),
		inflight: make(chan []*trail, 1),
		quit:     iox.NewAsyncCloser(),
	}
	for _, fn := range opts {
		fn(p)
	}

	p.pool = newPool(cfg.SearchThreads)
	go p.sender()
	go p.receiver()

	return p
}

// Action searches the given state and returns the sampled move and the
// visit-count policy over the move alphabet. Forbidden moves are masked to
// zero before sampling. The move is absent if the player resigns, or if no
// simulation produced a root visit. The turn is the halfmove count, used for
// temperature decay and the resignation gate.
func (p *Player) Action(ctx context.Context, s board.State, turn int, forbidden []board.Move) (lang.Optional[board.Move], []float32, error) {
	var none lang.Optional[board.Move]
	if p.closed.Load() {
		return none, nil, ErrClosed
	}

	p.tree = NewTree()
	p.root = s

	todo := p.cfg.SimulationsPerMove
	p.pending.Add(todo)
	for i := 0; i < todo; i++ {
		tr := newTrail(s)
		p.pool.submit(func() { p.search(tr) })
	}

	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-p.quit.Closed():
		return none, nil, ErrClosed
	case <-ctx.Done():
		return none, nil, ctx.Err()
	}

	policy, ok := p.policy(s, forbidden)
	if !ok {
		return none, policy, nil
	}
	if p.resign(s, turn) {
		logw.Infof(ctx, "Resigning at turn %v on %v", turn, s)
		return none, policy, nil
	}

	p.smu.Lock()
	p.samples = append(p.samples, Sample{State: s, Policy: policy})
	p.smu.Unlock()

	idx := p.sample(p.applyTemperature(policy, turn))
	return lang.Some(nn.Label(idx)), policy, nil
}

// Tree returns the search tree of the most recent Action call, for
// inspection.
func (p *Player) Tree() *Tree {
	return p.tree
}

// FinishGame attaches the outcome z, given from the perspective of the first
// recorded sample's mover, to every accumulated sample with alternating
// sign.
func (p *Player) FinishGame(z int) {
	p.smu.Lock()
	defer p.smu.Unlock()

	for i := range p.samples {
		p.samples[i].Z = z
		z = -z
	}
}

// Samples returns a copy of the accumulated training samples.
func (p *Player) Samples() []Sample {
	p.smu.Lock()
	defer p.smu.Unlock()

	return append([]Sample(nil), p.samples...)
}

// Close signals termination to the sender, receiver and worker tasks.
// Queued work completes; the pipe is left to its owner. Close must not be
// called with an Action in flight: a simulation dropped by the closing pool
// would never back up and Action would wait forever. Idempotent.
func (p *Player) Close() {
	if p.closed.CAS(false, true) {
		p.quit.Close()
		p.pool.close()
	}
}

// search descends the shared tree from the trail's last state until it
// expands a leaf, parks on a pending evaluation, or terminates.
func (p *Player) search(tr *trail) {
	s := tr.top()
	for {
		if v := s.GameOver(); v != 0 {
			p.submitUpdate(nil, float64(v), tr)
			return
		}

		node := p.tree.Node(s)
		node.Lock()

		if node.SumN == 0 {
			// First visit: expand and request evaluation. Insertion and the
			// waiting flag are atomic under the node lock, so a state is
			// evaluated at most once per search.
			moves, err := s.LegalMoves()
			if err != nil {
				node.Unlock()
				logw.Errorf(p.ctx, "Unparseable state %v: %v", s, err)
				p.submitUpdate(nil, 0, tr)
				return
			}
			node.SumN = 1
			node.Waiting = true
			node.LegalMoves = moves
			node.Unlock()

			planes, err := nn.Encode(s)
			if err != nil {
				logw.Errorf(p.ctx, "Unencodable state %v: %v", s, err)
				p.submitUpdate(nil, 0, tr)
				return
			}
			p.enqueue(planes, tr)
			return
		}

		if tr.seen(s) {
			// Cycle cutoff: score the repetition as a draw.
			node.Unlock()
			p.submitUpdate(nil, 0, tr)
			return
		}

		if node.Waiting {
			// Park until the evaluation response arrives.
			node.Visitors = append(node.Visitors, tr)
			node.Unlock()
			return
		}

		if len(node.LegalMoves) == 0 {
			// No moves: the mover is lost.
			node.Unlock()
			p.submitUpdate(nil, -1, tr)
			return
		}

		m := p.selectMove(node, s)

		node.SumN += p.cfg.VirtualLoss
		e := node.Edge(m)
		e.N += p.cfg.VirtualLoss

		if e.Next == "" {
			next, err := s.Step(m)
			if err != nil {
				node.Unlock()
				logw.Errorf(p.ctx, "Step %v failed on %v: %v", m, s, err)
				p.submitUpdate(nil, 0, tr)
				return
			}
			e.Next = next
		}
		next := e.Next
		node.Unlock()

		tr.push(m, next)
		s = next
	}
}

// selectMove picks the PUCT-maximal legal move. Unvisited edges win
// unconditionally; ties break by discovery order. Caller must hold the node
// lock.
func (p *Player) selectMove(node *Node, s board.State) board.Move {
	if node.P != nil {
		p.distributePrior(node, s == p.root)
	}

	u := math.Sqrt(float64(node.SumN) + 1)

	best := math.Inf(-1)
	var bestMove board.Move
	for _, m := range node.LegalMoves {
		e := node.Edge(m)
		score := e.Q + firstVisitBonus
		if e.N >= 1 {
			score = e.Q + p.cfg.CPuct*e.P*u/float64(e.N)
		}
		if score > best {
			best = score
			bestMove = m
		}
	}
	return bestMove
}

// distributePrior moves the node's pending policy vector onto its edges,
// mixing in Dirichlet noise at the search root, and renormalizes over the
// legal moves. The vector is consumed exactly once. Caller must hold the
// node lock.
func (p *Player) distributePrior(node *Node, root bool) {
	bias := make([]float64, len(node.LegalMoves))
	if root && p.cfg.NoiseEps > 0 && p.cfg.DirichletAlpha > 0 {
		bias = p.rnd.dirichlet(p.cfg.DirichletAlpha, len(node.LegalMoves))
	}

	eps := p.cfg.NoiseEps
	var total float64
	for i, m := range node.LegalMoves {
		prior := 0.0
		if idx, ok := nn.MoveIndex(m); ok {
			prior = float64(node.P[idx])
		}
		prior = (1-eps)*prior + eps*bias[i]
		node.Edge(m).P = prior
		total += prior
	}
	if total > 0 {
		for _, m := range node.LegalMoves {
			node.Edge(m).P /= total
		}
	}
	node.P = nil
}

// updateTree backs the value up the trail. For an evaluated leaf it installs
// the prior, wakes parked visitors and folds the leaf value in; it then
// walks the trail from leaf to root, negating the value at each step for the
// zero-sum alternation and pointing each edge's Q at the child's mean from
// the mover's perspective.
func (p *Player) updateTree(prior []float32, v float64, tr *trail) {
	defer p.pending.Done()

	z := v
	if prior != nil {
		node := p.tree.Node(tr.top())
		node.Lock()
		node.P = prior
		node.Waiting = false
		visitors := node.Visitors
		node.Visitors = nil
		node.W += v
		z = node.W / float64(node.SumN)
		node.Unlock()

		for _, parked := range visitors {
			parked := parked
			p.pool.submit(func() { p.search(parked) })
		}
	}

	for i := len(tr.moves) - 1; i >= 0; i-- {
		v = -v
		node := p.tree.Node(tr.states[i])
		node.Lock()
		node.W += v
		node.Edge(tr.moves[i]).Q = -z
		z = node.W / float64(node.SumN)
		node.Unlock()
	}
}

func (p *Player) submitUpdate(prior []float32, v float64, tr *trail) {
	p.pool.submit(func() { p.updateTree(prior, v, tr) })
}

func (p *Player) enqueue(planes nn.Planes, tr *trail) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bufPlanes = append(p.bufPlanes, planes)
	p.bufTrails = append(p.bufTrails, tr)
}

// sender drains the request buffer into pipe messages. It polls with a short
// sleep so the termination flag is observed.
func (p *Player) sender() {
	for !p.quit.IsClosed() {
		p.mu.Lock()
		n := len(p.bufPlanes)
		if n > sendLimit {
			n = sendLimit
		}
		var planes []nn.Planes
		var trails []*trail
		if n > 0 {
			planes = append([]nn.Planes(nil), p.bufPlanes[:n]...)
			trails = append([]*trail(nil), p.bufTrails[:n]...)
			p.bufPlanes = p.bufPlanes[n:]
			p.bufTrails = p.bufTrails[n:]
		}
		p.mu.Unlock()

		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}

		if err := p.pipe.Send(p.ctx, planes); err != nil {
			logw.Errorf(p.ctx, "Evaluation send failed: %v", err)
			p.quit.Close()
			return
		}
		select {
		case p.inflight <- trails:
		case <-p.quit.Closed():
			return
		}
	}
}

// receiver matches evaluation responses with their trails and schedules the
// back-ups.
func (p *Player) receiver() {
	for {
		var trails []*trail
		select {
		case trails = <-p.inflight:
		case <-p.quit.Closed():
			return
		}

		preds, err := p.pipe.Recv(p.ctx)
		if err != nil {
			logw.Errorf(p.ctx, "Evaluation receive failed: %v", err)
			p.quit.Close()
			return
		}
		if len(preds) != len(trails) {
			logw.Errorf(p.ctx, "Evaluation count mismatch: %v responses for %v requests", len(preds), len(trails))
			p.quit.Close()
			return
		}

		for i := range preds {
			pred, tr := preds[i], trails[i]
			p.pool.submit(func() { p.updateTree(pred.Policy, float64(pred.Value), tr) })
		}
	}
}

// policy returns the normalized root visit counts over the move alphabet,
// with forbidden moves masked to zero. Returns false if no visits remain.
func (p *Player) policy(s board.State, forbidden []board.Move) ([]float32, bool) {
	policy := make([]float32, nn.NumLabels())

	node, ok := p.tree.Lookup(s)
	if !ok {
		return policy, false
	}

	node.Lock()
	for m, e := range node.Edges() {
		if idx, ok := nn.MoveIndex(m); ok {
			policy[idx] = float32(e.N)
		}
	}
	node.Unlock()

	for _, m := range forbidden {
		if idx, ok := nn.MoveIndex(m); ok {
			policy[idx] = 0
		}
	}

	var sum float64
	for _, v := range policy {
		sum += float64(v)
	}
	if sum == 0 {
		return policy, false
	}
	for i := range policy {
		policy[i] = float32(float64(policy[i]) / sum)
	}
	return policy, true
}

// resign reports whether the best root action value falls below the
// configured threshold, once past the minimum turn.
func (p *Player) resign(s board.State, turn int) bool {
	threshold, ok := p.cfg.ResignThreshold.V()
	if !ok || turn <= p.cfg.MinResignTurn {
		return false
	}
	node, ok := p.tree.Lookup(s)
	if !ok {
		return false
	}

	node.Lock()
	defer node.Unlock()

	best := math.Inf(-1)
	for _, e := range node.Edges() {
		if e.N > 0 && e.Q > best {
			best = e.Q
		}
	}
	return !math.IsInf(best, -1) && best < threshold
}

// applyTemperature sharpens or flattens the policy with temperature
// tau = decay^(turn+1). Below 0.1 the temperature snaps to zero and the
// result is a one-hot at the argmax.
func (p *Player) applyTemperature(policy []float32, turn int) []float32 {
	ret := make([]float32, len(policy))

	tau := math.Pow(p.cfg.TauDecayRate, float64(turn+1))
	if tau < 0.1 {
		best := 0
		for i, v := range policy {
			if v > policy[best] {
				best = i
			}
		}
		ret[best] = 1
		return ret
	}

	var sum float64
	tmp := make([]float64, len(policy))
	for i, v := range policy {
		tmp[i] = math.Pow(float64(v), 1/tau)
		sum += tmp[i]
	}
	for i := range tmp {
		ret[i] = float32(tmp[i] / sum)
	}
	return ret
}

// sample draws one index from the distribution.
func (p *Player) sample(dist []float32) int {
	u := p.rnd.float64()

	last := 0
	var acc float64
	for i, v := range dist {
		if v <= 0 {
			continue
		}
		last = i
		acc += float64(v)
		if u < acc {
			return i
		}
	}
	return last
}

// trail records one simulation's path from the root: the visited states and
// the moves between them.
type trail struct {
	states []board.State
	moves  []board.Move
}

func newTrail(root board.State) *trail {
	return &trail{states: []board.State{root}}
}

func (t *trail) top() board.State {
	return t.states[len(t.states)-1]
}

func (t *trail) push(m board.Move, s board.State) {
	t.moves = append(t.moves, m)
	t.states = append(t.states, s)
}

// seen reports whether the trail's last state occurred earlier in the trail.
func (t *trail) seen(s board.State) bool {
	for _, prev := range t.states[:len(t.states)-1] {
		if prev == s {
			return true
		}
	}
	return false
}
