// Package search implements parallel PUCT Monte Carlo Tree Search over
// canonical Xiangqi states, evaluated in batches through an inference pipe.
package search

import (
	"sync"

	"github.com/herohde/xiangzero/pkg/board"
)

// Edge holds the statistics for one move out of a node. Guarded by the
// owning node's lock.
type Edge struct {
	// N is the visit count, incremented on selection (virtual loss).
	N int
	// Q is the mean value from the moving side's perspective.
	Q float64
	// P is the prior for this edge, normalized over the node's legal moves.
	P float64
	// Next is the successor state, filled on first traversal.
	Next board.State
}

// Node holds the visit statistics for one canonical state. All fields are
// guarded by the node's own lock; no global tree lock exists.
type Node struct {
	mu sync.Mutex

	// SumN is the total visits through the node, including the expansion
	// visit. Zero means the node has not been expanded yet.
	SumN int
	// W is the accumulated value from the node's perspective.
	W float64
	// P is the prior policy vector from evaluation. It is distributed to the
	// edges and cleared on the first selection after the response arrives.
	P []float32
	// LegalMoves is fixed at expansion.
	LegalMoves []board.Move
	// Waiting is true between the evaluation request and its response.
	Waiting bool
	// Visitors are simulations parked on this node while Waiting; they are
	// resubmitted when the response arrives.
	Visitors []*trail

	edges map[board.Move]*Edge
}

// Lock acquires the node lock.
func (n *Node) Lock() {
	n.mu.Lock()
}

// Unlock releases the node lock.
func (n *Node) Unlock() {
	n.mu.Unlock()
}

// Edge returns the statistics for the given move, inserting a fresh entry on
// first use. Caller must hold the node lock.
func (n *Node) Edge(m board.Move) *Edge {
	e, ok := n.edges[m]
	if !ok {
		e = &Edge{}
		n.edges[m] = e
	}
	return e
}

// Edges returns the move-to-edge map. Caller must hold the node lock and may
// not retain the map beyond it.
func (n *Node) Edges() map[board.Move]*Edge {
	return n.edges
}

// Tree maps canonical states to nodes. Transpositions collapse naturally
// because nodes key on state. The map lock only guards insertion; all node
// state is guarded per node.
type Tree struct {
	mu    sync.Mutex
	nodes map[board.State]*Node
}

func NewTree() *Tree {
	return &Tree{nodes: make(map[board.State]*Node)}
}

// Node returns the node for the state, inserting an empty one if absent.
func (t *Tree) Node(s board.State) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[s]
	if !ok {
		n = &Node{edges: make(map[board.Move]*Edge)}
		t.nodes[s] = n
	}
	return n
}

// Lookup returns the node for the state, if present.
func (t *Tree) Lookup(s board.State) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[s]
	return n, ok
}

// Size returns the number of states in the tree.
func (t *Tree) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.nodes)
}
