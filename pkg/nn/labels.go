// Package nn bridges the search to the policy/value network: the universal
// move alphabet that indexes policy vectors, the input-plane encoder, and
// the batched-inference broker.
package nn

import (
	"github.com/herohde/xiangzero/pkg/board"
)

// knightJumps are the (file, rank) deltas of the eight knight jumps, in
// enumeration order.
var knightJumps = [][2]int{{-1, -2}, {-2, -1}, {1, -2}, {-2, 1}, {-1, 2}, {2, -1}, {1, 2}, {2, 1}}

// diagonals are the advisor and bishop moves, which are not reachable as
// rank/file slides or knight jumps. Both sides' palaces and elephant posts
// are enumerated so that the alphabet is closed under vertical flips.
var diagonals = []string{
	// advisor, lower palace
	"d0e1", "f0e1", "d2e1", "f2e1", "e1d0", "e1f0", "e1d2", "e1f2",
	// advisor, upper palace
	"d9e8", "f9e8", "d7e8", "f7e8", "e8d9", "e8f9", "e8d7", "e8f7",
	// bishop, lower half
	"c0a2", "c0e2", "g0e2", "g0i2", "c4a2", "c4e2", "g4e2", "g4i2",
	"a2c0", "e2c0", "e2g0", "i2g0", "a2c4", "e2c4", "e2g4", "i2g4",
	// bishop, upper half
	"c9a7", "c9e7", "g9e7", "g9i7", "c5a7", "c5e7", "g5e7", "g5i7",
	"a7c9", "e7c9", "e7g9", "i7g9", "a7c5", "e7c5", "e7g5", "i7g5",
}

// moveLabels enumerates the move alphabet L: from every square, all other
// squares on the same rank and file plus the in-board knight jumps, followed
// by the fixed advisor and bishop diagonals. The enumeration order is fixed
// and the position of a move is its stable policy index.
func moveLabels() []board.Move {
	var ret []board.Move
	for y := 0; y < int(board.NumRanks); y++ {
		for x := 0; x < int(board.NumFiles); x++ {
			var dests [][2]int
			for t := 0; t < int(board.NumFiles); t++ {
				dests = append(dests, [2]int{t, y})
			}
			for t := 0; t < int(board.NumRanks); t++ {
				dests = append(dests, [2]int{x, t})
			}
			for _, d := range knightJumps {
				dests = append(dests, [2]int{x + d[0], y + d[1]})
			}

			from := board.NewSquare(board.File(x), board.Rank(y))
			for _, d := range dests {
				if d[0] == x && d[1] == y {
					continue
				}
				if d[0] < 0 || d[0] >= int(board.NumFiles) || d[1] < 0 || d[1] >= int(board.NumRanks) {
					continue
				}
				to := board.NewSquare(board.File(d[0]), board.Rank(d[1]))
				ret = append(ret, board.Move{From: from, To: to})
			}
		}
	}

	for _, str := range diagonals {
		m, err := board.ParseMove(str)
		if err != nil {
			panic(err) // unreachable: fixed table
		}
		ret = append(ret, m)
	}
	return ret
}

var (
	labels       = moveLabels()
	labelIndex   = indexLabels(labels)
	flippedIndex = flipLabels(labels)
)

func indexLabels(labels []board.Move) map[board.Move]int {
	ret := make(map[board.Move]int, len(labels))
	for i, m := range labels {
		ret[m] = i
	}
	return ret
}

func flipLabels(labels []board.Move) []int {
	ret := make([]int, len(labels))
	for i, m := range labels {
		ret[i] = labelIndex[m.Flip()]
	}
	return ret
}

// NumLabels returns |L|, the size of the move alphabet and thus the length
// of every policy vector.
func NumLabels() int {
	return len(labels)
}

// Label returns the move at the given policy index.
func Label(i int) board.Move {
	return labels[i]
}

// MoveIndex returns the policy index of the move. Every legal move of every
// position reachable from the initial position is in the alphabet; advisor
// and bishop moves from squares off their standard posts are not.
func MoveIndex(m board.Move) (int, bool) {
	i, ok := labelIndex[m]
	return i, ok
}

// FlippedIndex returns the policy index of the vertically mirrored
// counterpart of the move at index i. The mapping is an involution.
func FlippedIndex(i int) int {
	return flippedIndex[i]
}
