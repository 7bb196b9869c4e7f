// perft is a movegen debugging tool: it counts the move-tree nodes of a
// position to a given depth for comparison against reference counts.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/herohde/xiangzero/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (defaults to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	state, err := fen.DecodeState(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := search(state, i, *divide && i == *depth)
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}

func search(s board.State, depth int, d bool) int64 {
	if depth == 0 || s.GameOver() != 0 {
		return 1
	}

	moves, err := s.LegalMoves()
	if err != nil {
		return 0
	}

	var nodes int64
	for _, m := range moves {
		next, err := s.Step(m)
		if err != nil {
			continue
		}
		count := search(next, depth-1, false)
		if d {
			println(fmt.Sprintf("%v: %v", m, count))
		}
		nodes += count
	}
	return nodes
}
