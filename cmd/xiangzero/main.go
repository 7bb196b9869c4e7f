package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/xiangzero/pkg/engine"
	"github.com/herohde/xiangzero/pkg/nn"
	"github.com/herohde/xiangzero/pkg/search"
	"github.com/herohde/xiangzero/pkg/storage"
	"github.com/seekerror/logw"
)

var (
	games   = flag.Int("games", 1, "Number of self-play games")
	sims    = flag.Int("sims", search.DefaultConfig.SimulationsPerMove, "Simulations per move")
	threads = flag.Int("threads", search.DefaultConfig.SearchThreads, "Search threads per game")
	data    = flag.String("data", "", "Training data directory (not persisted if empty)")
	seed    = flag.Int64("seed", 0, "Base random seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: xiangzero [options]

XIANGZERO is an AlphaZero-style Xiangqi self-play engine. It plays games
against itself with batched-MCTS and records the training samples. It uses
a uniform stand-in network until a trained model is plugged in.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := search.DefaultConfig
	cfg.SimulationsPerMove = *sims
	cfg.SearchThreads = *threads

	opts := []engine.Option{engine.WithConfig(cfg), engine.WithSeed(*seed)}
	if *data != "" {
		store, err := storage.Open(ctx, *data)
		if err != nil {
			logw.Exitf(ctx, "Failed to open store: %v", err)
		}
		defer store.Close()
		opts = append(opts, engine.WithStore(store))
	}

	e := engine.New(ctx, "xiangzero", nn.Uniform{}, opts...)
	defer e.Close()

	if err := e.Run(ctx, *games); err != nil {
		logw.Exitf(ctx, "Self-play failed: %v", err)
	}
}
