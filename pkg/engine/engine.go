// Package engine orchestrates self-play: it runs complete games through the
// searching player, adjudicates draws and overlong games, and collects the
// training samples.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/herohde/xiangzero/pkg/board"
	"github.com/herohde/xiangzero/pkg/board/fen"
	"github.com/herohde/xiangzero/pkg/eval"
	"github.com/herohde/xiangzero/pkg/nn"
	"github.com/herohde/xiangzero/pkg/search"
	"github.com/herohde/xiangzero/pkg/storage"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 3, 0)

// repetitionLimit ends the game as a draw when the same move has answered
// the move four plies earlier this many times in a row.
const repetitionLimit = 4

// Engine encapsulates self-play logic: one inference broker per model and a
// fresh player per game.
type Engine struct {
	name string
	net  nn.Network
	cfg  search.Config

	store *storage.Store
	seed  int64

	broker *nn.Broker
}

// Option is an engine creation option.
type Option func(*Engine)

// WithConfig overrides the default search configuration.
func WithConfig(cfg search.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithStore configures the engine to persist game records. The store is
// owned by the caller.
func WithStore(store *storage.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithSeed configures the base random seed. Game i uses seed+i, so runs are
// reproducible yet games differ.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New returns a self-play engine for the given network and starts its
// broker.
func New(ctx context.Context, name string, net nn.Network, opts ...Option) *Engine {
	e := &Engine{
		name: name,
		net:  net,
		cfg:  search.DefaultConfig,
	}
	for _, fn := range opts {
		fn(e)
	}

	e.broker = nn.NewBroker(net)
	go e.broker.Run(ctx)

	logw.Infof(ctx, "Initialized engine %v: search=%v", e.Name(), e.cfg)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Close stops the broker. In-flight batches complete.
func (e *Engine) Close() {
	e.broker.Close()
}

// Play runs one self-play game from the initial position and returns its
// record. The game ends on king capture, resignation, the repetition draw
// rule, or material adjudication at the length limit.
func (e *Engine) Play(ctx context.Context, game int) (*storage.Record, error) {
	pipe := e.broker.Open()
	defer pipe.Close()

	player := search.NewPlayer(ctx, e.cfg, pipe, search.WithSeed(e.seed+int64(game)))
	defer player.Close()

	state := board.State(fen.Initial)
	states := []board.State{state}
	var moves []board.Move

	steps := 0
	repetitions := 0
	v := 0
	for {
		act, _, err := player.Action(ctx, state, steps, forbidden(states, moves))
		if err != nil {
			return nil, fmt.Errorf("search failed at move %v: %w", steps, err)
		}
		m, ok := act.V()
		if !ok {
			v = -1 // resignation: the mover loses
			break
		}

		next, err := state.Step(m)
		if err != nil {
			return nil, fmt.Errorf("bad action %v at move %v: %w", m, steps, err)
		}
		moves = append(moves, m)
		state = next
		states = append(states, state)
		steps++

		if len(moves) >= 5 && moves[len(moves)-1].Equals(moves[len(moves)-5]) {
			repetitions++
		} else {
			repetitions = 0
		}

		if v = state.GameOver(); v != 0 {
			break
		}
		if repetitions >= repetitionLimit {
			v = 0
			break
		}
		if steps >= e.cfg.MaxGameLength {
			v = eval.Adjudicate(state)
			break
		}
	}

	// v is from the perspective of the mover at the final state. Normalize
	// to the first mover before attaching outcomes.
	if steps%2 == 1 {
		v = -v
	}
	player.FinishGame(v)

	rec := &storage.Record{Steps: steps, Outcome: v, Samples: player.Samples()}
	if e.store != nil {
		if err := e.store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store game %v: %w", game, err)
		}
	}

	logw.Infof(ctx, "Game %v: steps=%v outcome=%v moves=%v", game, steps, v, PrintGame(moves))
	return rec, nil
}

// Run plays the given number of games sequentially.
func (e *Engine) Run(ctx context.Context, games int) error {
	var wins, draws, losses int
	for i := 0; i < games; i++ {
		rec, err := e.Play(ctx, i)
		if err != nil {
			return err
		}
		switch rec.Outcome {
		case 1:
			wins++
		case -1:
			losses++
		default:
			draws++
		}
	}

	logw.Infof(ctx, "Self-play complete: games=%v, first mover +%v =%v -%v", games, wins, draws, losses)
	return nil
}

// forbidden returns the moves to mask at the current state: whenever the
// state occurred earlier in the game, the move played from it then is
// forbidden now, forcing the search to vary and break repetitions.
func forbidden(states []board.State, moves []board.Move) []board.Move {
	current := states[len(states)-1]

	var ret []board.Move
	for i := 0; i < len(moves); i++ {
		if states[i] == current {
			ret = append(ret, moves[i])
		}
	}
	return ret
}

// PrintGame renders a canonical move list in the real frame, flipping odd
// plies where the true mover is the mirrored side.
func PrintGame(moves []board.Move) string {
	var ret []string
	for i, m := range moves {
		if i%2 == 1 {
			m = m.Flip()
		}
		ret = append(ret, m.String())
	}
	return strings.Join(ret, " ")
}
