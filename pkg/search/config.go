package search

import (
	"fmt"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Config holds the search parameters for a player.
type Config struct {
	// SimulationsPerMove is the number of simulations launched per decision.
	SimulationsPerMove int
	// SearchThreads is the number of simulation workers sharing the tree.
	SearchThreads int
	// CPuct balances exploitation against the prior-weighted exploration
	// term. Lower prefers the mean action value.
	CPuct float64
	// NoiseEps is the weight of Dirichlet noise mixed into the root prior.
	NoiseEps float64
	// DirichletAlpha is the concentration of the root noise.
	DirichletAlpha float64
	// TauDecayRate decays the sampling temperature per halfmove, in (0,1].
	// Zero plays deterministically from the first move.
	TauDecayRate float64
	// VirtualLoss is the visit increment applied on selection, before the
	// true value arrives, to push concurrent workers onto different paths.
	VirtualLoss int
	// ResignThreshold resigns when the best root action value falls below
	// it. Absent disables resignation.
	ResignThreshold lang.Optional[float64]
	// MinResignTurn is the last halfmove at which resignation is never
	// considered; it is considered only on later halfmoves.
	MinResignTurn int
	// MaxGameLength is the halfmove limit after which games are adjudicated
	// on material.
	MaxGameLength int
}

// DefaultConfig mirrors the self-play training settings.
var DefaultConfig = Config{
	SimulationsPerMove: 100,
	SearchThreads:      16,
	CPuct:              1.5,
	NoiseEps:           0.25,
	DirichletAlpha:     0.3,
	TauDecayRate:       0.99,
	VirtualLoss:        1,
	MinResignTurn:      5,
	MaxGameLength:      100,
}

func (c Config) String() string {
	return fmt.Sprintf("{sims=%v, threads=%v, cpuct=%v, eps=%v, alpha=%v, tau=%v}",
		c.SimulationsPerMove, c.SearchThreads, c.CPuct, c.NoiseEps, c.DirichletAlpha, c.TauDecayRate)
}
