// Package simulator advances simulated time by racing the miners' competing
// Poisson block-finding processes against each other. The engine is strictly
// single threaded: every random draw and every miner poll completes inside
// the loop iteration, and the block tree is mutated only here.
package simulator

import (
	"errors"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/miner"
	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// ErrNoHashrate is returned by Run when every miner is offering zero
// hashrate. With a total rate of zero the time to the next block is
// undefined, so the simulation surfaces the condition instead of waiting
// forever.
var ErrNoHashrate = errors.New("no miner is offering hashrate")

// EventHandler defines a function that is called to narrate the processing
// of the simulation.
type EventHandler func(v string, args ...any)

// BlockHandler defines a function that is called for every block the
// simulation commits. It exists for logging and observation and plays no
// part in correctness.
type BlockHandler func(now float64, minerName string, block blocktree.Block)

// =============================================================================

// Config represents the configuration required to construct a simulation.
type Config struct {
	Tree      *blocktree.Tree
	Miners    []miner.Miner
	StartTime float64
	Rand      *rand.Rand
	EvHandler EventHandler
	OnBlock   BlockHandler
}

// Simulation drives the mining event loop over a block tree and a set of
// miners. Miners may be added and removed between calls to Run to model
// hashpower entering and leaving, and the clock may be advanced externally
// to model gaps.
type Simulation struct {
	tree    *blocktree.Tree
	miners  []miner.Miner
	now     float64
	rng     *rand.Rand
	evH     EventHandler
	onBlock BlockHandler
	stop    atomic.Bool
}

// New constructs a simulation over the given tree and miners. The random
// generator is required: the engine draws the interarrival time first and
// the winner second on every iteration, so reproducing a run needs exactly
// this generator, seed and draw order.
func New(cfg Config) (*Simulation, error) {
	if cfg.Tree == nil {
		return nil, errors.New("block tree required")
	}
	if cfg.Rand == nil {
		return nil, errors.New("random generator required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	s := Simulation{
		tree:    cfg.Tree,
		miners:  cfg.Miners,
		now:     cfg.StartTime,
		rng:     cfg.Rand,
		evH:     ev,
		onBlock: cfg.OnBlock,
	}

	return &s, nil
}

// Tree returns the block tree the simulation is mining on.
func (s *Simulation) Tree() *blocktree.Tree {
	return s.tree
}

// Time returns the current simulated time in seconds.
func (s *Simulation) Time() float64 {
	return s.now
}

// AdvanceTime moves the clock forward by delta seconds without mining,
// modelling a dead period between runs.
func (s *Simulation) AdvanceTime(delta float64) {
	s.now += delta
}

// Miners returns the current live miner set.
func (s *Simulation) Miners() []miner.Miner {
	return s.miners
}

// AddMiner adds a miner to the live set before the next run.
func (s *Simulation) AddMiner(m miner.Miner) {
	s.miners = append(s.miners, m)
}

// RemoveMiner removes the named miner from the live set and reports whether
// it was present.
func (s *Simulation) RemoveMiner(name string) bool {
	for i, m := range s.miners {
		if m.Name() == name {
			s.miners = append(s.miners[:i], s.miners[i+1:]...)
			return true
		}
	}
	return false
}

// Stop requests a cooperative stop. The flag is checked once per loop
// iteration and is reset by the next call to Run.
func (s *Simulation) Stop() {
	s.stop.Store(true)
}

// Run mines until the simulated clock would pass maxTime. When the next
// drawn block event lands beyond maxTime, no block is created, the draw is
// discarded, and the clock is clamped to exactly maxTime; by memorylessness
// of the exponential distribution this truncation is statistically valid,
// though the discarded draw is not reused on resumption. One loop iteration
// commits at most one block.
func (s *Simulation) Run(maxTime float64) error {
	s.stop.Store(false)

	for !s.stop.Load() {
		deltaT, winnerTip, winner, err := s.nextBlock()
		if err != nil {
			return err
		}

		newTime := s.now + deltaT
		if newTime > maxTime {
			s.now = maxTime
			return nil
		}
		s.now = newTime

		// Block timestamps are whole seconds.
		parent := winnerTip.Block
		block := s.tree.NewBlock(parent, int64(newTime), winnerTip.NextDifficulty)
		newTip := tip.FromParent(block, winnerTip)

		s.evH("simulator: block found: time[%.3f] miner[%s] height[%d] difficulty[%g]",
			s.now, winner.Name(), block.Height, block.Difficulty)

		if !winner.MinedBlock(newTip, s.now) {
			for _, m := range s.miners {
				m.ReceiveBlock(newTip, s.now)
			}
		}

		if s.onBlock != nil {
			s.onBlock(s.now, winner.Name(), block)
		}
	}

	return nil
}

// nextBlock samples the time to the next block found by anyone and which
// miner found it. Each miner's block finding is Poisson with rate
// hashrate/difficulty; the union of the independent processes is Poisson
// with the summed rate, so one exponential draw gives the interarrival time
// and one uniform draw over the rate prefix sums picks the winner.
func (s *Simulation) nextBlock() (float64, tip.Tip, miner.Miner, error) {
	prefix := make([]float64, len(s.miners))
	tips := make([]tip.Tip, len(s.miners))

	var total float64
	for i, m := range s.miners {
		hashrate, t := m.Mining()
		tips[i] = t
		total += hashrate / t.NextDifficulty
		prefix[i] = total
	}

	if !(total > 0) {
		return 0, tip.Tip{}, nil, ErrNoHashrate
	}

	// Draw order is fixed: interarrival time first, winner second.
	deltaT := s.rng.ExpFloat64() / total
	u := s.rng.Float64() * total

	// Inverse-CDF categorical draw: the first miner whose cumulative rate
	// reaches the uniform draw wins.
	idx := sort.SearchFloat64s(prefix, u)
	if idx >= len(prefix) {
		idx = len(prefix) - 1
	}

	return deltaT, tips[idx], s.miners[idx], nil
}
