package simulator_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/miner"
	"github.com/markblundeberg/miningsim/foundation/mining/simulator"
	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// blockRecord captures what the observability hook saw for one block.
type blockRecord struct {
	now   float64
	miner string
	block blocktree.Block
}

// newTestSim builds a two miner simulation with a deterministic seed and
// records every committed block.
func newTestSim(t *testing.T, seed int64, records *[]blockRecord) *simulator.Simulation {
	tree := blocktree.New(600 * 100)
	start := tip.FromBlock(tree, tree.Genesis())

	miners := []miner.Miner{
		miner.NewBasic("alpha", 80, start),
		miner.NewBasic("beta", 20, start),
	}

	sim, err := simulator.New(simulator.Config{
		Tree:   tree,
		Miners: miners,
		Rand:   rand.New(rand.NewSource(seed)),
		OnBlock: func(now float64, minerName string, block blocktree.Block) {
			*records = append(*records, blockRecord{now, minerName, block})
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould construct the simulation: %v.", failed, err)
	}

	return sim
}

// =============================================================================

func Test_Determinism(t *testing.T) {
	t.Log("Given the need to validate identical seeds replay identically.")
	{
		var recA, recB []blockRecord
		simA := newTestSim(t, 7, &recA)
		simB := newTestSim(t, 7, &recB)

		t.Log("\tWhen running the same sequence of runs and gaps twice.")
		{
			for _, sim := range []*simulator.Simulation{simA, simB} {
				if err := sim.Run(50 * 86400); err != nil {
					t.Fatalf("\t%s\tShould run without error: %v.", failed, err)
				}
				sim.AdvanceTime(86400)
				if err := sim.Run(60 * 86400); err != nil {
					t.Fatalf("\t%s\tShould resume without error: %v.", failed, err)
				}
			}
			t.Logf("\t%s\tShould run without error.", success)

			if len(recA) == 0 || len(recA) != len(recB) {
				t.Fatalf("\t%s\tShould produce the same number of blocks: %d vs %d.", failed, len(recA), len(recB))
			}
			t.Logf("\t%s\tShould produce the same number of blocks.", success)

			for i := range recA {
				if recA[i] != recB[i] {
					t.Fatalf("\t%s\tShould produce identical block %d: %+v vs %+v.", failed, i, recA[i], recB[i])
				}
			}
			t.Logf("\t%s\tShould produce bit identical block sequences.", success)

			if simA.Time() != simB.Time() {
				t.Errorf("\t%s\tShould end at identical simulated times.", failed)
			} else {
				t.Logf("\t%s\tShould end at identical simulated times.", success)
			}
		}

		t.Log("\tWhen running with a different seed.")
		{
			var recC []blockRecord
			simC := newTestSim(t, 8, &recC)
			if err := simC.Run(50 * 86400); err != nil {
				t.Fatalf("\t%s\tShould run without error: %v.", failed, err)
			}

			same := len(recC) == len(recA)
			if same {
				for i := range recC {
					if recC[i] != recA[i] {
						same = false
						break
					}
				}
			}
			if same {
				t.Errorf("\t%s\tShould diverge from a different seed.", failed)
			} else {
				t.Logf("\t%s\tShould diverge from a different seed.", success)
			}
		}
	}
}

func Test_TimeCeiling(t *testing.T) {
	t.Log("Given the need to validate runs never pass the time ceiling.")
	{
		var records []blockRecord
		sim := newTestSim(t, 3, &records)

		const maxTime = 10 * 86400

		t.Log("\tWhen running to a fixed ceiling.")
		{
			if err := sim.Run(maxTime); err != nil {
				t.Fatalf("\t%s\tShould run without error: %v.", failed, err)
			}

			if sim.Time() != maxTime {
				t.Errorf("\t%s\tShould clamp the clock to exactly the ceiling: got %g.", failed, sim.Time())
			} else {
				t.Logf("\t%s\tShould clamp the clock to exactly the ceiling.", success)
			}

			tree := sim.Tree()
			for id := 1; id < tree.Len(); id++ {
				if ts := tree.Block(blocktree.BlockID(id)).Timestamp; ts > maxTime {
					t.Fatalf("\t%s\tShould never stamp a block past the ceiling: block %d at %d.", failed, id, ts)
				}
			}
			t.Logf("\t%s\tShould never stamp a block past the ceiling.", success)

			if len(records) != tree.Len()-1 {
				t.Errorf("\t%s\tShould report every committed block on the hook.", failed)
			} else {
				t.Logf("\t%s\tShould report every committed block on the hook.", success)
			}
		}
	}
}

func Test_NoHashrate(t *testing.T) {
	t.Log("Given the need to surface a stalled simulation.")
	{
		tree := blocktree.New(100)
		start := tip.FromBlock(tree, tree.Genesis())

		// The threshold equals the next difficulty, so the switch miner
		// offers nothing from the first poll.
		miners := []miner.Miner{
			miner.NewSwitch("fairweather", 50, 100, start),
		}

		sim, err := simulator.New(simulator.Config{
			Tree:   tree,
			Miners: miners,
			Rand:   rand.New(rand.NewSource(1)),
		})
		if err != nil {
			t.Fatalf("\t%s\tShould construct the simulation: %v.", failed, err)
		}

		t.Log("\tWhen every miner offers zero hashrate.")
		{
			err := sim.Run(86400)
			if !errors.Is(err, simulator.ErrNoHashrate) {
				t.Fatalf("\t%s\tShould return ErrNoHashrate: got %v.", failed, err)
			}
			t.Logf("\t%s\tShould return ErrNoHashrate.", success)

			if sim.Tree().Len() != 1 {
				t.Errorf("\t%s\tShould not mine any blocks.", failed)
			} else {
				t.Logf("\t%s\tShould not mine any blocks.", success)
			}
		}
	}
}

// =============================================================================

// withholder hides every block it finds.
type withholder struct {
	*miner.Basic
}

func (w withholder) MinedBlock(t tip.Tip, now float64) bool {
	return true
}

func Test_Withholding(t *testing.T) {
	t.Log("Given the need to validate suppressed broadcasts.")
	{
		tree := blocktree.New(600 * 100)
		start := tip.FromBlock(tree, tree.Genesis())

		hidden := withholder{miner.NewBasic("hidden", 100, start)}
		observer := miner.NewBasic("observer", 0.001, start)

		sim, err := simulator.New(simulator.Config{
			Tree:   tree,
			Miners: []miner.Miner{hidden, observer},
			Rand:   rand.New(rand.NewSource(11)),
		})
		if err != nil {
			t.Fatalf("\t%s\tShould construct the simulation: %v.", failed, err)
		}

		t.Log("\tWhen the dominant miner hides every block it finds.")
		{
			if err := sim.Run(30 * 86400); err != nil {
				t.Fatalf("\t%s\tShould run without error: %v.", failed, err)
			}

			if sim.Tree().Len() <= 1 {
				t.Fatalf("\t%s\tShould still commit hidden blocks to the tree.", failed)
			}
			t.Logf("\t%s\tShould still commit hidden blocks to the tree.", success)

			// Nothing was ever broadcast, so the observer still mines on
			// genesis and even the withholder's public view never moved.
			if _, best := observer.Mining(); best.Block.Height != 0 {
				t.Errorf("\t%s\tShould leave other miners unaware of hidden blocks.", failed)
			} else {
				t.Logf("\t%s\tShould leave other miners unaware of hidden blocks.", success)
			}
		}
	}
}

// =============================================================================

// stopper requests a cooperative stop as soon as it sees a block.
type stopper struct {
	*miner.Basic
	sim **simulator.Simulation
}

func (s stopper) ReceiveBlock(t tip.Tip, now float64) {
	s.Basic.ReceiveBlock(t, now)
	(*s.sim).Stop()
}

func Test_StopFlag(t *testing.T) {
	t.Log("Given the need to validate the cooperative stop flag.")
	{
		tree := blocktree.New(600 * 100)
		start := tip.FromBlock(tree, tree.Genesis())

		var sim *simulator.Simulation
		m := stopper{miner.NewBasic("stopper", 100, start), &sim}

		var err error
		sim, err = simulator.New(simulator.Config{
			Tree:   tree,
			Miners: []miner.Miner{m},
			Rand:   rand.New(rand.NewSource(5)),
		})
		if err != nil {
			t.Fatalf("\t%s\tShould construct the simulation: %v.", failed, err)
		}

		t.Log("\tWhen a miner stops the run on the first block.")
		{
			if err := sim.Run(365 * 86400); err != nil {
				t.Fatalf("\t%s\tShould run without error: %v.", failed, err)
			}

			if sim.Tree().Len() != 2 {
				t.Errorf("\t%s\tShould stop after exactly one block: got %d.", failed, sim.Tree().Len()-1)
			} else {
				t.Logf("\t%s\tShould stop after exactly one block.", success)
			}

			if sim.Time() >= 365*86400 {
				t.Errorf("\t%s\tShould stop before the ceiling.", failed)
			} else {
				t.Logf("\t%s\tShould stop before the ceiling.", success)
			}
		}

		t.Log("\tWhen running again after the stop.")
		{
			if err := sim.Run(sim.Time()); err != nil {
				t.Fatalf("\t%s\tShould reset the stop flag on the next run: %v.", failed, err)
			}
			t.Logf("\t%s\tShould reset the stop flag on the next run.", success)
		}
	}
}
