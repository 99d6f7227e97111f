// Package cmd contains the mining simulator CLI.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/scenario"
	"github.com/markblundeberg/miningsim/foundation/mining/simulator"
)

var (
	seed  int64
	trace bool
)

func init() {
	rootCmd.PersistentFlags().Int64VarP(&seed, "seed", "s", 1, "Random seed for the run.")
	rootCmd.PersistentFlags().BoolVarP(&trace, "trace", "t", false, "Print every block as it is found.")
}

var rootCmd = &cobra.Command{
	Use:   "simcli",
	Short: "Proof of work mining simulator",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildSim assembles a simulation from the scenario, applying the seed flag
// and wiring the optional per-block trace output.
func buildSim(scn scenario.Scenario) *simulator.Simulation {
	scn.Seed = seed

	var onBlock simulator.BlockHandler
	if trace {
		onBlock = func(now float64, minerName string, block blocktree.Block) {
			fmt.Printf("%15.3f: block found by %s, h%d, %.2fZH\n",
				now, minerName, block.Height, block.Difficulty/1e21)
		}
	}

	sim, err := scn.Build(nil, onBlock)
	if err != nil {
		log.Fatal(err)
	}

	return sim
}

// summarize prints the end-of-run chain statistics.
func summarize(sim *simulator.Simulation) {
	tree := sim.Tree()
	best := tree.BestBlock()

	fmt.Println("blocks mined: ", tree.Len()-1)
	fmt.Println("best height:  ", best.Height)
	fmt.Printf("best work:     %.4g\n", best.Chainwork)
	fmt.Printf("difficulty:    %.4g\n", best.Difficulty)
	fmt.Printf("sim time:      %.1f days\n", sim.Time()/86400)

	tips := tree.Tips()
	if len(tips) > 1 {
		fmt.Println("stale tips:   ", len(tips)-1)
	}
}
