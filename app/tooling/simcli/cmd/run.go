package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/markblundeberg/miningsim/foundation/mining/scenario"
	"github.com/markblundeberg/miningsim/foundation/mining/simulator"
)

var days float64

var runCmd = &cobra.Command{
	Use:   "run [scenario file]",
	Short: "Run a scenario file",
	Args:  cobra.ExactArgs(1),
	Run:   runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Float64VarP(&days, "days", "d", 10, "Simulated days to mine.")
}

func runRun(cmd *cobra.Command, args []string) {
	scn, err := scenario.Load(args[0])
	if err != nil {
		log.Fatal(err)
	}

	sim := buildSim(scn)

	if err := sim.Run(sim.Time() + days*86400); err != nil {
		if errors.Is(err, simulator.ErrNoHashrate) {
			log.Print("simulation stalled: no miner is offering hashrate")
		} else {
			log.Fatal(err)
		}
	}

	summarize(sim)
}
