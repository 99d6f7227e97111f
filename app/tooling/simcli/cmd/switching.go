package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/markblundeberg/miningsim/foundation/mining/scenario"
)

var switchingCmd = &cobra.Command{
	Use:   "switching",
	Short: "Run the switch mining experiment",
	Long: `Simulates profit-seeking hashpower: the difficulty starts high and
drops until the switch miner's 3 EH/s threshold is reached, after which
the chain oscillates around the level the switch miner finds profitable.`,
	Run: switchingRun,
}

func init() {
	rootCmd.AddCommand(switchingCmd)
}

func switchingRun(cmd *cobra.Command, args []string) {
	sim := buildSim(scenario.Switching())

	if err := sim.Run(10 * 86400); err != nil {
		log.Fatal(err)
	}

	summarize(sim)
}
