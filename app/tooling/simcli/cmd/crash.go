package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/markblundeberg/miningsim/foundation/mining/scenario"
)

var crashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Run the hashrate crash experiment",
	Long: `Simulates a chain at high difficulty where mining suddenly stops for
a while and then returns at a very low level: two days of normal mining,
then the dominant miner leaves and ten dead days pass before the weak
miner resumes alone.`,
	Run: crashRun,
}

func init() {
	rootCmd.AddCommand(crashCmd)
}

func crashRun(cmd *cobra.Command, args []string) {
	sim := buildSim(scenario.HashrateCrash())

	if err := sim.Run(2 * 86400); err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- strong miners leave, 10 dead days pass ---")
	sim.RemoveMiner("Strong Miners")
	sim.AdvanceTime(10 * 86400)

	if err := sim.Run(30 * 86400); err != nil {
		log.Fatal(err)
	}

	summarize(sim)
}
