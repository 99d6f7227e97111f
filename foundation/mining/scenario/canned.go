package scenario

import "github.com/markblundeberg/miningsim/foundation/mining/miner"

// Canned scenarios matching the classic experiments this simulator was
// built for. Hashrates are in hashes per second, difficulties in expected
// hashes per block.

// HashrateCrash models a chain at high difficulty that suddenly loses its
// dominant miner: a strong and a weak miner share the chain, then the strong
// miner is removed mid-experiment by the caller.
func HashrateCrash() Scenario {
	return Scenario{
		Name:              "hashrate-crash",
		Seed:              1,
		InitialDifficulty: 600 * 5e18,
		Miners: []Miner{
			{Name: "Strong Miners", Strategy: miner.StrategyBasic, Hashrate: 5e18},
			{Name: "Weak Miner", Strategy: miner.StrategyBasic, Hashrate: 0.1e18},
		},
	}
}

// Switching models profit-seeking hashpower: two steady miners plus a large
// switch miner that only mines while the difficulty stays below the level
// equivalent to 3 EH/s.
func Switching() Scenario {
	return Scenario{
		Name:              "switch-mining",
		Seed:              1,
		InitialDifficulty: 600 * 5e18,
		Miners: []Miner{
			{Name: "Miner A", Strategy: miner.StrategyBasic, Hashrate: 0.1e18},
			{Name: "Miner B", Strategy: miner.StrategyBasic, Hashrate: 0.5e18},
			{Name: "Miner C", Strategy: miner.StrategySwitch, Hashrate: 5e18, Threshold: 600 * 3e18},
		},
	}
}
