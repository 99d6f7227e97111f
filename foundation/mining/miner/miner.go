// Package miner defines the behavior miners plug into the simulation with
// and provides the built-in mining strategies.
package miner

import (
	"fmt"

	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// List of the built-in strategies.
const (
	StrategyBasic  = "basic"
	StrategySwitch = "switch"
)

// Map of strategy names to their construction functions.
var strategies = map[string]Factory{
	StrategyBasic:  newBasic,
	StrategySwitch: newSwitch,
}

// Miner represents the behavior a mining strategy must implement. A miner is
// a reactive state machine: it observes tips as they are broadcast and
// reports where, and how hard, it is currently mining.
type Miner interface {

	// Name identifies the miner in logs and events.
	Name() string

	// Mining reports the hashrate the miner is contributing right now and
	// the tip it is mining on. A miner that has pointed its hashpower
	// elsewhere reports zero.
	Mining() (hashrate float64, t tip.Tip)

	// ReceiveBlock is called when a new block is broadcast to the network.
	ReceiveBlock(t tip.Tip, now float64)

	// MinedBlock is called when this miner finds a block, before the block
	// is broadcast. Returning true withholds the block from the network.
	MinedBlock(t tip.Tip, now float64) (hide bool)
}

// Config carries the settings for constructing a miner through the strategy
// registry.
type Config struct {
	Name      string
	Hashrate  float64
	Threshold float64 // switch strategy only
}

// Factory defines a function that constructs a miner bound to a starting tip.
type Factory func(cfg Config, start tip.Tip) Miner

// Retrieve returns the factory for the specified strategy.
func Retrieve(strategy string) (Factory, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}
