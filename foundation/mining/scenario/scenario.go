// Package scenario loads simulation scenario files and assembles runnable
// simulations from them. A scenario fixes everything a reproducible run
// needs: the initial difficulty, the random seed, and the miner lineup.
package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/markblundeberg/miningsim/business/sys/validate"
	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/miner"
	"github.com/markblundeberg/miningsim/foundation/mining/simulator"
	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// Miner describes one miner in the lineup.
type Miner struct {
	Name      string  `json:"name"`
	Strategy  string  `json:"strategy" validate:"required,oneof=basic switch"`
	Hashrate  float64 `json:"hashrate" validate:"required,gt=0"`
	Threshold float64 `json:"threshold" validate:"omitempty,gt=0"` // switch strategy only
}

// Scenario represents a scenario file.
type Scenario struct {
	Name              string  `json:"name"`
	Seed              int64   `json:"seed"`
	InitialDifficulty float64 `json:"initial_difficulty" validate:"required,gt=0"`
	StartTime         float64 `json:"start_time" validate:"gte=0"`
	Miners            []Miner `json:"miners" validate:"required,min=1,dive"`
}

// Load opens and consumes a scenario file.
func Load(path string) (Scenario, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario file: %w", err)
	}

	var scn Scenario
	if err := json.Unmarshal(content, &scn); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario file: %w", err)
	}

	if err := validate.Check(scn); err != nil {
		return Scenario{}, err
	}

	return scn, nil
}

// Build assembles the block tree, genesis tip, miners and seeded random
// generator for this scenario and returns the simulation ready to run.
func (s Scenario) Build(ev simulator.EventHandler, onBlock simulator.BlockHandler) (*simulator.Simulation, error) {
	if err := validate.Check(s); err != nil {
		return nil, err
	}

	tree := blocktree.New(s.InitialDifficulty)
	start := tip.FromBlock(tree, tree.Genesis())

	miners := make([]miner.Miner, 0, len(s.Miners))
	for _, mc := range s.Miners {
		factory, err := miner.Retrieve(mc.Strategy)
		if err != nil {
			return nil, fmt.Errorf("miner %q: %w", mc.Name, err)
		}

		name := mc.Name
		if name == "" {
			if name, err = generateName(); err != nil {
				return nil, fmt.Errorf("generating miner name: %w", err)
			}
		}

		cfg := miner.Config{
			Name:      name,
			Hashrate:  mc.Hashrate,
			Threshold: mc.Threshold,
		}
		miners = append(miners, factory(cfg, start))
	}

	sim, err := simulator.New(simulator.Config{
		Tree:      tree,
		Miners:    miners,
		StartTime: s.StartTime,
		Rand:      rand.New(rand.NewSource(s.Seed)),
		EvHandler: ev,
		OnBlock:   onBlock,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing simulation: %w", err)
	}

	return sim, nil
}

// generateName creates a fresh account-style identity for an unnamed miner.
func generateName() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(key.PublicKey).String(), nil
}
