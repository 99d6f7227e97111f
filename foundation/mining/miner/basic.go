package miner

import (
	"github.com/google/uuid"

	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// Basic is the simplest strategy: it always mines the heaviest chain it has
// seen, contributing its full fixed hashrate.
type Basic struct {
	name     string
	hashrate float64
	best     tip.Tip
}

// NewBasic constructs a miner that mines the heaviest known chain at a
// constant hashrate. If no name is provided one is generated.
func NewBasic(name string, hashrate float64, start tip.Tip) *Basic {
	if name == "" {
		name = "miner-" + uuid.NewString()
	}

	return &Basic{
		name:     name,
		hashrate: hashrate,
		best:     start,
	}
}

// newBasic adapts NewBasic to the strategy registry.
func newBasic(cfg Config, start tip.Tip) Miner {
	return NewBasic(cfg.Name, cfg.Hashrate, start)
}

// Name identifies the miner.
func (m *Basic) Name() string {
	return m.name
}

// Mining reports the full configured hashrate at the best known tip.
func (m *Basic) Mining() (float64, tip.Tip) {
	return m.hashrate, m.best
}

// ReceiveBlock updates the best known tip. The update is strictly
// monotonic: only a tip with strictly greater chainwork replaces the
// current one, so equal-work siblings never cause a re-org of the miner's
// view.
func (m *Basic) ReceiveBlock(t tip.Tip, now float64) {
	if t.Block.Chainwork > m.best.Block.Chainwork {
		m.best = t
	}
}

// MinedBlock reports whether a freshly found block should be withheld from
// the network. A basic miner always broadcasts.
func (m *Basic) MinedBlock(t tip.Tip, now float64) bool {
	return false
}

// BestTip returns the tip the miner currently considers heaviest.
func (m *Basic) BestTip() tip.Tip {
	return m.best
}
