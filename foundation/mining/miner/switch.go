package miner

import "github.com/markblundeberg/miningsim/foundation/mining/tip"

// Switch mines like Basic but walks away whenever the chain becomes too
// hard. This emulates profit-seeking hashpower that mines whichever chain is
// currently more profitable and treats this one as worth mining only while
// the next required difficulty stays below a fixed threshold.
type Switch struct {
	Basic
	threshold float64
}

// NewSwitch constructs a profitability-switching miner. The threshold
// comparison is strict: a next difficulty exactly equal to the threshold
// already turns the hashpower off.
func NewSwitch(name string, hashrate float64, threshold float64, start tip.Tip) *Switch {
	return &Switch{
		Basic:     *NewBasic(name, hashrate, start),
		threshold: threshold,
	}
}

// newSwitch adapts NewSwitch to the strategy registry.
func newSwitch(cfg Config, start tip.Tip) Miner {
	return NewSwitch(cfg.Name, cfg.Hashrate, cfg.Threshold, start)
}

// Mining reports the full hashrate while the best tip's next difficulty is
// below the threshold and zero otherwise.
func (m *Switch) Mining() (float64, tip.Tip) {
	if m.best.NextDifficulty < m.threshold {
		return m.hashrate, m.best
	}
	return 0, m.best
}
