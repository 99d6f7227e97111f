package simgrp

// status is the response form for the status endpoint.
type status struct {
	Running        bool     `json:"running"`
	Time           float64  `json:"time"`
	Blocks         int      `json:"blocks"`
	BestHeight     int      `json:"best_height"`
	BestBlockID    int      `json:"best_block_id"`
	BestChainwork  float64  `json:"best_chainwork"`
	BestDifficulty float64  `json:"best_difficulty"`
	Miners         []string `json:"miners"`
}

// runRequest asks the simulation to mine forward.
type runRequest struct {
	Until    float64 `json:"until"`    // absolute simulated time, seconds
	Duration float64 `json:"duration"` // relative to now, used when until is zero
}
