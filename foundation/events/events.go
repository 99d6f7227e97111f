// Package events allows goroutines to register for and receive the block
// events produced by a running simulation.
package events

import (
	"fmt"
	"sync"
)

// Block is the event payload delivered for every block the simulation
// commits.
type Block struct {
	Time       float64 `json:"time"`
	Miner      string  `json:"miner"`
	BlockID    int     `json:"block_id"`
	Height     int     `json:"height"`
	Difficulty float64 `json:"difficulty"`
	Chainwork  float64 `json:"chainwork"`
}

// Events maintains a mapping of unique ids and channels so goroutines can
// register to receive block events.
type Events struct {
	m  map[string]chan Block
	mu sync.RWMutex
}

// New constructs an events broker for registering and receiving block events.
func New() *Events {
	return &Events{
		m: make(map[string]chan Block),
	}
}

// Shutdown closes and removes all channels that were provided by the call
// to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive block events.
func (evt *Events) Acquire(id string) chan Block {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// A slow websocket receiver drops events rather than stalling the
	// simulation. The buffer gives a receiver room to catch up first.
	const messageBuffer = 1000

	evt.m[id] = make(chan Block, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel that was provided by the call
// to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send delivers a block event to every registered channel. Send never
// blocks waiting for a receiver; a full channel loses the event.
func (evt *Events) Send(b Block) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- b:
		default:
		}
	}
}
