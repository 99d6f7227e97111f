// Package runner drives a simulation from a background goroutine so a
// service can keep serving queries while blocks are being mined. The
// simulation engine itself is single threaded; the runner owns it after
// start and serializes every touch of it behind one mutex.
package runner

import (
	"errors"
	"sync"

	"github.com/markblundeberg/miningsim/foundation/events"
	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/simulator"
)

// EventHandler defines a function that is called to narrate the processing
// of the runner.
type EventHandler func(v string, args ...any)

// Status is a point-in-time snapshot of the simulation for queries.
type Status struct {
	Running    bool
	Time       float64
	Blocks     int
	BestHeight int
	BestBlock  blocktree.Block
	Miners     []string
}

// =============================================================================

// Runner manages the goroutine that advances a simulation.
type Runner struct {
	sim *simulator.Simulation
	ev  EventHandler

	mu      sync.Mutex
	running bool

	wg      sync.WaitGroup
	shut    chan struct{}
	runSim  chan float64
	lastErr error
}

// Run creates a runner for the given simulation and starts its background
// goroutine. The simulation must not be touched directly after this call.
func Run(sim *simulator.Simulation, ev EventHandler) *Runner {
	r := Runner{
		sim:    sim,
		ev:     ev,
		shut:   make(chan struct{}),
		runSim: make(chan float64, 1),
	}

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		hasStarted <- true
		r.operations()
	}()

	<-hasStarted

	return &r
}

// Shutdown stops the simulation and terminates the goroutine performing
// the runs.
func (r *Runner) Shutdown() {
	r.ev("runner: shutdown: started")
	defer r.ev("runner: shutdown: completed")

	r.sim.Stop()
	close(r.shut)
	r.wg.Wait()
}

// SignalRun asks the runner to mine until the given simulated time. If a
// signal is already pending the request is dropped, since a run is about to
// start anyway.
func (r *Runner) SignalRun(until float64) {
	select {
	case r.runSim <- until:
		r.ev("runner: signal run: until[%.0f]", until)
	default:
		r.ev("runner: signal run: run already pending")
	}
}

// Status returns a snapshot of the simulation state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree := r.sim.Tree()
	miners := r.sim.Miners()

	names := make([]string, len(miners))
	for i, m := range miners {
		names[i] = m.Name()
	}

	return Status{
		Running:    r.running,
		Time:       r.sim.Time(),
		Blocks:     tree.Len(),
		BestHeight: tree.BestBlock().Height,
		BestBlock:  tree.BestBlock(),
		Miners:     names,
	}
}

// Blocks returns the block events for ids in [from, from+limit), clamped to
// what exists.
func (r *Runner) Blocks(from int, limit int) []events.Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree := r.sim.Tree()

	if from < 0 {
		from = 0
	}

	var out []events.Block
	for id := from; id < tree.Len() && len(out) < limit; id++ {
		b := tree.Block(blocktree.BlockID(id))
		out = append(out, events.Block{
			Time:       float64(b.Timestamp),
			BlockID:    int(b.ID),
			Height:     b.Height,
			Difficulty: b.Difficulty,
			Chainwork:  b.Chainwork,
		})
	}

	return out
}

// LastError returns the error from the most recent run, if any.
func (r *Runner) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastErr
}

// =============================================================================

// operations processes run signals until shutdown.
func (r *Runner) operations() {
	r.ev("runner: operations: G started")
	defer r.ev("runner: operations: G completed")

	for {
		select {
		case until := <-r.runSim:
			r.runSimulation(until)
		case <-r.shut:
			r.ev("runner: operations: received shut signal")
			return
		}
	}
}

// runSimulation performs one bounded run of the engine. Queries are held
// off in chunks so status requests stay responsive during long runs.
func (r *Runner) runSimulation(until float64) {
	r.ev("runner: runSimulation: started: until[%.0f]", until)
	defer r.ev("runner: runSimulation: completed")

	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	// Run in one-simulated-hour slices, releasing the lock between slices.
	const slice = 3600.0

	for {
		r.mu.Lock()
		now := r.sim.Time()
		if now >= until {
			r.mu.Unlock()
			return
		}

		next := now + slice
		if next > until {
			next = until
		}

		err := r.sim.Run(next)

		r.lastErr = err
		r.mu.Unlock()

		if err != nil {
			if errors.Is(err, simulator.ErrNoHashrate) {
				r.ev("runner: runSimulation: no hashrate offered, stopping run")
				return
			}
			r.ev("runner: runSimulation: ERROR: %s", err)
			return
		}

		select {
		case <-r.shut:
			return
		default:
		}
	}
}
