// Package tip provides a cursor over one branch of a block tree carrying
// just enough recent history to evaluate the difficulty adjustment
// algorithm without re-walking the chain. Tips are immutable values: every
// advance produces a new Tip, so sibling branches that share ancestry can
// never corrupt each other's windows.
package tip

import "github.com/markblundeberg/miningsim/foundation/mining/blocktree"

// Difficulty adjustment parameters. The rule is the Bitcoin Cash DAA active
// since November 2017: a 144-block work-over-time average targeting one
// block per 600 seconds, with the measured span clamped to bound both
// runaway-easy and runaway-hard adjustments.
const (
	// TargetSpacing is the desired number of seconds between blocks.
	TargetSpacing = 600

	// maxAncestors is how many ancestors a tip retains; together with the
	// tip's own block the window holds up to daaWindow entries.
	maxAncestors = 146
	daaWindow    = 147

	// The measured timespan is clamped to [minActual, maxActual] seconds.
	minActual = 72 * TargetSpacing
	maxActual = 288 * TargetSpacing
)

// Tip binds a block to a bounded window of its most recent ancestors and the
// difficulty the next block on this branch must carry.
type Tip struct {
	Block          blocktree.Block
	NextDifficulty float64

	// window is this tip's own ancestor chain ordered oldest first, ending
	// with the tip block itself. It is never shared mutably with another
	// tip: constructors always copy.
	window []blocktree.Block
}

// FromParent constructs a tip for a block that extends the branch the parent
// tip was on. The parent's window is copied, the new block appended, and the
// oldest entry trimmed. This is the fast path used for every block the
// simulation commits.
func FromParent(block blocktree.Block, parent Tip) Tip {
	return newTip(block, parent.window)
}

// FromBlock constructs a tip for an arbitrary block by walking up to
// 146 ancestors through the tree. This is the slow path, used to bootstrap
// miners onto a chain when no parent tip is at hand.
func FromBlock(tree *blocktree.Tree, block blocktree.Block) Tip {
	var history []blocktree.Block
	for id, n := block.Parent, 0; id != blocktree.NoBlock && n < maxAncestors; n++ {
		ancestor := tree.Block(id)
		history = append(history, ancestor)
		id = ancestor.Parent
	}

	// The walk collected newest first; the window wants oldest first.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return newTip(block, history)
}

// WindowLength returns the number of blocks in the window, the tip's own
// block included.
func (t Tip) WindowLength() int {
	return len(t.window)
}

// newTip builds the window from the given ancestor history and derives the
// next required difficulty.
func newTip(block blocktree.Block, history []blocktree.Block) Tip {
	if len(history) > maxAncestors {
		history = history[len(history)-maxAncestors:]
	}

	window := make([]blocktree.Block, len(history), len(history)+1)
	copy(window, history)
	window = append(window, block)

	t := Tip{
		Block:  block,
		window: window,
	}

	// Early chain history just copies the difficulty forward until a full
	// window is available.
	if len(window) < daaWindow {
		t.NextDifficulty = block.Difficulty
		return t
	}

	// Timestamps are monotonic by construction in this simulation, so the
	// median prefiltering of the consensus rule collapses to fixed offsets:
	// the second-newest and the 146th-newest window entries.
	last := window[len(window)-2]
	first := window[len(window)-146]

	elapsed := last.Timestamp - first.Timestamp
	if elapsed < minActual {
		elapsed = minActual
	}
	if elapsed > maxActual {
		elapsed = maxActual
	}

	work := last.Chainwork - first.Chainwork
	t.NextDifficulty = work * TargetSpacing / float64(elapsed)

	return t
}
