// Package blocktree maintains the full tree of mined blocks and answers
// which chain is heaviest. The tree is fork aware: forks and tips are
// tracked with a sparse set of markers so that extending a tip costs O(1)
// while straight-line interior blocks are never materialized as nodes.
package blocktree

import "fmt"

// pointID indexes the marker arena. Markers exist only at branching points
// and at chain tips and are never deleted, so stale branches stay
// addressable.
type pointID int

const noPoint pointID = -1

// point marks a special block on the tree: a fork junction (it has
// downstream children) or a tip (it has none). The parent link is a weak
// upstream reference; the forks list owns the downstream markers.
type point struct {
	block  BlockID
	parent pointID
	forks  []pointID
}

// =============================================================================

// Tree holds the set of all blocks ever added, rooted at a genesis block,
// plus the sparse marker structure over them. A Tree is exclusively owned by
// whoever drives the simulation; it performs no locking of its own.
type Tree struct {
	blocks []Block   // arena, index equals BlockID
	points []point   // arena of fork/tip markers
	marker []pointID // per block, the marker governing its segment
	best   BlockID
}

// New constructs a tree containing only the genesis block: id 0, no parent,
// height 0, timestamp 0, zero chainwork, and the given difficulty.
func New(initialDifficulty float64) *Tree {
	t := Tree{
		blocks: []Block{{
			ID:         0,
			Parent:     NoBlock,
			Difficulty: initialDifficulty,
		}},
		points: []point{{block: 0, parent: noPoint}},
		marker: []pointID{0},
		best:   0,
	}

	return &t
}

// Genesis returns the root block.
func (t *Tree) Genesis() Block {
	return t.blocks[0]
}

// BestBlock returns the block with the greatest chainwork seen so far. Ties
// keep the incumbent: a later block with equal chainwork never displaces the
// current best.
func (t *Tree) BestBlock() Block {
	return t.blocks[t.best]
}

// Len returns the number of blocks in the tree, genesis included.
func (t *Tree) Len() int {
	return len(t.blocks)
}

// Block returns the block with the specified id. Asking for an id that was
// never added is a caller bug and panics.
func (t *Tree) Block(id BlockID) Block {
	if id < 0 || int(id) >= len(t.blocks) {
		panic(fmt.Sprintf("blocktree: unknown block id %d", id))
	}
	return t.blocks[id]
}

// Tips returns the current end block of every branch, live or stale.
func (t *Tree) Tips() []Block {
	var tips []Block
	for _, p := range t.points {
		if len(p.forks) == 0 {
			tips = append(tips, t.blocks[p.block])
		}
	}
	return tips
}

// NewBlock creates the next block on top of parent, deriving the height and
// chainwork from the parent, and adds it to the tree.
func (t *Tree) NewBlock(parent Block, timestamp int64, difficulty float64) Block {
	block := Block{
		ID:         BlockID(len(t.blocks)),
		Parent:     parent.ID,
		Height:     parent.Height + 1,
		Timestamp:  timestamp,
		Difficulty: difficulty,
		Chainwork:  parent.Chainwork + difficulty,
	}
	t.AddBlock(block)
	return block
}

// AddBlock includes the given block in the tree. The block id must be the
// next unused id and the parent must already be present; a violation of
// either is an unrecoverable caller bug and panics.
func (t *Tree) AddBlock(block Block) {
	if int(block.ID) != len(t.blocks) {
		panic(fmt.Sprintf("blocktree: block id %d already present or out of order, next is %d", block.ID, len(t.blocks)))
	}
	if block.Parent < 0 || int(block.Parent) >= len(t.blocks) {
		panic(fmt.Sprintf("blocktree: parent %d of block %d not present", block.Parent, block.ID))
	}

	t.blocks = append(t.blocks, block)
	t.marker = append(t.marker, noPoint)

	pp := t.marker[block.Parent]

	switch {
	case t.points[pp].block == block.Parent && len(t.points[pp].forks) == 0:

		// The parent is a tip marker: just move the marker forward.
		t.points[pp].block = block.ID
		t.marker[block.ID] = pp

	case t.points[pp].block == block.Parent:

		// The parent is an existing fork junction: hang a new branch off it.
		np := t.newPoint(block.ID, pp)
		t.points[pp].forks = append(t.points[pp].forks, np)
		t.marker[block.ID] = np

	default:

		// The parent sits strictly inside the segment governed by pp. A
		// late-arriving competitor forked off mid-segment, so materialize a
		// fork marker exactly at the parent, splice it above pp, and attach
		// a fresh tip marker for the new block.
		fp := t.newPoint(block.Parent, t.points[pp].parent)
		t.points[fp].forks = append(t.points[fp].forks, pp)
		t.points[pp].parent = fp

		np := t.newPoint(block.ID, fp)
		t.points[fp].forks = append(t.points[fp].forks, np)
		t.marker[block.ID] = np

		// Retarget every block from the parent back to the previous marker
		// boundary so the segment split is visible to future attachments.
		// This walk is why this case costs O(k); it never runs for plain
		// tip extensions.
		for id := block.Parent; id != NoBlock && t.marker[id] == pp; id = t.blocks[id].Parent {
			t.marker[id] = fp
		}
	}

	if t.blocks[t.best].Chainwork < block.Chainwork {
		t.best = block.ID
	}
}

// newPoint allocates a marker in the arena and returns its id.
func (t *Tree) newPoint(block BlockID, parent pointID) pointID {
	t.points = append(t.points, point{block: block, parent: parent})
	return pointID(len(t.points) - 1)
}
