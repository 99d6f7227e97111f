package blocktree

// BlockID identifies a block inside a tree. Identifiers are handed out
// sequentially starting with the genesis block at 0.
type BlockID int

// NoBlock is the parent id carried by the genesis block.
const NoBlock BlockID = -1

// Block represents a single mined block. Blocks are immutable values: once a
// block has been added to a tree it is never changed or removed, and the tree
// retains the full history indefinitely.
type Block struct {
	ID         BlockID
	Parent     BlockID // weak reference into the owning tree, NoBlock for genesis
	Height     int
	Timestamp  int64 // whole seconds
	Difficulty float64
	Chainwork  float64 // cumulative difficulty from genesis, genesis carries 0
}

// IsGenesis reports whether the block is the root of its tree.
func (b Block) IsGenesis() bool {
	return b.Parent == NoBlock
}
