package tip_test

import (
	"testing"

	"github.com/markblundeberg/miningsim/foundation/mining/blocktree"
	"github.com/markblundeberg/miningsim/foundation/mining/tip"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// buildChain extends the tree with a straight chain of count blocks of the
// given difficulty, spaced spacing seconds apart, and returns the last one.
func buildChain(tree *blocktree.Tree, count int, difficulty float64, spacing int64) blocktree.Block {
	block := tree.Genesis()
	for i := 1; i <= count; i++ {
		block = tree.NewBlock(block, int64(i)*spacing, difficulty)
	}
	return block
}

// =============================================================================

func Test_WindowLength(t *testing.T) {
	t.Log("Given the need to validate the rolling window is bounded.")
	{
		tree := blocktree.New(2)
		buildChain(tree, 300, 2, 600)

		tt := []struct {
			height int
			length int
		}{
			{0, 1},
			{1, 2},
			{145, 146},
			{146, 147},
			{147, 147},
			{300, 147},
		}

		t.Log("\tWhen building tips at various heights.")
		{
			for _, tst := range tt {
				cursor := tip.FromBlock(tree, tree.Block(blocktree.BlockID(tst.height)))

				if cursor.WindowLength() != tst.length {
					t.Errorf("\t%s\tShould have window length %d at height %d: got %d.", failed, tst.length, tst.height, cursor.WindowLength())
				} else {
					t.Logf("\t%s\tShould have window length %d at height %d.", success, tst.length, tst.height)
				}
			}
		}
	}
}

func Test_EarlyChainCopiesDifficulty(t *testing.T) {
	t.Log("Given the need to validate early chain history copies difficulty.")
	{
		tree := blocktree.New(7)
		buildChain(tree, 145, 7, 1)

		t.Log("\tWhen the window holds fewer than 147 blocks.")
		{
			for _, height := range []int{0, 1, 50, 145} {
				block := tree.Block(blocktree.BlockID(height))
				cursor := tip.FromBlock(tree, block)

				if cursor.NextDifficulty != block.Difficulty {
					t.Errorf("\t%s\tShould copy the difficulty at height %d: got %g.", failed, height, cursor.NextDifficulty)
				} else {
					t.Logf("\t%s\tShould copy the difficulty at height %d.", success, height)
				}
			}
		}
	}
}

func Test_DifficultyAdjustment(t *testing.T) {
	type table struct {
		name    string
		spacing int64
		next    float64
	}

	// With constant difficulty d the 144-block window spans 144*spacing
	// seconds and 144*d work, so the adjustment is d*600/spacing after
	// clamping the span to [43200, 172800].
	const d = 4.0

	tt := []table{
		{"clamp-fast", 1, 2 * d},     // 144s clamps to 43200: 144*d*600/43200
		{"on-target", 600, d},        // 86400s is inside the clamp window
		{"clamp-slow", 7000, d / 2},  // 1008000s clamps to 172800
		{"low-bound", 300, 2 * d},    // 43200s sits exactly on the low clamp
		{"high-bound", 1200, d / 2},  // 172800s sits exactly on the high clamp
	}

	t.Log("Given the need to validate the difficulty adjustment formula.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen mining 146 blocks %d seconds apart.", testID, tst.spacing)
			{
				f := func(t *testing.T) {
					tree := blocktree.New(d)
					last := buildChain(tree, 146, d, tst.spacing)

					cursor := tip.FromBlock(tree, last)

					if cursor.WindowLength() != 147 {
						t.Fatalf("\t%s\tTest %d:\tShould have a full window: got %d.", failed, testID, cursor.WindowLength())
					}
					t.Logf("\t%s\tTest %d:\tShould have a full window.", success, testID)

					if cursor.NextDifficulty != tst.next {
						t.Errorf("\t%s\tTest %d:\tShould adjust difficulty to %g: got %g.", failed, testID, tst.next, cursor.NextDifficulty)
					} else {
						t.Logf("\t%s\tTest %d:\tShould adjust difficulty to %g.", success, testID, tst.next)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_FastSlowConstruction(t *testing.T) {
	t.Log("Given the need to validate both tip constructors agree.")
	{
		tree := blocktree.New(3)
		rng := []int64{600, 30, 2000, 600, 601, 599, 4000}

		block := tree.Genesis()
		fast := tip.FromBlock(tree, block)

		t.Log("\tWhen extending a chain 400 blocks with uneven spacing.")
		{
			var timestamp int64
			for i := 0; i < 400; i++ {
				timestamp += rng[i%len(rng)]
				block = tree.NewBlock(block, timestamp, fast.NextDifficulty)
				fast = tip.FromParent(block, fast)

				slow := tip.FromBlock(tree, block)

				if fast.NextDifficulty != slow.NextDifficulty {
					t.Fatalf("\t%s\tShould compute identical next difficulty at height %d: fast %g, slow %g.", failed, block.Height, fast.NextDifficulty, slow.NextDifficulty)
				}
				if fast.WindowLength() != slow.WindowLength() {
					t.Fatalf("\t%s\tShould compute identical window lengths at height %d.", failed, block.Height)
				}
			}
			t.Logf("\t%s\tShould compute identical next difficulty for all heights.", success)
			t.Logf("\t%s\tShould compute identical window lengths for all heights.", success)
		}
	}
}

func Test_SiblingIsolation(t *testing.T) {
	t.Log("Given the need to validate sibling tips never share history.")
	{
		tree := blocktree.New(5)
		fork := buildChain(tree, 10, 5, 600)
		forkTip := tip.FromBlock(tree, fork)

		t.Log("\tWhen two branches extend the same parent tip.")
		{
			left := tree.NewBlock(fork, 6600, 5)
			leftTip := tip.FromParent(left, forkTip)

			right := tree.NewBlock(fork, 6700, 8)
			rightTip := tip.FromParent(right, forkTip)

			// Keep the left branch growing; the right tip must not move.
			for i := int64(1); i <= 5; i++ {
				left = tree.NewBlock(left, 6600+i*600, 5)
				leftTip = tip.FromParent(left, leftTip)
			}

			if rightTip.Block.ID != right.ID || rightTip.WindowLength() != 12 {
				t.Errorf("\t%s\tShould leave the sibling tip untouched by the other branch.", failed)
			} else {
				t.Logf("\t%s\tShould leave the sibling tip untouched by the other branch.", success)
			}

			if rightTip.NextDifficulty != right.Difficulty {
				t.Errorf("\t%s\tShould derive the sibling difficulty from its own branch.", failed)
			} else {
				t.Logf("\t%s\tShould derive the sibling difficulty from its own branch.", success)
			}

			slow := tip.FromBlock(tree, right)
			if slow.NextDifficulty != rightTip.NextDifficulty {
				t.Errorf("\t%s\tShould rebuild the same sibling tip from the tree.", failed)
			} else {
				t.Logf("\t%s\tShould rebuild the same sibling tip from the tree.", success)
			}
		}
	}
}
