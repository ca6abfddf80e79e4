package database

import "github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"

// NextDifficulty computes the difficulty required of the next block to be
// mined on top of the specified chain. Retargeting happens every
// RetargetWindow blocks; between retarget points the next block inherits
// the last block's difficulty unchanged.
func NextDifficulty(gen genesis.Genesis, blocks []Block) uint {
	last := blocks[len(blocks)-1]
	nextNumber := last.Header.Number + 1

	window := gen.RetargetWindow
	if window == 0 || nextNumber%window != 0 {
		return last.Header.Difficulty
	}

	// Measure the wall clock time the last window of blocks actually took.
	// Early in the chain the window is truncated at genesis.
	first := blocks[0]
	if back := int(last.Header.Number) - int(window); back > 0 {
		first = blocks[back]
	}

	// Block timestamps come from miner clocks and are not independently
	// enforced to be monotonic. A non-positive elapsed time is clamped to
	// one second rather than producing a wild difficulty swing.
	actual := int64(last.Header.TimeStamp) - int64(first.Header.TimeStamp)
	if actual < 1 {
		actual = 1
	}

	expected := int64(window * gen.TargetInterval)
	factor := int64(gen.BoundFactor)
	if factor < 1 {
		factor = 1
	}

	switch {
	case actual*factor < expected:
		// Blocks arrived too fast, make the puzzle harder.
		return last.Header.Difficulty + 1

	case actual > expected*factor:
		// Blocks arrived too slow, ease the puzzle off but never below
		// the floor. The floor is never less than 1.
		floor := gen.MinDifficulty
		if floor < 1 {
			floor = 1
		}
		if last.Header.Difficulty <= floor {
			return floor
		}
		return last.Header.Difficulty - 1

	default:
		return last.Header.Difficulty
	}
}
