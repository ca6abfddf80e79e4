package disk_test

import (
	"testing"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/storage/disk"
)

func Test_ReadWrite(t *testing.T) {
	strg, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to create the storage: %v", err)
	}
	defer strg.Close()

	gen := genesis.Genesis{
		Date:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty: 1,
	}

	prev := database.NewGenesisBlock(gen)

	var want []database.BlockData
	for i := 1; i <= 3; i++ {
		block := database.Block{
			Header: database.BlockHeader{
				Number:        uint64(i),
				PrevBlockHash: prev.Hash(),
				TimeStamp:     uint64(1000 + i),
				Difficulty:    1,
			},
		}

		blockData := database.NewBlockData(block)
		if err := strg.Write(blockData); err != nil {
			t.Fatalf("Should be able to write block %d: %v", i, err)
		}

		want = append(want, blockData)
		prev = block
	}

	// Random access by number.
	got, err := strg.GetBlock(2)
	if err != nil {
		t.Fatalf("Should be able to read block 2: %v", err)
	}
	if got.Hash != want[1].Hash {
		t.Fatalf("Should read back the same block, got %s, exp %s.", got.Hash, want[1].Hash)
	}

	// Full iteration in block order.
	var count int
	iter := strg.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate block %d: %v", count+1, err)
		}
		if blockData.Hash != want[count].Hash {
			t.Fatalf("Should iterate blocks in order, got %s, exp %s.", blockData.Hash, want[count].Hash)
		}
		count++
	}
	if count != 3 {
		t.Fatalf("Should iterate all 3 blocks, got %d.", count)
	}

	// Reset drops everything.
	if err := strg.Reset(); err != nil {
		t.Fatalf("Should be able to reset the storage: %v", err)
	}
	if _, err := strg.GetBlock(1); err == nil {
		t.Fatalf("Should not find blocks after a reset.")
	}
}
