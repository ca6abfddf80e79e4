package mempool_test

import (
	"math/big"
	"testing"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/mempool"
)

func blockTx(r int64, timeStamp uint64) database.BlockTx {
	return database.BlockTx{
		SignedTx: database.SignedTx{
			Tx: database.Tx{
				FromID: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
				ToID:   "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
				Value:  uint64(r),
			},
			V: big.NewInt(31),
			R: big.NewInt(r),
			S: big.NewInt(r),
		},
		TimeStamp: timeStamp,
	}
}

func Test_CRUD(t *testing.T) {
	mp := mempool.New()

	tx1 := blockTx(1, 300)
	tx2 := blockTx(2, 100)
	tx3 := blockTx(3, 200)

	mp.Upsert(tx1)
	mp.Upsert(tx2)
	mp.Upsert(tx3)

	if mp.Count() != 3 {
		t.Fatalf("Should have 3 transactions in the pool, got %d.", mp.Count())
	}

	// Queueing the same transaction again must not grow the pool.
	mp.Upsert(tx1)
	if mp.Count() != 3 {
		t.Fatalf("Should not duplicate a transaction, got %d.", mp.Count())
	}

	txs := mp.Copy()
	if len(txs) != 3 {
		t.Fatalf("Should copy 3 transactions, got %d.", len(txs))
	}

	// The copy is ordered by receive time.
	if txs[0].TimeStamp != 100 || txs[1].TimeStamp != 200 || txs[2].TimeStamp != 300 {
		t.Fatalf("Should order the copy by timestamp, got %d/%d/%d.", txs[0].TimeStamp, txs[1].TimeStamp, txs[2].TimeStamp)
	}

	mp.Delete(tx2)
	if mp.Count() != 2 {
		t.Fatalf("Should have 2 transactions after delete, got %d.", mp.Count())
	}

	mp.Truncate()
	if mp.Count() != 0 {
		t.Fatalf("Should have an empty pool after truncate, got %d.", mp.Count())
	}
}
