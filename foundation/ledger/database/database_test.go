package database_test

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Transactions(t *testing.T) {
	t.Log("Given the need to validate transaction signatures.")
	{
		privateKey, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate a private key.", success)

		fromID := database.PublicKeyToAccountID(privateKey.PublicKey)
		toID := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

		tx, err := database.NewTx(fromID, toID, 100)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct a transaction.", success)

		signedTx, err := tx.Sign(privateKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign the transaction.", success)

		if err := signedTx.Validate(); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the signed transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the signed transaction.", success)

		tampered := signedTx
		tampered.Value = 900
		if err := tampered.Validate(); err == nil {
			t.Fatalf("\t%s\tShould reject a transaction with a tampered value.", failed)
		}
		t.Logf("\t%s\tShould reject a transaction with a tampered value.", success)

		stolen := signedTx
		stolen.FromID = toID
		err = stolen.Validate()
		if !errors.Is(err, database.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a transaction claiming a different sender: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a transaction claiming a different sender.", success)

		reward := database.NewRewardTx(toID, 100)
		if err := reward.Validate(); err != nil {
			t.Fatalf("\t%s\tShould accept a reward transaction without a signature: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a reward transaction without a signature.", success)
	}
}

func Test_ProofOfWork(t *testing.T) {
	t.Log("Given the need to mine and verify blocks.")
	{
		gen := testGenesis()
		genesisBlock := database.NewGenesisBlock(gen)

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}

		block, err := mineBlock(gen, genesisBlock, privateKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if !block.IsHashSolved() {
			t.Fatalf("\t%s\tShould have a hash that satisfies the difficulty.", failed)
		}
		t.Logf("\t%s\tShould have a hash that satisfies the difficulty.", success)

		if err := block.ValidateBlock(genesisBlock, nopEv); err != nil {
			t.Fatalf("\t%s\tShould validate against the previous block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate against the previous block.", success)

		// Verification is a pure recompute so running it again must agree.
		if !block.IsHashSolved() {
			t.Fatalf("\t%s\tShould verify the same block twice.", failed)
		}
		t.Logf("\t%s\tShould verify the same block twice.", success)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = database.POW(ctx, database.POWArgs{
			BeneficiaryID: database.PublicKeyToAccountID(privateKey.PublicKey),
			Difficulty:    16,
			PrevBlock:     block,
			Trans:         []database.BlockTx{database.NewRewardTx(database.PublicKeyToAccountID(privateKey.PublicKey), gen.MiningReward)},
			EvHandler:     nopEv,
		})
		if err == nil {
			t.Fatalf("\t%s\tShould stop the search when the context is cancelled.", failed)
		}
		t.Logf("\t%s\tShould stop the search when the context is cancelled.", success)
	}
}

func Test_NextDifficulty(t *testing.T) {
	blk := func(number uint64, timeStamp uint64, difficulty uint) database.Block {
		return database.Block{
			Header: database.BlockHeader{
				Number:     number,
				TimeStamp:  timeStamp,
				Difficulty: difficulty,
			},
		}
	}

	type table struct {
		name   string
		gen    genesis.Genesis
		blocks []database.Block
		exp    uint
	}

	retarget := genesis.Genesis{
		Difficulty:     2,
		MinDifficulty:  1,
		RetargetWindow: 2,
		TargetInterval: 10,
		BoundFactor:    2,
	}

	tt := []table{
		{
			name: "inherit-mid-window",
			gen: genesis.Genesis{
				Difficulty:     2,
				MinDifficulty:  1,
				RetargetWindow: 10,
				TargetInterval: 10,
				BoundFactor:    2,
			},
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 1010, 2)},
			exp:    2,
		},
		{
			name:   "too-fast-raises",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 1001, 2)},
			exp:    3,
		},
		{
			name:   "too-slow-lowers",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 1050, 2)},
			exp:    1,
		},
		{
			name:   "in-band-unchanged",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 1020, 2)},
			exp:    2,
		},
		{
			name:   "never-below-floor",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 1), blk(1, 1050, 1)},
			exp:    1,
		},
		{
			name:   "clamps-backwards-timestamps",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 900, 2)},
			exp:    3,
		},
		{
			// The window is measured from blocks[last-window], not from
			// genesis: from block 1 the last window took 9s (too fast,
			// raises), from genesis it took 109s (would lower).
			name:   "window-measured-from-interior",
			gen:    retarget,
			blocks: []database.Block{blk(0, 1000, 2), blk(1, 1100, 2), blk(2, 1105, 2), blk(3, 1109, 2)},
			exp:    3,
		},
	}

	t.Log("Given the need to retarget the mining difficulty.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s schedule.", testID, tst.name)
			{
				f := func(t *testing.T) {
					got := database.NextDifficulty(tst.gen, tst.blocks)
					if got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould produce the scheduled difficulty.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould produce the scheduled difficulty.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	t.Log("Given the need to validate a candidate chain end to end.")
	{
		gen := testGenesis()
		privateKey, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %v", failed, err)
		}

		blocks := []database.Block{database.NewGenesisBlock(gen)}

		if err := database.ValidateChain(gen, blocks, nopEv); err != nil {
			t.Fatalf("\t%s\tShould treat a genesis-only chain as valid: %v", failed, err)
		}
		t.Logf("\t%s\tShould treat a genesis-only chain as valid.", success)

		for i := 0; i < 3; i++ {
			block, err := mineBlock(gen, blocks[len(blocks)-1], privateKey)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, i+1, err)
			}
			blocks = append(blocks, block)
		}
		t.Logf("\t%s\tShould be able to mine a chain of blocks.", success)

		if err := database.ValidateChain(gen, blocks, nopEv); err != nil {
			t.Fatalf("\t%s\tShould validate an honestly mined chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate an honestly mined chain.", success)

		tampered := copyBlocks(t, blocks)
		tampered[2].Trans[0].Value += 1000

		err = database.ValidateChain(gen, tampered, nopEv)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject a chain with a tampered transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain with a tampered transaction.", success)

		broken := copyBlocks(t, blocks)
		broken[3].Header.PrevBlockHash = broken[1].Hash()

		err = database.ValidateChain(gen, broken, nopEv)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject a chain with broken linkage: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain with broken linkage.", success)

		wrongStart := blocks[1:]
		err = database.ValidateChain(gen, wrongStart, nopEv)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject a chain that does not start at genesis: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain that does not start at genesis.", success)

		// The chain above was honestly mined on a difficulty 1 genesis. A
		// network anchored to a harder genesis must reject it wholesale,
		// however internally consistent it is.
		networkGen := gen
		networkGen.Difficulty = 2

		err = database.ValidateChain(networkGen, blocks, nopEv)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject a chain built on a foreign genesis: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a chain built on a foreign genesis.", success)
	}
}

// =============================================================================

func nopEv(v string, args ...any) {}

// copyBlocks produces an independent deep copy so a test can tamper with a
// chain without corrupting the original.
func copyBlocks(t *testing.T, blocks []database.Block) []database.Block {
	t.Helper()

	data, err := json.Marshal(blocks)
	if err != nil {
		t.Fatalf("marshaling blocks: %v", err)
	}

	var cpy []database.Block
	if err := json.Unmarshal(data, &cpy); err != nil {
		t.Fatalf("unmarshaling blocks: %v", err)
	}

	return cpy
}

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:           time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:        1,
		MiningReward:   100,
		Difficulty:     1,
		MinDifficulty:  1,
		RetargetWindow: 100,
		TargetInterval: 10,
		BoundFactor:    4,
	}
}

// mineBlock solves the proof of work for one signed transaction plus the
// mining reward on top of the specified previous block.
func mineBlock(gen genesis.Genesis, prevBlock database.Block, privateKey *ecdsa.PrivateKey) (database.Block, error) {
	beneficiaryID := database.PublicKeyToAccountID(privateKey.PublicKey)

	tx, err := database.NewTx(beneficiaryID, database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"), 10)
	if err != nil {
		return database.Block{}, err
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return database.Block{}, err
	}

	trans := []database.BlockTx{
		database.NewBlockTx(signedTx),
		database.NewRewardTx(beneficiaryID, gen.MiningReward),
	}

	return database.POW(context.Background(), database.POWArgs{
		BeneficiaryID: beneficiaryID,
		Difficulty:    database.NextDifficulty(gen, []database.Block{prevBlock}),
		PrevBlock:     prevBlock,
		Trans:         trans,
		EvHandler:     nopEv,
	})
}
