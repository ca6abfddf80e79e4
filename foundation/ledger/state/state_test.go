package state_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/state"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_SubmitMineBalance(t *testing.T) {
	t.Log("Given the need to move funds through mined blocks.")
	{
		minerKey := genKey(t)
		userKey := genKey(t)

		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)
		userID := database.PublicKeyToAccountID(userKey.PublicKey)
		otherID := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

		st := newState(t, minerID, true)

		signedTx := signTx(t, userKey, otherID, 50)

		blockNum, err := st.SubmitWalletTransaction(signedTx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to submit a signed transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to submit a signed transaction.", success)

		if blockNum != 1 {
			t.Fatalf("\t%s\tShould report the next block number, got %d, exp 1.", failed, blockNum)
		}
		t.Logf("\t%s\tShould report the next block number.", success)

		block, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if block.Header.Number != 1 {
			t.Fatalf("\t%s\tShould mine block number 1, got %d.", failed, block.Header.Number)
		}
		t.Logf("\t%s\tShould mine block number 1.", success)

		if st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould clear mined transactions from the pool.", failed)
		}
		t.Logf("\t%s\tShould clear mined transactions from the pool.", success)

		if bal := st.QueryBalance(otherID); bal != 50 {
			t.Fatalf("\t%s\tShould credit the recipient, got %d, exp 50.", failed, bal)
		}
		t.Logf("\t%s\tShould credit the recipient.", success)

		if bal := st.QueryBalance(userID); bal != -50 {
			t.Fatalf("\t%s\tShould debit the sender, got %d, exp -50.", failed, bal)
		}
		t.Logf("\t%s\tShould debit the sender.", success)

		if bal := st.QueryBalance(minerID); bal != 100 {
			t.Fatalf("\t%s\tShould credit the miner with the reward, got %d, exp 100.", failed, bal)
		}
		t.Logf("\t%s\tShould credit the miner with the reward.", success)

		if bal := st.QueryBalance(database.RewardID); bal != 0 {
			t.Fatalf("\t%s\tShould never debit the reward sentinel, got %d, exp 0.", failed, bal)
		}
		t.Logf("\t%s\tShould never debit the reward sentinel.", success)
	}
}

func Test_RejectBadTransactions(t *testing.T) {
	t.Log("Given the need to gate what enters the pending pool.")
	{
		minerKey := genKey(t)
		userKey := genKey(t)
		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)
		otherID := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

		st := newState(t, minerID, true)

		tampered := signTx(t, userKey, otherID, 50)
		tampered.Value = 5000

		_, err := st.SubmitWalletTransaction(tampered)
		if !errors.Is(err, database.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject a tampered transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a tampered transaction.", success)

		reward := database.NewRewardTx(otherID, 100)
		_, err = st.SubmitWalletTransaction(reward.SignedTx)
		if !errors.Is(err, database.ErrInvalidSignature) {
			t.Fatalf("\t%s\tShould reject an externally submitted reward: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an externally submitted reward.", success)

		if st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould keep rejected transactions out of the pool.", failed)
		}
		t.Logf("\t%s\tShould keep rejected transactions out of the pool.", success)
	}
}

func Test_Resolve(t *testing.T) {
	t.Log("Given the need to adopt the longest valid peer chain.")
	{
		minerKey := genKey(t)
		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)

		st := newState(t, minerID, true,
			"peer-short", "peer-mid", "peer-long", "peer-bad", "peer-down")

		chains := map[string][]database.Block{
			"peer-short": buildChain(t, minerID, 2),
			"peer-mid":   buildChain(t, minerID, 4),
			"peer-long":  buildChain(t, minerID, 6),
		}

		// The longest chain on offer is corrupt and must never win.
		bad := buildChain(t, minerID, 7)
		bad[3].Trans[0].Value += 1000
		chains["peer-bad"] = bad

		fetch := func(pr peer.Peer) ([]database.Block, error) {
			blocks, exists := chains[pr.Host]
			if !exists {
				return nil, errors.New("connection refused")
			}
			return blocks, nil
		}

		replaced, err := st.Resolve(fetch)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run consensus resolution: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to run consensus resolution.", success)

		if !replaced {
			t.Fatalf("\t%s\tShould replace the local chain.", failed)
		}
		t.Logf("\t%s\tShould replace the local chain.", success)

		if got := len(st.RetrieveChain()); got != 6 {
			t.Fatalf("\t%s\tShould adopt the longest valid chain, got %d blocks, exp 6.", failed, got)
		}
		t.Logf("\t%s\tShould adopt the longest valid chain.", success)

		if got := st.RetrieveLatestBlock().Header.Number; got != 5 {
			t.Fatalf("\t%s\tShould have the adopted head, got block %d, exp 5.", failed, got)
		}
		t.Logf("\t%s\tShould have the adopted head.", success)
	}
}

func Test_ResolveEqualLength(t *testing.T) {
	t.Log("Given the need to keep the local chain against an equal length fork.")
	{
		minerKey := genKey(t)
		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)

		st := newState(t, minerID, true, "peer-fork")

		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a local block: %v", failed, err)
		}
		localHead := st.RetrieveLatestBlock().Hash()

		fork := buildChain(t, minerID, 2)

		fetch := func(pr peer.Peer) ([]database.Block, error) {
			return fork, nil
		}

		replaced, err := st.Resolve(fetch)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run consensus resolution: %v", failed, err)
		}

		if replaced {
			t.Fatalf("\t%s\tShould never adopt an equal length chain.", failed)
		}
		t.Logf("\t%s\tShould never adopt an equal length chain.", success)

		if st.RetrieveLatestBlock().Hash() != localHead {
			t.Fatalf("\t%s\tShould keep the local head.", failed)
		}
		t.Logf("\t%s\tShould keep the local head.", success)
	}
}

func Test_ProcessProposedBlock(t *testing.T) {
	t.Log("Given the need to accept blocks mined by peers.")
	{
		minerKey := genKey(t)
		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)

		miner := newState(t, minerID, true)
		follower := newState(t, minerID, true)

		block, err := miner.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if err := follower.ProcessProposedBlock(block); err != nil {
			t.Fatalf("\t%s\tShould accept a valid proposed block: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid proposed block.", success)

		err = follower.ProcessProposedBlock(block)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject the same block twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the same block twice.", success)
	}
}

func Test_RejectOffScheduleBlock(t *testing.T) {
	t.Log("Given the need to hold proposed blocks to the difficulty schedule.")
	{
		minerKey := genKey(t)
		minerID := database.PublicKeyToAccountID(minerKey.PublicKey)

		gen := testGenesis()
		gen.Difficulty = 2

		follower := newStateWithGenesis(t, gen, minerID, true)

		// A block that links and carries a solved hash, but was mined one
		// difficulty below what the schedule demands.
		cheap, err := database.POW(context.Background(), database.POWArgs{
			BeneficiaryID: minerID,
			Difficulty:    1,
			PrevBlock:     database.NewGenesisBlock(gen),
			Trans:         []database.BlockTx{database.NewRewardTx(minerID, gen.MiningReward)},
			EvHandler:     func(v string, args ...any) {},
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the cheap block: %v", failed, err)
		}

		err = follower.ProcessProposedBlock(cheap)
		if !errors.Is(err, database.ErrInvalidChain) {
			t.Fatalf("\t%s\tShould reject a block mined below the schedule: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block mined below the schedule.", success)

		if got := len(follower.RetrieveChain()); got != 1 {
			t.Fatalf("\t%s\tShould keep the chain unchanged, got %d blocks, exp 1.", failed, got)
		}
		t.Logf("\t%s\tShould keep the chain unchanged.", success)

		// The surviving chain must still pass the same audit a restarting
		// node runs over its persisted blocks.
		if err := follower.ValidateChain(follower.RetrieveChain()); err != nil {
			t.Fatalf("\t%s\tShould keep a chain that passes revalidation: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep a chain that passes revalidation.", success)
	}
}

func Test_PoolSurvivesReplace(t *testing.T) {
	type table struct {
		name            string
		keepUnconfirmed bool
		expPool         int
	}

	tt := []table{
		{name: "keep", keepUnconfirmed: true, expPool: 1},
		{name: "drop", keepUnconfirmed: false, expPool: 0},
	}

	t.Log("Given the need to reconcile the pool after a chain replacement.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen unconfirmed policy is %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					minerKey := genKey(t)
					userKey := genKey(t)
					minerID := database.PublicKeyToAccountID(minerKey.PublicKey)
					otherID := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

					st := newState(t, minerID, tst.keepUnconfirmed)

					confirmedTx := signTx(t, userKey, otherID, 10)
					unconfirmedTx := signTx(t, userKey, otherID, 20)

					if _, err := st.SubmitWalletTransaction(confirmedTx); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to submit transaction: %v", failed, testID, err)
					}
					if _, err := st.SubmitWalletTransaction(unconfirmedTx); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to submit transaction: %v", failed, testID, err)
					}

					// Build a longer remote chain that confirms the first
					// transaction but not the second.
					remote := newState(t, minerID, true)
					if _, err := remote.SubmitWalletTransaction(confirmedTx); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to submit transaction remotely: %v", failed, testID, err)
					}
					for i := 0; i < 2; i++ {
						if _, err := remote.MineNewBlock(context.Background()); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to mine remotely: %v", failed, testID, err)
						}
					}

					replaced, err := st.ProcessCandidateChain(remote.RetrieveChain())
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to process the candidate chain: %v", failed, testID, err)
					}
					if !replaced {
						t.Fatalf("\t%s\tTest %d:\tShould replace the local chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould replace the local chain.", success, testID)

					if got := st.QueryMempoolLength(); got != tst.expPool {
						t.Fatalf("\t%s\tTest %d:\tShould reconcile the pool, got %d, exp %d.", failed, testID, got, tst.expPool)
					}
					t.Logf("\t%s\tTest %d:\tShould reconcile the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

// =============================================================================

func genKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generating private key: %v", err)
	}

	return privateKey
}

func signTx(t *testing.T, privateKey *ecdsa.PrivateKey, toID database.AccountID, value uint64) database.SignedTx {
	t.Helper()

	fromID := database.PublicKeyToAccountID(privateKey.PublicKey)

	tx, err := database.NewTx(fromID, toID, value)
	if err != nil {
		t.Fatalf("constructing transaction: %v", err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		t.Fatalf("signing transaction: %v", err)
	}

	return signedTx
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

func newState(t *testing.T, beneficiaryID database.AccountID, keepUnconfirmed bool, peers ...string) *state.State {
	t.Helper()

	return newStateWithGenesis(t, testGenesis(), beneficiaryID, keepUnconfirmed, peers...)
}

func newStateWithGenesis(t *testing.T, gen genesis.Genesis, beneficiaryID database.AccountID, keepUnconfirmed bool, peers ...string) *state.State {
	t.Helper()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}

	peerSet := peer.NewPeerSet()
	for _, host := range peers {
		peerSet.Add(peer.New(host))
	}

	st, err := state.New(state.Config{
		BeneficiaryID:   beneficiaryID,
		Host:            "test-node",
		Storage:         strg,
		Genesis:         gen,
		KnownPeers:      peerSet,
		KeepUnconfirmed: keepUnconfirmed,
	})
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	return st
}

// buildChain mines length-1 blocks on top of the shared genesis so tests
// have independent chains of a known length to offer as candidates.
func buildChain(t *testing.T, beneficiaryID database.AccountID, length int) []database.Block {
	t.Helper()

	st := newState(t, beneficiaryID, true)
	for i := 1; i < length; i++ {
		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("mining block %d: %v", i, err)
		}
	}

	return st.RetrieveChain()
}
