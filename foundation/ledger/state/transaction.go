package state

import (
	"fmt"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
)

// SubmitWalletTransaction verifies a transaction received from a wallet and
// queues it in the pending pool. On success the transaction is shared with
// the known peers and the number of the block it is expected to land in is
// returned.
func (s *State) SubmitWalletTransaction(signedTx database.SignedTx) (uint64, error) {
	blockNum, tx, err := s.upsertTransaction(signedTx)
	if err != nil {
		return 0, err
	}

	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}

	return blockNum, nil
}

// UpsertNodeTransaction verifies and queues a transaction shared by a peer
// node. Peer transactions are not re-shared to avoid broadcast loops.
func (s *State) UpsertNodeTransaction(tx database.BlockTx) error {
	if _, _, err := s.upsertTransaction(tx.SignedTx); err != nil {
		return err
	}

	return nil
}

// upsertTransaction performs the verification gate every transaction passes
// before entering the pool, regardless of where it came from.
func (s *State) upsertTransaction(signedTx database.SignedTx) (uint64, database.BlockTx, error) {

	// The reward sender is reserved for block issuance. Nothing submitted
	// from the outside may claim it.
	if signedTx.IsReward() {
		return 0, database.BlockTx{}, fmt.Errorf("%w: reward sender is reserved", database.ErrInvalidSignature)
	}

	if err := signedTx.Validate(); err != nil {
		return 0, database.BlockTx{}, err
	}

	tx := database.NewBlockTx(signedTx)
	s.mempool.Upsert(tx)

	s.evHandler("state: upsertTransaction: tx[%s] queued: pool[%d]", tx, s.mempool.Count())

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1].Header.Number + 1, tx, nil
}
