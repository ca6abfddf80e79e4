package state

import (
	"context"
	"fmt"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
)

// MineNewBlock performs the proof of work search over the current pending
// pool plus the mining reward and appends the solved block to the chain.
// The mutation lock is held only to snapshot the pool and head and again to
// append the result, so transaction submissions are never starved while the
// search runs. Only one search may be in flight per node.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.Lock()

	if s.mining {
		s.mu.Unlock()
		return database.Block{}, ErrMiningInProgress
	}

	// Register the cancel function so an accepted remote block or a chain
	// replacement can interrupt the search.
	ctx, cancel := context.WithCancel(ctx)
	s.mining = true
	s.cancelMining = cancel

	// Snapshot everything the search needs while holding the lock.
	trans := append(s.mempool.Copy(), database.NewRewardTx(s.beneficiaryID, s.genesis.MiningReward))
	prevBlock := s.blocks[len(s.blocks)-1]
	difficulty := database.NextDifficulty(s.genesis, s.blocks)

	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.mining = false
		s.cancelMining = nil
		s.mu.Unlock()
	}()

	s.evHandler("state: MineNewBlock: MINING: txs[%d]: difficulty[%d]", len(trans), difficulty)

	// Perform the proof of work search without holding the lock.
	block, err := database.POW(ctx, database.POWArgs{
		BeneficiaryID: s.beneficiaryID,
		Difficulty:    difficulty,
		PrevBlock:     prevBlock,
		Trans:         trans,
		EvHandler:     s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The head may have moved while the search ran. Validating against the
	// current head catches that; the orphaned work is simply dropped.
	if err := block.ValidateBlock(s.blocks[len(s.blocks)-1], s.evHandler); err != nil {
		return database.Block{}, err
	}

	if err := s.appendBlockLocked(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it
// against the current head and, if that passes, appends it to the chain. A
// block that does not link is rejected; the caller is expected to fall back
// to full consensus resolution.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%d]: newBlk[%s]", block.Header.Number, block.Hash())
	defer s.evHandler("state: ProcessProposedBlock: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := block.ValidateBlock(s.blocks[len(s.blocks)-1], s.evHandler); err != nil {
		return err
	}

	// Accepting a block mined below the retargeting schedule would persist
	// a chain the startup revalidation later rejects. Same gate as
	// ValidateChain applies here.
	if exp := database.NextDifficulty(s.genesis, s.blocks); block.Header.Difficulty != exp {
		return fmt.Errorf("%w: proposed block difficulty is off schedule, got %d, exp %d", database.ErrInvalidChain, block.Header.Difficulty, exp)
	}

	// The proposed block extends our chain. Any in-flight mining is now
	// working on a stale head and gets cancelled.
	s.stopMiningLocked()

	return s.appendBlockLocked(block)
}

// appendBlockLocked persists the block, appends it to the in-memory chain
// and removes its transactions from the pending pool. The caller must hold
// the mutation lock.
func (s *State) appendBlockLocked(block database.Block) error {
	if err := s.storage.Write(database.NewBlockData(block)); err != nil {
		return err
	}
	s.blocks = append(s.blocks, block)

	for _, tx := range block.Trans {
		s.mempool.Delete(tx)
	}

	s.evHandler("state: appendBlock: blk[%d]: hash[%s]: txs[%d]: pool[%d]", block.Header.Number, block.Hash(), len(block.Trans), s.mempool.Count())

	return nil
}
