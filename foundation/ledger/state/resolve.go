package state

import (
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
)

// ChainFetcher is the capability the resolver uses to pull a peer's full
// chain. The network implementation lives in network.go; tests inject
// their own.
type ChainFetcher func(pr peer.Peer) ([]database.Block, error)

// ValidateChain runs the full cryptographic audit over a candidate chain.
func (s *State) ValidateChain(blocks []database.Block) error {
	return database.ValidateChain(s.genesis, blocks, s.evHandler)
}

// ProcessCandidateChain takes a full chain received from a peer and adopts
// it when it is valid and strictly longer than the local chain. It reports
// whether the local chain was replaced.
func (s *State) ProcessCandidateChain(blocks []database.Block) (bool, error) {
	if err := s.ValidateChain(blocks); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Equal length candidates are never adopted. This prevents nodes from
	// oscillating between forks of the same height.
	if len(blocks) <= len(s.blocks) {
		s.evHandler("state: ProcessCandidateChain: kept local chain: local[%d] candidate[%d]", len(s.blocks), len(blocks))
		return false, nil
	}

	if err := s.replaceChainLocked(blocks); err != nil {
		return false, err
	}

	return true, nil
}

// Resolve implements the longest valid chain rule across all known peers.
// Each peer's chain is fetched through the supplied capability; a peer that
// is unreachable or serves an invalid chain is skipped, never fatal. The
// local chain is replaced only by a strictly longer valid candidate and
// Resolve reports whether that happened.
func (s *State) Resolve(fetch ChainFetcher) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	s.mu.RLock()
	maxLength := len(s.blocks)
	s.mu.RUnlock()

	var newChain []database.Block

	for _, pr := range s.RetrieveKnownPeers() {
		blocks, err := fetch(pr)
		if err != nil {
			s.evHandler("state: Resolve: peer[%s]: unreachable, skipping: %s", pr.Host, err)
			continue
		}

		if len(blocks) <= maxLength {
			s.evHandler("state: Resolve: peer[%s]: chain not longer: local[%d] peer[%d]", pr.Host, maxLength, len(blocks))
			continue
		}

		if err := s.ValidateChain(blocks); err != nil {
			s.evHandler("state: Resolve: peer[%s]: invalid chain, skipping: %s", pr.Host, err)
			continue
		}

		maxLength = len(blocks)
		newChain = blocks
	}

	if newChain == nil {
		s.evHandler("state: Resolve: kept local chain")
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain may have grown while peers were being queried.
	// Re-check the strictly longer rule before replacing.
	if len(newChain) <= len(s.blocks) {
		s.evHandler("state: Resolve: kept local chain: grew during resolution")
		return false, nil
	}

	if err := s.replaceChainLocked(newChain); err != nil {
		return false, err
	}

	s.evHandler("state: Resolve: chain replaced: blocks[%d]", len(newChain))

	return true, nil
}

// replaceChainLocked unconditionally overwrites the local chain with the
// candidate, rewrites storage and reconciles the pending pool. Transactions
// already present in the replacement are dropped so they are never submitted
// twice; the remaining unconfirmed transactions are kept or dropped per
// configuration. The caller must hold the mutation lock and have validated
// the candidate.
func (s *State) replaceChainLocked(blocks []database.Block) error {

	// An in-flight mining operation is building on a dead chain.
	s.stopMiningLocked()

	if err := s.storage.Reset(); err != nil {
		return err
	}
	for _, block := range blocks[1:] {
		if err := s.storage.Write(database.NewBlockData(block)); err != nil {
			return err
		}
	}

	s.blocks = blocks

	if !s.keepUnconfirmed {
		s.mempool.Truncate()
		return nil
	}

	for _, block := range blocks {
		for _, tx := range block.Trans {
			s.mempool.Delete(tx)
		}
	}

	return nil
}
