package state

import (
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
)

// QueryBalance derives the balance for an account by scanning every
// transaction in every confirmed block, summing credits minus debits. This
// is the canonical if inefficient ground truth; it costs O(total
// transactions) per query.
func (s *State) QueryBalance(accountID database.AccountID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	for _, block := range s.blocks {
		for _, tx := range block.Trans {
			if tx.ToID == accountID {
				balance += int64(tx.Value)
			}

			// The reward sentinel issues new coins and is never debited.
			if tx.FromID == accountID && !tx.IsReward() {
				balance -= int64(tx.Value)
			}
		}
	}

	return balance
}

// QueryBalances scans the chain once and returns the balance for every
// account that appears in it.
func (s *State) QueryBalances() map[database.AccountID]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make(map[database.AccountID]int64)
	for _, block := range s.blocks {
		for _, tx := range block.Trans {
			balances[tx.ToID] += int64(tx.Value)
			if !tx.IsReward() {
				balances[tx.FromID] -= int64(tx.Value)
			}
		}
	}

	return balances
}

// QueryMempoolLength returns the current length of the pending pool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}
