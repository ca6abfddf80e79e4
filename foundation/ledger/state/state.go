// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/mempool"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
)

// ErrMiningInProgress is returned when a mine request arrives while another
// proof of work search is already running on this node.
var ErrMiningInProgress = errors.New("mining already in progress")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of mining and validating blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for transaction sharing, peer updates and
// background consensus resolution.
type Worker interface {
	Shutdown()
	SignalShareTx(tx database.BlockTx)
	SignalResolve()
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	BeneficiaryID   database.AccountID
	Host            string
	Storage         database.Storage
	Genesis         genesis.Genesis
	KnownPeers      *peer.PeerSet
	KeepUnconfirmed bool
	EvHandler       EventHandler
}

// State manages the ledger for a single node. The block sequence and the
// pending pool are shared mutable state; every mutating entry point runs
// under the guard for its critical section only.
type State struct {
	mu sync.RWMutex

	beneficiaryID   database.AccountID
	host            string
	keepUnconfirmed bool
	evHandler       EventHandler

	genesis genesis.Genesis
	storage database.Storage
	blocks  []database.Block
	mempool *mempool.Mempool

	knownPeers *peer.PeerSet

	mining       bool
	cancelMining context.CancelFunc

	Worker Worker
}

// New constructs the state for managing the node's chain, loading and
// revalidating any blocks already persisted.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// The chain always starts from the deterministic genesis block; the
	// persisted blocks follow it.
	blocks := []database.Block{database.NewGenesisBlock(cfg.Genesis)}

	iter := cfg.Storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, database.ToBlock(blockData))
	}

	// Never trust what came off disk without the full cryptographic audit.
	if err := database.ValidateChain(cfg.Genesis, blocks, ev); err != nil {
		return nil, err
	}

	ev("state: New: chain loaded: blocks[%d]", len(blocks))

	state := State{
		beneficiaryID:   cfg.BeneficiaryID,
		host:            cfg.Host,
		keepUnconfirmed: cfg.KeepUnconfirmed,
		evHandler:       ev,

		genesis: cfg.Genesis,
		storage: cfg.Storage,
		blocks:  blocks,
		mempool: mempool.New(),

		knownPeers: cfg.KnownPeers,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	defer func() {
		s.storage.Close()
	}()

	// Stop any in-flight mining and all background activity.
	s.stopMining()
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// stopMining cancels an in-flight proof of work search if one is running.
// Safe to call from any goroutine; callers need not hold the lock.
func (s *State) stopMining() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopMiningLocked()
}

// stopMiningLocked cancels an in-flight proof of work search. The caller
// must hold the mutation lock.
func (s *State) stopMiningLocked() {
	if s.cancelMining != nil {
		s.evHandler("state: stopMining: cancelling in-flight mining")
		s.cancelMining()
	}
}
