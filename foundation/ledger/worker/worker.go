// Package worker implements the background workflows for the node such as
// transaction sharing, peer updates and periodic consensus resolution.
package worker

import (
	"sync"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/state"
)

// maxTxShareRequests represents the max number of pending tx network share
// requests that can be outstanding before share requests are dropped. To
// keep this simple, a buffered channel of this arbitrary number is used. If
// the channel does become full, requests for new transactions to be shared
// will not be accepted.
const maxTxShareRequests = 100

// peerUpdateInterval represents the interval for finding new peers.
const peerUpdateInterval = time.Minute

// resolveInterval represents the interval for running the consensus
// resolution when no resolve has been signaled in the meantime.
const resolveInterval = time.Minute

// =============================================================================

// Worker manages the background workflows for the node.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	peerTicker    *time.Ticker
	resolveTicker *time.Ticker
	shut          chan struct{}
	txSharing     chan database.BlockTx
	resolve       chan bool
	evHandler     state.EventHandler
}

// Run creates a worker, registers it with the state and starts all the
// background operations.
func Run(st *state.State, evHandler state.EventHandler) {
	// Each loop owns its ticker so one loop never consumes ticks meant
	// for the other.
	w := Worker{
		state:         st,
		peerTicker:    time.NewTicker(peerUpdateInterval),
		resolveTicker: time.NewTicker(resolveInterval),
		shut:          make(chan struct{}),
		txSharing:     make(chan database.BlockTx, maxTxShareRequests),
		resolve:       make(chan bool, 1),
		evHandler:     evHandler,
	}

	// Register this worker with the state. During initialization the
	// worker needs access to the state.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.resolveOperations,
		w.shareTxOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.peerTicker.Stop()
	w.resolveTicker.Stop()

	close(w.shut)
	w.wg.Wait()
}

// SignalShareTx queues up a share transaction operation. If maxTxShareRequests
// signals exist in the channel, the request is dropped.
func (w *Worker) SignalShareTx(tx database.BlockTx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, share dropped")
	}
}

// SignalResolve queues up a consensus resolution run. If there is already a
// signal pending, just return since a run will happen.
func (w *Worker) SignalResolve() {
	select {
	case w.resolve <- true:
	default:
	}
	w.evHandler("worker: SignalResolve: resolve signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
