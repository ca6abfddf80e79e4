package worker

import (
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
)

// peerOperations handles finding new peers on the configured interval.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.peerTicker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation asks each known peer for their status and picks up
// any peers they know about that we don't. If any peer reports a longer
// chain, a resolve is signaled.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	behind := false

	for _, pr := range w.state.RetrieveKnownPeers() {
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		if peerStatus.LatestBlockNumber > w.state.RetrieveLatestBlock().Header.Number {
			behind = true
		}

		w.addNewPeers(peerStatus.KnownPeers)
	}

	if behind {
		w.SignalResolve()
	}
}

// addNewPeers takes a list of known peers and adds any new ones to this
// node's list.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: addNewPeers: started")
	defer w.evHandler("worker: addNewPeers: completed")

	host := w.state.RetrieveHost()

	for _, pr := range knownPeers {

		// Don't add this running node to the known peer list.
		if pr.Match(host) {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: add peer nodes: adding peer-node %s", pr.Host)
		}
	}
}
