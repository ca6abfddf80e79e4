package worker

// Sync updates the peer list and the chain from the currently known peers.
// It runs once at startup before the background operations begin.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {
		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers they know about to our list.
		w.addNewPeers(peerStatus.KnownPeers)
	}

	// Ask the peers for their chains and adopt the longest valid one.
	replaced, err := w.state.Resolve(w.state.NetRequestPeerChain)
	if err != nil {
		w.evHandler("worker: sync: resolve: ERROR: %s", err)
		return
	}
	w.evHandler("worker: sync: resolve: chain replaced[%t]", replaced)
}
