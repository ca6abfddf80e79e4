package state

import (
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
)

// AddKnownPeer provides the ability to add a new peer and reports whether
// it was previously unknown.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
