package peer_test

import (
	"testing"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, pr := range tst.peers {
				if !ps.Add(pr) {
					t.Fatalf("Test %s:\tShould report a new peer as added.", tst.name)
				}
			}

			if ps.Add(tst.peers[0]) {
				t.Fatalf("Test %s:\tShould not report a duplicate peer as added.", tst.name)
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould exclude the specified host.", tst.name)
			}

			ps.Remove(tst.peers[0])
			peers = ps.Copy("")
			if len(peers) != len(tst.peers)-1 {
				t.Fatalf("Test %s:\tShould remove a peer from the set.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Parse(t *testing.T) {
	type table struct {
		name    string
		address string
		host    string
		fails   bool
	}

	tt := []table{
		{name: "bare", address: "0.0.0.0:9080", host: "0.0.0.0:9080"},
		{name: "url", address: "http://node.example.com:9080", host: "node.example.com:9080"},
		{name: "empty", address: "", fails: true},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			pr, err := peer.Parse(tst.address)

			if tst.fails {
				if err == nil {
					t.Fatalf("Test %s:\tShould reject the address %q.", tst.name, tst.address)
				}
				return
			}

			if err != nil {
				t.Fatalf("Test %s:\tShould parse the address %q: %v", tst.name, tst.address, err)
			}

			if pr.Host != tst.host {
				t.Logf("Test %s:\tgot: %s", tst.name, pr.Host)
				t.Logf("Test %s:\texp: %s", tst.name, tst.host)
				t.Fatalf("Test %s:\tShould extract the right host.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
