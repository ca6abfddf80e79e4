// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	v1 "github.com/abhi0166/custom-Crypto-Coin/business/web/v1"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/peer"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/state"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/nameservice"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latestBlock := h.State.RetrieveLatestBlock()

	status := peer.PeerStatus{
		LatestBlockHash:   latestBlock.Hash(),
		LatestBlockNumber: latestBlock.Header.Number,
		KnownPeers:        h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Chain returns the full chain for peer consensus resolution.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()
	return web.Respond(ctx, w, database.NewBlocksData(blocks), http.StatusOK)
}

// SubmitNodeTransaction adds a transaction shared by a peer node to
// the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a block transaction.
	var tx database.BlockTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add node tran", "traceid", v.TraceID, "from", tx.FromID, "to", tx.ToID, "value", tx.Value)
	if err := h.State.UpsertNodeTransaction(tx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it and if that
// passes, adds the block to the local chain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	// Decode the JSON in the post call into a block.
	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	block := database.ToBlock(blockData)

	// Ask the state package to validate the proposed block. A block that
	// does not link to our head is not accepted; the peer set will converge
	// through consensus resolution instead.
	if err := h.State.ProcessProposedBlock(block); err != nil {
		h.State.Worker.SignalResolve()

		resp := struct {
			Accepted bool `json:"accepted"`
		}{
			Accepted: false,
		}

		return web.Respond(ctx, w, resp, http.StatusNotAcceptable)
	}

	resp := struct {
		Accepted bool `json:"accepted"`
	}{
		Accepted: true,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeChain takes a full candidate chain received from a peer and adopts
// it when it is valid and strictly longer than the local chain.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	// Decode the JSON in the post call into a set of blocks.
	var blocksData []database.BlockData
	if err := web.Decode(r, &blocksData); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	replaced, err := h.State.ProcessCandidateChain(database.ToBlocks(blocksData))
	if err != nil {
		if errors.Is(err, database.ErrInvalidChain) {
			return v1.NewRequestError(err, http.StatusNotAcceptable)
		}
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Replaced bool `json:"replaced"`
	}{
		Replaced: replaced,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// RegisterPeer adds a new peer node to the known peer set.
func (h Handlers) RegisterPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var reg struct {
		Host string `json:"host" validate:"required"`
	}
	if err := web.Decode(r, &reg); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	pr, err := peer.Parse(reg.Host)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if h.State.AddKnownPeer(pr) {
		h.Log.Infow("register peer", "traceid", v.TraceID, "host", pr.Host)
	}

	resp := struct {
		Status string      `json:"status"`
		Peers  []peer.Peer `json:"peers"`
	}{
		Status: "peer registered",
		Peers:  h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
