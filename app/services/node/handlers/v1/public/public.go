// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	v1 "github.com/abhi0166/custom-Crypto-Coin/business/web/v1"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/events"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/state"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/nameservice"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a new user transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app newTx
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	signedTx, err := toSignedTx(app)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "from", signedTx.FromID, "to", signedTx.ToID, "value", signedTx.Value)

	blockNum, err := h.State.SubmitWalletTransaction(signedTx)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		Block  uint64 `json:"block"`
	}{
		Status: "transaction added to mempool",
		Block:  blockNum,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Chain returns the full chain with its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	resp := struct {
		Chain  []database.BlockData `json:"chain"`
		Length int                  `json:"length"`
	}{
		Chain:  database.NewBlocksData(blocks),
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = tx{
			FromID:    tran.FromID,
			FromName:  h.NS.Lookup(tran.FromID),
			ToID:      tran.ToID,
			ToName:    h.NS.Lookup(tran.ToID),
			Value:     tran.Value,
			TimeStamp: tran.TimeStamp,
			Sig:       tran.SignatureString(),
		}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Accounts returns the current balance for one account or for all accounts
// seen on the chain.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var balances map[database.AccountID]int64
	switch account {
	case "":
		balances = h.State.QueryBalances()

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		balances = map[database.AccountID]int64{
			accountID: h.State.QueryBalance(accountID),
		}
	}

	acts := make([]balance, 0, len(balances))
	for accountID, bal := range balances {
		acts = append(acts, balance{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: bal,
		})
	}

	ai := balanceInfo{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Mine performs a proof of work search over the pending transactions plus
// the mining reward, appends the solved block and shares it with the
// known peers.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, state.ErrMiningInProgress) {
			return v1.NewRequestError(err, http.StatusConflict)
		}
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("mined block", "traceid", v.TraceID, "block", block.Header.Number, "hash", block.Hash())

	// Share the new block with the network. A peer that cannot be reached
	// is logged and skipped.
	if err := h.State.NetSendBlockToPeers(block); err != nil {
		h.Log.Infow("propose block to peers", "traceid", v.TraceID, "ERROR", err)
	}

	resp := struct {
		Status string             `json:"status"`
		Block  database.BlockData `json:"block"`
	}{
		Status: "block mined",
		Block:  database.NewBlockData(block),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Resolve runs the longest-chain consensus algorithm against the known
// peers and reports whether the local chain was replaced.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(h.State.NetRequestPeerChain)
	if err != nil {
		return v1.NewRequestError(err, http.StatusInternalServerError)
	}

	resp := struct {
		Replaced bool   `json:"replaced"`
		Length   int    `json:"length"`
		Latest   string `json:"latest_block_hash"`
	}{
		Replaced: replaced,
		Length:   len(h.State.RetrieveChain()),
		Latest:   h.State.RetrieveLatestBlock().Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
