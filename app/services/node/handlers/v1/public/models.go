package public

import (
	"math/big"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/database"
)

// newTx represents a signed transaction as submitted by a wallet.
type newTx struct {
	FromID string   `json:"from" validate:"required"`
	ToID   string   `json:"to" validate:"required"`
	Value  uint64   `json:"value" validate:"required"`
	V      *big.Int `json:"v" validate:"required"`
	R      *big.Int `json:"r" validate:"required"`
	S      *big.Int `json:"s" validate:"required"`
}

// toSignedTx converts the application model into a ledger signed transaction.
func toSignedTx(app newTx) (database.SignedTx, error) {
	fromID, err := database.ToAccountID(app.FromID)
	if err != nil {
		return database.SignedTx{}, err
	}
	toID, err := database.ToAccountID(app.ToID)
	if err != nil {
		return database.SignedTx{}, err
	}

	signedTx := database.SignedTx{
		Tx: database.Tx{
			FromID: fromID,
			ToID:   toID,
			Value:  app.Value,
		},
		V: app.V,
		R: app.R,
		S: app.S,
	}

	return signedTx, nil
}

// tx is the view of a pending transaction with friendly names resolved.
type tx struct {
	FromID    database.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	ToID      database.AccountID `json:"to"`
	ToName    string             `json:"to_name"`
	Value     uint64             `json:"value"`
	TimeStamp uint64             `json:"timestamp"`
	Sig       string             `json:"sig"`
}

// balance is the calculated funds for a single account.
type balance struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

// balanceInfo wraps the balances with the chain position they were
// calculated at.
type balanceInfo struct {
	LatestBlock string    `json:"latest_block_hash"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}
