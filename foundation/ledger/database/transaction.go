package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/signature"
)

// ErrInvalidSignature is returned when a transaction's signature does not
// verify against the claimed sender.
var ErrInvalidSignature = errors.New("invalid transaction signature")

// =============================================================================

// Tx is the transactional information between two parties. The struct field
// order defines the canonical serialization that gets signed.
type Tx struct {
	FromID AccountID `json:"from"`  // Account sending the funds, RewardID for issuance.
	ToID   AccountID `json:"to"`    // Account receiving the funds.
	Value  uint64    `json:"value"` // Monetary value transferred, never negative by type.
}

// NewTx constructs a new unsigned transaction.
func NewTx(fromID AccountID, toID AccountID, value uint64) (Tx, error) {
	if !fromID.IsAccountID() {
		return Tx{}, fmt.Errorf("from account is not properly formatted")
	}
	if !toID.IsAccountID() {
		return Tx{}, fmt.Errorf("to account is not properly formatted")
	}

	tx := Tx{
		FromID: fromID,
		ToID:   toID,
		Value:  value,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {

	// Validate the accounts one more time since a Tx literal can bypass NewTx.
	if !tx.FromID.IsAccountID() {
		return SignedTx{}, fmt.Errorf("from account is not properly formatted")
	}
	if !tx.ToID.IsAccountID() {
		return SignedTx{}, fmt.Errorf("to account is not properly formatted")
	}

	// Sign the transaction with the private key to produce a signature.
	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	// Construct the signed transaction by adding the signature
	// in the [R|S|V] format.
	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how clients like
// a wallet provide transactions for inclusion into the ledger.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Recovery identifier, either 31 or 32 with the coin id.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction has a proper signature that conforms to
// our standards and that the signer matches the claimed sender. Reward
// transactions are valid without a signature check.
func (tx SignedTx) Validate() error {
	if tx.IsReward() {
		if !tx.ToID.IsAccountID() {
			return errors.New("invalid account for reward recipient")
		}
		return nil
	}

	if !tx.FromID.IsAccountID() {
		return errors.New("invalid account for from account")
	}
	if !tx.ToID.IsAccountID() {
		return errors.New("invalid account for to account")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	// Recover the signer from the signature over the canonical transaction
	// data. A tampered field produces a different signer than the claimed
	// sender and the transaction is rejected.
	address, err := signature.FromAddress(tx.Tx, tx.V, tx.R, tx.S)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if AccountID(address) != tx.FromID {
		return fmt.Errorf("%w: signer %s does not match sender %s", ErrInvalidSignature, address, tx.FromID)
	}

	return nil
}

// IsReward reports whether this transaction issues new coins to a miner.
func (tx SignedTx) IsReward() bool {
	return tx.FromID == RewardID
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	if tx.IsReward() {
		return signature.ZeroHash
	}
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%s:%d", tx.FromID, tx.ToID, tx.Value)
}

// =============================================================================

// BlockTx represents the transaction as it's recorded inside a block.
type BlockTx struct {
	SignedTx
	TimeStamp uint64 `json:"timestamp"` // The time the transaction was received.
}

// NewBlockTx constructs a new block transaction.
func NewBlockTx(signedTx SignedTx) BlockTx {
	return BlockTx{
		SignedTx:  signedTx,
		TimeStamp: uint64(time.Now().UTC().Unix()),
	}
}

// NewRewardTx constructs the transaction that issues the mining reward to
// the node that mined the block. Reward transactions carry no signature.
func NewRewardTx(beneficiaryID AccountID, reward uint64) BlockTx {
	return BlockTx{
		SignedTx: SignedTx{
			Tx: Tx{
				FromID: RewardID,
				ToID:   beneficiaryID,
				Value:  reward,
			},
			V: big.NewInt(0),
			R: big.NewInt(0),
			S: big.NewInt(0),
		},
		TimeStamp: uint64(time.Now().UTC().Unix()),
	}
}

// UniqueKey produces the key used to deduplicate transactions between the
// pending pool and mined blocks.
func (tx BlockTx) UniqueKey() string {
	if tx.IsReward() {
		return fmt.Sprintf("%s:%s:%d:%d", tx.FromID, tx.ToID, tx.Value, tx.TimeStamp)
	}
	return tx.SignatureString()
}
