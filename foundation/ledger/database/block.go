package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/genesis"
	"github.com/abhi0166/custom-Crypto-Coin/foundation/ledger/signature"
)

// ErrInvalidChain is returned when a candidate chain fails linkage or proof
// of work checks at any index. A failing chain is rejected wholesale.
var ErrInvalidChain = errors.New("invalid chain")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64    `json:"number"`          // Block number in the chain, genesis is 0.
	PrevBlockHash string    `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64    `json:"timestamp"`       // Time the block was mined.
	BeneficiaryID AccountID `json:"beneficiary"`     // The account receiving the mining reward.
	Difficulty    uint      `json:"difficulty"`      // Number of leading zero hex characters needed to solve the hash.
	Nonce         uint64    `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []BlockTx   `json:"trans"`
}

// NewGenesisBlock constructs the first block of a chain deterministically
// from the shared genesis parameters so every node agrees on its hash.
func NewGenesisBlock(gen genesis.Genesis) Block {
	return Block{
		Header: BlockHeader{
			Number:        0,
			PrevBlockHash: signature.ZeroHash,
			TimeStamp:     uint64(gen.Date.UTC().Unix()),
			Difficulty:    gen.Difficulty,
			Nonce:         0,
		},
	}
}

// Hash returns the unique hash for the block, computed over the canonical
// serialization of every field except the hash itself.
func (b Block) Hash() string {
	return signature.Hash(b)
}

// IsHashSolved reports whether the block's hash satisfies its own stored
// difficulty. This is the cheap check run on every received block so
// remote proofs are never re-trusted.
func (b Block) IsHashSolved() bool {
	return isHashSolved(b.Header.Difficulty, b.Hash())
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	BeneficiaryID AccountID
	Difficulty    uint
	PrevBlock     Block
	Trans         []BlockTx
	EvHandler     func(v string, args ...any)
}

// POW constructs a new block and performs the work to find a nonce that
// solves the cryptographic puzzle. The search never fails on its own; it
// blocks until a solution is found or the context is cancelled.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	nb := Block{
		Header: BlockHeader{
			Number:        args.PrevBlock.Header.Number + 1,
			PrevBlockHash: args.PrevBlock.Hash(),
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			BeneficiaryID: args.BeneficiaryID,
			Difficulty:    args.Difficulty,
			Nonce:         0, // Will be identified by the POW algorithm.
		},
		Trans: args.Trans,
	}

	if err := nb.performPOW(ctx, args.EvHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
// The nonce starts at zero and increments by one so the search is fully
// reproducible and restartable.
func (b *Block) performPOW(ctx context.Context, ev func(v string, args ...any)) error {
	ev("database: performPOW: MINING: started: blk[%d]: difficulty[%d]", b.Header.Number, b.Header.Difficulty)
	defer ev("database: performPOW: MINING: completed: blk[%d]", b.Header.Number)

	for _, tx := range b.Trans {
		ev("database: performPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did a longer chain arrive or a shutdown begin.
		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if !isHashSolved(b.Header.Difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("database: performPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// isHashSolved checks the hash complies with the POW rules. The hex digest
// must carry a difficulty number of leading zero characters.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "0x0000000000000000"

	if len(hash) != 66 || difficulty >= uint(len(match)-2) {
		return false
	}

	return hash[:2+difficulty] == match[:2+difficulty]
}

// =============================================================================

// ValidateBlock takes a block and validates it to be included on top of the
// specified previous block.
func (b Block) ValidateBlock(previousBlock Block, ev func(v string, args ...any)) error {
	ev("database: ValidateBlock: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("%w: this block is not the next number, got %d, exp %d", ErrInvalidChain, b.Header.Number, nextNumber)
	}

	ev("database: ValidateBlock: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrInvalidChain, b.Header.PrevBlockHash, previousBlock.Hash())
	}

	ev("database: ValidateBlock: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !b.IsHashSolved() {
		return fmt.Errorf("%w: %s invalid block hash", ErrInvalidChain, b.Hash())
	}

	ev("database: ValidateBlock: blk[%d]: check: transaction signatures verify", b.Header.Number)

	for _, tx := range b.Trans {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: block %d: %s", ErrInvalidChain, b.Header.Number, err)
		}
	}

	return nil
}

// ValidateChain determines whether a candidate chain is valid, iterating
// from genesis and checking linkage, proof of work, the difficulty schedule
// and transaction signatures for every adjacent pair. Validation is all or
// nothing; there is no partial adoption.
func ValidateChain(gen genesis.Genesis, blocks []Block, ev func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrInvalidChain)
	}

	// A single genesis block is trivially valid; there is no predecessor
	// or proof to check.
	gb := blocks[0]
	if gb.Header.Number != 0 {
		return fmt.Errorf("%w: first block is number %d, exp 0", ErrInvalidChain, gb.Header.Number)
	}
	if gb.Header.PrevBlockHash != signature.ZeroHash {
		return fmt.Errorf("%w: genesis previous hash is not the zero sentinel", ErrInvalidChain)
	}

	// The difficulty schedule is anchored to block 0, so a candidate that
	// carries its own genesis could pass every later check at a forged
	// starting difficulty. The candidate must be built on the network's
	// deterministic genesis.
	if gb.Hash() != NewGenesisBlock(gen).Hash() {
		return fmt.Errorf("%w: genesis block does not match the network genesis", ErrInvalidChain)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], ev); err != nil {
			return err
		}

		// The stored difficulty must match what the retargeting schedule
		// produces from the chain's own history. Without this check a chain
		// could gain length cheaply by carrying minimum difficulty blocks.
		expDifficulty := NextDifficulty(gen, blocks[:i])
		if blocks[i].Header.Difficulty != expDifficulty {
			return fmt.Errorf("%w: block %d difficulty is off schedule, got %d, exp %d", ErrInvalidChain, blocks[i].Header.Number, blocks[i].Header.Difficulty, expDifficulty)
		}
	}

	return nil
}
