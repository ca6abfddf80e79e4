package database

// Storage interface represents the behavior required to be implemented by
// any package providing support for storing and reading the chain. Only
// blocks from number 1 on are persisted; genesis is reconstructed from the
// genesis file.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// BlockData represents what is serialized to storage and across the wire.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []BlockTx   `json:"trans"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  block.Trans,
	}
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) Block {
	return Block{
		Header: blockData.Header,
		Trans:  blockData.Trans,
	}
}

// ToBlocks converts a full wire representation into blocks.
func ToBlocks(blocksData []BlockData) []Block {
	blocks := make([]Block, len(blocksData))
	for i, blockData := range blocksData {
		blocks[i] = ToBlock(blockData)
	}
	return blocks
}

// NewBlocksData converts blocks into their wire representation.
func NewBlocksData(blocks []Block) []BlockData {
	blocksData := make([]BlockData, len(blocks))
	for i, block := range blocks {
		blocksData[i] = NewBlockData(block)
	}
	return blocksData
}
