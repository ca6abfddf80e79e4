// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file. Every node on the same network must
// share these values or chains will fail cross validation.
type Genesis struct {
	Date           time.Time `json:"date"`            // Timestamp carried by the genesis block.
	ChainID        uint16    `json:"chain_id"`        // An unique id for this running network.
	MiningReward   uint64    `json:"mining_reward"`   // Reward for mining a block.
	Difficulty     uint      `json:"difficulty"`      // Number of leading zero hex characters required at the start of the chain.
	MinDifficulty  uint      `json:"min_difficulty"`  // Floor the retargeting never drops below.
	RetargetWindow uint64    `json:"retarget_window"` // Number of blocks between difficulty adjustments.
	TargetInterval uint64    `json:"target_interval"` // Desired seconds between blocks.
	BoundFactor    uint64    `json:"bound_factor"`    // Tolerance factor before an adjustment is applied.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
