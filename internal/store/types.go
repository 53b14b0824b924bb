package store

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// dbRecord represents a stored listing record
type dbRecord struct {
	ID          int64          `meddler:"id,pk"`
	Address     common.Address `meddler:"address,address"`
	Kind        string         `meddler:"kind"`
	Identity    string         `meddler:"identity"`
	BlockNumber uint64         `meddler:"block_number"`
	TxHash      *common.Hash   `meddler:"tx_hash,hash"`
	Data        types.Record   `meddler:"data,json"`
	CreatedAt   time.Time      `meddler:"created_at,utctime"`
}

// dbCheckpoint represents the last fully scanned block of an (address, kind) pair
type dbCheckpoint struct {
	Address   common.Address `meddler:"address,address"`
	Kind      string         `meddler:"kind"`
	LastBlock uint64         `meddler:"last_block"`
	UpdatedAt time.Time      `meddler:"updated_at,utctime"`
}
