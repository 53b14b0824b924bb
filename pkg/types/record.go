package types

import (
	"fmt"
	"strings"

	"github.com/goran-ethernal/ScanKit/internal/common"
)

// identityFields tell apart records sharing a transaction hash:
// logs, internal traces, token transfers and withdrawals.
var identityFields = []string{
	"logIndex", "traceId", "contractAddress", "from", "to", "value", "tokenID", "withdrawalIndex",
}

// Record is a single item of a listing, decoded from the explorer's JSON.
type Record map[string]any

// BlockNumber returns the record's "blockNumber" field, accepting decimal and 0x-prefixed hex.
func (r Record) BlockNumber() (uint64, error) {
	v, ok := r["blockNumber"]
	if !ok {
		return 0, fmt.Errorf("record has no blockNumber field")
	}

	n, err := common.ParseNumeric(v)
	if err != nil {
		return 0, fmt.Errorf("invalid blockNumber %v: %w", v, err)
	}

	return n, nil
}

// String returns the string value of the field, or "" when missing or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Identity returns the key that identifies the record across overlapping pages:
// the transaction hash combined with the log or trace position when present.
func (r Record) Identity() string {
	parts := []string{strings.ToLower(r.String("hash"))}
	if parts[0] == "" {
		parts[0] = strings.ToLower(r.String("transactionHash"))
	}

	for _, field := range identityFields {
		if v, ok := r[field]; ok && v != nil {
			parts = append(parts, strings.ToLower(fmt.Sprintf("%s=%v", field, v)))
		}
	}

	if parts[0] == "" {
		// mined blocks carry neither hash nor position
		parts[0] = fmt.Sprintf("block=%v", r["blockNumber"])
	}

	return strings.Join(parts, "|")
}
