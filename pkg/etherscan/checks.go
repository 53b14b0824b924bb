package etherscan

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// ErrInvalidArgument is returned when a request parameter is rejected before sending.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	TagEarliest = "earliest"
	TagLatest   = "latest"
	TagPending  = "pending"

	SortAsc  = "asc"
	SortDesc = "desc"

	BlockTypeBlocks = "blocks"
	BlockTypeUncles = "uncles"

	ClosestBefore = "before"
	ClosestAfter  = "after"

	ClientGeth   = "geth"
	ClientParity = "parity"

	SyncModeDefault = "default"
	SyncModeArchive = "archive"

	StandardERC20   = "erc20"
	StandardERC721  = "erc721"
	StandardERC1155 = "erc1155"
)

const dateLayout = "2006-01-02"

var (
	tags           = []string{TagEarliest, TagLatest, TagPending}
	sortOrders     = []string{SortAsc, SortDesc}
	blockTypes     = []string{BlockTypeBlocks, BlockTypeUncles}
	closestValues  = []string{ClosestBefore, ClosestAfter}
	clientTypes    = []string{ClientGeth, ClientParity}
	syncModes      = []string{SyncModeDefault, SyncModeArchive}
	tokenStandards = []string{StandardERC20, StandardERC721, StandardERC1155}
)

// checkValue accepts an empty value or one of values, case-insensitively.
// The value is returned as given.
func checkValue(value string, values []string) (string, error) {
	if value != "" && !slices.Contains(values, strings.ToLower(value)) {
		return "", fmt.Errorf("%w: invalid value %q, only %v are supported", ErrInvalidArgument, value, values)
	}
	return value, nil
}

// CheckHex validates a hex encoded value. The 0x prefix is optional.
func CheckHex(value string) (string, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if _, ok := new(big.Int).SetString(digits, 16); !ok || digits == "" {
		return "", fmt.Errorf("%w: invalid hex parameter %q", ErrInvalidArgument, value)
	}
	return value, nil
}

// Hex encodes n as a 0x prefixed quantity.
func Hex(n uint64) string {
	return hexutil.EncodeUint64(n)
}

// CheckTag accepts a named block tag or a hex block number. Empty means latest.
func CheckTag(tag string) (string, error) {
	if tag == "" {
		return TagLatest, nil
	}
	if slices.Contains(tags, tag) {
		return tag, nil
	}
	return CheckHex(tag)
}

func CheckSortDirection(sort string) (string, error) {
	return checkValue(sort, sortOrders)
}

func CheckBlockType(blockType string) (string, error) {
	return checkValue(blockType, blockTypes)
}

func CheckClosestValue(closest string) (string, error) {
	return checkValue(closest, closestValues)
}

func CheckClientType(clientType string) (string, error) {
	return checkValue(clientType, clientTypes)
}

func CheckSyncMode(syncMode string) (string, error) {
	return checkValue(syncMode, syncModes)
}

func CheckTokenStandard(standard string) (string, error) {
	return checkValue(standard, tokenStandards)
}

// DailyStatsParams builds the parameters shared by the daily statistics endpoints.
func DailyStatsParams(action string, start, end time.Time, sort string) (types.Params, error) {
	sort, err := CheckSortDirection(sort)
	if err != nil {
		return nil, err
	}

	return types.Params{
		"module":    moduleStats,
		"action":    action,
		"startdate": start.Format(dateLayout),
		"enddate":   end.Format(dateLayout),
		"sort":      optional(sort),
	}, nil
}

// optional maps the zero value to an unset parameter.
func optional[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}
