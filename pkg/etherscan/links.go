package etherscan

import (
	"net/url"
	"strconv"
)

// LinkBuilder resolves a path against the explorer web UI.
type LinkBuilder interface {
	GetLink(path string) string
}

// LinkHelper builds explorer web links for addresses, transactions and blocks.
type LinkHelper struct {
	urls LinkBuilder
}

func NewLinkHelper(urls LinkBuilder) *LinkHelper {
	return &LinkHelper{urls: urls}
}

func (l *LinkHelper) AddressLink(address string) string {
	return l.urls.GetLink("address/" + address)
}

func (l *LinkHelper) TxLink(txHash string) string {
	return l.urls.GetLink("tx/" + txHash)
}

func (l *LinkHelper) BlockLink(block uint64) string {
	return l.urls.GetLink("block/" + strconv.FormatUint(block, 10))
}

// BlockTxsLink links to the transaction list of block.
func (l *LinkHelper) BlockTxsLink(block uint64) string {
	return l.urls.GetLink("txs?" + url.Values{"block": {strconv.FormatUint(block, 10)}}.Encode())
}
