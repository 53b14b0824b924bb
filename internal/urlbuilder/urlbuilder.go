package urlbuilder

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// MainNetwork is the network name of every explorer's main chain.
const MainNetwork = "main"

// Supported explorer kinds.
const (
	KindEth      = "eth"
	KindBsc      = "bsc"
	KindAvax     = "avax"
	KindPolygon  = "polygon"
	KindOptimism = "optimism"
	KindBase     = "base"
	KindArbitrum = "arbitrum"
	KindFantom   = "fantom"
	KindTaiko    = "taiko"
)

type apiKind struct {
	netloc   string
	currency string
}

var apiKinds = map[string]apiKind{
	KindEth:      {"etherscan.io", "ETH"},
	KindBsc:      {"bscscan.com", "BNB"},
	KindAvax:     {"snowtrace.io", "AVAX"},
	KindPolygon:  {"polygonscan.com", "MATIC"},
	KindOptimism: {"etherscan.io", "ETH"},
	KindBase:     {"basescan.org", "ETH"},
	KindArbitrum: {"arbiscan.io", "ETH"},
	KindFantom:   {"ftmscan.com", "FTM"},
	KindTaiko:    {"taikoscan.io", "ETH"},
}

// Kinds returns the supported explorer kinds in alphabetical order.
func Kinds() []string {
	return slices.Sorted(maps.Keys(apiKinds))
}

// IsKnownKind reports whether kind names a supported explorer.
func IsKnownKind(kind string) bool {
	_, ok := apiKinds[normalize(kind)]
	return ok
}

// URLBuilder derives the API endpoint and the web URLs of one explorer network.
type URLBuilder struct {
	kind    string
	network string

	apiURL  string
	baseURL string
}

// New creates a URLBuilder for the given explorer kind and network.
func New(kind, network string) (*URLBuilder, error) {
	kind = normalize(kind)
	if _, ok := apiKinds[kind]; !ok {
		return nil, fmt.Errorf("Incorrect api_kind %q, supported only: %s", //nolint:stylecheck
			kind, strings.Join(Kinds(), ", "))
	}

	b := &URLBuilder{
		kind:    kind,
		network: normalize(network),
	}
	b.apiURL = b.buildAPIURL()
	b.baseURL = b.buildBaseURL()

	return b, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (b *URLBuilder) isMain() bool {
	return b.network == MainNetwork
}

// APIURL is the endpoint every request is sent to.
func (b *URLBuilder) APIURL() string {
	return b.apiURL
}

// BaseURL is the root of the explorer website.
func (b *URLBuilder) BaseURL() string {
	return b.baseURL
}

// Kind returns the explorer kind.
func (b *URLBuilder) Kind() string {
	return b.kind
}

// Network returns the network name.
func (b *URLBuilder) Network() string {
	return b.network
}

// Currency returns the symbol of the chain's native currency.
func (b *URLBuilder) Currency() string {
	return apiKinds[b.kind].currency
}

// GetLink resolves path against the explorer website.
func (b *URLBuilder) GetLink(path string) string {
	base, err := url.Parse(b.baseURL)
	if err != nil {
		return b.baseURL + "/" + strings.TrimPrefix(path, "/")
	}

	ref, err := url.Parse(path)
	if err != nil {
		return b.baseURL + "/" + strings.TrimPrefix(path, "/")
	}

	return base.ResolveReference(ref).String()
}

// FilterAndSign drops unset parameters and adds the api key.
func (b *URLBuilder) FilterAndSign(params types.Params, apiKey string) url.Values {
	values := params.Values()
	values.Set("apikey", apiKey)
	return values
}

func (b *URLBuilder) buildURL(prefix, path string) string {
	host := apiKinds[b.kind].netloc
	if prefix != "" {
		host = prefix + "." + host
	}

	u := url.URL{Scheme: "https", Host: host}
	if path != "" {
		u.Path = "/" + path
	}

	return u.String()
}

func (b *URLBuilder) buildAPIURL() string {
	prefix := "api"
	switch {
	case b.kind == KindOptimism && b.isMain():
		prefix = "api-optimistic"
	case b.kind == KindOptimism:
		prefix = "api-" + b.network + "-optimistic"
	case !b.isMain():
		prefix = "api-" + b.network
	}

	return b.buildURL(prefix, "api")
}

func (b *URLBuilder) buildBaseURL() string {
	network := b.network
	if b.kind == KindPolygon && network == "testnet" {
		network = "mumbai"
	}

	var prefix string
	switch {
	case b.kind == KindOptimism && b.isMain():
		prefix = "optimistic"
	case b.kind == KindOptimism:
		prefix = network + "-optimism"
	case !b.isMain():
		prefix = network
	}

	return b.buildURL(prefix, "")
}
