package etherscan

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goran-ethernal/ScanKit/internal/common"
	"github.com/goran-ethernal/ScanKit/internal/height"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/network"
	"github.com/goran-ethernal/ScanKit/internal/urlbuilder"
	"github.com/goran-ethernal/ScanKit/pkg/config"
	"go.opentelemetry.io/otel/trace"
)

// Option customizes a Client.
type Option func(*options)

type options struct {
	network []network.Option
	height  BlockHeightSource
}

// WithHTTPClient sends every explorer request through c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.network = append(o.network, network.WithHTTPClient(c))
	}
}

// WithTracerProvider traces explorer requests with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.network = append(o.network, network.WithTracerProvider(tp))
	}
}

// WithHeightSource resolves open ended scans through src instead of the configured source.
func WithHeightSource(src BlockHeightSource) Option {
	return func(o *options) {
		o.height = src
	}
}

// Client is an explorer API client. Each module groups the endpoints of one API section.
type Client struct {
	Account     *Account
	Block       *Block
	Contract    *Contract
	Logs        *Logs
	Proxy       *Proxy
	Stats       *Stats
	Token       *Token
	Transaction *Transaction
	GasTracker  *GasTracker

	Links         *LinkHelper
	ContractUtils *ContractUtils
	Generators    *Generators

	network *network.Network
	closers []func()
}

// New creates a Client from cfg. Defaults are applied to cfg before it is validated.
// The RPC height source is dialed with ctx.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	net, err := network.New(cfg.Client,
		logger.NewComponentLoggerFromConfig(common.ComponentNetwork, cfg.Logging), o.network...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Account:     newAccount(net),
		Block:       newBlock(net),
		Contract:    newContract(net),
		Logs:        newLogs(net),
		Proxy:       newProxy(net),
		Stats:       newStats(net),
		Token:       newToken(net),
		Transaction: newTransaction(net),
		GasTracker:  newGasTracker(net),
		Links:       NewLinkHelper(net.URLs()),
		network:     net,
	}
	c.ContractUtils = newContractUtils(c.Account, c.Contract)

	src := o.height
	if src == nil {
		src, err = c.heightSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	c.Generators = newGenerators(c.Account, c.Logs, src, BlocksOptions{
		StartBlock:         Uint64(cfg.Scan.StartBlock),
		BlocksLimit:        cfg.Scan.BlocksLimit,
		BlocksLimitDivider: cfg.Scan.BlocksLimitDivider,
	}, logger.NewComponentLoggerFromConfig(common.ComponentGenerators, cfg.Logging))

	return c, nil
}

func (c *Client) heightSource(ctx context.Context, cfg *config.Config) (BlockHeightSource, error) {
	if cfg.Scan.HeightSource != config.HeightSourceRPC {
		return height.NewProxySource(c.network), nil
	}

	src, err := height.DialRPCSource(ctx, cfg.Scan.RPCURL,
		logger.NewComponentLoggerFromConfig(common.ComponentHeight, cfg.Logging))
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, src.Close)

	return src, nil
}

// URLs returns the URL builder of the configured explorer.
func (c *Client) URLs() *urlbuilder.URLBuilder {
	return c.network.URLs()
}

// Currency returns the native currency symbol of the configured explorer.
func (c *Client) Currency() string {
	return c.network.URLs().Currency()
}

// Close releases the height source connection, if any.
func (c *Client) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
	c.closers = nil
}
