package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const apiURL = "https://api.etherscan.io/api"

func testConfig() *config.Config {
	return &config.Config{
		Client: config.ClientConfig{
			APIKeys:   []string{"test-key"},
			RateLimit: &config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 100},
		},
	}
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *httpmock.MockTransport) {
	t.Helper()

	mt := httpmock.NewMockTransport()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: mt})}, opts...)

	c, err := New(context.Background(), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c, mt
}

type staticHeight string

func (h staticHeight) BlockNumber(context.Context) (string, error) {
	return string(h), nil
}

// explorer serves listing endpoints from an in-memory chain the way the explorer does:
// records inside [startblock, endblock] in block order, cut at offset.
type explorer struct {
	mu       sync.Mutex
	head     uint64
	records  []types.Record
	requests []map[string]string
}

func newExplorer(head uint64, perBlock func(block uint64) int) *explorer {
	e := &explorer{head: head}
	for b := uint64(0); b <= head; b++ {
		for i := range perBlock(b) {
			e.records = append(e.records, types.Record{
				"blockNumber": strconv.FormatUint(b, 10),
				"hash":        fmt.Sprintf("0x%x%02x", b, i),
				"from":        "0xsender",
			})
		}
	}
	return e
}

func (e *explorer) respond(req *http.Request) (*http.Response, error) {
	q := req.URL.Query()

	e.mu.Lock()
	params := map[string]string{}
	for k := range q {
		params[k] = q.Get(k)
	}
	e.requests = append(e.requests, params)
	e.mu.Unlock()

	if q.Get("action") == "eth_blockNumber" {
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"jsonrpc": "2.0", "id": 83, "result": fmt.Sprintf("0x%x", e.head),
		})
	}

	fromKey, toKey := "startblock", "endblock"
	if q.Get("module") == "logs" {
		fromKey, toKey = "fromBlock", "toBlock"
	}
	from, _ := strconv.ParseUint(q.Get(fromKey), 10, 64)
	to, _ := strconv.ParseUint(q.Get(toKey), 10, 64)
	offset, _ := strconv.Atoi(q.Get("offset"))

	var out []types.Record
	for _, r := range e.records {
		n, _ := r.BlockNumber()
		if n >= from && n <= to && len(out) < offset {
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		empty := types.NoTransactionsFound
		if q.Get("module") == "logs" {
			empty = types.NoRecordsFound
		}
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"status": "0", "message": empty, "result": []any{},
		})
	}
	return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
		"status": "1", "message": "OK", "result": out,
	})
}

func collectRecords(t *testing.T, seq func(yield func(types.Record, error) bool)) ([]types.Record, error) {
	t.Helper()

	var out []types.Record
	for r, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

func TestGenerators_NormalTxsRecoversTruncatedPages(t *testing.T) {
	c, mt := newTestClient(t)
	chain := newExplorer(500, func(b uint64) int { return int(b % 3) })
	mt.RegisterResponder(http.MethodGet, apiURL, chain.respond)

	got, err := collectRecords(t, c.Generators.NormalTxs(context.Background(), "0xabc", BlocksOptions{
		BlocksLimit: 64,
		PageSize:    25,
	}))
	require.NoError(t, err)
	require.Equal(t, chain.records, got)

	require.Equal(t, "eth_blockNumber", chain.requests[0]["action"])
	for _, req := range chain.requests[1:] {
		require.Equal(t, "account", req["module"])
		require.Equal(t, "txlist", req["action"])
		require.Equal(t, "0xabc", req["address"])
		require.Equal(t, "asc", req["sort"])
		require.Equal(t, "1", req["page"])
		require.Equal(t, "25", req["offset"])
		require.Equal(t, "test-key", req["apikey"])
	}
}

func TestGenerators_ExplicitRangeSkipsHeightSource(t *testing.T) {
	c, mt := newTestClient(t, WithHeightSource(staticHeight("not hex")))
	chain := newExplorer(100, func(uint64) int { return 1 })
	mt.RegisterResponder(http.MethodGet, apiURL, chain.respond)

	got, err := collectRecords(t, c.Generators.InternalTxs(context.Background(), "0xabc", "", BlocksOptions{
		StartBlock: Uint64(10),
		EndBlock:   Uint64(19),
	}))
	require.NoError(t, err)
	require.Len(t, got, 10)
	require.Len(t, chain.requests, 1)
	require.Equal(t, "txlistinternal", chain.requests[0]["action"])
	require.Equal(t, "10", chain.requests[0]["startblock"])
	require.Equal(t, "19", chain.requests[0]["endblock"])
	require.Equal(t, "10000", chain.requests[0]["offset"])
}

func TestGenerators_HeightSource(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, WithHeightSource(staticHeight("0xc36f29")))
	head, err := c.Generators.CurrentBlock(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(12_807_977), head)

	c, _ = newTestClient(t, WithHeightSource(staticHeight("latest")))
	_, err = collectRecords(t, c.Generators.NormalTxs(ctx, "0xabc", BlocksOptions{}))
	require.ErrorContains(t, err, "resolve end block")
}

func TestGenerators_Logs(t *testing.T) {
	c, mt := newTestClient(t)
	chain := newExplorer(50, func(uint64) int { return 2 })
	mt.RegisterResponder(http.MethodGet, apiURL, chain.respond)

	got, err := collectRecords(t, c.Generators.Logs(context.Background(), LogsFilter{
		Topics: map[int]string{0: "0xddf252ad"},
	}, BlocksOptions{EndBlock: Uint64(50)}))
	require.NoError(t, err)
	require.Len(t, got, 102)

	require.Len(t, chain.requests, 1)
	req := chain.requests[0]
	require.Equal(t, "logs", req["module"])
	require.Equal(t, "getLogs", req["action"])
	require.Equal(t, "0", req["fromBlock"])
	require.Equal(t, "50", req["toBlock"])
	require.Equal(t, "1000", req["offset"])
	require.Equal(t, "0xddf252ad", req["topic0"])
	require.NotContains(t, req, "startblock")
	require.NotContains(t, req, "endblock")
}

func TestGenerators_LogsAcrossEmptyRanges(t *testing.T) {
	c, mt := newTestClient(t)
	chain := newExplorer(999, func(b uint64) int {
		if b%250 == 0 {
			return 2
		}
		return 0
	})
	mt.RegisterResponder(http.MethodGet, apiURL, chain.respond)

	got, err := collectRecords(t, c.Generators.Logs(context.Background(), LogsFilter{
		Address: "0xabc",
	}, BlocksOptions{EndBlock: Uint64(999), BlocksLimit: 100}))
	require.NoError(t, err)
	require.Len(t, got, 8)

	var windows []string
	for _, req := range chain.requests {
		windows = append(windows, req["fromBlock"]+".."+req["toBlock"])
	}
	require.Equal(t, []string{
		"0..99", "1..100", "101..200", "201..300", "251..350", "351..450",
		"451..550", "501..600", "601..700", "701..800", "751..850", "851..950", "951..999",
	}, windows)
}

func TestLogs_GetLogsNoRecords(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"status": "0", "message": types.NoRecordsFound, "result": []any{},
	}))

	_, err := c.Logs.GetLogs(context.Background(), LogsFilter{Address: "0xabc"}, nil, nil, PageOptions{})

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, types.NoRecordsFound, apiErr.Message)
}

func TestGenerators_MinedBlocksByPages(t *testing.T) {
	c, mt := newTestClient(t)

	var pages []string
	mt.RegisterResponder(http.MethodGet, apiURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		pages = append(pages, q.Get("page"))
		require.Equal(t, "getminedblocks", q.Get("action"))
		require.Equal(t, "blocks", q.Get("blocktype"))
		require.Equal(t, "10000", q.Get("offset"))

		if q.Get("page") == "3" {
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"status": "0", "message": types.NoTransactionsFound, "result": []any{},
			})
		}
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"status": "1", "message": "OK", "result": []map[string]string{
				{"blockNumber": "1", "blockReward": "5"},
				{"blockNumber": "2", "blockReward": "5"},
			},
		})
	})

	got, err := collectRecords(t, c.Generators.MinedBlocks(context.Background(), "0xabc", "", 0))
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, []string{"1", "2", "3"}, pages)
}

func TestGenerators_ScanByPagesPropagatesErrors(t *testing.T) {
	c, _ := newTestClient(t)
	upstream := &types.APIError{Message: "NOTOK", Result: "Invalid API Key"}

	method := func(_ context.Context, params types.Params) ([]types.Record, error) {
		if params["page"] == 2 {
			return nil, upstream
		}
		return []types.Record{{"blockNumber": "1"}}, nil
	}

	got, err := collectRecords(t, c.Generators.ScanByPages(context.Background(), method, types.Params{"action": "x"}))
	require.Len(t, got, 1)
	require.ErrorIs(t, err, upstream)
}

func TestGenerators_UpstreamErrorExhaustsLimit(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"status": "0", "message": "NOTOK", "result": "Error! Invalid address format",
	}))

	_, err := collectRecords(t, c.Generators.NormalTxs(context.Background(), "0xabc", BlocksOptions{
		EndBlock:    Uint64(1000),
		BlocksLimit: 8,
	}))
	require.ErrorIs(t, err, types.ErrLimitExhausted)

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "NOTOK", apiErr.Message)

	// windows of 8, 4, 2 and 1 blocks
	require.Equal(t, 4, mt.GetTotalCallCount())
}

func TestGenerators_InvalidFilters(t *testing.T) {
	c, mt := newTestClient(t)
	ctx := context.Background()

	_, err := collectRecords(t, c.Generators.TokenTransfers(ctx, TokenFilter{}, BlocksOptions{}))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = collectRecords(t, c.Generators.Logs(ctx, LogsFilter{}, BlocksOptions{}))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = collectRecords(t, c.Generators.MinedBlocks(ctx, "0xabc", "all", 0))
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.Zero(t, mt.GetTotalCallCount())
}

func TestGenerators_ConsumerStops(t *testing.T) {
	c, mt := newTestClient(t)
	chain := newExplorer(1000, func(uint64) int { return 1 })
	mt.RegisterResponder(http.MethodGet, apiURL, chain.respond)

	var n int
	for _, err := range c.Generators.TokenTransfers(context.Background(), TokenFilter{
		ContractAddress: "0xtoken",
		Standard:        StandardERC1155,
	}, BlocksOptions{EndBlock: Uint64(1000), BlocksLimit: 10}) {
		require.NoError(t, err)
		n++
		if n == 15 {
			break
		}
	}

	require.Equal(t, 15, n)
	require.Len(t, chain.requests, 2)
	require.Equal(t, "token1155tx", chain.requests[0]["action"])
	require.Equal(t, "0xtoken", chain.requests[0]["contractaddress"])
}

func TestClient_New(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	require.ErrorContains(t, err, "invalid configuration")

	cfg := testConfig()
	cfg.Client.APIKind = "bsc"
	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "BNB", c.Currency())
	require.Equal(t, "https://api.bscscan.com/api", c.URLs().APIURL())
	require.Equal(t, "https://bscscan.com/address/0x1", c.Links.AddressLink("0x1"))
}

func TestClient_ResponseEnvelope(t *testing.T) {
	c, mt := newTestClient(t)
	ctx := context.Background()

	mt.RegisterResponder(http.MethodGet, apiURL, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Query().Get("action") {
		case "balance":
			return httpmock.NewStringResponse(http.StatusOK, `{"status":"1","message":"OK","result":"40891626854930000000000000"}`), nil
		case "eth_getBlockByNumber":
			return httpmock.NewStringResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":{"number":"0x10d4f"}}`), nil
		case "eth_call":
			return httpmock.NewStringResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`), nil
		default:
			return httpmock.NewStringResponse(http.StatusOK, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`), nil
		}
	})

	balance, err := c.Account.Balance(ctx, "0xde0b", TagLatest)
	require.NoError(t, err)
	require.Equal(t, "40891626854930000000000000", balance)

	block, err := c.Proxy.BlockByNumber(ctx, false, Hex(0x10d4f))
	require.NoError(t, err)
	require.Equal(t, "0x10d4f", block.String("number"))

	_, err = c.Proxy.Call(ctx, "0xaeef", "0x70a0", "")
	var proxyErr *types.ProxyError
	require.ErrorAs(t, err, &proxyErr)
	require.Equal(t, int64(-32000), proxyErr.Code)

	_, err = c.Stats.EthSupply(ctx)
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "[NOTOK] Invalid API Key", apiErr.Error())
}
