package network

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/goran-ethernal/ScanKit/internal/common"
	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const apiURL = "https://api.etherscan.io/api"

func newTestNetwork(t *testing.T, keys []string, retry *config.RetryConfig, opts ...Option) (*Network, *httpmock.MockTransport) {
	t.Helper()

	mt := httpmock.NewMockTransport()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: mt})}, opts...)

	n, err := New(config.ClientConfig{
		APIKeys: keys,
		APIKind: "eth",
		Network: "main",
		Timeout: common.NewDuration(time.Second),
		Retry:   retry,
	}, nil, opts...)
	require.NoError(t, err)

	return n, mt
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.ClientConfig{APIKeys: []string{"k"}, APIKind: "solana", Network: "main"}, nil)
	require.ErrorContains(t, err, "Incorrect api_kind")

	_, err = New(config.ClientConfig{APIKind: "eth", Network: "main"}, nil)
	require.Error(t, err)

	_, err = New(config.ClientConfig{APIKeys: []string{"k"}, APIKind: "eth", Network: "main", ProxyURL: "://bad"}, nil)
	require.ErrorContains(t, err, "invalid proxy url")
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
		check       func(t *testing.T, err error)
	}{
		{
			name:        "success",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"status":"1","message":"OK","result":"40891626854930000000000000"}`,
			want:        `"40891626854930000000000000"`,
		},
		{
			name:        "json rpc result",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":83,"result":"0xc36b29"}`,
			want:        `"0xc36b29"`,
		},
		{
			name:        "api error",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var apiErr *types.APIError
				require.ErrorAs(t, err, &apiErr)
				require.Equal(t, "NOTOK", apiErr.Message)
				require.Equal(t, "Invalid API Key", apiErr.Result)
				require.Equal(t, "[NOTOK] Invalid API Key", err.Error())
			},
		},
		{
			name:        "no transactions",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"status":"0","message":"No transactions found","result":[]}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				require.True(t, types.IsNoTransactionsFound(err))
			},
		},
		{
			name:        "proxy error",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument 0"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var proxyErr *types.ProxyError
				require.ErrorAs(t, err, &proxyErr)
				require.Equal(t, int64(-32602), proxyErr.Code)
				require.Equal(t, "invalid argument 0", proxyErr.Message)
			},
		},
		{
			name:        "html body",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var contentErr *types.ContentTypeError
				require.ErrorAs(t, err, &contentErr)
				require.Equal(t, http.StatusBadGateway, contentErr.Status)
				require.Equal(t, "<html>bad gateway</html>", contentErr.Content)
			},
		},
		{
			name:        "broken json",
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body:        `{"status":`,
			check: func(t *testing.T, err error) {
				t.Helper()
				var clientErr *types.ClientError
				require.ErrorAs(t, err, &clientErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeResponse(tt.status, tt.contentType, []byte(tt.body))
			if tt.check != nil {
				require.Error(t, err)
				require.Nil(t, got)
				tt.check(t, err)
				return
			}
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestNetwork_Get(t *testing.T) {
	n, mt := newTestNetwork(t, []string{"key1"}, nil)

	mt.RegisterResponder(http.MethodGet, apiURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		require.Equal(t, "account", q.Get("module"))
		require.Equal(t, "balance", q.Get("action"))
		require.Equal(t, "0xabc", q.Get("address"))
		require.Equal(t, "key1", q.Get("apikey"))
		require.False(t, q.Has("tag"))

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"status": "1", "message": "OK", "result": "42"})
	})

	result, err := n.Get(context.Background(), types.Params{
		"module": "account", "action": "balance", "address": "0xabc", "tag": nil,
	})
	require.NoError(t, err)

	var balance string
	require.NoError(t, json.Unmarshal(result, &balance))
	require.Equal(t, "42", balance)
	require.Equal(t, 1, mt.GetTotalCallCount())
}

func TestNetwork_Post(t *testing.T) {
	n, mt := newTestNetwork(t, []string{"key1"}, nil)

	mt.RegisterResponder(http.MethodPost, apiURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		require.Equal(t, "contract", req.PostForm.Get("module"))
		require.Equal(t, "verifysourcecode", req.PostForm.Get("action"))
		require.Equal(t, "key1", req.PostForm.Get("apikey"))
		require.Empty(t, req.URL.RawQuery)

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"status": "1", "message": "OK", "result": "guid"})
	})

	result, err := n.Post(context.Background(), types.Params{"module": "contract", "action": "verifysourcecode"})
	require.NoError(t, err)
	require.JSONEq(t, `"guid"`, string(result))
}

func TestNetwork_KeyRotation(t *testing.T) {
	n, mt := newTestNetwork(t, []string{"key1", "key2"}, nil)

	var used []string
	mt.RegisterResponder(http.MethodGet, apiURL, func(req *http.Request) (*http.Response, error) {
		key := req.URL.Query().Get("apikey")
		used = append(used, key)
		if key == "key1" {
			return httpmock.NewJsonResponse(http.StatusOK,
				map[string]any{"status": "0", "message": "NOTOK", "result": "Max rate limit reached"})
		}
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"status": "1", "message": "OK", "result": "1"})
	})

	_, err := n.Get(context.Background(), types.Params{"module": "stats", "action": "ethprice"})
	require.NoError(t, err)
	require.Equal(t, []string{"key1", "key2"}, used)
	require.Equal(t, "key2", n.keys.Current())

	// the rotated key stays in use
	_, err = n.Get(context.Background(), types.Params{"module": "stats", "action": "ethprice"})
	require.NoError(t, err)
	require.Equal(t, []string{"key1", "key2", "key2"}, used)
}

func TestNetwork_KeyRotationExhausted(t *testing.T) {
	n, mt := newTestNetwork(t, []string{"key1", "key2"}, nil)

	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewJsonResponderOrPanic(http.StatusOK,
		map[string]any{"status": "0", "message": "NOTOK", "result": "Max rate limit reached"}))

	_, err := n.Get(context.Background(), types.Params{"module": "stats", "action": "ethprice"})
	require.True(t, types.IsRateLimitError(err))
	require.Equal(t, 2, mt.GetTotalCallCount())
}

func TestNetwork_RetriesServerErrors(t *testing.T) {
	retry := &config.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    common.NewDuration(time.Millisecond),
		MaxBackoff:        common.NewDuration(2 * time.Millisecond),
		BackoffMultiplier: 2,
	}
	n, mt := newTestNetwork(t, []string{"key1"}, retry)

	calls := 0
	mt.RegisterResponder(http.MethodGet, apiURL, func(*http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(http.StatusBadGateway, "<html>502</html>"), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"status": "1", "message": "OK", "result": "ok"})
	})

	result, err := n.Get(context.Background(), types.Params{"module": "proxy", "action": "eth_blockNumber"})
	require.NoError(t, err)
	require.JSONEq(t, `"ok"`, string(result))
	require.Equal(t, 3, calls)
}

func TestNetwork_APIErrorIsNotRetried(t *testing.T) {
	retry := &config.RetryConfig{MaxAttempts: 5, InitialBackoff: common.NewDuration(time.Millisecond), BackoffMultiplier: 2}
	retry.ApplyDefaults()
	n, mt := newTestNetwork(t, []string{"key1"}, retry)

	apiResp := map[string]any{"status": "0", "message": "NOTOK", "result": "Error! Invalid address format"}
	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewJsonResponderOrPanic(http.StatusOK, apiResp))

	_, err := n.Get(context.Background(), types.Params{"module": "account", "action": "balance"})
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "[NOTOK] Error! Invalid address format", err.Error())
	require.Equal(t, 1, mt.GetTotalCallCount())
}

func TestNetwork_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	n, mt := newTestNetwork(t, []string{"key1"}, nil, WithTracerProvider(tp))
	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewJsonResponderOrPanic(http.StatusOK,
		map[string]any{"status": "0", "message": "NOTOK", "result": "boom"}))

	_, err := n.Get(context.Background(), types.Params{"module": "account", "action": "txlist"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "explorer.account.txlist", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNetwork_ContextCanceled(t *testing.T) {
	n, mt := newTestNetwork(t, []string{"key1"}, nil)
	mt.RegisterResponder(http.MethodGet, apiURL, httpmock.NewStringResponder(http.StatusOK, "{}"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Get(ctx, types.Params{"module": "account", "action": "balance"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "canceled", errorType(err))
}
