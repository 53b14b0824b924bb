package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/urlbuilder"
	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goran-ethernal/ScanKit/internal/network"

// Option customizes a Network.
type Option func(*Network)

// WithHTTPClient replaces the HTTP client built from the configuration.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Network) {
		n.http = c
	}
}

// WithTracerProvider replaces the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(n *Network) {
		n.tracer = tp.Tracer(tracerName)
	}
}

// Network sends signed requests to one explorer and unwraps the response envelope.
// It is safe for concurrent use.
type Network struct {
	urls     *urlbuilder.URLBuilder
	keys     *KeyRing
	throttle *Throttle
	retry    *config.RetryConfig
	http     *http.Client
	tracer   trace.Tracer

	log *logger.Logger
}

// New creates a Network from the client configuration.
func New(cfg config.ClientConfig, log *logger.Logger, opts ...Option) (*Network, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	urls, err := urlbuilder.New(cfg.APIKind, cfg.Network)
	if err != nil {
		return nil, err
	}

	keys, err := NewKeyRing(cfg.APIKeys, log)
	if err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	throttle := NewThrottle(0, 1)
	if cfg.RateLimit != nil {
		throttle = NewThrottle(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	n := &Network{
		urls:     urls,
		keys:     keys,
		throttle: throttle,
		retry:    cfg.Retry,
		http:     httpClient,
		tracer:   otel.Tracer(tracerName),
		log:      log,
	}
	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

func newHTTPClient(cfg config.ClientConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &http.Client{
		Timeout:   cfg.Timeout.Duration,
		Transport: transport,
	}, nil
}

// URLs returns the URL builder of the explorer.
func (n *Network) URLs() *urlbuilder.URLBuilder {
	return n.urls
}

// HTTPClient returns the underlying HTTP client.
func (n *Network) HTTPClient() *http.Client {
	return n.http
}

// Get sends params in the query string and returns the raw "result" field.
func (n *Network) Get(ctx context.Context, params types.Params) (json.RawMessage, error) {
	return n.request(ctx, http.MethodGet, params)
}

// Post sends params as a form body and returns the raw "result" field.
func (n *Network) Post(ctx context.Context, params types.Params) (json.RawMessage, error) {
	return n.request(ctx, http.MethodPost, params)
}

func (n *Network) request(ctx context.Context, method string, params types.Params) (json.RawMessage, error) {
	module, action := fmt.Sprint(params["module"]), fmt.Sprint(params["action"])

	ctx, span := n.tracer.Start(ctx, "explorer."+module+"."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("explorer.kind", n.urls.Kind()),
			attribute.String("explorer.network", n.urls.Network()),
			attribute.String("explorer.module", module),
			attribute.String("explorer.action", action),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	requestInc(module, action)
	start := time.Now()

	var result json.RawMessage
	err := retryWithBackoff(ctx, n.retry, action, func() error {
		return n.keys.Do(func(key string) error {
			if err := n.throttle.Wait(ctx); err != nil {
				return err
			}

			res, err := n.send(ctx, method, n.urls.FilterAndSign(params, key))
			if err != nil {
				return err
			}
			result = res

			return nil
		})
	})

	requestObserve(action, time.Since(start))

	if err != nil {
		requestError(action, errorType(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return result, nil
}

func (n *Network) send(ctx context.Context, method string, values url.Values) (json.RawMessage, error) {
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, n.urls.APIURL(), body)
	if err != nil {
		return nil, &types.ClientError{Err: err}
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req.URL.RawQuery = values.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, &types.ClientError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.ClientError{Err: err}
	}

	values.Del("apikey")
	n.log.Debugf("[%s] %s %s %d", method, n.urls.APIURL(), values.Encode(), resp.StatusCode)

	return decodeResponse(resp.StatusCode, resp.Header.Get("Content-Type"), data)
}

// decodeResponse unwraps the explorer envelope {status, message, result} and the
// JSON-RPC envelope {jsonrpc, id, result | error} used by the proxy module.
func decodeResponse(status int, contentType string, data []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		if !strings.Contains(strings.ToLower(contentType), "json") {
			return nil, &types.ContentTypeError{Status: status, Content: string(data)}
		}
		return nil, &types.ClientError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if rawStatus, ok := envelope["status"]; ok {
		var s any
		_ = json.Unmarshal(rawStatus, &s)

		if s != "1" {
			apiErr := &types.APIError{}
			if raw, ok := envelope["message"]; ok {
				_ = json.Unmarshal(raw, &apiErr.Message)
			}
			if raw, ok := envelope["result"]; ok {
				_ = json.Unmarshal(raw, &apiErr.Result)
			}
			return nil, apiErr
		}
	}

	if rawErr, ok := envelope["error"]; ok {
		var rpcErr struct {
			Code    int64  `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(rawErr, &rpcErr)

		return nil, &types.ProxyError{Code: rpcErr.Code, Message: rpcErr.Message}
	}

	return envelope["result"], nil
}

func errorType(err error) string {
	var (
		apiErr     *types.APIError
		proxyErr   *types.ProxyError
		contentErr *types.ContentTypeError
	)

	switch {
	case types.IsNoTransactionsFound(err):
		return "no_transactions"
	case types.IsRateLimitError(err):
		return "rate_limited"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &proxyErr):
		return "proxy"
	case errors.As(err, &contentErr):
		return "content_type"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
