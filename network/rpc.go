package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RPCClient is a JSON-RPC 1.0 client for an eCash node.
// All high-level chain methods are built on top of the Call method.
type RPCClient struct {
	cli        *resty.Client
	url        string
	log        *zap.Logger
	nextID     atomic.Int64
	labelLimit int
}

// RPCOption customizes an RPCClient.
type RPCOption func(*RPCClient)

// WithHTTPClient sends requests through hc instead of a default client.
func WithHTTPClient(hc *http.Client) RPCOption {
	return func(c *RPCClient) {
		c.cli = resty.NewWithClient(hc)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) RPCOption {
	return func(c *RPCClient) {
		if log != nil {
			c.log = log
		}
	}
}

// WithLabelConcurrency bounds the parallel transaction fetches ListUnspent
// makes while attaching token entries.
func WithLabelConcurrency(n int) RPCOption {
	return func(c *RPCClient) {
		if n > 0 {
			c.labelLimit = n
		}
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}

// rpcErrInvalidAddressOrKey is the node's code for an unknown txid.
const rpcErrInvalidAddressOrKey = -5

// NewRPCClient creates a client for cfg. The client uses HTTP Basic Auth
// when User is non-empty.
func NewRPCClient(cfg RPCConfig, opts ...RPCOption) *RPCClient {
	c := &RPCClient{cli: resty.New(), log: zap.NewNop(), labelLimit: 8}
	for _, opt := range opts {
		opt(c)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	c.url = cfg.URL
	c.cli.SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.User != "" {
		c.cli.SetBasicAuth(cfg.User, cfg.Password)
	}
	return c
}

// Call invokes a JSON-RPC method and decodes the result into result.
//
// If params is nil, an empty params array is sent. If result is nil, the
// response result is discarded.
//
// Call returns ErrConnectionFailed when the request fails, ErrAuthFailed on
// HTTP 401, ErrInvalidResponse when the reply cannot be decoded, and a
// *RPCError for node-level errors.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	req := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	resp, err := c.cli.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.log.Debug("rpc call",
		zap.String("method", method),
		zap.Int64("id", req.ID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()))

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode())
	}

	// Nodes answer RPC errors with HTTP 500 and a JSON body.
	var rpcResp rpcResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode(), truncate(resp.Body(), 256))
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode())
	}
	if rpcResp.ID != req.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, req.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}

// rpcErrorCode returns the node error code carried by err, if any.
func rpcErrorCode(err error) (int, bool) {
	var rerr *RPCError
	if errors.As(err, &rerr) {
		return rerr.Code, true
	}
	return 0, false
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
