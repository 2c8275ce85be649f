package network

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// Compile-time interface check.
var _ ChainDataSource = (*RPCClient)(nil)

// xecDecimals is the number of decimals in node amounts.
const xecDecimals = 2

// xecToSats converts an XEC amount to satoshis exactly, rejecting negative
// or sub-satoshi values.
func xecToSats(xec decimal.Decimal) (uint64, error) {
	sats := xec.Shift(xecDecimals)
	if sats.Sign() < 0 || !sats.Equal(sats.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %s XEC", ErrInvalidResponse, xec)
	}
	if !sats.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: amount %s XEC out of range", ErrInvalidResponse, xec)
	}
	return sats.BigInt().Uint64(), nil
}

type listUnspentResult struct {
	TxID          string          `json:"txid"`
	Vout          uint32          `json:"vout"`
	Amount        decimal.Decimal `json:"amount"`
	ScriptPubKey  string          `json:"scriptPubKey"`
	Address       string          `json:"address"`
	Confirmations int64           `json:"confirmations"`
}

// ListUnspent returns all unspent outputs for address. It calls
// `listunspent 0 9999999 ["address"]`, converts XEC amounts to satoshis and
// attaches token entries read from each funding transaction's output 0.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*tx.UTXO, error) {
	params := []interface{}{0, 9999999, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*tx.UTXO, len(results))
	for i, r := range results {
		txid, err := tx.ValidateTxID(r.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		value, err := xecToSats(r.Amount)
		if err != nil {
			return nil, err
		}
		script, err := hex.DecodeString(r.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: scriptPubKey of %s:%d: %w", ErrInvalidResponse, txid, r.Vout, err)
		}
		utxos[i] = &tx.UTXO{
			Outpoint: tx.Outpoint{TxID: txid, Vout: r.Vout},
			Value:    value,
			Script:   script,
		}
	}
	if err := c.labelTokens(ctx, utxos); err != nil {
		return nil, err
	}
	return utxos, nil
}

// labelTokens fetches each distinct funding transaction once and attaches
// the token entry its output 0 assigns to the spent output.
func (c *RPCClient) labelTokens(ctx context.Context, utxos []*tx.UTXO) error {
	byTx := make(map[string][]*tx.UTXO)
	for _, u := range utxos {
		byTx[u.TxID] = append(byTx[u.TxID], u)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.labelLimit)
	for txid, outs := range byTx {
		g.Go(func() error {
			t, err := FetchTx(gctx, c, txid)
			if err != nil {
				return fmt.Errorf("label %s: %w", txid, err)
			}
			if len(t.Outputs) == 0 || t.Outputs[0].LockingScript == nil {
				return nil
			}
			entries, err := token.OutputEntries([]byte(*t.Outputs[0].LockingScript), txid)
			if err != nil {
				// A malformed token message burns its inputs; the outputs hold no tokens.
				c.log.Warn("unparseable token message", zap.String("txid", txid), zap.Error(err))
				return nil
			}
			// Each goroutine owns the UTXOs of one txid.
			for _, u := range outs {
				if e, ok := entries[u.Vout]; ok {
					entry := *e
					u.Token = &entry
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// BroadcastTx submits a raw transaction hex and returns the txid.
// It calls `sendrawtransaction "hex"`. Node refusals are wrapped with
// ErrBroadcastRejected; transport failures are returned as they are.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []interface{}{rawTxHex}, &txid); err != nil {
		if _, ok := rpcErrorCode(err); ok {
			return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
		}
		return "", err
	}
	c.log.Info("broadcast transaction", zap.String("txid", txid))
	return txid, nil
}

// GetRawTx returns the raw transaction bytes for the given txid.
// It calls `getrawtransaction "txid" false`; an unknown txid is ErrTxNotFound.
func (c *RPCClient) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", []interface{}{txid, false}, &rawHex); err != nil {
		if code, ok := rpcErrorCode(err); ok && code == rpcErrInvalidAddressOrKey {
			return nil, fmt.Errorf("%w: %s: %w", ErrTxNotFound, txid, err)
		}
		return nil, err
	}
	data, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tx hex: %w", ErrInvalidResponse, err)
	}
	return data, nil
}

type verboseTxResult struct {
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
	BlockHeight   uint64 `json:"blockheight"`
}

// GetTxStatus returns the confirmation status of a transaction.
// It calls `getrawtransaction "txid" true` to read the confirmation count.
func (c *RPCClient) GetTxStatus(ctx context.Context, txid string) (*TxStatus, error) {
	var result verboseTxResult
	if err := c.Call(ctx, "getrawtransaction", []interface{}{txid, true}, &result); err != nil {
		if code, ok := rpcErrorCode(err); ok && code == rpcErrInvalidAddressOrKey {
			return nil, fmt.Errorf("%w: %s: %w", ErrTxNotFound, txid, err)
		}
		return nil, err
	}
	return &TxStatus{
		Confirmed:     result.Confirmations > 0,
		Confirmations: result.Confirmations,
		BlockHash:     result.BlockHash,
		BlockHeight:   result.BlockHeight,
	}, nil
}

type txOutResult struct {
	Confirmations int64           `json:"confirmations"`
	Value         decimal.Decimal `json:"value"`
}

// IsUnspent reports whether txid:vout is unspent. It calls
// `gettxout "txid" vout true`; the node answers null for a spent or unknown
// output, and the mempool flag makes a pending spend count as spent.
func (c *RPCClient) IsUnspent(ctx context.Context, txid string, vout uint32) (bool, error) {
	var result *txOutResult
	if err := c.Call(ctx, "gettxout", []interface{}{txid, vout, true}, &result); err != nil {
		return false, err
	}
	return result != nil, nil
}
