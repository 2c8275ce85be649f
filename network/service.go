package network

import (
	"context"

	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// ChainDataSource is everything the offer engine needs from the chain.
// Implementations must be safe for concurrent use.
type ChainDataSource interface {
	// GetRawTx returns the serialized transaction with the given txid.
	GetRawTx(ctx context.Context, txid string) ([]byte, error)

	// BroadcastTx submits a raw transaction hex and returns its txid.
	// A node-side refusal is reported as ErrBroadcastRejected.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)

	// ListUnspent returns the unspent outputs paying address, with token
	// entries attached to outputs that carry tokens.
	ListUnspent(ctx context.Context, address string) ([]*tx.UTXO, error)

	// GetTxStatus returns the confirmation status of a transaction.
	GetTxStatus(ctx context.Context, txid string) (*TxStatus, error)

	// IsUnspent reports whether output vout of txid is unspent, counting
	// spends still in the mempool.
	IsUnspent(ctx context.Context, txid string, vout uint32) (bool, error)
}

// TxStatus represents the confirmation status of a transaction.
type TxStatus struct {
	Confirmed     bool   `json:"confirmed"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"block_hash,omitempty"`
	BlockHeight   uint64 `json:"block_height,omitempty"`
}

// FetchTx retrieves and decodes the transaction with the given txid.
func FetchTx(ctx context.Context, src ChainDataSource, txid string) (*transaction.Transaction, error) {
	raw, err := src.GetRawTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	return tx.Decode(raw)
}
