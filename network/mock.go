package network

import (
	"context"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// MockChainDataSource is a test double for ChainDataSource.
// All function fields must be set before the corresponding method is called.
type MockChainDataSource struct {
	GetRawTxFn    func(ctx context.Context, txid string) ([]byte, error)
	BroadcastTxFn func(ctx context.Context, rawTxHex string) (string, error)
	ListUnspentFn func(ctx context.Context, address string) ([]*tx.UTXO, error)
	GetTxStatusFn func(ctx context.Context, txid string) (*TxStatus, error)
	IsUnspentFn   func(ctx context.Context, txid string, vout uint32) (bool, error)
}

var _ ChainDataSource = (*MockChainDataSource)(nil)

func (m *MockChainDataSource) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	return m.GetRawTxFn(ctx, txid)
}
func (m *MockChainDataSource) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastTxFn(ctx, rawTxHex)
}
func (m *MockChainDataSource) ListUnspent(ctx context.Context, address string) ([]*tx.UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}
func (m *MockChainDataSource) GetTxStatus(ctx context.Context, txid string) (*TxStatus, error) {
	return m.GetTxStatusFn(ctx, txid)
}
func (m *MockChainDataSource) IsUnspent(ctx context.Context, txid string, vout uint32) (bool, error) {
	return m.IsUnspentFn(ctx, txid, vout)
}
