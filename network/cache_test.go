package network

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedSource_GetRawTx(t *testing.T) {
	calls := 0
	mock := &MockChainDataSource{
		GetRawTxFn: func(_ context.Context, txid string) ([]byte, error) {
			calls++
			if txid == "missing" {
				return nil, ErrTxNotFound
			}
			return []byte{0x01, 0x02}, nil
		},
	}
	c := NewCachedSource(mock, 0, 0)

	raw, err := c.GetRawTx(context.Background(), "a")
	require.NoError(t, err)
	raw[0] = 0xff // callers own their copy

	again, err := c.GetRawTx(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, again)
	assert.Equal(t, 1, calls)

	_, err = c.GetRawTx(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTxNotFound)
	_, _ = c.GetRawTx(context.Background(), "missing")
	assert.Equal(t, 3, calls, "errors are not cached")
	assert.Equal(t, 1, c.Len())
}

func TestCachedSource_BroadcastPopulates(t *testing.T) {
	txid := strings.Repeat("ee", 32)
	mock := &MockChainDataSource{
		BroadcastTxFn: func(_ context.Context, rawHex string) (string, error) {
			if rawHex == "00" {
				return "", errors.Join(ErrBroadcastRejected, errors.New("dust"))
			}
			return txid, nil
		},
		GetRawTxFn: func(context.Context, string) ([]byte, error) {
			t.Fatal("broadcast transaction should be served from cache")
			return nil, nil
		},
	}
	c := NewCachedSource(mock, 10, time.Minute)

	got, err := c.BroadcastTx(context.Background(), "beef")
	require.NoError(t, err)
	assert.Equal(t, txid, got)

	raw, err := c.GetRawTx(context.Background(), txid)
	require.NoError(t, err)
	assert.Equal(t, "beef", hex.EncodeToString(raw))

	_, err = c.BroadcastTx(context.Background(), "00")
	assert.ErrorIs(t, err, ErrBroadcastRejected)
	assert.Equal(t, 1, c.Len())
}

func TestCachedSource_Eviction(t *testing.T) {
	mock := &MockChainDataSource{
		GetRawTxFn: func(_ context.Context, txid string) ([]byte, error) { return []byte(txid), nil },
	}
	c := NewCachedSource(mock, 2, time.Minute)
	for _, id := range []string{"a", "b", "c"} {
		_, err := c.GetRawTx(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
}

func TestCachedSource_PassesThrough(t *testing.T) {
	mock := &MockChainDataSource{
		GetTxStatusFn: func(context.Context, string) (*TxStatus, error) {
			return &TxStatus{Confirmed: true}, nil
		},
	}
	mock.IsUnspentFn = func(_ context.Context, txid string, vout uint32) (bool, error) {
		return txid == "x" && vout == 2, nil
	}
	var src ChainDataSource = NewCachedSource(mock, 1, time.Minute)
	st, err := src.GetTxStatus(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, st.Confirmed)

	unspent, err := src.IsUnspent(context.Background(), "x", 2)
	require.NoError(t, err)
	assert.True(t, unspent)
}
