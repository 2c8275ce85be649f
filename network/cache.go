package network

import (
	"bytes"
	"context"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default cache sizing.
const (
	DefaultTxCacheSize = 5_000
	DefaultTxCacheTTL  = 10 * time.Minute
)

// CachedSource decorates a ChainDataSource with an expiring LRU of raw
// transactions. Transactions it broadcasts successfully are cached too, so
// an offer can be re-read right after it is listed or partially accepted.
// Other calls pass through.
type CachedSource struct {
	ChainDataSource
	txs *expirable.LRU[string, []byte]
}

// NewCachedSource wraps src. Non-positive size or ttl select the defaults.
func NewCachedSource(src ChainDataSource, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = DefaultTxCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultTxCacheTTL
	}
	return &CachedSource{
		ChainDataSource: src,
		txs:             expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// GetRawTx serves txid from the cache when present. Callers get a copy.
func (c *CachedSource) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	if raw, ok := c.txs.Get(txid); ok {
		return bytes.Clone(raw), nil
	}
	raw, err := c.ChainDataSource.GetRawTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	c.txs.Add(txid, bytes.Clone(raw))
	return raw, nil
}

// BroadcastTx submits rawTxHex and caches it under the returned txid.
func (c *CachedSource) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	txid, err := c.ChainDataSource.BroadcastTx(ctx, rawTxHex)
	if err != nil {
		return "", err
	}
	if raw, err := hex.DecodeString(rawTxHex); err == nil {
		c.txs.Add(txid, raw)
	}
	return txid, nil
}

// Len returns the number of cached transactions.
func (c *CachedSource) Len() int {
	return c.txs.Len()
}
